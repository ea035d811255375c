// Package repository est la frontière d'accès aux données : les tables
// distantes (products, cart, orders) et l'authentification, décodées en
// types du package models.
package repository

import "errors"

var (
	// ErrNotFound : aucune ligne ne correspond (ou elle appartient à un autre utilisateur).
	ErrNotFound = errors.New("repository: introuvable")
	// ErrUnexpectedJoinShape : la jointure produit n'est ni un objet, ni un tableau d'au plus un élément.
	ErrUnexpectedJoinShape = errors.New("repository: forme de jointure produit inattendue")
	// ErrInvalidCredentials : e-mail ou mot de passe refusé.
	ErrInvalidCredentials = errors.New("repository: identifiants invalides")
	// ErrEmailTaken : un compte existe déjà pour cet e-mail.
	ErrEmailTaken = errors.New("repository: e-mail déjà utilisé")
)

const (
	tableProducts = "products"
	tableCart     = "cart"
	tableOrders   = "orders"

	// colonnes du panier avec le produit joint
	cartColumns = "id,user_id,product_id,quantity,product:products(*)"

	rpcAddToCart = "add_to_cart"
)
