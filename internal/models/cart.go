package models

import "github.com/shopspring/decimal"

// CartItem est une ligne de panier. Product est la copie jointe du produit,
// nil si la jointure n'a rien renvoyé.
type CartItem struct {
	ID        string   `json:"id"`
	UserID    string   `json:"user_id"`
	ProductID string   `json:"product_id"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product,omitempty"`
}

// UnitPrice retourne le prix du produit joint, zéro s'il manque.
func (i CartItem) UnitPrice() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return i.Product.Price
}

// Subtotal = prix unitaire × quantité.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.UnitPrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}
