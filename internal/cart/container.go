// Package cart tient la copie locale du panier d'un utilisateur, synchronisée
// avec le service de données distant.
//
// Chaque mutation écrit d'abord à distance, puis applique un correctif ciblé
// à la copie locale seulement si l'écriture a réussi. Aucune nouvelle tentative
// automatique : une erreur est retournée à l'appelant et conservée dans Err().
package cart

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"samudra_back_end/internal/models"
)

// Backend est la table "cart" distante, jointe à "products".
type Backend interface {
	// ListCart retourne toutes les lignes de l'utilisateur avec leur produit joint.
	ListCart(ctx context.Context, userID string) ([]models.CartItem, error)
	// AddOrIncrement insère la ligne (user, product) avec la quantité 1 ou
	// l'incrémente si elle existe, en un seul appel atomique.
	AddOrIncrement(ctx context.Context, userID, productID string) (models.CartItem, error)
	SetQuantity(ctx context.Context, itemID string, quantity int) error
	DeleteItem(ctx context.Context, itemID string) error
	DeleteUserItems(ctx context.Context, userID string) error
}

type Container struct {
	backend Backend
	log     *logrus.Entry

	mu      sync.RWMutex
	items   []models.CartItem
	loading bool
	err     error
}

func New(backend Backend, log *logrus.Logger) *Container {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Container{
		backend: backend,
		log:     log.WithField("component", "cart"),
	}
}

// Fetch remplace toute la copie locale par les lignes distantes.
// En cas d'échec la copie précédente est conservée.
func (c *Container) Fetch(ctx context.Context, userID string) error {
	c.mu.Lock()
	c.loading = true
	c.mu.Unlock()

	items, err := c.backend.ListCart(ctx, userID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if err != nil {
		c.err = fmt.Errorf("cart: chargement panier %s: %w", userID, err)
		c.log.WithError(err).WithField("user_id", userID).Warn("❌ chargement du panier échoué")
		return c.err
	}
	c.items = items
	c.err = nil
	return nil
}

// AddToCart ajoute une unité du produit. Une seule écriture distante : la
// fusion sur (user, product) est faite côté base.
func (c *Container) AddToCart(ctx context.Context, userID, productID string) error {
	item, err := c.backend.AddOrIncrement(ctx, userID, productID)
	if err != nil {
		return c.fail(fmt.Errorf("cart: ajout produit %s: %w", productID, err))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == item.ID {
			if item.Product == nil {
				item.Product = c.items[i].Product
			}
			c.items[i] = item
			c.err = nil
			return nil
		}
	}
	c.items = append(c.items, item)
	c.err = nil
	return nil
}

// UpdateQuantity fixe la quantité d'une ligne. Une quantité <= 0 supprime la ligne.
func (c *Container) UpdateQuantity(ctx context.Context, itemID string, quantity int) error {
	if quantity <= 0 {
		return c.RemoveFromCart(ctx, itemID)
	}

	if err := c.backend.SetQuantity(ctx, itemID, quantity); err != nil {
		return c.fail(fmt.Errorf("cart: quantité %s: %w", itemID, err))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		if c.items[i].ID == itemID {
			c.items[i].Quantity = quantity
		}
	}
	c.err = nil
	return nil
}

func (c *Container) RemoveFromCart(ctx context.Context, itemID string) error {
	if err := c.backend.DeleteItem(ctx, itemID); err != nil {
		return c.fail(fmt.Errorf("cart: suppression %s: %w", itemID, err))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.items[:0:0]
	for _, item := range c.items {
		if item.ID != itemID {
			kept = append(kept, item)
		}
	}
	c.items = kept
	c.err = nil
	return nil
}

// ClearCart supprime toutes les lignes de l'utilisateur (après une commande).
func (c *Container) ClearCart(ctx context.Context, userID string) error {
	if err := c.backend.DeleteUserItems(ctx, userID); err != nil {
		return c.fail(fmt.Errorf("cart: vidage panier %s: %w", userID, err))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.err = nil
	return nil
}

// Total = Σ prix × quantité. Un produit non joint compte pour zéro.
func (c *Container) Total() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return total(c.items)
}

func total(items []models.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Subtotal())
	}
	return sum
}

// Items retourne une copie de la copie locale.
func (c *Container) Items() []models.CartItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.CartItem, len(c.items))
	copy(out, c.items)
	return out
}

// Count est le nombre d'unités dans le panier.
func (c *Container) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	n := 0
	for _, item := range c.items {
		n += item.Quantity
	}
	return n
}

func (c *Container) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

// Err retourne la dernière erreur, nil après une opération réussie.
func (c *Container) Err() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.err
}

// Reset vide la copie locale sans toucher au distant (déconnexion).
func (c *Container) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.err = nil
	c.loading = false
}

func (c *Container) fail(err error) error {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
	c.log.WithError(err).Warn("❌ opération panier échouée")
	return err
}
