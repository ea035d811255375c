package repository

import (
	"context"
	"fmt"

	"samudra_back_end/internal/models"
	"samudra_back_end/internal/supabase"
)

// Cart est la table "cart" servie par Supabase. Le contexte doit porter le
// jeton de l'utilisateur (supabase.WithAccessToken) pour passer les règles RLS.
type Cart struct {
	db *supabase.Client
}

func NewCart(db *supabase.Client) *Cart {
	return &Cart{db: db}
}

func (r *Cart) ListCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	resp, err := r.db.From(tableCart).
		Select(cartColumns).
		Eq("user_id", userID).
		Execute(ctx)
	if err != nil {
		return nil, err
	}
	return decodeCartRows(resp.Body)
}

// AddOrIncrement appelle la fonction add_to_cart (insert ... on conflict
// (user_id, product_id) do update set quantity = cart.quantity + 1).
func (r *Cart) AddOrIncrement(ctx context.Context, userID, productID string) (models.CartItem, error) {
	params := map[string]string{
		"p_user_id":    userID,
		"p_product_id": productID,
	}
	resp, err := r.db.RPC(ctx, rpcAddToCart, params, cartColumns)
	if err != nil {
		return models.CartItem{}, err
	}

	items, err := decodeCartRows(resp.Body)
	if err != nil {
		return models.CartItem{}, err
	}
	if len(items) != 1 {
		return models.CartItem{}, fmt.Errorf("%s: %d lignes renvoyées, 1 attendue", rpcAddToCart, len(items))
	}
	return items[0], nil
}

func (r *Cart) SetQuantity(ctx context.Context, itemID string, quantity int) error {
	_, err := r.db.From(tableCart).
		Eq("id", itemID).
		Update(ctx, map[string]int{"quantity": quantity})
	return err
}

func (r *Cart) DeleteItem(ctx context.Context, itemID string) error {
	_, err := r.db.From(tableCart).Eq("id", itemID).Delete(ctx)
	return err
}

func (r *Cart) DeleteUserItems(ctx context.Context, userID string) error {
	_, err := r.db.From(tableCart).Eq("user_id", userID).Delete(ctx)
	return err
}
