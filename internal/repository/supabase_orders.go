package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"samudra_back_end/internal/models"
	"samudra_back_end/internal/supabase"
)

type Orders struct {
	db *supabase.Client
}

func NewOrders(db *supabase.Client) *Orders {
	return &Orders{db: db}
}

// id et created_at sont attribués par la base
type orderInsert struct {
	UserID          string                 `json:"user_id"`
	Items           []models.OrderLine     `json:"items"`
	TotalPrice      decimal.Decimal        `json:"total_price"`
	Status          string                 `json:"status"`
	DeliveryDetails models.DeliveryDetails `json:"delivery_details"`
}

func (r *Orders) InsertOrder(ctx context.Context, order models.Order) (models.Order, error) {
	payload := orderInsert{
		UserID:          order.UserID,
		Items:           order.Items,
		TotalPrice:      order.TotalPrice,
		Status:          order.Status,
		DeliveryDetails: order.DeliveryDetails,
	}
	resp, err := r.db.From(tableOrders).Select("*").Insert(ctx, payload)
	if err != nil {
		return models.Order{}, err
	}

	var created []models.Order
	if err := resp.JSON(&created); err != nil {
		return models.Order{}, err
	}
	if len(created) != 1 {
		return models.Order{}, fmt.Errorf("insertion commande: %d lignes renvoyées", len(created))
	}
	return created[0], nil
}

func (r *Orders) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	resp, err := r.db.From(tableOrders).
		Select("*").
		Eq("user_id", userID).
		Order("created_at", false).
		Execute(ctx)
	if err != nil {
		return nil, err
	}

	var orders []models.Order
	if err := resp.JSON(&orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *Orders) GetOrder(ctx context.Context, userID, orderID string) (models.Order, error) {
	resp, err := r.db.From(tableOrders).
		Select("*").
		Eq("id", orderID).
		Eq("user_id", userID).
		Limit(1).
		Execute(ctx)
	if err != nil {
		return models.Order{}, err
	}

	var orders []models.Order
	if err := resp.JSON(&orders); err != nil {
		return models.Order{}, err
	}
	if len(orders) == 0 {
		return models.Order{}, ErrNotFound
	}
	return orders[0], nil
}
