package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const OrderStatusPlaced = "placed"

// OrderLine est une copie figée d'une ligne du panier au moment de la commande.
type OrderLine struct {
	ProductID   string          `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

func (l OrderLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type DeliveryDetails struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`
	Notes   string `json:"notes"`
}

type Order struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Items           []OrderLine     `json:"items"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	Status          string          `json:"status"`
	DeliveryDetails DeliveryDetails `json:"delivery_details"`
	CreatedAt       time.Time       `json:"created_at"`
}
