package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Catégories affichées par le catalogue. "All" désactive le filtre.
const CategoryAll = "All"

var Categories = []string{"Fish", "Crabs", "Prawns", "Lobsters", "Combos"}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	Freshness   int             `json:"freshness"`
	Available   bool            `json:"available"`
	CreatedAt   *time.Time      `json:"created_at,omitempty"`
}
