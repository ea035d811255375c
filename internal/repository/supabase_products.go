package repository

import (
	"context"
	"errors"
	"net/http"

	"samudra_back_end/internal/models"
	"samudra_back_end/internal/supabase"
)

type Products struct {
	db *supabase.Client
}

func NewProducts(db *supabase.Client) *Products {
	return &Products{db: db}
}

// ListAvailable retourne les produits disponibles, les plus récents d'abord.
func (r *Products) ListAvailable(ctx context.Context) ([]models.Product, error) {
	resp, err := r.db.From(tableProducts).
		Select("*").
		Eq("available", true).
		Order("created_at", false).
		Execute(ctx)
	if err != nil {
		return nil, err
	}

	var products []models.Product
	if err := resp.JSON(&products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *Products) GetProduct(ctx context.Context, id string) (models.Product, error) {
	resp, err := r.db.From(tableProducts).
		Select("*").
		Eq("id", id).
		Single().
		Execute(ctx)
	if err != nil {
		var apiErr *supabase.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotAcceptable {
			return models.Product{}, ErrNotFound
		}
		return models.Product{}, err
	}

	var p models.Product
	if err := resp.JSON(&p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}
