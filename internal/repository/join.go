package repository

import (
	"bytes"
	"encoding/json"
	"fmt"

	"samudra_back_end/internal/models"
)

// cartRow est une ligne "cart" telle que renvoyée par PostgREST. Selon la
// profondeur de la jointure, product arrive en objet ou en tableau.
type cartRow struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Product   json.RawMessage `json:"product"`
}

func (r cartRow) toItem() (models.CartItem, error) {
	product, err := decodeJoinedProduct(r.Product)
	if err != nil {
		return models.CartItem{}, fmt.Errorf("ligne panier %s: %w", r.ID, err)
	}
	return models.CartItem{
		ID:        r.ID,
		UserID:    r.UserID,
		ProductID: r.ProductID,
		Quantity:  r.Quantity,
		Product:   product,
	}, nil
}

// decodeJoinedProduct ramène la jointure à un seul produit optionnel :
// absent ou null → nil, objet → produit, tableau de 0 ou 1 élément → nil ou
// produit. Toute autre forme est une erreur.
func decodeJoinedProduct(raw json.RawMessage) (*models.Product, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	switch trimmed[0] {
	case '{':
		var p models.Product
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedJoinShape, err)
		}
		return &p, nil
	case '[':
		var list []models.Product
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnexpectedJoinShape, err)
		}
		switch len(list) {
		case 0:
			return nil, nil
		case 1:
			return &list[0], nil
		default:
			return nil, fmt.Errorf("%w: %d produits joints", ErrUnexpectedJoinShape, len(list))
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedJoinShape, string(trimmed))
	}
}

func decodeCartRows(body []byte) ([]models.CartItem, error) {
	var rows []cartRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("décodage panier: %w", err)
	}
	items := make([]models.CartItem, 0, len(rows))
	for _, row := range rows {
		item, err := row.toItem()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
