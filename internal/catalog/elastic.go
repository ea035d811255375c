package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"samudra_back_end/internal/models"
)

const elasticIndex = "products"

// Elastic indexe les produits et cherche sur le nom, la description et la catégorie,
// par préfixe comme le filtre local ou par mot approché.
type Elastic struct {
	client *elasticsearch.Client
	index  string
}

func NewElastic(client *elasticsearch.Client) *Elastic {
	return &Elastic{client: client, index: elasticIndex}
}

type elasticDoc struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

func (e *Elastic) Index(ctx context.Context, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, p := range products {
		meta := map[string]any{"index": map[string]any{"_index": e.index, "_id": p.ID}}
		if err := enc.Encode(meta); err != nil {
			return err
		}
		if err := enc.Encode(elasticDoc{Name: p.Name, Description: p.Description, Category: p.Category}); err != nil {
			return err
		}
	}

	res, err := esapi.BulkRequest{Body: &buf, Refresh: "true"}.Do(ctx, e.client)
	if err != nil {
		return fmt.Errorf("catalog: envoi elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("catalog: elastic a refusé l'indexation: %s", res.Status())
	}

	var summary struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&summary); err != nil {
		return fmt.Errorf("catalog: décodage réponse bulk: %w", err)
	}
	if summary.Errors {
		return fmt.Errorf("catalog: certains produits n'ont pas été indexés")
	}
	return nil
}

func (e *Elastic) Search(ctx context.Context, query string) ([]string, error) {
	var buf bytes.Buffer
	q := map[string]any{
		"size":    100,
		"_source": false,
		"query": map[string]any{
			"bool": map[string]any{
				// préfixe ("pom" → Pomfret) ou mot complet avec fautes de frappe
				"should": []any{
					map[string]any{"multi_match": map[string]any{
						"query":  query,
						"type":   "phrase_prefix",
						"fields": []string{"name^2", "description", "category"},
					}},
					map[string]any{"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"name^2", "description", "category"},
						"fuzziness": "AUTO",
					}},
				},
				"minimum_should_match": 1,
			},
		},
	}
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, fmt.Errorf("catalog: encodage requête: %w", err)
	}

	res, err := esapi.SearchRequest{Index: []string{e.index}, Body: &buf}.Do(ctx, e.client)
	if err != nil {
		return nil, fmt.Errorf("catalog: requête elastic: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("catalog: elastic: %s", strings.TrimSpace(res.String()))
	}

	var r struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("catalog: décodage JSON: %w", err)
	}

	ids := make([]string, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		ids = append(ids, hit.ID)
	}
	return ids, nil
}
