// Package catalog liste les produits disponibles, les plus récents d'abord,
// avec le filtre par catégorie et la recherche texte de la page d'accueil.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"samudra_back_end/internal/cache"
	"samudra_back_end/internal/models"
)

// ErrUnavailable : le produit existe mais n'est plus proposé à la vente.
var ErrUnavailable = errors.New("catalog: produit indisponible")

// Source est la table "products" distante.
type Source interface {
	ListAvailable(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id string) (models.Product, error)
}

// Searcher est un index plein texte optionnel.
type Searcher interface {
	Index(ctx context.Context, products []models.Product) error
	// Search retourne les identifiants des produits correspondants.
	Search(ctx context.Context, query string) ([]string, error)
}

type Filter struct {
	Category string
	Query    string
}

type Service struct {
	source   Source
	store    cache.Store
	ttl      time.Duration
	searcher Searcher
	log      *logrus.Entry
}

type Option func(*Service)

func WithCache(store cache.Store, ttl time.Duration) Option {
	return func(s *Service) {
		s.store = store
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithSearcher(searcher Searcher) Option {
	return func(s *Service) { s.searcher = searcher }
}

func NewService(source Source, log *logrus.Logger, opts ...Option) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Service{
		source: source,
		ttl:    cache.ProductCacheTTL,
		log:    log.WithField("component", "catalog"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Categories retourne les onglets du catalogue, "All" en premier.
func Categories() []string {
	return append([]string{models.CategoryAll}, models.Categories...)
}

// Products retourne tous les produits disponibles, depuis le cache si possible.
func (s *Service) Products(ctx context.Context) ([]models.Product, error) {
	if s.store != nil {
		var cached []models.Product
		ok, err := s.store.GetJSON(ctx, cache.ProductListKey, &cached)
		if err != nil {
			s.log.WithError(err).Warn("⚠️ cache catalogue indisponible")
		}
		if ok {
			return cached, nil
		}
	}

	products, err := s.source.ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: chargement produits: %w", err)
	}

	if s.store != nil {
		if err := s.store.SetJSON(ctx, cache.ProductListKey, products, s.ttl); err != nil {
			s.log.WithError(err).Warn("⚠️ mise en cache du catalogue échouée")
		}
	}
	if s.searcher != nil {
		if err := s.searcher.Index(ctx, products); err != nil {
			s.log.WithError(err).Warn("⚠️ indexation du catalogue échouée")
		}
	}
	return products, nil
}

// List applique le filtre catégorie puis la recherche texte.
func (s *Service) List(ctx context.Context, f Filter) ([]models.Product, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}

	if category := strings.TrimSpace(f.Category); category != "" && !strings.EqualFold(category, models.CategoryAll) {
		products = filter(products, func(p models.Product) bool {
			return strings.EqualFold(p.Category, category)
		})
	}

	query := strings.TrimSpace(f.Query)
	if query == "" {
		return products, nil
	}

	if s.searcher != nil {
		ids, err := s.searcher.Search(ctx, query)
		if err == nil {
			hit := make(map[string]bool, len(ids))
			for _, id := range ids {
				hit[id] = true
			}
			return filter(products, func(p models.Product) bool { return hit[p.ID] }), nil
		}
		s.log.WithError(err).WithField("query", query).Warn("⚠️ recherche indisponible, filtre local")
	}

	needle := strings.ToLower(query)
	return filter(products, func(p models.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle)
	}), nil
}

// Product lit un produit directement à la source, sans passer par le cache.
func (s *Service) Product(ctx context.Context, id string) (models.Product, error) {
	p, err := s.source.GetProduct(ctx, id)
	if err != nil {
		return models.Product{}, fmt.Errorf("catalog: produit %s: %w", id, err)
	}
	if !p.Available {
		return models.Product{}, fmt.Errorf("catalog: produit %s: %w", id, ErrUnavailable)
	}
	return p, nil
}

// Featured retourne les n produits les plus récents (page d'accueil).
func (s *Service) Featured(ctx context.Context, n int) ([]models.Product, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}
	if n >= 0 && len(products) > n {
		products = products[:n]
	}
	return products, nil
}

// Invalidate force le prochain appel à relire la source.
func (s *Service) Invalidate(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	return s.store.Delete(ctx, cache.ProductListKey)
}

func filter(products []models.Product, keep func(models.Product) bool) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if keep(p) {
			out = append(out, p)
		}
	}
	return out
}
