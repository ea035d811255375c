// Package handlers expose les écrans de la boutique (accueil, catalogue,
// panier, commande, connexion, inscription) en JSON.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"samudra_back_end/internal/auth"
	"samudra_back_end/internal/catalog"
	"samudra_back_end/internal/checkout"
	"samudra_back_end/internal/models"
	"samudra_back_end/internal/realtime"
	"samudra_back_end/internal/repository"
	"samudra_back_end/internal/services"
	"samudra_back_end/internal/supabase"
	"samudra_back_end/internal/utils"
	"samudra_back_end/internal/validators"
)

type Deps struct {
	Catalog  *catalog.Service
	Checkout *checkout.Service
	Images   *services.ImageResolver
	Bus      realtime.Bus
	// Origins autorisées pour le websocket du panier.
	Origins []string
	Log     *logrus.Logger
}

type Handler struct {
	catalog  *catalog.Service
	checkout *checkout.Service
	images   *services.ImageResolver
	bus      realtime.Bus
	log      *logrus.Entry
	upgrader websocket.Upgrader
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	if d.Bus == nil {
		d.Bus = realtime.NewLocalBus()
	}
	if d.Images == nil {
		d.Images = services.NewImageResolver("https://images.unsplash.com", log)
	}
	return &Handler{
		catalog:  d.Catalog,
		checkout: d.Checkout,
		images:   d.Images,
		bus:      d.Bus,
		log:      log.WithField("component", "handlers"),
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigins(d.Origins)},
	}
}

func allowOrigins(origins []string) func(*http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}

// =============================================
// VUES
// =============================================

type productView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
	Price       decimal.Decimal `json:"price"`
	PriceLabel  string          `json:"price_label"`
	Category    string          `json:"category"`
	Freshness   int             `json:"freshness"`
}

type cartItemView struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"product_id"`
	Quantity      int             `json:"quantity"`
	Product       *productView    `json:"product"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	SubtotalLabel string          `json:"subtotal_label"`
}

type cartView struct {
	Items      []cartItemView  `json:"items"`
	Total      decimal.Decimal `json:"total"`
	TotalLabel string          `json:"total_label"`
	Count      int             `json:"count"`
	Loading    bool            `json:"loading"`
}

func (h *Handler) productView(ctx context.Context, p models.Product, width, height int) productView {
	return productView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		ImageURL:    h.images.URL(ctx, p.ImageURL, width, height),
		Price:       p.Price,
		PriceLabel:  utils.FormatINR(p.Price),
		Category:    p.Category,
		Freshness:   p.Freshness,
	}
}

func (h *Handler) productViews(ctx context.Context, products []models.Product) []productView {
	out := make([]productView, 0, len(products))
	for _, p := range products {
		out = append(out, h.productView(ctx, p, services.CardWidth, services.CardHeight))
	}
	return out
}

type cartSnapshot interface {
	Items() []models.CartItem
	Total() decimal.Decimal
	Count() int
	Loading() bool
}

func (h *Handler) cartView(ctx context.Context, c cartSnapshot) cartView {
	items := c.Items()
	view := cartView{
		Items:   make([]cartItemView, 0, len(items)),
		Total:   c.Total(),
		Count:   c.Count(),
		Loading: c.Loading(),
	}
	view.TotalLabel = utils.FormatINR(view.Total)
	for _, item := range items {
		iv := cartItemView{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal(),
		}
		iv.SubtotalLabel = utils.FormatINR(iv.Subtotal)
		if item.Product != nil {
			pv := h.productView(ctx, *item.Product, services.ThumbSize, services.ThumbSize)
			iv.Product = &pv
		}
		view.Items = append(view.Items, iv)
	}
	return view
}

// =============================================
// ERREURS
// =============================================

// statusFor associe une erreur du domaine à un code HTTP.
func statusFor(err error) int {
	var apiErr *supabase.APIError
	var fieldErr *validators.FieldError
	switch {
	case errors.Is(err, checkout.ErrNotAuthenticated),
		errors.Is(err, repository.ErrInvalidCredentials),
		errors.Is(err, auth.ErrNotSignedIn),
		errors.Is(err, auth.ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, checkout.ErrInvalidDetails),
		errors.Is(err, validators.ErrInvalidEmail),
		errors.Is(err, validators.ErrPasswordTooShort),
		errors.Is(err, validators.ErrPasswordMismatch),
		errors.As(err, &fieldErr):
		return http.StatusBadRequest
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, catalog.ErrUnavailable):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, checkout.ErrPaymentDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &apiErr):
		switch {
		case apiErr.Code == "23503":
			// clé étrangère : produit inconnu
			return http.StatusNotFound
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			return http.StatusUnauthorized
		}
		return http.StatusBadGateway
	}
	return http.StatusBadGateway
}

// fail journalise l'erreur et répond {"error": message}.
func (h *Handler) fail(c *gin.Context, err error, message string) {
	status := statusFor(err)
	entry := h.log.WithError(err).WithFields(logrus.Fields{
		"path":   c.FullPath(),
		"status": status,
	})
	if status >= http.StatusInternalServerError {
		entry.Error("❌ " + message)
	} else {
		entry.Warn("⚠️ " + message)
	}
	_ = c.Error(err)
	c.JSON(status, gin.H{"error": message})
}
