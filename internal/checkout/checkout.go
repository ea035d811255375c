// Package checkout transforme le panier courant en commande.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"samudra_back_end/internal/cart"
	"samudra_back_end/internal/models"
	"samudra_back_end/internal/utils"
	"samudra_back_end/internal/validators"
)

var (
	ErrNotAuthenticated = errors.New("checkout: utilisateur non connecté")
	ErrEmptyCart        = errors.New("checkout: panier vide")
	ErrInvalidDetails   = errors.New("checkout: informations de livraison incomplètes")
	ErrPaymentDisabled  = errors.New("checkout: paiement UPI non configuré")
)

const mailTimeout = 30 * time.Second

// Store est la table "orders" distante.
type Store interface {
	InsertOrder(ctx context.Context, order models.Order) (models.Order, error)
	ListOrders(ctx context.Context, userID string) ([]models.Order, error)
	GetOrder(ctx context.Context, userID, orderID string) (models.Order, error)
}

type Mailer interface {
	SendOrderConfirmation(ctx context.Context, to string, order models.Order) error
}

type Service struct {
	store  Store
	mailer Mailer
	log    *logrus.Entry

	upiVPA   string
	upiPayee string

	mails sync.WaitGroup
}

type Option func(*Service)

func WithMailer(m Mailer) Option {
	return func(s *Service) { s.mailer = m }
}

func WithUPI(vpa, payeeName string) Option {
	return func(s *Service) {
		s.upiVPA = vpa
		s.upiPayee = payeeName
	}
}

func NewService(store Store, log *logrus.Logger, opts ...Option) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	s := &Service{store: store, log: log.WithField("component", "checkout")}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// PlaceOrder enregistre une commande à partir de la copie locale du panier,
// puis vide le panier. Un échec du vidage est journalisé sans annuler la commande.
func (s *Service) PlaceOrder(ctx context.Context, user *models.User, c *cart.Container, details models.DeliveryDetails) (models.Order, error) {
	if user == nil || user.ID == "" {
		return models.Order{}, ErrNotAuthenticated
	}
	if err := validators.ValidateDelivery(details); err != nil {
		return models.Order{}, fmt.Errorf("%w: %w", ErrInvalidDetails, err)
	}

	lines := Snapshot(c.Items())
	if len(lines) == 0 {
		return models.Order{}, ErrEmptyCart
	}

	order := models.Order{
		UserID:          user.ID,
		Items:           lines,
		TotalPrice:      LinesTotal(lines),
		Status:          models.OrderStatusPlaced,
		DeliveryDetails: details,
	}

	created, err := s.store.InsertOrder(ctx, order)
	if err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Error("❌ insertion commande échouée")
		return models.Order{}, fmt.Errorf("checkout: insertion commande: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"order_id": created.ID,
		"user_id":  user.ID,
		"total":    created.TotalPrice.StringFixed(2),
	}).Info("✅ commande enregistrée")

	if err := c.ClearCart(ctx, user.ID); err != nil {
		s.log.WithError(err).WithField("order_id", created.ID).Warn("⚠️ commande enregistrée mais panier non vidé")
	}

	s.sendConfirmation(ctx, user.Email, created)
	return created, nil
}

// Snapshot fige les lignes du panier. Les lignes sans produit joint sont
// ignorées, elles ne comptent pas dans le total.
func Snapshot(items []models.CartItem) []models.OrderLine {
	lines := make([]models.OrderLine, 0, len(items))
	for _, item := range items {
		if item.Product == nil || item.Quantity <= 0 {
			continue
		}
		lines = append(lines, models.OrderLine{
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			Quantity:    item.Quantity,
			Price:       item.Product.Price,
		})
	}
	return lines
}

// LinesTotal = Σ prix × quantité des lignes figées. Les lignes ignorées par
// Snapshot comptaient pour zéro, il vaut donc Total() du même panier.
func LinesTotal(lines []models.OrderLine) decimal.Decimal {
	sum := decimal.Zero
	for _, line := range lines {
		sum = sum.Add(line.Subtotal())
	}
	return sum
}

func (s *Service) sendConfirmation(ctx context.Context, to string, order models.Order) {
	if s.mailer == nil || to == "" {
		return
	}
	s.mails.Add(1)
	go func() {
		defer s.mails.Done()
		mailCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mailTimeout)
		defer cancel()
		if err := s.mailer.SendOrderConfirmation(mailCtx, to, order); err != nil {
			s.log.WithError(err).WithField("order_id", order.ID).Warn("❌ e-mail de confirmation non envoyé")
			return
		}
		s.log.WithField("order_id", order.ID).Info("📧 e-mail de confirmation envoyé")
	}()
}

// Wait attend la fin des envois d'e-mails en cours (arrêt du serveur).
func (s *Service) Wait() {
	s.mails.Wait()
}

func (s *Service) ListOrders(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := s.store.ListOrders(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("checkout: liste commandes: %w", err)
	}
	return orders, nil
}

func (s *Service) GetOrder(ctx context.Context, userID, orderID string) (models.Order, error) {
	order, err := s.store.GetOrder(ctx, userID, orderID)
	if err != nil {
		return models.Order{}, fmt.Errorf("checkout: commande %s: %w", orderID, err)
	}
	return order, nil
}

// PaymentQR retourne le QR code UPI (PNG) du montant de la commande.
func (s *Service) PaymentQR(order models.Order, size int) ([]byte, error) {
	if s.upiVPA == "" {
		return nil, ErrPaymentDisabled
	}
	return utils.UPIPaymentQR(s.upiVPA, s.upiPayee, order.TotalPrice, "Order "+order.ID, size)
}
