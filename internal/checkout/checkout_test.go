package checkout

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"samudra_back_end/internal/cart"
	"samudra_back_end/internal/models"
	"samudra_back_end/internal/repository"
)

type recordingMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (m *recordingMailer) SendOrderConfirmation(ctx context.Context, to string, order models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, to+":"+order.ID)
	return m.err
}

type brokenClear struct {
	cart.Backend
}

func (brokenClear) DeleteUserItems(ctx context.Context, userID string) error {
	return errors.New("réseau")
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

var details = models.DeliveryDetails{
	Name: "Asha", Phone: "9876543210", Address: "12 Beach Rd", City: "Kochi", Pincode: "682001",
}

func setup(t *testing.T) (*repository.Memory, *models.User) {
	t.Helper()
	m := repository.NewMemory("secret")
	m.SeedProducts(
		models.Product{ID: "pomfret", Name: "Pomfret", Price: decimal.NewFromInt(250), Available: true},
		models.Product{ID: "prawns", Name: "Tiger Prawns", Price: decimal.NewFromInt(180), Available: true},
	)
	return m, &models.User{ID: "u1", Email: "asha@example.com"}
}

func fill(t *testing.T, c *cart.Container, userID string, productIDs ...string) {
	t.Helper()
	for _, id := range productIDs {
		require.NoError(t, c.AddToCart(context.Background(), userID, id))
	}
}

func TestPlaceOrder_SnapshotsCart(t *testing.T) {
	m, user := setup(t)
	mailer := &recordingMailer{}
	s := NewService(m, quietLogger(), WithMailer(mailer))
	c := cart.New(m, quietLogger())
	fill(t, c, user.ID, "pomfret", "pomfret", "prawns")
	total := c.Total()

	order, err := s.PlaceOrder(context.Background(), user, c, details)
	require.NoError(t, err)
	s.Wait()

	assert.Equal(t, models.OrderStatusPlaced, order.Status)
	assert.True(t, total.Equal(order.TotalPrice))
	assert.Equal(t, "680.00", order.TotalPrice.StringFixed(2))
	require.Len(t, order.Items, 2)

	sum := decimal.Zero
	for _, line := range order.Items {
		sum = sum.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	assert.True(t, sum.Equal(order.TotalPrice))

	assert.Empty(t, c.Items())
	assert.Equal(t, 0, m.CartRows(user.ID))
	assert.Equal(t, []string{"asha@example.com:" + order.ID}, mailer.sent)
}

func TestPlaceOrder_LaterPriceChangeDoesNotAffectOrder(t *testing.T) {
	m, user := setup(t)
	s := NewService(m, quietLogger())
	c := cart.New(m, quietLogger())
	fill(t, c, user.ID, "pomfret", "pomfret")

	order, err := s.PlaceOrder(context.Background(), user, c, details)
	require.NoError(t, err)

	require.NoError(t, m.UpdateProduct("pomfret", func(p *models.Product) {
		p.Price = decimal.NewFromInt(999)
		p.Name = "Pomfret (large)"
	}))

	stored, err := s.GetOrder(context.Background(), user.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "500.00", stored.TotalPrice.StringFixed(2))
	assert.Equal(t, "Pomfret", stored.Items[0].ProductName)
	assert.Equal(t, "250", stored.Items[0].Price.String())
}

func TestPlaceOrder_TotalMatchesLinesDuringConcurrentWrites(t *testing.T) {
	m, user := setup(t)
	s := NewService(m, quietLogger())
	c := cart.New(m, quietLogger())
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		fill(t, c, user.ID, "pomfret")

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = c.AddToCart(ctx, user.ID, "prawns")
		}()
		order, err := s.PlaceOrder(ctx, user, c, details)
		wg.Wait()
		require.NoError(t, err)

		assert.True(t, LinesTotal(order.Items).Equal(order.TotalPrice),
			"total %s, lignes %v", order.TotalPrice, order.Items)
		require.NoError(t, c.ClearCart(ctx, user.ID))
	}
}

func TestPlaceOrder_Validation(t *testing.T) {
	m, user := setup(t)
	s := NewService(m, quietLogger())
	ctx := context.Background()

	c := cart.New(m, quietLogger())
	_, err := s.PlaceOrder(ctx, nil, c, details)
	assert.ErrorIs(t, err, ErrNotAuthenticated)

	_, err = s.PlaceOrder(ctx, user, c, details)
	assert.ErrorIs(t, err, ErrEmptyCart)

	fill(t, c, user.ID, "pomfret")
	incomplete := details
	incomplete.Address = ""
	_, err = s.PlaceOrder(ctx, user, c, incomplete)
	assert.ErrorIs(t, err, ErrInvalidDetails)
	assert.Len(t, c.Items(), 1)

	orders, err := s.ListOrders(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestPlaceOrder_SkipsUnjoinedItems(t *testing.T) {
	m, user := setup(t)
	s := NewService(m, quietLogger())
	c := cart.New(m, quietLogger())
	fill(t, c, user.ID, "pomfret", "prawns")

	m.DeleteProduct("prawns")
	require.NoError(t, c.Fetch(context.Background(), user.ID))

	order, err := s.PlaceOrder(context.Background(), user, c, details)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "250.00", order.TotalPrice.StringFixed(2))
}

func TestPlaceOrder_ClearFailureKeepsOrder(t *testing.T) {
	m, user := setup(t)
	s := NewService(m, quietLogger())
	c := cart.New(brokenClear{Backend: m}, quietLogger())
	fill(t, c, user.ID, "pomfret")

	order, err := s.PlaceOrder(context.Background(), user, c, details)
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Error(t, c.Err())

	orders, err := s.ListOrders(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestPaymentQR(t *testing.T) {
	m, _ := setup(t)
	order := models.Order{ID: "o1", TotalPrice: decimal.NewFromInt(680)}

	_, err := NewService(m, quietLogger()).PaymentQR(order, 0)
	assert.ErrorIs(t, err, ErrPaymentDisabled)

	png, err := NewService(m, quietLogger(), WithUPI("samudra@upi", "Samudra")).PaymentQR(order, 128)
	require.NoError(t, err)
	assert.NotEmpty(t, png)
}
