package cart_test

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

var errBackendDown = errors.New("backend down")

// flaky délègue à un vrai backend mais peut échouer à la demande.
type flaky struct {
	cart.Backend
	fail bool
}

func (f *flaky) ListCart(ctx context.Context, userID string) ([]models.CartItem, error) {
	if f.fail {
		return nil, errBackendDown
	}
	return f.Backend.ListCart(ctx, userID)
}

func (f *flaky) SetQuantity(ctx context.Context, itemID string, q int) error {
	if f.fail {
		return errBackendDown
	}
	return f.Backend.SetQuantity(ctx, itemID, q)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func setup(t *testing.T) (*repository.Memory, *cart.Container) {
	t.Helper()
	m := repository.NewMemory("secret")
	m.SeedProducts(
		models.Product{ID: "pomfret", Name: "Pomfret", Price: decimal.NewFromInt(250), Category: "Fish", Available: true},
		models.Product{ID: "prawns", Name: "Tiger Prawns", Price: decimal.NewFromInt(180), Category: "Prawns", Available: true},
	)
	return m, cart.New(m, quietLogger())
}

func TestAddToCart_MergesSameProduct(t *testing.T) {
	m, c := setup(t)
	ctx := context.Background()

	require.NoError(t, c.AddToCart(ctx, "u1", "pomfret"))
	require.NoError(t, c.AddToCart(ctx, "u1", "pomfret"))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 1, m.CartRows("u1"))
}

func TestAddToCart_ConcurrentAddsKeepOneRow(t *testing.T) {
	m, c := setup(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.AddToCart(ctx, "u1", "pomfret"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, m.CartRows("u1"))
	require.NoError(t, c.Fetch(ctx, "u1"))
	require.Len(t, c.Items(), 1)
	assert.Equal(t, 10, c.Items()[0].Quantity)
}

func TestUpdateQuantity_NonPositiveRemoves(t *testing.T) {
	for _, q := range []int{0, -3} {
		m, c := setup(t)
		ctx := context.Background()
		require.NoError(t, c.AddToCart(ctx, "u1", "pomfret"))
		id := c.Items()[0].ID

		require.NoError(t, c.UpdateQuantity(ctx, id, q))
		assert.Empty(t, c.Items())
		assert.Equal(t, 0, m.CartRows("u1"))
	}
}

func TestUpdateQuantity_PatchesLocally(t *testing.T) {
	_, c := setup(t)
	ctx := context.Background()
	require.NoError(t, c.AddToCart(ctx, "u1", "pomfret"))
	id := c.Items()[0].ID

	require.NoError(t, c.UpdateQuantity(ctx, id, 5))
	assert.Equal(t, 5, c.Items()[0].Quantity)
	assert.Equal(t, 5, c.Count())
}

func TestTotal(t *testing.T) {
	_, c := setup(t)
	ctx := context.Background()
	require.NoError(t, c.AddToCart(ctx, "u1", "pomfret"))
	require.NoError(t, c.AddToCart(ctx, "u1", "pomfret"))
	require.NoError(t, c.AddToCart(ctx, "u1", "prawns"))

	assert.Equal(t, "680.00", c.Total().StringFixed(2))
	assert.Equal(t, 3, c.Count())
}

func TestTotal_IgnoresMissingProduct(t *testing.T) {
	m, c := setup(t)
	ctx := context.Background()
	require.NoError(t, c.AddToCart(ctx, "u1", "pomfret"))
	require.NoError(t, c.AddToCart(ctx, "u1", "prawns"))

	m.DeleteProduct("prawns")
	require.NoError(t, c.Fetch(ctx, "u1"))

	assert.Len(t, c.Items(), 2)
	assert.Equal(t, "250.00", c.Total().StringFixed(2))
}

func TestTotal_EmptyCart(t *testing.T) {
	_, c := setup(t)
	assert.True(t, c.Total().IsZero())
}

func TestClearCart_ThenFetchIsEmpty(t *testing.T) {
	_, c := setup(t)
	ctx := context.Background()
	require.NoError(t, c.AddToCart(ctx, "u1", "pomfret"))
	require.NoError(t, c.AddToCart(ctx, "u1", "prawns"))

	require.NoError(t, c.ClearCart(ctx, "u1"))
	require.NoError(t, c.Fetch(ctx, "u1"))
	assert.Empty(t, c.Items())
}

func TestFetch_ErrorKeepsSnapshot(t *testing.T) {
	m, _ := setup(t)
	backend := &flaky{Backend: m}
	c := cart.New(backend, quietLogger())
	ctx := context.Background()

	require.NoError(t, c.AddToCart(ctx, "u1", "pomfret"))
	backend.fail = true

	err := c.Fetch(ctx, "u1")
	assert.ErrorIs(t, err, errBackendDown)
	assert.ErrorIs(t, c.Err(), errBackendDown)
	assert.False(t, c.Loading())
	assert.Len(t, c.Items(), 1)

	backend.fail = false
	require.NoError(t, c.Fetch(ctx, "u1"))
	assert.NoError(t, c.Err())
}

func TestUpdateQuantity_FailureLeavesSnapshot(t *testing.T) {
	m, _ := setup(t)
	backend := &flaky{Backend: m}
	c := cart.New(backend, quietLogger())
	ctx := context.Background()

	require.NoError(t, c.AddToCart(ctx, "u1", "pomfret"))
	id := c.Items()[0].ID
	backend.fail = true

	assert.ErrorIs(t, c.UpdateQuantity(ctx, id, 4), errBackendDown)
	assert.Equal(t, 1, c.Items()[0].Quantity)
}

func TestReset(t *testing.T) {
	m, c := setup(t)
	ctx := context.Background()
	require.NoError(t, c.AddToCart(ctx, "u1", "pomfret"))

	c.Reset()
	assert.Empty(t, c.Items())
	assert.Equal(t, 1, m.CartRows("u1"))
}
