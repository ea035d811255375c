package utils

import (
	"bytes"
	"net/url"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"samudra_back_end/internal/models"
)

func TestFormatINR(t *testing.T) {
	assert.Equal(t, "₹680.00", FormatINR(decimal.NewFromInt(680)))
	assert.Equal(t, "₹0.00", FormatINR(decimal.Zero))
	assert.Equal(t, "₹12.50", FormatINR(decimal.RequireFromString("12.5")))
}

func TestUPIPaymentURI(t *testing.T) {
	uri, err := UPIPaymentURI("samudra@upi", "Samudra Seafood", decimal.NewFromInt(680), "Order o1")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(uri, "upi://pay?"))

	q, err := url.ParseQuery(strings.TrimPrefix(uri, "upi://pay?"))
	require.NoError(t, err)
	assert.Equal(t, "samudra@upi", q.Get("pa"))
	assert.Equal(t, "Samudra Seafood", q.Get("pn"))
	assert.Equal(t, "680.00", q.Get("am"))
	assert.Equal(t, "INR", q.Get("cu"))
	assert.Equal(t, "Order o1", q.Get("tn"))

	_, err = UPIPaymentURI("", "x", decimal.NewFromInt(1), "")
	assert.Error(t, err)
}

func TestUPIPaymentQR_IsPNG(t *testing.T) {
	png, err := UPIPaymentQR("samudra@upi", "", decimal.NewFromInt(250), "", 0)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
}

func TestOrderConfirmationHTML(t *testing.T) {
	order := models.Order{
		ID: "o1",
		Items: []models.OrderLine{
			{ProductName: "Pomfret", Quantity: 2, Price: decimal.NewFromInt(250)},
			{ProductName: "Crab <Live>", Quantity: 1, Price: decimal.NewFromInt(180)},
		},
		TotalPrice:      decimal.NewFromInt(680),
		DeliveryDetails: models.DeliveryDetails{Name: "Asha", Address: "12 Beach Rd", City: "Kochi", Pincode: "682001", Phone: "9876543210"},
	}

	html, err := OrderConfirmationHTML(order)
	require.NoError(t, err)
	assert.Contains(t, html, "Thank you, Asha!")
	assert.Contains(t, html, "₹680.00")
	assert.Contains(t, html, "₹250.00")
	assert.Contains(t, html, "Crab &lt;Live&gt;")
}

func TestNewMailer_RequiresHost(t *testing.T) {
	_, err := NewMailer(SMTPConfig{From: "shop@samudra.in"}, nil)
	assert.Error(t, err)

	m, err := NewMailer(SMTPConfig{Host: "smtp.local", From: "shop@samudra.in"}, nil)
	require.NoError(t, err)
	assert.Equal(t, 587, m.cfg.Port)
}
