package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"samudra_back_end/internal/checkout"
	"samudra_back_end/internal/middleware"
	"samudra_back_end/internal/models"
	"samudra_back_end/internal/realtime"
	"samudra_back_end/internal/utils"
	"samudra_back_end/internal/validators"
)

type orderView struct {
	models.Order
	TotalLabel string `json:"total_label"`
}

func newOrderView(o models.Order) orderView {
	return orderView{Order: o, TotalLabel: utils.FormatINR(o.TotalPrice)}
}

// 📦 POST /api/orders
func (h *Handler) PlaceOrder(c *gin.Context) {
	var details models.DeliveryDetails
	if err := c.ShouldBindJSON(&details); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid delivery details"})
		return
	}

	ws := middleware.Workspace(c)
	user := middleware.CurrentUser(c)
	order, err := h.checkout.PlaceOrder(middleware.UserContext(c), user, ws.Cart, details)
	if err != nil {
		h.fail(c, err, checkoutMessage(err))
		return
	}
	h.publish(c, ws, user.ID, realtime.EventCleared)

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Order placed successfully! 🎉",
		"description": "Your fresh seafood will be delivered soon!",
		"order":       newOrderView(order),
	})
}

func checkoutMessage(err error) string {
	var fieldErr *validators.FieldError
	switch {
	case errors.Is(err, checkout.ErrNotAuthenticated):
		return "Please login to place an order"
	case errors.Is(err, checkout.ErrEmptyCart):
		return "Your cart is empty"
	case errors.As(err, &fieldErr):
		return "Delivery " + fieldErr.Field + " " + fieldErr.Message
	}
	return "Failed to place order"
}

// GET /api/orders
func (h *Handler) ListOrders(c *gin.Context) {
	user := middleware.CurrentUser(c)
	orders, err := h.checkout.ListOrders(middleware.UserContext(c), user.ID)
	if err != nil {
		h.fail(c, err, "Failed to load orders")
		return
	}

	views := make([]orderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, newOrderView(o))
	}
	c.JSON(http.StatusOK, gin.H{"orders": views})
}

// GET /api/orders/:id
func (h *Handler) GetOrder(c *gin.Context) {
	order, ok := h.loadOrder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": newOrderView(order)})
}

// GET /api/orders/:id/payment-qr[?size=256] : QR code UPI du montant (PNG).
func (h *Handler) PaymentQR(c *gin.Context) {
	order, ok := h.loadOrder(c)
	if !ok {
		return
	}
	size, _ := strconv.Atoi(c.DefaultQuery("size", "256"))
	if size < 128 || size > 1024 {
		size = 256
	}

	png, err := h.checkout.PaymentQR(order, size)
	if err != nil {
		h.fail(c, err, "UPI payment is not available")
		return
	}
	c.Header("Cache-Control", "private, max-age=300")
	c.Data(http.StatusOK, "image/png", png)
}

func (h *Handler) loadOrder(c *gin.Context) (models.Order, bool) {
	orderID := c.Param("id")
	if _, err := uuid.Parse(orderID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order"})
		return models.Order{}, false
	}

	user := middleware.CurrentUser(c)
	order, err := h.checkout.GetOrder(middleware.UserContext(c), user.ID, orderID)
	if err != nil {
		h.fail(c, err, "Order not found")
		return models.Order{}, false
	}
	return order, true
}
