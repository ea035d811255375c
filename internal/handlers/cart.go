package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"samudra_back_end/internal/middleware"
	"samudra_back_end/internal/realtime"
	"samudra_back_end/internal/session"
)

// 🛒 GET /api/cart[?refresh=true]
func (h *Handler) GetCart(c *gin.Context) {
	ws := middleware.Workspace(c)
	user := middleware.CurrentUser(c)

	if c.Query("refresh") == "true" {
		if err := ws.Cart.Fetch(middleware.UserContext(c), user.ID); err != nil {
			h.fail(c, err, "Failed to load cart")
			return
		}
	}
	c.JSON(http.StatusOK, h.cartView(c.Request.Context(), ws.Cart))
}

// POST /api/cart/items {"product_id": "..."}
func (h *Handler) AddToCart(c *gin.Context) {
	var input struct {
		ProductID string `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product"})
		return
	}
	if _, err := uuid.Parse(input.ProductID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product"})
		return
	}

	ws := middleware.Workspace(c)
	user := middleware.CurrentUser(c)
	if err := ws.Cart.AddToCart(middleware.UserContext(c), user.ID, input.ProductID); err != nil {
		if statusFor(err) == http.StatusNotFound {
			// le produit a disparu : la liste en cache est périmée
			if cacheErr := h.catalog.Invalidate(c.Request.Context()); cacheErr != nil {
				h.log.WithError(cacheErr).Warn("⚠️ invalidation du catalogue échouée")
			}
			h.fail(c, err, "This product is no longer available")
			return
		}
		h.fail(c, err, "Failed to add to cart")
		return
	}
	h.publish(c, ws, user.ID, realtime.EventUpdated)

	name := "Item"
	for _, item := range ws.Cart.Items() {
		if item.ProductID == input.ProductID && item.Product != nil {
			name = item.Product.Name
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Added to cart!",
		"description": name + " has been added to your cart.",
		"cart":        h.cartView(c.Request.Context(), ws.Cart),
	})
}

// PATCH /api/cart/items/:id {"quantity": 3}. Une quantité <= 0 retire la ligne.
func (h *Handler) UpdateQuantity(c *gin.Context) {
	itemID, ok := itemParam(c)
	if !ok {
		return
	}
	var input struct {
		Quantity *int `json:"quantity" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid quantity"})
		return
	}

	ws := middleware.Workspace(c)
	user := middleware.CurrentUser(c)
	if err := ws.Cart.UpdateQuantity(middleware.UserContext(c), itemID, *input.Quantity); err != nil {
		h.fail(c, err, "Failed to update quantity")
		return
	}
	h.publish(c, ws, user.ID, realtime.EventUpdated)
	c.JSON(http.StatusOK, gin.H{"cart": h.cartView(c.Request.Context(), ws.Cart)})
}

// DELETE /api/cart/items/:id
func (h *Handler) RemoveFromCart(c *gin.Context) {
	itemID, ok := itemParam(c)
	if !ok {
		return
	}

	ws := middleware.Workspace(c)
	user := middleware.CurrentUser(c)
	if err := ws.Cart.RemoveFromCart(middleware.UserContext(c), itemID); err != nil {
		h.fail(c, err, "Failed to remove item")
		return
	}
	h.publish(c, ws, user.ID, realtime.EventUpdated)
	c.JSON(http.StatusOK, gin.H{
		"message": "Item removed from cart",
		"cart":    h.cartView(c.Request.Context(), ws.Cart),
	})
}

// DELETE /api/cart
func (h *Handler) ClearCart(c *gin.Context) {
	ws := middleware.Workspace(c)
	user := middleware.CurrentUser(c)
	if err := ws.Cart.ClearCart(middleware.UserContext(c), user.ID); err != nil {
		h.fail(c, err, "Failed to clear cart")
		return
	}
	h.publish(c, ws, user.ID, realtime.EventCleared)
	c.JSON(http.StatusOK, gin.H{"cart": h.cartView(c.Request.Context(), ws.Cart)})
}

func itemParam(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cart item"})
		return "", false
	}
	return id, true
}

// publish prévient les autres sessions de l'utilisateur. Un échec est journalisé.
func (h *Handler) publish(c *gin.Context, ws *session.Workspace, userID, kind string) {
	ev := realtime.Event{Type: kind, Origin: ws.ID}
	if err := h.bus.Publish(c.Request.Context(), userID, ev); err != nil {
		h.log.WithError(err).WithField("user_id", userID).Warn("⚠️ notification panier non publiée")
	}
}
