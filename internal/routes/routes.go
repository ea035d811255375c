package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"samudra_back_end/internal/handlers"
	"samudra_back_end/internal/middleware"
)

// RegisterRoutes monte l'API de la boutique. session doit précéder tout
// handler qui lit l'espace du navigateur.
func RegisterRoutes(r *gin.Engine, h *handlers.Handler, session gin.HandlerFunc, limiter *middleware.RateLimiter) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api", limiter.API(), session)

	// 🏠 Accueil et catalogue
	api.GET("/landing", h.Landing)
	api.GET("/products", h.ListProducts)
	api.GET("/products/categories", h.Categories)
	api.GET("/products/:id", h.GetProduct)

	// 🔐 Authentification
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", limiter.Login(), h.Login)
		authGroup.POST("/signup", limiter.Signup(), h.Signup)
		authGroup.POST("/logout", middleware.RequireUser("Not signed in"), h.Logout)
		authGroup.GET("/me", middleware.RequireUser("Not signed in"), h.Me)
	}

	// 🛒 Panier
	cart := api.Group("/cart", middleware.RequireUser("Please login to add items to cart"))
	{
		cart.GET("", h.GetCart)
		cart.GET("/ws", h.CartWebSocket)
		cart.DELETE("", limiter.Cart(), h.ClearCart)
		cart.POST("/items", limiter.Cart(), h.AddToCart)
		cart.PATCH("/items/:id", limiter.Cart(), h.UpdateQuantity)
		cart.DELETE("/items/:id", limiter.Cart(), h.RemoveFromCart)
	}

	// 📦 Commandes
	orders := api.Group("/orders", middleware.RequireUser("Please login to place an order"))
	{
		orders.POST("", h.PlaceOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.GET("/:id/payment-qr", h.PaymentQR)
	}
}
