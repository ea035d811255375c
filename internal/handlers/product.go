package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"samudra_back_end/internal/catalog"
	"samudra_back_end/internal/middleware"
	"samudra_back_end/internal/services"
)

const featuredCount = 6

// 🏠 GET /api/landing
func (h *Handler) Landing(c *gin.Context) {
	ctx := c.Request.Context()
	featured, err := h.catalog.Featured(ctx, featuredCount)
	if err != nil {
		h.fail(c, err, "Failed to load products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"featured":   h.productViews(ctx, featured),
		"categories": catalog.Categories(),
		"signed_in":  middleware.CurrentUser(c) != nil,
	})
}

// 🐟 GET /api/products?category=Fish&q=pomfret
func (h *Handler) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()
	products, err := h.catalog.List(ctx, catalog.Filter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
	})
	if err != nil {
		h.fail(c, err, "Failed to load products")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": h.productViews(ctx, products),
		"count":    len(products),
	})
}

// GET /api/products/categories
func (h *Handler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"categories": catalog.Categories()})
}

// GET /api/products/:id
func (h *Handler) GetProduct(c *gin.Context) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product"})
		return
	}

	ctx := c.Request.Context()
	p, err := h.catalog.Product(ctx, id)
	if err != nil {
		h.fail(c, err, "Product not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": h.productView(ctx, p, services.DetailWidth, services.DetailHeight)})
}
