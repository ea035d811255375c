package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"samudra_back_end/internal/middleware"
	"samudra_back_end/internal/models"
	"samudra_back_end/internal/repository"
	"samudra_back_end/internal/session"
	"samudra_back_end/internal/supabase"
	"samudra_back_end/internal/validators"
)

type credentials struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// 🔐 POST /api/auth/login
func (h *Handler) Login(c *gin.Context) {
	var input credentials
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}

	ws := middleware.Workspace(c)
	previous := ws.Auth.Current()
	user, err := ws.Auth.SignIn(c.Request.Context(), strings.TrimSpace(input.Email), input.Password)
	if err != nil {
		message := "Login failed"
		if errors.Is(err, repository.ErrInvalidCredentials) {
			message = "Invalid email or password"
		}
		h.fail(c, err, message)
		return
	}

	resetOnSwitch(ws, previous, user)
	// le panier est chargé dès la connexion, un échec n'empêche pas la connexion
	ctx := supabase.WithAccessToken(c.Request.Context(), ws.Auth.AccessToken())
	if err := ws.Cart.Fetch(ctx, user.ID); err != nil {
		h.log.WithError(err).WithField("user_id", user.ID).Warn("⚠️ panier non chargé après connexion")
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome back!",
		"user":    user,
		"cart":    h.cartView(c.Request.Context(), ws.Cart),
	})
}

// POST /api/auth/signup
func (h *Handler) Signup(c *gin.Context) {
	var input struct {
		credentials
		ConfirmPassword string `json:"confirm_password"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email and password are required"})
		return
	}
	email := strings.TrimSpace(input.Email)
	if err := validators.ValidateSignup(email, input.Password, input.ConfirmPassword); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ws := middleware.Workspace(c)
	previous := ws.Auth.Current()
	user, pending, err := ws.Auth.SignUp(c.Request.Context(), email, input.Password)
	if err != nil {
		message := "Sign up failed"
		if errors.Is(err, repository.ErrEmailTaken) {
			message = "An account already exists for this email"
		}
		h.fail(c, err, message)
		return
	}

	message := "Account created! Welcome aboard."
	if !pending {
		resetOnSwitch(ws, previous, user)
	}
	if pending {
		message = "Account created! Please check your email to confirm your account."
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": message,
		"user":    user,
		"pending": pending,
	})
}

// POST /api/auth/logout
func (h *Handler) Logout(c *gin.Context) {
	ws := middleware.Workspace(c)
	if err := ws.Auth.SignOut(c.Request.Context()); err != nil {
		h.fail(c, err, "Failed to sign out")
		return
	}
	ws.Cart.Reset()
	c.JSON(http.StatusOK, gin.H{"message": "Signed out successfully"})
}

// GET /api/auth/me
func (h *Handler) Me(c *gin.Context) {
	ws := middleware.Workspace(c)
	c.JSON(http.StatusOK, gin.H{
		"user":       middleware.CurrentUser(c),
		"cart_count": ws.Cart.Count(),
	})
}

// resetOnSwitch oublie la copie locale du panier quand un autre utilisateur
// prend la session du navigateur.
func resetOnSwitch(ws *session.Workspace, previous *models.User, user models.User) {
	if previous == nil || previous.ID != user.ID {
		ws.Cart.Reset()
	}
}
