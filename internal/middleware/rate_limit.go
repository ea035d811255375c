package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	// Limites par endpoint
	LoginMaxAttempts  = 5
	SignupMaxAttempts = 3
	APIMaxRequests    = 100 // par minute
	CartMaxRequests   = 30  // par minute et par utilisateur

	LoginCooldown  = 15 * time.Minute
	SignupCooldown = 30 * time.Minute
	APICooldown    = time.Minute
)

// Counter compte les appels dans une fenêtre (cache.Redis).
type Counter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
	Delete(ctx context.Context, keys ...string) error
}

// RateLimiter est inactif quand aucun compteur n'est configuré.
type RateLimiter struct {
	counter Counter
	log     *logrus.Entry
}

func NewRateLimiter(counter Counter, log *logrus.Logger) *RateLimiter {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &RateLimiter{counter: counter, log: log.WithField("component", "rate_limit")}
}

// limit refuse la requête au-delà de limit appels par fenêtre pour la clé.
func (l *RateLimiter) limit(c *gin.Context, key string, limit int64, window time.Duration, message string) bool {
	if l.counter == nil {
		return true
	}
	n, err := l.counter.Hit(c.Request.Context(), key, window)
	if err != nil {
		// compteur indisponible : on laisse passer
		l.log.WithError(err).Warn("⚠️ limitation de débit indisponible")
		return true
	}

	c.Header("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
	c.Header("X-RateLimit-Remaining", strconv.FormatInt(max(0, limit-n), 10))
	if n > limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":       message,
			"retry_after": int(window.Seconds()),
		})
		return false
	}
	return true
}

// API limite le nombre de requêtes par IP.
func (l *RateLimiter) API() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.limit(c, "api_requests:"+c.ClientIP(), APIMaxRequests, APICooldown, "Too many requests. Try again in a minute") {
			c.Next()
		}
	}
}

// Cart limite les écritures panier par utilisateur.
func (l *RateLimiter) Cart() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := CurrentUser(c)
		if user == nil {
			c.Next()
			return
		}
		if l.limit(c, "cart_writes:"+user.ID, CartMaxRequests, time.Minute, "Too many cart updates, slow down a little") {
			c.Next()
		}
	}
}

// Signup limite les inscriptions par IP.
func (l *RateLimiter) Signup() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.limit(c, "signup_attempts:"+c.ClientIP(), SignupMaxAttempts, SignupCooldown, "Too many sign-ups. Try again later") {
			c.Next()
		}
	}
}

// Login limite les tentatives par e-mail. Seuls les échecs (401) sont comptés.
func (l *RateLimiter) Login() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.counter == nil {
			c.Next()
			return
		}

		// lire le body sans le consommer
		bodyBytes, _ := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

		var input struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(bodyBytes, &input); err != nil || input.Email == "" {
			c.Next()
			return
		}
		key := "login_failures:" + strings.ToLower(strings.TrimSpace(input.Email))

		// l'essai est compté d'avance, puis oublié si la connexion réussit
		n, err := l.counter.Hit(c.Request.Context(), key, LoginCooldown)
		if err != nil {
			l.log.WithError(err).Warn("⚠️ limitation de débit indisponible")
			c.Next()
			return
		}
		if n > LoginMaxAttempts {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       fmt.Sprintf("Too many failed attempts. Try again in %d minutes", int(LoginCooldown.Minutes())),
				"retry_after": int(LoginCooldown.Seconds()),
			})
			return
		}

		c.Next()

		if c.Writer.Status() == http.StatusOK {
			if err := l.counter.Delete(c.Request.Context(), key); err != nil {
				l.log.WithError(err).WithField("key", key).Warn("⚠️ remise à zéro des échecs de connexion impossible")
			}
		}
	}
}
