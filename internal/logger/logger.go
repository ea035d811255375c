// Package logger configure logrus et journalise les requêtes HTTP.
package logger

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func New(level, format string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("logger: niveau %q: %w", level, err)
	}

	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(lvl)
	switch format {
	case "json":
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	case "text", "":
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("logger: format %q inconnu", format)
	}
	return l, nil
}

// Requests journalise chaque requête : méthode, route, statut, durée.
func Requests(l *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		entry := l.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"status":   status,
			"duration": time.Since(start).String(),
			"ip":       c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			entry.Error("❌ requête")
		case status >= 400:
			entry.Warn("⚠️ requête")
		default:
			entry.Info("➡️ requête")
		}
	}
}
