package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"samudra_back_end/internal/models"
	"samudra_back_end/internal/session"
	"samudra_back_end/internal/supabase"
)

const (
	keyWorkspace = "workspace"
	keyUser      = "user"
)

// Session attache l'espace du navigateur au contexte gin.
func Session(reg *session.Registry, log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := reg.Load(c.Writer, c.Request)
		if err != nil {
			log.WithError(err).Error("❌ chargement de session impossible")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Session unavailable"})
			return
		}
		c.Set(keyWorkspace, ws)
		if user := ws.Auth.Current(); user != nil {
			c.Set(keyUser, user)
		}
		c.Next()
	}
}

// RequireUser refuse la requête si aucun utilisateur n'est connecté.
func RequireUser(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": message})
			return
		}
		c.Next()
	}
}

func Workspace(c *gin.Context) *session.Workspace {
	ws, _ := c.Get(keyWorkspace)
	w, _ := ws.(*session.Workspace)
	return w
}

func CurrentUser(c *gin.Context) *models.User {
	u, _ := c.Get(keyUser)
	user, _ := u.(*models.User)
	return user
}

// UserContext est le contexte de la requête portant le jeton de l'utilisateur,
// requis par les règles d'accès du service de données.
func UserContext(c *gin.Context) context.Context {
	ctx := c.Request.Context()
	if ws := Workspace(c); ws != nil {
		if token := ws.Auth.AccessToken(); token != "" {
			ctx = supabase.WithAccessToken(ctx, token)
		}
	}
	return ctx
}
