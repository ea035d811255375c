package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"samudra_back_end/internal/middleware"
	"samudra_back_end/internal/supabase"
)

const (
	wsPingInterval = 30 * time.Second
	wsWriteTimeout = 10 * time.Second
)

// CartWebSocket pousse le panier à jour quand une autre session du même
// utilisateur le modifie (GET /api/cart/ws).
func (h *Handler) CartWebSocket(c *gin.Context) {
	ws := middleware.Workspace(c)
	user := middleware.CurrentUser(c)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("❌ Erreur upgrade WebSocket")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sub, err := h.bus.Subscribe(ctx, user.ID)
	if err != nil {
		h.log.WithError(err).WithField("user_id", user.ID).Error("❌ abonnement panier impossible")
		_ = conn.WriteJSON(gin.H{"type": "error", "error": "Realtime sync unavailable"})
		return
	}
	defer sub.Close()

	// lecture : détecte la fermeture côté navigateur
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	write := func(v any) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteJSON(v)
	}
	if err := write(gin.H{"type": "connected", "message": "Cart sync enabled"}); err != nil {
		return
	}

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-sub.Events():
			if !ok {
				return
			}
			// déconnexion ou changement d'utilisateur depuis l'ouverture du socket
			if current := ws.Auth.Current(); current == nil || current.ID != user.ID {
				_ = write(gin.H{"type": "signed_out"})
				return
			}
			// un changement venu d'une autre session impose de relire le panier
			if ev.Origin != ws.ID {
				fetchCtx := supabase.WithAccessToken(ctx, ws.Auth.AccessToken())
				if err := ws.Cart.Fetch(fetchCtx, user.ID); err != nil {
					_ = write(gin.H{"type": "error", "error": "Failed to load cart"})
					continue
				}
			}
			if err := write(gin.H{"type": "cart_updated", "event": ev.Type, "cart": h.cartView(ctx, ws.Cart)}); err != nil {
				h.log.WithError(err).Debug("❌ Erreur envoi WebSocket")
				return
			}
		case <-ticker.C:
			deadline := time.Now().Add(wsWriteTimeout)
			if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				return
			}
		}
	}
}

