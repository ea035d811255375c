// Package session associe chaque navigateur (cookie signé) à son espace de
// travail : l'identité connectée et la copie locale du panier.
package session

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/sirupsen/logrus"

	"samudra_back_end/internal/auth"
	"samudra_back_end/internal/cart"
)

const (
	CookieName = "samudra_session"
	keyID      = "sid"
)

type Workspace struct {
	ID   string
	Auth *auth.Holder
	Cart *cart.Container

	mu       sync.Mutex
	lastSeen time.Time
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

func (w *Workspace) idleSince(now time.Time) time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return now.Sub(w.lastSeen)
}

// Factory construit un espace vide pour un nouveau navigateur.
type Factory func() (*auth.Holder, *cart.Container)

type Registry struct {
	store   sessions.Store
	factory Factory
	idleTTL time.Duration
	log     *logrus.Entry
	now     func() time.Time

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

// NewCookieStore crée le magasin de cookies signés des sessions navigateur.
func NewCookieStore(secret string, secure bool, maxAge time.Duration) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

func NewRegistry(store sessions.Store, factory Factory, idleTTL time.Duration, log *logrus.Logger) *Registry {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Registry{
		store:      store,
		factory:    factory,
		idleTTL:    idleTTL,
		log:        log.WithField("component", "session"),
		now:        time.Now,
		workspaces: make(map[string]*Workspace),
	}
}

// Load retourne l'espace du navigateur, en le créant (avec son cookie) au besoin.
func (r *Registry) Load(w http.ResponseWriter, req *http.Request) (*Workspace, error) {
	// un cookie invalide (secret changé) donne une session neuve
	sess, err := r.store.Get(req, CookieName)
	if err != nil {
		r.log.WithError(err).Debug("⚠️ cookie de session illisible, nouvelle session")
	}

	id, _ := sess.Values[keyID].(string)
	if ws := r.lookup(id); ws != nil {
		return ws, nil
	}

	id = uuid.NewString()
	sess.Values[keyID] = id
	if err := sess.Save(req, w); err != nil {
		return nil, err
	}

	holder, container := r.factory()
	ws := &Workspace{ID: id, Auth: holder, Cart: container, lastSeen: r.now()}
	r.mu.Lock()
	r.workspaces[id] = ws
	r.mu.Unlock()
	r.log.WithField("session_id", id).Debug("🆕 nouvel espace de session")
	return ws, nil
}

func (r *Registry) lookup(id string) *Workspace {
	if id == "" {
		return nil
	}
	r.mu.Lock()
	ws := r.workspaces[id]
	r.mu.Unlock()
	if ws != nil {
		ws.touch(r.now())
	}
	return ws
}

// Sweep oublie les espaces inactifs depuis plus de idleTTL.
func (r *Registry) Sweep() int {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, ws := range r.workspaces {
		if ws.idleSince(now) > r.idleTTL {
			delete(r.workspaces, id)
			removed++
		}
	}
	if removed > 0 {
		r.log.WithField("count", removed).Info("🧹 espaces de session inactifs supprimés")
	}
	return removed
}

// Run balaie périodiquement jusqu'à l'annulation de ctx.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}
