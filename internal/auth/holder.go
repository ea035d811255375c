// Package auth tient l'identité courante d'une session navigateur : zéro ou
// un utilisateur connecté, avec son jeton d'accès.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"samudra_back_end/internal/models"
)

var ErrNotSignedIn = errors.New("auth: aucun utilisateur connecté")

// Backend est le service d'authentification distant.
type Backend interface {
	SignIn(ctx context.Context, email, password string) (*models.Session, error)
	// SignUp retourne une session nil si le compte doit d'abord être confirmé par e-mail.
	SignUp(ctx context.Context, email, password string) (models.User, *models.Session, error)
	SignOut(ctx context.Context, accessToken string) error
}

type Holder struct {
	backend  Backend
	verifier *TokenVerifier
	log      *logrus.Entry
	now      func() time.Time

	mu      sync.RWMutex
	session *models.Session
}

func NewHolder(backend Backend, verifier *TokenVerifier, log *logrus.Logger) *Holder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Holder{
		backend:  backend,
		verifier: verifier,
		log:      log.WithField("component", "auth"),
		now:      time.Now,
	}
}

func (h *Holder) SignIn(ctx context.Context, email, password string) (models.User, error) {
	session, err := h.backend.SignIn(ctx, email, password)
	if err != nil {
		h.log.WithError(err).WithField("email", email).Warn("❌ connexion refusée")
		return models.User{}, fmt.Errorf("auth: connexion: %w", err)
	}
	if err := h.accept(session); err != nil {
		return models.User{}, err
	}
	h.log.WithField("user_id", session.User.ID).Info("✅ utilisateur connecté")
	return session.User, nil
}

// SignUp crée le compte. pending vaut true quand aucune session n'est ouverte
// en attendant la confirmation de l'e-mail.
func (h *Holder) SignUp(ctx context.Context, email, password string) (user models.User, pending bool, err error) {
	user, session, err := h.backend.SignUp(ctx, email, password)
	if err != nil {
		h.log.WithError(err).WithField("email", email).Warn("❌ inscription refusée")
		return models.User{}, false, fmt.Errorf("auth: inscription: %w", err)
	}
	if session == nil {
		h.log.WithField("email", email).Info("📧 inscription en attente de confirmation")
		return user, true, nil
	}
	if err := h.accept(session); err != nil {
		return models.User{}, false, err
	}
	return session.User, false, nil
}

// SignOut révoque la session distante puis oublie l'identité. Une session déjà
// expirée est oubliée sans appel distant.
func (h *Holder) SignOut(ctx context.Context) error {
	h.mu.RLock()
	session := h.session
	h.mu.RUnlock()

	if session == nil {
		return nil
	}
	if !session.Expired(h.now()) {
		if err := h.backend.SignOut(ctx, session.AccessToken); err != nil {
			h.log.WithError(err).Warn("❌ déconnexion distante échouée")
			return fmt.Errorf("auth: déconnexion: %w", err)
		}
	}

	h.mu.Lock()
	if h.session == session {
		h.session = nil
	}
	h.mu.Unlock()
	h.log.WithField("user_id", session.User.ID).Info("👋 utilisateur déconnecté")
	return nil
}

// Current retourne l'utilisateur connecté, nil si absent ou expiré.
func (h *Holder) Current() *models.User {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.session.Expired(h.now()) {
		return nil
	}
	u := h.session.User
	return &u
}

// Session retourne une copie de la session courante, nil si absente ou expirée.
func (h *Holder) Session() *models.Session {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.session.Expired(h.now()) {
		return nil
	}
	s := *h.session
	return &s
}

func (h *Holder) AccessToken() string {
	if s := h.Session(); s != nil {
		return s.AccessToken
	}
	return ""
}

// accept vérifie le jeton et complète la session avec ses claims.
func (h *Holder) accept(session *models.Session) error {
	if session == nil || session.AccessToken == "" {
		return fmt.Errorf("%w: session vide", ErrInvalidToken)
	}
	claims, err := h.verifier.Parse(session.AccessToken)
	if err != nil {
		h.log.WithError(err).Warn("❌ jeton d'accès rejeté")
		return err
	}
	if session.User.ID == "" {
		session.User.ID = claims.Subject
	}
	if claims.Subject != "" && claims.Subject != session.User.ID {
		return fmt.Errorf("%w: sujet %q différent de l'utilisateur", ErrInvalidToken, claims.Subject)
	}
	if session.User.Email == "" {
		session.User.Email = claims.Email
	}
	if !claims.ExpiresAt.IsZero() {
		session.ExpiresAt = claims.ExpiresAt
	}

	h.mu.Lock()
	h.session = session
	h.mu.Unlock()
	return nil
}
