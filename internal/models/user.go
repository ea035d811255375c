package models

import "time"

// User est l'identité minimale conservée après authentification.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Session est délivrée par le service d'authentification distant.
type Session struct {
	AccessToken  string    `json:"-"`
	RefreshToken string    `json:"-"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Expired indique si le jeton d'accès est périmé. Une date nulle n'expire jamais.
func (s *Session) Expired(now time.Time) bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}
