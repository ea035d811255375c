package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"samudra_back_end/internal/models"
	"samudra_back_end/internal/supabase"
)

// Auth adapte l'API d'authentification Supabase aux sessions du package models.
type Auth struct {
	db  *supabase.Client
	now func() time.Time
}

func NewAuth(db *supabase.Client) *Auth {
	return &Auth{db: db, now: time.Now}
}

func (r *Auth) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	resp, err := r.db.Auth().SignIn(ctx, email, password)
	if err != nil {
		return nil, mapAuthError(err)
	}
	return r.toSession(resp), nil
}

// SignUp retourne une session nil quand le compte attend une confirmation e-mail.
func (r *Auth) SignUp(ctx context.Context, email, password string) (models.User, *models.Session, error) {
	resp, err := r.db.Auth().SignUp(ctx, email, password)
	if err != nil {
		return models.User{}, nil, mapAuthError(err)
	}

	var user models.User
	if resp.User != nil {
		user = models.User{ID: resp.User.ID, Email: resp.User.Email}
	}
	if resp.AccessToken == "" {
		return user, nil, nil
	}
	return user, r.toSession(resp), nil
}

func (r *Auth) SignOut(ctx context.Context, accessToken string) error {
	return r.db.Auth().SignOut(ctx, accessToken)
}

func (r *Auth) toSession(resp *supabase.AuthResponse) *models.Session {
	s := &models.Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}
	switch {
	case resp.ExpiresAt > 0:
		s.ExpiresAt = time.Unix(resp.ExpiresAt, 0)
	case resp.ExpiresIn > 0:
		s.ExpiresAt = r.now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	}
	if resp.User != nil {
		s.User = models.User{ID: resp.User.ID, Email: resp.User.Email}
	}
	return s
}

func mapAuthError(err error) error {
	var apiErr *supabase.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	msg := strings.ToLower(apiErr.Message)
	switch {
	case apiErr.Code == "invalid_credentials" || strings.Contains(msg, "invalid login credentials"):
		return errors.Join(ErrInvalidCredentials, err)
	case apiErr.Code == "user_already_exists" || strings.Contains(msg, "already registered"):
		return errors.Join(ErrEmailTaken, err)
	}
	return err
}
