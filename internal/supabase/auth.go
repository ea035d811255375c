package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Auth retourne le client d'authentification (GoTrue).
func (c *Client) Auth() *AuthClient {
	return &AuthClient{client: c}
}

type AuthClient struct {
	client *Client
}

// AuthResponse est la réponse d'une connexion. Lors d'une inscription avec
// confirmation par e-mail, AccessToken est vide et seul User est rempli.
type AuthResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"`
	RefreshToken string `json:"refresh_token"`
	User         *User  `json:"user"`
}

type User struct {
	ID               string         `json:"id"`
	Email            string         `json:"email"`
	Role             string         `json:"role"`
	EmailConfirmedAt string         `json:"email_confirmed_at"`
	CreatedAt        string         `json:"created_at"`
	UserMetadata     map[string]any `json:"user_metadata"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp crée un compte.
func (a *AuthClient) SignUp(ctx context.Context, email, password string) (*AuthResponse, error) {
	resp, err := a.post(ctx, "/auth/v1/signup", credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var out AuthResponse
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	if out.User == nil && out.AccessToken == "" {
		// confirmation e-mail requise : GoTrue renvoie l'utilisateur seul
		var user User
		if err := resp.JSON(&user); err != nil {
			return nil, err
		}
		if user.ID != "" {
			out.User = &user
		}
	}
	return &out, nil
}

// SignIn connecte un utilisateur par e-mail et mot de passe.
func (a *AuthClient) SignIn(ctx context.Context, email, password string) (*AuthResponse, error) {
	resp, err := a.post(ctx, "/auth/v1/token?grant_type=password", credentials{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	var out AuthResponse
	if err := resp.JSON(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SignOut révoque la session portée par accessToken.
func (a *AuthClient) SignOut(ctx context.Context, accessToken string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.client.baseURL+"/auth/v1/logout", nil)
	if err != nil {
		return fmt.Errorf("supabase: création requête: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	a.client.setHeaders(req)

	_, err = a.client.do(req)
	return err
}

func (a *AuthClient) post(ctx context.Context, path string, body any) (*Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("supabase: encodage: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.client.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("supabase: création requête: %w", err)
	}
	a.client.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	return a.client.do(req)
}
