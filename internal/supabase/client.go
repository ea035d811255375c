// Package supabase est un client minimal pour l'API REST (PostgREST) et
// l'API d'authentification (GoTrue) d'un projet Supabase.
package supabase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// Client parle à un projet Supabase avec la clé publique (anon).
// Les requêtes faites pour un utilisateur portent son jeton via WithAccessToken.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("supabase: URL requise")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("supabase: clé API requise")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
	}, nil
}

type accessTokenKey struct{}

// WithAccessToken attache le jeton de l'utilisateur au contexte. Les appels
// faits avec ce contexte passent les règles RLS au nom de cet utilisateur.
func WithAccessToken(ctx context.Context, token string) context.Context {
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, accessTokenKey{}, token)
}

// AccessTokenFrom retourne le jeton attaché au contexte, s'il existe.
func AccessTokenFrom(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(accessTokenKey{}).(string)
	return token, ok && token != ""
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	bearer := c.apiKey
	if token, ok := AccessTokenFrom(req.Context()); ok {
		bearer = token
	}
	if req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
}

// do exécute la requête et transforme tout statut >= 400 en *APIError.
func (c *Client) do(req *http.Request) (*Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("supabase: requête %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("supabase: lecture réponse: %w", err)
	}

	out := &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
	}
	if err := out.Error(); err != nil {
		return nil, err
	}
	return out, nil
}
