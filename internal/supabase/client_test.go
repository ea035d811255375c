package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{URL: srv.URL + "/", APIKey: "anon-key"})
	require.NoError(t, err)
	return c
}

func TestNew_RequiresURLAndKey(t *testing.T) {
	_, err := New(Config{APIKey: "k"})
	assert.Error(t, err)

	_, err = New(Config{URL: "http://localhost"})
	assert.Error(t, err)
}

func TestSelect_BuildsPostgRESTQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/rest/v1/cart", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "id,product:products(*)", q.Get("select"))
		assert.Equal(t, "eq.user-1", q.Get("user_id"))
		assert.Equal(t, "created_at.desc", q.Get("order"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`[{"id":"a"}]`))
	})

	resp, err := c.From("cart").
		Select("id,product:products(*)").
		Eq("user_id", "user-1").
		Order("created_at", false).
		Execute(context.Background())
	require.NoError(t, err)

	var rows []map[string]any
	require.NoError(t, resp.JSON(&rows))
	assert.Len(t, rows, 1)
}

func TestAccessTokenFromContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer user-jwt", r.Header.Get("Authorization"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		_, _ = w.Write([]byte(`[]`))
	})

	ctx := WithAccessToken(context.Background(), "user-jwt")
	_, err := c.From("cart").Execute(ctx)
	require.NoError(t, err)
}

func TestUpdateAndDelete(t *testing.T) {
	var methods []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		assert.Equal(t, "eq.item-1", r.URL.Query().Get("id"))
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		if r.Method == http.MethodPatch {
			body, _ := io.ReadAll(r.Body)
			assert.JSONEq(t, `{"quantity":3}`, string(body))
		}
		_, _ = w.Write([]byte(`[]`))
	})

	ctx := context.Background()
	_, err := c.From("cart").Eq("id", "item-1").Update(ctx, map[string]int{"quantity": 3})
	require.NoError(t, err)
	_, err = c.From("cart").Eq("id", "item-1").Delete(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{http.MethodPatch, http.MethodDelete}, methods)
}

func TestRPC_WithSelect(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/rpc/add_to_cart", r.URL.Path)
		assert.Equal(t, "id,quantity", r.URL.Query().Get("select"))
		var params map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&params))
		assert.Equal(t, "p-1", params["p_product_id"])
		_, _ = w.Write([]byte(`[{"id":"x","quantity":2}]`))
	})

	resp, err := c.RPC(context.Background(), "add_to_cart", map[string]string{"p_product_id": "p-1"}, "id,quantity")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		code    string
		message string
	}{
		{"postgrest", http.StatusConflict, `{"code":"23505","message":"duplicate key"}`, "23505", "duplicate key"},
		{"gotrue", http.StatusBadRequest, `{"error":"invalid_grant","error_description":"Invalid login credentials"}`, "", "Invalid login credentials"},
		{"gotrue msg", http.StatusUnprocessableEntity, `{"code":422,"error_code":"weak_password","msg":"Password should be at least 6 characters"}`, "weak_password", "Password should be at least 6 characters"},
		{"empty body", http.StatusBadGateway, ``, "", "Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.From("orders").Execute(context.Background())
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.code, apiErr.Code)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestAuth_SignInAndSignOut(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/v1/token":
			assert.Equal(t, "password", r.URL.Query().Get("grant_type"))
			var creds credentials
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			assert.Equal(t, "crab@sea.in", creds.Email)
			_, _ = w.Write([]byte(`{"access_token":"jwt","refresh_token":"r","expires_in":3600,"user":{"id":"u-1","email":"crab@sea.in"}}`))
		case "/auth/v1/logout":
			assert.Equal(t, "Bearer jwt", r.Header.Get("Authorization"))
			w.WriteHeader(http.StatusNoContent)
		default:
			t.Errorf("chemin inattendu %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	ctx := context.Background()
	resp, err := c.Auth().SignIn(ctx, "crab@sea.in", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "jwt", resp.AccessToken)
	require.NotNil(t, resp.User)
	assert.Equal(t, "u-1", resp.User.ID)

	require.NoError(t, c.Auth().SignOut(ctx, resp.AccessToken))
}

func TestAuth_SignUpWithoutSession(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"u-2","email":"new@sea.in","role":"authenticated"}`))
	})

	resp, err := c.Auth().SignUp(context.Background(), "new@sea.in", "secret1")
	require.NoError(t, err)
	assert.Empty(t, resp.AccessToken)
	require.NotNil(t, resp.User)
	assert.Equal(t, "u-2", resp.User.ID)
}
