package session

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"samudra_back_end/internal/auth"
	"samudra_back_end/internal/cart"
	"samudra_back_end/internal/repository"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	backend := repository.NewMemory("secret")
	factory := func() (*auth.Holder, *cart.Container) {
		return auth.NewHolder(backend, auth.NewTokenVerifier("secret"), log), cart.New(backend, log)
	}
	store := NewCookieStore("0123456789abcdef0123456789abcdef", false, time.Hour)
	return NewRegistry(store, factory, time.Hour, log)
}

func TestLoad_ReusesWorkspaceFromCookie(t *testing.T) {
	r := newRegistry(t)

	w := httptest.NewRecorder()
	first, err := r.Load(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.NotNil(t, first.Auth)
	require.NotNil(t, first.Cart)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	again, err := r.Load(httptest.NewRecorder(), req)
	require.NoError(t, err)
	assert.Same(t, first, again)
	assert.Equal(t, 1, r.Len())
}

func TestLoad_SeparateBrowsers(t *testing.T) {
	r := newRegistry(t)

	a, err := r.Load(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	b, err := r.Load(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotSame(t, a.Cart, b.Cart)
}

func TestLoad_ForgedCookieGetsNewWorkspace(t *testing.T) {
	r := newRegistry(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "forged"})
	ws, err := r.Load(httptest.NewRecorder(), req)
	require.NoError(t, err)
	assert.NotEmpty(t, ws.ID)
}

func TestSweep(t *testing.T) {
	r := newRegistry(t)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	_, err := r.Load(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	now = now.Add(30 * time.Minute)
	assert.Equal(t, 0, r.Sweep())

	now = now.Add(2 * time.Hour)
	assert.Equal(t, 1, r.Sweep())
	assert.Equal(t, 0, r.Len())
}
