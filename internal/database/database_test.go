package database

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"samudra_back_end/internal/config"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := ConnectRedis(context.Background(), &config.Config{RedisHost: mr.Addr()}, quietLogger())
	require.NoError(t, err)
	defer client.Close()
	assert.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())
}

func TestConnectRedis_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := ConnectRedis(context.Background(), &config.Config{RedisHost: addr}, quietLogger())
	assert.Error(t, err)
}

func TestConnectElastic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"version":{"number":"8.19.0"},"tagline":"You Know, for Search"}`))
	}))
	defer srv.Close()

	client, err := ConnectElastic(context.Background(), &config.Config{ElasticURL: srv.URL}, quietLogger())
	require.NoError(t, err)
	assert.NotNil(t, client)
}
