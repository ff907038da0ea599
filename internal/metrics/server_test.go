package metrics

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rug/pkg/logging"
)

func init() {
	logging.Init(logging.LevelError, logging.FormatText, io.Discard)
}

func TestServer_Healthz(t *testing.T) {
	srv := NewServer(":0", func() Health {
		return Health{Bootstrap: "completed", Routers: 3, QueueLen: 1, Events: map[string]int{"POLL": 3}}
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var h Health
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &h))
	assert.Equal(t, Health{Status: "ok", Bootstrap: "completed", Routers: 3, QueueLen: 1, Events: map[string]int{"POLL": 3}}, h)
}

func TestServer_HealthzUnhealthy(t *testing.T) {
	srv := NewServer(":0", func() Health {
		return Health{Status: "degraded", Bootstrap: "auth-failed"}
	})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "auth-failed")
}

func TestServer_Metrics(t *testing.T) {
	BootstrapAttempts.Inc()
	srv := NewServer(":0", nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "rug_bootstrap_attempts_total")
}

func TestServer_RunStopsOnCancel(t *testing.T) {
	srv := NewServer("127.0.0.1:0", nil)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestServer_RunBadAddress(t *testing.T) {
	srv := NewServer("not-an-address", nil)
	assert.Error(t, srv.Run(context.Background()))
}
