package app

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"twopane/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:  config.ServerConfig{Host: "127.0.0.1", Port: 8080, ShutdownTimeout: time.Second},
		Lookup:  config.LookupConfig{BaseURL: "http://127.0.0.1:1", Timeout: time.Second},
		Session: config.SessionConfig{TTL: time.Minute, SweepInterval: 10 * time.Millisecond, CookieName: "sid"},
		Log:     config.LogConfig{Level: "info", Format: "json"},
		CORS:    config.CORSConfig{AllowedOrigins: "*", AllowedMethods: "GET,POST", AllowedHeaders: "Content-Type"},
	}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestApp_Routes(t *testing.T) {
	a := New(testConfig(), testLogger())
	t.Cleanup(a.store.Close)

	tests := []struct {
		path     string
		want     int
		contains string
	}{
		{"/", http.StatusOK, "Tic Tac Toe"},
		{"/healthz", http.StatusOK, `"status":"ok"`},
		{"/static/script.js", http.StatusOK, "learnMoreBtn"},
		{"/static/style.css", http.StatusOK, ".square"},
		{"/nope", http.StatusNotFound, ""},
	}
	for _, tt := range tests {
		rec := httptest.NewRecorder()
		a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
		assert.Equal(t, tt.want, rec.Code, tt.path)
		assert.Contains(t, rec.Body.String(), tt.contains, tt.path)
		assert.NotEmpty(t, rec.Header().Get("X-Request-Id"), tt.path)
	}
}

func TestApp_ServeAndShutdown(t *testing.T) {
	a := New(testConfig(), testLogger())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.True(t, strings.Contains(string(body), "ok"))

	a.store.Create()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.Equal(t, 0, a.store.Len())
}
