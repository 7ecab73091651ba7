package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"timesheet-service/internal/app"
	"timesheet-service/internal/auth"
	"timesheet-service/internal/config"
	"timesheet-service/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:    "test",
		Server: config.ServerConfig{Port: "0"},
		Database: config.DatabaseConfig{
			Driver: config.DriverSQLite,
			Path:   ":memory:",
		},
		Events: config.EventsConfig{Driver: config.EventsNone},
		Auth:   config.AuthConfig{Issuer: "timesheet-service"},
	}
}

func newApp(t *testing.T, cfg *config.Config) *app.App {
	t.Helper()

	application, err := app.New(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = application.Shutdown(ctx)
	})
	return application
}

func serve(handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w
}

func TestApp_Routes(t *testing.T) {
	router := newApp(t, testConfig()).Router()

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/ready", "", nil).Code)

	w := serve(router, http.MethodGet, "/projects/999", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Not found"}`, w.Body.String())

	w = serve(router, http.MethodPost, "/timesheets", "", map[string]any{"projectId": 3, "createdAt": "2024-05-01", "minutes": 500})
	require.Equal(t, http.StatusCreated, w.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "2024-05-01", created["createdAt"])

	w = serve(router, http.MethodGet, "/timesheets", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("Content-Type"))
}

func TestApp_AuthEnabled(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.JWTSecret = "test-secret"
	router := newApp(t, cfg).Router()

	// Probes stay public
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/health", "", nil).Code)

	assert.Equal(t, http.StatusUnauthorized, serve(router, http.MethodGet, "/timesheets", "", nil).Code)

	tokens, err := auth.NewTokenManager("test-secret", "timesheet-service")
	require.NoError(t, err)
	token, err := tokens.GenerateToken("tester", time.Minute)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/timesheets", token, nil).Code)
}

func TestApp_RunAndShutdown(t *testing.T) {
	application, err := app.New(context.Background(), testConfig(), logger.Discard())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- application.Run() }()

	// Give the listener a moment before shutting down.
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, application.Shutdown(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Shutdown")
	}
}

func TestApp_InvalidDatabase(t *testing.T) {
	cfg := testConfig()
	cfg.Database = config.DatabaseConfig{
		Driver: config.DriverPostgres,
		Host:   "127.0.0.1",
		Port:   "1",
		DBName: "none",
	}

	_, err := app.New(context.Background(), cfg, logger.Discard())
	assert.Error(t, err)
}
