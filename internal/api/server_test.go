package api

import (
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/royaltydesk/royaltydesk-server/internal/auth"
	"github.com/royaltydesk/royaltydesk-server/internal/search"
	"github.com/royaltydesk/royaltydesk-server/internal/service"
	"github.com/royaltydesk/royaltydesk-server/internal/store"
	"github.com/royaltydesk/royaltydesk-server/internal/validation"
)

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api humatest.TestAPI
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := store.Open(filepath.Join(tmpDir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	idx, err := search.NewSearchIndex(search.Options{DataPath: tmpDir, Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = idx.Close() })

	tokens, err := auth.NewTokenService(strings.Repeat("cd", 32), 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)

	validator := validation.New()

	exchangeService := service.NewExchangeRateService(st, nil, service.ExchangeRateConfig{}, logger)
	bookService := service.NewBookService(st, idx, validator, logger)

	services := &Services{
		Auth:      service.NewAuthService(st, tokens, validator, logger),
		Import:    service.NewImportService(st, validator, logger),
		Migration: service.NewMigrationService(st, bookService, logger),
		Book:      bookService,
		Analytics: service.NewAnalyticsService(st, exchangeService, logger),
		Exchange:  exchangeService,
	}

	s := NewServer(st, services, logger)
	t.Cleanup(s.Stop)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.api),
	}
}

// setupAdmin runs initial setup and returns the admin's access token.
func (ts *testServer) setupAdmin(t *testing.T) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/setup", map[string]any{
		"email":        "admin@example.com",
		"password":     "SecurePassword123!",
		"display_name": "Admin",
	})
	require.Equal(t, http.StatusOK, resp.Code, "setup failed: %s", resp.Body.String())

	var envelope testEnvelope[AuthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data.AccessToken
}

func bearer(token string) string {
	return "Authorization: Bearer " + token
}
