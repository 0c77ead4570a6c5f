package api

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cozyshelfapp/shelf-server/internal/auth"
	"github.com/cozyshelfapp/shelf-server/internal/daily"
	"github.com/cozyshelfapp/shelf-server/internal/logger"
	"github.com/cozyshelfapp/shelf-server/internal/service"
	"github.com/cozyshelfapp/shelf-server/internal/sse"
	"github.com/cozyshelfapp/shelf-server/internal/store"
	"github.com/cozyshelfapp/shelf-server/internal/validation"
)

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	log := logger.NewDiscard()

	manager := sse.NewManager(log)
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)
	t.Cleanup(func() {
		cancel()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
		defer shutdownCancel()
		_ = manager.Shutdown(shutdownCtx)
	})

	s, err := store.NewInMemory(nil, manager)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	keyHex, err := auth.GenerateKeyHex()
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(keyHex, time.Hour)
	require.NoError(t, err)

	v := validation.New()
	gen := daily.NewGenerator(s, log)

	services := Services{
		Auth:     service.NewAuthService(s, tokens, v, log),
		Books:    service.NewBookService(s, nil, v, log),
		Stickers: service.NewStickerService(s, gen, v, log),
		Goals:    service.NewGoalService(s, v, log),
		Doodles:  service.NewDoodleService(s, v, log),
		Backups:  service.NewBackupService(s, log),
	}

	server := NewServer(services, sse.NewHandler(manager, log), log, []string{"*"})
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// doJSON issues a request with an optional bearer token and decodes the
// response envelope.
func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, body any) (int, Envelope) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env Envelope
	require.NoError(t, json.UnmarshalRead(resp.Body, &env))
	return resp.StatusCode, env
}

// signupAndLogin creates an account and returns a usable access token.
func signupAndLogin(t *testing.T, ts *httptest.Server, email string) string {
	t.Helper()

	status, env := doJSON(t, ts, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email":        email,
		"password":     "hunter22hunter22",
		"display_name": "Reader",
	})
	require.Equal(t, http.StatusCreated, status)
	require.True(t, env.Success)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	token, ok := data["access_token"].(string)
	require.True(t, ok)
	require.NotEmpty(t, token)
	return token
}

func TestHealthz(t *testing.T) {
	ts := setupTestServer(t)

	status, env := doJSON(t, ts, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)
}

func TestAuthFlow(t *testing.T) {
	ts := setupTestServer(t)

	token := signupAndLogin(t, ts, "reader@example.com")

	// A second signup with the same email is rejected.
	status, env := doJSON(t, ts, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email":        "reader@example.com",
		"password":     "hunter22hunter22",
		"display_name": "Reader",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)

	// Login with the right password works and with the wrong one does not.
	status, env = doJSON(t, ts, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "reader@example.com",
		"password": "hunter22hunter22",
	})
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, env.Success)

	status, env = doJSON(t, ts, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"email":    "reader@example.com",
		"password": "wrong password!!",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)

	// /auth/me reflects the signed-up user and omits the password hash.
	status, env = doJSON(t, ts, http.MethodGet, "/api/v1/auth/me", token, nil)
	require.Equal(t, http.StatusOK, status)
	me, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "reader@example.com", me["email"])
	assert.NotContains(t, me, "password_hash")
}

func TestRequireAuth(t *testing.T) {
	ts := setupTestServer(t)

	status, env := doJSON(t, ts, http.MethodGet, "/api/v1/books", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.False(t, env.Success)

	status, _ = doJSON(t, ts, http.MethodGet, "/api/v1/books", "not-a-real-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestBookCRUD(t *testing.T) {
	ts := setupTestServer(t)
	token := signupAndLogin(t, ts, "reader@example.com")

	status, env := doJSON(t, ts, http.MethodPost, "/api/v1/books", token, map[string]any{
		"title":  "The Dispossessed",
		"status": "toread",
	})
	require.Equal(t, http.StatusCreated, status)
	created, ok := env.Data.(map[string]any)
	require.True(t, ok)
	bookID, ok := created["id"].(string)
	require.True(t, ok)
	assert.Equal(t, "The Dispossessed", created["title"])

	status, env = doJSON(t, ts, http.MethodPatch, "/api/v1/books/"+bookID, token, map[string]any{
		"status": "read",
		"rating": 5,
	})
	require.Equal(t, http.StatusOK, status)
	updated, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "read", updated["status"])
	assert.Equal(t, float64(5), updated["rating"])

	status, env = doJSON(t, ts, http.MethodGet, "/api/v1/books?status=read", token, nil)
	require.Equal(t, http.StatusOK, status)
	books, ok := env.Data.([]any)
	require.True(t, ok)
	require.Len(t, books, 1)

	status, env = doJSON(t, ts, http.MethodDelete, "/api/v1/books/"+bookID, token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, ts, http.MethodGet, "/api/v1/books/"+bookID, token, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestBookValidationError(t *testing.T) {
	ts := setupTestServer(t)
	token := signupAndLogin(t, ts, "reader@example.com")

	status, env := doJSON(t, ts, http.MethodPost, "/api/v1/books", token, map[string]any{
		"title":  "",
		"status": "banana",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.False(t, env.Success)
	require.NotNil(t, env.Error)
	assert.NotEmpty(t, env.Error.Details)
}

func TestGoalLifecycle(t *testing.T) {
	ts := setupTestServer(t)
	token := signupAndLogin(t, ts, "reader@example.com")

	status, env := doJSON(t, ts, http.MethodPost, "/api/v1/goals", token, map[string]any{
		"text": "finish three novels this month",
	})
	require.Equal(t, http.StatusCreated, status)
	goal, ok := env.Data.(map[string]any)
	require.True(t, ok)
	goalID, ok := goal["id"].(string)
	require.True(t, ok)

	status, env = doJSON(t, ts, http.MethodPatch, "/api/v1/goals/"+goalID, token, map[string]any{
		"done": true,
	})
	require.Equal(t, http.StatusOK, status)
	updated, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, updated["done"])

	status, _ = doJSON(t, ts, http.MethodDelete, "/api/v1/goals/"+goalID, token, nil)
	assert.Equal(t, http.StatusOK, status)
}

func TestStickersAndDaily(t *testing.T) {
	ts := setupTestServer(t)
	token := signupAndLogin(t, ts, "reader@example.com")

	// Signup seeds the starter pack.
	status, env := doJSON(t, ts, http.MethodGet, "/api/v1/stickers", token, nil)
	require.Equal(t, http.StatusOK, status)
	stickers, ok := env.Data.([]any)
	require.True(t, ok)
	assert.NotEmpty(t, stickers)

	// The first daily grant succeeds, the second is a no-op.
	status, env = doJSON(t, ts, http.MethodPost, "/api/v1/stickers/daily", token, nil)
	require.Equal(t, http.StatusCreated, status)
	grant, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, grant["granted"])

	status, env = doJSON(t, ts, http.MethodPost, "/api/v1/stickers/daily", token, nil)
	require.Equal(t, http.StatusOK, status)
	grant, ok = env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, grant["granted"])
}

func TestExportImportRoundTrip(t *testing.T) {
	ts := setupTestServer(t)
	token := signupAndLogin(t, ts, "reader@example.com")

	for i := range 3 {
		status, _ := doJSON(t, ts, http.MethodPost, "/api/v1/books", token, map[string]any{
			"title":  fmt.Sprintf("Book %d", i),
			"status": "toread",
		})
		require.Equal(t, http.StatusCreated, status)
	}

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/export", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")

	var exported bytes.Buffer
	_, err = exported.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(exported.String(), "Book 0"))

	// Importing into a second account lands the same books there.
	otherToken := signupAndLogin(t, ts, "other@example.com")

	importReq, err := http.NewRequest(http.MethodPost, ts.URL+"/api/v1/import", &exported)
	require.NoError(t, err)
	importReq.Header.Set("Authorization", "Bearer "+otherToken)
	importResp, err := ts.Client().Do(importReq)
	require.NoError(t, err)
	defer importResp.Body.Close()
	require.Equal(t, http.StatusOK, importResp.StatusCode)

	var env Envelope
	require.NoError(t, json.UnmarshalRead(importResp.Body, &env))
	result, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(3), result["books"])
}

func TestDoodleEndpoints(t *testing.T) {
	ts := setupTestServer(t)
	token := signupAndLogin(t, ts, "reader@example.com")

	status, env := doJSON(t, ts, http.MethodPost, "/api/v1/books", token, map[string]any{
		"title":  "Sketchbook",
		"status": "toread",
	})
	require.Equal(t, http.StatusCreated, status)
	book, ok := env.Data.(map[string]any)
	require.True(t, ok)
	bookID := book["id"].(string)

	status, env = doJSON(t, ts, http.MethodPut, "/api/v1/books/"+bookID+"/doodle", token, map[string]any{
		"strokes": []map[string]any{{
			"color": "#336699",
			"width": 4,
			"points": []map[string]any{
				{"x": 10, "y": 10},
				{"x": 200, "y": 150},
				{"x": 400, "y": 300},
			},
		}},
	})
	require.Equal(t, http.StatusOK, status)
	doodle, ok := env.Data.(map[string]any)
	require.True(t, ok)
	strokes, ok := doodle["strokes"].([]any)
	require.True(t, ok)
	assert.Len(t, strokes, 1)

	// The thumbnail renders as a real PNG.
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/v1/books/"+bookID+"/doodle/thumbnail.png", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	status, env = doJSON(t, ts, http.MethodDelete, "/api/v1/books/"+bookID+"/doodle", token, nil)
	require.Equal(t, http.StatusOK, status)
	cleared, ok := env.Data.(map[string]any)
	require.True(t, ok)
	assert.Empty(t, cleared["strokes"])
}
