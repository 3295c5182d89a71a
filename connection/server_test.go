package connection

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"taskboard/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryRouter(t *testing.T, cfg *Config) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	recordStore, closer, err := OpenStore(context.Background(), cfg, logger)
	require.NoError(t, err)
	assert.Nil(t, closer)

	svc := services.NewTaskService(recordStore, cfg.DatabaseID(), time.Second, logger)
	require.NoError(t, svc.CheckSchema(context.Background()))
	return NewRouter(cfg, svc, logger)
}

func TestRouterServesTasksAndHealth(t *testing.T) {
	router := memoryRouter(t, &Config{Backend: BackendMemory})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/tasks", strings.NewReader(`{"title": "Buy milk"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/debug/store-auth", nil))
	assert.Equal(t, http.StatusNotImplemented, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error": "Not found"}`, w.Body.String())
}

func TestRouterRequiresTokenWhenSecretSet(t *testing.T) {
	router := memoryRouter(t, &Config{Backend: BackendMemory, JWTSecret: "s3cret"})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := services.CreateAccessToken("s3cret", "board-ui", time.Hour)
	require.NoError(t, err)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// health stays public
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterCORS(t *testing.T) {
	router := memoryRouter(t, &Config{Backend: BackendMemory, CORSAllowOrigins: []string{"http://localhost:5173"}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterNotionUnknownIDsAreNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"object": "error", "status": 400, "code": "validation_error",
			"message": "path failed validation: path.page_id should be a valid uuid"}`)
	}))
	defer srv.Close()

	cfg := &Config{
		Backend:          BackendNotion,
		NotionToken:      "secret_abc",
		NotionDatabaseID: "db-1",
		NotionBaseURL:    srv.URL,
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	recordStore, _, err := OpenStore(context.Background(), cfg, logger)
	require.NoError(t, err)
	router := NewRouter(cfg, services.NewTaskService(recordStore, cfg.DatabaseID(), time.Second, logger), logger)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error": "Task not found: missing"}`, w.Body.String())
	assert.EqualValues(t, 0, requests.Load())

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/api/tasks/missing", strings.NewReader(`{"status": "已解决"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/tasks/59833787-2cf9-4fdf-8782-e53db20768a5", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.EqualValues(t, 1, requests.Load())
}
