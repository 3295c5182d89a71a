package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	router := gin.New()
	router.Use(RequestLogger(logger))
	router.GET("/api/tasks", func(c *gin.Context) { c.JSON(http.StatusOK, []string{}) })
	router.GET("/api/tasks/:id", func(c *gin.Context) { c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"}) })
	router.POST("/api/tasks", func(c *gin.Context) { c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"}) })

	tests := []struct {
		method string
		path   string
		status int
		level  string
	}{
		{http.MethodGet, "/api/tasks", http.StatusOK, "INFO"},
		{http.MethodGet, "/api/tasks/abc", http.StatusNotFound, "WARN"},
		{http.MethodPost, "/api/tasks", http.StatusInternalServerError, "ERROR"},
	}
	for _, tt := range tests {
		buf.Reset()
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
		require.Equal(t, tt.status, w.Code)

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 1)

		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
		assert.Equal(t, "request", entry["msg"])
		assert.Equal(t, tt.level, entry["level"])
		assert.Equal(t, tt.method, entry["method"])
		assert.Equal(t, tt.path, entry["path"])
		assert.EqualValues(t, tt.status, entry["status"])
		assert.Contains(t, entry, "latency")
	}
}
