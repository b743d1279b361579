package middleware_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/larder-app/larder/backend/internal/logging"
	"github.com/larder-app/larder/backend/internal/middleware"
)

func httpDo(r http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	base := logging.NewWithWriter(&buf, "info", "json")

	var seenRequestID string
	r := gin.New()
	r.Use(middleware.RequestLogger(base))
	r.GET("/teapot", func(c *gin.Context) {
		seenRequestID = logging.RequestIDFromContext(c.Request.Context())
		logging.FromContext(c.Request.Context()).Info("inside handler")
		c.Status(http.StatusTeapot)
	})

	w := httpDo(r, http.MethodGet, "/teapot")
	assert.Equal(t, http.StatusTeapot, w.Code)

	requestID := w.Header().Get(middleware.RequestIDHeader)
	require.NotEmpty(t, requestID)
	assert.Equal(t, requestID, seenRequestID)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)

	var handlerLine, completed map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &handlerLine))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &completed))

	assert.Equal(t, requestID, handlerLine["request_id"])
	assert.Equal(t, "request completed", completed["msg"])
	assert.Equal(t, "WARN", completed["level"])
	assert.Equal(t, float64(http.StatusTeapot), completed["status"])
	assert.Equal(t, "/teapot", completed["path"])
}

func TestRequestLoggerKeepsIncomingRequestID(t *testing.T) {
	var buf bytes.Buffer
	r := gin.New()
	r.Use(middleware.RequestLogger(logging.NewWithWriter(&buf, "info", "json")))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(middleware.RequestIDHeader))
	assert.Contains(t, buf.String(), `"request_id":"req-123"`)
}
