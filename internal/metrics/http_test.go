package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, provider *Provider) string {
	t.Helper()
	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	provider, err := NewProvider("test_app")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), "test_app"))
	router.POST("/payments/webhook", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	router.GET("/v1/webhook-events/:id", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/payments/webhook", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	for _, id := range []string{"a", "b"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/webhook-events/"+id, nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wp-login.php", nil))

	output := scrape(t, provider)

	assertBizMetricLine(t, output, `test_app_http_requests_total`,
		`method="POST".*path="/payments/webhook".*status_code="200"`, `3`)
	assertBizMetricLine(t, output, `test_app_http_requests_total`,
		`method="GET".*path="/v1/webhook-events/:id".*status_code="404"`, `2`)
	assertBizMetricLine(t, output, `test_app_http_requests_total`,
		`path="unknown"`, `1`)
	assert.NotContains(t, output, "wp-login")
}

func TestRouteLabel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "/v1/webhook-events/:id", expected: "/v1/webhook-events/:id"},
		{input: "", expected: "unknown"},
		{input: "/", expected: "/"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, routeLabel(tt.input))
	}
}
