package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRecordsRouteTemplate(t *testing.T) {
	e := echo.New()
	e.Use(Middleware())
	e.GET("/v1/products/:id", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})

	before := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/v1/products/:id", "204"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/products/42", nil))
	require.Equal(t, http.StatusNoContent, rec.Code)

	after := testutil.ToFloat64(httpRequests.WithLabelValues(http.MethodGet, "/v1/products/:id", "204"))
	assert.Equal(t, before+1, after)
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordCacheLookup("product", "hit")
	RecordDispatch("log", "success")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "storefront_cache_lookups_total"))
	assert.True(t, strings.Contains(body, "storefront_dispatcher_jobs_total"))
}

func TestSetSystemUsage(t *testing.T) {
	SetSystemUsage(12.5, 2048)
	assert.Equal(t, 12.5, testutil.ToFloat64(systemCPU))
	assert.Equal(t, 2048.0, testutil.ToFloat64(systemMemory))
}
