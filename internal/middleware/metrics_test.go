package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"release-tracker-api/internal/metrics"
)

func setupMetricsRouter() (*gin.Engine, *metrics.Metrics) {
	gin.SetMode(gin.TestMode)
	m := metrics.NewWithRegistry(prometheus.NewRegistry(), zap.NewNop())
	router := gin.New()
	router.Use(Metrics(m))
	return router, m
}

// For any status code a handler writes, exactly one request is counted under
// the route pattern and the status class.
func TestProperty_HTTPRequestCountedByRouteAndClass(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	classes := map[int]string{2: "2xx", 3: "3xx", 4: "4xx", 5: "5xx"}

	properties.Property("request counted once", prop.ForAll(
		func(status int) bool {
			router, m := setupMetricsRouter()
			router.GET("/api/feature/:id", func(c *gin.Context) {
				c.Status(status)
			})

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/feature/42", nil))

			counted := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/api/feature/:id", classes[status/100]))
			return w.Code == status && counted == 1
		},
		gen.IntRange(200, 599),
	))

	properties.TestingRun(t)
}

func TestMetrics_SkipsProbeEndpoints(t *testing.T) {
	router, m := setupMetricsRouter()
	for _, path := range []string{"/metrics", "/health", "/ready", "/swagger/index.html"} {
		router.GET(path, func(c *gin.Context) { c.Status(http.StatusOK) })
	}

	for _, path := range []string{"/metrics", "/health", "/ready", "/swagger/index.html"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 0, testutil.CollectAndCount(m.HTTPRequestsTotal))
}

func TestMetrics_UnmatchedRoute(t *testing.T) {
	router, m := setupMetricsRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nowhere", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "unmatched", "4xx")))
}
