package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func getTestMetrics() (*Metrics, *prometheus.Registry) {
	registry := prometheus.NewRegistry()
	return NewWithRegistry(registry, zap.NewNop()), registry
}

func TestNewWithRegistry_RegistersNamespacedMetricsWithHelp(t *testing.T) {
	m, registry := getTestMetrics()

	// Vectors only appear in Gather once a label set exists
	m.RecordHTTPRequest("GET", "/api/feature", 200, 0)
	m.RecordDBQuery("select", "features", 0, nil)
	m.RecordExternalAPICall("s3/presign", "PUT", 200, 0, nil)
	m.RecordTaskStatusChange("done")
	m.RecordLogin(true)
	m.SetFeaturesByStatus(map[string]int64{"open": 1})

	families, err := registry.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	names := make(map[string]bool)
	for _, mf := range families {
		names[mf.GetName()] = true
		assert.True(t, strings.HasPrefix(mf.GetName(), namespace+"_"), mf.GetName())
		assert.NotEmpty(t, mf.GetHelp(), mf.GetName())
	}

	for _, want := range []string{
		"release_tracker_http_requests_total",
		"release_tracker_db_query_duration_seconds",
		"release_tracker_external_api_requests_total",
		"release_tracker_task_status_changes_total",
		"release_tracker_login_attempts_total",
		"release_tracker_features_total",
		"release_tracker_feature_created_total",
		"release_tracker_db_connections_open",
	} {
		assert.True(t, names[want], "missing %s", want)
	}
}

func TestNewWithRegistry_DuplicateRegistrationPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewWithRegistry(registry, nil)
	assert.Panics(t, func() { NewWithRegistry(registry, nil) })
}

func TestCategorizeStatus(t *testing.T) {
	assert.Equal(t, "2xx", categorizeStatus(204))
	assert.Equal(t, "3xx", categorizeStatus(301))
	assert.Equal(t, "4xx", categorizeStatus(403))
	assert.Equal(t, "5xx", categorizeStatus(503))
	assert.Equal(t, "unknown", categorizeStatus(100))
}

func TestShouldSkipEndpoint(t *testing.T) {
	assert.True(t, ShouldSkipEndpoint("/metrics"))
	assert.True(t, ShouldSkipEndpoint("/health"))
	assert.True(t, ShouldSkipEndpoint("/ready"))
	assert.True(t, ShouldSkipEndpoint("/swagger/index.html"))
	assert.False(t, ShouldSkipEndpoint("/api/feature"))
}

func TestNormalizeEndpoint(t *testing.T) {
	got := normalizeEndpoint("s3/evidence/tasks/123e4567-e89b-12d3-a456-426614174000/file.png")
	assert.Equal(t, "s3/evidence/tasks/{id}/file.png", got)
}
