package metrics

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"release-tracker-api/internal/database"
	"release-tracker-api/internal/domain"
)

func getCounterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, counter.Write(metric))
	return metric.Counter.GetValue()
}

func getGaugeValue(t *testing.T, gauge prometheus.Gauge) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, gauge.Write(metric))
	return metric.Gauge.GetValue()
}

func TestBusinessCounters(t *testing.T) {
	m, _ := getTestMetrics()

	m.IncrementFeatureCreated()
	m.IncrementFeatureCreated()
	m.IncrementAttachmentUploaded()
	m.RecordTaskStatusChange("review")
	m.RecordLogin(false)

	assert.Equal(t, 2.0, getCounterValue(t, m.FeatureCreatedTotal))
	assert.Equal(t, 1.0, getCounterValue(t, m.AttachmentsUploadedTotal))
	assert.Equal(t, 1.0, getCounterValue(t, m.TaskStatusChangesTotal.WithLabelValues("review")))
	assert.Equal(t, 1.0, getCounterValue(t, m.LoginAttemptsTotal.WithLabelValues("failure")))
	assert.Equal(t, 0.0, getCounterValue(t, m.LoginAttemptsTotal.WithLabelValues("success")))
}

func TestSetByStatus_ResetsStaleStatuses(t *testing.T) {
	m, registry := getTestMetrics()

	m.SetTasksByStatus(map[string]int64{"open": 3, "done": 1})
	m.SetTasksByStatus(map[string]int64{"done": 4})

	assert.Equal(t, 4.0, getGaugeValue(t, m.TasksTotal.WithLabelValues("done")))

	families, err := registry.Gather()
	require.NoError(t, err)
	var statuses []string
	for _, mf := range families {
		if mf.GetName() != "release_tracker_tasks_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			statuses = append(statuses, metric.GetLabel()[0].GetValue())
		}
	}
	assert.Equal(t, []string{"done"}, statuses)
}

func TestUpdateDBStats(t *testing.T) {
	m, _ := getTestMetrics()

	m.UpdateDBStats(sql.DBStats{
		MaxOpenConnections: 25,
		OpenConnections:    4,
		InUse:              3,
		Idle:               1,
		WaitCount:          7,
		WaitDuration:       2 * time.Second,
	})
	// Pool stats are cumulative; publishing twice must not double them
	m.UpdateDBStats(sql.DBStats{MaxOpenConnections: 25, OpenConnections: 4, InUse: 3, Idle: 1, WaitCount: 7, WaitDuration: 2 * time.Second})

	assert.Equal(t, 25.0, getGaugeValue(t, m.DBConnectionsMax))
	assert.Equal(t, 3.0, getGaugeValue(t, m.DBConnectionsInUse))
	assert.Equal(t, 7.0, getGaugeValue(t, m.DBConnectionWaitCount))
	assert.Equal(t, 2.0, getGaugeValue(t, m.DBConnectionWaitTime))
}

func TestRecordExternalAPICall_ErrorTypes(t *testing.T) {
	m, _ := getTestMetrics()

	m.RecordExternalAPICall("s3/upload", "PUT", 503, time.Millisecond, nil)
	m.RecordExternalAPICall("s3/upload", "PUT", 0, time.Millisecond, errors.New("dial tcp: connection refused"))

	assert.Equal(t, 1.0, getCounterValue(t, m.ExternalAPIErrors.WithLabelValues("s3/upload", "service_unavailable")))
	assert.Equal(t, 1.0, getCounterValue(t, m.ExternalAPIErrors.WithLabelValues("s3/upload", "connection_refused")))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementFeatureCreated()
		m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
		m.RecordDBQuery("select", "tasks", time.Millisecond, nil)
		m.UpdateDBStats(sql.DBStats{})
	})
}

func TestSafeExecuteRecoversPanic(t *testing.T) {
	m, _ := getTestMetrics()
	assert.NotPanics(t, func() {
		m.safeExecute("boom", func() { panic("metric exploded") })
	})
}

func TestBusinessMetricsCollector_Collect(t *testing.T) {
	db, err := database.New(database.Config{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	for i, status := range []domain.FeatureStatus{domain.FeatureStatusOpen, domain.FeatureStatusOpen, domain.FeatureStatusDone} {
		f := domain.Feature{Name: fmt.Sprintf("feature-%d", i), Status: status}
		require.NoError(t, db.Create(&f).Error)
	}

	m, _ := getTestMetrics()
	NewBusinessMetricsCollector(db, m, zap.NewNop()).Collect(context.Background())

	assert.Equal(t, 2.0, getGaugeValue(t, m.FeaturesTotal.WithLabelValues("open")))
	assert.Equal(t, 1.0, getGaugeValue(t, m.FeaturesTotal.WithLabelValues("done")))
}

func TestBusinessMetricsCollector_ContinuesAfterTableError(t *testing.T) {
	db, err := database.New(database.Config{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, database.AutoMigrate(db))
	// releases and features can no longer be counted
	require.NoError(t, db.Migrator().DropTable(&domain.Feature{}, &domain.Release{}))
	require.NoError(t, db.Create(&domain.Task{Status: domain.TaskStatusReview}).Error)

	m, _ := getTestMetrics()
	assert.NotPanics(t, func() {
		NewBusinessMetricsCollector(db, m, zap.NewNop()).Collect(context.Background())
	})
	assert.Equal(t, 1.0, getGaugeValue(t, m.TasksTotal.WithLabelValues("review")))
}
