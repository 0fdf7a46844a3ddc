package database

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"release-tracker-api/internal/domain"
)

type queryRecord struct {
	operation string
	table     string
	err       error
}

type mockMetricsRecorder struct {
	mu      sync.Mutex
	queries []queryRecord
	stats   []sql.DBStats
}

func (m *mockMetricsRecorder) RecordDBQuery(operation, table string, _ time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, queryRecord{operation: operation, table: table, err: err})
}

func (m *mockMetricsRecorder) UpdateDBStats(stats sql.DBStats) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = append(m.stats, stats)
}

func (m *mockMetricsRecorder) find(operation, table string) *queryRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.queries {
		if m.queries[i].operation == operation && m.queries[i].table == table {
			return &m.queries[i]
		}
	}
	return nil
}

func (m *mockMetricsRecorder) statsCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stats)
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := New(Config{Driver: "sqlite", DSN: ":memory:", MaxOpenConns: 1, MaxIdleConns: 1})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() { _ = Close(db) })
	return db
}

func TestRegisterMetricsCallbacks_RecordsEveryOperation(t *testing.T) {
	db := setupTestDB(t)
	recorder := &mockMetricsRecorder{}
	require.NoError(t, RegisterMetricsCallbacks(db, recorder))

	platform := domain.Platform{Name: "Android"}
	require.NoError(t, db.Create(&platform).Error)

	var found domain.Platform
	require.NoError(t, db.First(&found, "id = ?", platform.ID).Error)

	require.NoError(t, db.Model(&found).Update("name", "iOS").Error)
	require.NoError(t, db.Delete(&found).Error)

	for _, op := range []string{"insert", "select", "update", "delete"} {
		rec := recorder.find(op, "platforms")
		require.NotNil(t, rec, "expected %s on platforms", op)
		assert.NoError(t, rec.err)
	}
}

func TestRegisterMetricsCallbacks_RecordsErrors(t *testing.T) {
	db := setupTestDB(t)
	recorder := &mockMetricsRecorder{}
	require.NoError(t, RegisterMetricsCallbacks(db, recorder))

	require.NoError(t, db.Create(&domain.Channel{Name: "sbol"}).Error)
	err := db.Create(&domain.Channel{Name: "sbol"}).Error
	require.Error(t, err)

	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	var failed int
	for _, q := range recorder.queries {
		if q.operation == "insert" && q.err != nil {
			failed++
		}
	}
	assert.Equal(t, 1, failed)
}

func TestTranslateError_DuplicateKey(t *testing.T) {
	db := setupTestDB(t)

	require.NoError(t, db.Create(&domain.Platform{Name: "Web"}).Error)
	err := db.Create(&domain.Platform{Name: "Web"}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestStartDBStatsCollector_StopsOnCancel(t *testing.T) {
	db := setupTestDB(t)
	recorder := &mockMetricsRecorder{}

	ctx, cancel := context.WithCancel(context.Background())
	StartDBStatsCollector(ctx, db, recorder, 10*time.Millisecond)

	assert.Eventually(t, func() bool { return recorder.statsCount() >= 2 }, time.Second, 5*time.Millisecond)

	cancel()
	time.Sleep(30 * time.Millisecond)
	after := recorder.statsCount()
	time.Sleep(50 * time.Millisecond)
	assert.LessOrEqual(t, recorder.statsCount(), after+1)
}

func TestNew_UnsupportedDriver(t *testing.T) {
	_, err := New(Config{Driver: "oracle", DSN: "x"})
	assert.Error(t, err)
}

func TestConnect_UnsupportedDriverIsNotRetried(t *testing.T) {
	start := time.Now()
	_, err := Connect(context.Background(), Config{Driver: "oracle", DSN: "x", ConnectTimeout: 10 * time.Second}, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, errUnsupportedDriver)
	assert.NotContains(t, err.Error(), "attempts")
	assert.Less(t, time.Since(start), 2*time.Second)
}
