package metrics

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BusinessMetricsCollector refreshes the per-status gauges from the database
type BusinessMetricsCollector struct {
	db      *gorm.DB
	metrics *Metrics
	logger  *zap.Logger
	timeout time.Duration
}

// NewBusinessMetricsCollector creates a new collector
func NewBusinessMetricsCollector(db *gorm.DB, metrics *Metrics, logger *zap.Logger) *BusinessMetricsCollector {
	return &BusinessMetricsCollector{
		db:      db,
		metrics: metrics,
		logger:  logger,
		timeout: 5 * time.Second,
	}
}

type statusCount struct {
	Status string
	Count  int64
}

// Collect counts releases, features and tasks grouped by status.
// A failing table is logged and skipped; the others are still refreshed.
func (c *BusinessMetricsCollector) Collect(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Panic in business metrics collection", zap.Any("panic", r))
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	targets := []struct {
		table string
		set   func(map[string]int64)
	}{
		{"releases", c.metrics.SetReleasesByStatus},
		{"features", c.metrics.SetFeaturesByStatus},
		{"tasks", c.metrics.SetTasksByStatus},
	}

	for _, t := range targets {
		counts, err := c.countByStatus(ctx, t.table)
		if err != nil {
			c.logger.Error("Failed to count rows by status", zap.String("table", t.table), zap.Error(err))
			continue
		}
		t.set(counts)
	}
}

func (c *BusinessMetricsCollector) countByStatus(ctx context.Context, table string) (map[string]int64, error) {
	var rows []statusCount
	if err := c.db.WithContext(ctx).
		Table(table).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
