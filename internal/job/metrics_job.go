package job

import (
	"context"
)

// StatusCollector refreshes gauges from the store
type StatusCollector interface {
	Collect(ctx context.Context)
}

// MetricsJob periodically refreshes the release, feature and task gauges
type MetricsJob struct {
	collector StatusCollector
}

// NewMetricsJob creates a new MetricsJob instance
func NewMetricsJob(collector StatusCollector) *MetricsJob {
	return &MetricsJob{collector: collector}
}

func (j *MetricsJob) Name() string {
	return "business_metrics"
}

// Run executes one collection pass
func (j *MetricsJob) Run(ctx context.Context) {
	j.collector.Collect(ctx)
}
