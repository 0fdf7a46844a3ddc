package metrics

import "github.com/prometheus/client_golang/prometheus"

// IncrementFeatureCreated counts a committed feature creation
func (m *Metrics) IncrementFeatureCreated() {
	m.safeExecute("IncrementFeatureCreated", func() {
		m.FeatureCreatedTotal.Inc()
	})
}

// RecordTaskStatusChange counts a task moving to status
func (m *Metrics) RecordTaskStatusChange(status string) {
	m.safeExecute("RecordTaskStatusChange", func() {
		m.TaskStatusChangesTotal.WithLabelValues(status).Inc()
	})
}

// IncrementAttachmentUploaded counts an evidence link attached to a task
func (m *Metrics) IncrementAttachmentUploaded() {
	m.safeExecute("IncrementAttachmentUploaded", func() {
		m.AttachmentsUploadedTotal.Inc()
	})
}

// RecordLogin counts a login attempt
func (m *Metrics) RecordLogin(success bool) {
	m.safeExecute("RecordLogin", func() {
		result := "failure"
		if success {
			result = "success"
		}
		m.LoginAttemptsTotal.WithLabelValues(result).Inc()
	})
}

// SetReleasesByStatus replaces the release gauges with counts
func (m *Metrics) SetReleasesByStatus(counts map[string]int64) {
	m.safeExecute("SetReleasesByStatus", func() {
		setByStatus(m.ReleasesTotal, counts)
	})
}

// SetFeaturesByStatus replaces the feature gauges with counts
func (m *Metrics) SetFeaturesByStatus(counts map[string]int64) {
	m.safeExecute("SetFeaturesByStatus", func() {
		setByStatus(m.FeaturesTotal, counts)
	})
}

// SetTasksByStatus replaces the task gauges with counts
func (m *Metrics) SetTasksByStatus(counts map[string]int64) {
	m.safeExecute("SetTasksByStatus", func() {
		setByStatus(m.TasksTotal, counts)
	})
}

// Reset drops statuses that no longer have any rows
func setByStatus(g *prometheus.GaugeVec, counts map[string]int64) {
	g.Reset()
	for status, n := range counts {
		g.WithLabelValues(status).Set(float64(n))
	}
}
