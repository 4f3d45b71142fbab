package goCred

import (
	"sync/atomic"
)

// MetricID defines a public type used by goCred APIs.
//
// MetricID instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricID uint16

const (
	// MetricSignupSuccess counts completed signups.
	MetricSignupSuccess MetricID = iota
	// MetricSignupFailure counts rejected or failed signups.
	MetricSignupFailure
	// MetricSignupDuplicate counts signups against a taken username.
	MetricSignupDuplicate
	// MetricLoginSuccess counts successful logins.
	MetricLoginSuccess
	// MetricLoginFailure counts failed logins (credential or ceiling).
	MetricLoginFailure
	// MetricLoginLockout counts hard-mode rejections past the ceiling.
	MetricLoginLockout
	// MetricPasswordChangeSuccess counts completed password changes.
	MetricPasswordChangeSuccess
	// MetricPasswordChangeFailure counts rejected password changes.
	MetricPasswordChangeFailure
	// MetricPasswordResetSuccess counts completed forgotten-password resets.
	MetricPasswordResetSuccess
	// MetricPasswordResetFailure counts failed forgotten-password resets.
	MetricPasswordResetFailure
	// MetricResetMailFailure counts reset-mail hand-offs that failed after the
	// credential change was committed.
	MetricResetMailFailure
	// MetricPolicyRejection counts candidate passwords rejected by policy,
	// across signup and change paths.
	MetricPolicyRejection

	metricCount
)

// Metrics holds in-process atomic counters. Snapshots are cheap copies; an
// exporter can poll MetricsSnapshot without coordinating with workflows.
type Metrics struct {
	counters [metricCount]atomic.Uint64
}

// MetricsSnapshot is a point-in-time copy of every counter.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

func newMetrics(cfg MetricsConfig) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	return &Metrics{}
}

// Inc increments one counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || id >= metricCount {
		return
	}
	m.counters[id].Add(1)
}

// Snapshot copies every counter into a fresh map.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Counters: make(map[MetricID]uint64, int(metricCount)),
	}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < metricCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
