package app

import (
	"sync/atomic"
	"time"
)

// Metrics counts event loop activity.
type Metrics struct {
	tasks     atomic.Uint64
	taskNs    atomic.Int64
	fired     atomic.Uint64
	reloads   atomic.Uint64
	panics    atomic.Uint64
	actionErr atomic.Uint64
	startTime time.Time
}

// NewMetrics creates a metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{startTime: time.Now()}
}

// RecordTask records one unit of work run on the loop.
func (m *Metrics) RecordTask(d time.Duration) {
	m.tasks.Add(1)
	m.taskNs.Add(d.Nanoseconds())
}

// RecordFire records one OS hotkey event.
func (m *Metrics) RecordFire() {
	m.fired.Add(1)
}

// RecordReload records one config reload.
func (m *Metrics) RecordReload() {
	m.reloads.Add(1)
}

// RecordPanic records a recovered panic.
func (m *Metrics) RecordPanic() {
	m.panics.Add(1)
}

// RecordActionError records a failed call into the action script.
func (m *Metrics) RecordActionError() {
	m.actionErr.Add(1)
}

// MetricsSnapshot is a point-in-time copy of Metrics.
type MetricsSnapshot struct {
	Tasks        uint64
	AvgTaskTime  time.Duration
	Fired        uint64
	Reloads      uint64
	Panics       uint64
	ActionErrors uint64
	Uptime       time.Duration
}

// Snapshot returns the current counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	s := MetricsSnapshot{
		Tasks:        m.tasks.Load(),
		Fired:        m.fired.Load(),
		Reloads:      m.reloads.Load(),
		Panics:       m.panics.Load(),
		ActionErrors: m.actionErr.Load(),
		Uptime:       time.Since(m.startTime),
	}
	if s.Tasks > 0 {
		s.AvgTaskTime = time.Duration(m.taskNs.Load() / int64(s.Tasks))
	}
	return s
}
