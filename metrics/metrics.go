package metrics

import (
	"time"

	"go.uber.org/atomic"
)

// Metrics holds runtime counters shown by the status command.
type Metrics struct {
	StartTime time.Time

	commands  *atomic.Int64
	refreshes *atomic.Int64
	renames   *atomic.Int64
}

func New() *Metrics {
	return &Metrics{
		StartTime: time.Now(),
		commands:  atomic.NewInt64(0),
		refreshes: atomic.NewInt64(0),
		renames:   atomic.NewInt64(0),
	}
}

func (m *Metrics) IncrementCommand() {
	m.commands.Add(1)
}

func (m *Metrics) IncrementRefresh() {
	m.refreshes.Add(1)
}

func (m *Metrics) IncrementRename() {
	m.renames.Add(1)
}

func (m *Metrics) Commands() int64 {
	return m.commands.Load()
}

func (m *Metrics) Refreshes() int64 {
	return m.refreshes.Load()
}

func (m *Metrics) Renames() int64 {
	return m.renames.Load()
}

func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.StartTime)
}
