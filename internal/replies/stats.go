package replies

import (
	"sync/atomic"
	"time"
)

// Stats are the monitor's aggregate counters, safe to read while the
// monitor runs.
type Stats struct {
	start       time.Time
	processed   atomic.Int64
	repliesSent atomic.Int64
	errors      atomic.Int64
}

// Snapshot is a point-in-time view for the ops surface.
type Snapshot struct {
	Uptime          string `json:"uptime"`
	EmailsProcessed int64  `json:"emails_processed"`
	RepliesSent     int64  `json:"replies_sent"`
	Errors          int64  `json:"errors"`
	QueueDepth      int    `json:"queue_depth"`
	Workers         int    `json:"workers"`
	KnownAddresses  int    `json:"known_addresses"`
}

func (m *Monitor) Snapshot() Snapshot {
	return Snapshot{
		Uptime:          time.Since(m.stats.start).Round(time.Second).String(),
		EmailsProcessed: m.stats.processed.Load(),
		RepliesSent:     m.stats.repliesSent.Load(),
		Errors:          m.stats.errors.Load(),
		QueueDepth:      len(m.queue),
		Workers:         m.workers,
		KnownAddresses:  len(m.validAddresses()),
	}
}
