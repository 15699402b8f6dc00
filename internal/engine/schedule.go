package engine

import (
	"context"
	"time"
)

// Job is one batch pipeline run.
type Job func(ctx context.Context) error

// Entry fires a job at a weekday and wall-clock time in the engine's
// timezone.
type Entry struct {
	Name    string
	Weekday time.Weekday
	At      string // "15:04"
	Run     Job
}

// due reports whether the entry should fire at the given instant.
func (e Entry) due(now time.Time) bool {
	return now.Weekday() == e.Weekday && now.Format("15:04") == e.At
}

// fireKey dedupes firings within the same minute: the tick interval is
// shorter than a minute so each due minute is seen more than once.
func (e Entry) fireKey(now time.Time) string {
	return e.Name + "|" + now.Format("2006-01-02 15:04")
}
