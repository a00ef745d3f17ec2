package watch

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"yasno-exporter/internal/schedule"
)

// Source yields the snapshot the watcher projects against.
type Source interface {
	Current() *schedule.Schedule
}

// Sink receives one call per group status transition.
type Sink interface {
	StatusChanged(group string, from, to schedule.Status, at time.Time, until time.Duration)
}

// Watcher periodically projects every group and fans status flips out
// to the configured sinks. The first observation of a group only
// records its status; notifications start with the second.
type Watcher struct {
	source   Source
	sinks    []Sink
	interval time.Duration
	log      zerolog.Logger

	last map[string]schedule.Status
}

func New(source Source, interval time.Duration, logger zerolog.Logger, sinks ...Sink) *Watcher {
	return &Watcher{
		source:   source,
		sinks:    sinks,
		interval: interval,
		log:      logger,
		last:     make(map[string]schedule.Status),
	}
}

// Start runs the watch loop until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.sweep(time.Now())

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.sweep(time.Now())
		}
	}
}

// sweep projects every known group at the instant and fires sinks for
// each status that differs from the previous sweep.
func (w *Watcher) sweep(now time.Time) {
	s := w.source.Current()

	for _, group := range s.GroupNames() {
		p := schedule.Project(s, group, now)

		prev, seen := w.last[group]
		w.last[group] = p.Status
		if !seen || prev == p.Status {
			continue
		}

		w.log.Info().
			Str("group", group).
			Str("from", prev.String()).
			Str("to", p.Status.String()).
			Msg("group status changed")
		for _, sink := range w.sinks {
			sink.StatusChanged(group, prev, p.Status, now, p.UntilChange)
		}
	}
}
