package connector

import (
	"context"
	"time"

	"trena/internal/synclog"
)

// StreamStore is implemented by stores that can persist deflated stream
// payloads next to the activity record.
type StreamStore interface {
	SaveStreams(activityID string, deflated []byte) error
}

// Run launches syncs on a fixed interval until the context is cancelled.
// The first run is full; later runs are incremental from the previous
// run's start time. Runs skipped because a manual sync is in flight are
// retried on the next tick.
func (c *Connector) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		synclog.Printf("connector: background polling disabled")
		return
	}
	synclog.Printf("connector: polling every %s", interval)

	t := time.NewTicker(interval)
	defer t.Stop()

	var last *time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			runStart := time.Now()
			events, err := c.SyncAfter(ctx, last)
			if err != nil {
				continue
			}
			Drain(events, c.store)
			last = &runStart
		}
	}
}

// Drain consumes a sync run to completion, persisting streams of freshly
// created activities when the store supports it.
func Drain(events <-chan Event, st Store) {
	streams, _ := st.(StreamStore)
	for ev := range events {
		switch e := ev.(type) {
		case ActivityEvent:
			if e.IsNew && streams != nil && len(e.DeflatedStreams) > 0 {
				if err := streams.SaveStreams(e.Activity.ID, e.DeflatedStreams); err != nil {
					synclog.Printf("connector: persist streams for %s: %v", e.Activity.ID, err)
				}
			}
		case ErrorEvent:
			if e.Fatal {
				synclog.Printf("connector: sync aborted: %v", e.Err)
			}
		case Completed:
			synclog.Printf("connector: sync done: %d created, %d existing, %d errors",
				e.Created, e.Existing, e.Errors)
		}
	}
}
