package connector

import (
	"time"

	"trena/internal/activity"
)

// Event is the closed set of sync events emitted on the event channel.
// Consumers switch over the concrete types; the unexported marker keeps
// the set sealed to this package.
type Event interface {
	syncEvent()
}

// Started opens every sync run.
type Started struct {
	At time.Time
}

// Progress is a human-readable status line (scan started, archive
// extracted, ...).
type Progress struct {
	Message string
}

// ActivityEvent reports one activity reaching the end of the per-file
// pipeline. IsNew distinguishes a freshly created activity (with its
// gzip-compressed stream payload) from a dedup hit on an existing one
// (no payload).
type ActivityEvent struct {
	Activity        *activity.Synced
	IsNew           bool
	DeflatedStreams []byte
}

// ErrorEvent carries a structured sync error. Activity, when set, is the
// (possibly partial) activity reference the error belongs to, so the
// consumer can show which file failed. Fatal errors terminate the run;
// non-fatal ones let the loop continue with the next file.
type ErrorEvent struct {
	Err      error
	Activity *activity.Synced
	Fatal    bool
}

// Stopped is the terminal event of a cancelled run. Cancellation is a
// regular outcome, not an error.
type Stopped struct{}

// Completed is the terminal event of a successful run.
type Completed struct {
	Created  int
	Existing int
	Errors   int
}

func (Started) syncEvent()       {}
func (Progress) syncEvent()      {}
func (ActivityEvent) syncEvent() {}
func (ErrorEvent) syncEvent()    {}
func (Stopped) syncEvent()       {}
func (Completed) syncEvent()     {}
