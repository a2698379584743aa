package connector

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrSyncInProgress rejects a Sync call while another run is in flight.
var ErrSyncInProgress = errors.New("a sync is already running")

// SourceDirError means the configured source directory is absent; the
// whole run fails fast before any scanning.
type SourceDirError struct {
	Dir string
}

func (e *SourceDirError) Error() string {
	return fmt.Sprintf("source directory %q does not exist", e.Dir)
}

// AmbiguousOverlapError reports a candidate activity whose time window
// overlaps more than one stored activity; nothing is created and the
// file is skipped.
type AmbiguousOverlapError struct {
	ActivityName string
	StartTime    time.Time
	Conflicts    []string // "name (start time)" per conflicting activity
}

func (e *AmbiguousOverlapError) Error() string {
	return fmt.Sprintf("activity %q starting at %s overlaps %d existing activities: %s",
		e.ActivityName, e.StartTime.Format(time.RFC3339), len(e.Conflicts), strings.Join(e.Conflicts, "; "))
}

// ComputeError wraps a per-file parse or compute failure with a
// user-facing message; non-fatal to the batch.
type ComputeError struct {
	Message string
	Cause   error
}

func (e *ComputeError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ComputeError) Unwrap() error { return e.Cause }
