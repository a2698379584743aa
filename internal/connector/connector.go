// Package connector drives the end-to-end file synchronization pipeline:
// scan (optionally expanding archives first), parse, classify, synthesize
// streams, dedupe against the store and emit typed sync events. Files are
// processed strictly sequentially; dedup queries and the running sync
// state are not safe under concurrent mutation, and the pacing delay
// between files bounds resource bursts.
package connector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"trena/internal/activity"
	"trena/internal/classify"
	"trena/internal/compute"
	"trena/internal/parse"
	"trena/internal/power"
	"trena/internal/scan"
	"trena/internal/synclog"
)

// ConnectorType identifies this source connector on persisted activities.
const ConnectorType = "file"

const defaultPacingDelay = 50 * time.Millisecond

// Store is the activity persistence collaborator.
type Store interface {
	// FindOverlapping returns stored activities whose [start,end] window
	// overlaps the given one.
	FindOverlapping(start, end time.Time) ([]*activity.Synced, error)
	Insert(a *activity.Synced) error
	Count() (int, error)
}

// Config is the file connector configuration for one sync run.
type Config struct {
	SourceDir                  string
	ScanSubDirectories         bool
	ExtractArchiveFiles        bool
	DeleteArchivesAfterExtract bool
	DetectSportTypeWhenUnknown bool

	// AfterDate makes the sync incremental: only files touched on or
	// after it are considered, and archives are left alone.
	AfterDate *time.Time

	// Athlete is the resolved-then-passed settings history; the
	// connector never holds mutable resolver state.
	Athlete activity.SettingsHistory

	// PacingDelay is awaited between files; zero means the default 50ms.
	PacingDelay time.Duration
}

// Connector is the file sync orchestrator. One sync at a time.
type Connector struct {
	cfg   Config
	store Store

	mu      sync.Mutex
	syncing bool
}

func New(cfg Config, store Store) *Connector {
	if cfg.PacingDelay <= 0 {
		cfg.PacingDelay = defaultPacingDelay
	}
	return &Connector{cfg: cfg, store: store}
}

// Syncing reports whether a run is in flight.
func (c *Connector) Syncing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.syncing
}

// Sync starts a run and returns its ordered event stream. The channel is
// closed after a terminal event (Completed, Stopped, or a fatal
// ErrorEvent). Returns ErrSyncInProgress while a previous run is live.
func (c *Connector) Sync(ctx context.Context) (<-chan Event, error) {
	return c.SyncAfter(ctx, c.cfg.AfterDate)
}

// SyncAfter is Sync with a per-run incremental cutoff overriding the
// configured AfterDate. A nil cutoff means a full sync.
func (c *Connector) SyncAfter(ctx context.Context, after *time.Time) (<-chan Event, error) {
	c.mu.Lock()
	if c.syncing {
		c.mu.Unlock()
		return nil, ErrSyncInProgress
	}
	c.syncing = true
	c.mu.Unlock()

	events := make(chan Event, 64)
	go func() {
		defer close(events)
		defer func() {
			c.mu.Lock()
			c.syncing = false
			c.mu.Unlock()
		}()

		events <- Started{At: time.Now()}

		created, existing, errCount, err := c.syncFiles(ctx, after, events)
		switch {
		case err == nil:
			events <- Completed{Created: created, Existing: existing, Errors: errCount}
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			synclog.Printf("sync: stopped on request")
			events <- Stopped{}
		default:
			synclog.Printf("sync: failed: %v", err)
			events <- ErrorEvent{Err: err, Fatal: true}
		}
	}()
	return events, nil
}

func (c *Connector) syncFiles(ctx context.Context, after *time.Time, events chan<- Event) (created, existing, errCount int, err error) {
	if st, statErr := os.Stat(c.cfg.SourceDir); statErr != nil || !st.IsDir() {
		return 0, 0, 0, &SourceDirError{Dir: c.cfg.SourceDir}
	}

	// Archives are only expanded on a full sync; incremental runs trust
	// the previous expansion.
	if after == nil && c.cfg.ExtractArchiveFiles {
		expandErr := scan.ExpandArchives(c.cfg.SourceDir, c.cfg.DeleteArchivesAfterExtract, c.cfg.ScanSubDirectories,
			func(archivePath string) {
				msg := fmt.Sprintf("activities in %q have been extracted", archivePath)
				synclog.Printf("sync: %s", msg)
				events <- Progress{Message: msg}
			},
			func(archivePath string, err error) {
				errCount++
				synclog.Printf("sync: archive %q failed: %v", archivePath, err)
				events <- ErrorEvent{Err: fmt.Errorf("archive %q: %w", archivePath, err)}
			})
		if expandErr != nil {
			return created, existing, errCount, expandErr
		}
	}

	events <- Progress{Message: "Scanning for activities..."}
	files, err := scan.Activities(c.cfg.SourceDir, after, c.cfg.ScanSubDirectories)
	if err != nil {
		return created, existing, errCount, err
	}
	synclog.Printf("sync: parsing %d activity files", len(files))

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return created, existing, errCount, err
		}

		c.processFile(ctx, file, events, &created, &existing, &errCount)

		select {
		case <-ctx.Done():
			return created, existing, errCount, ctx.Err()
		case <-time.After(c.cfg.PacingDelay):
		}
	}
	return created, existing, errCount, nil
}

// processFile runs the per-file pipeline. Parse and compute failures are
// converted to non-fatal error events; the batch goes on.
func (c *Connector) processFile(ctx context.Context, file scan.ActivityFile, events chan<- Event, created, existing, errCount *int) {
	synclog.Printf("sync: parsing %s", file.Location.Path)

	sources, err := parse.File(file.Location.Path, file.Format)
	if err != nil {
		*errCount++
		partial := &activity.Synced{Extras: activity.Extras{FileLocation: activity.FileLocation(file.Location)}}
		events <- ErrorEvent{
			Err:      &ComputeError{Message: "activity file parsing error", Cause: err},
			Activity: partial,
		}
		return
	}

	for _, src := range sources {
		if src.Transition {
			// Multisport transition segments carry no training load.
			continue
		}
		if ctx.Err() != nil {
			return
		}
		c.processSource(file, src, events, created, existing, errCount)
	}
}

func (c *Connector) processSource(file scan.ActivityFile, src parse.Source, events chan<- Event, created, existing, errCount *int) {
	res := classify.Classify(src.Sport, c.cfg.DetectSportTypeWhenUnknown, classify.SourceStats{
		DistanceM:  nanZero(src.Stats.DistanceM),
		DurationS:  nanZero(src.Stats.DurationS),
		AscentM:    nanZero(src.Stats.AscentM),
		AvgSpeedMS: nanZero(src.Stats.AvgSpeedMS),
		MaxSpeedMS: nanZero(src.Stats.MaxSpeedMS),
	})

	bare := activity.Bare{
		ID:            activity.MakeID(src.StartTime, src.EndTime),
		Name:          activity.MakeName(src.StartTime, res.Sport, res.AutoDetected),
		Type:          res.Sport,
		StartTime:     src.StartTime,
		EndTime:       src.EndTime,
		HasPowerMeter: src.HasPowerMeter,
		Trainer:       src.Trainer,
	}

	overlapping, err := c.store.FindOverlapping(src.StartTime, src.EndTime)
	if err != nil {
		*errCount++
		events <- ErrorEvent{
			Err:      &ComputeError{Message: "activity lookup failed", Cause: err},
			Activity: partialFor(bare, file),
		}
		return
	}

	switch len(overlapping) {
	case 0:
		synced, streams, err := c.buildSynced(bare, src, file)
		if err != nil {
			*errCount++
			events <- ErrorEvent{
				Err: &ComputeError{
					Message: fmt.Sprintf("unable to compute activity started %s", src.StartTime.Format(time.RFC3339)),
					Cause:   err,
				},
				Activity: partialFor(bare, file),
			}
			return
		}
		if err := c.store.Insert(synced); err != nil {
			*errCount++
			events <- ErrorEvent{
				Err:      &ComputeError{Message: "unable to persist activity", Cause: err},
				Activity: partialFor(bare, file),
			}
			return
		}
		deflated, err := streams.Deflate()
		if err != nil {
			synclog.Printf("sync: stream deflate failed for %s: %v", synced.ID, err)
			deflated = nil
		}
		*created++
		events <- ActivityEvent{Activity: synced, IsNew: true, DeflatedStreams: deflated}

	case 1:
		*existing++
		events <- ActivityEvent{Activity: overlapping[0], IsNew: false}

	default:
		conflicts := make([]string, 0, len(overlapping))
		for _, a := range overlapping {
			conflicts = append(conflicts, fmt.Sprintf("%s (%s)", a.Name, a.StartTime.Format(time.RFC3339)))
		}
		*errCount++
		events <- ErrorEvent{
			Err: &AmbiguousOverlapError{
				ActivityName: bare.Name,
				StartTime:    src.StartTime,
				Conflicts:    conflicts,
			},
			Activity: partialFor(bare, file),
		}
	}
}

// buildSynced turns a deduplicated source activity into the canonical
// persisted model: snapshot resolution, stream synthesis, extended stats,
// barycenter, content hash.
func (c *Connector) buildSynced(bare activity.Bare, src parse.Source, file scan.ActivityFile) (*activity.Synced, *activity.Streams, error) {
	snapshot, err := c.cfg.Athlete.Resolve(bare.StartTime)
	if err != nil {
		return nil, nil, err
	}

	streams := src.Streams

	// Estimated cycling power: only for rides without a meter, only when
	// a grade stream exists. Estimation failure drops the stream, never
	// the activity.
	if !bare.HasPowerMeter && (bare.Type == activity.SportRide || bare.Type == activity.SportVirtualRide) {
		if len(streams.Grade) > 0 && len(streams.Watts) == 0 {
			watts, err := power.EstimateStream(streams.Velocity, streams.Grade, snapshot.Settings.WeightKg)
			if err != nil {
				synclog.Printf("sync: power estimation skipped for %s: %v", bare.ID, err)
			} else {
				streams.Watts = watts
			}
		}
	}

	if bare.Type.IsRun() && len(streams.GradeAdjustedSpeed) == 0 {
		streams.GradeAdjustedSpeed = compute.GradeAdjustedSpeed(streams.Velocity, streams.Grade)
	}

	stats := compute.Stats(&bare, &streams, snapshot,
		src.Stats.DurationS, movingFromSource(src.Stats), src.Stats.DistanceM, src.Stats.AscentM)

	synced := &activity.Synced{
		Bare:            bare,
		StartTimestamp:  bare.StartTime.Unix(),
		AthleteSnapshot: snapshot,
		Stats:           stats,
		LatLngCenter:    streams.BaryCenter(),
		SourceConnector: ConnectorType,
		Extras:          activity.Extras{FileLocation: activity.FileLocation(file.Location)},
	}
	synced.SettingsLack = settingsLack(synced)
	synced.Hash = activity.ContentHash(synced)
	return synced, &streams, nil
}

// settingsLack flags moving activities whose discipline could not score
// at all, which almost always traces back to missing athlete settings.
func settingsLack(a *activity.Synced) bool {
	if a.Stats == nil || a.Stats.MovingTimeS <= 0 {
		return false
	}
	s := a.Stats.Scores
	switch {
	case a.Type.IsRide(true):
		return s.PSS <= 0 && s.HRSS <= 0 && s.TRIMP <= 0
	case a.Type.IsRun():
		return s.RSS <= 0 && s.HRSS <= 0 && s.TRIMP <= 0
	case a.Type.IsSwim():
		return s.SSS <= 0 && s.HRSS <= 0 && s.TRIMP <= 0
	}
	return false
}

func movingFromSource(st parse.Stats) float64 {
	if math.IsNaN(st.DurationS) {
		return math.NaN()
	}
	if math.IsNaN(st.PauseS) {
		return st.DurationS
	}
	return st.DurationS - st.PauseS
}

func partialFor(bare activity.Bare, file scan.ActivityFile) *activity.Synced {
	return &activity.Synced{
		Bare:   bare,
		Extras: activity.Extras{FileLocation: activity.FileLocation(file.Location)},
	}
}

func nanZero(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return v
}
