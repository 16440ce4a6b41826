// Package fusion merges the asynchronous location and acceleration streams
// into a single classified activity log. One goroutine owns all session
// state; sensors push into buffered channels and the Run loop folds.
package fusion

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/strideway/strided/aggregate"
	"github.com/strideway/strided/classify"
	"github.com/strideway/strided/events"
	"github.com/strideway/strided/params"
	"github.com/strideway/strided/types/activity"
	"github.com/strideway/strided/types/sample"
	"github.com/strideway/strided/types/track"
)

// Status is a point-in-time view of the fused state, served live over the
// web API.
type Status struct {
	Active           bool                 `json:"active"`
	Activity         activity.Activity    `json:"activity"`
	Confidence       int                  `json:"confidence"`
	Stats            track.Stats          `json:"stats"`
	LastLocation     *sample.Location     `json:"lastLocation"`
	LastAcceleration *sample.Acceleration `json:"lastAcceleration"`
	EntryCount       int                  `json:"entryCount"`
	RejectedCount    int                  `json:"rejectedCount"`
}

// Engine fuses the two sample streams for one session at a time.
// Push methods may be called from any goroutine; all folding happens on the
// goroutine running Run.
type Engine struct {
	config     params.FusionConfig
	classifier *classify.Classifier
	agg        *aggregate.Aggregator
	logger     *slog.Logger

	locCh  chan *sample.Location
	accCh  chan *sample.Acceleration
	tickCh chan time.Time

	uniqLoc func(sample.Location) bool
	uniqAcc func(sample.Acceleration) bool

	kalman *speedFilter
	meter  *tickSampleMeter
	newID  func() string

	mu        sync.Mutex
	active    bool
	lastLoc   *sample.Location
	lastAcc   *sample.Acceleration
	lastSpeed *float64
	last      *track.Entry
	entries   []*track.Entry
	rejected  int
	processed int
}

// New returns an engine wired with the given calibrations. It does nothing
// until Run is started and Reset opens a session.
func New(config params.FusionConfig, classifierConfig params.ClassifierConfig, aggregatorConfig params.AggregatorConfig, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		config:     config,
		classifier: classify.New(classifierConfig),
		agg:        aggregate.New(aggregatorConfig),
		logger:     logger.With("d", "fusion"),
		locCh:      make(chan *sample.Location, config.BufferSize),
		accCh:      make(chan *sample.Acceleration, config.BufferSize),
		tickCh:     make(chan time.Time, 1),
		newID:      func() string { return uuid.New().String() },
	}
	if config.Dedupe {
		e.uniqLoc = newDedupeLRUFunc[sample.Location](params.DedupeLRUSize)
		e.uniqAcc = newDedupeLRUFunc[sample.Acceleration](params.DedupeLRUSize)
	}
	return e
}

// PushLocation enqueues a location fix. Blocks if the intake buffer is full.
func (e *Engine) PushLocation(ctx context.Context, loc *sample.Location) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case e.locCh <- loc:
		return nil
	}
}

// PushAcceleration enqueues an accelerometer reading. Blocks if the intake
// buffer is full.
func (e *Engine) PushAcceleration(ctx context.Context, acc *sample.Acceleration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case e.accCh <- acc:
		return nil
	}
}

// Tick advances session duration by one interval. Coalesces: a tick that
// arrives while one is pending is dropped rather than queued.
func (e *Engine) Tick(t time.Time) {
	select {
	case e.tickCh <- t:
	default:
	}
}

// Run folds pushed samples and ticks until ctx is done. Exactly one Run per
// engine.
func (e *Engine) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case loc := <-e.locCh:
			e.onLocation(loc)
		case acc := <-e.accCh:
			e.onAcceleration(acc)
		case <-e.tickCh:
			e.onTick()
		}
	}
}

// Reset opens a session: clears the log, the last-known slots, and the
// aggregator, stamping the start time in epoch milliseconds.
func (e *Engine) Reset(startMs int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = true
	e.lastLoc = nil
	e.lastAcc = nil
	e.lastSpeed = nil
	e.last = nil
	e.entries = nil
	e.rejected = 0
	e.processed = 0
	e.kalman = nil
	e.agg.Reset(startMs)
	e.meter.stop()
	e.meter = newTickSampleMeter(30*time.Second, e.logger)
}

// Freeze closes the session and returns the final statistics. Samples
// arriving after Freeze are dropped until the next Reset.
func (e *Engine) Freeze(endMs int64) track.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.active = false
	e.meter.stop()
	return e.agg.Freeze(endMs)
}

func (e *Engine) onLocation(loc *sample.Location) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.processed++
	if !e.active {
		return
	}
	if err := loc.Validate(); err != nil {
		e.rejected++
		e.logger.Warn("Dropped invalid location", "error", err)
		return
	}
	if e.uniqLoc != nil && !e.uniqLoc(*loc) {
		e.rejected++
		return
	}

	speed := e.resolveSpeed(loc)
	magnitude := 0.0
	if e.lastAcc != nil {
		magnitude = e.lastAcc.Magnitude
	}

	prev := e.lastLoc
	e.lastLoc = loc
	if loc.Speed != nil {
		e.lastSpeed = loc.Speed
	}
	e.agg.OnLocation(prev, loc)
	e.appendEntry(speed, magnitude, loc, e.lastAcc, loc.Time())
}

func (e *Engine) onAcceleration(acc *sample.Acceleration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.processed++
	if !e.active {
		return
	}
	if err := acc.Validate(); err != nil {
		e.rejected++
		e.logger.Warn("Dropped invalid acceleration", "error", err)
		return
	}
	if e.uniqAcc != nil && !e.uniqAcc(*acc) {
		e.rejected++
		return
	}

	speed := 0.0
	if e.lastSpeed != nil {
		speed = *e.lastSpeed
	}
	e.lastAcc = acc
	e.appendEntry(speed, acc.Magnitude, e.lastLoc, acc, acc.Time())
}

// resolveSpeed picks the speed used for classification of a location fix:
// the fix's own reported speed, else the Kalman estimate when enabled, else
// the last known reported speed, else zero.
func (e *Engine) resolveSpeed(loc *sample.Location) float64 {
	if loc.Speed != nil {
		if e.config.KalmanSpeed {
			e.observeKalman(loc)
		}
		return *loc.Speed
	}
	if e.config.KalmanSpeed {
		if est, ok := e.estimateKalman(loc); ok {
			return est
		}
	}
	if e.lastSpeed != nil {
		return *e.lastSpeed
	}
	return 0
}

func (e *Engine) observeKalman(loc *sample.Location) {
	if e.kalman == nil {
		filter, err := newSpeedFilter(loc.Latitude)
		if err != nil {
			e.logger.Warn("Kalman init failed", "error", err)
			e.config.KalmanSpeed = false
			return
		}
		e.kalman = filter
	}
	e.kalman.estimate(loc)
}

func (e *Engine) estimateKalman(loc *sample.Location) (float64, bool) {
	if e.kalman == nil {
		return 0, false
	}
	return e.kalman.estimate(loc), true
}

// appendEntry classifies and appends exactly one log entry for an accepted
// sample, then publishes it.
func (e *Engine) appendEntry(speed, magnitude float64, loc *sample.Location, acc *sample.Acceleration, at time.Time) {
	act := e.classifier.Classify(speed, magnitude)
	entry := &track.Entry{
		ID:           e.newID(),
		Activity:     act,
		Confidence:   e.classifier.Confidence(speed, magnitude),
		Location:     loc,
		Acceleration: acc,
		Time:         at,
	}
	e.entries = append(e.entries, entry)
	e.last = entry
	e.agg.OnEntry()
	e.meter.mark(at)
	e.logger.Debug("Fused sample", "activity", act, "confidence", entry.Confidence,
		"speed", speed, "magnitude", magnitude)
	events.NewEntryFeed.Send(entry)
}

func (e *Engine) onTick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.active {
		return
	}
	e.agg.Tick()
}

// Snapshot returns the current fused state. Before any sample has been
// accepted the activity is unknown with zero confidence.
func (e *Engine) Snapshot() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := Status{
		Active:           e.active,
		Activity:         activity.TrackerStateUnknown,
		Stats:            e.agg.Stats(),
		LastLocation:     e.lastLoc,
		LastAcceleration: e.lastAcc,
		EntryCount:       len(e.entries),
		RejectedCount:    e.rejected,
	}
	if e.last != nil {
		s.Activity = e.last.Activity
		s.Confidence = e.last.Confidence
	}
	return s
}

// Processed returns how many samples the fold has consumed from the intake
// channels since Reset, whatever their fate. A pushed sample that was
// accepted, deduped, invalid, or noise-rejected all count once, so a feeder
// can wait for Processed to reach its push count before freezing.
func (e *Engine) Processed() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.processed
}

// Entries returns a copy of the session log.
func (e *Engine) Entries() []*track.Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*track.Entry, len(e.entries))
	copy(out, e.entries)
	return out
}

// Summary returns the derived per-session figures, folding in the intake
// rejection count.
func (e *Engine) Summary() track.Summary {
	e.mu.Lock()
	defer e.mu.Unlock()
	s := e.agg.Summary()
	s.RejectedCount += e.rejected
	return s
}

// SetClassifierConfig swaps the classifier calibration mid-flight.
func (e *Engine) SetClassifierConfig(config params.ClassifierConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.classifier.SetConfig(config)
	return nil
}

// ClassifierConfig returns the calibration in effect.
func (e *Engine) ClassifierConfig() params.ClassifierConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.classifier.Config()
}
