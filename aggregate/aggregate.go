// Package aggregate accumulates per-session statistics from accepted
// location deltas and wall-clock ticks.
package aggregate

import (
	"github.com/montanaflynn/stats"

	"github.com/strideway/strided/common"
	"github.com/strideway/strided/geo/geodesy"
	"github.com/strideway/strided/params"
	"github.com/strideway/strided/types/sample"
	"github.com/strideway/strided/types/track"
)

// Aggregator folds a session's location stream into running statistics.
// It is not safe for concurrent use; the fusion loop owns it and calls it
// from a single goroutine.
type Aggregator struct {
	config params.AggregatorConfig

	stats  track.Stats
	speeds []float64

	entryCount    int
	locationCount int
	rejectedCount int
}

// New returns an aggregator with the given heuristics, ready for Reset.
func New(config params.AggregatorConfig) *Aggregator {
	return &Aggregator{config: config}
}

// Reset clears all accumulated state and stamps the session start time
// (epoch milliseconds).
func (a *Aggregator) Reset(startMs int64) {
	a.stats = track.Stats{StartTime: &startMs}
	a.speeds = a.speeds[:0]
	a.entryCount = 0
	a.locationCount = 0
	a.rejectedCount = 0
}

// OnLocation folds the delta between consecutive fixes into the running
// totals. Deltas under the noise floor are discarded whole; distance, steps
// and calories only ever move together. A nil prev (first fix of the
// session) contributes zero distance but still counts the fix.
func (a *Aggregator) OnLocation(prev, next *sample.Location) {
	a.locationCount++
	a.speeds = append(a.speeds, next.SpeedOrZero())
	if prev == nil {
		return
	}
	delta := geodesy.Haversine(prev.Latitude, prev.Longitude, next.Latitude, next.Longitude)
	// Strictly greater: a delta of exactly the floor is still jitter.
	if delta <= a.config.NoiseFloorMeters {
		a.rejectedCount++
		return
	}
	a.stats.DistanceMeters += delta
	a.stats.Steps = a.stats.DistanceMeters / a.config.StrideMeters
	a.stats.Calories = a.stats.DistanceMeters / 1000.0 * a.config.CaloriesPerKm
	a.recomputeAvgSpeed()
}

// OnEntry counts a fused log entry toward the session summary.
func (a *Aggregator) OnEntry() {
	a.entryCount++
}

// Tick advances the session duration by one interval. Duration is
// clock-driven, not sample-driven; a session with no samples still ages.
func (a *Aggregator) Tick() {
	a.stats.DurationSec++
	a.recomputeAvgSpeed()
}

func (a *Aggregator) recomputeAvgSpeed() {
	// Duration floors at one second so a burst of fixes before the first
	// tick doesn't divide by zero.
	dur := a.stats.DurationSec
	if dur < 1 {
		dur = 1
	}
	km := a.stats.DistanceMeters / 1000.0
	hours := float64(dur) / 3600.0
	a.stats.AvgSpeedKmh = km / hours
}

// Freeze stamps the session end time and returns the final statistics.
// Further OnLocation or Tick calls after Freeze are a caller bug.
func (a *Aggregator) Freeze(endMs int64) track.Stats {
	a.stats.EndTime = &endMs
	return a.stats
}

// Stats returns a snapshot of the running statistics.
func (a *Aggregator) Stats() track.Stats {
	return a.stats
}

// Summary derives the per-session speed distribution and sample counts.
func (a *Aggregator) Summary() track.Summary {
	s := track.Summary{
		EntryCount:    a.entryCount,
		LocationCount: a.locationCount,
		RejectedCount: a.rejectedCount,
	}
	if len(a.speeds) == 0 {
		return s
	}
	if max, err := stats.Max(a.speeds); err == nil {
		s.MaxSpeedMps = common.DecimalToFixed(max, 2)
	}
	if med, err := stats.Median(a.speeds); err == nil {
		s.MedianSpeedMps = common.DecimalToFixed(med, 2)
	}
	return s
}
