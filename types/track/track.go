// Package track defines the session-scoped records produced by the fusion
// pipeline: classified activity log entries, running session statistics, and
// persisted routes.
package track

import (
	"time"

	"github.com/strideway/strided/types/activity"
	"github.com/strideway/strided/types/sample"
)

// Entry is one classified event in a session's activity log.
// The log is append-only; entries are never reordered or mutated once
// appended. Location and Acceleration carry the freshest known value of each
// stream at the time of the triggering sample; either may be nil before the
// first observation of that stream.
type Entry struct {
	ID           string               `json:"id"`
	Activity     activity.Activity    `json:"activity"`
	Confidence   int                  `json:"confidence"`
	Location     *sample.Location     `json:"location"`
	Acceleration *sample.Acceleration `json:"acceleration"`
	Time         time.Time            `json:"time"`
}

// Stats is the running statistics of one tracking session.
// Distance, steps and calories never decrease while the session is active.
// DurationSec is advanced by the session's wall-clock tick, not by sample
// arrival, and is frozen once EndTime is set.
type Stats struct {
	StartTime      *int64  `json:"startTime"` // ms epoch, nil before first start
	EndTime        *int64  `json:"endTime"`   // ms epoch, nil while active
	DurationSec    int64   `json:"durationSec"`
	DistanceMeters float64 `json:"distanceMeters"`
	Steps          float64 `json:"steps"`
	Calories       float64 `json:"calories"`
	AvgSpeedKmh    float64 `json:"avgSpeedKmh"`
}

// Started reports whether the session has a start time.
func (s Stats) Started() bool { return s.StartTime != nil }

// Stopped reports whether the session has been frozen.
func (s Stats) Stopped() bool { return s.EndTime != nil }

// Summary holds derived per-session figures computed at session end.
// These enrich the route record; they are not part of the live stats.
type Summary struct {
	MaxSpeedMps    float64 `json:"maxSpeedMps"`
	MedianSpeedMps float64 `json:"medianSpeedMps"`
	EntryCount     int     `json:"entryCount"`
	LocationCount  int     `json:"locationCount"`
	RejectedCount  int     `json:"rejectedCount"`
}

// Route is a persisted session: the full activity log plus final stats,
// available for later review.
type Route struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Date    string   `json:"date"` // RFC3339
	Logs    []*Entry `json:"logs"`
	Stats   Stats    `json:"stats"`
	Summary Summary  `json:"summary"`
}
