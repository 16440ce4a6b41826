package params

import (
	"time"

	"github.com/strideway/strided/common"
)

// AggregatorConfig tunes the session statistics accumulator.
type AggregatorConfig struct {
	// NoiseFloorMeters is the hard threshold below which a location delta is
	// treated as GPS jitter and ignored entirely. No partial credit, no
	// smoothing.
	NoiseFloorMeters float64

	// StrideMeters converts accepted distance into steps.
	StrideMeters float64

	// CaloriesPerKm converts accepted distance into calories.
	CaloriesPerKm float64
}

// DefaultAggregatorConfig returns the stock accumulation heuristics.
func DefaultAggregatorConfig() AggregatorConfig {
	return AggregatorConfig{
		NoiseFloorMeters: 0.3,
		StrideMeters:     common.StrideMeters,
		CaloriesPerKm:    common.CaloriesPerKm,
	}
}

// TickInterval is the wall-clock cadence at which session duration advances,
// independent of sample arrival.
var TickInterval = time.Second
