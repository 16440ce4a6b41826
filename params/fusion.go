package params

// FusionConfig tunes the sensor-fusion event loop.
type FusionConfig struct {
	// BufferSize is the capacity of each inbound sample channel. Sensor
	// callbacks block once it fills; the reference cadences (~2 s location,
	// ~200 ms acceleration) never come close.
	BufferSize int

	// Dedupe drops byte-identical samples at intake.
	Dedupe bool

	// KalmanSpeed enables a Kalman-filtered speed estimate for location
	// streams whose device speed is null. Off by default; when off, null
	// speeds fall back to the last known reported speed, then zero.
	KalmanSpeed bool
}

// DefaultFusionConfig returns the stock fusion settings.
func DefaultFusionConfig() FusionConfig {
	return FusionConfig{
		BufferSize: 64,
		Dedupe:     true,
	}
}
