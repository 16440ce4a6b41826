// Package sample defines the raw sensor observations the fusion pipeline
// consumes: geodetic location fixes and device-frame acceleration readings.
// Samples are immutable once created.
package sample

import (
	"fmt"
	"math"
	"time"
)

// Location is a single location fix from the device location provider.
// Speed is nil when the device cannot estimate it.
type Location struct {
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Speed      *float64 `json:"speedMps,omitempty"`
	CapturedAt int64    `json:"capturedAtMs"`
}

// Acceleration is a single accelerometer reading in the device frame.
// Magnitude is the Euclidean norm of the three axes, derived at construction.
type Acceleration struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Magnitude  float64 `json:"magnitude"`
	CapturedAt int64   `json:"capturedAtMs"`
}

// NewAcceleration derives the magnitude from the axis components.
func NewAcceleration(x, y, z float64, capturedAtMs int64) *Acceleration {
	return &Acceleration{
		X:          x,
		Y:          y,
		Z:          z,
		Magnitude:  math.Sqrt(x*x + y*y + z*z),
		CapturedAt: capturedAtMs,
	}
}

// Time returns the capture time at millisecond granularity.
func (l Location) Time() time.Time {
	return time.UnixMilli(l.CapturedAt)
}

// Time returns the capture time at millisecond granularity.
func (a Acceleration) Time() time.Time {
	return time.UnixMilli(a.CapturedAt)
}

// SpeedOrZero returns the reported speed, or 0 if the device gave none.
func (l Location) SpeedOrZero() float64 {
	if l.Speed == nil {
		return 0
	}
	return *l.Speed
}

// Validate checks the fix for basic validity.
// It returns the first error it encounters.
func (l Location) Validate() error {
	if math.IsNaN(l.Latitude) || math.IsInf(l.Latitude, 0) {
		return fmt.Errorf("non-finite latitude")
	}
	if math.IsNaN(l.Longitude) || math.IsInf(l.Longitude, 0) {
		return fmt.Errorf("non-finite longitude")
	}
	if l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("invalid coordinate: lat=%.14f", l.Latitude)
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("invalid coordinate: lng=%.14f", l.Longitude)
	}
	if l.Speed != nil && (math.IsNaN(*l.Speed) || math.IsInf(*l.Speed, 0)) {
		return fmt.Errorf("non-finite speed")
	}
	if l.CapturedAt < 0 {
		return fmt.Errorf("negative capture time")
	}
	return nil
}

// Validate checks the reading for basic validity.
func (a Acceleration) Validate() error {
	for _, v := range []float64{a.X, a.Y, a.Z, a.Magnitude} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("non-finite acceleration component")
		}
	}
	if a.CapturedAt < 0 {
		return fmt.Errorf("negative capture time")
	}
	return nil
}

// Float64 is a convenience for building optional speeds.
func Float64(v float64) *float64 { return &v }
