// Package classify derives an activity state and a confidence score from a
// fused (speed, acceleration-magnitude) observation.
package classify

import (
	"math"

	"github.com/strideway/strided/common"
	"github.com/strideway/strided/params"
	"github.com/strideway/strided/types/activity"
)

// Classifier maps fused sensor observations to activity states using
// configured speed bands and acceleration thresholds. The zero value is not
// usable; construct with New.
type Classifier struct {
	config params.ClassifierConfig
}

// New returns a classifier with the given calibration.
func New(config params.ClassifierConfig) *Classifier {
	return &Classifier{config: config}
}

// Classify returns the activity for a speed (m/s) and an acceleration
// magnitude. Rules are evaluated top to bottom, first match wins:
//
//  1. idle: speed below the stationary floor AND magnitude below the low
//     acceleration threshold. Both must agree; a still GPS fix on a shaking
//     device is not idle.
//  2. vehicle: speed at or above the vehicle band floor. Pure speed test,
//     a phone resting in a car reads near-zero magnitude.
//  3. running: speed at or above the run band floor, OR magnitude above the
//     high acceleration threshold (running in place, GPS-starved treadmill).
//  4. walking: speed at or above the walk band floor.
//  5. unknown: anything left over, e.g. slow drift with moderate shake.
func (c *Classifier) Classify(speed, magnitude float64) activity.Activity {
	switch {
	case speed < common.StationarySpeedMax && magnitude < c.config.AccThresholdLow:
		return activity.TrackerStateIdle
	case speed >= c.config.VehicleSpeedMin:
		return activity.TrackerStateVehicle
	case speed >= c.config.RunSpeedMin || magnitude > c.config.AccThresholdHigh:
		return activity.TrackerStateRunning
	case speed >= c.config.WalkSpeedMin:
		return activity.TrackerStateWalking
	}
	return activity.TrackerStateUnknown
}

// Confidence scores how decisively the inputs support any classification at
// all, on [0,100]. Speed saturates at 5 m/s and magnitude at 3; the two
// normalized components are averaged and rounded half away from zero. It is
// not a per-class posterior, an emphatic vehicle reading and an emphatic
// running reading both score high.
func (c *Classifier) Confidence(speed, magnitude float64) int {
	s := common.Clamp(speed/5.0, 0, 1)
	a := common.Clamp(magnitude/3.0, 0, 1)
	return common.Round((s + a) / 2.0 * 100.0)
}

// Magnitude is the Euclidean norm of a device-frame acceleration vector.
func Magnitude(x, y, z float64) float64 {
	return math.Sqrt(x*x + y*y + z*z)
}

// Config returns the calibration in effect.
func (c *Classifier) Config() params.ClassifierConfig {
	return c.config
}

// SetConfig swaps the calibration. Not safe for concurrent use with Classify;
// the fusion loop owns the classifier and serializes access.
func (c *Classifier) SetConfig(config params.ClassifierConfig) {
	c.config = config
}
