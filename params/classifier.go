package params

import (
	"fmt"

	"github.com/strideway/strided/common"
)

// ClassifierConfig holds the speed and acceleration thresholds the activity
// classifier evaluates. The calibration model is speed-threshold driven:
// speed bands pick the activity, with the acceleration magnitude used to
// separate idle from unknown at low speed and to promote walking to running
// under heavy shake. Thresholds are explicit configuration; the classifier
// reads them on every call and never caches.
type ClassifierConfig struct {
	// WalkSpeedMin, RunSpeedMin, VehicleSpeedMin are m/s band floors,
	// strictly increasing.
	WalkSpeedMin    float64 `json:"walkSpeedMin"`
	RunSpeedMin     float64 `json:"runSpeedMin"`
	VehicleSpeedMin float64 `json:"vehicleSpeedMin"`

	// AccThresholdLow is the magnitude below which a slow device counts as
	// idle; AccThresholdHigh is the magnitude above which a moving device
	// counts as running regardless of speed band.
	AccThresholdLow  float64 `json:"accThresholdLow"`
	AccThresholdHigh float64 `json:"accThresholdHigh"`
}

// DefaultClassifierConfig returns the stock calibration.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		WalkSpeedMin:     common.SpeedOfWalkingMin,
		RunSpeedMin:      common.SpeedOfRunningMin,
		VehicleSpeedMin:  common.SpeedOfVehicleMin,
		AccThresholdLow:  0.5,
		AccThresholdHigh: 2.5,
	}
}

// Validate checks threshold sanity: speed bands must be positive and
// strictly increasing, acceleration thresholds non-negative and ordered.
func (c ClassifierConfig) Validate() error {
	if c.WalkSpeedMin <= 0 {
		return fmt.Errorf("walkSpeedMin must be positive, got %v", c.WalkSpeedMin)
	}
	if c.RunSpeedMin <= c.WalkSpeedMin {
		return fmt.Errorf("runSpeedMin (%v) must exceed walkSpeedMin (%v)", c.RunSpeedMin, c.WalkSpeedMin)
	}
	if c.VehicleSpeedMin <= c.RunSpeedMin {
		return fmt.Errorf("vehicleSpeedMin (%v) must exceed runSpeedMin (%v)", c.VehicleSpeedMin, c.RunSpeedMin)
	}
	if c.AccThresholdLow < 0 {
		return fmt.Errorf("accThresholdLow must be non-negative, got %v", c.AccThresholdLow)
	}
	if c.AccThresholdHigh <= c.AccThresholdLow {
		return fmt.Errorf("accThresholdHigh (%v) must exceed accThresholdLow (%v)", c.AccThresholdHigh, c.AccThresholdLow)
	}
	return nil
}

// Merge overlays any positive fields of other onto c, returning the result.
// Zero-valued fields in other leave c untouched, so partial updates work the
// way clients expect.
func (c ClassifierConfig) Merge(other ClassifierConfig) ClassifierConfig {
	out := c
	if other.WalkSpeedMin > 0 {
		out.WalkSpeedMin = other.WalkSpeedMin
	}
	if other.RunSpeedMin > 0 {
		out.RunSpeedMin = other.RunSpeedMin
	}
	if other.VehicleSpeedMin > 0 {
		out.VehicleSpeedMin = other.VehicleSpeedMin
	}
	if other.AccThresholdLow > 0 {
		out.AccThresholdLow = other.AccThresholdLow
	}
	if other.AccThresholdHigh > 0 {
		out.AccThresholdHigh = other.AccThresholdHigh
	}
	return out
}
