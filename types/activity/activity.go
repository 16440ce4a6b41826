package activity

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// Activity is the classified motion state of the tracked device.
type Activity int

const (
	TrackerStateIdle Activity = iota
	TrackerStateWalking
	TrackerStateRunning
	TrackerStateVehicle
	TrackerStateUnknown Activity = -1
)

var AllActivityNames = []string{
	TrackerStateUnknown.String(),
	TrackerStateIdle.String(),
	TrackerStateWalking.String(),
	TrackerStateRunning.String(),
	TrackerStateVehicle.String(),
}

var (
	activityIdle    = regexp.MustCompile(`(?i)idle|stationary|still`)
	activityWalking = regexp.MustCompile(`(?i)walk`)
	activityRunning = regexp.MustCompile(`(?i)run`)
	activityVehicle = regexp.MustCompile(`(?i)vehicle|drive|driving|automotive`)
)

// IsActive returns whether the activity is moving.
func (a Activity) IsActive() bool {
	return a > TrackerStateIdle && a <= TrackerStateVehicle
}

// IsActiveHuman returns whether the activity is human-powered.
func (a Activity) IsActiveHuman() bool {
	return a == TrackerStateWalking || a == TrackerStateRunning
}

// IsKnown returns true if the activity is not Unknown.
func (a Activity) IsKnown() bool {
	return a != TrackerStateUnknown
}

// String implements the Stringer interface.
func (a Activity) String() string {
	switch a {
	case TrackerStateIdle:
		return "idle"
	case TrackerStateWalking:
		return "walking"
	case TrackerStateRunning:
		return "running"
	case TrackerStateVehicle:
		return "vehicle"
	}
	return "unknown"
}

// Emoji returns a single emoji representation of the activity.
func (a Activity) Emoji() string {
	switch a {
	case TrackerStateIdle:
		return "📍"
	case TrackerStateWalking:
		return "🚶"
	case TrackerStateRunning:
		return "🏃"
	case TrackerStateVehicle:
		return "🚗"
	}
	return "❓"
}

func FromString(str string) Activity {
	switch {
	case activityIdle.MatchString(str):
		return TrackerStateIdle
	case activityWalking.MatchString(str):
		return TrackerStateWalking
	case activityRunning.MatchString(str):
		return TrackerStateRunning
	case activityVehicle.MatchString(str):
		return TrackerStateVehicle
	}
	return TrackerStateUnknown
}

func FromAny(a any) Activity {
	if a == nil {
		return TrackerStateUnknown
	}
	s, ok := a.(string)
	if !ok {
		return TrackerStateUnknown
	}
	return FromString(s)
}

// MarshalJSON encodes the activity as its lowercase name.
// The wire format is shared with tracker clients and stored routes.
func (a Activity) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a quoted activity name.
func (a *Activity) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("activity: %w", err)
	}
	*a = FromString(s)
	return nil
}
