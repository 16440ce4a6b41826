package tracker

import (
	"errors"
	"fmt"
)

// ErrPermissionDenied reports that the location provider refused access.
// Start fails without touching session state.
var ErrPermissionDenied = errors.New("location permission denied")

// SubscriptionError reports a sensor subscription that could not be
// established at session start.
type SubscriptionError struct {
	Sensor string
	Err    error
}

func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("subscribe %s: %v", e.Sensor, e.Err)
}

func (e *SubscriptionError) Unwrap() error { return e.Err }

// PersistenceError reports a route that could not be saved at session stop.
// The stop itself still takes effect.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist route: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
