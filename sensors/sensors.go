// Package sensors abstracts the sample sources the tracker subscribes to.
// Implementations deliver samples via callback; the tracker bridges them
// into the fusion engine.
package sensors

import (
	"context"

	"github.com/strideway/strided/types/sample"
)

// Unsubscriber tears down an active subscription. Implementations must be
// idempotent.
type Unsubscriber interface {
	Unsubscribe()
}

// UnsubscriberFunc adapts a plain func to Unsubscriber.
type UnsubscriberFunc func()

func (f UnsubscriberFunc) Unsubscribe() { f() }

// LocationProvider is a source of location fixes. RequestPermission is asked
// once per session start, before Subscribe.
type LocationProvider interface {
	RequestPermission(ctx context.Context) error
	Subscribe(ctx context.Context, fn func(*sample.Location)) (Unsubscriber, error)
}

// AccelerationProvider is a source of accelerometer readings. No permission
// gate; motion data is ungated on the platforms this daemon fronts.
type AccelerationProvider interface {
	Subscribe(ctx context.Context, fn func(*sample.Acceleration)) (Unsubscriber, error)
}
