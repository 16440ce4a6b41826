// Package tracker drives the session lifecycle: permission, subscription,
// wall-clock ticking, and persistence of the finished session as a route.
package tracker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/strideway/strided/events"
	"github.com/strideway/strided/fusion"
	"github.com/strideway/strided/params"
	"github.com/strideway/strided/sensors"
	"github.com/strideway/strided/types/sample"
	"github.com/strideway/strided/types/track"
)

// RouteStore persists finished sessions.
type RouteStore interface {
	SaveRoute(route *track.Route) error
}

// Tracker owns the idle/active state machine. Start and Stop are safe for
// concurrent use; transitions are serialized and repeated calls in the same
// state are no-ops.
type Tracker struct {
	logger *slog.Logger
	clock  Clock
	engine *fusion.Engine
	loc    sensors.LocationProvider
	acc    sensors.AccelerationProvider
	store  RouteStore
	newID  func() string

	mu     sync.Mutex
	active bool
	cancel context.CancelFunc
	subs   []sensors.Unsubscriber
}

// New wires a tracker. store may be nil, in which case finished sessions are
// discarded after Stop returns them.
func New(engine *fusion.Engine, loc sensors.LocationProvider, acc sensors.AccelerationProvider, store RouteStore, clock Clock, logger *slog.Logger) *Tracker {
	if clock == nil {
		clock = WallClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		logger: logger.With("d", "tracker"),
		clock:  clock,
		engine: engine,
		loc:    loc,
		acc:    acc,
		store:  store,
		newID:  func() string { return uuid.New().String() },
	}
}

// IsActive reports whether a session is running.
func (t *Tracker) IsActive() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Start opens a session: asks location permission, resets the fusion
// engine, subscribes both sensors, and begins ticking session duration.
// Starting an active tracker is a no-op. On any failure the tracker remains
// idle with no partial subscriptions.
func (t *Tracker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active {
		t.logger.Debug("Start ignored, already active")
		return nil
	}

	if err := t.loc.RequestPermission(ctx); err != nil {
		t.logger.Warn("Location permission refused", "error", err)
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	t.engine.Reset(t.clock.Now().UnixMilli())

	locSub, err := t.loc.Subscribe(runCtx, func(l *sample.Location) {
		_ = t.engine.PushLocation(runCtx, l)
	})
	if err != nil {
		cancel()
		t.engine.Freeze(t.clock.Now().UnixMilli())
		return &SubscriptionError{Sensor: "location", Err: err}
	}
	accSub, err := t.acc.Subscribe(runCtx, func(a *sample.Acceleration) {
		_ = t.engine.PushAcceleration(runCtx, a)
	})
	if err != nil {
		locSub.Unsubscribe()
		cancel()
		t.engine.Freeze(t.clock.Now().UnixMilli())
		return &SubscriptionError{Sensor: "acceleration", Err: err}
	}

	t.subs = []sensors.Unsubscriber{locSub, accSub}
	t.cancel = cancel
	t.active = true
	go t.tickLoop(runCtx)

	events.StateChangeFeed.Send(true)
	t.logger.Info("Tracking started")
	return nil
}

func (t *Tracker) tickLoop(ctx context.Context) {
	tick, stop := t.clock.Ticker(params.TickInterval)
	defer stop()
	for {
		select {
		case <-ctx.Done():
			return
		case tm := <-tick:
			t.engine.Tick(tm)
		}
	}
}

// Stop closes the session: tears down subscriptions, freezes the stats, and
// persists a route when the session logged anything. Stopping an idle
// tracker is a no-op returning (nil, nil). An empty session is discarded,
// also (nil, nil). A persistence failure still stops the session; the
// finished route is returned alongside the error.
func (t *Tracker) Stop(ctx context.Context) (*track.Route, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.active {
		t.logger.Debug("Stop ignored, not active")
		return nil, nil
	}

	t.cancel()
	for _, sub := range t.subs {
		sub.Unsubscribe()
	}
	t.subs = nil
	t.active = false

	now := t.clock.Now()
	stats := t.engine.Freeze(now.UnixMilli())
	entries := t.engine.Entries()
	summary := t.engine.Summary()

	events.StateChangeFeed.Send(false)

	if len(entries) == 0 {
		t.logger.Info("Tracking stopped, empty session discarded",
			"duration", stats.DurationSec)
		return nil, nil
	}

	route := &track.Route{
		ID:      t.newID(),
		Name:    "Route " + now.Format("2006-01-02 15:04:05"),
		Date:    now.Format(time.RFC3339),
		Logs:    entries,
		Stats:   stats,
		Summary: summary,
	}

	t.logger.Info("Tracking stopped", "route", route.Name,
		"entries", len(entries),
		"distance", stats.DistanceMeters,
		"duration", stats.DurationSec)

	if t.store != nil {
		if err := t.store.SaveRoute(route); err != nil {
			t.logger.Error("Route save failed", "route", route.Name, "error", err)
			return route, &PersistenceError{Err: err}
		}
	}
	events.NewRouteFeed.Send(route)
	return route, nil
}
