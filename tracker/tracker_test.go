package tracker

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/strideway/strided/fusion"
	"github.com/strideway/strided/params"
	"github.com/strideway/strided/sensors"
	"github.com/strideway/strided/types/sample"
	"github.com/strideway/strided/types/track"
)

type memStore struct {
	routes []*track.Route
	err    error
}

func (s *memStore) SaveRoute(r *track.Route) error {
	if s.err != nil {
		return s.err
	}
	s.routes = append(s.routes, r)
	return nil
}

type deniedProvider struct{}

func (deniedProvider) RequestPermission(ctx context.Context) error {
	return errors.New("user refused")
}
func (deniedProvider) Subscribe(ctx context.Context, fn func(*sample.Location)) (sensors.Unsubscriber, error) {
	return nil, errors.New("unreachable")
}

type brokenAccProvider struct{}

func (brokenAccProvider) Subscribe(ctx context.Context, fn func(*sample.Acceleration)) (sensors.Unsubscriber, error) {
	return nil, errors.New("sensor unavailable")
}

func newTestRig(t *testing.T, store RouteStore) (*Tracker, *sensors.Feed, *ManualClock, context.CancelFunc) {
	t.Helper()
	engine := fusion.New(params.DefaultFusionConfig(), params.DefaultClassifierConfig(),
		params.DefaultAggregatorConfig(), slog.Default())
	ctx, cancel := context.WithCancel(context.Background())
	go engine.Run(ctx)
	feed := sensors.NewFeed()
	clock := NewManualClock(time.Unix(1_700_000_000, 0))
	tr := New(engine, feed, feed.Accelerations(), store, clock, slog.Default())
	return tr, feed, clock, cancel
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal("timed out waiting for condition")
		case <-time.After(2 * time.Millisecond):
		}
	}
}

func TestStartStopLifecycle(t *testing.T) {
	store := &memStore{}
	tr, feed, clock, cancel := newTestRig(t, store)
	defer cancel()

	if tr.IsActive() {
		t.Fatal("new tracker must be idle")
	}
	if err := tr.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !tr.IsActive() {
		t.Fatal("tracker must be active after Start")
	}
	// Second start is a no-op.
	if err := tr.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	feed.PushLocation(&sample.Location{Latitude: 46.87, Longitude: -113.99,
		Speed: sample.Float64(1.0), CapturedAt: clock.Now().UnixMilli()})
	waitFor(t, func() bool { return tr.engine.Snapshot().EntryCount == 1 })

	route, err := tr.Stop(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if route == nil {
		t.Fatal("want a route from a session with entries")
	}
	if tr.IsActive() {
		t.Fatal("tracker must be idle after Stop")
	}
	if len(store.routes) != 1 || store.routes[0].ID != route.ID {
		t.Fatalf("have %d stored routes want 1", len(store.routes))
	}
	if route.Name == "" || route.Stats.EndTime == nil {
		t.Errorf("route incomplete: %+v", route)
	}

	// Second stop is a no-op.
	route2, err := tr.Stop(context.Background())
	if err != nil || route2 != nil {
		t.Errorf("have (%v, %v) want (nil, nil)", route2, err)
	}
}

func TestDurationTicksWithoutSamples(t *testing.T) {
	store := &memStore{}
	tr, _, clock, cancel := newTestRig(t, store)
	defer cancel()

	if err := tr.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	for i := int64(1); i <= 5; i++ {
		clock.Advance(time.Second)
		want := i
		waitFor(t, func() bool { return tr.engine.Snapshot().Stats.DurationSec == want })
	}

	route, err := tr.Stop(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if route != nil {
		t.Errorf("empty session must not persist, have %+v", route)
	}
	if len(store.routes) != 0 {
		t.Errorf("have %d stored routes want 0", len(store.routes))
	}
	if got := tr.engine.Snapshot().Stats.DurationSec; got != 5 {
		t.Errorf("have %v want 5", got)
	}
}

func TestPermissionDenied(t *testing.T) {
	engine := fusion.New(params.DefaultFusionConfig(), params.DefaultClassifierConfig(),
		params.DefaultAggregatorConfig(), slog.Default())
	feed := sensors.NewFeed()
	tr := New(engine, deniedProvider{}, feed.Accelerations(), &memStore{}, nil, slog.Default())

	err := tr.Start(context.Background())
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("have %v want ErrPermissionDenied", err)
	}
	if tr.IsActive() {
		t.Fatal("tracker must stay idle on permission failure")
	}
}

func TestSubscriptionFailure(t *testing.T) {
	engine := fusion.New(params.DefaultFusionConfig(), params.DefaultClassifierConfig(),
		params.DefaultAggregatorConfig(), slog.Default())
	feed := sensors.NewFeed()
	tr := New(engine, feed, brokenAccProvider{}, &memStore{}, nil, slog.Default())

	err := tr.Start(context.Background())
	var subErr *SubscriptionError
	if !errors.As(err, &subErr) {
		t.Fatalf("have %v want SubscriptionError", err)
	}
	if subErr.Sensor != "acceleration" {
		t.Errorf("have %q want %q", subErr.Sensor, "acceleration")
	}
	if tr.IsActive() {
		t.Fatal("tracker must stay idle on subscription failure")
	}
}

func TestSaveFailureStillStops(t *testing.T) {
	store := &memStore{err: errors.New("disk full")}
	tr, feed, clock, cancel := newTestRig(t, store)
	defer cancel()

	if err := tr.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	feed.PushLocation(&sample.Location{Latitude: 46.87, Longitude: -113.99,
		Speed: sample.Float64(1.0), CapturedAt: clock.Now().UnixMilli()})
	waitFor(t, func() bool { return tr.engine.Snapshot().EntryCount == 1 })

	route, err := tr.Stop(context.Background())
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("have %v want PersistenceError", err)
	}
	if route == nil {
		t.Fatal("finished route must be returned alongside the error")
	}
	if tr.IsActive() {
		t.Fatal("tracker must be idle even when the save fails")
	}
}
