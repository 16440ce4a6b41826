package sensors

import (
	"context"
	"sync"

	"github.com/strideway/strided/types/sample"
)

// Feed is a programmatic sensor pair. The web daemon pushes decoded samples
// from HTTP ingest into it; tests drive it directly. It implements both
// provider interfaces, permission always granted.
type Feed struct {
	mu      sync.Mutex
	nextID  int
	locSubs map[int]func(*sample.Location)
	accSubs map[int]func(*sample.Acceleration)
}

// NewFeed returns an empty feed with no subscribers.
func NewFeed() *Feed {
	return &Feed{
		locSubs: make(map[int]func(*sample.Location)),
		accSubs: make(map[int]func(*sample.Acceleration)),
	}
}

func (f *Feed) RequestPermission(ctx context.Context) error { return nil }

func (f *Feed) Subscribe(ctx context.Context, fn func(*sample.Location)) (Unsubscriber, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	f.locSubs[id] = fn
	return UnsubscriberFunc(func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.locSubs, id)
	}), nil
}

// Accelerations returns the feed's acceleration side as a provider.
func (f *Feed) Accelerations() AccelerationProvider {
	return accelerationSide{f}
}

type accelerationSide struct{ f *Feed }

func (s accelerationSide) Subscribe(ctx context.Context, fn func(*sample.Acceleration)) (Unsubscriber, error) {
	s.f.mu.Lock()
	defer s.f.mu.Unlock()
	id := s.f.nextID
	s.f.nextID++
	s.f.accSubs[id] = fn
	return UnsubscriberFunc(func() {
		s.f.mu.Lock()
		defer s.f.mu.Unlock()
		delete(s.f.accSubs, id)
	}), nil
}

// PushLocation delivers a fix to all location subscribers.
func (f *Feed) PushLocation(loc *sample.Location) {
	f.mu.Lock()
	subs := make([]func(*sample.Location), 0, len(f.locSubs))
	for _, fn := range f.locSubs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()
	for _, fn := range subs {
		fn(loc)
	}
}

// PushAcceleration delivers a reading to all acceleration subscribers.
func (f *Feed) PushAcceleration(acc *sample.Acceleration) {
	f.mu.Lock()
	subs := make([]func(*sample.Acceleration), 0, len(f.accSubs))
	for _, fn := range f.accSubs {
		subs = append(subs, fn)
	}
	f.mu.Unlock()
	for _, fn := range subs {
		fn(acc)
	}
}

// Push routes a decoded sample to the matching side.
func (f *Feed) Push(d sample.Decoded) {
	if d.Location != nil {
		f.PushLocation(d.Location)
	}
	if d.Acceleration != nil {
		f.PushAcceleration(d.Acceleration)
	}
}
