package sensors

import (
	"context"
	"strings"
	"testing"

	"github.com/strideway/strided/types/sample"
)

func TestFeedSubscribeUnsubscribe(t *testing.T) {
	f := NewFeed()
	ctx := context.Background()

	var locs []*sample.Location
	sub, err := f.Subscribe(ctx, func(l *sample.Location) { locs = append(locs, l) })
	if err != nil {
		t.Fatal(err)
	}

	f.PushLocation(&sample.Location{Latitude: 1, Longitude: 2})
	sub.Unsubscribe()
	sub.Unsubscribe() // idempotent
	f.PushLocation(&sample.Location{Latitude: 3, Longitude: 4})

	if len(locs) != 1 || locs[0].Latitude != 1 {
		t.Errorf("have %v want one fix at lat=1", locs)
	}
}

func TestFeedAccelerationSide(t *testing.T) {
	f := NewFeed()
	var accs []*sample.Acceleration
	if _, err := f.Accelerations().Subscribe(context.Background(), func(a *sample.Acceleration) {
		accs = append(accs, a)
	}); err != nil {
		t.Fatal(err)
	}
	f.Push(sample.Decoded{Acceleration: sample.NewAcceleration(3, 4, 0, 0)})
	if len(accs) != 1 || accs[0].Magnitude != 5 {
		t.Errorf("have %v want one reading with magnitude 5", accs)
	}
}

func TestReplayDecodesBothTypes(t *testing.T) {
	f := NewFeed()
	var nLoc, nAcc int
	f.Subscribe(context.Background(), func(*sample.Location) { nLoc++ })
	f.Accelerations().Subscribe(context.Background(), func(*sample.Acceleration) { nAcc++ })

	in := strings.NewReader(`{"type":"location","latitude":46.8,"longitude":-113.9,"speedMps":1.1,"capturedAtMs":1000}
{"type":"acceleration","x":0,"y":0,"z":9.8,"capturedAtMs":1100}
garbage line
{"latitude":46.9,"longitude":-113.8,"capturedAtMs":2000}
`)
	n, err := NewReplay(f, 0).Run(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("have %d delivered want 3", n)
	}
	if nLoc != 2 || nAcc != 1 {
		t.Errorf("have %d locations, %d accelerations want 2, 1", nLoc, nAcc)
	}
}
