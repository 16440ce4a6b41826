package state

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/strideway/strided/types/sample"
	"github.com/strideway/strided/types/track"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "routes.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testRoute(id, date string, distance float64) *track.Route {
	start := int64(0)
	end := int64(3_600_000)
	return &track.Route{
		ID:   id,
		Name: "Route " + id,
		Date: date,
		Logs: []*track.Entry{{
			ID:       id + "-0",
			Location: &sample.Location{Latitude: 46.87, Longitude: -113.99},
		}},
		Stats: track.Stats{
			StartTime:      &start,
			EndTime:        &end,
			DurationSec:    3600,
			DistanceMeters: distance,
			Steps:          distance / 0.8,
			Calories:       distance / 1000 * 60,
		},
	}
}

func TestSaveGetRoute(t *testing.T) {
	s := openTestStore(t)
	want := testRoute("a", "2026-08-28T10:00:00Z", 1000)
	if err := s.SaveRoute(want); err != nil {
		t.Fatal(err)
	}
	got, err := s.GetRoute("a")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != want.Name || len(got.Logs) != 1 || got.Stats.DistanceMeters != 1000 {
		t.Errorf("have %+v want %+v", got, want)
	}
	if last := s.LastRoute(); last == nil || last.ID != "a" {
		t.Errorf("have %v want cached route a", last)
	}
}

func TestGetRouteNotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.GetRoute("nope"); !errors.Is(err, ErrRouteNotFound) {
		t.Errorf("have %v want ErrRouteNotFound", err)
	}
}

func TestListRoutesNewestFirst(t *testing.T) {
	s := openTestStore(t)
	s.SaveRoute(testRoute("old", "2026-08-27T10:00:00Z", 100))
	s.SaveRoute(testRoute("new", "2026-08-28T10:00:00Z", 200))
	got, err := s.ListRoutes()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "new" || got[1].ID != "old" {
		t.Errorf("have %v want [new old]", []string{got[0].ID, got[1].ID})
	}
}

func TestDeleteRoute(t *testing.T) {
	s := openTestStore(t)
	s.SaveRoute(testRoute("a", "2026-08-28T10:00:00Z", 100))
	if err := s.DeleteRoute("a"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetRoute("a"); !errors.Is(err, ErrRouteNotFound) {
		t.Errorf("have %v want ErrRouteNotFound", err)
	}
	if err := s.DeleteRoute("a"); !errors.Is(err, ErrRouteNotFound) {
		t.Errorf("have %v want ErrRouteNotFound", err)
	}
}

func TestRenameRoute(t *testing.T) {
	s := openTestStore(t)
	s.SaveRoute(testRoute("a", "2026-08-28T10:00:00Z", 100))
	got, err := s.RenameRoute("a", "Morning loop")
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Morning loop" {
		t.Errorf("have %q want %q", got.Name, "Morning loop")
	}
	stored, _ := s.GetRoute("a")
	if stored.Name != "Morning loop" {
		t.Errorf("rename not persisted: %q", stored.Name)
	}
}

func TestTotalsAccumulate(t *testing.T) {
	s := openTestStore(t)
	s.SaveRoute(testRoute("a", "2026-08-28T10:00:00Z", 1000))
	s.SaveRoute(testRoute("b", "2026-08-28T11:00:00Z", 500))
	got, err := s.Totals()
	if err != nil {
		t.Fatal(err)
	}
	if !got.DistanceMeters.Equal(decimal.NewFromInt(1500)) {
		t.Errorf("have %v want 1500", got.DistanceMeters)
	}
	if got.Routes != 2 || got.DurationSec != 7200 {
		t.Errorf("have %+v want 2 routes, 7200s", got)
	}
	// Deleting a route leaves lifetime totals alone.
	s.DeleteRoute("a")
	got, _ = s.Totals()
	if got.Routes != 2 {
		t.Errorf("have %v want 2", got.Routes)
	}
}

func TestOverwriteRoutes(t *testing.T) {
	s := openTestStore(t)
	s.SaveRoute(testRoute("a", "2026-08-28T10:00:00Z", 100))
	err := s.OverwriteRoutes([]*track.Route{
		testRoute("x", "2026-08-28T12:00:00Z", 10),
		testRoute("y", "2026-08-28T13:00:00Z", 20),
	})
	if err != nil {
		t.Fatal(err)
	}
	got, _ := s.ListRoutes()
	if len(got) != 2 {
		t.Fatalf("have %d routes want 2", len(got))
	}
	if _, err := s.GetRoute("a"); !errors.Is(err, ErrRouteNotFound) {
		t.Errorf("have %v want ErrRouteNotFound", err)
	}
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "routes.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	s.SaveRoute(testRoute("a", "2026-08-28T10:00:00Z", 100))
	s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	if _, err := s2.GetRoute("a"); err != nil {
		t.Errorf("route lost across reopen: %v", err)
	}
}
