package track

import (
	"testing"

	"github.com/strideway/strided/types/sample"
)

func testRoute() *Route {
	return &Route{
		ID:   "r1",
		Name: "Route test",
		Logs: []*Entry{
			{ID: "a", Location: &sample.Location{Latitude: 1, Longitude: 10}},
			{ID: "b"}, // acceleration-only entry, no fix yet
			{ID: "c", Location: &sample.Location{Latitude: 2, Longitude: 20}},
			{ID: "d", Location: &sample.Location{Latitude: 3, Longitude: 30}},
		},
	}
}

func TestLineStringSkipsNilLocations(t *testing.T) {
	ls := testRoute().LineString()
	if len(ls) != 3 {
		t.Fatalf("have %d points want 3", len(ls))
	}
	// Order preserved, lon/lat per GeoJSON.
	if ls[0].Lon() != 10 || ls[0].Lat() != 1 {
		t.Errorf("first point have %v", ls[0])
	}
	if ls[2].Lon() != 30 || ls[2].Lat() != 3 {
		t.Errorf("last point have %v", ls[2])
	}
}

func TestLatLonPath(t *testing.T) {
	path := testRoute().LatLonPath()
	if len(path) != 3 {
		t.Fatalf("have %d want 3", len(path))
	}
	if path[0] != [2]float64{1, 10} {
		t.Errorf("have %v want [1 10]", path[0])
	}
}

func TestPathFeatureCollection(t *testing.T) {
	fc := testRoute().PathFeatureCollection()
	if len(fc.Features) != 3 {
		t.Fatalf("have %d features want 3 (line, start, end)", len(fc.Features))
	}
	if fc.Features[1].Properties["marker"] != "start" {
		t.Errorf("have %v want start", fc.Features[1].Properties["marker"])
	}
	if fc.Features[2].Properties["marker"] != "end" {
		t.Errorf("have %v want end", fc.Features[2].Properties["marker"])
	}

	empty := &Route{ID: "r2", Logs: []*Entry{{ID: "x"}}}
	if fc := empty.PathFeatureCollection(); len(fc.Features) != 0 {
		t.Errorf("have %d features want 0", len(fc.Features))
	}
}
