package track

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// LineString extracts the geographic path of the route: the ordered points of
// every entry that carries a location. Entries without a location (pure
// acceleration events before any fix) are skipped. Points are (lon, lat),
// per GeoJSON.
func (r *Route) LineString() orb.LineString {
	ls := make(orb.LineString, 0, len(r.Logs))
	for _, e := range r.Logs {
		if e.Location == nil {
			continue
		}
		ls = append(ls, orb.Point{e.Location.Longitude, e.Location.Latitude})
	}
	return ls
}

// LatLonPath returns the path as (lat, lon) pairs in log order, the shape
// map clients expect for polyline rendering.
func (r *Route) LatLonPath() [][2]float64 {
	ls := r.LineString()
	path := make([][2]float64, len(ls))
	for i, pt := range ls {
		path[i] = [2]float64{pt.Lat(), pt.Lon()}
	}
	return path
}

// PathFeatureCollection renders the route as a GeoJSON FeatureCollection:
// the path LineString plus distinguished start and end point features for
// map annotation. Empty paths yield an empty collection.
func (r *Route) PathFeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	ls := r.LineString()
	if len(ls) == 0 {
		return fc
	}

	line := geojson.NewFeature(ls)
	line.Properties["routeId"] = r.ID
	line.Properties["name"] = r.Name
	fc.Append(line)

	start := geojson.NewFeature(ls[0])
	start.Properties["marker"] = "start"
	fc.Append(start)

	end := geojson.NewFeature(ls[len(ls)-1])
	end.Properties["marker"] = "end"
	fc.Append(end)

	return fc
}
