package fusion

import (
	"time"

	rkalman "github.com/regnull/kalman"

	"github.com/strideway/strided/types/sample"
)

// speedFilter smooths speed for location streams whose device speed comes in
// null. Initialized lazily at the first fix because the filter wants a base
// latitude.
type speedFilter struct {
	filter *rkalman.GeoFilter
	last   time.Time
}

func newSpeedFilter(latitude float64) (*speedFilter, error) {
	filter, err := rkalman.NewGeoFilter(&rkalman.GeoProcessNoise{
		// We assume the measurements will take place at approximately the
		// same location, so that we can disregard the earth's curvature.
		BaseLat: latitude,
		// How much do we expect the user to move, meters per second.
		DistancePerSecond: 1.4,
		// How much do we expect the user's speed to change, meters per second squared.
		SpeedPerSecond: 0.5,
	})
	if err != nil {
		return nil, err
	}
	return &speedFilter{filter: filter}, nil
}

// estimate observes a fix and returns the filtered speed in m/s.
func (s *speedFilter) estimate(loc *sample.Location) float64 {
	seconds := loc.Time().Sub(s.last).Seconds()
	if seconds <= 0 {
		seconds = 1
	}
	s.last = loc.Time()
	err := s.filter.Observe(seconds, &rkalman.GeoObserved{
		Lat:                loc.Latitude,
		Lng:                loc.Longitude,
		Speed:              loc.SpeedOrZero(),
		HorizontalAccuracy: 10,
		VerticalAccuracy:   2.0,
	})
	if err != nil {
		return loc.SpeedOrZero()
	}
	if est := s.filter.Estimate(); est != nil {
		return est.Speed
	}
	return loc.SpeedOrZero()
}
