package state

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"go.etcd.io/bbolt"

	"github.com/strideway/strided/params"
	"github.com/strideway/strided/types/track"
)

// Totals are lifetime accumulations across all saved routes. Decimal so that
// years of small float sums don't drift.
type Totals struct {
	DistanceMeters decimal.Decimal `json:"distanceMeters"`
	Steps          decimal.Decimal `json:"steps"`
	Calories       decimal.Decimal `json:"calories"`
	DurationSec    int64           `json:"durationSec"`
	Routes         int64           `json:"routes"`
}

// foldTotals accumulates a route's final stats into the lifetime record,
// inside the caller's transaction.
func (s *Store) foldTotals(tx *bbolt.Tx, route *track.Route) error {
	b := tx.Bucket(params.TotalsBucket)
	totals := Totals{}
	if data := b.Get(params.TotalsKey); data != nil {
		if err := json.Unmarshal(data, &totals); err != nil {
			return err
		}
	}
	totals.DistanceMeters = totals.DistanceMeters.Add(decimal.NewFromFloat(route.Stats.DistanceMeters))
	totals.Steps = totals.Steps.Add(decimal.NewFromFloat(route.Stats.Steps))
	totals.Calories = totals.Calories.Add(decimal.NewFromFloat(route.Stats.Calories))
	totals.DurationSec += route.Stats.DurationSec
	totals.Routes++
	data, err := json.Marshal(totals)
	if err != nil {
		return err
	}
	return b.Put(params.TotalsKey, data)
}

// Totals returns the lifetime accumulations.
func (s *Store) Totals() (Totals, error) {
	totals := Totals{}
	err := s.DB.View(func(tx *bbolt.Tx) error {
		if data := tx.Bucket(params.TotalsBucket).Get(params.TotalsKey); data != nil {
			return json.Unmarshal(data, &totals)
		}
		return nil
	})
	return totals, err
}
