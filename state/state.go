// Package state persists routes and lifetime totals in a single bbolt file.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/jellydator/ttlcache/v3"
	"go.etcd.io/bbolt"

	"github.com/strideway/strided/params"
	"github.com/strideway/strided/types/track"
)

// ErrRouteNotFound is returned for lookups of unknown route IDs.
var ErrRouteNotFound = errors.New("route not found")

// Store owns the route database. Opening a writable conn takes a file lock;
// one store per datadir.
type Store struct {
	DB     *bbolt.DB
	logger *slog.Logger

	// lastKnown caches the most recently saved route for the live API.
	lastKnown *ttlcache.Cache[string, *track.Route]
}

// Open opens (creating if necessary) the route database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, err
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(params.RoutesBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(params.TotalsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	s := &Store{
		DB:     db,
		logger: slog.Default().With("d", "state"),
		lastKnown: ttlcache.New[string, *track.Route](
			ttlcache.WithTTL[string, *track.Route](params.CacheLastKnownTTL)),
	}
	go s.lastKnown.Start()
	return s, nil
}

func (s *Store) Close() error {
	s.lastKnown.Stop()
	return s.DB.Close()
}

// SaveRoute persists a route and folds its stats into the lifetime totals
// in the same transaction.
func (s *Store) SaveRoute(route *track.Route) error {
	data, err := json.Marshal(route)
	if err != nil {
		return err
	}
	err = s.DB.Update(func(tx *bbolt.Tx) error {
		if err := tx.Bucket(params.RoutesBucket).Put([]byte(route.ID), data); err != nil {
			return err
		}
		return s.foldTotals(tx, route)
	})
	if err != nil {
		return err
	}
	s.lastKnown.Set("last", route, ttlcache.DefaultTTL)
	s.logger.Info("Route saved", "route", route.Name, "entries", len(route.Logs))
	return nil
}

// GetRoute returns the route with the given ID.
func (s *Store) GetRoute(id string) (*track.Route, error) {
	var route *track.Route
	err := s.DB.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(params.RoutesBucket).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrRouteNotFound, id)
		}
		route = &track.Route{}
		return json.Unmarshal(data, route)
	})
	return route, err
}

// ListRoutes returns all routes, newest first.
func (s *Store) ListRoutes() ([]*track.Route, error) {
	routes := []*track.Route{}
	err := s.DB.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(params.RoutesBucket).ForEach(func(k, v []byte) error {
			route := &track.Route{}
			if err := json.Unmarshal(v, route); err != nil {
				return err
			}
			routes = append(routes, route)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	// RFC3339 sorts lexically.
	sort.Slice(routes, func(i, j int) bool { return routes[i].Date > routes[j].Date })
	return routes, nil
}

// DeleteRoute removes a route. Totals are lifetime figures and are not
// rolled back by deletion.
func (s *Store) DeleteRoute(id string) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(params.RoutesBucket)
		if b.Get([]byte(id)) == nil {
			return fmt.Errorf("%w: %s", ErrRouteNotFound, id)
		}
		return b.Delete([]byte(id))
	})
}

// RenameRoute updates a stored route's display name.
func (s *Store) RenameRoute(id, name string) (*track.Route, error) {
	var route *track.Route
	err := s.DB.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(params.RoutesBucket)
		data := b.Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrRouteNotFound, id)
		}
		route = &track.Route{}
		if err := json.Unmarshal(data, route); err != nil {
			return err
		}
		route.Name = name
		out, err := json.Marshal(route)
		if err != nil {
			return err
		}
		return b.Put([]byte(id), out)
	})
	return route, err
}

// OverwriteRoutes replaces the whole route set, e.g. restoring a backup.
// Totals are left alone.
func (s *Store) OverwriteRoutes(routes []*track.Route) error {
	return s.DB.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(params.RoutesBucket); err != nil {
			return err
		}
		b, err := tx.CreateBucket(params.RoutesBucket)
		if err != nil {
			return err
		}
		for _, route := range routes {
			data, err := json.Marshal(route)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(route.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// LastRoute returns the most recently saved route, or nil when none has
// been saved within the cache TTL.
func (s *Store) LastRoute() *track.Route {
	if item := s.lastKnown.Get("last"); item != nil {
		return item.Value()
	}
	return nil
}
