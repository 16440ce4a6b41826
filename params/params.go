package params

import (
	"path/filepath"
	"time"

	"github.com/mitchellh/go-homedir"
)

// DatadirRoot is where strided keeps its route database by default.
var DatadirRoot = func() string {
	home, err := homedir.Dir()
	if err != nil {
		panic(err)
	}
	return filepath.Join(home, ".strided")
}()

var RouteDBName = "routes.db"

var (
	RoutesBucket = []byte("routes")
	TotalsBucket = []byte("totals")
	TotalsKey    = []byte("lifetime")
)

var (
	// CacheLastKnownTTL bounds how long the "last known" snapshot cache
	// (last entry, last saved route) stays warm for API reads.
	CacheLastKnownTTL = 24 * time.Hour

	// RoutePathLRUSize bounds the web daemon's cache of rendered route
	// GeoJSON documents.
	RoutePathLRUSize = 128

	// DedupeLRUSize bounds the fusion intake's duplicate-sample cache.
	DedupeLRUSize = 10_000

	// RecentEntriesSize bounds the web daemon's ring of latest accepted
	// entries served at /entries.
	RecentEntriesSize = 100
)

// DefaultRouteDBPath returns the bbolt database path under the datadir.
func DefaultRouteDBPath() string {
	return filepath.Join(DatadirRoot, RouteDBName)
}
