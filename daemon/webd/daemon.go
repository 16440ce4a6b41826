// Package webd is the strided web daemon: the HTTP and websocket surface
// over the tracker, the fusion engine, and the route store.
package webd

import (
	"log"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/gorilla/mux"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/olahol/melody"
	"github.com/paulmach/orb/geojson"

	"github.com/strideway/strided/common"
	"github.com/strideway/strided/fusion"
	"github.com/strideway/strided/params"
	"github.com/strideway/strided/sensors"
	"github.com/strideway/strided/state"
	"github.com/strideway/strided/tracker"
	"github.com/strideway/strided/types/track"
)

type WebDaemon struct {
	Config         *params.WebDaemonConfig
	logger         *slog.Logger
	melodyInstance *melody.Melody
	melodyOnce     sync.Once
	started        time.Time

	engine  *fusion.Engine
	tracker *tracker.Tracker
	store   *state.Store
	feed    *sensors.Feed

	// Feed subscriptions held by the websocket broadcaster, released by Close.
	entrySub event.Subscription
	stateSub event.Subscription

	// pathCache holds rendered route GeoJSON keyed by route ID. Route logs
	// are immutable once saved, so entries only need eviction on delete.
	pathCache *lru.Cache[string, *geojson.FeatureCollection]

	// recent buffers the latest accepted entries for the /entries view,
	// shared with the websocket broadcaster.
	recent *common.RingBuffer[*track.Entry]
}

func NewWebDaemon(config *params.WebDaemonConfig, engine *fusion.Engine, trk *tracker.Tracker, store *state.Store, feed *sensors.Feed) *WebDaemon {
	if config == nil {
		config = params.DefaultWebDaemonConfig()
	}
	pathCache, err := lru.New[string, *geojson.FeatureCollection](params.RoutePathLRUSize)
	if err != nil {
		panic(err)
	}
	return &WebDaemon{
		Config:    config,
		logger:    slog.With("d", "web"),
		started:   time.Now(),
		engine:    engine,
		tracker:   trk,
		store:     store,
		feed:      feed,
		pathCache: pathCache,
		recent:    common.NewRingBuffer[*track.Entry](params.RecentEntriesSize),
	}
}

// Run listens on the configured network/address and serves until the
// listener fails, returning any server error.
func (s *WebDaemon) Run() error {
	router := s.NewRouter()
	ln, err := net.Listen(s.Config.Network, s.Config.Address)
	if err != nil {
		return err
	}
	log.Printf("Starting web daemon on %s %s", s.Config.Network, ln.Addr())
	return http.Serve(ln, router)
}

// Close releases the broadcaster's feed subscriptions and closes any open
// websocket sessions. The broadcaster goroutine exits when its subscriptions
// are released.
func (s *WebDaemon) Close() {
	if s.entrySub != nil {
		s.entrySub.Unsubscribe()
	}
	if s.stateSub != nil {
		s.stateSub.Unsubscribe()
	}
	if s.melodyInstance != nil {
		_ = s.melodyInstance.Close()
	}
}

func (s *WebDaemon) NewRouter() *mux.Router {
	s.initMelody()

	router := mux.NewRouter().StrictSlash(false)
	router.Use(loggingMiddleware)

	router.Path("/socket").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = s.melodyInstance.HandleRequest(w, r)
	})

	apiRoutes := router.NewRoute().Subrouter()

	// All API routes use permissive CORS settings.
	apiRoutes.Use(permissiveCorsMiddleware)

	// /ping is a simple server healthcheck endpoint
	apiRoutes.Path("/ping").HandlerFunc(pingPong)

	apiJSONRoutes := apiRoutes.NewRoute().Subrouter()
	jsonMiddleware := contentTypeMiddlewareFunc("application/json")
	apiJSONRoutes.Use(jsonMiddleware)

	apiJSONRoutes.Path("/status").HandlerFunc(s.statusReport).Methods(http.MethodGet)
	apiJSONRoutes.Path("/live").HandlerFunc(s.handleLive).Methods(http.MethodGet)
	apiJSONRoutes.Path("/entries").HandlerFunc(s.handleRecentEntries).Methods(http.MethodGet)
	apiJSONRoutes.Path("/last").HandlerFunc(s.handleLastRoute).Methods(http.MethodGet)
	apiJSONRoutes.Path("/totals").HandlerFunc(s.handleTotals).Methods(http.MethodGet)
	apiJSONRoutes.Path("/routes").HandlerFunc(s.handleListRoutes).Methods(http.MethodGet)
	apiJSONRoutes.Path("/routes/{id}").HandlerFunc(s.handleGetRoute).Methods(http.MethodGet)
	apiJSONRoutes.Path("/routes/{id}/path").HandlerFunc(s.handleRoutePath).Methods(http.MethodGet)
	apiJSONRoutes.Path("/config/classifier").HandlerFunc(s.handleGetClassifierConfig).Methods(http.MethodGet)

	authenticatedAPIRoutes := apiJSONRoutes.NewRoute().Subrouter()
	authenticatedAPIRoutes.Use(tokenAuthenticationMiddleware)

	authenticatedAPIRoutes.Path("/start").HandlerFunc(s.handleStart).Methods(http.MethodPost)
	authenticatedAPIRoutes.Path("/stop").HandlerFunc(s.handleStop).Methods(http.MethodPost)
	authenticatedAPIRoutes.Path("/samples").HandlerFunc(s.handleSamples).Methods(http.MethodPost)
	authenticatedAPIRoutes.Path("/routes/{id}").HandlerFunc(s.handleRenameRoute).Methods(http.MethodPut)
	authenticatedAPIRoutes.Path("/routes/{id}").HandlerFunc(s.handleDeleteRoute).Methods(http.MethodDelete)
	authenticatedAPIRoutes.Path("/config/classifier").HandlerFunc(s.handlePutClassifierConfig).Methods(http.MethodPut)

	return router
}
