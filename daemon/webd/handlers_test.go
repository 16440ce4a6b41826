package webd

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/strideway/strided/events"
	"github.com/strideway/strided/fusion"
	"github.com/strideway/strided/params"
	"github.com/strideway/strided/sensors"
	"github.com/strideway/strided/state"
	"github.com/strideway/strided/tracker"
	"github.com/strideway/strided/types/track"
)

func newTestWebDaemon(t *testing.T) (*WebDaemon, func()) {
	t.Helper()
	store, err := state.Open(filepath.Join(t.TempDir(), "routes.db"))
	if err != nil {
		t.Fatal(err)
	}
	engine := fusion.New(params.DefaultFusionConfig(), params.DefaultClassifierConfig(),
		params.DefaultAggregatorConfig(), slog.Default())
	ctx, cancel := context.WithCancel(context.Background())
	go engine.Run(ctx)
	feed := sensors.NewFeed()
	trk := tracker.New(engine, feed, feed.Accelerations(), store, nil, slog.Default())
	d := NewWebDaemon(params.DefaultWebDaemonConfig(), engine, trk, store, feed)
	return d, func() {
		d.Close()
		cancel()
		store.Close()
	}
}

func TestWebDaemon_ping(t *testing.T) {
	req := httptest.NewRequest("GET", "http://strideway.net/ping", nil)
	w := httptest.NewRecorder()
	pingPong(w, req)
	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != 200 {
		t.Fatalf("status code not 200")
	}
	if string(body) != "pong" {
		t.Errorf("body is not pong: %s", string(body))
	}
}

func TestWebDaemon_statusReport(t *testing.T) {
	d, teardown := newTestWebDaemon(t)
	defer teardown()
	router := d.NewRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "http://strideway.net/status", nil))
	resp := w.Result()
	body, _ := io.ReadAll(resp.Body)
	status := webDaemonStatus{}
	if err := json.Unmarshal(body, &status); err != nil {
		t.Fatal(err)
	}
	if status.Uptime == "" {
		t.Fatal("uptime is empty")
	}
	if status.Tracking {
		t.Error("fresh daemon must not be tracking")
	}
}

func TestWebDaemon_liveIdle(t *testing.T) {
	d, teardown := newTestWebDaemon(t)
	defer teardown()
	router := d.NewRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "http://strideway.net/live", nil))
	body, _ := io.ReadAll(w.Result().Body)
	if gjson.GetBytes(body, "activity").String() != "unknown" {
		t.Errorf("body activity not unknown: %s", body)
	}
	if gjson.GetBytes(body, "active").Bool() {
		t.Errorf("body active true before start: %s", body)
	}
}

func TestWebDaemon_startIngestStop(t *testing.T) {
	d, teardown := newTestWebDaemon(t)
	defer teardown()
	router := d.NewRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "http://strideway.net/start", nil))
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("start status %d", w.Result().StatusCode)
	}

	ndjson := `{"type":"location","latitude":46.87,"longitude":-113.99,"speedMps":1.2,"capturedAtMs":1000}
{"type":"acceleration","x":0,"y":0.3,"z":0.4,"capturedAtMs":1100}
`
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "http://strideway.net/samples", strings.NewReader(ndjson)))
	body, _ := io.ReadAll(w.Result().Body)
	if gjson.GetBytes(body, "received").Int() != 2 {
		t.Fatalf("have %s want received=2", body)
	}

	deadline := time.After(2 * time.Second)
	for d.engine.Snapshot().EntryCount < 2 {
		select {
		case <-deadline:
			t.Fatalf("samples never folded: %+v", d.engine.Snapshot())
		case <-time.After(2 * time.Millisecond):
		}
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "http://strideway.net/stop", nil))
	body, _ = io.ReadAll(w.Result().Body)
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("stop status %d: %s", w.Result().StatusCode, body)
	}
	route := track.Route{}
	if err := json.Unmarshal(body, &route); err != nil {
		t.Fatal(err)
	}
	if len(route.Logs) != 2 || !strings.HasPrefix(route.Name, "Route ") {
		t.Errorf("unexpected route: %+v", route)
	}

	// Route is now listed and has a path document.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "http://strideway.net/routes", nil))
	body, _ = io.ReadAll(w.Result().Body)
	if n := gjson.GetBytes(body, "#").Int(); n != 1 {
		t.Fatalf("have %d routes want 1: %s", n, body)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "http://strideway.net/routes/"+route.ID+"/path", nil))
	body, _ = io.ReadAll(w.Result().Body)
	if gjson.GetBytes(body, "type").String() != "FeatureCollection" {
		t.Errorf("path not a FeatureCollection: %s", body)
	}
}

func TestWebDaemon_runBadNetwork(t *testing.T) {
	d, teardown := newTestWebDaemon(t)
	defer teardown()
	d.Config.Network = "bogus"
	if err := d.Run(); err == nil {
		t.Error("want listen error for unknown network, have nil")
	}
}

func TestWebDaemon_routerInitOnce(t *testing.T) {
	d, teardown := newTestWebDaemon(t)
	defer teardown()
	_ = d.NewRouter()
	_ = d.NewRouter()

	// One broadcaster subscription regardless of how many routers were
	// built: a published entry lands in the recent buffer exactly once.
	events.NewEntryFeed.Send(&track.Entry{ID: "e1"})
	deadline := time.After(2 * time.Second)
	for d.recent.Len() == 0 {
		select {
		case <-deadline:
			t.Fatal("entry never reached the broadcaster")
		case <-time.After(2 * time.Millisecond):
		}
	}
	time.Sleep(20 * time.Millisecond)
	if got := d.recent.Len(); got != 1 {
		t.Errorf("have %d buffered entries want 1", got)
	}
}

func TestWebDaemon_stopIdleNoContent(t *testing.T) {
	d, teardown := newTestWebDaemon(t)
	defer teardown()
	router := d.NewRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "http://strideway.net/stop", nil))
	if w.Result().StatusCode != http.StatusNoContent {
		t.Errorf("have %d want 204", w.Result().StatusCode)
	}
}

func TestWebDaemon_routeNotFound(t *testing.T) {
	d, teardown := newTestWebDaemon(t)
	defer teardown()
	router := d.NewRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "http://strideway.net/routes/nope", nil))
	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("have %d want 404", w.Result().StatusCode)
	}
}

func TestWebDaemon_renameAndDeleteRoute(t *testing.T) {
	d, teardown := newTestWebDaemon(t)
	defer teardown()
	router := d.NewRouter()

	start, end := int64(0), int64(1000)
	if err := d.store.SaveRoute(&track.Route{
		ID: "r1", Name: "Route x", Date: "2026-08-28T10:00:00Z",
		Logs:  []*track.Entry{{ID: "e1"}},
		Stats: track.Stats{StartTime: &start, EndTime: &end, DurationSec: 1},
	}); err != nil {
		t.Fatal(err)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("PUT", "http://strideway.net/routes/r1",
		strings.NewReader(`{"name":"Morning loop"}`)))
	body, _ := io.ReadAll(w.Result().Body)
	if gjson.GetBytes(body, "name").String() != "Morning loop" {
		t.Fatalf("rename failed: %s", body)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "http://strideway.net/routes/r1", nil))
	if w.Result().StatusCode != http.StatusNoContent {
		t.Fatalf("have %d want 204", w.Result().StatusCode)
	}
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "http://strideway.net/routes/r1", nil))
	if w.Result().StatusCode != http.StatusNotFound {
		t.Errorf("have %d want 404", w.Result().StatusCode)
	}
}

func TestWebDaemon_classifierConfig(t *testing.T) {
	d, teardown := newTestWebDaemon(t)
	defer teardown()
	router := d.NewRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("PUT", "http://strideway.net/config/classifier",
		strings.NewReader(`{"vehicleSpeedMin":8.5}`)))
	body, _ := io.ReadAll(w.Result().Body)
	if gjson.GetBytes(body, "vehicleSpeedMin").Float() != 8.5 {
		t.Fatalf("merge failed: %s", body)
	}
	// Untouched fields survive the patch.
	if gjson.GetBytes(body, "walkSpeedMin").Float() != 0.7 {
		t.Errorf("walkSpeedMin clobbered: %s", body)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("PUT", "http://strideway.net/config/classifier",
		strings.NewReader(`{"runSpeedMin":0.1}`)))
	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("have %d want 400 for invalid thresholds", w.Result().StatusCode)
	}
}

func TestWebDaemon_tokenAuth(t *testing.T) {
	t.Setenv("STRIDED_TOKEN", "sekrit")
	d, teardown := newTestWebDaemon(t)
	defer teardown()
	router := d.NewRouter()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("POST", "http://strideway.net/start", nil))
	if w.Result().StatusCode != http.StatusForbidden {
		t.Fatalf("have %d want 403", w.Result().StatusCode)
	}

	req := httptest.NewRequest("POST", "http://strideway.net/start", nil)
	req.Header.Set("Authorization", "sekrit")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Result().StatusCode != http.StatusOK {
		t.Fatalf("have %d want 200", w.Result().StatusCode)
	}

	// Reads stay open.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "http://strideway.net/live", nil))
	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("have %d want 200", w.Result().StatusCode)
	}
}
