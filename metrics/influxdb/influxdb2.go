package influxdb

import (
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"

	"github.com/strideway/strided/params"
	"github.com/strideway/strided/types/track"
)

// Enabled reports whether an InfluxDB sink is configured.
func Enabled() bool {
	return params.INFLUXDB_URL != ""
}

// ExportEntries posts a finished session's log entries to an InfluxDB Write
// API, tagged with the route they belong to. Because it accepts a slice, use
// whole sessions. The Write API will buffer and flush. The last error
// encountered is returned.
func ExportEntries(routeID, routeName string, entries []*track.Entry) error {
	opts := influxdb2.DefaultOptions()
	opts.SetPrecision(time.Millisecond)
	client := influxdb2.NewClientWithOptions(params.INFLUXDB_URL, params.INFLUXDB_TOKEN, opts)
	writeAPI := client.WriteAPI(params.INFLUXDB_ORG, params.INFLUXDB_BUCKET)

	// Errors returns a channel for reading errors which occurs during async writes.
	// Must be called before performing any writes for errors to be collected.
	// The chan is unbuffered and must be drained or the writer will block.
	// https://github.com/influxdata/influxdb-client-go?tab=readme-ov-file#reading-async-errors
	errorsCh := writeAPI.Errors()
	var err error
	wait := sync.WaitGroup{}
	wait.Add(1)
	go func() {
		defer wait.Done()
		for e := range errorsCh {
			if e != nil {
				err = e
			}
		}
	}()

	for _, entry := range entries {
		p := influxdb2.NewPointWithMeasurement("entry").
			SetTime(entry.Time).
			AddTag("route", routeID).
			AddTag("route_name", routeName).
			AddTag("activity", entry.Activity.String()).
			AddField("confidence", entry.Confidence).
			AddField("activity", entry.Activity.String())

		if entry.Location != nil {
			p.AddField("latitude", entry.Location.Latitude)
			p.AddField("longitude", entry.Location.Longitude)
			p.AddField("speed", entry.Location.SpeedOrZero())
		}
		if entry.Acceleration != nil {
			p.AddField("magnitude", entry.Acceleration.Magnitude)
		}
		writeAPI.WritePoint(p)
	}
	writeAPI.Flush()
	client.Close()
	wait.Wait()
	return err
}
