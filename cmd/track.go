/*
Copyright © 2024 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/strideway/strided/fusion"
	"github.com/strideway/strided/metrics/influxdb"
	"github.com/strideway/strided/params"
	"github.com/strideway/strided/sensors"
	"github.com/strideway/strided/state"
	"github.com/strideway/strided/tracker"
)

var optTrackInput string
var optTrackThrottle time.Duration
var optTrackSave bool
var optTrackDataDir string

// trackCmd represents the track command
var trackCmd = &cobra.Command{
	Use:   "track",
	Short: "Run a tracking session from an NDJSON sample stream",
	Long: `Replays recorded location and acceleration samples through the
fusion pipeline as one tracking session, then prints the session stats.
Reads stdin unless --input names a file. With --save the finished session
is persisted as a route in the datadir.`,
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)

		in := os.Stdin
		if optTrackInput != "" && optTrackInput != "-" {
			f, err := os.Open(optTrackInput)
			if err != nil {
				log.Fatalln(err)
			}
			defer f.Close()
			in = f
		}

		var store *state.Store
		if optTrackSave {
			var err error
			store, err = state.Open(filepath.Join(optTrackDataDir, params.RouteDBName))
			if err != nil {
				log.Fatalln(err)
			}
			defer store.Close()
		}

		engine := fusion.New(params.DefaultFusionConfig(), params.DefaultClassifierConfig(),
			params.DefaultAggregatorConfig(), slog.Default())
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go engine.Run(ctx)

		feed := sensors.NewFeed()
		var routeStore tracker.RouteStore
		if store != nil {
			routeStore = store
		}
		trk := tracker.New(engine, feed, feed.Accelerations(), routeStore, nil, slog.Default())

		if err := trk.Start(ctx); err != nil {
			log.Fatalln(err)
		}

		n, err := sensors.NewReplay(feed, optTrackThrottle).Run(ctx, in)
		if err != nil {
			log.Fatalln(err)
		}
		slog.Info("Replay done", "samples", humanize.Comma(int64(n)))

		// Let the fold drain before freezing.
		for engine.Processed() < n {
			time.Sleep(10 * time.Millisecond)
		}

		route, err := trk.Stop(ctx)
		if err != nil {
			log.Fatalln(err)
		}
		if route == nil {
			fmt.Println("Empty session, nothing recorded.")
			return
		}

		fmt.Printf("%s\n", route.Name)
		fmt.Printf("  activity entries: %s\n", humanize.Comma(int64(len(route.Logs))))
		fmt.Printf("  distance:         %.1f m\n", route.Stats.DistanceMeters)
		fmt.Printf("  steps:            %.0f\n", route.Stats.Steps)
		fmt.Printf("  calories:         %.1f\n", route.Stats.Calories)
		fmt.Printf("  avg speed:        %.2f km/h\n", route.Stats.AvgSpeedKmh)
		fmt.Printf("  max speed:        %.2f m/s\n", route.Summary.MaxSpeedMps)

		if influxdb.Enabled() {
			if err := influxdb.ExportEntries(route.ID, route.Name, route.Logs); err != nil {
				slog.Error("InfluxDB export failed", "error", err)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(trackCmd)

	flags := trackCmd.Flags()
	flags.StringVar(&optTrackInput, "input", "-", "NDJSON sample file, - for stdin")
	flags.DurationVar(&optTrackThrottle, "throttle", 0, "delay between replayed samples (0 = flat out)")
	flags.BoolVar(&optTrackSave, "save", false, "persist the finished session as a route")
	flags.StringVar(&optTrackDataDir, "datadir", params.DatadirRoot, "Data directory for the route database")
}
