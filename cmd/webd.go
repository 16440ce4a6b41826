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
	"log"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/strideway/strided/daemon/webd"
	"github.com/strideway/strided/fusion"
	"github.com/strideway/strided/params"
	"github.com/strideway/strided/sensors"
	"github.com/strideway/strided/state"
	"github.com/strideway/strided/tracker"
)

var optHTTPAddr string
var optDataDir string

// webdCmd represents the serve command
var webdCmd = &cobra.Command{
	Use:   "webd",
	Short: "Start the webserver",
	Long: `Serves the tracker over HTTP: lifecycle control, live fused
state, sample ingest, and saved routes. Samples arrive over POST /samples
as NDJSON and the live log streams out over a websocket.`,
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		slog.Info("webd.Run")

		config := params.DefaultWebDaemonConfig()
		config.Address = optHTTPAddr
		config.DataDir = optDataDir

		store, err := state.Open(filepath.Join(config.DataDir, params.RouteDBName))
		if err != nil {
			log.Fatalln(err)
		}
		defer store.Close()

		engine := fusion.New(config.FusionConfig, config.ClassifierConfig,
			config.AggregatorConfig, slog.Default())
		go engine.Run(context.Background())

		feed := sensors.NewFeed()
		trk := tracker.New(engine, feed, feed.Accelerations(), store, nil, slog.Default())

		server := webd.NewWebDaemon(config, engine, trk, store, feed)
		if err := server.Run(); err != nil {
			log.Fatalln(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(webdCmd)

	defaults := params.DefaultWebDaemonConfig()

	pFlags := webdCmd.PersistentFlags()
	pFlags.AddFlagSet(&pflag.FlagSet{})
	pFlags.StringVar(&optHTTPAddr, "address", defaults.Address, "HTTP address to listen on")
	pFlags.StringVar(&optDataDir, "datadir", defaults.DataDir, "Data directory for the route database")
}
