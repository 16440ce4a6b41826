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
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/strideway/strided/params"
	"github.com/strideway/strided/state"
)

var optRoutesDataDir string

// routesCmd represents the routes command
var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List saved routes",
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		store, err := state.Open(filepath.Join(optRoutesDataDir, params.RouteDBName))
		if err != nil {
			log.Fatalln(err)
		}
		defer store.Close()

		routes, err := store.ListRoutes()
		if err != nil {
			log.Fatalln(err)
		}
		for _, r := range routes {
			when := r.Date
			if t, err := time.Parse(time.RFC3339, r.Date); err == nil {
				when = humanize.Time(t)
			}
			fmt.Printf("%s  %-28s %8.1f m  %6ds  %s\n",
				r.ID, r.Name, r.Stats.DistanceMeters, r.Stats.DurationSec, when)
		}

		totals, err := store.Totals()
		if err != nil {
			log.Fatalln(err)
		}
		fmt.Printf("\n%s routes, %s m lifetime\n",
			humanize.Comma(totals.Routes), totals.DistanceMeters.StringFixed(1))
	},
}

// routesRmCmd deletes a route by ID.
var routesRmCmd = &cobra.Command{
	Use:   "rm <route-id>",
	Short: "Delete a saved route",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setDefaultSlog(cmd, args)
		store, err := state.Open(filepath.Join(optRoutesDataDir, params.RouteDBName))
		if err != nil {
			log.Fatalln(err)
		}
		defer store.Close()
		if err := store.DeleteRoute(args[0]); err != nil {
			log.Fatalln(err)
		}
		fmt.Println("Deleted", args[0])
	},
}

func init() {
	rootCmd.AddCommand(routesCmd)
	routesCmd.AddCommand(routesRmCmd)

	routesCmd.PersistentFlags().StringVar(&optRoutesDataDir, "datadir", params.DatadirRoot, "Data directory for the route database")
}
