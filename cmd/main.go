// Copyright 2024 Gatefleet Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/gatefleet/gatefleet/cmd/run"
	"github.com/gatefleet/gatefleet/common/logging"
	"github.com/gatefleet/gatefleet/common/process"
)

var (
	logLevelStr string

	rootCmd = &cobra.Command{
		Use:   "gatefleet",
		Short: "Shard-fleet coordinator for chat gateways",
		Long: `gatefleet sequences the connection of a fleet of gateway shards under
the service identify rate limit and aggregates their entity views.`,
		PersistentPreRunE: configureLogLevel,
	}
)

func configureLogLevel(*cobra.Command, []string) error {
	logLevel, err := logging.ParseLogLevel(logLevelStr)
	if err != nil {
		return err
	}
	logging.LogLevel = logLevel
	logging.ConfigureLogger()
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevelStr, "log-level", "l", logging.DefaultLogLevel.String(), "Set logging level [debug|info|warn|error]")
	rootCmd.PersistentFlags().BoolVarP(&logging.LogJSON, "log-json", "j", false, "Print logs in JSON format")
	rootCmd.PersistentFlags().BoolVar(&process.PprofEnable, "profile", false, "Enable pprof profiler")
	rootCmd.PersistentFlags().StringVar(&process.PprofBindAddress, "profile-bind-address", "127.0.0.1:6060", "Bind address for pprof")

	rootCmd.AddCommand(run.Cmd)
}

func main() {
	process.DoWithLabels(context.Background(), map[string]string{
		"fleet": "main",
	}, func() {
		if _, err := maxprocs.Set(); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if err := rootCmd.Execute(); err != nil {
			_, _ = fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	})
}
