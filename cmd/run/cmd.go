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

package run

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"

	"github.com/gatefleet/gatefleet/common/metric"
	"github.com/gatefleet/gatefleet/common/process"
	"github.com/gatefleet/gatefleet/fleet"
	"github.com/gatefleet/gatefleet/simulator"
)

var (
	configFile string

	Cmd = &cobra.Command{
		Use:   "run",
		Short: "Run a coordinator against the in-process gateway simulator",
		Long: `Run a shard coordinator over the built-in gateway simulator. Useful for
soak testing the scheduler and for inspecting the metrics surface.`,
		RunE: exec,
	}

	v = viper.New()
)

func init() {
	Cmd.Flags().Int32("shards-total", 4, "Total shard count of the deployment")
	Cmd.Flags().Int32("shard-min", -1, "Lowest shard id owned by this coordinator (-1 for full range)")
	Cmd.Flags().Int32("shard-max", -1, "Highest shard id owned by this coordinator (-1 for full range)")
	Cmd.Flags().Duration("connect-interval", fleet.DefaultConnectInterval, "Minimum interval between identify attempts")
	Cmd.Flags().String("failure-policy", "fail-fleet", "Reaction to unclassified connect failures: fail-fleet or isolate-shard")
	Cmd.Flags().String("metrics-bind-address", "127.0.0.1:8080", "Bind address for the Prometheus metrics endpoint")
	Cmd.Flags().Int("sim-guilds", 64, "Number of guilds in the simulated universe")
	Cmd.Flags().Int("sim-members", 8, "Members per simulated guild")
	Cmd.Flags().StringVarP(&configFile, "conf", "f", "", "Config file")

	v.SetEnvPrefix("GATEFLEET")
	v.AutomaticEnv()
	_ = v.BindPFlags(Cmd.Flags())
}

func parseFailurePolicy(s string) (fleet.FailurePolicy, error) {
	switch s {
	case "fail-fleet":
		return fleet.FailFleet, nil
	case "isolate-shard":
		return fleet.IsolateShard, nil
	}
	return 0, errors.Errorf("unknown failure policy %q", s)
}

type closers []io.Closer

func (c closers) Close() error {
	var err error
	for _, closer := range c {
		err = multierr.Append(err, closer.Close())
	}
	return err
}

func exec(*cobra.Command, []string) error {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.Wrap(err, "failed to read config file")
		}
	}

	policy, err := parseFailurePolicy(v.GetString("failure-policy"))
	if err != nil {
		return err
	}

	process.RunProcess(func() (io.Closer, error) {
		return start(policy)
	})
	return nil
}

func start(policy fleet.FailurePolicy) (io.Closer, error) {
	if err := metric.ConfigurePrometheusProvider(); err != nil {
		return nil, err
	}

	metrics, err := metric.StartServer(v.GetString("metrics-bind-address"))
	if err != nil {
		return nil, err
	}

	simOpts := simulator.NewOptions()
	simOpts.IdentifyInterval = v.GetDuration("connect-interval")
	simOpts.GuildCount = v.GetInt("sim-guilds")
	simOpts.MembersPerGuild = v.GetInt("sim-members")
	gw := simulator.NewGateway(simOpts)
	transport := simulator.NewRestTransport()

	opts := fleet.NewOptions(gw, v.GetInt32("shards-total"))
	opts.MinShardID = v.GetInt32("shard-min")
	opts.MaxShardID = v.GetInt32("shard-max")
	opts.ConnectInterval = v.GetDuration("connect-interval")
	opts.FailurePolicy = policy
	opts.SharedTransport = transport

	coordinator, err := fleet.NewCoordinator(opts)
	if err != nil {
		return nil, err
	}

	loginCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := coordinator.Login(loginCtx); err != nil {
		_ = metrics.Close()
		return nil, err
	}

	go process.DoWithLabels(context.Background(), map[string]string{
		"fleet": "error-watcher",
	}, func() {
		if err, ok := <-coordinator.Err(); ok && err != nil {
			slog.Error(
				"Coordinator failed",
				slog.Any("error", err),
			)
		}
	})

	return closers{coordinator, metrics}, nil
}
