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

// Package simulator provides an in-process stand-in for the chat-service
// gateway: a connection factory that enforces the identify rate limit and
// hands out shards pre-populated with a deterministic entity universe.
// It backs the CLI's run command and the soak tests.
package simulator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/gatefleet/gatefleet/gateway"
)

type Options struct {
	// IdentifyInterval is the minimum interval the simulated service
	// allows between identify attempts.
	IdentifyInterval time.Duration

	// GuildCount and MembersPerGuild size the synthetic universe.
	GuildCount      int
	MembersPerGuild int

	// RejectAuth makes every connection attempt fail as an auth
	// rejection.
	RejectAuth bool

	// TransientFailures makes the first N attempts for a shard id fail
	// with an unclassified connection error, returning a partially-built
	// handle the coordinator must tear down.
	TransientFailures map[int32]int

	// ConnectLatency is added to every successful attempt.
	ConnectLatency time.Duration
}

func NewOptions() Options {
	return Options{
		IdentifyInterval: 5 * time.Second,
		GuildCount:       64,
		MembersPerGuild:  8,
	}
}

// Gateway simulates the chat service's connection endpoint. It implements
// gateway.ConnectionFactory.
type Gateway struct {
	opts     Options
	limiter  *rate.Limiter
	universe *universe
	log      *slog.Logger

	mu                sync.Mutex
	transientFailures map[int32]int
	connectCount      int
}

func NewGateway(opts Options) *Gateway {
	remaining := make(map[int32]int, len(opts.TransientFailures))
	for id, n := range opts.TransientFailures {
		remaining[id] = n
	}

	return &Gateway{
		opts:              opts,
		limiter:           rate.NewLimiter(rate.Every(opts.IdentifyInterval), 1),
		universe:          newUniverse(opts.GuildCount, opts.MembersPerGuild),
		transientFailures: remaining,
		log: slog.With(
			slog.String("component", "gateway-simulator"),
		),
	}
}

func (g *Gateway) Connect(ctx context.Context, shardID int32, shardsTotal int32) (gateway.Shard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if g.opts.RejectAuth {
		return nil, errors.Wrap(gateway.ErrAuthFailed, "simulated credentials rejection")
	}

	if !g.limiter.Allow() {
		return nil, errors.Wrapf(gateway.ErrRateLimited,
			"identify for shard %d refused", shardID)
	}

	g.mu.Lock()
	g.connectCount++
	if remaining := g.transientFailures[shardID]; remaining > 0 {
		g.transientFailures[shardID] = remaining - 1
		g.mu.Unlock()

		// hand back a half-built session, the coordinator owns its teardown
		partial := newShard(shardID, shardsTotal, g.universe)
		return partial, errors.Errorf("simulated connection failure for shard %d", shardID)
	}
	g.mu.Unlock()

	if g.opts.ConnectLatency > 0 {
		select {
		case <-time.After(g.opts.ConnectLatency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	shard := newShard(shardID, shardsTotal, g.universe)
	g.log.Debug(
		"Simulated shard connected",
		slog.Int("shard", int(shardID)),
		slog.Int("shards-total", int(shardsTotal)),
	)
	return shard, nil
}

// ConnectCount returns how many identify attempts passed the rate limit.
func (g *Gateway) ConnectCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.connectCount
}

// RestTransport is a simulated process-wide shared REST resource.
type RestTransport struct {
	mu       sync.Mutex
	released bool
}

func NewRestTransport() *RestTransport {
	return &RestTransport{}
}

func (t *RestTransport) Release() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.released {
		return errors.New("simulator: rest transport already released")
	}
	t.released = true
	return nil
}

func (t *RestTransport) Released() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.released
}
