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

package fleet

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"

	"github.com/gatefleet/gatefleet/common/channel"
	"github.com/gatefleet/gatefleet/common/collection"
	"github.com/gatefleet/gatefleet/common/metric"
	"github.com/gatefleet/gatefleet/common/process"
	"github.com/gatefleet/gatefleet/gateway"
)

// Coordinator owns a range of shard ids, sequences their connection under
// the service's identify rate limit and exposes aggregated views over all
// live shards.
//
// All entry points are safe for concurrent use. The only call that blocks
// on remote I/O from the caller's goroutine is Login's bootstrap attempt;
// every other connection attempt runs on the scheduler goroutine.
type Coordinator struct {
	opts       Options
	minShardID int32
	maxShardID int32
	log        *slog.Logger

	queue    *allocationQueue
	registry collection.Map[int32, gateway.Shard]

	// mu serializes every queue/registry transition. Connection attempts
	// themselves run outside of it so that lifecycle calls are never
	// stuck behind remote I/O.
	mu        sync.Mutex
	notBefore map[int32]time.Time
	backoffs  map[int32]backoff.BackOff

	ctx    context.Context
	cancel context.CancelFunc

	loggedIn     atomic.Bool
	shutdownFlag atomic.Bool

	errCh chan error

	presenceMu sync.Mutex
	presence   gateway.Presence

	listenersMu sync.Mutex
	listeners   map[string]*listenerEntry

	connectAttempts    metric.Counter
	connectRateLimited metric.Counter
	connectFailures    metric.Counter
	connectedShards    metric.Gauge
	averagePing        metric.Gauge
}

// NewCoordinator builds a coordinator and seeds its allocation queue with
// the full configured range, in ascending order. No connection is
// attempted until Login.
func NewCoordinator(opts Options) (*Coordinator, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.Wrap(ErrInvalidArgument, err.Error())
	}

	minID, maxID := opts.shardRange()

	c := &Coordinator{
		opts:       opts,
		minShardID: minID,
		maxShardID: maxID,
		queue:      newAllocationQueue(),
		registry:   collection.NewConcurrentMap[int32, gateway.Shard](),
		notBefore:  make(map[int32]time.Time),
		backoffs:   make(map[int32]backoff.BackOff),
		errCh:      make(chan error, 1),
		listeners:  make(map[string]*listenerEntry),
		presence: gateway.Presence{
			OnlineStatus: gateway.OnlineStatusOnline,
		},
		log: slog.With(
			slog.String("component", "shard-coordinator"),
			slog.Int("shard-min", int(minID)),
			slog.Int("shard-max", int(maxID)),
			slog.Int("shards-total", int(opts.ShardsTotal)),
		),

		connectAttempts: metric.NewCounter("gatefleet_connect_attempts",
			"The number of shard connection attempts", "count", nil),
		connectRateLimited: metric.NewCounter("gatefleet_connect_rate_limited",
			"The number of identify attempts refused by the rate limit", "count", nil),
		connectFailures: metric.NewCounter("gatefleet_connect_failures",
			"The number of failed shard connection attempts", "count", nil),
	}

	for id := minID; id <= maxID; id++ {
		c.queue.Offer(id)
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())

	c.connectedShards = metric.NewGauge("gatefleet_connected_shards",
		"The number of shards currently registered", "count", nil, func() int64 {
			return int64(c.registry.Size())
		})
	c.averagePing = metric.NewGauge("gatefleet_average_ping_ms",
		"Mean heartbeat round-trip across shards with a measured latency, -1 when unknown", "ms", nil, func() int64 {
			ping, ok := c.GetAveragePing()
			if !ok {
				return -1
			}
			return ping.Milliseconds()
		})

	c.log.Info("Created shard coordinator",
		slog.Duration("connect-interval", opts.ConnectInterval),
		slog.String("failure-policy", opts.FailurePolicy.String()),
	)
	return c, nil
}

// Err delivers fatal asynchronous errors: an auth rejection encountered by
// the scheduler, or any unclassified connection failure under the
// FailFleet policy. The scheduler has already stopped by the time an
// error is readable here.
func (c *Coordinator) Err() <-chan error {
	return c.errCh
}

func (c *Coordinator) publishErr(err error) {
	channel.PushNoBlock(c.errCh, err)
}

// Login connects the first queued shard synchronously, so that
// authentication and configuration errors surface to the caller, then
// starts the scheduler for the remaining ids.
//
// A rate-limited bootstrap attempt is not an error: the id stays queued
// and the scheduler retries it. Any other bootstrap failure leaves the
// coordinator unstarted.
func (c *Coordinator) Login(ctx context.Context) error {
	if c.shutdownFlag.Load() {
		return ErrCoordinatorShutdown
	}
	if !c.loggedIn.CompareAndSwap(false, true) {
		return ErrAlreadyLoggedIn
	}

	if id, ok := c.queue.Peek(); ok {
		err := c.connect(ctx, id)
		switch {
		case err == nil || gateway.IsRateLimited(err):
			// rate limited: leave the id queued, the scheduler retries it

		default:
			c.loggedIn.Store(false)
			return err
		}
	}

	go process.DoWithLabels(c.ctx, map[string]string{
		"fleet": "shard-scheduler",
	}, c.runScheduler)

	c.log.Info("Logged in, shard scheduler started")
	return nil
}

// connect performs one connection attempt for id and resolves its outcome
// against the queue and the registry. The factory call itself runs
// without holding mu.
func (c *Coordinator) connect(ctx context.Context, id int32) error {
	c.connectAttempts.Inc()

	shard, err := c.opts.Factory.Connect(ctx, id, c.opts.ShardsTotal)
	if err != nil {
		if shard != nil {
			// partially-built handle, tear it down silently
			_ = shard.Disconnect(false)
		}
		if gateway.IsRateLimited(err) {
			c.connectRateLimited.Inc()
			c.log.Debug("Identify rate limited", slog.Int("shard", int(id)))
		} else {
			c.connectFailures.Inc()
		}
		return err
	}

	c.mu.Lock()
	if c.shutdownFlag.Load() {
		// shutdown raced with the attempt: never leave the handle
		// half-registered
		c.mu.Unlock()
		_ = shard.Disconnect(false)
		return ErrCoordinatorShutdown
	}
	if !c.registry.PutIfAbsent(id, shard) {
		// a live handle already owns this id, keep it
		c.mu.Unlock()
		_ = shard.Disconnect(false)
		return nil
	}
	c.queue.Remove(id)
	delete(c.notBefore, id)
	delete(c.backoffs, id)
	c.mu.Unlock()

	c.log.Info("Shard connected", slog.Int("shard", int(id)))
	return nil
}

func (c *Coordinator) runScheduler() {
	ticker := time.NewTicker(c.opts.ConnectInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return

		case <-ticker.C:
			if err := c.tick(c.ctx); err != nil {
				c.log.Error(
					"Shard scheduler stopped",
					slog.Any("error", err),
				)
				c.publishErr(err)
				return
			}
		}
	}
}

// tick runs one scheduling round. A non-nil return stops the scheduler.
func (c *Coordinator) tick(ctx context.Context) error {
	if c.shutdownFlag.Load() {
		return nil
	}

	id, ok := c.nextEligible()
	if !ok {
		return nil
	}

	err := c.connect(ctx, id)
	switch {
	case err == nil || gateway.IsRateLimited(err):
		return nil

	case gateway.IsAuthFailure(err):
		// credentials are shared by every shard, nothing further can
		// succeed
		return err

	case errors.Is(err, ErrCoordinatorShutdown):
		return nil

	default:
		if c.opts.FailurePolicy == IsolateShard {
			c.armBackoff(id)
			c.log.Warn(
				"Shard connection failed, will retry with backoff",
				slog.Int("shard", int(id)),
				slog.Any("error", err),
			)
			return nil
		}
		return err
	}
}

// nextEligible scans the queue head-first for the first id with no
// registry entry whose backoff, if any, has elapsed. Ids found to be
// already registered are discarded as stale.
func (c *Coordinator) nextEligible() (int32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for _, id := range c.queue.Snapshot() {
		if _, registered := c.registry.Get(id); registered {
			c.queue.Remove(id)
			continue
		}
		if nb, armed := c.notBefore[id]; armed && now.Before(nb) {
			continue
		}
		return id, true
	}
	return 0, false
}

// armBackoff schedules the next attempt for id. The id stays queued; it
// is only skipped until the deadline passes.
func (c *Coordinator) armBackoff(id int32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bo, ok := c.backoffs[id]
	if !ok {
		ebo := backoff.NewExponentialBackOff()
		ebo.InitialInterval = c.opts.ConnectInterval
		ebo.MaxElapsedTime = 0
		bo = ebo
		c.backoffs[id] = bo
	}
	c.notBefore[id] = time.Now().Add(bo.NextBackOff())
}

// GetShard returns the handle registered under id.
func (c *Coordinator) GetShard(id int32) (gateway.Shard, bool) {
	return c.registry.Get(id)
}

// GetShards returns the registered handles in ascending shard-id order.
func (c *Coordinator) GetShards() []gateway.Shard {
	ids := c.registry.Keys()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	shards := make([]gateway.Shard, 0, len(ids))
	for _, id := range ids {
		if shard, ok := c.registry.Get(id); ok {
			shards = append(shards, shard)
		}
	}
	return shards
}

// GetStatus returns the status of the shard registered under id. The
// second return is false when no such shard exists.
func (c *Coordinator) GetStatus(id int32) (gateway.Status, bool) {
	shard, ok := c.registry.Get(id)
	if !ok {
		return 0, false
	}
	return shard.Status(), true
}

// GetStatuses returns a snapshot of every registered shard's status.
func (c *Coordinator) GetStatuses() map[int32]gateway.Status {
	statuses := make(map[int32]gateway.Status)
	for _, shard := range c.registry.Values() {
		statuses[shard.ID()] = shard.Status()
	}
	return statuses
}
