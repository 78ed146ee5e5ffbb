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
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Restart disconnects the shard registered under id, silently since a
// fresh connection will replace it, and re-queues the id at the tail so
// the scheduler reconnects it.
//
// Valid only for ids within this coordinator's range.
func (c *Coordinator) Restart(id int32) error {
	if id < c.minShardID || id > c.maxShardID {
		return errors.Wrapf(ErrInvalidArgument,
			"shard id %d outside of range [%d, %d]", id, c.minShardID, c.maxShardID)
	}

	c.mu.Lock()
	old, found := c.registry.Remove(id)
	delete(c.notBefore, id)
	delete(c.backoffs, id)
	c.mu.Unlock()

	if found {
		_ = old.Disconnect(false)
	}

	c.queue.Offer(id)

	c.log.Info("Shard restart requested", slog.Int("shard", int(id)))
	return nil
}

// RestartAll silently disconnects every registered shard, clears the
// registry and re-seeds the queue with the full range in ascending order.
// It does not affect a pending shutdown.
func (c *Coordinator) RestartAll() {
	// Clearing and re-seeding must be one transition: an in-flight
	// attempt resolving in between would register its shard and then see
	// the id re-queued, putting it in both queue and registry.
	c.mu.Lock()
	shards := c.registry.Clear()
	c.queue.Clear()
	for id := c.minShardID; id <= c.maxShardID; id++ {
		c.queue.Offer(id)
	}
	c.notBefore = make(map[int32]time.Time)
	c.backoffs = make(map[int32]backoff.BackOff)
	c.mu.Unlock()

	for _, shard := range shards {
		_ = shard.Disconnect(false)
	}

	c.log.Info("Fleet restart requested", slog.Int("shards", len(shards)))
}

// Shutdown tears the fleet down: it cancels the scheduler, silently
// disconnects every registered shard and, when releaseShared is true,
// releases the process-wide shared REST transport. Releasing the shared
// transport permanently disables REST calls for every coordinator
// instance in the process, so only request it when nothing else shares
// that resource.
//
// Shutdown is idempotent: exactly one caller performs the teardown, any
// other call returns immediately.
func (c *Coordinator) Shutdown(releaseShared bool) error {
	if !c.shutdownFlag.CompareAndSwap(false, true) {
		// shutdown has already been requested
		return nil
	}

	// Non-blocking cancel: an in-flight attempt resolves against the
	// shutdown flag instead of being interrupted.
	c.cancel()

	c.mu.Lock()
	shards := c.registry.Clear()
	c.queue.Clear()
	c.mu.Unlock()

	var err error
	for _, shard := range shards {
		err = multierr.Append(err, shard.Disconnect(false))
	}

	// Release the shared transport only after every shard had the chance
	// to finish its outgoing REST calls.
	if releaseShared && c.opts.SharedTransport != nil {
		err = multierr.Append(err, c.opts.SharedTransport.Release())
	}

	c.connectedShards.Unregister()
	c.averagePing.Unregister()

	c.log.Info("Shard coordinator shut down",
		slog.Int("shards", len(shards)),
		slog.Bool("released-shared-transport", releaseShared),
	)
	return err
}

// Close implements io.Closer. It is equivalent to Shutdown(false).
func (c *Coordinator) Close() error {
	return c.Shutdown(false)
}
