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
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/gatefleet/gatefleet/gateway"
)

// The presence setters keep one fleet-wide desired presence and fan the
// full payload out to every currently registered shard. Shards that
// connect later identify with whatever presence their session was built
// with, matching the behavior of applying setters to current shards only.

// SetGame sets the played game on all shards. A nil game clears it.
func (c *Coordinator) SetGame(game *string) error {
	c.presenceMu.Lock()
	c.presence.Game = game
	presence := c.presence
	c.presenceMu.Unlock()

	return c.fanOutPresence(presence)
}

// SetIdle marks all shards' sessions as idle or active.
func (c *Coordinator) SetIdle(idle bool) error {
	c.presenceMu.Lock()
	c.presence.Idle = idle
	presence := c.presence
	c.presenceMu.Unlock()

	return c.fanOutPresence(presence)
}

// SetStatus sets the online status for all shards. OnlineStatusUnknown is
// rejected.
func (c *Coordinator) SetStatus(status gateway.OnlineStatus) error {
	if status == gateway.OnlineStatusUnknown {
		return errors.Wrap(ErrInvalidArgument, "online status must not be unknown")
	}

	c.presenceMu.Lock()
	c.presence.OnlineStatus = status
	presence := c.presence
	c.presenceMu.Unlock()

	return c.fanOutPresence(presence)
}

func (c *Coordinator) fanOutPresence(presence gateway.Presence) error {
	var err error
	for _, shard := range c.GetShards() {
		err = multierr.Append(err, shard.SetPresence(presence))
	}
	return err
}
