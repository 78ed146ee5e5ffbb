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
	"time"

	"github.com/pkg/errors"

	"github.com/gatefleet/gatefleet/gateway"
)

// The aggregation queries flatten the entity snapshots of every live
// shard into one view. Shards are always iterated in ascending id order,
// so results are deterministic for a fixed registry snapshot. Lookup
// misses are reported as "not found", never as errors.

// combined flattens the selected collection of every shard, in shard-id
// order.
func combined[T gateway.Entity](shards []gateway.Shard, selector func(gateway.Shard) []T) []T {
	var out []T
	for _, shard := range shards {
		out = append(out, selector(shard)...)
	}
	return out
}

// distinctByID drops entities whose snowflake was already seen,
// preserving first-seen order.
func distinctByID[T gateway.Entity](items []T) []T {
	seen := make(map[gateway.Snowflake]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, item := range items {
		id := item.SnowflakeID()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, item)
	}
	return out
}

func findByID[T gateway.Entity](shards []gateway.Shard, selector func(gateway.Shard) []T, id gateway.Snowflake) (T, bool) {
	for _, shard := range shards {
		for _, item := range selector(shard) {
			if item.SnowflakeID() == id {
				return item, true
			}
		}
	}
	var zero T
	return zero, false
}

func findByStringID[T gateway.Entity](shards []gateway.Shard, selector func(gateway.Shard) []T, id string) (T, error) {
	var zero T
	snowflake, err := gateway.ParseSnowflake(id)
	if err != nil {
		return zero, err
	}
	item, _ := findByID(shards, selector, snowflake)
	return item, nil
}

// GetGuildByID returns the first guild with the given id across all live
// shards.
func (c *Coordinator) GetGuildByID(id gateway.Snowflake) (*gateway.Guild, bool) {
	return findByID(c.GetShards(), gateway.Shard.Guilds, id)
}

// GetGuildByStringID is GetGuildByID with the id in its canonical decimal
// string form. A nil guild with a nil error means "not found".
func (c *Coordinator) GetGuildByStringID(id string) (*gateway.Guild, error) {
	return findByStringID(c.GetShards(), gateway.Shard.Guilds, id)
}

// GetGuilds returns every guild across all live shards, deduplicated by
// id, in first-seen order. The slice is owned by the caller.
func (c *Coordinator) GetGuilds() []*gateway.Guild {
	return distinctByID(combined(c.GetShards(), gateway.Shard.Guilds))
}

func (c *Coordinator) GetUserByID(id gateway.Snowflake) (*gateway.User, bool) {
	return findByID(c.GetShards(), gateway.Shard.Users, id)
}

func (c *Coordinator) GetUserByStringID(id string) (*gateway.User, error) {
	return findByStringID(c.GetShards(), gateway.Shard.Users, id)
}

func (c *Coordinator) GetUsers() []*gateway.User {
	return distinctByID(combined(c.GetShards(), gateway.Shard.Users))
}

func (c *Coordinator) GetTextChannelByID(id gateway.Snowflake) (*gateway.TextChannel, bool) {
	return findByID(c.GetShards(), gateway.Shard.TextChannels, id)
}

func (c *Coordinator) GetTextChannelByStringID(id string) (*gateway.TextChannel, error) {
	return findByStringID(c.GetShards(), gateway.Shard.TextChannels, id)
}

func (c *Coordinator) GetTextChannels() []*gateway.TextChannel {
	return distinctByID(combined(c.GetShards(), gateway.Shard.TextChannels))
}

func (c *Coordinator) GetVoiceChannelByID(id gateway.Snowflake) (*gateway.VoiceChannel, bool) {
	return findByID(c.GetShards(), gateway.Shard.VoiceChannels, id)
}

func (c *Coordinator) GetVoiceChannelByStringID(id string) (*gateway.VoiceChannel, error) {
	return findByStringID(c.GetShards(), gateway.Shard.VoiceChannels, id)
}

func (c *Coordinator) GetVoiceChannels() []*gateway.VoiceChannel {
	return distinctByID(combined(c.GetShards(), gateway.Shard.VoiceChannels))
}

// GetMutualGuilds returns every guild, across all live shards, in which
// all the given users are members. The user set must be non-empty and
// must not contain nil entries.
func (c *Coordinator) GetMutualGuilds(users []*gateway.User) ([]*gateway.Guild, error) {
	if len(users) == 0 {
		return nil, errors.Wrap(ErrInvalidArgument, "users must not be empty")
	}
	for _, user := range users {
		if user == nil {
			return nil, errors.Wrap(ErrInvalidArgument, "users must not contain nil entries")
		}
	}

	var mutual []*gateway.Guild
	for _, guild := range c.GetGuilds() {
		members := true
		for _, user := range users {
			if !guild.IsMember(user.ID) {
				members = false
				break
			}
		}
		if members {
			mutual = append(mutual, guild)
		}
	}
	return mutual, nil
}

// GetAveragePing returns the mean heartbeat round-trip latency across all
// shards that have completed at least one heartbeat. The second return is
// false when no shard has a measured latency yet.
func (c *Coordinator) GetAveragePing() (time.Duration, bool) {
	var total time.Duration
	var measured int64

	for _, shard := range c.registry.Values() {
		if ping, ok := shard.Ping(); ok {
			total += ping
			measured++
		}
	}

	if measured == 0 {
		return 0, false
	}
	return total / time.Duration(measured), true
}
