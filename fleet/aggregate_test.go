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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatefleet/gatefleet/gateway"
)

var (
	aliceID = gateway.Snowflake(1001)
	bobID   = gateway.Snowflake(1002)
	carolID = gateway.Snowflake(1003)

	alice = &gateway.User{ID: aliceID, Username: "alice"}
	bob   = &gateway.User{ID: bobID, Username: "bob"}
	carol = &gateway.User{ID: carolID, Username: "carol"}

	guildAlpha = &gateway.Guild{
		ID:        gateway.Snowflake(501),
		Name:      "alpha",
		MemberIDs: []gateway.Snowflake{aliceID, bobID},
	}
	guildBeta = &gateway.Guild{
		ID:        gateway.Snowflake(502),
		Name:      "beta",
		MemberIDs: []gateway.Snowflake{aliceID, bobID, carolID},
	}
	guildGamma = &gateway.Guild{
		ID:        gateway.Snowflake(503),
		Name:      "gamma",
		MemberIDs: []gateway.Snowflake{carolID},
	}
)

// newAggregateCoordinator builds a coordinator with two shards planted
// straight into the registry. Alice is visible from both shards.
func newAggregateCoordinator(t *testing.T) (*Coordinator, *mockShard, *mockShard) {
	t.Helper()

	c := newTestCoordinator(t, newMockFactory(), 2)

	shard0 := newMockShard(0)
	shard0.guilds = []*gateway.Guild{guildAlpha}
	shard0.users = []*gateway.User{alice, bob}
	shard0.textChannels = []*gateway.TextChannel{
		{ID: 601, GuildID: guildAlpha.ID, Name: "general"},
	}
	shard0.voiceChannels = []*gateway.VoiceChannel{
		{ID: 602, GuildID: guildAlpha.ID, Name: "voice"},
	}

	shard1 := newMockShard(1)
	shard1.guilds = []*gateway.Guild{guildBeta, guildGamma}
	shard1.users = []*gateway.User{alice, carol}
	shard1.textChannels = []*gateway.TextChannel{
		{ID: 603, GuildID: guildBeta.ID, Name: "general"},
	}

	c.registry.Put(0, shard0)
	c.registry.Put(1, shard1)
	c.queue.Clear()
	return c, shard0, shard1
}

func TestGetGuilds_ShardOrder(t *testing.T) {
	c, _, _ := newAggregateCoordinator(t)

	guilds := c.GetGuilds()
	require.Len(t, guilds, 3)
	assert.Equal(t, guildAlpha, guilds[0])
	assert.Equal(t, guildBeta, guilds[1])
	assert.Equal(t, guildGamma, guilds[2])
}

func TestGetUsers_Deduplicated(t *testing.T) {
	c, _, _ := newAggregateCoordinator(t)

	// alice appears on both shards, but only once in the union
	users := c.GetUsers()
	require.Len(t, users, 3)
	assert.Equal(t, []*gateway.User{alice, bob, carol}, users)
}

func TestGetGuildByID(t *testing.T) {
	c, _, _ := newAggregateCoordinator(t)

	guild, ok := c.GetGuildByID(guildBeta.ID)
	require.True(t, ok)
	assert.Equal(t, "beta", guild.Name)

	_, ok = c.GetGuildByID(gateway.Snowflake(999))
	assert.False(t, ok)
}

func TestGetGuildByStringID(t *testing.T) {
	c, _, _ := newAggregateCoordinator(t)

	guild, err := c.GetGuildByStringID("501")
	require.NoError(t, err)
	require.NotNil(t, guild)
	assert.Equal(t, "alpha", guild.Name)

	// a miss is not an error
	guild, err = c.GetGuildByStringID("999")
	require.NoError(t, err)
	assert.Nil(t, guild)

	_, err = c.GetGuildByStringID("not-a-snowflake")
	assert.ErrorIs(t, err, gateway.ErrInvalidSnowflake)
}

func TestGetChannels(t *testing.T) {
	c, _, _ := newAggregateCoordinator(t)

	texts := c.GetTextChannels()
	require.Len(t, texts, 2)
	assert.Equal(t, gateway.Snowflake(601), texts[0].ID)
	assert.Equal(t, gateway.Snowflake(603), texts[1].ID)

	voices := c.GetVoiceChannels()
	require.Len(t, voices, 1)
	assert.Equal(t, gateway.Snowflake(602), voices[0].ID)

	channel, ok := c.GetTextChannelByID(603)
	require.True(t, ok)
	assert.Equal(t, guildBeta.ID, channel.GuildID)

	voice, err := c.GetVoiceChannelByStringID("602")
	require.NoError(t, err)
	require.NotNil(t, voice)
	assert.Equal(t, "voice", voice.Name)
}

func TestGetUserByID(t *testing.T) {
	c, _, _ := newAggregateCoordinator(t)

	user, ok := c.GetUserByID(bobID)
	require.True(t, ok)
	assert.Equal(t, "bob", user.Username)

	fetched, err := c.GetUserByStringID(carolID.String())
	require.NoError(t, err)
	assert.Equal(t, carol, fetched)
}

func TestGetMutualGuilds(t *testing.T) {
	c, _, _ := newAggregateCoordinator(t)

	mutual, err := c.GetMutualGuilds([]*gateway.User{alice, bob})
	require.NoError(t, err)
	require.Len(t, mutual, 2)
	assert.Equal(t, guildAlpha, mutual[0])
	assert.Equal(t, guildBeta, mutual[1])

	mutual, err = c.GetMutualGuilds([]*gateway.User{alice, carol})
	require.NoError(t, err)
	require.Len(t, mutual, 1)
	assert.Equal(t, guildBeta, mutual[0])

	mutual, err = c.GetMutualGuilds([]*gateway.User{carol})
	require.NoError(t, err)
	assert.Len(t, mutual, 2)
}

func TestGetMutualGuilds_InvalidArguments(t *testing.T) {
	c, _, _ := newAggregateCoordinator(t)

	_, err := c.GetMutualGuilds(nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = c.GetMutualGuilds([]*gateway.User{alice, nil})
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestGetAveragePing(t *testing.T) {
	c, shard0, shard1 := newAggregateCoordinator(t)

	// no shard has a measurement yet
	_, ok := c.GetAveragePing()
	assert.False(t, ok)

	shard0.pingValue = 30 * time.Millisecond
	shard0.pingMeasured = true

	avg, ok := c.GetAveragePing()
	require.True(t, ok)
	assert.Equal(t, 30*time.Millisecond, avg)

	// unmeasured shards are excluded from the mean
	shard1.pingValue = 50 * time.Millisecond
	shard1.pingMeasured = true

	avg, ok = c.GetAveragePing()
	require.True(t, ok)
	assert.Equal(t, 40*time.Millisecond, avg)
}

func TestGetShards_AscendingOrder(t *testing.T) {
	c := newTestCoordinator(t, newMockFactory(), 4)
	for _, id := range []int32{3, 0, 2, 1} {
		c.registry.Put(id, newMockShard(id))
		c.queue.Remove(id)
	}

	shards := c.GetShards()
	require.Len(t, shards, 4)
	for i, shard := range shards {
		assert.Equal(t, int32(i), shard.ID())
	}
}

func TestGetStatuses(t *testing.T) {
	c := newTestCoordinator(t, newMockFactory(), 3)
	shard := newMockShard(1)
	c.registry.Put(1, shard)
	c.queue.Remove(1)

	statuses := c.GetStatuses()
	require.Len(t, statuses, 1)
	assert.Equal(t, gateway.StatusConnected, statuses[1])

	status, ok := c.GetStatus(1)
	require.True(t, ok)
	assert.Equal(t, gateway.StatusConnected, status)

	_, ok = c.GetStatus(0)
	assert.False(t, ok)
}
