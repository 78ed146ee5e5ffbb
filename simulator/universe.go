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

package simulator

import (
	"fmt"

	"github.com/gatefleet/gatefleet/gateway"
)

// universe is the deterministic entity fixture shared by every simulated
// shard. Guilds are partitioned over shards with the service's routing
// formula, (guildID >> 22) % shardsTotal, and users deliberately overlap
// across guilds so aggregation has duplicates to collapse.
type universe struct {
	guilds        []*gateway.Guild
	users         []*gateway.User
	textChannels  map[gateway.Snowflake][]*gateway.TextChannel
	voiceChannels map[gateway.Snowflake][]*gateway.VoiceChannel
}

const (
	guildIDBase = uint64(4_100_000)
	userIDBase  = uint64(9_300_000)
)

func guildID(i int) gateway.Snowflake {
	return gateway.Snowflake((guildIDBase + uint64(i)) << 22)
}

func userID(j int) gateway.Snowflake {
	return gateway.Snowflake(((userIDBase + uint64(j)) << 22) | 1)
}

func newUniverse(guildCount, membersPerGuild int) *universe {
	u := &universe{
		textChannels:  make(map[gateway.Snowflake][]*gateway.TextChannel),
		voiceChannels: make(map[gateway.Snowflake][]*gateway.VoiceChannel),
	}

	userCount := guildCount * membersPerGuild / 2
	if userCount < membersPerGuild {
		userCount = membersPerGuild
	}
	for j := 0; j < userCount; j++ {
		u.users = append(u.users, &gateway.User{
			ID:       userID(j),
			Username: fmt.Sprintf("user-%d", j),
		})
	}

	for i := 0; i < guildCount; i++ {
		id := guildID(i)
		guild := &gateway.Guild{
			ID:   id,
			Name: fmt.Sprintf("guild-%d", i),
		}
		for k := 0; k < membersPerGuild; k++ {
			guild.MemberIDs = append(guild.MemberIDs, u.users[(i*3+k)%userCount].ID)
		}
		u.guilds = append(u.guilds, guild)

		u.textChannels[id] = []*gateway.TextChannel{{
			ID:      id + 1,
			GuildID: id,
			Name:    "general",
		}}
		u.voiceChannels[id] = []*gateway.VoiceChannel{{
			ID:      id + 2,
			GuildID: id,
			Name:    "voice",
		}}
	}

	return u
}

// guildsForShard selects the guilds routed to the given shard.
func (u *universe) guildsForShard(shardID, shardsTotal int32) []*gateway.Guild {
	var out []*gateway.Guild
	for _, guild := range u.guilds {
		if int32((uint64(guild.ID)>>22)%uint64(shardsTotal)) == shardID {
			out = append(out, guild)
		}
	}
	return out
}

func (u *universe) userByID(id gateway.Snowflake) *gateway.User {
	for _, user := range u.users {
		if user.ID == id {
			return user
		}
	}
	return nil
}
