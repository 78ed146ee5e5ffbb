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

package gateway

// Entity is implemented by every snowflake-identified object exposed
// through a shard's caches.
type Entity interface {
	SnowflakeID() Snowflake
}

type Guild struct {
	ID        Snowflake
	Name      string
	MemberIDs []Snowflake
}

func (g *Guild) SnowflakeID() Snowflake {
	return g.ID
}

// IsMember reports whether the user is a member of this guild.
func (g *Guild) IsMember(userID Snowflake) bool {
	for _, id := range g.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

type User struct {
	ID       Snowflake
	Username string
}

func (u *User) SnowflakeID() Snowflake {
	return u.ID
}

type TextChannel struct {
	ID      Snowflake
	GuildID Snowflake
	Name    string
}

func (c *TextChannel) SnowflakeID() Snowflake {
	return c.ID
}

type VoiceChannel struct {
	ID      Snowflake
	GuildID Snowflake
	Name    string
}

func (c *VoiceChannel) SnowflakeID() Snowflake {
	return c.ID
}
