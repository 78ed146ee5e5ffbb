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

import (
	"context"
	"time"
)

// EventListener receives events dispatched by a shard's session.
type EventListener interface {
	OnEvent(event Event)
}

// Event is a single gateway event as dispatched by a shard.
type Event struct {
	ShardID int32
	Type    string
	Payload any
}

// ListenerRegistration identifies one listener registration on one shard,
// so that the same listener instance can be registered and removed
// independently on several shards.
type ListenerRegistration string

// Shard is one connected (or connecting) logical connection to the chat
// service, covering a disjoint partition of the guild space. The
// coordinator treats it as an opaque collaborator: it never mutates the
// entity caches and only drives disconnects during lifecycle transitions.
//
// The entity accessors return point-in-time snapshots. Callers own the
// returned slices; mutating them has no effect on the shard's caches.
type Shard interface {
	ID() int32

	Status() Status

	// Ping returns the last measured heartbeat round-trip and whether a
	// heartbeat has completed at all on this session.
	Ping() (time.Duration, bool)

	Guilds() []*Guild
	Users() []*User
	TextChannels() []*TextChannel
	VoiceChannels() []*VoiceChannel

	SetPresence(presence Presence) error

	AddListener(listener EventListener) ListenerRegistration
	RemoveListener(registration ListenerRegistration)

	// Disconnect closes the session. When notifyRemote is false the
	// teardown is silent: remote peers are not told this is a planned
	// departure, which is the right mode when the shard is about to be
	// replaced.
	Disconnect(notifyRemote bool) error
}

// ConnectionFactory builds connected shards. It is the external
// collaborator that owns authentication, session setup and reconnects.
//
// Connect classifies its failures through the ErrAuthFailed and
// ErrRateLimited sentinels; any other error is an unclassified
// connection failure.
type ConnectionFactory interface {
	Connect(ctx context.Context, shardID int32, shardsTotal int32) (Shard, error)
}

// SharedTransport is a process-wide networking resource shared by the REST
// layer of every coordinator instance in the process.
//
// Releasing it permanently disables REST calls for all current and future
// coordinator instances sharing it. Only release it when no other
// coordinator or client shares the resource.
type SharedTransport interface {
	Release() error
}
