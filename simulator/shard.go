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
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/gatefleet/gatefleet/gateway"
)

// Shard is a simulated shard session. Entity accessors return copies, so
// callers can mutate the results without touching the fixture.
type Shard struct {
	id          int32
	shardsTotal int32
	sessionID   string
	universe    *universe

	status          atomic.Uint32
	ping            time.Duration
	disconnects     atomic.Int32
	notifiedRemote  atomic.Bool
	presenceMu      sync.Mutex
	presence        gateway.Presence
	presenceUpdates int

	listenersMu sync.Mutex
	listeners   map[gateway.ListenerRegistration]gateway.EventListener
}

var _ gateway.Shard = (*Shard)(nil)

func newShard(id, shardsTotal int32, u *universe) *Shard {
	s := &Shard{
		id:          id,
		shardsTotal: shardsTotal,
		sessionID:   uuid.NewString(),
		universe:    u,
		ping:        20*time.Millisecond + time.Duration(id)*time.Millisecond,
		listeners:   make(map[gateway.ListenerRegistration]gateway.EventListener),
	}
	s.status.Store(uint32(gateway.StatusConnected))
	return s
}

func (s *Shard) ID() int32 {
	return s.id
}

// SessionID identifies this connection instance; a reconnected shard gets
// a fresh one.
func (s *Shard) SessionID() string {
	return s.sessionID
}

func (s *Shard) Status() gateway.Status {
	return gateway.Status(s.status.Load())
}

func (s *Shard) Ping() (time.Duration, bool) {
	if s.Status() != gateway.StatusConnected {
		return 0, false
	}
	return s.ping, true
}

func (s *Shard) Guilds() []*gateway.Guild {
	guilds := s.universe.guildsForShard(s.id, s.shardsTotal)
	out := make([]*gateway.Guild, len(guilds))
	copy(out, guilds)
	return out
}

func (s *Shard) Users() []*gateway.User {
	seen := make(map[gateway.Snowflake]struct{})
	var out []*gateway.User
	for _, guild := range s.universe.guildsForShard(s.id, s.shardsTotal) {
		for _, memberID := range guild.MemberIDs {
			if _, dup := seen[memberID]; dup {
				continue
			}
			seen[memberID] = struct{}{}
			if user := s.universe.userByID(memberID); user != nil {
				out = append(out, user)
			}
		}
	}
	return out
}

func (s *Shard) TextChannels() []*gateway.TextChannel {
	var out []*gateway.TextChannel
	for _, guild := range s.universe.guildsForShard(s.id, s.shardsTotal) {
		out = append(out, s.universe.textChannels[guild.ID]...)
	}
	return out
}

func (s *Shard) VoiceChannels() []*gateway.VoiceChannel {
	var out []*gateway.VoiceChannel
	for _, guild := range s.universe.guildsForShard(s.id, s.shardsTotal) {
		out = append(out, s.universe.voiceChannels[guild.ID]...)
	}
	return out
}

func (s *Shard) SetPresence(presence gateway.Presence) error {
	s.presenceMu.Lock()
	defer s.presenceMu.Unlock()
	s.presence = presence
	s.presenceUpdates++
	return nil
}

// Presence returns the last presence payload this shard received.
func (s *Shard) Presence() gateway.Presence {
	s.presenceMu.Lock()
	defer s.presenceMu.Unlock()
	return s.presence
}

func (s *Shard) AddListener(listener gateway.EventListener) gateway.ListenerRegistration {
	registration := gateway.ListenerRegistration(uuid.NewString())

	s.listenersMu.Lock()
	s.listeners[registration] = listener
	s.listenersMu.Unlock()

	return registration
}

func (s *Shard) RemoveListener(registration gateway.ListenerRegistration) {
	s.listenersMu.Lock()
	delete(s.listeners, registration)
	s.listenersMu.Unlock()
}

// Dispatch fans an event out to the registered listeners, the way the
// real session would on a gateway dispatch frame.
func (s *Shard) Dispatch(eventType string, payload any) {
	s.listenersMu.Lock()
	listeners := make([]gateway.EventListener, 0, len(s.listeners))
	for _, listener := range s.listeners {
		listeners = append(listeners, listener)
	}
	s.listenersMu.Unlock()

	event := gateway.Event{
		ShardID: s.id,
		Type:    eventType,
		Payload: payload,
	}
	for _, listener := range listeners {
		listener.OnEvent(event)
	}
}

func (s *Shard) Disconnect(notifyRemote bool) error {
	s.disconnects.Add(1)
	if notifyRemote {
		s.notifiedRemote.Store(true)
	}
	s.status.Store(uint32(gateway.StatusShutdown))
	return nil
}

// Disconnects reports how many times Disconnect was called.
func (s *Shard) Disconnects() int {
	return int(s.disconnects.Load())
}

// NotifiedRemote reports whether any disconnect announced a planned
// departure to the remote side.
func (s *Shard) NotifiedRemote() bool {
	return s.notifiedRemote.Load()
}
