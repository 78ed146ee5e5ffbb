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
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/gatefleet/gatefleet/gateway"
)

// mockShard is a scriptable gateway.Shard.
type mockShard struct {
	id int32

	pingValue    time.Duration
	pingMeasured bool

	guilds        []*gateway.Guild
	users         []*gateway.User
	textChannels  []*gateway.TextChannel
	voiceChannels []*gateway.VoiceChannel

	status atomic.Uint32

	disconnects    atomic.Int32
	notifiedRemote atomic.Bool

	presenceMu sync.Mutex
	presence   gateway.Presence
	presences  int

	listenersMu sync.Mutex
	listeners   map[gateway.ListenerRegistration]gateway.EventListener
}

var _ gateway.Shard = (*mockShard)(nil)

func newMockShard(id int32) *mockShard {
	s := &mockShard{
		id:        id,
		listeners: make(map[gateway.ListenerRegistration]gateway.EventListener),
	}
	s.status.Store(uint32(gateway.StatusConnected))
	return s
}

func (s *mockShard) ID() int32 {
	return s.id
}

func (s *mockShard) Status() gateway.Status {
	return gateway.Status(s.status.Load())
}

func (s *mockShard) Ping() (time.Duration, bool) {
	return s.pingValue, s.pingMeasured
}

func (s *mockShard) Guilds() []*gateway.Guild {
	return s.guilds
}

func (s *mockShard) Users() []*gateway.User {
	return s.users
}

func (s *mockShard) TextChannels() []*gateway.TextChannel {
	return s.textChannels
}

func (s *mockShard) VoiceChannels() []*gateway.VoiceChannel {
	return s.voiceChannels
}

func (s *mockShard) SetPresence(presence gateway.Presence) error {
	s.presenceMu.Lock()
	defer s.presenceMu.Unlock()
	s.presence = presence
	s.presences++
	return nil
}

func (s *mockShard) lastPresence() gateway.Presence {
	s.presenceMu.Lock()
	defer s.presenceMu.Unlock()
	return s.presence
}

func (s *mockShard) AddListener(listener gateway.EventListener) gateway.ListenerRegistration {
	registration := gateway.ListenerRegistration(uuid.NewString())
	s.listenersMu.Lock()
	s.listeners[registration] = listener
	s.listenersMu.Unlock()
	return registration
}

func (s *mockShard) RemoveListener(registration gateway.ListenerRegistration) {
	s.listenersMu.Lock()
	delete(s.listeners, registration)
	s.listenersMu.Unlock()
}

func (s *mockShard) listenerCount() int {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	return len(s.listeners)
}

func (s *mockShard) Disconnect(notifyRemote bool) error {
	s.disconnects.Add(1)
	if notifyRemote {
		s.notifiedRemote.Store(true)
	}
	s.status.Store(uint32(gateway.StatusShutdown))
	return nil
}

// outcome scripts one connection attempt.
type outcome struct {
	err     error
	partial bool // return a half-built handle together with err
	block   chan struct{}
}

var errMockConnection = errors.New("mock: connection reset")

// mockFactory hands out mockShards, consuming per-id scripted outcomes
// before defaulting to success.
type mockFactory struct {
	mu       sync.Mutex
	scripts  map[int32][]outcome
	attempts map[int32]int
	built    map[int32][]*mockShard
}

var _ gateway.ConnectionFactory = (*mockFactory)(nil)

func newMockFactory() *mockFactory {
	return &mockFactory{
		scripts:  make(map[int32][]outcome),
		attempts: make(map[int32]int),
		built:    make(map[int32][]*mockShard),
	}
}

func (f *mockFactory) script(id int32, outcomes ...outcome) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scripts[id] = append(f.scripts[id], outcomes...)
}

func (f *mockFactory) attemptCount(id int32) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts[id]
}

func (f *mockFactory) builtShards(id int32) []*mockShard {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*mockShard{}, f.built[id]...)
}

func (f *mockFactory) Connect(ctx context.Context, shardID int32, _ int32) (gateway.Shard, error) {
	f.mu.Lock()
	f.attempts[shardID]++
	var next *outcome
	if script := f.scripts[shardID]; len(script) > 0 {
		next = &script[0]
		f.scripts[shardID] = script[1:]
	}
	f.mu.Unlock()

	// a blocked attempt deliberately ignores ctx: it simulates an attempt
	// that resolves after a racing shutdown already canceled the context
	if next != nil && next.block != nil {
		<-next.block
	}

	if next != nil && next.err != nil {
		if next.partial {
			partial := newMockShard(shardID)
			f.recordBuilt(shardID, partial)
			return partial, next.err
		}
		return nil, next.err
	}

	shard := newMockShard(shardID)
	shard.pingValue = 10 * time.Millisecond
	shard.pingMeasured = true
	f.recordBuilt(shardID, shard)
	return shard, nil
}

func (f *mockFactory) recordBuilt(id int32, shard *mockShard) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.built[id] = append(f.built[id], shard)
}
