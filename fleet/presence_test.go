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
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatefleet/gatefleet/gateway"
)

func newPresenceCoordinator(t *testing.T) (*Coordinator, *mockShard, *mockShard) {
	t.Helper()

	c := newTestCoordinator(t, newMockFactory(), 2)
	shard0 := newMockShard(0)
	shard1 := newMockShard(1)
	c.registry.Put(0, shard0)
	c.registry.Put(1, shard1)
	c.queue.Clear()
	return c, shard0, shard1
}

func TestSetGame_FansOut(t *testing.T) {
	c, shard0, shard1 := newPresenceCoordinator(t)

	game := "with fire"
	require.NoError(t, c.SetGame(&game))

	require.NotNil(t, shard0.lastPresence().Game)
	assert.Equal(t, "with fire", *shard0.lastPresence().Game)
	assert.Equal(t, "with fire", *shard1.lastPresence().Game)

	// nil clears the game on every shard
	require.NoError(t, c.SetGame(nil))
	assert.Nil(t, shard0.lastPresence().Game)
	assert.Nil(t, shard1.lastPresence().Game)
}

func TestSetIdle_PreservesOtherFields(t *testing.T) {
	c, shard0, _ := newPresenceCoordinator(t)

	game := "chess"
	require.NoError(t, c.SetGame(&game))
	require.NoError(t, c.SetIdle(true))

	presence := shard0.lastPresence()
	assert.True(t, presence.Idle)
	require.NotNil(t, presence.Game)
	assert.Equal(t, "chess", *presence.Game)
}

func TestSetStatus(t *testing.T) {
	c, shard0, shard1 := newPresenceCoordinator(t)

	require.NoError(t, c.SetStatus(gateway.OnlineStatusDoNotDisturb))
	assert.Equal(t, gateway.OnlineStatusDoNotDisturb, shard0.lastPresence().OnlineStatus)
	assert.Equal(t, gateway.OnlineStatusDoNotDisturb, shard1.lastPresence().OnlineStatus)

	assert.ErrorIs(t, c.SetStatus(gateway.OnlineStatusUnknown), ErrInvalidArgument)
	// the rejected update was not applied
	assert.Equal(t, gateway.OnlineStatusDoNotDisturb, shard0.lastPresence().OnlineStatus)
}

type countingListener struct {
	events atomic.Int32
}

func (l *countingListener) OnEvent(gateway.Event) {
	l.events.Add(1)
}

func TestAddEventListener(t *testing.T) {
	c, shard0, shard1 := newPresenceCoordinator(t)

	listener := &countingListener{}
	id := c.AddEventListener(listener)
	assert.NotEmpty(t, id)

	assert.Equal(t, 1, shard0.listenerCount())
	assert.Equal(t, 1, shard1.listenerCount())

	c.RemoveEventListener(id)
	assert.Equal(t, 0, shard0.listenerCount())
	assert.Equal(t, 0, shard1.listenerCount())
}

func TestRemoveEventListener_UnknownID(t *testing.T) {
	c, shard0, _ := newPresenceCoordinator(t)

	listener := &countingListener{}
	c.AddEventListener(listener)

	c.RemoveEventListener("no-such-registration")
	assert.Equal(t, 1, shard0.listenerCount())
}

func TestAddEventListener_DistinctIDs(t *testing.T) {
	c, shard0, _ := newPresenceCoordinator(t)

	first := c.AddEventListener(&countingListener{})
	second := c.AddEventListener(&countingListener{})
	assert.NotEqual(t, first, second)
	assert.Equal(t, 2, shard0.listenerCount())

	c.RemoveEventListener(first)
	assert.Equal(t, 1, shard0.listenerCount())
}
