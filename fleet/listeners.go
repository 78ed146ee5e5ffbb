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
	"github.com/google/uuid"

	"github.com/gatefleet/gatefleet/gateway"
)

type listenerEntry struct {
	listener      gateway.EventListener
	registrations map[int32]gateway.ListenerRegistration
}

// AddEventListener registers the listener on every currently registered
// shard and returns a fleet-level id for later removal. Shards connected
// after this call are not covered, matching the per-shard registration
// model of the session layer.
func (c *Coordinator) AddEventListener(listener gateway.EventListener) string {
	entry := &listenerEntry{
		listener:      listener,
		registrations: make(map[int32]gateway.ListenerRegistration),
	}

	for _, shard := range c.GetShards() {
		entry.registrations[shard.ID()] = shard.AddListener(listener)
	}

	id := uuid.NewString()

	c.listenersMu.Lock()
	c.listeners[id] = entry
	c.listenersMu.Unlock()

	return id
}

// RemoveEventListener removes a previously added listener from every
// shard it is still registered on. Unknown ids are ignored.
func (c *Coordinator) RemoveEventListener(id string) {
	c.listenersMu.Lock()
	entry, ok := c.listeners[id]
	delete(c.listeners, id)
	c.listenersMu.Unlock()

	if !ok {
		return
	}

	for shardID, registration := range entry.registrations {
		if shard, found := c.registry.Get(shardID); found {
			shard.RemoveListener(registration)
		}
	}
}
