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

package collection

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
)

// concurrentMap is a generic thread-safe mapping. Writers are serialized
// through an RWMutex while the size is kept in an atomic so that callers
// can poll it without contending with mutations.
//
// K: The type of the key, which must be comparable.
// V: The type of the value, which can be any type (any).
type concurrentMap[K comparable, V any] struct {
	mu        sync.RWMutex
	container map[K]V
	size      atomic.Int32
}

func (c *concurrentMap[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exist := c.container[key]; !exist {
		c.size.Add(1)
	}
	c.container[key] = value
}

func (c *concurrentMap[K, V]) PutIfAbsent(key K, value V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exist := c.container[key]; exist {
		return false
	}
	c.container[key] = value
	c.size.Add(1)
	return true
}

func (c *concurrentMap[K, V]) Get(key K) (value V, found bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, found = c.container[key]
	return value, found
}

func (c *concurrentMap[K, V]) Remove(key K) (value V, found bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	value, found = c.container[key]
	if found {
		delete(c.container, key)
		c.size.Add(-1)
	}
	return value, found
}

func (c *concurrentMap[K, V]) Keys() []K {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]K, 0, len(c.container))
	for key := range c.container {
		keys = append(keys, key)
	}
	return keys
}

func (c *concurrentMap[K, V]) Values() []V {
	c.mu.RLock()
	defer c.mu.RUnlock()

	values := make([]V, 0, len(c.container))
	for key := range c.container {
		values = append(values, c.container[key])
	}
	return values
}

func (c *concurrentMap[K, V]) Empty() bool {
	return c.size.Load() == 0
}

func (c *concurrentMap[K, V]) Size() int {
	return int(c.size.Load())
}

// Clear removes every entry and returns the values that were present.
func (c *concurrentMap[K, V]) Clear() []V {
	c.mu.Lock()
	defer c.mu.Unlock()

	values := make([]V, 0, len(c.container))
	for key := range c.container {
		values = append(values, c.container[key])
	}
	c.container = make(map[K]V)
	c.size.Store(0)
	return values
}

func (c *concurrentMap[K, V]) String() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var builder strings.Builder
	builder.WriteString("{")

	first := true
	for k, val := range c.container {
		if !first {
			builder.WriteString(", ")
		}
		builder.WriteString(fmt.Sprintf("%v: %v", k, val))
		first = false
	}
	builder.WriteString("}")
	return builder.String()
}
