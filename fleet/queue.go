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
	"sync"

	"github.com/emirpasic/gods/queues/linkedlistqueue"
)

// allocationQueue is the FIFO of shard ids awaiting connection. Every id
// of the configured range is, at any instant, either here or in the
// registry, except transiently during a connection attempt.
type allocationQueue struct {
	mu sync.RWMutex
	q  *linkedlistqueue.Queue
}

func newAllocationQueue() *allocationQueue {
	return &allocationQueue{
		q: linkedlistqueue.New(),
	}
}

func (a *allocationQueue) Offer(id int32) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.q.Enqueue(id)
}

func (a *allocationQueue) Peek() (int32, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	v, ok := a.q.Peek()
	if !ok {
		return 0, false
	}
	return v.(int32), true
}

func (a *allocationQueue) Poll() (int32, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	v, ok := a.q.Dequeue()
	if !ok {
		return 0, false
	}
	return v.(int32), true
}

// Remove drops every occurrence of id, preserving the order of the rest.
func (a *allocationQueue) Remove(id int32) {
	a.mu.Lock()
	defer a.mu.Unlock()

	values := a.q.Values()
	a.q.Clear()
	for _, v := range values {
		if v.(int32) != id {
			a.q.Enqueue(v)
		}
	}
}

func (a *allocationQueue) Contains(id int32) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	for _, v := range a.q.Values() {
		if v.(int32) == id {
			return true
		}
	}
	return false
}

func (a *allocationQueue) Size() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.q.Size()
}

func (a *allocationQueue) IsEmpty() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.q.Empty()
}

// Snapshot returns the queued ids in order, head first.
func (a *allocationQueue) Snapshot() []int32 {
	a.mu.RLock()
	defer a.mu.RUnlock()

	values := a.q.Values()
	ids := make([]int32, 0, len(values))
	for _, v := range values {
		ids = append(ids, v.(int32))
	}
	return ids
}

func (a *allocationQueue) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.q.Clear()
}
