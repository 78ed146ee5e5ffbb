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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocationQueue_FIFO(t *testing.T) {
	q := newAllocationQueue()
	assert.True(t, q.IsEmpty())

	q.Offer(2)
	q.Offer(0)
	q.Offer(1)

	assert.Equal(t, 3, q.Size())
	assert.Equal(t, []int32{2, 0, 1}, q.Snapshot())

	head, ok := q.Peek()
	require.True(t, ok)
	assert.Equal(t, int32(2), head)

	// Peek does not consume
	assert.Equal(t, 3, q.Size())

	id, ok := q.Poll()
	require.True(t, ok)
	assert.Equal(t, int32(2), id)
	assert.Equal(t, []int32{0, 1}, q.Snapshot())
}

func TestAllocationQueue_Empty(t *testing.T) {
	q := newAllocationQueue()

	_, ok := q.Peek()
	assert.False(t, ok)
	_, ok = q.Poll()
	assert.False(t, ok)
}

func TestAllocationQueue_Remove(t *testing.T) {
	q := newAllocationQueue()
	q.Offer(0)
	q.Offer(1)
	q.Offer(0)
	q.Offer(2)

	// removes every occurrence, preserving the order of the rest
	q.Remove(0)
	assert.Equal(t, []int32{1, 2}, q.Snapshot())
	assert.False(t, q.Contains(0))
	assert.True(t, q.Contains(1))

	// removing an absent id is a no-op
	q.Remove(9)
	assert.Equal(t, []int32{1, 2}, q.Snapshot())
}

func TestAllocationQueue_Clear(t *testing.T) {
	q := newAllocationQueue()
	q.Offer(0)
	q.Offer(1)

	q.Clear()
	assert.True(t, q.IsEmpty())
	assert.Empty(t, q.Snapshot())
}
