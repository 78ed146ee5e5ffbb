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

type Map[K comparable, V any] interface {
	Put(key K, value V)
	// PutIfAbsent stores value only when no entry exists for key.
	// It reports whether the value was stored.
	PutIfAbsent(key K, value V) bool
	Get(key K) (value V, found bool)
	Remove(key K) (value V, found bool)
	Keys() []K
	Values() []V
	Empty() bool
	Size() int
	Clear() []V
	String() string
}

func NewConcurrentMap[K comparable, V any]() Map[K, V] {
	return &concurrentMap[K, V]{
		container: make(map[K]V),
	}
}
