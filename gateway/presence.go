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

// OnlineStatus is the presence status advertised to the chat service.
type OnlineStatus uint8

const (
	OnlineStatusUnknown OnlineStatus = iota
	OnlineStatusOnline
	OnlineStatusIdle
	OnlineStatusDoNotDisturb
	OnlineStatusInvisible
	OnlineStatusOffline
)

func (s OnlineStatus) String() string {
	switch s {
	case OnlineStatusOnline:
		return "online"
	case OnlineStatusIdle:
		return "idle"
	case OnlineStatusDoNotDisturb:
		return "dnd"
	case OnlineStatusInvisible:
		return "invisible"
	case OnlineStatusOffline:
		return "offline"
	}
	return "unknown"
}

// Presence is the full presence payload a shard advertises. The
// coordinator always fans out the complete presence so that the per-shard
// session does not have to merge partial updates.
type Presence struct {
	Game         *string
	Idle         bool
	OnlineStatus OnlineStatus
}
