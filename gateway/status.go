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

// Status is the lifecycle state of a single shard connection. It is owned
// by the shard itself, except for the transitions the coordinator drives
// during restart and shutdown.
type Status uint32

const (
	StatusQueued Status = iota
	StatusConnecting
	StatusConnected
	StatusReconnecting
	StatusShutdown
)

func (s Status) String() string {
	switch s {
	case StatusQueued:
		return "Queued"
	case StatusConnecting:
		return "Connecting"
	case StatusConnected:
		return "Connected"
	case StatusReconnecting:
		return "Reconnecting"
	case StatusShutdown:
		return "Shutdown"
	}
	return "Unknown"
}
