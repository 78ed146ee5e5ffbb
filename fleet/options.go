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
	"time"

	"github.com/pkg/errors"

	"github.com/gatefleet/gatefleet/gateway"
)

// FailurePolicy selects how the scheduler reacts to an unclassified
// connection failure (neither an auth rejection nor a rate limit).
type FailurePolicy uint8

const (
	// FailFleet stops the scheduler and surfaces the error through
	// Coordinator.Err. This reproduces the behavior of treating any
	// connection error as fatal for the whole fleet.
	FailFleet FailurePolicy = iota

	// IsolateShard keeps the fleet alive: the failed shard stays queued
	// and its next attempt is gated by an exponential backoff, so a
	// single bad shard cannot take down the rest.
	IsolateShard
)

func (p FailurePolicy) String() string {
	switch p {
	case FailFleet:
		return "fail-fleet"
	case IsolateShard:
		return "isolate-shard"
	}
	return "unknown"
}

type Options struct {
	// Factory builds connected shards. Required.
	Factory gateway.ConnectionFactory

	// ShardsTotal is the total shard count of the whole deployment. The
	// value is passed to every connection attempt so the service can
	// route guilds consistently.
	ShardsTotal int32

	// MinShardID and MaxShardID bound the sub-range of shard ids this
	// coordinator owns. Leave both at -1 to own the full range
	// [0, ShardsTotal).
	MinShardID int32
	MaxShardID int32

	// ConnectInterval is the minimum interval between successive identify
	// attempts, as mandated by the service.
	ConnectInterval time.Duration

	// FailurePolicy for unclassified connection failures.
	FailurePolicy FailurePolicy

	// SharedTransport is the optional process-wide REST transport that
	// Shutdown(true) will release. See gateway.SharedTransport for the
	// process-wide consequences.
	SharedTransport gateway.SharedTransport
}

const DefaultConnectInterval = 5 * time.Second

// NewOptions returns options for a coordinator owning the full shard range.
func NewOptions(factory gateway.ConnectionFactory, shardsTotal int32) Options {
	return Options{
		Factory:         factory,
		ShardsTotal:     shardsTotal,
		MinShardID:      -1,
		MaxShardID:      -1,
		ConnectInterval: DefaultConnectInterval,
	}
}

func (o *Options) Validate() error {
	if o.Factory == nil {
		return errors.New("Factory must not be nil")
	}
	if o.ShardsTotal <= 0 {
		return errors.New("ShardsTotal must be greater than zero")
	}
	if (o.MinShardID == -1) != (o.MaxShardID == -1) {
		return errors.New("MinShardID and MaxShardID must both be set, or both be -1")
	}
	if o.MinShardID != -1 {
		if o.MinShardID < 0 || o.MinShardID > o.MaxShardID || o.MaxShardID >= o.ShardsTotal {
			return errors.New("shard range must satisfy 0 <= MinShardID <= MaxShardID < ShardsTotal")
		}
	}
	if o.ConnectInterval <= 0 {
		return errors.New("ConnectInterval must be greater than zero")
	}
	return nil
}

// shardRange resolves the [-1,-1] convention to the concrete bounds.
func (o *Options) shardRange() (minID, maxID int32) {
	if o.MinShardID == -1 && o.MaxShardID == -1 {
		return 0, o.ShardsTotal - 1
	}
	return o.MinShardID, o.MaxShardID
}
