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

import "github.com/pkg/errors"

var (
	// ErrAuthFailed means the credentials were rejected. The token is
	// shared by every shard, so this is fatal for the whole fleet.
	ErrAuthFailed = errors.New("gateway: authentication failed")

	// ErrRateLimited means the service refused the identify because the
	// minimum inter-identify interval has not elapsed yet. Expected and
	// retried on the next scheduler tick.
	ErrRateLimited = errors.New("gateway: identify rate limited")
)

// IsAuthFailure reports whether err is a credentials rejection.
func IsAuthFailure(err error) bool {
	return errors.Is(err, ErrAuthFailed)
}

// IsRateLimited reports whether err is an identify rate limit.
func IsRateLimited(err error) bool {
	return errors.Is(err, ErrRateLimited)
}
