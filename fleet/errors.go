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

import "github.com/pkg/errors"

var (
	// ErrInvalidArgument is returned synchronously for bad shard ids,
	// empty or nil user sets, and other caller mistakes. Never retried.
	ErrInvalidArgument = errors.New("fleet: invalid argument")

	// ErrAlreadyLoggedIn is returned when Login is called twice.
	ErrAlreadyLoggedIn = errors.New("fleet: coordinator already logged in")

	// ErrCoordinatorShutdown is returned when an operation reaches a
	// coordinator that has already been shut down.
	ErrCoordinatorShutdown = errors.New("fleet: coordinator is shut down")
)
