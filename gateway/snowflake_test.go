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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseSnowflake(t *testing.T) {
	for _, item := range []struct {
		input    string
		expected Snowflake
		valid    bool
	}{
		{"0", 0, true},
		{"81384788765712384", 81384788765712384, true},
		{"18446744073709551615", 18446744073709551615, true},
		{"18446744073709551616", 0, false}, // overflow
		{"-1", 0, false},
		{"12ab", 0, false},
		{"", 0, false},
		{"0x10", 0, false},
	} {
		id, err := ParseSnowflake(item.input)
		if item.valid {
			assert.NoError(t, err, item.input)
			assert.Equal(t, item.expected, id)
			assert.Equal(t, item.input, id.String())
		} else {
			assert.ErrorIs(t, err, ErrInvalidSnowflake, item.input)
		}
	}
}

func TestGuildIsMember(t *testing.T) {
	g := &Guild{ID: 1, Name: "g", MemberIDs: []Snowflake{10, 20}}

	assert.True(t, g.IsMember(10))
	assert.True(t, g.IsMember(20))
	assert.False(t, g.IsMember(30))
}
