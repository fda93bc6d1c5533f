// Copyright (C) 2025-2026 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package idgen

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlakeGenerator_NextID(t *testing.T) {
	gen, err := NewFlakeGenerator()
	require.NoError(t, err, "failed to create FlakeGenerator")

	id := gen.NextID()
	id2 := gen.NextID()
	assert.Positive(t, id)
	assert.Greater(t, id2, id, "NextID() did not return increasing id")
}

func TestFlakeGenerator_FixedMachineID(t *testing.T) {
	gen, err := newFlakeGenerator(func() (uint16, error) { return 42, nil })
	require.NoError(t, err)

	seen := make(map[int64]struct{}, 1000)
	for range 1000 {
		id := gen.NextID()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %d", id)
		seen[id] = struct{}{}
	}
}

func TestFlakeGenerator_MachineIDError(t *testing.T) {
	_, err := newFlakeGenerator(func() (uint16, error) { return 0, errors.New("no address") })
	assert.Error(t, err)
}

func TestInstanceIDStable(t *testing.T) {
	assert.Equal(t, InstanceID(), InstanceID())
	assert.NotZero(t, InstanceID())
}
