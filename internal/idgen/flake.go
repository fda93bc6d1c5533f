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
	"math/rand/v2"
	"sync"
	"time"

	"github.com/sony/sonyflake"
)

var flakeEpoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// FlakeGenerator hands out roughly time ordered positive IDs.
type FlakeGenerator struct {
	sf *sonyflake.Sonyflake
}

// NewFlakeGenerator derives the machine ID from the private IP address.
// Hosts without one (laptops, some CI sandboxes) get a random machine ID
// instead of an error.
func NewFlakeGenerator() (*FlakeGenerator, error) {
	g, err := newFlakeGenerator(nil)
	if err == nil {
		return g, nil
	}
	return newFlakeGenerator(randomMachineID)
}

func newFlakeGenerator(machineID func() (uint16, error)) (*FlakeGenerator, error) {
	sf, err := sonyflake.New(sonyflake.Settings{
		StartTime: flakeEpoch,
		MachineID: machineID,
	})
	if err != nil {
		return nil, err
	}
	if sf == nil {
		return nil, errors.New("failed to create Sonyflake instance")
	}
	return &FlakeGenerator{sf: sf}, nil
}

func randomMachineID() (uint16, error) {
	return uint16(rand.UintN(1 << 16)), nil
}

// NextID returns a positive int64 that'll increase roughly in time order.
func (g *FlakeGenerator) NextID() int64 {
	v, err := g.sf.NextID()
	if err != nil {
		return rand.Int64()
	}
	return int64(v)
}

// InstanceID identifies this process in logs and telemetry. It is computed
// once and stays the same for the life of the process.
var InstanceID = sync.OnceValue(func() int64 {
	g, err := NewFlakeGenerator()
	if err != nil {
		return rand.Int64()
	}
	return g.NextID()
})
