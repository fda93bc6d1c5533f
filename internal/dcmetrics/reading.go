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

package dcmetrics

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// Reading is one synthetic observation of a single server.
type Reading struct {
	ReadingID      string    `json:"reading_id"`
	Timestamp      time.Time `json:"timestamp"`
	Zone           string    `json:"zone"`
	HostID         string    `json:"host_id"`
	CPUPercent     float64   `json:"cpu_percent"`
	MemoryPercent  float64   `json:"memory_percent"`
	DiskPercent    float64   `json:"disk_percent"`
	NetworkInKbps  float64   `json:"network_in_kbps"`
	NetworkOutKbps float64   `json:"network_out_kbps"`
	TemperatureC   float64   `json:"temperature_celsius"`
}

// Render returns the reading as a single-line JSON object.
func (r Reading) Render() string {
	b, err := json.Marshal(r)
	if err != nil {
		// Only reachable with non-finite floats, which the walks never produce.
		return fmt.Sprintf(`{"host_id":%q,"error":%q}`, r.HostID, err.Error())
	}
	return string(b)
}

// bounds describes one random-walk gauge.
type bounds struct {
	min, max float64
	step     float64
}

var (
	cpuBounds    = bounds{min: 0, max: 100, step: 7.5}
	memoryBounds = bounds{min: 5, max: 98, step: 2.5}
	diskBounds   = bounds{min: 10, max: 99, step: 0.2}
	netInBounds  = bounds{min: 0, max: 125_000, step: 4_000}
	netOutBounds = bounds{min: 0, max: 125_000, step: 4_000}
	tempBounds   = bounds{min: 18, max: 85, step: 1.5}
)

func (b bounds) initial(rng *rand.Rand) float64 {
	// Start in the lower half so gauges have room to climb.
	return b.min + rng.Float64()*(b.max-b.min)/2
}

func (b bounds) walk(rng *rand.Rand, v float64) float64 {
	v += (rng.Float64()*2 - 1) * b.step
	return math.Min(b.max, math.Max(b.min, v))
}

// serverState holds the current gauge values of one slot so successive
// readings of the same server drift instead of jumping.
type serverState struct {
	cpu, memory, disk float64
	netIn, netOut     float64
	temperature       float64
}

func newServerState(rng *rand.Rand) serverState {
	return serverState{
		cpu:         cpuBounds.initial(rng),
		memory:      memoryBounds.initial(rng),
		disk:        diskBounds.initial(rng),
		netIn:       netInBounds.initial(rng),
		netOut:      netOutBounds.initial(rng),
		temperature: tempBounds.initial(rng),
	}
}

func (s *serverState) advance(rng *rand.Rand) {
	s.cpu = cpuBounds.walk(rng, s.cpu)
	s.memory = memoryBounds.walk(rng, s.memory)
	s.disk = diskBounds.walk(rng, s.disk)
	s.netIn = netInBounds.walk(rng, s.netIn)
	s.netOut = netOutBounds.walk(rng, s.netOut)
	// Hot CPUs run warm.
	s.temperature = tempBounds.walk(rng, s.temperature+(s.cpu-50)*0.01)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
