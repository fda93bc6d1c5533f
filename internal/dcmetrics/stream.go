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
	crand "crypto/rand"
	"io"
	"math/rand/v2"
	"time"

	"github.com/oklog/ulid/v2"
)

// Record is one generated metric message, keyed by the server it describes.
type Record struct {
	HostID  string
	Message string
	Reading Reading
}

// Stream produces an endless sequence of records for one zone, visiting the
// zone's servers round-robin. A Stream is owned by a single goroutine.
type Stream struct {
	zone    string
	hosts   []string
	servers []serverState
	cursor  *Cursor
	rng     *rand.Rand
	now     func() time.Time
	entropy io.Reader
}

// StreamOption customizes a Stream.
type StreamOption func(*Stream)

// WithRand sets the random source used for gauge values.
func WithRand(rng *rand.Rand) StreamOption {
	return func(s *Stream) {
		s.rng = rng
	}
}

// WithClock sets the clock used to timestamp readings.
func WithClock(now func() time.Time) StreamOption {
	return func(s *Stream) {
		s.now = now
	}
}

// NewStream creates the stream for zone with the given number of servers.
// A server count below 1 is treated as 1.
func NewStream(zone string, servers int, opts ...StreamOption) *Stream {
	cursor := NewCursor(servers)
	s := &Stream{
		zone:    zone,
		cursor:  cursor,
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:     time.Now,
		entropy: ulid.Monotonic(crand.Reader, 0),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.hosts = make([]string, cursor.Modulus())
	s.servers = make([]serverState, cursor.Modulus())
	for slot := range s.hosts {
		s.hosts[slot] = HostID(zone, slot)
		s.servers[slot] = newServerState(s.rng)
	}
	return s
}

// Zone returns the zone this stream generates for.
func (s *Stream) Zone() string {
	return s.zone
}

// Hosts returns the host identifiers of the zone in slot order.
func (s *Stream) Hosts() []string {
	out := make([]string, len(s.hosts))
	copy(out, s.hosts)
	return out
}

// Next returns the reading for the next server slot. It never fails.
func (s *Stream) Next() Record {
	slot := s.cursor.Next()
	state := &s.servers[slot]
	state.advance(s.rng)

	now := s.now()
	id, err := ulid.New(ulid.Timestamp(now), s.entropy)
	if err != nil {
		id = ulid.Make()
	}

	reading := Reading{
		ReadingID:      id.String(),
		Timestamp:      now.UTC(),
		Zone:           s.zone,
		HostID:         s.hosts[slot],
		CPUPercent:     round2(state.cpu),
		MemoryPercent:  round2(state.memory),
		DiskPercent:    round2(state.disk),
		NetworkInKbps:  round2(state.netIn),
		NetworkOutKbps: round2(state.netOut),
		TemperatureC:   round2(state.temperature),
	}
	return Record{
		HostID:  reading.HostID,
		Message: reading.Render(),
		Reading: reading,
	}
}
