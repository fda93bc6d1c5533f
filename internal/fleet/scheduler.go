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

package fleet

import (
	"context"
	"log/slog"
	"time"

	"github.com/cardinalhq/dcgen/internal/dcmetrics"
	"github.com/cardinalhq/dcgen/internal/fly"
	"github.com/cardinalhq/dcgen/internal/fly/partitioner"
)

// Target is where a zone's records go. It is shared read-only by all zones.
type Target struct {
	Topic          string
	PartitionCount int
	Partitioner    partitioner.Partitioner
}

// ZoneScheduler emits one record of its zone per tick.
type ZoneScheduler struct {
	stream     *dcmetrics.Stream
	interval   time.Duration
	target     Target
	dispatcher fly.Dispatcher
	logger     *slog.Logger
}

// NewZoneScheduler creates the scheduler for the zone stream belongs to.
// The scheduler takes ownership of stream.
func NewZoneScheduler(stream *dcmetrics.Stream, interval time.Duration, target Target, dispatcher fly.Dispatcher) *ZoneScheduler {
	if target.Partitioner == nil {
		target.Partitioner = partitioner.HostKeyPartitioner{}
	}
	return &ZoneScheduler{
		stream:     stream,
		interval:   interval,
		target:     target,
		dispatcher: dispatcher,
		logger:     slog.Default().With(slog.String("zone", stream.Zone())),
	}
}

// Run ticks at a fixed rate until ctx is cancelled. Ticks missed because a
// submit was slow are dropped rather than bunched up, and the schedule does
// not drift. Submit failures are logged and the loop moves on.
func (s *ZoneScheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Debug("Zone scheduler started", slog.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Zone scheduler stopped")
			return nil
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *ZoneScheduler) tick(ctx context.Context) {
	rec := s.stream.Next()
	msg := fly.Message{
		Key:   []byte(rec.HostID),
		Value: []byte(rec.Message),
		Headers: map[string]string{
			"zone":       rec.Reading.Zone,
			"reading_id": rec.Reading.ReadingID,
		},
	}
	partition := s.target.Partitioner.GetPartition(msg, s.target.PartitionCount)

	err := s.dispatcher.Submit(ctx, s.target.Topic, partition, msg)
	if err != nil && ctx.Err() != nil {
		// Shutting down; the failure is the cancellation itself.
		return
	}
	recordSubmitted(ctx, s.stream.Zone(), err)
	if err != nil {
		s.logger.Debug("Failed to submit record",
			slog.String("host", rec.HostID),
			slog.Int("partition", partition),
			slog.Any("error", err))
	}
}
