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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cardinalhq/dcgen/internal/dcmetrics"
	"github.com/cardinalhq/dcgen/internal/fly"
	"github.com/cardinalhq/dcgen/internal/fly/partitioner"
)

// ErrInvalidParams is wrapped by every GeneratorParams validation error.
var ErrInvalidParams = errors.New("invalid generator parameters")

// GeneratorParams shapes the simulated data center.
type GeneratorParams struct {
	Interval       time.Duration
	Zones          int
	ServersPerZone int
}

// Validate reports the first parameter out of range.
func (p GeneratorParams) Validate() error {
	if p.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %s", ErrInvalidParams, p.Interval)
	}
	if p.Zones < 1 || p.Zones > dcmetrics.MaxZones {
		return fmt.Errorf("%w: zones must be between 1 and %d, got %d", ErrInvalidParams, dcmetrics.MaxZones, p.Zones)
	}
	if p.ServersPerZone < 1 {
		return fmt.Errorf("%w: servers per zone must be at least 1, got %d", ErrInvalidParams, p.ServersPerZone)
	}
	return nil
}

// NewStreams creates one stream per zone, in zone order.
func NewStreams(p GeneratorParams, opts ...dcmetrics.StreamOption) []*dcmetrics.Stream {
	streams := make([]*dcmetrics.Stream, p.Zones)
	for i := range streams {
		streams[i] = dcmetrics.NewStream(dcmetrics.ZoneName(i), p.ServersPerZone, opts...)
	}
	return streams
}

// RunStdout writes one record per tick to w, taking the zones in turn. It
// runs on the calling goroutine and returns nil once ctx is cancelled.
func RunStdout(ctx context.Context, w io.Writer, p GeneratorParams) error {
	if err := p.Validate(); err != nil {
		return err
	}

	streams := NewStreams(p)
	zones := dcmetrics.NewCursor(len(streams))

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rec := streams[zones.Next()].Next()
			if _, err := fmt.Fprintln(w, rec.Message); err != nil {
				return fmt.Errorf("failed to write record: %w", err)
			}
		}
	}
}

// Provisioner makes sure the destination topic exists.
type Provisioner interface {
	Provision(ctx context.Context, spec fly.TopicSpec) (fly.ProvisionResult, error)
}

// DispatcherFunc builds the dispatcher once provisioning has succeeded.
type DispatcherFunc func(ctx context.Context) (fly.Dispatcher, error)

// KafkaRun wires provisioning, the dispatcher and the zone schedulers.
type KafkaRun struct {
	Generator     GeneratorParams
	Topic         fly.TopicSpec
	Provisioner   Provisioner
	NewDispatcher DispatcherFunc
	Partitioner   partitioner.Partitioner
}

// Run provisions the topic, connects the dispatcher and then runs one
// scheduler per zone until ctx is cancelled. Nothing is generated unless
// provisioning and dispatcher construction both succeed. After every zone
// has stopped the dispatcher is closed, flushing what is still buffered.
func (r KafkaRun) Run(ctx context.Context) error {
	if err := r.Generator.Validate(); err != nil {
		return err
	}
	if err := r.Topic.Validate(); err != nil {
		return err
	}

	result, err := r.Provisioner.Provision(ctx, r.Topic)
	if err != nil {
		return fmt.Errorf("failed to provision topic %s: %w", r.Topic.Name, err)
	}

	dispatcher, err := r.NewDispatcher(ctx)
	if err != nil {
		return fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	partitions := result.PartitionCount
	if partitions < 1 {
		partitions = r.Topic.PartitionCount
	}
	target := Target{
		Topic:          r.Topic.Name,
		PartitionCount: partitions,
		Partitioner:    r.Partitioner,
	}

	slog.Info("Starting zone schedulers",
		slog.String("topic", target.Topic),
		slog.Int("partitions", partitions),
		slog.Int("zones", r.Generator.Zones),
		slog.Int("serversPerZone", r.Generator.ServersPerZone),
		slog.Duration("interval", r.Generator.Interval))

	g, gctx := errgroup.WithContext(ctx)
	for _, stream := range NewStreams(r.Generator) {
		scheduler := NewZoneScheduler(stream, r.Generator.Interval, target, dispatcher)
		g.Go(func() error {
			activeZonesGauge.Add(gctx, 1)
			defer activeZonesGauge.Add(context.Background(), -1)
			return scheduler.Run(gctx)
		})
	}
	runErr := g.Wait()

	slog.Info("Zone schedulers stopped; flushing producer")
	if err := dispatcher.Close(); err != nil {
		if runErr != nil {
			return runErr
		}
		return fmt.Errorf("failed to flush Kafka producer: %w", err)
	}
	return runErr
}
