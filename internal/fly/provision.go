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

package fly

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/cardinalhq/dcgen/internal/fly")

// TopicSpec describes the topic the generator writes to.
type TopicSpec struct {
	Name              string
	PartitionCount    int
	ReplicationFactor int
	Config            map[string]string
}

// Validate checks the spec before anything is sent to a broker.
func (s TopicSpec) Validate() error {
	if s.Name == "" {
		return errors.New("topic name must not be empty")
	}
	if s.PartitionCount < 1 {
		return fmt.Errorf("topic %s: partition count must be at least 1, got %d", s.Name, s.PartitionCount)
	}
	if s.ReplicationFactor < 1 {
		return fmt.Errorf("topic %s: replication factor must be at least 1, got %d", s.Name, s.ReplicationFactor)
	}
	return nil
}

// ProvisionResult reports what provisioning found or did.
type ProvisionResult struct {
	// Created is true when this call created the topic.
	Created bool
	// PartitionCount is the number of partitions the topic has now. It can
	// differ from the requested count when the topic already existed.
	PartitionCount int
}

// TopicAdmin is the subset of *kafka.Client used for provisioning.
type TopicAdmin interface {
	CreateTopics(ctx context.Context, req *kafka.CreateTopicsRequest) (*kafka.CreateTopicsResponse, error)
	Metadata(ctx context.Context, req *kafka.MetadataRequest) (*kafka.MetadataResponse, error)
}

var _ TopicAdmin = (*kafka.Client)(nil)

// TopicProvisioner makes sure a topic exists before anything is produced.
// An existing topic is accepted as is.
type TopicProvisioner struct {
	admin TopicAdmin
}

// NewTopicProvisioner creates a provisioner using the given admin client.
func NewTopicProvisioner(admin TopicAdmin) *TopicProvisioner {
	return &TopicProvisioner{admin: admin}
}

// Provision creates the topic described by spec, or confirms it already
// exists. Any other broker answer is an error.
func (p *TopicProvisioner) Provision(ctx context.Context, spec TopicSpec) (result ProvisionResult, err error) {
	ctx, span := tracer.Start(ctx, "fly.provision_topic", trace.WithAttributes(
		attribute.String("topic", spec.Name),
		attribute.Int("partitions", spec.PartitionCount),
		attribute.Int("replication_factor", spec.ReplicationFactor),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if err := spec.Validate(); err != nil {
		return ProvisionResult{}, err
	}

	resp, err := p.admin.CreateTopics(ctx, &kafka.CreateTopicsRequest{
		Topics: []kafka.TopicConfig{topicConfig(spec)},
	})
	if err != nil {
		recordProvisioned(ctx, spec.Name, "failed")
		return ProvisionResult{}, fmt.Errorf("create topics request for %s failed: %w", spec.Name, err)
	}

	topicErr, ok := resp.Errors[spec.Name]
	switch {
	case !ok:
		recordProvisioned(ctx, spec.Name, "failed")
		return ProvisionResult{}, fmt.Errorf("broker returned no result for topic %s", spec.Name)

	case topicErr == nil:
		slog.Info("Created Kafka topic",
			slog.String("topic", spec.Name),
			slog.Int("partitions", spec.PartitionCount),
			slog.Int("replicationFactor", spec.ReplicationFactor))
		recordProvisioned(ctx, spec.Name, "created")
		return ProvisionResult{Created: true, PartitionCount: spec.PartitionCount}, nil

	case errors.Is(topicErr, kafka.TopicAlreadyExists):
		count, err := p.partitionCount(ctx, spec.Name)
		if err != nil {
			recordProvisioned(ctx, spec.Name, "failed")
			return ProvisionResult{}, err
		}
		if count != spec.PartitionCount {
			slog.Warn("Kafka topic already exists with a different partition count; using the existing count",
				slog.String("topic", spec.Name),
				slog.Int("requestedPartitions", spec.PartitionCount),
				slog.Int("existingPartitions", count))
		} else {
			slog.Info("Kafka topic already exists", slog.String("topic", spec.Name), slog.Int("partitions", count))
		}
		recordProvisioned(ctx, spec.Name, "exists")
		return ProvisionResult{PartitionCount: count}, nil

	default:
		recordProvisioned(ctx, spec.Name, "failed")
		return ProvisionResult{}, fmt.Errorf("broker rejected topic %s: %w", spec.Name, topicErr)
	}
}

func (p *TopicProvisioner) partitionCount(ctx context.Context, topic string) (int, error) {
	resp, err := p.admin.Metadata(ctx, &kafka.MetadataRequest{Topics: []string{topic}})
	if err != nil {
		return 0, fmt.Errorf("failed to read metadata for topic %s: %w", topic, err)
	}
	for _, t := range resp.Topics {
		if t.Name != topic {
			continue
		}
		if t.Error != nil {
			return 0, fmt.Errorf("failed to describe topic %s: %w", topic, t.Error)
		}
		if len(t.Partitions) == 0 {
			return 0, fmt.Errorf("topic %s has no partitions", topic)
		}
		return len(t.Partitions), nil
	}
	return 0, fmt.Errorf("topic %s not found in metadata", topic)
}

func topicConfig(spec TopicSpec) kafka.TopicConfig {
	names := make([]string, 0, len(spec.Config))
	for k := range spec.Config {
		names = append(names, k)
	}
	sort.Strings(names)

	entries := make([]kafka.ConfigEntry, 0, len(names))
	for _, k := range names {
		entries = append(entries, kafka.ConfigEntry{ConfigName: k, ConfigValue: spec.Config[k]})
	}

	return kafka.TopicConfig{
		Topic:             spec.Name,
		NumPartitions:     spec.PartitionCount,
		ReplicationFactor: spec.ReplicationFactor,
		ConfigEntries:     entries,
	}
}
