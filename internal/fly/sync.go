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
	"fmt"
	"log/slog"
	"time"

	"github.com/cardinalhq/kafka-sync/kafkasync"
)

// TopicSyncer handles Kafka topic synchronization using kafka-sync. Unlike
// TopicProvisioner it also grows the partition count of an existing topic.
type TopicSyncer struct {
	factory *Factory
}

// NewTopicSyncer creates a new topic syncer
func NewTopicSyncer(factory *Factory) *TopicSyncer {
	return &TopicSyncer{
		factory: factory,
	}
}

// Provision syncs the single topic described by spec in fix mode and reports
// the partition count the topic ends up with.
func (ts *TopicSyncer) Provision(ctx context.Context, spec TopicSpec) (ProvisionResult, error) {
	if err := spec.Validate(); err != nil {
		return ProvisionResult{}, err
	}

	if err := ts.SyncTopics(ctx, topicsConfig(spec), true); err != nil {
		recordProvisioned(ctx, spec.Name, "failed")
		return ProvisionResult{}, err
	}

	client, err := ts.factory.CreateKafkaClient()
	if err != nil {
		return ProvisionResult{}, fmt.Errorf("failed to create Kafka client: %w", err)
	}
	count, err := NewTopicProvisioner(client).partitionCount(ctx, spec.Name)
	if err != nil {
		recordProvisioned(ctx, spec.Name, "failed")
		return ProvisionResult{}, err
	}
	recordProvisioned(ctx, spec.Name, "synced")
	return ProvisionResult{PartitionCount: count}, nil
}

// SyncTopics synchronizes Kafka topics according to the provided configuration
func (ts *TopicSyncer) SyncTopics(ctx context.Context, cfg *kafkasync.Config, fix bool) error {
	connConfig, err := ts.createConnectionConfig()
	if err != nil {
		return fmt.Errorf("failed to create connection config: %w", err)
	}

	syncer, err := kafkasync.NewSyncer(connConfig, cfg)
	if err != nil {
		return fmt.Errorf("failed to create syncer: %w", err)
	}

	mode := kafkasync.SyncModeInfo
	modeStr := "info"
	if fix {
		mode = kafkasync.SyncModeFix
		modeStr = "fix"
	}

	slog.Info("Starting Kafka topic synchronization",
		slog.String("mode", modeStr),
		slog.Int("topic_count", len(cfg.Topics)))

	if err := syncer.Sync(ctx, mode); err != nil {
		return fmt.Errorf("failed to sync topics: %w", err)
	}

	slog.Info("Kafka topic synchronization completed")
	return nil
}

// createConnectionConfig creates a kafkasync ConnectionConfig from our fly Config
func (ts *TopicSyncer) createConnectionConfig() (kafkasync.ConnectionConfig, error) {
	config := ts.factory.GetConfig()
	connConfig := kafkasync.ConnectionConfig{
		BootstrapServers: config.Brokers,
		TLS:              ts.factory.tlsConfig(),
	}

	if config.SASLEnabled {
		mechanism, err := ts.factory.createSASLMechanism()
		if err != nil {
			return connConfig, fmt.Errorf("failed to create SASL mechanism: %w", err)
		}
		connConfig.SASLMechanism = mechanism
	}

	return connConfig, nil
}

// topicsConfig converts a TopicSpec into a single-topic kafkasync config.
func topicsConfig(spec TopicSpec) *kafkasync.Config {
	config := make(map[string]string, len(spec.Config))
	for k, v := range spec.Config {
		config[k] = v
	}

	return &kafkasync.Config{
		Defaults: kafkasync.Defaults{
			PartitionCount:    spec.PartitionCount,
			ReplicationFactor: spec.ReplicationFactor,
			TopicConfig:       config,
		},
		Topics: []kafkasync.Topic{
			{
				Name:              spec.Name,
				PartitionCount:    spec.PartitionCount,
				ReplicationFactor: spec.ReplicationFactor,
			},
		},
		OperationTimeout: 5 * time.Minute,
	}
}
