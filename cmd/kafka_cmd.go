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

package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/dcgen/config"
	"github.com/cardinalhq/dcgen/internal/fleet"
	"github.com/cardinalhq/dcgen/internal/fly"
)

type kafkaFlags struct {
	gen               generatorFlags
	brokers           string
	topic             string
	partitions        int
	replicationFactor int
	provisioner       string
	compression       string
}

func newKafkaCmd() *cobra.Command {
	var flags kafkaFlags

	c := &cobra.Command{
		Use:   "kafka",
		Short: "Send messages to Kafka",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			run, err := flags.kafkaRun(cfg, c.Flags().Changed("compression"))
			if err != nil {
				return err
			}

			ctx, cancel := runContext(c.Context(), flags.gen.duration)
			defer cancel()

			return withTelemetry(ctx, "dcgen-kafka", func() error {
				return run.Run(ctx)
			})
		},
	}

	flags.gen.register(c)
	c.Flags().StringVar(&flags.brokers, "brokers", "", "Kafka bootstrap brokers as HOST1:PORT,HOST2:PORT,...")
	c.Flags().StringVar(&flags.topic, "topic", config.DefaultTopic, "Kafka topic")
	c.Flags().IntVarP(&flags.partitions, "partitions", "p", config.DefaultPartitions, "Number of topic partitions")
	c.Flags().IntVarP(&flags.replicationFactor, "replicas", "r", config.DefaultReplicationFactor, "Number of topic replicas")
	c.Flags().StringVar(&flags.provisioner, "provisioner", config.DefaultProvisioner, "Topic provisioning strategy: create or sync")
	c.Flags().StringVar(&flags.compression, "compression", "", "Producer compression: none, gzip, snappy, lz4 or zstd (default from config)")
	_ = c.MarkFlagRequired("brokers")
	return c
}

// kafkaRun validates every flag and builds the run. Nothing here touches
// the network.
func (f *kafkaFlags) kafkaRun(cfg *config.Config, compressionSet bool) (fleet.KafkaRun, error) {
	brokers, err := config.ParseBrokers(f.brokers)
	if err != nil {
		return fleet.KafkaRun{}, err
	}
	params, err := f.gen.params()
	if err != nil {
		return fleet.KafkaRun{}, err
	}

	spec := fly.TopicSpec{
		Name:              f.topic,
		PartitionCount:    f.partitions,
		ReplicationFactor: f.replicationFactor,
	}
	if err := spec.Validate(); err != nil {
		return fleet.KafkaRun{}, err
	}

	kafkaCfg := cfg.Kafka
	kafkaCfg.Brokers = config.BrokerAddresses(brokers)
	if compressionSet {
		kafkaCfg.ProducerCompression = f.compression
	}
	if err := kafkaCfg.Validate(); err != nil {
		return fleet.KafkaRun{}, err
	}
	factory := fly.NewFactory(&kafkaCfg)

	var provisioner fleet.Provisioner
	switch f.provisioner {
	case config.ProvisionerCreate:
		p, err := factory.CreateTopicProvisioner()
		if err != nil {
			return fleet.KafkaRun{}, err
		}
		provisioner = p
	case config.ProvisionerSync:
		provisioner = factory.CreateTopicSyncer()
	default:
		return fleet.KafkaRun{}, fmt.Errorf("unknown provisioner %q, expected %q or %q",
			f.provisioner, config.ProvisionerCreate, config.ProvisionerSync)
	}

	return fleet.KafkaRun{
		Generator:   params,
		Topic:       spec,
		Provisioner: provisioner,
		NewDispatcher: func(ctx context.Context) (fly.Dispatcher, error) {
			d, err := factory.CreateDispatcher(ctx)
			if err != nil {
				return nil, err
			}
			slog.Info("Producer connected to kafka", slog.Any("brokers", kafkaCfg.Brokers))
			return d, nil
		},
	}, nil
}
