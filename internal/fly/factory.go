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
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
)

// Factory creates Kafka clients with consistent configuration
type Factory struct {
	config *Config
}

// NewFactory creates a new factory with the given configuration
func NewFactory(cfg *Config) *Factory {
	return &Factory{
		config: cfg,
	}
}

// GetConfig returns the underlying configuration
func (f *Factory) GetConfig() *Config {
	return f.config
}

// CreateDispatcher verifies that a broker is reachable and returns a
// dispatcher writing to the configured brokers.
func (f *Factory) CreateDispatcher(ctx context.Context) (Dispatcher, error) {
	cfg, err := f.producerConfig()
	if err != nil {
		return nil, err
	}

	dialer, err := f.CreateDialer()
	if err != nil {
		return nil, fmt.Errorf("failed to create dialer: %w", err)
	}
	if err := checkConnectivity(ctx, dialer, f.config.Brokers); err != nil {
		return nil, err
	}

	return NewDispatcher(cfg), nil
}

func (f *Factory) producerConfig() (ProducerConfig, error) {
	compression, err := parseCompression(f.config.ProducerCompression)
	if err != nil {
		return ProducerConfig{}, err
	}
	acks, err := parseRequiredAcks(f.config.ProducerRequiredAcks)
	if err != nil {
		return ProducerConfig{}, err
	}

	transport, err := f.CreateTransport()
	if err != nil {
		return ProducerConfig{}, fmt.Errorf("failed to create transport: %w", err)
	}

	return ProducerConfig{
		Brokers:      f.config.Brokers,
		BatchSize:    f.config.ProducerBatchSize,
		BatchTimeout: f.config.ProducerBatchTimeout,
		RequiredAcks: acks,
		Compression:  compression,
		Transport:    transport,
	}, nil
}

func parseCompression(name string) (kafka.Compression, error) {
	switch strings.ToLower(name) {
	case "", "none", "uncompressed":
		return 0, nil
	case "gzip":
		return kafka.Gzip, nil
	case "snappy":
		return kafka.Snappy, nil
	case "lz4":
		return kafka.Lz4, nil
	case "zstd":
		return kafka.Zstd, nil
	default:
		return 0, fmt.Errorf("unsupported compression: %s", name)
	}
}

func parseRequiredAcks(acks int) (kafka.RequiredAcks, error) {
	switch acks {
	case -1:
		return kafka.RequireAll, nil
	case 0:
		return kafka.RequireNone, nil
	case 1:
		return kafka.RequireOne, nil
	default:
		return 0, fmt.Errorf("unsupported required acks: %d", acks)
	}
}

// checkConnectivity succeeds as soon as one broker accepts a connection.
func checkConnectivity(ctx context.Context, dialer *kafka.Dialer, brokers []string) error {
	if len(brokers) == 0 {
		return fmt.Errorf("no Kafka brokers configured")
	}

	var lastErr error
	for _, broker := range brokers {
		conn, err := dialer.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		_ = conn.Close()
		return nil
	}
	return fmt.Errorf("failed to connect to any Kafka broker %v: %w", brokers, lastErr)
}

// createSASLMechanism creates the appropriate SASL mechanism based on configuration
func (f *Factory) createSASLMechanism() (sasl.Mechanism, error) {
	switch f.config.SASLMechanism {
	case "SCRAM-SHA-256":
		return scram.Mechanism(scram.SHA256, f.config.SASLUsername, f.config.SASLPassword)
	case "SCRAM-SHA-512":
		return scram.Mechanism(scram.SHA512, f.config.SASLUsername, f.config.SASLPassword)
	case "PLAIN":
		return plain.Mechanism{
			Username: f.config.SASLUsername,
			Password: f.config.SASLPassword,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported SASL mechanism: %s", f.config.SASLMechanism)
	}
}

func (f *Factory) tlsConfig() *tls.Config {
	if !f.config.TLSEnabled {
		return nil
	}
	return &tls.Config{
		InsecureSkipVerify: f.config.TLSSkipVerify,
	}
}

// CreateTransport creates a kafka.Transport with SASL and TLS applied
func (f *Factory) CreateTransport() (*kafka.Transport, error) {
	transport := &kafka.Transport{
		DialTimeout: f.connectionTimeout(),
		TLS:         f.tlsConfig(),
	}

	if f.config.SASLEnabled {
		mechanism, err := f.createSASLMechanism()
		if err != nil {
			return nil, fmt.Errorf("failed to create SASL mechanism: %w", err)
		}
		transport.SASL = mechanism
	}

	return transport, nil
}

// CreateKafkaClient creates a kafka.Client for administrative requests
func (f *Factory) CreateKafkaClient() (*kafka.Client, error) {
	transport, err := f.CreateTransport()
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	return &kafka.Client{
		Addr:      kafka.TCP(f.config.Brokers...),
		Timeout:   f.adminTimeout(),
		Transport: transport,
	}, nil
}

// CreateDialer creates an authenticated Kafka dialer
func (f *Factory) CreateDialer() (*kafka.Dialer, error) {
	dialer := &kafka.Dialer{
		Timeout: f.connectionTimeout(),
		TLS:     f.tlsConfig(),
	}

	if f.config.SASLEnabled {
		mechanism, err := f.createSASLMechanism()
		if err != nil {
			return nil, fmt.Errorf("failed to create SASL mechanism: %w", err)
		}
		dialer.SASLMechanism = mechanism
	}

	return dialer, nil
}

// CreateTopicProvisioner creates a provisioner that creates topics through
// the CreateTopics API.
func (f *Factory) CreateTopicProvisioner() (*TopicProvisioner, error) {
	client, err := f.CreateKafkaClient()
	if err != nil {
		return nil, err
	}
	return NewTopicProvisioner(client), nil
}

// CreateTopicSyncer creates a topic syncer for managing Kafka topics
func (f *Factory) CreateTopicSyncer() *TopicSyncer {
	return NewTopicSyncer(f)
}

func (f *Factory) connectionTimeout() time.Duration {
	if f.config.ConnectionTimeout > 0 {
		return f.config.ConnectionTimeout
	}
	return 10 * time.Second
}

func (f *Factory) adminTimeout() time.Duration {
	if f.config.AdminTimeout > 0 {
		return f.config.AdminTimeout
	}
	return 30 * time.Second
}
