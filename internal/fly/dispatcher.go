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
	"slices"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/segmentio/kafka-go"
)

// ErrDispatcherClosed is returned by Submit after Close has been called.
var ErrDispatcherClosed = errors.New("dispatcher is closed")

// Dispatcher hands messages to Kafka without waiting for acknowledgement.
// Implementations are safe for concurrent use.
type Dispatcher interface {
	// Submit queues message for the given topic partition. A nil error means
	// the message was accepted for delivery, not that the broker stored it.
	Submit(ctx context.Context, topic string, partition int, message Message) error

	// Close flushes queued messages and releases connections.
	Close() error
}

// ProducerConfig contains configuration for the Kafka writers
type ProducerConfig struct {
	Brokers      []string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks kafka.RequiredAcks
	Compression  kafka.Compression
	Transport    kafka.RoundTripper
}

type writerKey struct {
	topic     string
	partition int
}

// kafkaDispatcher keeps one async writer per topic partition so each write
// lands on the partition chosen by the caller.
type kafkaDispatcher struct {
	config    ProducerConfig
	writers   map[writerKey]*kafka.Writer
	writersMu sync.RWMutex
	closed    bool
}

var _ Dispatcher = (*kafkaDispatcher)(nil)

// manualBalancer implements kafka.Balancer to send to a specific partition
type manualBalancer struct {
	partition int
}

func (b *manualBalancer) Balance(msg kafka.Message, partitions ...int) int {
	if slices.Contains(partitions, b.partition) {
		return b.partition
	}
	// The partition doesn't exist (yet); fall back to the first available.
	if len(partitions) > 0 {
		return partitions[0]
	}
	return 0
}

// NewDispatcher creates a dispatcher. Writers are created on first use.
func NewDispatcher(config ProducerConfig) Dispatcher {
	return &kafkaDispatcher{
		config:  config,
		writers: make(map[writerKey]*kafka.Writer),
	}
}

func (d *kafkaDispatcher) getWriter(topic string, partition int) (*kafka.Writer, error) {
	key := writerKey{topic: topic, partition: partition}

	d.writersMu.RLock()
	w, ok := d.writers[key]
	closed := d.closed
	d.writersMu.RUnlock()
	if closed {
		return nil, ErrDispatcherClosed
	}
	if ok {
		return w, nil
	}

	d.writersMu.Lock()
	defer d.writersMu.Unlock()

	if d.closed {
		return nil, ErrDispatcherClosed
	}
	// Double-check after acquiring write lock
	if w, ok := d.writers[key]; ok {
		return w, nil
	}

	w = &kafka.Writer{
		Addr:         kafka.TCP(d.config.Brokers...),
		Topic:        topic,
		Balancer:     &manualBalancer{partition: partition},
		BatchSize:    d.config.BatchSize,
		BatchTimeout: d.config.BatchTimeout,
		RequiredAcks: d.config.RequiredAcks,
		Compression:  d.config.Compression,
		Transport:    d.config.Transport,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			recordPendingDelta(context.Background(), topic, -int64(len(messages)))
			recordSentMetrics(context.Background(), topic, partition, messages, err)
			if err != nil {
				slog.Warn("Failed to deliver Kafka messages",
					slog.String("topic", topic),
					slog.Int("partition", partition),
					slog.Int("count", len(messages)),
					slog.Any("error", err))
			}
		},
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...any) {
			slog.Debug("kafka writer: "+fmt.Sprintf(msg, args...),
				slog.String("topic", topic),
				slog.Int("partition", partition))
		}),
	}
	d.writers[key] = w
	return w, nil
}

func (d *kafkaDispatcher) Submit(ctx context.Context, topic string, partition int, message Message) error {
	if partition < 0 {
		return fmt.Errorf("invalid partition %d for topic %s", partition, topic)
	}

	w, err := d.getWriter(topic, partition)
	if err != nil {
		return err
	}

	km := message.ToKafkaMessage()
	recordPendingDelta(ctx, topic, 1)
	if err := w.WriteMessages(ctx, km); err != nil {
		recordPendingDelta(ctx, topic, -1)
		recordSentMetrics(ctx, topic, partition, []kafka.Message{km}, err)
		return fmt.Errorf("failed to queue message for %s/%d: %w", topic, partition, err)
	}
	return nil
}

// Close flushes every writer. Messages still buffered are sent before the
// writers shut down.
func (d *kafkaDispatcher) Close() error {
	d.writersMu.Lock()
	defer d.writersMu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	var result *multierror.Error
	for key, w := range d.writers {
		if err := w.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to close writer for %s/%d: %w", key.topic, key.partition, err))
		}
	}
	d.writers = make(map[writerKey]*kafka.Writer)
	return result.ErrorOrNil()
}
