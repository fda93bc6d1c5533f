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

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

var (
	messagesSentCounter  otelmetric.Int64Counter
	messagesErrorCounter otelmetric.Int64Counter
	bytesSentCounter     otelmetric.Int64Counter
	pendingMessagesGauge otelmetric.Int64UpDownCounter
	topicsProvisioned    otelmetric.Int64Counter
)

func init() {
	meter := otel.Meter("github.com/cardinalhq/dcgen/internal/fly")

	var err error
	messagesSentCounter, err = meter.Int64Counter(
		"dcgen.fly.dispatcher.messages.sent",
		otelmetric.WithDescription("Number of Kafka messages acknowledged by the broker"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create messages.sent counter: %w", err))
	}

	messagesErrorCounter, err = meter.Int64Counter(
		"dcgen.fly.dispatcher.messages.errors",
		otelmetric.WithDescription("Number of Kafka messages that failed delivery"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create messages.errors counter: %w", err))
	}

	bytesSentCounter, err = meter.Int64Counter(
		"dcgen.fly.dispatcher.bytes.sent",
		otelmetric.WithUnit("By"),
		otelmetric.WithDescription("Total message value bytes acknowledged by the broker"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create bytes.sent counter: %w", err))
	}

	pendingMessagesGauge, err = meter.Int64UpDownCounter(
		"dcgen.fly.dispatcher.messages.pending",
		otelmetric.WithDescription("Number of Kafka messages queued but not yet acknowledged"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create messages.pending counter: %w", err))
	}

	topicsProvisioned, err = meter.Int64Counter(
		"dcgen.fly.topics.provisioned",
		otelmetric.WithDescription("Topic provisioning outcomes"),
	)
	if err != nil {
		panic(fmt.Errorf("failed to create topics.provisioned counter: %w", err))
	}
}

// recordSentMetrics updates counters for a batch of messages.
func recordSentMetrics(ctx context.Context, topic string, partition int, msgs []kafka.Message, err error) {
	attrs := otelmetric.WithAttributes(
		attribute.String("topic", topic),
		attribute.Int("partition", partition),
	)
	if err != nil {
		messagesErrorCounter.Add(ctx, int64(len(msgs)), attrs)
		return
	}
	messagesSentCounter.Add(ctx, int64(len(msgs)), attrs)
	var totalBytes int64
	for _, m := range msgs {
		totalBytes += int64(len(m.Value))
	}
	bytesSentCounter.Add(ctx, totalBytes, attrs)
}

// recordPendingDelta updates the pending messages gauge.
func recordPendingDelta(ctx context.Context, topic string, delta int64) {
	pendingMessagesGauge.Add(ctx, delta, otelmetric.WithAttributes(attribute.String("topic", topic)))
}

func recordProvisioned(ctx context.Context, topic, outcome string) {
	topicsProvisioned.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("topic", topic),
		attribute.String("outcome", outcome),
	))
}
