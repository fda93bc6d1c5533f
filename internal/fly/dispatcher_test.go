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
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testProducerConfig() ProducerConfig {
	return ProducerConfig{
		Brokers:      []string{"localhost:9092"},
		BatchSize:    10,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
}

func TestManualBalancer(t *testing.T) {
	tests := []struct {
		name       string
		partition  int
		partitions []int
		expected   int
	}{
		{name: "known partition", partition: 2, partitions: []int{0, 1, 2}, expected: 2},
		{name: "first partition", partition: 0, partitions: []int{0, 1, 2}, expected: 0},
		{name: "unknown partition falls back", partition: 5, partitions: []int{3, 4}, expected: 3},
		{name: "no partitions", partition: 1, partitions: nil, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &manualBalancer{partition: tt.partition}
			assert.Equal(t, tt.expected, b.Balance(kafka.Message{}, tt.partitions...))
		})
	}
}

func TestDispatcher_WriterPerPartition(t *testing.T) {
	d := NewDispatcher(testProducerConfig()).(*kafkaDispatcher)
	defer func() { _ = d.Close() }()

	w1, err := d.getWriter("dc_metrics", 1)
	require.NoError(t, err)
	w1again, err := d.getWriter("dc_metrics", 1)
	require.NoError(t, err)
	w2, err := d.getWriter("dc_metrics", 2)
	require.NoError(t, err)
	other, err := d.getWriter("other", 1)
	require.NoError(t, err)

	assert.Same(t, w1, w1again)
	assert.NotSame(t, w1, w2)
	assert.NotSame(t, w1, other)
	assert.True(t, w1.Async)
	assert.Equal(t, "dc_metrics", w1.Topic)
	assert.Equal(t, 1, w1.Balancer.(*manualBalancer).partition)
	assert.Equal(t, 2, w2.Balancer.(*manualBalancer).partition)
	assert.Len(t, d.writers, 3)
}

func TestDispatcher_ConcurrentWriterCreation(t *testing.T) {
	d := NewDispatcher(testProducerConfig()).(*kafkaDispatcher)
	defer func() { _ = d.Close() }()

	var wg sync.WaitGroup
	writers := make([]*kafka.Writer, 16)
	for i := range writers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w, err := d.getWriter("dc_metrics", 0)
			assert.NoError(t, err)
			writers[i] = w
		}(i)
	}
	wg.Wait()

	for _, w := range writers[1:] {
		assert.Same(t, writers[0], w)
	}
}

func TestDispatcher_RejectsNegativePartition(t *testing.T) {
	d := NewDispatcher(testProducerConfig())
	defer func() { _ = d.Close() }()

	err := d.Submit(context.Background(), "dc_metrics", -1, Message{Key: []byte("k")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid partition -1")
}

func TestDispatcher_SubmitAfterClose(t *testing.T) {
	d := NewDispatcher(testProducerConfig())
	require.NoError(t, d.Close())
	require.NoError(t, d.Close(), "closing twice is a no-op")

	err := d.Submit(context.Background(), "dc_metrics", 0, Message{Key: []byte("k")})
	assert.ErrorIs(t, err, ErrDispatcherClosed)
}

func TestDispatcher_CloseIdleWriters(t *testing.T) {
	d := NewDispatcher(testProducerConfig()).(*kafkaDispatcher)
	_, err := d.getWriter("dc_metrics", 0)
	require.NoError(t, err)
	_, err = d.getWriter("dc_metrics", 1)
	require.NoError(t, err)

	require.NoError(t, d.Close())
	assert.Empty(t, d.writers)
	_, err = d.getWriter("dc_metrics", 0)
	assert.ErrorIs(t, err, ErrDispatcherClosed)
}
