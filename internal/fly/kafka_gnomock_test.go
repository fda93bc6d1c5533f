//go:build kafkatest

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
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/orlangure/gnomock"
	kafkapreset "github.com/orlangure/gnomock/preset/kafka"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sharedBroker string

// cleanupExistingKafkaContainers removes any hanging Kafka containers
func cleanupExistingKafkaContainers() {
	cmd := exec.Command("docker", "ps", "-a", "--filter", "ancestor=lensesio/fast-data-dev:3.6.1-L0", "--format", "{{.ID}}")
	output, err := cmd.Output()
	if err != nil {
		return
	}

	containerIDs := strings.Fields(strings.TrimSpace(string(output)))
	if len(containerIDs) > 0 {
		fmt.Printf("Cleaning up %d existing Kafka containers...\n", len(containerIDs))
		_ = exec.Command("docker", append([]string{"stop"}, containerIDs...)...).Run()
		_ = exec.Command("docker", append([]string{"rm"}, containerIDs...)...).Run()
	}
}

// TestMain starts one Kafka container shared by every test in the package.
func TestMain(m *testing.M) {
	cleanupExistingKafkaContainers()

	container, err := gnomock.Start(kafkapreset.Preset())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start shared Kafka container: %v\n", err)
		os.Exit(1)
	}

	sharedBroker = container.Address(kafkapreset.BrokerPort)
	fmt.Printf("Shared Kafka container started at: %s\n", sharedBroker)

	code := 1
	if waitForKafkaReady(sharedBroker, 30*time.Second) {
		code = m.Run()
	} else {
		fmt.Fprintf(os.Stderr, "Kafka container did not become ready within timeout\n")
	}

	if err := gnomock.Stop(container); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to stop shared Kafka container: %v\n", err)
	}
	os.Exit(code)
}

// waitForKafkaReady waits for the Kafka broker to be fully ready
func waitForKafkaReady(broker string, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := kafka.Dial("tcp", broker)
		if err == nil {
			_, err = conn.ApiVersions()
			_ = conn.Close()
			if err == nil {
				return true
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	return false
}

func testFactory() *Factory {
	cfg := DefaultConfig()
	cfg.Brokers = []string{sharedBroker}
	cfg.ProducerBatchTimeout = 10 * time.Millisecond
	return NewFactory(cfg)
}

func uniqueTopic(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

func TestKafka_ProvisionIsIdempotent(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	provisioner, err := testFactory().CreateTopicProvisioner()
	require.NoError(t, err)

	spec := TopicSpec{Name: uniqueTopic("dcgen-provision"), PartitionCount: 3, ReplicationFactor: 1}

	first, err := provisioner.Provision(ctx, spec)
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, 3, first.PartitionCount)

	second, err := provisioner.Provision(ctx, spec)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, 3, second.PartitionCount)
}

func TestKafka_ProvisionKeepsExistingShape(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	provisioner, err := testFactory().CreateTopicProvisioner()
	require.NoError(t, err)

	name := uniqueTopic("dcgen-shape")
	_, err = provisioner.Provision(ctx, TopicSpec{Name: name, PartitionCount: 2, ReplicationFactor: 1})
	require.NoError(t, err)

	result, err := provisioner.Provision(ctx, TopicSpec{Name: name, PartitionCount: 5, ReplicationFactor: 1})
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Equal(t, 2, result.PartitionCount)
}

func TestKafka_TopicSyncerProvision(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	syncer := testFactory().CreateTopicSyncer()
	spec := TopicSpec{Name: uniqueTopic("dcgen-sync"), PartitionCount: 2, ReplicationFactor: 1}

	result, err := syncer.Provision(ctx, spec)
	require.NoError(t, err)
	assert.Equal(t, 2, result.PartitionCount)

	result, err = syncer.Provision(ctx, spec)
	require.NoError(t, err)
	assert.Equal(t, 2, result.PartitionCount)
}

func TestKafka_DispatcherWritesToRequestedPartition(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	factory := testFactory()
	provisioner, err := factory.CreateTopicProvisioner()
	require.NoError(t, err)

	topic := uniqueTopic("dcgen-dispatch")
	_, err = provisioner.Provision(ctx, TopicSpec{Name: topic, PartitionCount: 3, ReplicationFactor: 1})
	require.NoError(t, err)

	dispatcher, err := factory.CreateDispatcher(ctx)
	require.NoError(t, err)

	const perPartition = 5
	for partition := 0; partition < 3; partition++ {
		for i := 0; i < perPartition; i++ {
			msg := Message{
				Key:     []byte(fmt.Sprintf("zone-A-server-%d", partition)),
				Value:   []byte(fmt.Sprintf(`{"n":%d}`, i)),
				Headers: map[string]string{"zone": "zone-A"},
			}
			require.NoError(t, dispatcher.Submit(ctx, topic, partition, msg))
		}
	}
	require.NoError(t, dispatcher.Close())

	for partition := 0; partition < 3; partition++ {
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:   []string{sharedBroker},
			Topic:     topic,
			Partition: partition,
			MaxWait:   100 * time.Millisecond,
		})

		for i := 0; i < perPartition; i++ {
			m, err := reader.ReadMessage(ctx)
			require.NoError(t, err)
			assert.Equal(t, partition, m.Partition)
			assert.Equal(t, fmt.Sprintf("zone-A-server-%d", partition), string(m.Key))
			require.Len(t, m.Headers, 1)
			assert.Equal(t, "zone", m.Headers[0].Key)
		}
		require.NoError(t, reader.Close())
	}
}
