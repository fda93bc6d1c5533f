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

package partitioner

import (
	"github.com/cespare/xxhash/v2"

	"github.com/cardinalhq/dcgen/internal/fly"
)

// HashVersion names the hash used by Assign. Changing the hash function
// moves hosts to different partitions, so it must come with a new version.
const HashVersion = "xxhash64-v1"

// Partitioner picks the partition a message is written to.
type Partitioner interface {
	GetPartition(message fly.Message, partitionCount int) int
}

// Assign maps key to a partition in [0, partitionCount) using xxhash64 with
// a zero seed. The result depends only on its arguments, so a host keeps its
// partition across calls and across process restarts. A partitionCount below
// 1 yields 0.
func Assign(key string, partitionCount int) int {
	if partitionCount <= 1 {
		return 0
	}
	return int(xxhash.Sum64String(key) % uint64(partitionCount))
}

// HostKeyPartitioner routes every message with the same key to the same
// partition, which keeps each host's readings in order at the broker.
type HostKeyPartitioner struct{}

var _ Partitioner = HostKeyPartitioner{}

// GetPartition returns the partition for the message key.
func (HostKeyPartitioner) GetPartition(message fly.Message, partitionCount int) int {
	return Assign(string(message.Key), partitionCount)
}
