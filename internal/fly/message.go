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
	"sort"

	"github.com/segmentio/kafka-go"
)

// Message represents a Kafka message with headers
type Message struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// ToKafkaMessage converts to kafka-go message format. Headers are emitted in
// key order so identical messages encode identically.
func (m *Message) ToKafkaMessage() kafka.Message {
	keys := make([]string, 0, len(m.Headers))
	for k := range m.Headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headers := make([]kafka.Header, 0, len(keys))
	for _, k := range keys {
		headers = append(headers, kafka.Header{
			Key:   k,
			Value: []byte(m.Headers[k]),
		})
	}
	return kafka.Message{
		Key:     m.Key,
		Value:   m.Value,
		Headers: headers,
	}
}
