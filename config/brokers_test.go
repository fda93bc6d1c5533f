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

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBrokers(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []Broker
		wantErr error
	}{
		{
			name:  "two brokers",
			input: "host1:9092,host2:9093",
			want:  []Broker{{Host: "host1", Port: 9092}, {Host: "host2", Port: 9093}},
		},
		{
			name:  "whitespace trimmed",
			input: "  kafka:9092 , other:19092 ",
			want:  []Broker{{Host: "kafka", Port: 9092}, {Host: "other", Port: 19092}},
		},
		{name: "missing port", input: "host1", wantErr: ErrInvalidBroker},
		{name: "empty", input: "", wantErr: ErrNoBrokers},
		{name: "blank", input: "   ", wantErr: ErrNoBrokers},
		{name: "non numeric port", input: "host1:abc", wantErr: ErrInvalidBroker},
		{name: "port out of range", input: "host1:70000", wantErr: ErrInvalidBroker},
		{name: "port zero", input: "host1:0", wantErr: ErrInvalidBroker},
		{name: "empty host", input: ":9092", wantErr: ErrInvalidBroker},
		{name: "one bad entry rejects all", input: "host1:9092,host2", wantErr: ErrInvalidBroker},
		{name: "trailing comma", input: "host1:9092,", wantErr: ErrInvalidBroker},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseBrokers(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBrokersPortMessage(t *testing.T) {
	_, err := ParseBrokers("host1:abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid port number")
}

func TestBrokerAddresses(t *testing.T) {
	brokers, err := ParseBrokers("host1:9092,host2:9093")
	require.NoError(t, err)
	assert.Equal(t, []string{"host1:9092", "host2:9093"}, BrokerAddresses(brokers))
	assert.Equal(t, "host1:9092", brokers[0].String())
}
