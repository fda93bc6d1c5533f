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
	"errors"
	"time"
)

// Config holds the Kafka client configuration
type Config struct {
	// Broker configuration
	Brokers []string `mapstructure:"brokers"`

	// SASL authentication
	SASLEnabled   bool   `mapstructure:"sasl_enabled"`
	SASLMechanism string `mapstructure:"sasl_mechanism"` // "SCRAM-SHA-256", "SCRAM-SHA-512" or "PLAIN"
	SASLUsername  string `mapstructure:"sasl_username"`
	SASLPassword  string `mapstructure:"sasl_password"`

	// TLS configuration
	TLSEnabled    bool `mapstructure:"tls_enabled"`
	TLSSkipVerify bool `mapstructure:"tls_skip_verify"`

	// Producer settings
	ProducerBatchSize    int           `mapstructure:"producer_batch_size"`
	ProducerBatchTimeout time.Duration `mapstructure:"producer_batch_timeout"`
	ProducerCompression  string        `mapstructure:"producer_compression"`
	ProducerRequiredAcks int           `mapstructure:"producer_required_acks"` // -1 all, 0 none, 1 leader

	ConnectionTimeout time.Duration `mapstructure:"connection_timeout"`
	AdminTimeout      time.Duration `mapstructure:"admin_timeout"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Brokers: []string{"localhost:9092"},

		SASLEnabled:   false,
		SASLMechanism: "SCRAM-SHA-256",

		TLSEnabled:    false,
		TLSSkipVerify: false,

		ProducerBatchSize:    100,
		ProducerBatchTimeout: 50 * time.Millisecond,
		ProducerCompression:  "snappy",
		ProducerRequiredAcks: 1,

		ConnectionTimeout: 10 * time.Second,
		AdminTimeout:      30 * time.Second,
	}
}

// Validate checks the settings that can be checked without a broker.
func (c *Config) Validate() error {
	if len(c.Brokers) == 0 {
		return errors.New("no Kafka brokers configured")
	}
	if _, err := parseCompression(c.ProducerCompression); err != nil {
		return err
	}
	if _, err := parseRequiredAcks(c.ProducerRequiredAcks); err != nil {
		return err
	}
	if c.SASLEnabled {
		if _, err := NewFactory(c).createSASLMechanism(); err != nil {
			return err
		}
	}
	return nil
}
