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
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

var (
	ErrInvalidBroker    = errors.New("Kafka broker address must be in format: <HOST:PORT>")
	ErrNoBrokers        = errors.New("Kafka brokers list must be in format: <HOST1:PORT,HOST2:PORT,...>")
	ErrInvalidGenerator = errors.New("invalid generator parameters")
)

// Broker is a single bootstrap address.
type Broker struct {
	Host string
	Port uint16
}

func (b Broker) String() string {
	return net.JoinHostPort(b.Host, strconv.Itoa(int(b.Port)))
}

// ParseBrokers parses a comma separated HOST:PORT list. Surrounding
// whitespace is ignored; any malformed entry rejects the whole list.
func ParseBrokers(s string) ([]Broker, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrNoBrokers
	}

	var brokers []Broker
	for _, entry := range strings.Split(s, ",") {
		entry = strings.TrimSpace(entry)
		host, portStr, ok := strings.Cut(entry, ":")
		if !ok || host == "" {
			return nil, fmt.Errorf("%w: got %q", ErrInvalidBroker, entry)
		}
		port, err := strconv.ParseUint(portStr, 10, 16)
		if err != nil || port == 0 {
			return nil, fmt.Errorf("%w: Invalid port number %q", ErrInvalidBroker, portStr)
		}
		brokers = append(brokers, Broker{Host: host, Port: uint16(port)})
	}
	if len(brokers) == 0 {
		return nil, ErrNoBrokers
	}
	return brokers, nil
}

// BrokerAddresses renders brokers the way kafka-go expects them.
func BrokerAddresses(brokers []Broker) []string {
	addrs := make([]string, len(brokers))
	for i, b := range brokers {
		addrs[i] = b.String()
	}
	return addrs
}
