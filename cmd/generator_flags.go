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

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cardinalhq/dcgen/config"
	"github.com/cardinalhq/dcgen/internal/fleet"
)

// generatorFlags are shared by every subcommand that generates records.
type generatorFlags struct {
	timeoutMs      int
	zones          int
	serversPerZone int
	duration       time.Duration
}

func (g *generatorFlags) register(c *cobra.Command) {
	c.Flags().IntVarP(&g.timeoutMs, "timeout", "t", int(config.DefaultInterval/time.Millisecond), "Timeout between messages of a zone in milliseconds")
	c.Flags().IntVarP(&g.zones, "zones", "z", config.DefaultZones, "Number of zones in data center")
	c.Flags().IntVarP(&g.serversPerZone, "servers-per-zone", "s", config.DefaultServersPerZone, "Number of servers per zone")
	c.Flags().DurationVar(&g.duration, "duration", 0, "Stop after this long; 0 runs until interrupted")
}

func (g *generatorFlags) params() (fleet.GeneratorParams, error) {
	p := fleet.GeneratorParams{
		Interval:       time.Duration(g.timeoutMs) * time.Millisecond,
		Zones:          g.zones,
		ServersPerZone: g.serversPerZone,
	}
	if err := p.Validate(); err != nil {
		return fleet.GeneratorParams{}, fmt.Errorf("%w: %w", config.ErrInvalidGenerator, err)
	}
	if g.duration < 0 {
		return fleet.GeneratorParams{}, fmt.Errorf("%w: duration must not be negative, got %s", config.ErrInvalidGenerator, g.duration)
	}
	return p, nil
}
