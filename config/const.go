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

import "time"

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "DCGEN"

// Generator and topic defaults, shared by both subcommands.
const (
	DefaultInterval          = 500 * time.Millisecond
	DefaultZones             = 4
	DefaultServersPerZone    = 80
	DefaultTopic             = "dc_metrics"
	DefaultPartitions        = 3
	DefaultReplicationFactor = 3
	DefaultProvisioner       = ProvisionerCreate
)

// Provisioning strategies selectable with --provisioner.
const (
	ProvisionerCreate = "create"
	ProvisionerSync   = "sync"
)
