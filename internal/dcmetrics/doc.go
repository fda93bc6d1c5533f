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

// Package dcmetrics generates synthetic data center server metrics.
//
// Each zone owns one Stream. A Stream cycles through the zone's server slots
// in order and renders one JSON reading per call. Host identifiers have the
// form "zone-<letter>-server-<slot>" and are unique across the whole run.
// Gauge values follow bounded random walks per server, so they drift between
// readings but always stay within fixed ranges.
package dcmetrics
