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

package dcmetrics

import "strconv"

// MaxZones is the number of distinct zone names ZoneName can produce
// (A..Z followed by AA..ZZ).
const MaxZones = 26 + 26*26

// ZoneName returns the name of the zone with the given ordinal:
// 0 -> "zone-A", 25 -> "zone-Z", 26 -> "zone-AA".
func ZoneName(ordinal int) string {
	if ordinal < 0 {
		ordinal = 0
	}
	return "zone-" + zoneSuffix(ordinal)
}

func zoneSuffix(ordinal int) string {
	if ordinal < 26 {
		return string(rune('A' + ordinal))
	}
	ordinal -= 26
	return string([]rune{rune('A' + (ordinal/26)%26), rune('A' + ordinal%26)})
}

// HostID returns the identifier of a server slot. Zone names are unique
// within a run, so host identifiers are too.
func HostID(zone string, slot int) string {
	return zone + "-server-" + strconv.Itoa(slot)
}
