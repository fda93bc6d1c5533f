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

// Cursor walks the range [0, modulus) forever, wrapping back to 0 after
// modulus-1. It is not safe for concurrent use.
type Cursor struct {
	index   int
	modulus int
}

// NewCursor returns a cursor positioned at 0. A modulus below 1 is treated
// as 1 so Next always has a slot to return.
func NewCursor(modulus int) *Cursor {
	if modulus < 1 {
		modulus = 1
	}
	return &Cursor{modulus: modulus}
}

// Next returns the current position and advances by exactly one slot.
func (c *Cursor) Next() int {
	i := c.index
	c.index = (c.index + 1) % c.modulus
	return i
}

// Modulus returns the number of slots the cursor cycles through.
func (c *Cursor) Modulus() int {
	return c.modulus
}
