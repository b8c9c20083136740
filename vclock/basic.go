// This file is part of Retrace.
//
// Retrace is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Retrace is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Retrace.  If not, see <https://www.gnu.org/licenses/>.

package vclock

import (
	"sync"
)

// Basic is a minimal Clock implementation: virtual time advances by a
// fixed increment per boundary plus whatever delay has been queued with
// AddDelay(). It performs no audio mixing. Useful for testing and for the
// demonstration mode; a real deterministic timer lives outside the core.
type Basic struct {
	mu        sync.Mutex
	ticks     Ticks
	delay     Ticks
	increment Ticks
	inBound   bool
}

// NewBasic is the preferred method of initialisation for the Basic type.
// The increment argument is the amount of virtual time a single frame
// represents.
func NewBasic(increment Ticks) *Basic {
	return &Basic{increment: increment}
}

// EnterBoundary implements the Clock interface.
func (c *Basic) EnterBoundary() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks = c.ticks.Add(c.increment)
	c.ticks = c.ticks.Add(c.delay)
	c.delay = Ticks{}
	c.inBound = true
}

// ExitBoundary implements the Clock interface.
func (c *Basic) ExitBoundary() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inBound = false
}

// Ticks implements the Clock interface.
func (c *Basic) Ticks() Ticks {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

// AddDelay implements the Clock interface.
func (c *Basic) AddDelay(d Ticks) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delay = c.delay.Add(d)
}
