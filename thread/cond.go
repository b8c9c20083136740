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

package thread

import (
	"sync"
	"time"
)

// Cond is a condition variable supporting deadline waits, which
// sync.Cond does not. Waiters receive from a channel snapshot taken
// before releasing the caller's mutex; Broadcast closes the channel and
// replaces it.
//
// The deadline waits are what the wait-policy machinery in the Registry
// is built on.
type Cond struct {
	mu sync.Mutex
	ch chan struct{}
}

// NewCond is the preferred method of initialisation for the Cond type.
func NewCond() *Cond {
	return &Cond{ch: make(chan struct{})}
}

func (c *Cond) notifyChan() chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ch
}

// Wait releases mu, blocks until the condition is signalled and
// reacquires mu before returning. As with sync.Cond, callers must
// re-check their predicate in a loop.
func (c *Cond) Wait(mu *sync.Mutex) {
	ch := c.notifyChan()
	mu.Unlock()
	<-ch
	mu.Lock()
}

// WaitTimeout is Wait with a deadline. It returns true if the deadline
// passed without the condition being signalled.
func (c *Cond) WaitTimeout(mu *sync.Mutex, d time.Duration) bool {
	ch := c.notifyChan()
	mu.Unlock()
	defer mu.Lock()

	tmr := time.NewTimer(d)
	defer tmr.Stop()

	select {
	case <-ch:
		return false
	case <-tmr.C:
		return true
	}
}

// Signal wakes one waiter if there is one. A signal with no waiter is
// lost, as with any condition variable.
func (c *Cond) Signal() {
	ch := c.notifyChan()
	select {
	case ch <- struct{}{}:
	default:
	}
}

// Broadcast wakes every current waiter.
func (c *Cond) Broadcast() {
	c.mu.Lock()
	defer c.mu.Unlock()
	close(c.ch)
	c.ch = make(chan struct{})
}
