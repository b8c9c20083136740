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

// Package vclock defines the virtual clock that the target program
// observes instead of the real wall clock. The clock itself is a
// collaborator implemented outside of this project core; the Clock
// interface is its contract. The Basic type is a minimal implementation
// suitable for testing and for the demonstration mode.
package vclock

import (
	"fmt"
	"time"
)

const nsecInSec = 1000000000

// Ticks is a point on (or a delta between points on) the virtual
// timeline. The layout mirrors a timespec, which is also how it travels
// over the wire in FramecountTime messages.
type Ticks struct {
	Sec  int64
	Nsec int64
}

// FromDuration converts a time.Duration to Ticks.
func FromDuration(d time.Duration) Ticks {
	n := d.Nanoseconds()
	return Ticks{Sec: n / nsecInSec, Nsec: n % nsecInSec}
}

// Add returns the sum of two Ticks values, normalised.
func (t Ticks) Add(v Ticks) Ticks {
	r := Ticks{Sec: t.Sec + v.Sec, Nsec: t.Nsec + v.Nsec}
	if r.Nsec >= nsecInSec {
		r.Sec++
		r.Nsec -= nsecInSec
	}
	return r
}

// Sub returns the difference of two Ticks values, normalised.
func (t Ticks) Sub(v Ticks) Ticks {
	r := Ticks{Sec: t.Sec - v.Sec, Nsec: t.Nsec - v.Nsec}
	if r.Nsec < 0 {
		r.Sec--
		r.Nsec += nsecInSec
	}
	return r
}

// Duration converts Ticks to a time.Duration.
func (t Ticks) Duration() time.Duration {
	return time.Duration(t.Sec*nsecInSec + t.Nsec)
}

// Valid returns false for a malformed value. Negative seconds and a
// nanosecond field outside of [0, 1e9) are precondition failures for the
// operations that accept caller-supplied deadlines.
func (t Ticks) Valid() bool {
	return t.Sec >= 0 && t.Nsec >= 0 && t.Nsec < nsecInSec
}

func (t Ticks) String() string {
	return fmt.Sprintf("%d.%09ds", t.Sec, t.Nsec)
}
