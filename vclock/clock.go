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

// Clock defines the operations the core performs on the virtual clock.
//
// EnterBoundary() is called once per frame boundary. Implementations are
// expected to flush any queued delay and to mix audio for the elapsed
// frame as a side effect. ExitBoundary() closes the boundary scope.
//
// AddDelay() transfers a wait-time delta from the real clock to the
// virtual one; the thread layer uses it to make deadline waits
// deterministic.
type Clock interface {
	EnterBoundary()
	ExitBoundary()
	Ticks() Ticks
	AddDelay(Ticks)
}
