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

// Sentinel errors for the thread layer. Callers discriminate with
// curated.Is().
const (
	// NoSuchThread is returned when the thread handle does not name a
	// live thread
	NoSuchThread = "thread: no such thread"

	// InvalidArgument is returned for operations on detached threads
	// and for malformed deadlines
	InvalidArgument = "thread: invalid argument"

	// Busy is returned by TryJoin when the thread has not finished
	Busy = "thread: busy"

	// TimedOut is returned by the deadline variants of join and wait
	TimedOut = "thread: timed out"

	// CreateError wraps a failure to start the underlying thread
	CreateError = "thread: create: %v"
)
