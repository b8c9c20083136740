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

// Package events delivers the synthetic input events generated at each
// frame boundary to the target program. The target never sees the real
// window-system event stream; the boundary controller derives events
// from the committed input snapshot and pushes them here.
//
// Two implementations are provided. Memory is a plain queue for the
// demonstration game and the tests. SDL pushes real events onto an SDL
// event queue so that a target polling SDL receives them natively.
package events

import "github.com/calluna/retrace/input"

// Queue is the delivery side of the synthetic event stream.
type Queue interface {
	// Push delivers one synthetic event.
	Push(ev input.Event) error

	// PushQuit delivers a window-close request.
	PushQuit() error

	// Sync flushes any buffering so that events pushed so far are
	// visible to the target before the frame boundary ends.
	Sync() error
}
