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

package input

// Event represents an edge-triggered input event derived from two
// consecutive snapshots.
type Event interface{}

// EventQuit is a synthetic window-close request.
type EventQuit struct{}

// EventKeyDown is sent when a keysym appears in the new snapshot.
type EventKeyDown struct {
	Key uint32
}

// EventKeyUp is sent when a keysym disappears from the new snapshot.
type EventKeyUp struct {
	Key uint32
}

// EventMouseMotion is sent when the pointer coordinates change.
type EventMouseMotion struct {
	X int32
	Y int32
}

// EventMouseButton is sent for each pointer button whose state changed.
type EventMouseButton struct {
	Button int
	Down   bool
}

// EventControllerAdded is sent once, at the first boundary after the
// initial frame, for each controller.
type EventControllerAdded struct {
	ID int
}

// EventControllerButton is sent for each controller button whose state
// changed.
type EventControllerButton struct {
	ID     int
	Button int
	Down   bool
}

// EventControllerAxis is sent for each controller axis whose value
// changed.
type EventControllerAxis struct {
	ID    int
	Axis  int
	Value int16
}

// State holds the committed input snapshot and the snapshot it replaced.
// The frame boundary controller is the single writer; Set() is called
// from the boundary command loop and Events() from the event sync phase
// of the same boundary.
type State struct {
	previous  AllInputs
	committed AllInputs
}

// NewState is the preferred method of initialisation for the State type.
func NewState() *State {
	return &State{}
}

// Set replaces the committed snapshot wholesale.
func (s *State) Set(ai AllInputs) {
	s.committed = ai
}

// Committed returns the current committed snapshot.
func (s *State) Committed() AllInputs {
	return s.committed
}

// Events derives the edge-triggered events between the previously
// reported snapshot and the committed one, and advances the previous
// snapshot. Event order matches the original event generation order: key
// releases, key presses, controller attachment, controller buttons and
// axes, mouse motion, mouse buttons.
func (s *State) Events(controllerAdded bool) []Event {
	old := &s.previous
	cur := &s.committed

	var evs []Event

	// key releases then key presses
	for _, k := range old.Keyboard {
		if k != 0 && !cur.HasKey(k) {
			evs = append(evs, EventKeyUp{Key: k})
		}
	}
	for _, k := range cur.Keyboard {
		if k != 0 && !old.HasKey(k) {
			evs = append(evs, EventKeyDown{Key: k})
		}
	}

	if controllerAdded {
		for id := 0; id < NumControllers; id++ {
			evs = append(evs, EventControllerAdded{ID: id})
		}
	}

	for id := 0; id < NumControllers; id++ {
		diff := old.ControllerButtons[id] ^ cur.ControllerButtons[id]
		for b := 0; b < 16; b++ {
			if diff&(1<<b) != 0 {
				evs = append(evs, EventControllerButton{
					ID:     id,
					Button: b,
					Down:   cur.ControllerButtons[id]&(1<<b) != 0,
				})
			}
		}
		for a := 0; a < AxesPerController; a++ {
			if old.ControllerAxes[id][a] != cur.ControllerAxes[id][a] {
				evs = append(evs, EventControllerAxis{
					ID:    id,
					Axis:  a,
					Value: cur.ControllerAxes[id][a],
				})
			}
		}
	}

	if old.PointerX != cur.PointerX || old.PointerY != cur.PointerY {
		evs = append(evs, EventMouseMotion{X: cur.PointerX, Y: cur.PointerY})
	}

	diff := old.PointerMask ^ cur.PointerMask
	for b := 0; b < NumPointerButtons; b++ {
		if diff&(1<<b) != 0 {
			evs = append(evs, EventMouseButton{
				Button: b,
				Down:   cur.PointerMask&(1<<b) != 0,
			})
		}
	}

	s.previous = s.committed

	return evs
}
