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

// Package input defines the input snapshot exchanged with the controller
// at every frame boundary and the edge-triggered events derived from
// consecutive snapshots.
//
// The controller owns input: the target program never reads the real
// keyboard or pointer. Instead the committed AllInputs record is replaced
// wholesale by an AllInputs message and the event stream the program
// observes is synthesised from the difference between the previous and
// the new snapshot.
package input

// Limits of the AllInputs record.
const (
	// maximum number of simultaneously pressed keys in a snapshot
	MaxKeys = 16

	// number of controllers and the number of axes per controller
	NumControllers    = 4
	AxesPerController = 6
	NumPointerButtons = 5
)

// AllInputs is a complete input snapshot for one frame. The layout is
// fixed so the record travels over the wire as a single byte image. An
// empty keyboard slot holds zero; pressed keys are stored from index 0
// with no particular order guaranteed.
type AllInputs struct {
	Keyboard [MaxKeys]uint32

	PointerX    int32
	PointerY    int32
	PointerMask uint32

	ControllerAxes    [NumControllers][AxesPerController]int16
	ControllerButtons [NumControllers]uint16
}

// Empty resets the snapshot to the no-input state.
func (ai *AllInputs) Empty() {
	*ai = AllInputs{}
}

// HasKey returns true if the keysym appears in the keyboard slots.
func (ai *AllInputs) HasKey(key uint32) bool {
	if key == 0 {
		return false
	}
	for _, k := range ai.Keyboard {
		if k == key {
			return true
		}
	}
	return false
}
