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

package input_test

import (
	"testing"

	"github.com/calluna/retrace/input"
	"github.com/calluna/retrace/test"
)

func TestKeyEdges(t *testing.T) {
	s := input.NewState()

	var ai input.AllInputs
	ai.Keyboard[0] = 'a'
	ai.Keyboard[1] = 'b'
	s.Set(ai)

	evs := s.Events(false)
	test.ExpectEquality(t, len(evs), 2)
	test.ExpectEquality(t, evs[0].(input.EventKeyDown).Key, 'a')
	test.ExpectEquality(t, evs[1].(input.EventKeyDown).Key, 'b')

	// no change, no events
	evs = s.Events(false)
	test.ExpectEquality(t, len(evs), 0)

	// release 'a', press 'c'. releases are reported before presses
	ai.Empty()
	ai.Keyboard[0] = 'b'
	ai.Keyboard[1] = 'c'
	s.Set(ai)

	evs = s.Events(false)
	test.ExpectEquality(t, len(evs), 2)
	test.ExpectEquality(t, evs[0].(input.EventKeyUp).Key, 'a')
	test.ExpectEquality(t, evs[1].(input.EventKeyDown).Key, 'c')
}

func TestControllerEdges(t *testing.T) {
	s := input.NewState()

	var ai input.AllInputs
	ai.ControllerButtons[1] = 0x05
	ai.ControllerAxes[1][2] = -300
	s.Set(ai)

	evs := s.Events(false)
	test.ExpectEquality(t, len(evs), 3)

	b := evs[0].(input.EventControllerButton)
	test.ExpectEquality(t, b.ID, 1)
	test.ExpectEquality(t, b.Button, 0)
	test.ExpectSuccess(t, b.Down)

	b = evs[1].(input.EventControllerButton)
	test.ExpectEquality(t, b.Button, 2)
	test.ExpectSuccess(t, b.Down)

	a := evs[2].(input.EventControllerAxis)
	test.ExpectEquality(t, a.Axis, 2)
	test.ExpectEquality(t, a.Value, -300)

	// button release edge
	ai.ControllerButtons[1] = 0x04
	s.Set(ai)
	evs = s.Events(false)
	test.ExpectEquality(t, len(evs), 1)
	b = evs[0].(input.EventControllerButton)
	test.ExpectEquality(t, b.Button, 0)
	test.ExpectFailure(t, b.Down)
}

func TestControllerAdded(t *testing.T) {
	s := input.NewState()

	evs := s.Events(true)
	test.ExpectEquality(t, len(evs), input.NumControllers)
	for i, ev := range evs {
		test.ExpectEquality(t, ev.(input.EventControllerAdded).ID, i)
	}
}

func TestMouseEdges(t *testing.T) {
	s := input.NewState()

	var ai input.AllInputs
	ai.PointerX = 10
	ai.PointerY = 20
	ai.PointerMask = 0x01
	s.Set(ai)

	evs := s.Events(false)
	test.ExpectEquality(t, len(evs), 2)

	m := evs[0].(input.EventMouseMotion)
	test.ExpectEquality(t, m.X, 10)
	test.ExpectEquality(t, m.Y, 20)

	mb := evs[1].(input.EventMouseButton)
	test.ExpectEquality(t, mb.Button, 0)
	test.ExpectSuccess(t, mb.Down)
}
