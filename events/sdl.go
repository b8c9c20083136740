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

package events

import (
	"github.com/calluna/retrace/curated"
	"github.com/calluna/retrace/input"
	"github.com/veandco/go-sdl2/sdl"
)

// sentinel errors for the SDL queue
const (
	// PushError is returned when the SDL event queue rejects an event
	PushError = "sdl events: %v"

	// UnhandledEvent is returned for synthetic events with no SDL
	// equivalent
	UnhandledEvent = "sdl events: unhandled event: %T"
)

// SDL is a Queue that pushes real events onto the SDL event queue. A
// target program polling SDL for input receives the synthetic stream
// through its normal event loop.
type SDL struct{}

// NewSDL is the preferred method of initialisation for the SDL type.
func NewSDL() *SDL {
	return &SDL{}
}

// Push implements the Queue interface.
func (q *SDL) Push(ev input.Event) error {
	var sev sdl.Event

	switch e := ev.(type) {
	case input.EventQuit:
		sev = &sdl.QuitEvent{Type: sdl.QUIT}
	case input.EventKeyDown:
		sev = &sdl.KeyboardEvent{
			Type:   sdl.KEYDOWN,
			State:  sdl.PRESSED,
			Keysym: sdl.Keysym{Sym: sdl.Keycode(e.Key)},
		}
	case input.EventKeyUp:
		sev = &sdl.KeyboardEvent{
			Type:   sdl.KEYUP,
			State:  sdl.RELEASED,
			Keysym: sdl.Keysym{Sym: sdl.Keycode(e.Key)},
		}
	case input.EventMouseMotion:
		sev = &sdl.MouseMotionEvent{
			Type: sdl.MOUSEMOTION,
			X:    e.X,
			Y:    e.Y,
		}
	case input.EventMouseButton:
		// SDL button numbering starts at 1
		sev = &sdl.MouseButtonEvent{
			Type:   mouseButtonType(e.Down),
			Button: uint8(e.Button + 1),
			State:  buttonState(e.Down),
		}
	case input.EventControllerAdded:
		sev = &sdl.ControllerDeviceEvent{
			Type:  sdl.CONTROLLERDEVICEADDED,
			Which: sdl.JoystickID(e.ID),
		}
	case input.EventControllerButton:
		sev = &sdl.ControllerButtonEvent{
			Type:   controllerButtonType(e.Down),
			Which:  sdl.JoystickID(e.ID),
			Button: uint8(e.Button),
			State:  buttonState(e.Down),
		}
	case input.EventControllerAxis:
		sev = &sdl.ControllerAxisEvent{
			Type:  sdl.CONTROLLERAXISMOTION,
			Which: sdl.JoystickID(e.ID),
			Axis:  uint8(e.Axis),
			Value: e.Value,
		}
	default:
		return curated.Errorf(UnhandledEvent, ev)
	}

	if _, err := sdl.PushEvent(sev); err != nil {
		return curated.Errorf(PushError, err)
	}
	return nil
}

// PushQuit implements the Queue interface.
func (q *SDL) PushQuit() error {
	return q.Push(input.EventQuit{})
}

// Sync implements the Queue interface.
func (q *SDL) Sync() error {
	sdl.PumpEvents()
	return nil
}

func mouseButtonType(down bool) uint32 {
	if down {
		return sdl.MOUSEBUTTONDOWN
	}
	return sdl.MOUSEBUTTONUP
}

func controllerButtonType(down bool) uint32 {
	if down {
		return sdl.CONTROLLERBUTTONDOWN
	}
	return sdl.CONTROLLERBUTTONUP
}

func buttonState(down bool) uint8 {
	if down {
		return sdl.PRESSED
	}
	return sdl.RELEASED
}
