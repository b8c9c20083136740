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
	"sync"

	"github.com/calluna/retrace/input"
)

// Memory is a Queue backed by a plain slice. The demonstration game
// drains it with Pump() once per frame.
type Memory struct {
	mu  sync.Mutex
	evs []input.Event
}

// NewMemory is the preferred method of initialisation for the Memory
// type.
func NewMemory() *Memory {
	return &Memory{}
}

// Push implements the Queue interface.
func (m *Memory) Push(ev input.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evs = append(m.evs, ev)
	return nil
}

// PushQuit implements the Queue interface.
func (m *Memory) PushQuit() error {
	return m.Push(input.EventQuit{})
}

// Sync implements the Queue interface. Events are visible as soon as
// they are pushed so there is nothing to flush.
func (m *Memory) Sync() error {
	return nil
}

// Pump drains and returns all queued events.
func (m *Memory) Pump() []input.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	evs := m.evs
	m.evs = nil
	return evs
}
