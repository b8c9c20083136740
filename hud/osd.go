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

// Package hud carries the state behind the on-screen display: transient
// messages posted by the controller and the list of ram-watch values the
// controller wants rendered each frame. The actual compositing is done by
// a Renderer implementation outside of this core.
package hud

import (
	"sync"
	"time"
)

// how long a posted message stays on screen.
const messageDuration = 2 * time.Second

type message struct {
	text  string
	added time.Time
}

// OSD is the on-screen display state. Safe for concurrent use although in
// practice only the main thread touches it.
type OSD struct {
	mu       sync.Mutex
	messages []message
	watches  []string
}

// NewOSD is the preferred method of initialisation for the OSD type.
func NewOSD() *OSD {
	return &OSD{}
}

// InsertMessage posts a transient message.
func (o *OSD) InsertMessage(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, message{text: text, added: time.Now()})
}

// Messages returns the currently visible messages, pruning expired ones.
func (o *OSD) Messages() []string {
	o.mu.Lock()
	defer o.mu.Unlock()

	keep := o.messages[:0]
	for _, m := range o.messages {
		if time.Since(m.added) < messageDuration {
			keep = append(keep, m)
		}
	}
	o.messages = keep

	s := make([]string, len(o.messages))
	for i, m := range o.messages {
		s[i] = m.text
	}
	return s
}

// ResetWatches clears the ram-watch list. Called at the top of every
// frame boundary before the watch queries are drained.
func (o *OSD) ResetWatches() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.watches = o.watches[:0]
}

// InsertWatch appends a ram-watch entry for this frame.
func (o *OSD) InsertWatch(watch string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.watches = append(o.watches, watch)
}

// Watches returns the ram-watch entries for this frame.
func (o *OSD) Watches() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.watches...)
}
