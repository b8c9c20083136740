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

// Package screen provides an in-memory pixel buffer satisfying the
// boundary controller's PixelBuffer collaborator. A real interception
// layer would read pixels back from the rendering API; here the working
// frame is a plain RGBA byte plane that the demonstration game writes
// into directly.
package screen

import "sync"

// BytesPerPixel is the size of one RGBA pixel.
const BytesPerPixel = 4

// Buffer holds the working frame and the last captured copy of it.
type Buffer struct {
	mu       sync.Mutex
	width    int
	height   int
	working  []byte
	captured []byte
	valid    bool
}

// NewBuffer is the preferred method of initialisation for the Buffer
// type.
func NewBuffer(width int, height int) *Buffer {
	return &Buffer{
		width:   width,
		height:  height,
		working: make([]byte, width*height*BytesPerPixel),
	}
}

// Dimensions returns the width and height of the frame.
func (b *Buffer) Dimensions() (int, int) {
	return b.width, b.height
}

// Working returns the working frame plane. The caller may write into it;
// the slice is only replaced on a geometry change, which Buffer does not
// support.
func (b *Buffer) Working() []byte {
	return b.working
}

// Capture copies the working frame aside so that it can be put back
// later with Restore.
func (b *Buffer) Capture() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.captured == nil {
		b.captured = make([]byte, len(b.working))
	}
	copy(b.captured, b.working)
	b.valid = true
}

// Restore copies the captured frame back into the working frame. It is a
// no-op when nothing has been captured.
func (b *Buffer) Restore() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.valid {
		return
	}
	copy(b.working, b.captured)
}

// SetPixels replaces the captured frame wholesale. Used when the
// controller pushes the pixels belonging to a loaded state.
func (b *Buffer) SetPixels(pix []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.captured == nil {
		b.captured = make([]byte, len(b.working))
	}
	copy(b.captured, pix)
	b.valid = true
}

// Pixels returns a copy of the captured frame, or nil if nothing has
// been captured.
func (b *Buffer) Pixels() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.valid {
		return nil
	}
	return append([]byte(nil), b.captured...)
}
