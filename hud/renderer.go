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

package hud

import "github.com/calluna/retrace/input"

// Renderer composites the enabled display layers onto the working frame.
// Implementations live outside of this core. Each method corresponds to
// one layer flag in the shared configuration; the boundary controller
// calls only the enabled ones, in layer order.
type Renderer interface {
	RenderFrame(framecount uint64, nondrawFramecount uint64)
	RenderInputs(ai input.AllInputs)
	RenderPreviewInputs(ai input.AllInputs)
	RenderMessages(messages []string)
	RenderWatches(watches []string)
}
