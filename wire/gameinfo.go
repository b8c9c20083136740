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

package wire

// GameInfo describes the target program's platform surfaces. It is sent
// once, as part of the outbound handshake of the first frame boundary
// after the information becomes known.
type GameInfo struct {
	Video    uint32
	Audio    uint32
	Keyboard uint32
	Mouse    uint32
}

// GameInfo video/audio surface flags.
const (
	SurfaceUnknown uint32 = 0
	SurfaceSDL1    uint32 = 1 << iota
	SurfaceSDL2
	SurfaceOpenGL
	SurfaceX11
)
