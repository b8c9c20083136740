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

// FramecountTime is the payload of the MsgFramecountTime message: the
// logical frame counter and the virtual clock reading, timespec layout.
type FramecountTime struct {
	Framecount uint64
	Sec        int64
	Nsec       int64
}

// FPS is the payload of the MsgFPS message. Real is frames per second of
// wall time; Logical is frames per second of virtual time.
type FPS struct {
	Real    float32
	Logical float32
}
