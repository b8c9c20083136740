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

// Package config holds the shared configuration record mirrored between
// the interception layer and the controller. The record has a fixed
// layout so that it can travel over the wire as a single byte image. It
// is only ever mutated wholesale, by a Config message or by the savestate
// resync sequence; consumers read it through a Store which guarantees a
// whole, consistent snapshot.
package config

// WaitPolicy selects how deadline waits on the main thread behave.
type WaitPolicy uint8

// List of valid WaitPolicy values.
//
// WaitNative trusts the wall clock. WaitFinite performs a short real wait
// and transfers the remaining delta to the virtual clock on timeout.
// WaitFullInfinite transfers the whole delta up front and then waits
// without a deadline.
const (
	WaitNative WaitPolicy = iota
	WaitFinite
	WaitFullInfinite
)

// FFMode is the set of fast-forward mode flags.
type FFMode uint8

// FFRenderSkip causes every frame to be skipped unconditionally while
// fast-forwarding.
const FFRenderSkip FFMode = 0x01

// OSD layer flags. Each enabled layer is composited by the on-screen
// display renderer at every drawn frame.
const (
	OSDFramecount uint8 = 1 << iota
	OSDInputs
	OSDMessages
	OSDWatches
)

// SharedConfig is the configuration record. All fields are fixed-size so
// the whole record is encodable with encoding/binary.
type SharedConfig struct {
	// whether the target program is running or paused on frame-advance
	Running bool

	// fast-forward state and mode flags
	FastForward bool
	FFMode      FFMode

	// whether audio/video dumping is active
	AVDumping bool

	// whether the thread layer recycles OS threads
	RecycleThreads bool

	// whether screen pixels are saved at each boundary for later
	// restoration
	SaveScreenPixels bool

	// whether automatic backtrack savestates are wanted
	BacktrackSavestate bool

	// enabled on-screen display layers and whether they are composited
	// before (true) or after (false) audio/video dumping
	OSD       uint8
	OSDEncode bool

	// deadline wait policy for the main thread
	WaitTimeout WaitPolicy

	// pass window-system events through natively rather than
	// synthesising them
	DebugNativeEvents bool

	// the frame count at the start of the session. the controller-added
	// input event is generated at InitialFramecount+1
	InitialFramecount uint64
}
