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

// Package wire implements the message channel between the interception
// layer running inside the target process and the controller process.
//
// The channel is an ordered, reliable, bidirectional byte stream. Every
// message is a MsgID tag followed by a payload whose layout is implied by
// the tag: either a fixed-layout record (sent with SendData) or a
// length-prefixed string (sent with SendString). The set of tags is a
// closed enumeration; dispatch on an unknown tag is a protocol error that
// the receiving loop handles defensively.
package wire

import "fmt"

// MsgID is the tag at the head of every message on the channel.
type MsgID uint32

// Messages sent from the interception layer to the controller. The order
// of the outbound handshake at a frame boundary is: any number of
// MsgAlert, MsgFramecountTime, optionally MsgGameInfo, MsgFPS, optionally
// MsgDoBacktrackSavestate, then MsgStartFrameBoundary.
const (
	MsgAlert MsgID = iota
	MsgFramecountTime
	MsgGameInfo
	MsgFPS
	MsgDoBacktrackSavestate
	MsgStartFrameBoundary
	MsgLoadingSucceeded
)

// Messages sent from the controller to the interception layer. All are
// valid in the frame boundary command loop until MsgEndFrameBoundary;
// MsgRAMWatch is only valid in the pre-render sub-loop.
const (
	MsgUserQuit MsgID = iota + 100
	MsgConfig
	MsgDumpFile
	MsgAllInputs
	MsgExpose
	MsgPreviewInputs
	MsgSavestatePath
	MsgSavestateIndex
	MsgSavestate
	MsgLoadstate
	MsgStopEncode
	MsgOSDMessage
	MsgRAMWatch
	MsgEndFrameBoundary
)

func (id MsgID) String() string {
	switch id {
	case MsgAlert:
		return "ALERT"
	case MsgFramecountTime:
		return "FRAMECOUNT_TIME"
	case MsgGameInfo:
		return "GAMEINFO"
	case MsgFPS:
		return "FPS"
	case MsgDoBacktrackSavestate:
		return "DO_BACKTRACK_SAVESTATE"
	case MsgStartFrameBoundary:
		return "START_FRAMEBOUNDARY"
	case MsgLoadingSucceeded:
		return "LOADING_SUCCEEDED"
	case MsgUserQuit:
		return "USERQUIT"
	case MsgConfig:
		return "CONFIG"
	case MsgDumpFile:
		return "DUMP_FILE"
	case MsgAllInputs:
		return "ALL_INPUTS"
	case MsgExpose:
		return "EXPOSE"
	case MsgPreviewInputs:
		return "PREVIEW_INPUTS"
	case MsgSavestatePath:
		return "SAVESTATE_PATH"
	case MsgSavestateIndex:
		return "SAVESTATE_INDEX"
	case MsgSavestate:
		return "SAVESTATE"
	case MsgLoadstate:
		return "LOADSTATE"
	case MsgStopEncode:
		return "STOP_ENCODE"
	case MsgOSDMessage:
		return "OSD_MSG"
	case MsgRAMWatch:
		return "RAMWATCH"
	case MsgEndFrameBoundary:
		return "END_FRAMEBOUNDARY"
	}
	return fmt.Sprintf("unknown message (%d)", uint32(id))
}
