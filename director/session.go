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

// Package director is the controller side of the frame boundary
// protocol: the process that the interception layer pauses and defers
// to at every boundary. A Session consumes the outbound handshake,
// issues commands inside the boundary and releases the target with the
// end-of-boundary marker.
package director

import (
	"io"

	"github.com/calluna/retrace/config"
	"github.com/calluna/retrace/curated"
	"github.com/calluna/retrace/input"
	"github.com/calluna/retrace/vclock"
	"github.com/calluna/retrace/wire"
)

// ProtocolError is the sentinel pattern for replies that break the
// boundary protocol.
const ProtocolError = "director: unexpected message: %v"

// BoundaryInfo is everything the target reports in the handshake that
// opens a frame boundary.
type BoundaryInfo struct {
	Framecount uint64
	Ticks      vclock.Ticks
	FPS        float32
	LogicalFPS float32
	Alerts     []string

	// GameInfo is non-nil when the target sent its one-shot game info
	// record this boundary
	GameInfo *wire.GameInfo

	// the target asked for an automatic backtrack savestate
	BacktrackRequested bool
}

// Session drives one target from the controller side.
type Session struct {
	conn *wire.Conn
}

// NewSession is the preferred method of initialisation for the Session
// type.
func NewSession(rw io.ReadWriter) *Session {
	return &Session{conn: wire.NewConn(rw)}
}

// WaitBoundary blocks until the target opens a frame boundary,
// consuming the whole handshake up to the start-of-boundary marker.
func (s *Session) WaitBoundary() (BoundaryInfo, error) {
	var nfo BoundaryInfo

	for {
		id, err := s.conn.ReceiveMessage()
		if err != nil {
			return nfo, err
		}

		switch id {
		case wire.MsgAlert:
			a, err := s.conn.ReceiveString()
			if err != nil {
				return nfo, err
			}
			nfo.Alerts = append(nfo.Alerts, a)

		case wire.MsgFramecountTime:
			var fct wire.FramecountTime
			if err := s.conn.ReceiveData(&fct); err != nil {
				return nfo, err
			}
			nfo.Framecount = fct.Framecount
			nfo.Ticks = vclock.Ticks{Sec: fct.Sec, Nsec: fct.Nsec}

		case wire.MsgGameInfo:
			var gi wire.GameInfo
			if err := s.conn.ReceiveData(&gi); err != nil {
				return nfo, err
			}
			nfo.GameInfo = &gi

		case wire.MsgFPS:
			var fps wire.FPS
			if err := s.conn.ReceiveData(&fps); err != nil {
				return nfo, err
			}
			nfo.FPS = fps.Real
			nfo.LogicalFPS = fps.Logical

		case wire.MsgDoBacktrackSavestate:
			nfo.BacktrackRequested = true

		case wire.MsgStartFrameBoundary:
			return nfo, nil

		default:
			return nfo, curated.Errorf(ProtocolError, id)
		}
	}
}

// RamWatch issues one ram-watch query. Only valid between WaitBoundary
// and the first command of the boundary.
func (s *Session) RamWatch(query string) (string, error) {
	if err := s.conn.SendMessage(wire.MsgRAMWatch); err != nil {
		return "", err
	}
	if err := s.conn.SendString(query); err != nil {
		return "", err
	}

	id, err := s.conn.ReceiveMessage()
	if err != nil {
		return "", err
	}
	if id != wire.MsgRAMWatch {
		return "", curated.Errorf(ProtocolError, id)
	}
	return s.conn.ReceiveString()
}

// SendConfig replaces the target's shared configuration wholesale.
func (s *Session) SendConfig(c config.SharedConfig) error {
	if err := s.conn.SendMessage(wire.MsgConfig); err != nil {
		return err
	}
	return s.conn.SendData(c)
}

// SendInputs commits a new input snapshot.
func (s *Session) SendInputs(ai input.AllInputs) error {
	if err := s.conn.SendMessage(wire.MsgAllInputs); err != nil {
		return err
	}
	return s.conn.SendData(ai)
}

// SendPreviewInputs requests a redraw with the snapshot overlaid,
// without committing it.
func (s *Session) SendPreviewInputs(ai input.AllInputs) error {
	if err := s.conn.SendMessage(wire.MsgPreviewInputs); err != nil {
		return err
	}
	return s.conn.SendData(ai)
}

// Expose requests a plain redraw.
func (s *Session) Expose() error {
	return s.conn.SendMessage(wire.MsgExpose)
}

// SetDumpFile sets the path and encoder options used the next time
// audio/video dumping starts.
func (s *Session) SetDumpFile(path string, options string) error {
	if err := s.conn.SendMessage(wire.MsgDumpFile); err != nil {
		return err
	}
	if err := s.conn.SendString(path); err != nil {
		return err
	}
	return s.conn.SendString(options)
}

// SavestatePath forwards the savestate path to the target.
func (s *Session) SavestatePath(path string) error {
	if err := s.conn.SendMessage(wire.MsgSavestatePath); err != nil {
		return err
	}
	return s.conn.SendString(path)
}

// SavestateIndex forwards the savestate slot index to the target.
func (s *Session) SavestateIndex(index int32) error {
	if err := s.conn.SendMessage(wire.MsgSavestateIndex); err != nil {
		return err
	}
	return s.conn.SendData(index)
}

// Savestate requests a checkpoint. A plain save sends no reply; use
// ResyncLoadedState when the request will land in a target that is
// resuming from a restore.
func (s *Session) Savestate() error {
	return s.conn.SendMessage(wire.MsgSavestate)
}

// ResyncLoadedState performs the controller half of the restore resync
// sequence: consume the loading-succeeded report, send a fresh
// configuration, and consume the refreshed frame count and time. Called
// after a Savestate request that resumed a restored target.
func (s *Session) ResyncLoadedState(c config.SharedConfig) (wire.FramecountTime, error) {
	var fct wire.FramecountTime

	id, err := s.conn.ReceiveMessage()
	if err != nil {
		return fct, err
	}
	if id != wire.MsgLoadingSucceeded {
		return fct, curated.Errorf(ProtocolError, id)
	}

	if err := s.SendConfig(c); err != nil {
		return fct, err
	}

	return s.receiveFramecountTime()
}

// Loadstate requests a restore and consumes the refreshed frame count
// and time that always follows, success or not.
func (s *Session) Loadstate() (wire.FramecountTime, error) {
	if err := s.conn.SendMessage(wire.MsgLoadstate); err != nil {
		return wire.FramecountTime{}, err
	}
	return s.receiveFramecountTime()
}

func (s *Session) receiveFramecountTime() (wire.FramecountTime, error) {
	var fct wire.FramecountTime

	id, err := s.conn.ReceiveMessage()
	if err != nil {
		return fct, err
	}
	if id != wire.MsgFramecountTime {
		return fct, curated.Errorf(ProtocolError, id)
	}
	err = s.conn.ReceiveData(&fct)
	return fct, err
}

// StopEncode tears down the target's audio/video dump.
func (s *Session) StopEncode() error {
	return s.conn.SendMessage(wire.MsgStopEncode)
}

// OSDMessage posts a message to the target's on-screen display.
func (s *Session) OSDMessage(text string) error {
	if err := s.conn.SendMessage(wire.MsgOSDMessage); err != nil {
		return err
	}
	return s.conn.SendString(text)
}

// Quit asks the target to exit.
func (s *Session) Quit() error {
	return s.conn.SendMessage(wire.MsgUserQuit)
}

// EndBoundary releases the target from the boundary. Exactly one is
// required per boundary.
func (s *Session) EndBoundary() error {
	return s.conn.SendMessage(wire.MsgEndFrameBoundary)
}
