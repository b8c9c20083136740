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

import (
	"encoding/binary"
	"io"

	"github.com/calluna/retrace/curated"
)

// FailedChannel is the sentinel pattern for any send/receive failure. A
// broken channel cannot be locally recovered: the controller is the sole
// authority the interception layer defers to at a frame boundary, so
// callers treat this error as fatal to the session.
const FailedChannel = "wire: %v"

// Conn wraps the byte stream shared with the peer process. The send and
// receive primitives are not safe for concurrent use; the frame boundary
// protocol is strictly sequential so only one thread may own a Conn.
type Conn struct {
	rw io.ReadWriter
}

// NewConn is the preferred method of initialisation for the Conn type.
func NewConn(rw io.ReadWriter) *Conn {
	return &Conn{rw: rw}
}

// SendMessage writes a message tag to the channel.
func (c *Conn) SendMessage(id MsgID) error {
	if err := binary.Write(c.rw, binary.LittleEndian, id); err != nil {
		return curated.Errorf(FailedChannel, err)
	}
	return nil
}

// SendData writes a fixed-layout record to the channel. The data argument
// must be a value or pointer acceptable to encoding/binary.
func (c *Conn) SendData(data interface{}) error {
	if err := binary.Write(c.rw, binary.LittleEndian, data); err != nil {
		return curated.Errorf(FailedChannel, err)
	}
	return nil
}

// SendString writes a length-prefixed string to the channel.
func (c *Conn) SendString(s string) error {
	if err := binary.Write(c.rw, binary.LittleEndian, uint32(len(s))); err != nil {
		return curated.Errorf(FailedChannel, err)
	}
	if _, err := io.WriteString(c.rw, s); err != nil {
		return curated.Errorf(FailedChannel, err)
	}
	return nil
}

// ReceiveMessage reads the next message tag from the channel, blocking
// until one arrives.
func (c *Conn) ReceiveMessage() (MsgID, error) {
	var id MsgID
	if err := binary.Read(c.rw, binary.LittleEndian, &id); err != nil {
		return 0, curated.Errorf(FailedChannel, err)
	}
	return id, nil
}

// ReceiveData reads a fixed-layout record from the channel. The data
// argument must be a pointer acceptable to encoding/binary.
func (c *Conn) ReceiveData(data interface{}) error {
	if err := binary.Read(c.rw, binary.LittleEndian, data); err != nil {
		return curated.Errorf(FailedChannel, err)
	}
	return nil
}

// ReceiveString reads a length-prefixed string from the channel.
func (c *Conn) ReceiveString() (string, error) {
	var length uint32
	if err := binary.Read(c.rw, binary.LittleEndian, &length); err != nil {
		return "", curated.Errorf(FailedChannel, err)
	}
	b := make([]byte, length)
	if _, err := io.ReadFull(c.rw, b); err != nil {
		return "", curated.Errorf(FailedChannel, err)
	}
	return string(b), nil
}
