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

package movie

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/calluna/retrace/curated"
	"github.com/calluna/retrace/input"
)

// movie file header format
// ------------------------
//
// <magic>
// <target name>
// <target hash>
// <initial framecount>
//
// followed by one line per frame, encoding the complete input snapshot
// committed at that frame. an empty line is an empty snapshot.

const (
	lineMagic int = iota
	lineName
	lineHash
	lineFramecount
	numHeaderLines
)

const magic = "retrace movie v1"

const fieldSep = "|"

func encodeFrame(ai input.AllInputs) string {
	var parts []string

	var keys []string
	for _, k := range ai.Keyboard {
		if k != 0 {
			keys = append(keys, strconv.FormatUint(uint64(k), 16))
		}
	}
	if len(keys) > 0 {
		parts = append(parts, "K:"+strings.Join(keys, ","))
	}

	if ai.PointerX != 0 || ai.PointerY != 0 || ai.PointerMask != 0 {
		parts = append(parts, fmt.Sprintf("P:%d,%d,%x", ai.PointerX, ai.PointerY, ai.PointerMask))
	}

	for id := 0; id < input.NumControllers; id++ {
		active := ai.ControllerButtons[id] != 0
		for _, a := range ai.ControllerAxes[id] {
			if a != 0 {
				active = true
			}
		}
		if !active {
			continue
		}

		axes := make([]string, input.AxesPerController)
		for i, a := range ai.ControllerAxes[id] {
			axes[i] = strconv.Itoa(int(a))
		}
		parts = append(parts, fmt.Sprintf("C%d:%x:%s", id, ai.ControllerButtons[id], strings.Join(axes, ",")))
	}

	return strings.Join(parts, fieldSep)
}

func decodeFrame(line string) (input.AllInputs, error) {
	var ai input.AllInputs

	if line == "" {
		return ai, nil
	}

	for _, part := range strings.Split(line, fieldSep) {
		tag, value, ok := strings.Cut(part, ":")
		if !ok {
			return ai, curated.Errorf(PlaybackError, fmt.Sprintf("malformed field: %s", part))
		}

		switch {
		case tag == "K":
			for i, f := range strings.Split(value, ",") {
				if i >= input.MaxKeys {
					return ai, curated.Errorf(PlaybackError, "too many keys in frame")
				}
				k, err := strconv.ParseUint(f, 16, 32)
				if err != nil {
					return ai, curated.Errorf(PlaybackError, err)
				}
				ai.Keyboard[i] = uint32(k)
			}

		case tag == "P":
			f := strings.Split(value, ",")
			if len(f) != 3 {
				return ai, curated.Errorf(PlaybackError, "malformed pointer field")
			}
			x, err := strconv.ParseInt(f[0], 10, 32)
			if err != nil {
				return ai, curated.Errorf(PlaybackError, err)
			}
			y, err := strconv.ParseInt(f[1], 10, 32)
			if err != nil {
				return ai, curated.Errorf(PlaybackError, err)
			}
			m, err := strconv.ParseUint(f[2], 16, 32)
			if err != nil {
				return ai, curated.Errorf(PlaybackError, err)
			}
			ai.PointerX = int32(x)
			ai.PointerY = int32(y)
			ai.PointerMask = uint32(m)

		case strings.HasPrefix(tag, "C"):
			id, err := strconv.Atoi(tag[1:])
			if err != nil || id < 0 || id >= input.NumControllers {
				return ai, curated.Errorf(PlaybackError, fmt.Sprintf("bad controller id: %s", tag))
			}
			buttons, axes, ok := strings.Cut(value, ":")
			if !ok {
				return ai, curated.Errorf(PlaybackError, "malformed controller field")
			}
			b, err := strconv.ParseUint(buttons, 16, 16)
			if err != nil {
				return ai, curated.Errorf(PlaybackError, err)
			}
			ai.ControllerButtons[id] = uint16(b)

			f := strings.Split(axes, ",")
			if len(f) != input.AxesPerController {
				return ai, curated.Errorf(PlaybackError, "malformed controller axes")
			}
			for i, a := range f {
				v, err := strconv.ParseInt(a, 10, 16)
				if err != nil {
					return ai, curated.Errorf(PlaybackError, err)
				}
				ai.ControllerAxes[id][i] = int16(v)
			}

		default:
			return ai, curated.Errorf(PlaybackError, fmt.Sprintf("unknown field: %s", tag))
		}
	}

	return ai, nil
}
