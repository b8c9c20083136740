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
	"os"
	"strconv"
	"strings"

	"github.com/calluna/retrace/curated"
	"github.com/calluna/retrace/input"
)

// Playback reperforms the input recorded in a movie file, one snapshot
// per frame boundary.
type Playback struct {
	Name              string
	Hash              string
	InitialFramecount uint64

	sequence []input.AllInputs
	seqCt    int
}

// NewPlayback is the preferred method of initialisation for the Playback
// type. If hash is not empty it must match the hash in the movie header.
func NewPlayback(path string, hash string) (*Playback, error) {
	buffer, err := os.ReadFile(path)
	if err != nil {
		return nil, curated.Errorf(PlaybackError, err)
	}

	lines := strings.Split(string(buffer), "\n")
	if len(lines) < numHeaderLines {
		return nil, curated.Errorf(PlaybackError, "truncated header")
	}
	if lines[lineMagic] != magic {
		return nil, curated.Errorf(PlaybackError, fmt.Sprintf("not a movie file: %s", path))
	}

	plb := &Playback{
		Name: lines[lineName],
		Hash: lines[lineHash],
	}

	if hash != "" && hash != plb.Hash {
		return nil, curated.Errorf(PlaybackError, "movie was recorded against a different target")
	}

	plb.InitialFramecount, err = strconv.ParseUint(lines[lineFramecount], 10, 64)
	if err != nil {
		return nil, curated.Errorf(PlaybackError, err)
	}

	// a trailing newline leaves one empty trailing element; it is not a
	// frame
	frames := lines[numHeaderLines:]
	if len(frames) > 0 && frames[len(frames)-1] == "" {
		frames = frames[:len(frames)-1]
	}

	for i, line := range frames {
		ai, err := decodeFrame(line)
		if err != nil {
			return nil, curated.Errorf(PlaybackError, fmt.Sprintf("line %d: %v", numHeaderLines+i+1, err))
		}
		plb.sequence = append(plb.sequence, ai)
	}

	return plb, nil
}

// NumFrames returns the total number of frames in the movie.
func (plb *Playback) NumFrames() int {
	return len(plb.sequence)
}

// Next yields the snapshot for the next frame boundary. The second
// return value is false once the movie is exhausted.
func (plb *Playback) Next() (input.AllInputs, bool) {
	if plb.seqCt >= len(plb.sequence) {
		return input.AllInputs{}, false
	}
	ai := plb.sequence[plb.seqCt]
	plb.seqCt++
	return ai, true
}

func (plb *Playback) String() string {
	return fmt.Sprintf("%d/%d (%.1f%%)", plb.seqCt, len(plb.sequence),
		100*(float64(plb.seqCt)/float64(len(plb.sequence))))
}
