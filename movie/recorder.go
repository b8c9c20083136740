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

// Package movie records the per-frame input of a session to a text file
// and plays it back. A movie plus a deterministic session is a complete
// reproduction of a run: replaying the same snapshots through the frame
// boundary yields the same execution.
package movie

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/calluna/retrace/curated"
	"github.com/calluna/retrace/input"
)

// Sentinel errors for the movie package.
const (
	RecordingError = "movie recording: %v"
	PlaybackError  = "movie playback: %v"
)

// Recorder writes one line per frame to the movie file.
type Recorder struct {
	output *os.File
	frames int
}

// NewRecorder is the preferred method of initialisation for the Recorder
// type. The header is written immediately; name and hash identify the
// target so playback can refuse a movie recorded against a different
// one.
func NewRecorder(path string, name string, hash string, initialFramecount uint64) (*Recorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, curated.Errorf(RecordingError, err)
	}

	rec := &Recorder{output: f}

	header := strings.Join([]string{
		magic,
		name,
		hash,
		fmt.Sprintf("%d", initialFramecount),
	}, "\n") + "\n"

	if _, err := io.WriteString(f, header); err != nil {
		f.Close()
		return nil, curated.Errorf(RecordingError, err)
	}

	return rec, nil
}

// RecordFrame appends the input snapshot committed at one frame
// boundary.
func (rec *Recorder) RecordFrame(ai input.AllInputs) error {
	if _, err := io.WriteString(rec.output, encodeFrame(ai)+"\n"); err != nil {
		return curated.Errorf(RecordingError, err)
	}
	rec.frames++
	return nil
}

// NumFrames returns the number of frames recorded so far.
func (rec *Recorder) NumFrames() int {
	return rec.frames
}

// End closes the movie file. The Recorder is unusable afterwards.
func (rec *Recorder) End() error {
	if err := rec.output.Close(); err != nil {
		return curated.Errorf(RecordingError, err)
	}
	return nil
}
