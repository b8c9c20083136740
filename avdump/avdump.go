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

// Package avdump writes the audio/video stream of a session to disk.
// Dumping starts when the controller sends a dump-file path and runs
// until a stop-encode request or the end of the session.
//
// Audio goes to a WAV file. Video frames are appended raw to a sidecar
// file with a small fixed header; encoding to a proper container is left
// to an external muxer.
package avdump

import (
	"encoding/binary"
	"os"

	"github.com/calluna/retrace/curated"
	"github.com/calluna/retrace/logger"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// DumpError is the sentinel pattern for all dump failures.
const DumpError = "avdump: %v"

// audio parameters of the dump. the interception layer resamples
// everything to this format before it reaches the encoder.
const (
	SampleRate = 44100
	BitDepth   = 16
)

// video sidecar file magic
var videoMagic = [4]byte{'R', 'T', 'A', 'V'}

// Encoder is the boundary controller's view of the dump sink.
type Encoder interface {
	Start(path string, width int, height int) error
	EncodeFrame(pix []byte) error
	EncodeAudio(samples []int) error
	Stop() error
	Dumping() bool
}

// Dump implements the Encoder interface, writing <path>.wav and
// <path>.rtav files.
type Dump struct {
	path    string
	dumping bool

	audioFile *os.File
	audioEnc  *wav.Encoder

	videoFile *os.File
}

// NewDump is the preferred method of initialisation for the Dump type.
func NewDump() *Dump {
	return &Dump{}
}

// Start implements the Encoder interface. Starting an already dumping
// encoder restarts it at the new path.
func (d *Dump) Start(path string, width int, height int) (rerr error) {
	if d.dumping {
		if err := d.Stop(); err != nil {
			return err
		}
	}

	defer func() {
		if rerr != nil {
			d.closeFiles()
		}
	}()

	var err error

	d.audioFile, err = os.Create(path + ".wav")
	if err != nil {
		return curated.Errorf(DumpError, err)
	}
	d.audioEnc = wav.NewEncoder(d.audioFile, SampleRate, BitDepth, 1, 1)

	d.videoFile, err = os.Create(path + ".rtav")
	if err != nil {
		return curated.Errorf(DumpError, err)
	}
	hdr := struct {
		Magic  [4]byte
		Width  uint32
		Height uint32
	}{videoMagic, uint32(width), uint32(height)}
	if err := binary.Write(d.videoFile, binary.LittleEndian, hdr); err != nil {
		return curated.Errorf(DumpError, err)
	}

	d.path = path
	d.dumping = true
	logger.Logf(logger.Allow, "avdump", "dumping to %s", path)

	return nil
}

// EncodeFrame implements the Encoder interface.
func (d *Dump) EncodeFrame(pix []byte) error {
	if !d.dumping {
		return nil
	}
	if _, err := d.videoFile.Write(pix); err != nil {
		return curated.Errorf(DumpError, err)
	}
	return nil
}

// EncodeAudio implements the Encoder interface.
func (d *Dump) EncodeAudio(samples []int) error {
	if !d.dumping {
		return nil
	}
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  SampleRate,
		},
		Data:           samples,
		SourceBitDepth: BitDepth,
	}
	if err := d.audioEnc.Write(buf); err != nil {
		return curated.Errorf(DumpError, err)
	}
	return nil
}

// Stop implements the Encoder interface. Stopping an idle encoder is a
// no-op.
func (d *Dump) Stop() error {
	if !d.dumping {
		return nil
	}
	d.dumping = false

	if err := d.audioEnc.Close(); err != nil {
		d.closeFiles()
		return curated.Errorf(DumpError, err)
	}

	logger.Logf(logger.Allow, "avdump", "dump to %s finished", d.path)

	return d.closeFiles()
}

// Dumping implements the Encoder interface.
func (d *Dump) Dumping() bool {
	return d.dumping
}

func (d *Dump) closeFiles() error {
	var rerr error
	if d.audioFile != nil {
		if err := d.audioFile.Close(); err != nil && rerr == nil {
			rerr = curated.Errorf(DumpError, err)
		}
		d.audioFile = nil
		d.audioEnc = nil
	}
	if d.videoFile != nil {
		if err := d.videoFile.Close(); err != nil && rerr == nil {
			rerr = curated.Errorf(DumpError, err)
		}
		d.videoFile = nil
	}
	return rerr
}
