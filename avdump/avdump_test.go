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

package avdump_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/calluna/retrace/avdump"
	"github.com/calluna/retrace/test"
	"github.com/go-audio/wav"
)

func TestDump(t *testing.T) {
	p := filepath.Join(t.TempDir(), "dump")

	d := avdump.NewDump()
	test.ExpectFailure(t, d.Dumping())

	// stopping an idle encoder is a no-op
	test.ExpectSuccess(t, d.Stop())

	test.ExpectSuccess(t, d.Start(p, 2, 2))
	test.ExpectSuccess(t, d.Dumping())

	pix := make([]byte, 2*2*4)
	test.ExpectSuccess(t, d.EncodeFrame(pix))
	test.ExpectSuccess(t, d.EncodeFrame(pix))

	samples := make([]int, 100)
	for i := range samples {
		samples[i] = i * 10
	}
	test.ExpectSuccess(t, d.EncodeAudio(samples))

	test.ExpectSuccess(t, d.Stop())
	test.ExpectFailure(t, d.Dumping())

	// header is 12 bytes followed by two raw frames
	fi, err := os.Stat(p + ".rtav")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, fi.Size(), 12+2*int64(len(pix)))

	// the WAV file decodes back to the samples we wrote
	f, err := os.Open(p + ".wav")
	test.ExpectSuccess(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(buf.Data), len(samples))
	test.ExpectEquality(t, buf.Data[10], 100)
}

func TestDumpAfterStop(t *testing.T) {
	d := avdump.NewDump()

	// encoding while idle is a no-op rather than an error
	test.ExpectSuccess(t, d.EncodeFrame([]byte{0}))
	test.ExpectSuccess(t, d.EncodeAudio([]int{0}))
}
