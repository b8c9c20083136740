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

// white-box tests: the skip decision is internal to the boundary run.
package boundary

import (
	"testing"
	"time"

	"github.com/calluna/retrace/config"
	"github.com/calluna/retrace/test"
	"github.com/calluna/retrace/vclock"
)

func newSkipController(cfg config.SharedConfig) (*Controller, *config.Store) {
	store := config.NewStore(cfg)
	clk := vclock.NewBasic(vclock.FromDuration(16 * time.Millisecond))
	return NewController(nil, store, clk), store
}

type stuckEncoder struct {
	dumping bool
}

func (e *stuckEncoder) Start(path string, width int, height int) error { return nil }
func (e *stuckEncoder) EncodeFrame(pix []byte) error                   { return nil }
func (e *stuckEncoder) EncodeAudio(samples []int) error                { return nil }
func (e *stuckEncoder) Stop() error                                    { return nil }
func (e *stuckEncoder) Dumping() bool                                  { return e.dumping }

func TestSkipNeverWithoutFastForward(t *testing.T) {
	ct, _ := newSkipController(config.SharedConfig{Running: true})

	for _, fps := range []float32{-60, 0, 1, 60, 100000} {
		for i := 0; i < 10; i++ {
			test.ExpectFailure(t, ct.computeSkip(fps))
		}
	}
}

func TestSkipNeverWhenPaused(t *testing.T) {
	ct, _ := newSkipController(config.SharedConfig{FastForward: true})

	for _, fps := range []float32{-60, 0, 60} {
		test.ExpectFailure(t, ct.computeSkip(fps))
	}
}

func TestSkipNeverWhileDumping(t *testing.T) {
	ct, _ := newSkipController(config.SharedConfig{
		Running:     true,
		FastForward: true,
		AVDumping:   true,
	})

	// the dumping flag alone suppresses skipping, before any encoder is
	// attached and before the first frame has been encoded
	for i := 0; i < 10; i++ {
		test.ExpectFailure(t, ct.computeSkip(60))
	}

	ct.AddEncoder(&stuckEncoder{})
	for i := 0; i < 10; i++ {
		test.ExpectFailure(t, ct.computeSkip(60))
	}

	ct.AddEncoder(&stuckEncoder{dumping: true})
	for i := 0; i < 10; i++ {
		test.ExpectFailure(t, ct.computeSkip(60))
	}
}

func TestSkipRenderSkipMode(t *testing.T) {
	ct, _ := newSkipController(config.SharedConfig{
		Running:     true,
		FastForward: true,
		FFMode:      config.FFRenderSkip,
	})

	// every frame, unconditionally
	for i := 0; i < 10; i++ {
		test.ExpectSuccess(t, ct.computeSkip(60))
	}
}

func TestSkipFrequencyFloor(t *testing.T) {
	ct, _ := newSkipController(config.SharedConfig{
		Running:     true,
		FastForward: true,
	})

	// fps of zero or below cannot derive a frequency; the floor of one
	// draw in four applies
	for _, fps := range []float32{0, -1} {
		draws := 0
		for i := 0; i < 8; i++ {
			if !ct.computeSkip(fps) {
				draws++
			}
		}
		test.ExpectEquality(t, draws, 2)
	}
}

func TestSkipFrequencyFromFPS(t *testing.T) {
	ct, _ := newSkipController(config.SharedConfig{
		Running:     true,
		FastForward: true,
	})

	// 240 fps: next power of two >= 30 is 32, so one draw in 32
	draws := 0
	for i := 0; i < 64; i++ {
		if !ct.computeSkip(240) {
			draws++
		}
	}
	test.ExpectEquality(t, draws, 2)
}

func TestSkipFrequencyExactPowerOfTwo(t *testing.T) {
	ct, _ := newSkipController(config.SharedConfig{
		Running:     true,
		FastForward: true,
	})

	// 64 fps: fps/8 is exactly 8, which is its own next power of two.
	// one draw in 8, not one in 16
	draws := 0
	for i := 0; i < 32; i++ {
		if !ct.computeSkip(64) {
			draws++
		}
	}
	test.ExpectEquality(t, draws, 4)
}

func TestSkipCounterResets(t *testing.T) {
	ct, store := newSkipController(config.SharedConfig{
		Running:     true,
		FastForward: true,
	})

	// two skips towards the threshold, then fast-forward ends: the
	// counter must not carry over to the next fast-forward
	test.ExpectSuccess(t, ct.computeSkip(0))
	test.ExpectSuccess(t, ct.computeSkip(0))

	snap := store.Snapshot()
	snap.FastForward = false
	store.Apply(snap)
	test.ExpectFailure(t, ct.computeSkip(0))

	snap.FastForward = true
	store.Apply(snap)
	for i := 0; i < 3; i++ {
		test.ExpectSuccess(t, ct.computeSkip(0))
	}
	test.ExpectFailure(t, ct.computeSkip(0))
}
