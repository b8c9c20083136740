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

package boundary

import (
	"math"
	"time"

	"github.com/calluna/retrace/config"
	"github.com/calluna/retrace/vclock"
)

const (
	fpsHistorySize = 10

	// boundaries between fps computations. the first computation comes a
	// little later so the history has settled; while fast-forwarding the
	// cadence tightens so the skip decision adapts quickly
	initialFPSRefresh = 15
	normalFPSRefresh  = 10

	// floor for the skip frequency: at most one draw in four
	minSkipFrequency = 4
)

type fpsSample struct {
	frame uint64
	wall  time.Time
	ticks vclock.Ticks
}

// computeFPS refreshes the fps figures from the sample ring every
// fpsRefresh drawn boundaries and returns the current figures. Real fps
// is measured against the wall clock, logical fps against the virtual
// clock.
func (ct *Controller) computeFPS(snap config.SharedConfig) (float32, float32) {
	ct.sinceFPS++
	if ct.sinceFPS < ct.fpsRefresh {
		return ct.fps, ct.lfps
	}
	ct.sinceFPS = 0

	sample := fpsSample{
		frame: ct.framecount,
		wall:  time.Now(),
		ticks: ct.clock.Ticks(),
	}

	if ct.historyLen > 0 {
		oldest := ct.history[ct.oldestIdx()]
		frames := float64(sample.frame - oldest.frame)

		if wall := sample.wall.Sub(oldest.wall).Seconds(); wall > 0 {
			ct.fps = float32(frames / wall)
		}
		if virt := sample.ticks.Sub(oldest.ticks).Duration().Seconds(); virt > 0 {
			ct.lfps = float32(frames / virt)
		}
	}

	ct.history[ct.historyIdx] = sample
	ct.historyIdx = (ct.historyIdx + 1) % fpsHistorySize
	if ct.historyLen < fpsHistorySize {
		ct.historyLen++
	}

	if snap.FastForward && ct.fps > 4 {
		ct.fpsRefresh = int(ct.fps / 4)
	} else {
		ct.fpsRefresh = normalFPSRefresh
	}

	return ct.fps, ct.lfps
}

func (ct *Controller) oldestIdx() int {
	if ct.historyLen < fpsHistorySize {
		return 0
	}
	return ct.historyIdx
}

// computeSkip decides whether the draw of the next boundary is
// suppressed. Skipping is only considered while fast-forwarding a
// running, non-dumping session. The skip frequency is derived from the
// real fps so that roughly eight draws per second stay visible.
func (ct *Controller) computeSkip(fps float32) bool {
	snap := ct.cfg.Snapshot()

	if !snap.FastForward || !snap.Running || snap.AVDumping {
		ct.skipCounter = 0
		return false
	}

	if snap.FFMode&config.FFRenderSkip != 0 {
		return true
	}

	freq := minSkipFrequency
	if fps > 0 {
		// next power of two >= fps/8, read straight off the float
		// exponent. fps is nudged below the target first so an exact
		// power of two maps to itself rather than the one above. fps
		// values small enough to give a non-positive shift fall
		// through to the floor
		bits := math.Float32bits((fps - 1) / 8)
		shift := int(bits>>23) - 126
		if shift > 0 && shift < 31 {
			if f := 1 << shift; f > freq {
				freq = f
			}
		}
	}

	ct.skipCounter++
	if ct.skipCounter >= freq {
		ct.skipCounter = 0
		return false
	}
	return true
}
