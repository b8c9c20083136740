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

package boundary_test

import (
	"net"
	"strings"
	"testing"
	"time"

	"github.com/calluna/retrace/boundary"
	"github.com/calluna/retrace/config"
	"github.com/calluna/retrace/director"
	"github.com/calluna/retrace/input"
	"github.com/calluna/retrace/screen"
	"github.com/calluna/retrace/test"
	"github.com/calluna/retrace/vclock"
	"github.com/calluna/retrace/wire"
)

type mockCheckpointer struct {
	path        string
	index       int32
	checkpoints int
	restores    int
	restoring   bool
}

func (m *mockCheckpointer) SetPath(path string)       { m.path = path }
func (m *mockCheckpointer) SetIndex(index int32)      { m.index = index }
func (m *mockCheckpointer) Checkpoint()               { m.checkpoints++ }
func (m *mockCheckpointer) Restore() error            { m.restores++; return nil }
func (m *mockCheckpointer) RestoreInProgress() bool   { return m.restoring }

type countingPixels struct {
	*screen.Buffer
	captures int
	restores int
}

func (c *countingPixels) Capture() {
	c.captures++
	c.Buffer.Capture()
}

func (c *countingPixels) Restore() {
	c.restores++
	c.Buffer.Restore()
}

type harness struct {
	ct    *boundary.Controller
	sess  *director.Session
	ctl   net.Conn
	cfg   *config.Store
	clk   *vclock.Basic
	draws int
	errCh chan error
}

func newHarness(t *testing.T, cfg config.SharedConfig) *harness {
	t.Helper()

	lib, ctl := net.Pipe()
	t.Cleanup(func() {
		lib.Close()
		ctl.Close()
	})

	h := &harness{
		ctl:   ctl,
		cfg:   config.NewStore(cfg),
		clk:   vclock.NewBasic(vclock.FromDuration(16 * time.Millisecond)),
		sess:  director.NewSession(ctl),
		errCh: make(chan error, 1),
	}
	h.ct = boundary.NewController(wire.NewConn(lib), h.cfg, h.clk)
	return h
}

// runBoundary starts a boundary in the background; the test goroutine
// plays the controller role.
func (h *harness) runBoundary(drawFB bool) {
	go func() {
		h.errCh <- h.ct.RunBoundary(drawFB, func() { h.draws++ })
	}()
}

func (h *harness) finish(t *testing.T) {
	t.Helper()
	test.ExpectSuccess(t, h.sess.EndBoundary())
	test.ExpectSuccess(t, <-h.errCh)
}

func TestScenarioPlainBoundary(t *testing.T) {
	h := newHarness(t, config.SharedConfig{Running: true})

	h.runBoundary(true)
	nfo, err := h.sess.WaitBoundary()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, nfo.Framecount, 1)
	h.finish(t)

	// exactly one draw, framecount advanced, no skip next boundary
	test.ExpectEquality(t, h.draws, 1)
	test.ExpectEquality(t, h.ct.Framecount(), 1)
	test.ExpectEquality(t, h.ct.NondrawFramecount(), 0)
	test.ExpectFailure(t, h.ct.Skipping())
}

func TestNondrawCounting(t *testing.T) {
	h := newHarness(t, config.SharedConfig{Running: true})

	for i, drawFB := range []bool{true, false, false, true, false} {
		h.runBoundary(drawFB)
		nfo, err := h.sess.WaitBoundary()
		test.ExpectSuccess(t, err)
		test.ExpectEquality(t, nfo.Framecount, uint64(i+1))
		h.finish(t)
	}

	test.ExpectEquality(t, h.ct.Framecount(), 5)
	test.ExpectEquality(t, h.ct.NondrawFramecount(), 3)
	test.ExpectEquality(t, h.draws, 2)
}

func TestConfigRoundTrip(t *testing.T) {
	h := newHarness(t, config.SharedConfig{Running: true})

	sent := config.SharedConfig{
		Running:           true,
		FastForward:       true,
		FFMode:            config.FFRenderSkip,
		OSD:               config.OSDFramecount | config.OSDMessages,
		WaitTimeout:       config.WaitFullInfinite,
		InitialFramecount: 33,
	}

	h.runBoundary(true)
	_, err := h.sess.WaitBoundary()
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, h.sess.SendConfig(sent))
	h.finish(t)

	test.ExpectEquality(t, h.cfg.Snapshot(), sent)
}

func TestScenarioRamWatchThenExpose(t *testing.T) {
	h := newHarness(t, config.SharedConfig{
		Running:          true,
		SaveScreenPixels: true,
	})

	pix := &countingPixels{Buffer: screen.NewBuffer(4, 4)}
	h.ct.AddPixelBuffer(pix)
	h.ct.AddWatchHandler(func(query string) string {
		return query + " = 7"
	})

	h.runBoundary(true)
	_, err := h.sess.WaitBoundary()
	test.ExpectSuccess(t, err)

	// both watch queries are answered before any redraw can happen
	ans, err := h.sess.RamWatch("0x1000,4,u32")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, ans, "0x1000,4,u32 = 7")
	test.ExpectEquality(t, pix.restores, 0)

	ans, err = h.sess.RamWatch("0x2000,4,u32")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, ans, "0x2000,4,u32 = 7")

	test.ExpectSuccess(t, h.sess.Expose())
	h.finish(t)

	// exactly one redraw from the expose request
	test.ExpectEquality(t, pix.restores, 1)
	test.ExpectEquality(t, len(h.ct.OSD().Watches()), 2)
}

func TestScenarioRestoreResync(t *testing.T) {
	h := newHarness(t, config.SharedConfig{Running: true})

	chk := &mockCheckpointer{restoring: true}
	pix := &countingPixels{Buffer: screen.NewBuffer(4, 4)}
	h.ct.AddCheckpointer(chk)
	h.ct.AddPixelBuffer(pix)

	h.runBoundary(true)
	_, err := h.sess.WaitBoundary()
	test.ExpectSuccess(t, err)

	resync := config.SharedConfig{Running: true, FastForward: true}
	test.ExpectSuccess(t, h.sess.Savestate())
	fct, err := h.sess.ResyncLoadedState(resync)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, fct.Framecount, 1)
	h.finish(t)

	test.ExpectEquality(t, chk.checkpoints, 1)
	test.ExpectEquality(t, h.cfg.Snapshot(), resync)

	// the resync forces a pixel re-capture even though pixel saving is
	// not configured
	test.ExpectEquality(t, pix.captures, 1)
}

func TestRestoreResyncPrecondition(t *testing.T) {
	h := newHarness(t, config.SharedConfig{Running: true})
	h.ct.AddCheckpointer(&mockCheckpointer{restoring: true})

	pan := make(chan interface{}, 1)
	go func() {
		defer func() { pan <- recover() }()
		_ = h.ct.RunBoundary(true, nil)
	}()

	_, err := h.sess.WaitBoundary()
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, h.sess.Savestate())

	raw := wire.NewConn(h.ctl)
	id, err := raw.ReceiveMessage()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, id, wire.MsgLoadingSucceeded)

	// the resync demands a CONFIG message. anything else trips the
	// documented precondition
	test.ExpectSuccess(t, raw.SendMessage(wire.MsgEndFrameBoundary))

	p := <-pan
	s, ok := p.(string)
	test.ExpectSuccess(t, ok)
	test.ExpectSuccess(t, strings.Contains(s, "CONFIG"))
}

func TestLoadstate(t *testing.T) {
	h := newHarness(t, config.SharedConfig{Running: true})

	chk := &mockCheckpointer{}
	h.ct.AddCheckpointer(chk)

	h.runBoundary(true)
	_, err := h.sess.WaitBoundary()
	test.ExpectSuccess(t, err)

	test.ExpectSuccess(t, h.sess.SavestatePath("/tmp/state.1"))
	test.ExpectSuccess(t, h.sess.SavestateIndex(1))

	fct, err := h.sess.Loadstate()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, fct.Framecount, 1)
	h.finish(t)

	test.ExpectEquality(t, chk.restores, 1)
	test.ExpectEquality(t, chk.path, "/tmp/state.1")
	test.ExpectEquality(t, chk.index, 1)
}

func TestQuitRequest(t *testing.T) {
	h := newHarness(t, config.SharedConfig{Running: true})

	test.ExpectFailure(t, h.ct.ShouldQuit())

	h.runBoundary(true)
	_, err := h.sess.WaitBoundary()
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, h.sess.Quit())
	h.finish(t)

	test.ExpectSuccess(t, h.ct.ShouldQuit())
}

func TestInputEventSync(t *testing.T) {
	h := newHarness(t, config.SharedConfig{Running: true})

	var ai input.AllInputs
	ai.Keyboard[0] = 'z'

	// first boundary after the initial framecount: controller-added
	// events fire alongside the key edge
	h.runBoundary(true)
	_, err := h.sess.WaitBoundary()
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, h.sess.SendInputs(ai))
	h.finish(t)

	test.ExpectEquality(t, h.ct.Inputs().Committed(), ai)
}

func TestAlertAndGameInfo(t *testing.T) {
	h := newHarness(t, config.SharedConfig{Running: true})

	h.ct.Alert("something happened")
	h.ct.SetGameInfo(wire.GameInfo{Video: wire.SurfaceSDL2, Audio: wire.SurfaceUnknown})

	h.runBoundary(true)
	nfo, err := h.sess.WaitBoundary()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(nfo.Alerts), 1)
	test.ExpectEquality(t, nfo.Alerts[0], "something happened")
	test.ExpectInequality(t, nfo.GameInfo, nil)
	test.ExpectEquality(t, nfo.GameInfo.Video, wire.SurfaceSDL2)
	h.finish(t)

	// game info is one-shot
	h.runBoundary(true)
	nfo, err = h.sess.WaitBoundary()
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, nfo.GameInfo, (*wire.GameInfo)(nil))
	h.finish(t)
}

func TestBacktrackOnlyAfterSavestate(t *testing.T) {
	h := newHarness(t, config.SharedConfig{Running: true})
	h.ct.AddCheckpointer(&mockCheckpointer{})

	// requested before any savestate: suppressed
	h.ct.RequestBacktrackSavestate()
	h.runBoundary(true)
	nfo, err := h.sess.WaitBoundary()
	test.ExpectSuccess(t, err)
	test.ExpectFailure(t, nfo.BacktrackRequested)
	test.ExpectSuccess(t, h.sess.Savestate())
	h.finish(t)

	// requested after a savestate: honoured
	h.ct.RequestBacktrackSavestate()
	h.runBoundary(true)
	nfo, err = h.sess.WaitBoundary()
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, nfo.BacktrackRequested)
	h.finish(t)
}

func TestOSDMessage(t *testing.T) {
	h := newHarness(t, config.SharedConfig{Running: true})

	h.runBoundary(true)
	_, err := h.sess.WaitBoundary()
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, h.sess.OSDMessage("saving movie"))
	h.finish(t)

	m := h.ct.OSD().Messages()
	test.ExpectEquality(t, len(m), 1)
	test.ExpectEquality(t, m[0], "saving movie")
}

func TestUnknownMessageAbortsLoop(t *testing.T) {
	h := newHarness(t, config.SharedConfig{Running: true})

	h.runBoundary(true)
	_, err := h.sess.WaitBoundary()
	test.ExpectSuccess(t, err)

	// an outbound-only tag is nonsense in the inbound command loop. the
	// boundary logs and returns rather than crashing
	test.ExpectSuccess(t, wire.NewConn(h.ctl).SendMessage(wire.MsgStartFrameBoundary))
	test.ExpectSuccess(t, <-h.errCh)
}
