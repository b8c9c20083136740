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
	"fmt"

	"github.com/calluna/retrace/config"
	"github.com/calluna/retrace/input"
	"github.com/calluna/retrace/logger"
	"github.com/calluna/retrace/wire"
)

// RunBoundary executes one frame boundary conversation with the
// controller. drawFB says whether this boundary represents an actual
// draw; draw is the real presentation call, invoked at most once during
// the render phase plus once per redraw request.
//
// A non-nil error means the channel to the controller failed. That is
// fatal to the session: the controller is the sole authority the
// boundary defers to and a broken channel cannot be locally recovered.
func (ct *Controller) RunBoundary(drawFB bool, draw func()) error {
	ct.draw = draw
	defer func() { ct.draw = nil }()

	// 1. bookkeeping
	ct.framecount++
	if !drawFB {
		ct.nondrawFramecount++
	}

	snap := ct.cfg.Snapshot()

	fps := ct.fps
	lfps := ct.lfps
	if drawFB {
		fps, lfps = ct.computeFPS(snap)
	}

	// 2. advance the virtual clock. delay flushing and audio mixing are
	// the clock's business
	ct.clock.EnterBoundary()
	defer ct.clock.ExitBoundary()

	// 3. outbound handshake
	if err := ct.handshake(fps, lfps); err != nil {
		return err
	}

	// 4. every ram-watch query is answered before the render phase can
	// proceed. the message that ends the drain is the first command
	pending, err := ct.receiveWatches()
	if err != nil {
		return err
	}

	// 5. render
	ct.render(drawFB)

	// 6. command loop, until the end-of-boundary marker
	if err := ct.commandLoop(pending); err != nil {
		return err
	}

	// 7. event and input sync
	ct.syncEvents()

	// 8. frame-skip decision for the next boundary
	ct.skipping = ct.computeSkip(fps)

	return nil
}

func (ct *Controller) handshake(fps float32, lfps float32) error {
	for _, a := range ct.drainAlerts() {
		if err := ct.conn.SendMessage(wire.MsgAlert); err != nil {
			return err
		}
		if err := ct.conn.SendString(a); err != nil {
			return err
		}
	}

	if err := ct.sendFramecountTime(); err != nil {
		return err
	}

	if ct.sendGameInfo {
		ct.sendGameInfo = false
		if err := ct.conn.SendMessage(wire.MsgGameInfo); err != nil {
			return err
		}
		if err := ct.conn.SendData(ct.gameInfo); err != nil {
			return err
		}
	}

	if err := ct.conn.SendMessage(wire.MsgFPS); err != nil {
		return err
	}
	if err := ct.conn.SendData(wire.FPS{Real: fps, Logical: lfps}); err != nil {
		return err
	}

	// a backtrack savestate before any manual savestate would be a
	// wasted snapshot
	if ct.takeBacktrack() && ct.didASavestate {
		if err := ct.conn.SendMessage(wire.MsgDoBacktrackSavestate); err != nil {
			return err
		}
	}

	return ct.conn.SendMessage(wire.MsgStartFrameBoundary)
}

func (ct *Controller) sendFramecountTime() error {
	if err := ct.conn.SendMessage(wire.MsgFramecountTime); err != nil {
		return err
	}
	t := ct.clock.Ticks()
	return ct.conn.SendData(wire.FramecountTime{
		Framecount: ct.framecount,
		Sec:        t.Sec,
		Nsec:       t.Nsec,
	})
}

// receiveWatches answers ram-watch queries until a message of any other
// type arrives. That message belongs to the command loop and is returned
// for it to dispatch.
func (ct *Controller) receiveWatches() (wire.MsgID, error) {
	ct.osd.ResetWatches()

	for {
		id, err := ct.conn.ReceiveMessage()
		if err != nil {
			return 0, err
		}
		if id != wire.MsgRAMWatch {
			return id, nil
		}

		query, err := ct.conn.ReceiveString()
		if err != nil {
			return 0, err
		}

		var answer string
		if ct.watch != nil {
			answer = ct.watch(query)
		}
		ct.osd.InsertWatch(answer)

		if err := ct.conn.SendMessage(wire.MsgRAMWatch); err != nil {
			return 0, err
		}
		if err := ct.conn.SendString(answer); err != nil {
			return 0, err
		}
	}
}

func (ct *Controller) render(drawFB bool) {
	snap := ct.cfg.Snapshot()

	if snap.SaveScreenPixels && ct.pixels != nil {
		ct.pixels.Capture()
	}

	// the OSD goes into the dump, or on top of it, per configuration
	if snap.OSDEncode {
		ct.compositeOSD(snap, nil)
	}

	ct.encodeFrame(snap)

	if !snap.OSDEncode {
		ct.compositeOSD(snap, nil)
	}

	if drawFB && !ct.skipping && ct.draw != nil {
		ct.draw()
	}
}

func (ct *Controller) encodeFrame(snap config.SharedConfig) {
	if !snap.AVDumping || ct.encoder == nil {
		return
	}

	if !ct.encoder.Dumping() {
		if ct.dumpPath == "" {
			return
		}
		w, h := 0, 0
		if ct.pixels != nil {
			w, h = ct.pixels.Dimensions()
		}
		if ct.dumpOptions != "" {
			// encoder options are accepted over the wire but the raw
			// sink has nothing to configure
			logger.Logf(logger.Allow, "boundary", "dump options ignored: %s", ct.dumpOptions)
		}
		if err := ct.encoder.Start(ct.dumpPath, w, h); err != nil {
			logger.Logf(logger.Allow, "boundary", "dump not started: %v", err)
			return
		}
	}

	if ct.pixels != nil {
		if err := ct.encoder.EncodeFrame(ct.pixels.Working()); err != nil {
			logger.Logf(logger.Allow, "boundary", "dump frame: %v", err)
		}
	}
}

func (ct *Controller) compositeOSD(snap config.SharedConfig, preview *input.AllInputs) {
	if ct.renderer == nil {
		return
	}

	if snap.OSD&config.OSDFramecount != 0 {
		ct.renderer.RenderFrame(ct.framecount, ct.nondrawFramecount)
	}
	if snap.OSD&config.OSDInputs != 0 {
		ct.renderer.RenderInputs(ct.inputs.Committed())
		if preview != nil {
			ct.renderer.RenderPreviewInputs(*preview)
		}
	}
	if snap.OSD&config.OSDMessages != 0 {
		ct.renderer.RenderMessages(ct.osd.Messages())
	}
	if snap.OSD&config.OSDWatches != 0 {
		ct.renderer.RenderWatches(ct.osd.Watches())
	}
}

// screenRedraw recomposites and redraws the captured frame without
// advancing any frame state. Only possible when pixel capture is
// enabled.
func (ct *Controller) screenRedraw(preview *input.AllInputs) {
	snap := ct.cfg.Snapshot()
	if !snap.SaveScreenPixels || ct.pixels == nil {
		return
	}

	ct.pixels.Restore()
	ct.compositeOSD(snap, preview)
	if ct.draw != nil {
		ct.draw()
	}
}

// commandLoop dispatches controller commands until the end-of-boundary
// marker. first is the message that ended the ram-watch drain.
func (ct *Controller) commandLoop(first wire.MsgID) error {
	id := first

	for {
		switch id {
		case wire.MsgUserQuit:
			if err := ct.queue.PushQuit(); err != nil {
				logger.Logf(logger.Allow, "boundary", "quit event: %v", err)
			}
			ct.setExiting()

		case wire.MsgConfig:
			var c config.SharedConfig
			if err := ct.conn.ReceiveData(&c); err != nil {
				return err
			}
			ct.cfg.Apply(c)

		case wire.MsgDumpFile:
			path, err := ct.conn.ReceiveString()
			if err != nil {
				return err
			}
			options, err := ct.conn.ReceiveString()
			if err != nil {
				return err
			}
			ct.dumpPath = path
			ct.dumpOptions = options

		case wire.MsgAllInputs:
			var ai input.AllInputs
			if err := ct.conn.ReceiveData(&ai); err != nil {
				return err
			}
			ct.inputs.Set(ai)

		case wire.MsgExpose:
			ct.screenRedraw(nil)

		case wire.MsgPreviewInputs:
			var ai input.AllInputs
			if err := ct.conn.ReceiveData(&ai); err != nil {
				return err
			}
			ct.screenRedraw(&ai)

		case wire.MsgSavestatePath:
			path, err := ct.conn.ReceiveString()
			if err != nil {
				return err
			}
			if ct.checkpointer != nil {
				ct.checkpointer.SetPath(path)
			}

		case wire.MsgSavestateIndex:
			var idx int32
			if err := ct.conn.ReceiveData(&idx); err != nil {
				return err
			}
			if ct.checkpointer != nil {
				ct.checkpointer.SetIndex(idx)
			}

		case wire.MsgSavestate:
			if err := ct.savestate(); err != nil {
				return err
			}

		case wire.MsgLoadstate:
			if err := ct.loadstate(); err != nil {
				return err
			}

		case wire.MsgStopEncode:
			if ct.encoder != nil {
				if err := ct.encoder.Stop(); err != nil {
					logger.Logf(logger.Allow, "boundary", "stop encode: %v", err)
				}
			}
			snap := ct.cfg.Snapshot()
			snap.AVDumping = false
			ct.cfg.Apply(snap)

		case wire.MsgOSDMessage:
			text, err := ct.conn.ReceiveString()
			if err != nil {
				return err
			}
			ct.osd.InsertMessage(text)
			ct.screenRedraw(nil)

		case wire.MsgEndFrameBoundary:
			return nil

		default:
			// a protocol error aborts the loop, not the process
			logger.Logf(logger.Allow, "boundary", "unexpected message in command loop: %s", id)
			return nil
		}

		var err error
		id, err = ct.conn.ReceiveMessage()
		if err != nil {
			return err
		}
	}
}

// savestate performs a checkpoint. Control returns here both when the
// snapshot is taken and, much later, when it is restored; the two cases
// are told apart by the checkpointer. The restore path renegotiates
// state with the controller: save and restore happen in different
// controller processes so their view of mutable state must be rebuilt.
func (ct *Controller) savestate() error {
	if ct.checkpointer == nil {
		logger.Log(logger.Allow, "boundary", "savestate requested with no checkpointer")
		return nil
	}

	ct.checkpointer.Checkpoint()
	ct.didASavestate = true

	if !ct.checkpointer.RestoreInProgress() {
		return nil
	}

	// resuming from a restore
	if err := ct.conn.SendMessage(wire.MsgLoadingSucceeded); err != nil {
		return err
	}

	id, err := ct.conn.ReceiveMessage()
	if err != nil {
		return err
	}
	if id != wire.MsgConfig {
		// a documented precondition of the resync sequence, not a
		// recoverable protocol error
		panic(fmt.Sprintf("boundary: restore resync expected %s, got %s", wire.MsgConfig, id))
	}
	var c config.SharedConfig
	if err := ct.conn.ReceiveData(&c); err != nil {
		return err
	}
	ct.cfg.Apply(c)

	if err := ct.sendFramecountTime(); err != nil {
		return err
	}

	if ct.pixels != nil {
		ct.pixels.Capture()
	}

	return nil
}

// loadstate performs a restore. Success or not, the controller expects
// exactly one frame count and time reply per restore request.
func (ct *Controller) loadstate() error {
	if ct.checkpointer != nil {
		if err := ct.checkpointer.Restore(); err != nil {
			logger.Logf(logger.Allow, "boundary", "restore: %v", err)
		}
	} else {
		logger.Log(logger.Allow, "boundary", "loadstate requested with no checkpointer")
	}

	return ct.sendFramecountTime()
}

// syncEvents pushes the synthetic events derived from the input
// snapshot the controller committed this boundary.
func (ct *Controller) syncEvents() {
	snap := ct.cfg.Snapshot()
	if snap.DebugNativeEvents {
		// the target sees the real window-system event stream
		return
	}

	controllerAdded := ct.framecount == snap.InitialFramecount+1
	for _, ev := range ct.inputs.Events(controllerAdded) {
		if err := ct.queue.Push(ev); err != nil {
			logger.Logf(logger.Allow, "boundary", "event push: %v", err)
		}
	}

	if err := ct.queue.Sync(); err != nil {
		logger.Logf(logger.Allow, "boundary", "event sync: %v", err)
	}
}
