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

// Package boundary implements the frame boundary: the point, once per
// rendered or logical frame, where the target program pauses and
// negotiates with the external controller.
//
// The main thread calls RunBoundary() from the hooked presentation
// function. One call is one complete conversation: outbound handshake,
// ram-watch drain, render, inbound command loop, event sync, frame-skip
// decision. No second boundary can begin before the controller releases
// the current one with an end-of-boundary message; the whole target
// process effectively pauses here until told to continue.
package boundary

import (
	"sync"

	"github.com/calluna/retrace/avdump"
	"github.com/calluna/retrace/config"
	"github.com/calluna/retrace/events"
	"github.com/calluna/retrace/hud"
	"github.com/calluna/retrace/input"
	"github.com/calluna/retrace/vclock"
	"github.com/calluna/retrace/wire"
)

// Checkpointer is the memory checkpoint/restore collaborator. How a
// snapshot is actually taken is outside this core.
//
// Checkpoint() is the single resumption point for both save and restore:
// after a restore, control re-enters the process at the point of the
// Checkpoint() call that took the snapshot, with RestoreInProgress()
// reporting true.
type Checkpointer interface {
	SetPath(path string)
	SetIndex(index int32)
	Checkpoint()
	Restore() error
	RestoreInProgress() bool
}

// PixelBuffer is the screen capture collaborator.
type PixelBuffer interface {
	Capture()
	Restore()
	Dimensions() (int, int)
	Working() []byte
}

// WatchHandler answers one ram-watch query. The query and answer formats
// are the controller's business; the boundary only transports them.
type WatchHandler func(query string) string

// Controller owns the frame/time state and drives the boundary protocol.
// It is single-writer: only the main thread, inside RunBoundary(), may
// mutate the frame state. The alert queue and the exiting flag are the
// exceptions and carry their own locks.
type Controller struct {
	conn  *wire.Conn
	cfg   *config.Store
	clock vclock.Clock

	inputs *input.State
	osd    *hud.OSD
	queue  events.Queue

	pixels       PixelBuffer
	encoder      avdump.Encoder
	checkpointer Checkpointer
	renderer     hud.Renderer
	watch        WatchHandler

	framecount        uint64
	nondrawFramecount uint64

	// fps computation. see fps.go
	history    [fpsHistorySize]fpsSample
	historyIdx int
	historyLen int
	fps        float32
	lfps       float32
	fpsRefresh int
	sinceFPS   int

	// skip decision carried from the previous boundary
	skipCounter int
	skipping    bool

	// the draw call of the boundary in progress, for redraw requests
	draw func()

	didASavestate bool

	gameInfo     wire.GameInfo
	sendGameInfo bool

	dumpPath    string
	dumpOptions string

	// any thread may queue an alert or request a backtrack savestate;
	// the exiting flag is read by every caller of ShouldQuit
	mu        sync.Mutex
	alerts    []string
	backtrack bool
	exiting   bool
}

// NewController is the preferred method of initialisation for the
// Controller type. The event queue defaults to an in-memory one; attach
// collaborators with the Add functions before the first boundary.
func NewController(conn *wire.Conn, cfg *config.Store, clock vclock.Clock) *Controller {
	return &Controller{
		conn:       conn,
		cfg:        cfg,
		clock:      clock,
		inputs:     input.NewState(),
		osd:        hud.NewOSD(),
		queue:      events.NewMemory(),
		framecount: cfg.Snapshot().InitialFramecount,
		fpsRefresh: initialFPSRefresh,
	}
}

// AddPixelBuffer attaches the screen capture collaborator.
func (ct *Controller) AddPixelBuffer(p PixelBuffer) {
	ct.pixels = p
}

// AddEncoder attaches the audio/video dump sink.
func (ct *Controller) AddEncoder(e avdump.Encoder) {
	ct.encoder = e
}

// AddCheckpointer attaches the memory checkpoint/restore collaborator.
func (ct *Controller) AddCheckpointer(c Checkpointer) {
	ct.checkpointer = c
}

// AddRenderer attaches the on-screen display renderer.
func (ct *Controller) AddRenderer(r hud.Renderer) {
	ct.renderer = r
}

// AddEventQueue replaces the synthetic event queue.
func (ct *Controller) AddEventQueue(q events.Queue) {
	ct.queue = q
}

// AddWatchHandler attaches the ram-watch query handler.
func (ct *Controller) AddWatchHandler(fn WatchHandler) {
	ct.watch = fn
}

// Inputs returns the committed input state.
func (ct *Controller) Inputs() *input.State {
	return ct.inputs
}

// OSD returns the on-screen display state.
func (ct *Controller) OSD() *hud.OSD {
	return ct.osd
}

// Framecount returns the logical frame counter.
func (ct *Controller) Framecount() uint64 {
	return ct.framecount
}

// NondrawFramecount returns the count of boundaries with no draw.
func (ct *Controller) NondrawFramecount() uint64 {
	return ct.nondrawFramecount
}

// Skipping returns the frame-skip decision made at the previous
// boundary: whether the draw of the current frame is suppressed.
func (ct *Controller) Skipping() bool {
	return ct.skipping
}

// SetGameInfo queues the game info record to be sent at the next
// boundary. The record is one-shot: it goes out once per SetGameInfo.
func (ct *Controller) SetGameInfo(gi wire.GameInfo) {
	ct.gameInfo = gi
	ct.sendGameInfo = true
}

// Alert queues a message for the controller, sent ahead of everything
// else at the next boundary. Safe to call from any thread.
func (ct *Controller) Alert(text string) {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.alerts = append(ct.alerts, text)
}

// RequestBacktrackSavestate asks for an automatic savestate at the next
// boundary. The thread layer calls this around thread lifecycle events.
// Safe to call from any thread. The request is only honoured once a
// manual savestate has occurred.
func (ct *Controller) RequestBacktrackSavestate() {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.backtrack = true
}

// ShouldQuit reports whether the controller has requested the target
// program to exit. Callers poll this; the command loop only sets it.
func (ct *Controller) ShouldQuit() bool {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	return ct.exiting
}

func (ct *Controller) drainAlerts() []string {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	a := ct.alerts
	ct.alerts = nil
	return a
}

func (ct *Controller) takeBacktrack() bool {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	b := ct.backtrack
	ct.backtrack = false
	return b
}

func (ct *Controller) setExiting() {
	ct.mu.Lock()
	defer ct.mu.Unlock()
	ct.exiting = true
}
