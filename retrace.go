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

package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/calluna/retrace/avdump"
	"github.com/calluna/retrace/boundary"
	"github.com/calluna/retrace/config"
	"github.com/calluna/retrace/curated"
	"github.com/calluna/retrace/director"
	"github.com/calluna/retrace/events"
	"github.com/calluna/retrace/input"
	"github.com/calluna/retrace/logger"
	"github.com/calluna/retrace/modalflag"
	"github.com/calluna/retrace/movie"
	"github.com/calluna/retrace/screen"
	"github.com/calluna/retrace/statsview"
	"github.com/calluna/retrace/thread"
	"github.com/calluna/retrace/vclock"
	"github.com/calluna/retrace/version"
	"github.com/calluna/retrace/wire"
)

func main() {
	md := &modalflag.Modes{Output: os.Stdout}
	md.NewArgs(os.Args[1:])
	md.AddSubModes("RUN", "VERSION")

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		os.Exit(0)
	case modalflag.ParseError:
		fmt.Printf("* %v\n", err)
		os.Exit(10)
	}

	switch md.Mode() {
	case "RUN":
		err = run(md)
	case "VERSION":
		err = printVersion(md)
	}

	if err != nil {
		fmt.Printf("* error in %s mode: %v\n", md, err)
		os.Exit(20)
	}
}

func printVersion(md *modalflag.Modes) error {
	md.NewMode()
	revision := md.AddBool("v", false, "display revision information")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	vrs, rev, _ := version.Version()
	fmt.Printf("%s %s\n", version.ApplicationName, vrs)
	if *revision {
		fmt.Printf("  %s\n", rev)
	}

	return nil
}

// run attaches the director to a demonstration target in the same
// process. The two halves are joined with a net.Pipe so the complete
// wire protocol is exercised, the same as it would be over a socket to a
// real intercepted program.
func run(md *modalflag.Modes) error {
	md.NewMode()

	confFile := md.AddString("config", "", "path to CUE configuration file")
	log := md.AddBool("log", false, "echo debugging log to stdout")
	stats := md.AddBool("stats", false, "run statistics server")
	playback := md.AddString("playback", "", "input movie to play back")
	dump := md.AddString("dump", "", "base path for audio/video dump files")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if *log {
		logger.SetEcho(os.Stdout)
	} else {
		logger.SetEcho(nil)
	}

	if *stats {
		if statsview.Available() {
			statsview.Launch(os.Stdout)
		} else {
			fmt.Println("* statsview not in this build (use the statsview build tag)")
		}
	}

	cfg := config.SharedConfig{
		RecycleThreads:   true,
		SaveScreenPixels: true,
		OSD:              config.OSDFramecount | config.OSDMessages,
		WaitTimeout:      config.WaitFinite,
	}
	if *confFile != "" {
		cfg, err = config.Load(*confFile)
		if err != nil {
			return err
		}
	}
	if *dump != "" {
		cfg.AVDumping = true
	}

	target, ctl := net.Pipe()

	errs := make(chan error, 1)
	go func() {
		errs <- runTarget(target, cfg)
	}()

	sess := director.NewSession(ctl)

	// the first boundary establishes the session: the configuration
	// record crosses the wire before anything else consults it
	if _, err := sess.WaitBoundary(); err != nil {
		return err
	}
	if err := sess.SendConfig(cfg); err != nil {
		return err
	}
	if *dump != "" {
		if err := sess.SetDumpFile(*dump, ""); err != nil {
			return err
		}
	}
	if err := sess.EndBoundary(); err != nil {
		return err
	}

	if *playback != "" {
		plb, err := movie.NewPlayback(*playback, "")
		if err != nil {
			return err
		}
		fmt.Printf("playing back %d frames\n", plb.NumFrames())
		if err := playMovie(sess, plb); err != nil {
			return err
		}
		return <-errs
	}

	tm, err := director.NewTerm()
	if err != nil {
		return err
	}
	if err := sess.Interact(tm, cfg); err != nil {
		return err
	}

	return <-errs
}

// playMovie feeds a recorded input sequence to the target, one frame per
// boundary, and quits when the movie is exhausted.
func playMovie(sess *director.Session, plb *movie.Playback) error {
	for {
		if _, err := sess.WaitBoundary(); err != nil {
			return err
		}

		ai, ok := plb.Next()
		if !ok {
			if err := sess.Quit(); err != nil {
				return err
			}
			return sess.EndBoundary()
		}

		if err := sess.SendInputs(ai); err != nil {
			return err
		}
		if err := sess.EndBoundary(); err != nil {
			return err
		}
	}
}

const (
	demoWidth  = 320
	demoHeight = 240
	demoFPS    = 60
)

// demoGame is the demonstration target: a colour cycle rendered into a
// pixel buffer, one step per frame. It stands in for the intercepted
// program so that every part of the session can be driven without one.
type demoGame struct {
	pixels *screen.Buffer
	queue  *events.Memory
	phase  uint8

	// in-memory savestates, keyed by path and index
	saves map[string]uint8
	path  string
	index int32
}

// renderFrame is a thread.Routine. The demonstration runs it on a fresh
// handle every frame, which exercises thread recycling continuously.
func (g *demoGame) renderFrame(_ interface{}) interface{} {
	pix := g.pixels.Working()
	w, h := g.pixels.Dimensions()

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := (y*w + x) * screen.BytesPerPixel
			pix[o] = uint8(x) + g.phase
			pix[o+1] = uint8(y) + g.phase
			pix[o+2] = g.phase
			pix[o+3] = 255
		}
	}

	g.phase++
	return nil
}

// consumeEvents reacts to the synthesised input events from the previous
// boundary. A key press jolts the colour cycle, making played back input
// visible in the output.
func (g *demoGame) consumeEvents() {
	for _, ev := range g.queue.Pump() {
		if _, ok := ev.(input.EventKeyDown); ok {
			g.phase += 16
		}
	}
}

func (g *demoGame) watch(query string) string {
	if query == "phase" {
		return fmt.Sprintf("%d", g.phase)
	}
	return ""
}

// SetPath implements the boundary.Checkpointer interface.
func (g *demoGame) SetPath(path string) {
	g.path = path
}

// SetIndex implements the boundary.Checkpointer interface.
func (g *demoGame) SetIndex(index int32) {
	g.index = index
}

// Checkpoint implements the boundary.Checkpointer interface.
func (g *demoGame) Checkpoint() {
	g.saves[g.saveKey()] = g.phase
}

// Restore implements the boundary.Checkpointer interface.
func (g *demoGame) Restore() error {
	v, ok := g.saves[g.saveKey()]
	if !ok {
		return curated.Errorf("demo: no such savestate: %s", g.saveKey())
	}
	g.phase = v
	return nil
}

// RestoreInProgress implements the boundary.Checkpointer interface. The
// demonstration restores in place rather than resuming a snapshot, so
// control never re-emerges from Checkpoint().
func (g *demoGame) RestoreInProgress() bool {
	return false
}

func (g *demoGame) saveKey() string {
	return fmt.Sprintf("%s:%d", g.path, g.index)
}

// runTarget is the whole of the demonstration target: frame loop, thread
// registry and boundary controller.
func runTarget(conn net.Conn, cfg config.SharedConfig) error {
	store := config.NewStore(cfg)
	clock := vclock.NewBasic(vclock.FromDuration(time.Second / demoFPS))

	reg := thread.NewRegistry(store, clock)
	defer reg.Shutdown()

	game := &demoGame{
		pixels: screen.NewBuffer(demoWidth, demoHeight),
		queue:  events.NewMemory(),
		saves:  make(map[string]uint8),
	}

	ct := boundary.NewController(wire.NewConn(conn), store, clock)
	ct.AddPixelBuffer(game.pixels)
	ct.AddEventQueue(game.queue)
	ct.AddEncoder(avdump.NewDump())
	ct.AddCheckpointer(game)
	ct.AddWatchHandler(game.watch)
	ct.SetGameInfo(wire.GameInfo{
		Video:    wire.SurfaceSDL2,
		Keyboard: wire.SurfaceSDL2,
	})

	// thread lifecycle events are savestate-worthy moments
	reg.SetLifecycleHook(ct.RequestBacktrackSavestate)

	for !ct.ShouldQuit() {
		game.consumeEvents()

		id, err := reg.Create(game.renderFrame, nil, false)
		if err != nil {
			return err
		}
		if _, err := reg.Join(id); err != nil {
			return err
		}

		if err := ct.RunBoundary(true, func() {}); err != nil {
			return err
		}
	}

	return nil
}
