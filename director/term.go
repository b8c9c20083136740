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

package director

import (
	"fmt"
	"os"

	"github.com/calluna/retrace/config"
	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// Term is a minimal cbreak-mode terminal for interactive frame
// stepping: one keypress, one decision, no line editing.
type Term struct {
	input  *os.File
	output *os.File

	canAttr    unix.Termios
	cbreakAttr unix.Termios
}

// NewTerm is the preferred method of initialisation for the Term type.
func NewTerm() (*Term, error) {
	tm := &Term{
		input:  os.Stdin,
		output: os.Stdout,
	}

	if err := termios.Tcgetattr(tm.input.Fd(), &tm.canAttr); err != nil {
		return nil, err
	}
	tm.cbreakAttr = tm.canAttr
	termios.Cfmakecbreak(&tm.cbreakAttr)

	return tm, nil
}

// CBreakMode puts the terminal into cbreak mode: keys are delivered
// immediately, without echo.
func (tm *Term) CBreakMode() {
	termios.Tcsetattr(tm.input.Fd(), termios.TCIFLUSH, &tm.cbreakAttr)
}

// CanonicalMode restores normal, everyday canonical mode.
func (tm *Term) CanonicalMode() {
	termios.Tcsetattr(tm.input.Fd(), termios.TCIFLUSH, &tm.canAttr)
}

func (tm *Term) readKey() (byte, error) {
	b := make([]byte, 1)
	if _, err := tm.input.Read(b); err != nil {
		return 0, err
	}
	return b[0], nil
}

func (tm *Term) print(s string, a ...interface{}) {
	fmt.Fprintf(tm.output, s, a...)
	tm.output.Sync()
}

// Interact drives the session from the terminal, one keypress per frame
// boundary while paused:
//
//	space  advance one frame
//	r      run/pause
//	f      toggle fast-forward
//	s      savestate, l loadstate
//	m      post an on-screen message
//	q      quit the target and return
//
// While the target is running, boundaries are released immediately and
// the keyboard is not consulted.
func (s *Session) Interact(tm *Term, cfg config.SharedConfig) error {
	tm.CBreakMode()
	defer tm.CanonicalMode()

	running := cfg.Running

	for {
		nfo, err := s.WaitBoundary()
		if err != nil {
			return err
		}

		for _, a := range nfo.Alerts {
			tm.print("\r\n! %s\r\n", a)
		}

		if running {
			// TODO: poll the keyboard without blocking so a running
			// session can be paused from here
			if err := s.EndBoundary(); err != nil {
				return err
			}
			continue
		}

		tm.print("\rframe %d  %.1f fps (%.1f logical) > ", nfo.Framecount, nfo.FPS, nfo.LogicalFPS)

		k, err := tm.readKey()
		if err != nil {
			return err
		}

		switch k {
		case 'q', keyInterrupt:
			if err := s.Quit(); err != nil {
				return err
			}
			if err := s.EndBoundary(); err != nil {
				return err
			}
			tm.print("\r\n")
			return nil

		case 'r':
			running = true
			cfg.Running = true
			if err := s.SendConfig(cfg); err != nil {
				return err
			}

		case 'f':
			cfg.FastForward = !cfg.FastForward
			if err := s.SendConfig(cfg); err != nil {
				return err
			}

		case 's':
			if err := s.Savestate(); err != nil {
				return err
			}

		case 'l':
			if _, err := s.Loadstate(); err != nil {
				return err
			}

		case 'm':
			if err := s.OSDMessage("marker"); err != nil {
				return err
			}
		}

		if err := s.EndBoundary(); err != nil {
			return err
		}
	}
}

// end-of-text character, ctrl-c
const keyInterrupt = 3
