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

package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/calluna/retrace/config"
	"github.com/calluna/retrace/test"
)

func TestStoreReplace(t *testing.T) {
	s := config.NewStore(config.SharedConfig{Running: true})

	// a fresh store is clean
	test.ExpectFailure(t, s.Dirty())

	next := config.SharedConfig{
		Running:     true,
		FastForward: true,
		WaitTimeout: config.WaitFinite,
	}
	s.Apply(next)

	// the snapshot is the whole record that was applied
	test.ExpectEquality(t, s.Snapshot(), next)

	// dirty is reported once
	test.ExpectSuccess(t, s.Dirty())
	test.ExpectFailure(t, s.Dirty())
}

func TestLoad(t *testing.T) {
	p := filepath.Join(t.TempDir(), "retrace.cue")
	src := `
Running: true
RecycleThreads: true
OSD: 3
InitialFramecount: 100
`
	err := os.WriteFile(p, []byte(src), 0644)
	test.ExpectSuccess(t, err)

	cfg, err := config.Load(p)
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, cfg.Running)
	test.ExpectSuccess(t, cfg.RecycleThreads)
	test.ExpectEquality(t, cfg.OSD, config.OSDFramecount|config.OSDInputs)
	test.ExpectEquality(t, cfg.InitialFramecount, 100)

	// unspecified fields keep their zero value
	test.ExpectFailure(t, cfg.FastForward)
}

func TestLoadErrors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "no such file"))
	test.ExpectFailure(t, err)

	p := filepath.Join(t.TempDir(), "bad.cue")
	err = os.WriteFile(p, []byte("Running: }{"), 0644)
	test.ExpectSuccess(t, err)

	_, err = config.Load(p)
	test.ExpectFailure(t, err)
}
