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

package thread

import (
	"io"

	"github.com/bradleyjkemp/memviz"
)

// visualisable is a stable snapshot of the registry for the memviz
// walk. The live maps contain mutexes and the trampolines mutate them
// concurrently, so the dump works from a copy.
type visualisable struct {
	ID       ThreadID
	State    string
	Detached bool
	Quit     bool
}

// Visualise writes a graphviz representation of the registry's slots to
// w. Debugging aid.
func (r *Registry) Visualise(w io.Writer) {
	r.crit.Lock()

	snap := struct {
		Live    []visualisable
		Parked  []visualisable
		Uninit  int
		Spawned int
	}{
		Uninit:  r.uninit,
		Spawned: r.spawned,
	}
	for _, s := range r.slots {
		snap.Live = append(snap.Live, visualisable{
			ID:       s.id,
			State:    s.state.String(),
			Detached: s.detached,
			Quit:     s.quit,
		})
	}
	for _, s := range r.free {
		snap.Parked = append(snap.Parked, visualisable{
			ID:    s.id,
			State: s.state.String(),
			Quit:  s.quit,
		})
	}

	r.crit.Unlock()

	memviz.Map(w, &snap)
}
