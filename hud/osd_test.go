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

package hud_test

import (
	"testing"

	"github.com/calluna/retrace/hud"
	"github.com/calluna/retrace/test"
)

func TestMessages(t *testing.T) {
	o := hud.NewOSD()

	test.ExpectEquality(t, len(o.Messages()), 0)

	o.InsertMessage("savestate 1 saved")
	o.InsertMessage("savestate 1 loaded")

	m := o.Messages()
	test.ExpectEquality(t, len(m), 2)
	test.ExpectEquality(t, m[0], "savestate 1 saved")
	test.ExpectEquality(t, m[1], "savestate 1 loaded")
}

func TestWatches(t *testing.T) {
	o := hud.NewOSD()

	o.InsertWatch("0x8000: 12")
	o.InsertWatch("0x8004: 99")
	test.ExpectEquality(t, len(o.Watches()), 2)

	// watches are per-frame
	o.ResetWatches()
	test.ExpectEquality(t, len(o.Watches()), 0)

	o.InsertWatch("0x8000: 13")
	w := o.Watches()
	test.ExpectEquality(t, len(w), 1)
	test.ExpectEquality(t, w[0], "0x8000: 13")
}
