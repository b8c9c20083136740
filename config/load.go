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

package config

import (
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/calluna/retrace/curated"
)

// sentinel for config file loading errors.
const LoadError = "config: %v"

// Load reads an initial SharedConfig from a CUE file. Fields absent from
// the file keep their zero value. Once the session is attached the record
// is only ever replaced through the wire protocol; the file is read
// exactly once at startup.
func Load(path string) (SharedConfig, error) {
	var cfg SharedConfig

	content, err := os.ReadFile(path)
	if err != nil {
		return cfg, curated.Errorf(LoadError, err)
	}

	ctx := cuecontext.New()
	value := ctx.CompileBytes(content, cue.Filename(path))
	if err := value.Err(); err != nil {
		return cfg, curated.Errorf(LoadError, err)
	}

	if err := value.Decode(&cfg); err != nil {
		return cfg, curated.Errorf(LoadError, err)
	}

	return cfg, nil
}
