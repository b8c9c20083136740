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
	"sync"
)

// Store owns the process-wide SharedConfig. Updates always replace the
// whole record; readers take a snapshot and never observe a partially
// applied update.
type Store struct {
	mu    sync.Mutex
	cfg   SharedConfig
	dirty bool
}

// NewStore is the preferred method of initialisation for the Store type.
func NewStore(cfg SharedConfig) *Store {
	return &Store{cfg: cfg}
}

// Apply replaces the whole configuration record and marks the store
// dirty.
func (s *Store) Apply(cfg SharedConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.dirty = true
}

// Snapshot returns a copy of the current configuration record.
func (s *Store) Snapshot() SharedConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Dirty reports whether the record has been replaced since the last call
// to Dirty. Consumers that cache derived values (the timer, the wait
// timeout logic) use this to know when to refresh.
func (s *Store) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := s.dirty
	s.dirty = false
	return d
}
