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

// ThreadID is the virtual thread handle given out by Create. Handles are
// never reused: a recycled slot receives a fresh handle for each routine
// it runs.
type ThreadID uint64

// Routine is the entry point of a virtual thread.
type Routine func(arg interface{}) interface{}

// State is the lifecycle state of a Slot.
type State int

// List of valid State values.
//
// A slot is Uninitialized between Create and the moment its trampoline
// picks the routine up. Zombie means the routine has finished and the
// return value is waiting for a joiner. WaitingForWork is the recycling
// park: the slot's trampoline, and the OS thread under it, is idle and
// ready for the next routine.
const (
	StateUninitialized State = iota
	StateRunning
	StateWaitingForWork
	StateZombie
	StateDead
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateRunning:
		return "running"
	case StateWaitingForWork:
		return "waiting for work"
	case StateZombie:
		return "zombie"
	case StateDead:
		return "dead"
	}
	return "unknown"
}

// Slot is the bookkeeping record for one virtual thread. All fields are
// guarded by the Registry's wrapper-execution lock.
type Slot struct {
	id   ThreadID
	goid uint64

	routine Routine
	arg     interface{}
	retval  interface{}

	state    State
	detached bool
	quit     bool

	// closed when the routine finishes, for joiners that do not poll
	finished chan struct{}

	// slot-tracked thread-local storage, cleared between incarnations
	locals map[string]interface{}
}

// ID returns the slot's current handle.
func (s *Slot) ID() ThreadID {
	return s.id
}

// exitSignal is the structured-unwind discriminator thrown by Exit and
// recovered only at the trampoline.
type exitSignal struct {
	retval interface{}
}

// run executes the slot's routine, converting an Exit unwind into a
// normal return value. Any other panic propagates.
func (s *Slot) run() (ret interface{}) {
	defer func() {
		if p := recover(); p != nil {
			sig, ok := p.(exitSignal)
			if !ok {
				panic(p)
			}
			ret = sig.retval
		}
	}()
	return s.routine(s.arg)
}

func (s *Slot) clearLocals() {
	for k := range s.locals {
		delete(s.locals, k)
	}
}
