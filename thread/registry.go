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

// Package thread virtualizes thread creation for the target program.
//
// Programs that create and destroy short-lived threads are a problem for
// deterministic replay: every real thread that comes and goes perturbs
// the memory layout that savestates capture. The Registry therefore
// recycles threads. A finished thread parks its underlying OS thread in
// a WaitingForWork slot; the next Create hands the slot a new routine
// instead of starting a real thread. With a recycling registry the
// number of OS threads ever started is bounded by the high-water mark of
// concurrently live virtual threads.
//
// Each virtual thread runs on a goroutine pinned to its OS thread for
// the slot's whole lifetime. Exit unwinds the routine with a panic that
// only the slot trampoline recovers, so deferred cleanup inside the
// routine still runs but the OS thread survives for recycling.
package thread

import (
	"runtime"
	"sync"
	"time"

	"github.com/calluna/retrace/assert"
	"github.com/calluna/retrace/config"
	"github.com/calluna/retrace/curated"
	"github.com/calluna/retrace/logger"
	"github.com/calluna/retrace/vclock"
)

// interval between state checks when joining a thread that may be
// recycled out from under a native wait
const joinPollInterval = time.Millisecond

// how long a finite-policy deadline wait spends on the real clock before
// the balance is transferred to the virtual clock
const finiteWaitSlice = 100 * time.Millisecond

// StorageResetter clears whatever thread-local state the surrounding
// runtime keeps for the current thread. It is called on a recycled
// thread between routines, before the slot re-registers itself as the
// current thread. Implementations live outside the core.
type StorageResetter interface {
	ResetStorage()
}

// Registry owns every virtual thread of the session.
//
// A single wrapper-execution lock serializes all bookkeeping, mirroring
// the fact that the target program's thread calls are wrapped one at a
// time. Routine execution itself is of course not serialized.
type Registry struct {
	crit sync.Mutex
	cond *sync.Cond

	// live slots by handle and by the goroutine currently running them
	slots   map[ThreadID]*Slot
	current map[uint64]*Slot

	// parked slots available for recycling
	free []*Slot

	nextID ThreadID
	mainID uint64

	// threads created but not yet through trampoline initialisation
	uninit int

	// number of real threads ever started
	spawned int

	shuttingDown bool

	cfg   *config.Store
	clock vclock.Clock

	storage   StorageResetter
	lifecycle func()

	// seam for tests exercising the creation-failure path
	spawn func(func()) error
}

// NewRegistry is the preferred method of initialisation for the Registry
// type. The calling goroutine is recorded as the main thread.
func NewRegistry(cfg *config.Store, clock vclock.Clock) *Registry {
	r := &Registry{
		slots:   make(map[ThreadID]*Slot),
		current: make(map[uint64]*Slot),
		mainID:  assert.GetGoRoutineID(),
		cfg:     cfg,
		clock:   clock,
		spawn: func(fn func()) error {
			go fn()
			return nil
		},
	}
	r.cond = sync.NewCond(&r.crit)
	return r
}

// SetStorageResetter attaches the thread-local storage seam.
func (r *Registry) SetStorageResetter(sr StorageResetter) {
	r.crit.Lock()
	defer r.crit.Unlock()
	r.storage = sr
}

// SetLifecycleHook attaches a function called after every thread
// creation and exit while automatic backtrack savestates are enabled.
// The boundary controller uses it to raise the savestate request.
func (r *Registry) SetLifecycleHook(fn func()) {
	r.crit.Lock()
	defer r.crit.Unlock()
	r.lifecycle = fn
}

// IsMainThread returns true when called from the main thread.
func (r *Registry) IsMainThread() bool {
	return assert.GetGoRoutineID() == r.mainID
}

// CurrentID returns the handle of the virtual thread the caller is
// running on. The second return value is false for unmanaged
// goroutines, including the main thread.
func (r *Registry) CurrentID() (ThreadID, bool) {
	r.crit.Lock()
	defer r.crit.Unlock()
	s, ok := r.current[assert.GetGoRoutineID()]
	if !ok {
		return 0, false
	}
	return s.id, true
}

// Create starts a new virtual thread running the routine. When
// recycling is enabled and a parked slot is available the slot is reused
// and no real thread starts. Create does not return until the thread
// has finished initialising.
func (r *Registry) Create(routine Routine, arg interface{}, detached bool) (ThreadID, error) {
	if routine == nil {
		return 0, curated.Errorf(InvalidArgument)
	}

	r.crit.Lock()

	recycle := r.cfg.Snapshot().RecycleThreads

	var s *Slot
	if recycle && len(r.free) > 0 {
		s = r.free[len(r.free)-1]
		r.free = r.free[:len(r.free)-1]
		logger.Logf(logger.Allow, "thread", "recycling slot for new thread")
	}

	r.nextID++

	if s != nil {
		s.id = r.nextID
		s.routine = routine
		s.arg = arg
		s.retval = nil
		s.detached = detached
		s.quit = false
		s.state = StateUninitialized
		s.finished = make(chan struct{})
		r.slots[s.id] = s
		r.uninit++
		r.cond.Broadcast()
	} else {
		s = &Slot{
			id:       r.nextID,
			routine:  routine,
			arg:      arg,
			detached: detached,
			state:    StateUninitialized,
			finished: make(chan struct{}),
			locals:   make(map[string]interface{}),
		}
		r.slots[s.id] = s
		r.uninit++
		if err := r.spawn(func() { r.trampoline(s) }); err != nil {
			// rollback so the failed creation leaves no trace
			delete(r.slots, s.id)
			r.uninit--
			r.crit.Unlock()
			return 0, curated.Errorf(CreateError, err)
		}
		r.spawned++
	}

	id := s.id

	// wait for the trampoline to pick the routine up
	for s.state == StateUninitialized {
		r.cond.Wait()
	}

	r.crit.Unlock()

	r.noteLifecycle()

	return id, nil
}

// trampoline is the body of the goroutine under every slot. It pins
// itself to an OS thread and then cycles: register as the current
// thread, run the routine, record the exit, park for the next routine.
func (r *Registry) trampoline(s *Slot) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	goid := assert.GetGoRoutineID()

	for {
		r.crit.Lock()
		s.goid = goid
		r.current[goid] = s
		s.state = StateRunning
		r.uninit--
		r.cond.Broadcast()
		r.crit.Unlock()

		ret := s.run()

		r.crit.Lock()
		s.retval = ret
		recycle := r.cfg.Snapshot().RecycleThreads && !r.shuttingDown

		if s.detached {
			// nobody joins a detached thread. reap immediately
			delete(r.slots, s.id)
			if recycle && !s.quit {
				s.state = StateWaitingForWork
				r.free = append(r.free, s)
			} else {
				s.state = StateDead
			}
		} else {
			s.state = StateZombie
			close(s.finished)
		}

		s.clearLocals()
		delete(r.current, goid)
		r.cond.Broadcast()
		r.crit.Unlock()

		r.noteLifecycle()

		// the runtime's idea of the current thread is stale now. clear
		// it before the slot is offered for reuse
		if r.storage != nil {
			r.storage.ResetStorage()
		}

		r.crit.Lock()
		for (s.state == StateZombie || s.state == StateWaitingForWork) && !s.quit {
			r.cond.Wait()
		}
		if s.quit || s.state == StateDead {
			s.state = StateDead
			r.reapLocked(s)
			r.cond.Broadcast()
			r.crit.Unlock()
			return
		}
		// a new routine has been assigned
		r.crit.Unlock()
	}
}

// collectLocked takes the return value of a Zombie slot and either
// offers the slot for recycling or tells its trampoline to die. The
// wrapper-execution lock must be held.
func (r *Registry) collectLocked(s *Slot) interface{} {
	ret := s.retval
	delete(r.slots, s.id)
	if r.cfg.Snapshot().RecycleThreads && !r.shuttingDown {
		s.state = StateWaitingForWork
		r.free = append(r.free, s)
	} else {
		s.quit = true
	}
	r.cond.Broadcast()
	return ret
}

// reapLocked removes a dead slot from all registry structures.
func (r *Registry) reapLocked(s *Slot) {
	delete(r.slots, s.id)
	for i, f := range r.free {
		if f == s {
			r.free = append(r.free[:i], r.free[i+1:]...)
			break
		}
	}
}

// Join waits for the thread to finish and returns its return value. The
// handle is invalid afterwards.
//
// When recycling is enabled the wait is a poll: the slot may be handed a
// new routine the instant it is collected, so there is no stable event
// to block on.
func (r *Registry) Join(id ThreadID) (interface{}, error) {
	r.crit.Lock()

	s, ok := r.slots[id]
	if !ok {
		r.crit.Unlock()
		return nil, curated.Errorf(NoSuchThread)
	}
	if s.detached {
		r.crit.Unlock()
		return nil, curated.Errorf(InvalidArgument)
	}

	if !r.cfg.Snapshot().RecycleThreads {
		fin := s.finished
		r.crit.Unlock()
		<-fin
		r.crit.Lock()
	} else {
		for {
			s, ok = r.slots[id]
			if !ok {
				r.crit.Unlock()
				return nil, curated.Errorf(NoSuchThread)
			}
			if s.state == StateZombie {
				break
			}
			r.crit.Unlock()
			time.Sleep(joinPollInterval)
			r.crit.Lock()
		}
	}

	ret := r.collectLocked(s)
	r.crit.Unlock()
	return ret, nil
}

// TryJoin is Join without the wait. It returns Busy if the thread has
// not finished.
func (r *Registry) TryJoin(id ThreadID) (interface{}, error) {
	r.crit.Lock()
	defer r.crit.Unlock()

	s, ok := r.slots[id]
	if !ok {
		return nil, curated.Errorf(NoSuchThread)
	}
	if s.detached {
		return nil, curated.Errorf(InvalidArgument)
	}
	if s.state != StateZombie {
		return nil, curated.Errorf(Busy)
	}

	return r.collectLocked(s), nil
}

// TimedJoin is Join with a deadline, expressed as a delta on the real
// clock. A malformed delta is an InvalidArgument error. A thread that
// has already finished is collected immediately; otherwise the whole
// deadline is slept on the real clock and the thread is checked exactly
// once more, with expiry reported as TimedOut.
func (r *Registry) TimedJoin(id ThreadID, timeout vclock.Ticks) (interface{}, error) {
	if !timeout.Valid() {
		return nil, curated.Errorf(InvalidArgument)
	}

	r.crit.Lock()
	s, ok := r.slots[id]
	if !ok {
		r.crit.Unlock()
		return nil, curated.Errorf(NoSuchThread)
	}
	if s.detached {
		r.crit.Unlock()
		return nil, curated.Errorf(InvalidArgument)
	}
	if s.state == StateZombie {
		ret := r.collectLocked(s)
		r.crit.Unlock()
		return ret, nil
	}
	r.crit.Unlock()

	time.Sleep(timeout.Duration())

	r.crit.Lock()
	defer r.crit.Unlock()

	// the slot may have been collected, or even recycled out from under
	// the handle, while we slept
	s, ok = r.slots[id]
	if !ok {
		return nil, curated.Errorf(NoSuchThread)
	}
	if s.detached {
		return nil, curated.Errorf(InvalidArgument)
	}
	if s.state != StateZombie {
		return nil, curated.Errorf(TimedOut)
	}
	return r.collectLocked(s), nil
}

// Detach marks the thread as never-joined. A thread that has already
// finished is reaped immediately, discarding its return value.
func (r *Registry) Detach(id ThreadID) error {
	r.crit.Lock()
	defer r.crit.Unlock()

	s, ok := r.slots[id]
	if !ok {
		return curated.Errorf(NoSuchThread)
	}
	if s.detached {
		return curated.Errorf(InvalidArgument)
	}

	if s.state == StateZombie {
		_ = r.collectLocked(s)
		return nil
	}

	s.detached = true
	return nil
}

// Exit ends the calling virtual thread with the given return value.
// Deferred functions inside the routine run as normal; the unwind stops
// at the slot trampoline so the underlying thread survives for
// recycling. Calling Exit from an unmanaged goroutine is a programming
// error and crashes the program.
func (r *Registry) Exit(retval interface{}) {
	r.crit.Lock()
	_, managed := r.current[assert.GetGoRoutineID()]
	r.crit.Unlock()

	if !managed {
		logger.Log(logger.Allow, "thread", "exit from unmanaged goroutine")
	}
	panic(exitSignal{retval: retval})
}

// SetLocal stores a value in the calling thread's slot-tracked storage.
// The storage is cleared when the routine ends, before the slot can be
// recycled.
func (r *Registry) SetLocal(key string, value interface{}) {
	r.crit.Lock()
	defer r.crit.Unlock()
	s, ok := r.current[assert.GetGoRoutineID()]
	if !ok {
		return
	}
	s.locals[key] = value
}

// Local retrieves a value from the calling thread's slot-tracked
// storage.
func (r *Registry) Local(key string) (interface{}, bool) {
	r.crit.Lock()
	defer r.crit.Unlock()
	s, ok := r.current[assert.GetGoRoutineID()]
	if !ok {
		return nil, false
	}
	v, ok := s.locals[key]
	return v, ok
}

// CondWait waits on the condition without a deadline.
func (r *Registry) CondWait(c *Cond, mu *sync.Mutex) {
	c.Wait(mu)
}

// CondTimedWait waits on the condition with a deadline, applying the
// configured wait policy.
//
// On the main thread a native deadline is a determinism hazard: whether
// the wait times out depends on real scheduling. Under the Finite policy
// the wait spends a short slice on the real clock and, on expiry, the
// unspent balance is transferred to the virtual clock so that virtual
// time still accounts for the full wait; one further real slice then
// runs before the wait reports timing out. FullInfinite transfers the
// whole delta up front and then waits with no deadline at all.
func (r *Registry) CondTimedWait(c *Cond, mu *sync.Mutex, timeout vclock.Ticks) error {
	if !timeout.Valid() {
		return curated.Errorf(InvalidArgument)
	}

	policy := r.cfg.Snapshot().WaitTimeout

	if !r.IsMainThread() || policy == config.WaitNative {
		if c.WaitTimeout(mu, timeout.Duration()) {
			return curated.Errorf(TimedOut)
		}
		return nil
	}

	switch policy {
	case config.WaitFinite:
		d := timeout.Duration()
		if d <= finiteWaitSlice {
			if c.WaitTimeout(mu, d) {
				return curated.Errorf(TimedOut)
			}
			return nil
		}
		if !c.WaitTimeout(mu, finiteWaitSlice) {
			return nil
		}
		r.clock.AddDelay(vclock.FromDuration(d - finiteWaitSlice))

		// one more real slice after the transfer. a signal racing the
		// expiry of the first slice is still honoured
		if c.WaitTimeout(mu, finiteWaitSlice) {
			return curated.Errorf(TimedOut)
		}
		return nil

	case config.WaitFullInfinite:
		r.clock.AddDelay(timeout)
		c.Wait(mu)
		return nil
	}

	return curated.Errorf(InvalidArgument)
}

// Cancel is accepted but not acted on: asynchronous cancellation points
// cannot be replayed deterministically. The request is logged so a
// session relying on it is visible.
func (r *Registry) Cancel(id ThreadID) error {
	r.crit.Lock()
	defer r.crit.Unlock()
	if _, ok := r.slots[id]; !ok {
		return curated.Errorf(NoSuchThread)
	}
	logger.Logf(logger.Allow, "thread", "cancel request for thread %d ignored", id)
	return nil
}

// SetCancelState is accepted but not acted on. See Cancel.
func (r *Registry) SetCancelState(enable bool) {
	logger.Logf(logger.Allow, "thread", "cancel state change (enable=%v) ignored", enable)
}

// SetCancelType is accepted but not acted on. See Cancel.
func (r *Registry) SetCancelType(asynchronous bool) {
	logger.Logf(logger.Allow, "thread", "cancel type change (async=%v) ignored", asynchronous)
}

// TestCancel is accepted but not acted on. See Cancel.
func (r *Registry) TestCancel() {
}

// WaitInitialized blocks until every created thread has passed through
// trampoline initialisation.
func (r *Registry) WaitInitialized() {
	r.crit.Lock()
	defer r.crit.Unlock()
	for r.uninit > 0 {
		r.cond.Wait()
	}
}

// Shutdown tells every slot, parked or live, to die and waits for them.
// Threads still running their routine are waited for; the registry
// cannot interrupt them.
func (r *Registry) Shutdown() {
	r.crit.Lock()
	defer r.crit.Unlock()

	r.shuttingDown = true
	for _, s := range r.slots {
		s.quit = true
	}
	for _, s := range r.free {
		s.quit = true
	}
	r.cond.Broadcast()

	for len(r.slots) > 0 || len(r.free) > 0 {
		r.cond.Wait()
	}
}

func (r *Registry) noteLifecycle() {
	r.crit.Lock()
	fn := r.lifecycle
	r.crit.Unlock()

	if fn == nil {
		return
	}
	if !r.cfg.Snapshot().BacktrackSavestate {
		return
	}
	fn()
}
