package frame

import (
	"sync"
)

// State is one node of the thread state machine of
type State int32

const (
	NotStarted State = iota
	Running
	SuspendRequested
	Suspended
	Stopped
)

// Thread owns an ordered stack of frames and drives the state machine
// that the garbage collector's stop-the-world phase and `stop()` rely on.
type Thread struct {
	ID   uint64
	Name string

	mu     sync.Mutex
	cond   sync.Cond
	state  State
	frames []*Frame
}

// NewThread allocates a not-yet-started thread.
func NewThread(id uint64, name string) *Thread {
	t := &Thread{ID: id, Name: name, state: NotStarted}
	t.cond.L = &t.mu
	return t
}

// NewFrame pushes frame f onto this thread's stack.
// It does not itself set StaticInitialized — that side effect belongs to
// the caller when the pushed method is <clinit>.
func (t *Thread) NewFrame(f *Frame) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frames = append(t.frames, f)
}

// PushFrame is an alias for NewFrame.
func (t *Thread) PushFrame(f *Frame) { t.NewFrame(f) }

// PopFrame removes and returns the top frame, or nil if the stack is empty.
func (t *Thread) PopFrame() *Frame {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := len(t.frames)
	if n == 0 {
		return nil
	}
	f := t.frames[n-1]
	t.frames = t.frames[:n-1]
	return f
}

// Current returns the top-of-stack frame without popping it, or nil.
func (t *Thread) Current() *Frame {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.frames) == 0 {
		return nil
	}
	return t.frames[len(t.frames)-1]
}

// Depth is the number of live frames; used by the GC root scan and by
// tests.
func (t *Thread) Depth() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.frames)
}

// Snapshot returns a shallow copy of the current frame stack, oldest
// first, for the GC root-marking pass.
func (t *Thread) Snapshot() []*Frame {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*Frame, len(t.frames))
	copy(out, t.frames)
	return out
}

func (t *Thread) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Thread) setState(s State) {
	t.mu.Lock()
	t.state = s
	t.cond.Broadcast()
	t.mu.Unlock()
}

// Start transitions NotStarted -> Running.
func (t *Thread) Start() { t.setState(Running) }

// Suspend requests suspension and blocks until the thread acknowledges by
// transitioning SuspendRequested -> Suspended. It is a
// no-op if the thread has already stopped.
func (t *Thread) Suspend() {
	t.mu.Lock()
	if t.state == Stopped {
		t.mu.Unlock()
		return
	}
	t.state = SuspendRequested
	t.cond.Broadcast()
	for t.state != Suspended && t.state != Stopped {
		t.cond.Wait()
	}
	t.mu.Unlock()
}

// Resume wakes a Suspended thread back to Running and returns without
// waiting for the thread to observe the change.
func (t *Thread) Resume() {
	t.mu.Lock()
	if t.state == Stopped {
		t.mu.Unlock()
		return
	}
	t.state = Running
	t.cond.Broadcast()
	t.mu.Unlock()
}

// Stop marks this thread for termination; it takes effect at the next
// suspension point.
func (t *Thread) Stop() { t.setState(Stopped) }

// CheckSuspend is called at the top of the interpreter loop, between
// instructions. If a suspension has been
// requested, it parks the thread on t.cond until Resume or Stop.
// Returns true if the thread should keep running, false if it has been
// stopped.
func (t *Thread) CheckSuspend() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == SuspendRequested {
		t.state = Suspended
		t.cond.Broadcast()
		for t.state == Suspended {
			t.cond.Wait()
		}
	}
	return t.state != Stopped
}

// FinishIfEmpty transitions Running -> Stopped once the frame stack has
// emptied -- stop() or
// empty stack --> Stopped").
func (t *Thread) FinishIfEmpty() {
	t.mu.Lock()
	empty := len(t.frames) == 0
	t.mu.Unlock()
	if empty {
		t.setState(Stopped)
	}
}
