/*
 * dalvik - a Dalvik-compatible bytecode virtual machine
 * Monitor & wait/notify: a reentrant-safe monitor where same-thread
 * re-entry is an immediate acquisition, modeled on an owner-thread-id
 * tracking scheme.
 */

// Package monitor implements per-object mutual exclusion with wait/notify,
// operating on the raw synchronization state embedded in object.Object.
package monitor

import (
	"errors"
	"time"

	"dalvik/object"
)

var (
	// ErrNotOwner is returned by Exit/Wait/Notify/NotifyAll when the
	// calling thread does not currently hold the monitor.
	ErrNotOwner = errors.New("monitor: calling thread does not own this monitor")
	// ErrNegativeTimeout is IllegalArgumentException territory: a
	// negative wait timeout is a caller error, not a blocking condition.
	ErrNegativeTimeout = errors.New("monitor: negative wait timeout")
)

// Enter blocks until threadID becomes (or already is) the owner.
// Re-entry by the owning thread is an immediate acquisition.
func Enter(o *object.Object, threadID uint64) {
	m := o.Mon()
	m.Mu.Lock()
	defer m.Mu.Unlock()
	for m.OwnerSet && m.Owner != threadID {
		m.Cond.Wait()
	}
	m.OwnerSet = true
	m.Owner = threadID
}

// Exit releases the monitor. It is an error to call this without owning it.
func Exit(o *object.Object, threadID uint64) error {
	m := o.Mon()
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if !m.OwnerSet || m.Owner != threadID {
		return ErrNotOwner
	}
	m.OwnerSet = false
	m.Cond.Broadcast()
	return nil
}

// IsOwnedBy reports whether threadID currently owns this monitor.
func IsOwnedBy(o *object.Object, threadID uint64) bool {
	m := o.Mon()
	m.Mu.Lock()
	defer m.Mu.Unlock()
	return m.OwnerSet && m.Owner == threadID
}

// Wait atomically releases the monitor, blocks until notified or the
// timeout elapses, then reacquires it. timeoutMs == 0 means wait forever;
// a negative timeout is a caller error.
func Wait(o *object.Object, threadID uint64, timeoutMs int64) error {
	if timeoutMs < 0 {
		return ErrNegativeTimeout
	}
	m := o.Mon()
	m.Mu.Lock()
	if !m.OwnerSet || m.Owner != threadID {
		m.Mu.Unlock()
		return ErrNotOwner
	}
	woken := make(chan struct{})
	m.Waiters = append(m.Waiters, woken)
	m.OwnerSet = false
	m.Cond.Broadcast() // wake any thread parked in Enter()
	m.Mu.Unlock()

	if timeoutMs == 0 {
		<-woken
	} else {
		select {
		case <-woken:
		case <-time.After(time.Duration(timeoutMs) * time.Millisecond):
			m.Mu.Lock()
			removeWaiter(m, woken)
			m.Mu.Unlock()
		}
	}

	Enter(o, threadID)
	return nil
}

func removeWaiter(m *object.Monitor, ch chan struct{}) {
	for i, w := range m.Waiters {
		if w == ch {
			m.Waiters = append(m.Waiters[:i], m.Waiters[i+1:]...)
			return
		}
	}
}

// Notify wakes one waiting thread, if any.
func Notify(o *object.Object, threadID uint64) error {
	m := o.Mon()
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if !m.OwnerSet || m.Owner != threadID {
		return ErrNotOwner
	}
	if len(m.Waiters) > 0 {
		ch := m.Waiters[0]
		m.Waiters = m.Waiters[1:]
		close(ch)
	}
	return nil
}

// NotifyAll wakes every waiting thread.
func NotifyAll(o *object.Object, threadID uint64) error {
	m := o.Mon()
	m.Mu.Lock()
	defer m.Mu.Unlock()
	if !m.OwnerSet || m.Owner != threadID {
		return ErrNotOwner
	}
	for _, ch := range m.Waiters {
		close(ch)
	}
	m.Waiters = nil
	return nil
}
