package monitor

import (
	"testing"
	"time"

	"dalvik/object"
)

// TestMonitorExclusivity: thread A holds the monitor while mutating a
// shared field; thread B blocks on Enter until A releases.
func TestMonitorExclusivity(t *testing.T) {
	obj := object.NewInstance("test/Shared", &fakeProvider{})
	obj.Fields.SetTyped("value", "I", object.Int32(0))

	const threadA, threadB = 1, 2
	bDone := make(chan struct{})

	Enter(obj, threadA)
	obj.SetField("value", object.Int32(42), threadA)

	go func() {
		Enter(obj, threadB)
		obj.SetField("value", object.Int32(43), threadB)
		Exit(obj, threadB)
		close(bDone)
	}()

	time.Sleep(20 * time.Millisecond) // give B a chance to (fail to) race in
	v, _ := obj.GetField("value", threadA)
	if v.AsInt() != 42 {
		t.Fatalf("A should still observe its own write while holding the monitor, got %d", v.AsInt())
	}
	obj.SetField("value", object.Int32(2), threadA)
	Exit(obj, threadA)

	select {
	case <-bDone:
	case <-time.After(time.Second):
		t.Fatal("B never completed after A released the monitor")
	}

	final, _ := obj.GetField("value", 0)
	if final.AsInt() != 43 {
		t.Fatalf("expected B's write to win after both released, got %d", final.AsInt())
	}
}

// TestWaitNotifyAll: a waiter parks on wait(), a notifier writes a
// counter and calls notifyAll after a delay, and the waiter observes
// the counter.
func TestWaitNotifyAll(t *testing.T) {
	obj := object.NewInstance("test/Shared", &fakeProvider{})
	obj.Fields.SetTyped("counter", "I", object.Int32(0))

	const waiter, notifier = 1, 2
	woke := make(chan int32, 1)

	go func() {
		Enter(obj, waiter)
		Wait(obj, waiter, 0)
		v, _ := obj.GetField("counter", waiter)
		Exit(obj, waiter)
		woke <- v.AsInt()
	}()

	time.Sleep(10 * time.Millisecond) // let the waiter park first

	go func() {
		time.Sleep(50 * time.Millisecond)
		Enter(obj, notifier)
		obj.SetField("counter", object.Int32(42), notifier)
		NotifyAll(obj, notifier)
		Exit(obj, notifier)
	}()

	select {
	case v := <-woke:
		if v != 42 {
			t.Fatalf("waiter observed counter=%d, want 42", v)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("waiter never woke")
	}
}

func TestNegativeTimeoutRejected(t *testing.T) {
	obj := object.NewInstance("test/Shared", &fakeProvider{})
	Enter(obj, 1)
	defer Exit(obj, 1)
	if err := Wait(obj, 1, -1); err != ErrNegativeTimeout {
		t.Fatalf("expected ErrNegativeTimeout, got %v", err)
	}
}

type fakeProvider struct{}

func (fakeProvider) DeclaredFields(string) []object.FieldSpec { return nil }
