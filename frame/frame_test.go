package frame

import (
	"testing"
	"time"

	"dalvik/object"
	"dalvik/registry"
)

func TestRegisterBounds(t *testing.T) {
	f := New(&registry.Method{RegisterSize: 2})
	if err := f.Set(1, object.Int32(5)); err != nil {
		t.Fatalf("in-range write failed: %v", err)
	}
	if err := f.Set(2, object.Int32(5)); err == nil {
		t.Fatal("expected out-of-range write to be rejected")
	}
	if err := f.SetWide(1, object.Int32(1), object.Int32(2)); err == nil {
		t.Fatal("expected wide write needing v+1 to be rejected when v+1 is out of range")
	}
}

func TestThreadSuspendResume(t *testing.T) {
	th := NewThread(1, "main")
	th.Start()

	loopExited := make(chan struct{})
	ticks := make(chan struct{}, 100)
	go func() {
		for th.CheckSuspend() {
			select {
			case ticks <- struct{}{}:
			default:
			}
			time.Sleep(time.Millisecond)
		}
		close(loopExited)
	}()

	th.Suspend()
	if th.State() != Suspended {
		t.Fatalf("expected Suspended, got %v", th.State())
	}

	th.Resume()
	if th.State() != Running {
		t.Fatalf("expected Running after resume, got %v", th.State())
	}

	th.Stop()
	select {
	case <-loopExited:
	case <-time.After(time.Second):
		t.Fatal("loop never observed Stop()")
	}
}

func TestFrameStack(t *testing.T) {
	th := NewThread(1, "main")
	f1 := New(&registry.Method{RegisterSize: 1})
	f2 := New(&registry.Method{RegisterSize: 1})
	th.PushFrame(f1)
	th.PushFrame(f2)
	if th.Current() != f2 {
		t.Fatal("expected f2 to be current")
	}
	if th.PopFrame() != f2 {
		t.Fatal("expected pop to return f2")
	}
	if th.Current() != f1 {
		t.Fatal("expected f1 to be current after popping f2")
	}
}
