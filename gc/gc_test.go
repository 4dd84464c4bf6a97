package gc

import (
	"testing"
	"time"

	"dalvik/frame"
	"dalvik/object"
	"dalvik/registry"
	"dalvik/synth"
)

// runSuspendable starts th and spins a goroutine polling CheckSuspend,
// mirroring frame_test.go's TestThreadSuspendResume -- without a live
// poller, Suspend() would block forever waiting for an acknowledgment
// nothing ever sends.
func runSuspendable(t *testing.T, th *frame.Thread) (stop func()) {
	t.Helper()
	th.Start()
	done := make(chan struct{})
	go func() {
		for th.CheckSuspend() {
			time.Sleep(time.Millisecond)
		}
		close(done)
	}()
	return func() {
		th.Stop()
		<-done
	}
}

func TestCollectSweepsUnreachableObjects(t *testing.T) {
	r := registry.New(nil)
	g := New(r, 0) // limit disabled; the test drives Collect directly

	th := frame.NewThread(1, "main")
	fr := frame.New(&registry.Method{RegisterSize: 2})
	th.PushFrame(fr)
	g.Manage(th)
	stop := runSuspendable(t, th)
	defer stop()

	reachable := object.NewInstance("java/lang/Object", r)
	garbage := object.NewInstance("java/lang/Object", r)
	g.Track(reachable)
	g.Track(garbage)
	if got := g.Count(); got != 2 {
		t.Fatalf("expected 2 tracked objects before collection, got %d", got)
	}

	fr.Set(0, object.Ref32(reachable))

	g.Collect()

	if got := g.Count(); got != 1 {
		t.Fatalf("expected 1 tracked object after sweeping garbage, got %d", got)
	}
	if got := g.Cycles(); got != 1 {
		t.Fatalf("expected 1 completed cycle, got %d", got)
	}
}

func TestCollectMarksTransitivelyThroughFieldsAndArrays(t *testing.T) {
	r := registry.New(nil)
	synth.NewClass("test/Node", "java/lang/Object").
		AddField("next", "Ltest/Node;", false).
		Finish(r)
	g := New(r, 0)

	th := frame.NewThread(7, "main")
	fr := frame.New(&registry.Method{RegisterSize: 2})
	th.PushFrame(fr)
	g.Manage(th)
	stop := runSuspendable(t, th)
	defer stop()

	head := object.NewInstance("test/Node", r)
	tail := object.NewInstance("test/Node", r)
	head.SetField("next", object.Ref32(tail), th.ID)
	arr := object.NewArray("Ltest/Node;", []int{1})
	arr.SetAt(0, object.Ref32(tail))
	orphan := object.NewInstance("test/Node", r)

	for _, o := range []*object.Object{head, tail, arr, orphan} {
		g.Track(o)
	}
	fr.Set(0, object.Ref32(head))
	fr.Set(1, object.Ref32(arr))

	g.Collect()

	if g.Count() != 3 {
		t.Fatalf("expected head, tail, and arr to survive (3 tracked), got %d", g.Count())
	}
}

func TestTrackTriggersCollectionAtLimit(t *testing.T) {
	r := registry.New(nil)
	g := New(r, 1)

	th := frame.NewThread(1, "main")
	fr := frame.New(&registry.Method{RegisterSize: 1})
	th.PushFrame(fr)
	g.Manage(th)
	stop := runSuspendable(t, th)
	defer stop()

	first := object.NewInstance("java/lang/Object", r)
	g.Track(first) // at limit, no collection yet (not over)
	if g.Cycles() != 0 {
		t.Fatalf("expected no collection at exactly the limit, got %d cycles", g.Cycles())
	}

	second := object.NewInstance("java/lang/Object", r) // unreachable
	g.Track(second)                                     // now over the limit, triggers a collection
	if g.Cycles() != 1 {
		t.Fatalf("expected Track to trigger one collection once over the limit, got %d", g.Cycles())
	}
	if g.Count() != 0 {
		t.Fatalf("expected both untracked-by-any-root objects to be swept, got %d", g.Count())
	}
}
