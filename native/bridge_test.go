package native

import (
	"testing"

	"dalvik/object"
)

func TestLoadLibraryNotFoundOnSearchPath(t *testing.T) {
	b := NewBridge([]string{t.TempDir()})
	if _, err := b.LoadLibrary("doesnotexist"); err == nil {
		t.Fatalf("expected an error for a library absent from the search path")
	}
}

func TestInvokeMarshalsIntArgsAndReturn(t *testing.T) {
	b := NewBridge(nil)
	plan, err := PrepareCall("(II)I")
	if err != nil {
		t.Fatalf("PrepareCall: %v", err)
	}
	var gotA, gotB uint64
	fn := func(env interface{}, recv uint64, args []uint64) uint64 {
		gotA, gotB = args[0], args[1]
		return args[0] + args[1]
	}
	lo, _, err := b.Invoke(fn, 1, nil, plan, []object.Value{object.Int32(5), object.Int32(10)})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if gotA != 5 || gotB != 10 {
		t.Fatalf("native side saw (%d, %d), want (5, 10)", gotA, gotB)
	}
	if lo.AsInt() != 15 {
		t.Fatalf("return: got %d, want 15", lo.AsInt())
	}
}

func TestInvokeMarshalsWideArgsAndReturn(t *testing.T) {
	b := NewBridge(nil)
	plan, err := PrepareCall("(JJ)J")
	if err != nil {
		t.Fatalf("PrepareCall: %v", err)
	}
	fn := func(env interface{}, recv uint64, args []uint64) uint64 {
		return args[0] + args[1]
	}
	aLo, aHi := object.FromInt64(1_000_000_000_000)
	bLo, bHi := object.FromInt64(2_000_000_000_000)
	lo, hi, err := b.Invoke(fn, 1, nil, plan, []object.Value{aLo, aHi, bLo, bHi})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got := object.ToInt64(lo, hi); got != 3_000_000_000_000 {
		t.Fatalf("wide return: got %d, want 3000000000000", got)
	}
}

func TestInvokeRoundTripsObjectReferenceThroughHandles(t *testing.T) {
	b := NewBridge(nil)
	plan, err := PrepareCall("(Ljava/lang/Object;)Ljava/lang/Object;")
	if err != nil {
		t.Fatalf("PrepareCall: %v", err)
	}
	var sawToken uint64
	fn := func(env interface{}, recv uint64, args []uint64) uint64 {
		sawToken = args[0]
		return args[0] // echo the same handle back
	}
	arg := object.NewNumber(0) // any heap object will do as a reference
	lo, _, err := b.Invoke(fn, 1, nil, plan, []object.Value{object.Ref32(arg)})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if sawToken == 0 {
		t.Fatalf("expected a non-zero handle token for a non-null reference")
	}
	if got := lo.AsRef(); got != arg {
		t.Fatalf("round-tripped reference: got %v, want %v", got, arg)
	}
	if b.Handles.FromHandle(sawToken) != object.TheNull {
		t.Fatalf("expected the local handle to be released after the call returned")
	}
}

func TestInvokeVoidReturn(t *testing.T) {
	b := NewBridge(nil)
	plan, err := PrepareCall("()V")
	if err != nil {
		t.Fatalf("PrepareCall: %v", err)
	}
	called := false
	fn := func(env interface{}, recv uint64, args []uint64) uint64 {
		called = true
		return 0
	}
	if _, _, err := b.Invoke(fn, 1, nil, plan, nil); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if !called {
		t.Fatalf("expected fn to be called")
	}
}
