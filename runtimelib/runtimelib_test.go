package runtimelib

import (
	"testing"

	"dalvik/native"
	"dalvik/object"
	"dalvik/registry"
)

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New(nil)
	Register(r, native.NewBridge(nil))
	return r
}

func method(t *testing.T, r *registry.Registry, className, sig string) *registry.Method {
	t.Helper()
	cls, err := r.GetOrLoad(className)
	if err != nil {
		t.Fatalf("loading %s: %v", className, err)
	}
	m, ok := cls.Methods[sig]
	if !ok {
		t.Fatalf("%s has no method %s", className, sig)
	}
	return m
}

func TestObjectHashCodeAndEquals(t *testing.T) {
	r := newTestRegistry(t)
	hashCode := method(t, r, "java/lang/Object", "hashCode()I")
	a := object.NewInstance("java/lang/Object", r)
	lo, _, err := hashCode.Callback([]object.Value{object.Ref32(a)})
	if err != nil {
		t.Fatal(err)
	}
	if lo.AsInt() == 0 {
		t.Fatalf("expected a nonzero identity hash")
	}

	equals := method(t, r, "java/lang/Object", "equals(Ljava/lang/Object;)Z")
	same, _, err := equals.Callback([]object.Value{object.Ref32(a), object.Ref32(a)})
	if err != nil {
		t.Fatal(err)
	}
	if same.AsInt() != 1 {
		t.Fatal("expected an object to equal itself")
	}
	b := object.NewInstance("java/lang/Object", r)
	diff, _, err := equals.Callback([]object.Value{object.Ref32(a), object.Ref32(b)})
	if err != nil {
		t.Fatal(err)
	}
	if diff.AsInt() != 0 {
		t.Fatal("expected two distinct instances to not be equal")
	}
}

func TestMathSqrtReturnsWideDouble(t *testing.T) {
	r := newTestRegistry(t)
	sqrt := method(t, r, "java/lang/Math", "sqrt(D)D")
	lo, hi := object.FromFloat64(9.0)
	rlo, rhi, err := sqrt.Callback([]object.Value{lo, hi})
	if err != nil {
		t.Fatal(err)
	}
	if got := object.ToFloat64(rlo, rhi); got != 3.0 {
		t.Fatalf("expected sqrt(9)=3, got %v", got)
	}
}

func TestStringLengthCharAtAndConcat(t *testing.T) {
	r := newTestRegistry(t)
	s := object.NewString("hello")

	length := method(t, r, "java/lang/String", "length()I")
	lo, _, err := length.Callback([]object.Value{object.Ref32(s)})
	if err != nil {
		t.Fatal(err)
	}
	if lo.AsInt() != 5 {
		t.Fatalf("expected length 5, got %d", lo.AsInt())
	}

	charAt := method(t, r, "java/lang/String", "charAt(I)C")
	ch, _, err := charAt.Callback([]object.Value{object.Ref32(s), object.Int32(1)})
	if err != nil {
		t.Fatal(err)
	}
	if ch.AsInt() != 'e' {
		t.Fatalf("expected 'e', got %q", rune(ch.AsInt()))
	}
	if _, _, err := charAt.Callback([]object.Value{object.Ref32(s), object.Int32(99)}); err == nil {
		t.Fatal("expected an out-of-range charAt to error")
	}

	concat := method(t, r, "java/lang/String", "concat(Ljava/lang/String;)Ljava/lang/String;")
	joined, _, err := concat.Callback([]object.Value{object.Ref32(s), object.Ref32(object.NewString(" world"))})
	if err != nil {
		t.Fatal(err)
	}
	if got := joined.AsRef().Text; got != "hello world" {
		t.Fatalf("expected %q, got %q", "hello world", got)
	}
}

func TestStringBuilderAppendChain(t *testing.T) {
	r := newTestRegistry(t)
	sb := object.NewInstance("java/lang/StringBuilder", r)

	init := method(t, r, "java/lang/StringBuilder", "<init>()V")
	if _, _, err := init.Callback([]object.Value{object.Ref32(sb)}); err != nil {
		t.Fatal(err)
	}

	appendStr := method(t, r, "java/lang/StringBuilder", "append(Ljava/lang/String;)Ljava/lang/StringBuilder;")
	if _, _, err := appendStr.Callback([]object.Value{object.Ref32(sb), object.Ref32(object.NewString("n="))}); err != nil {
		t.Fatal(err)
	}
	appendInt := method(t, r, "java/lang/StringBuilder", "append(I)Ljava/lang/StringBuilder;")
	if _, _, err := appendInt.Callback([]object.Value{object.Ref32(sb), object.Int32(7)}); err != nil {
		t.Fatal(err)
	}

	toString := method(t, r, "java/lang/StringBuilder", "toString()Ljava/lang/String;")
	result, _, err := toString.Callback([]object.Value{object.Ref32(sb)})
	if err != nil {
		t.Fatal(err)
	}
	if got := result.AsRef().Text; got != "n=7" {
		t.Fatalf("expected %q, got %q", "n=7", got)
	}
}

func TestAtomicIntegerIncrementAndGet(t *testing.T) {
	r := newTestRegistry(t)
	a := object.NewInstance("java/util/concurrent/atomic/AtomicInteger", r)
	init := method(t, r, "java/util/concurrent/atomic/AtomicInteger", "<init>(I)V")
	if _, _, err := init.Callback([]object.Value{object.Ref32(a), object.Int32(41)}); err != nil {
		t.Fatal(err)
	}

	incr := method(t, r, "java/util/concurrent/atomic/AtomicInteger", "incrementAndGet()I")
	got, _, err := incr.Callback([]object.Value{object.Ref32(a)})
	if err != nil {
		t.Fatal(err)
	}
	if got.AsInt() != 42 {
		t.Fatalf("expected 42, got %d", got.AsInt())
	}
}

func TestAtomicLongAddAndGet(t *testing.T) {
	r := newTestRegistry(t)
	a := object.NewInstance("java/util/concurrent/atomic/AtomicLong", r)
	init := method(t, r, "java/util/concurrent/atomic/AtomicLong", "<init>()V")
	if _, _, err := init.Callback([]object.Value{object.Ref32(a)}); err != nil {
		t.Fatal(err)
	}

	addAndGet := method(t, r, "java/util/concurrent/atomic/AtomicLong", "addAndGet(J)J")
	lo, hi := object.FromInt64(100)
	rlo, rhi, err := addAndGet.Callback([]object.Value{object.Ref32(a), lo, hi})
	if err != nil {
		t.Fatal(err)
	}
	if got := object.ToInt64(rlo, rhi); got != 100 {
		t.Fatalf("expected 100, got %d", got)
	}
}
