/*
 * dalvik - a Dalvik-compatible bytecode virtual machine
 */

package object

import "testing"

// fakeProvider is a minimal ClassProvider for instance-construction tests.
type fakeProvider struct {
	fields map[string][]FieldSpec
}

func (p *fakeProvider) DeclaredFields(className string) []FieldSpec {
	return p.fields[className]
}

func TestNewInstanceSeedsFieldsAtZero(t *testing.T) {
	p := &fakeProvider{fields: map[string][]FieldSpec{
		"test/Point": {{Name: "x", Descriptor: "I"}, {Name: "name", Descriptor: "Ljava/lang/String;"}},
	}}
	o := NewInstance("test/Point", p)
	x, ok := o.GetField("x", 0)
	if !ok || x.AsInt() != 0 {
		t.Fatalf("expected numeric field x to start at 0, got %v ok=%v", x.AsInt(), ok)
	}
	name, ok := o.GetField("name", 0)
	if !ok || !ObjectsEqual(name.AsRef(), TheNull) {
		t.Fatalf("expected reference field name to start null")
	}
}

func TestValueEquality(t *testing.T) {
	a := Ref32(TheNull)
	b := NullValue()
	if !Equal(a, b) {
		t.Fatal("null should equal the uninitialized default slot")
	}
	s1 := Ref32(NewString("hi"))
	s2 := Ref32(NewString("hi"))
	if !Equal(s1, s2) {
		t.Fatal("two strings with equal text should compare equal")
	}
	n := Int32(5)
	if Equal(n, a) {
		t.Fatal("int-word should never equal a reference value")
	}
}

// TestMultiDimArray exercises a 3x3 int array: written through the
// parent, read and mutated through a sub-array view, and re-read
// through the parent.
func TestMultiDimArray(t *testing.T) {
	arr := NewArray("I", []int{3, 3})

	for i := 0; i < 3; i++ {
		row := arr.SubArray(i)
		for j := 0; j < 3; j++ {
			if row.At(j).AsInt() != 0 {
				t.Fatalf("expected zeroed cell at (%d,%d)", i, j)
			}
			row.SetAt(j, Int32(int32(i*3+j+1)))
		}
	}

	for i := 0; i < 3; i++ {
		row := arr.SubArray(i)
		for j := 0; j < 3; j++ {
			row.SetAt(j, Int32(row.At(j).AsInt()+0x10))
		}
	}

	for i := 0; i < 3; i++ {
		row := arr.SubArray(i)
		for j := 0; j < 3; j++ {
			want := int32(i*3 + j + 0x11)
			if got := row.At(j).AsInt(); got != want {
				t.Fatalf("cell (%d,%d): got %#x want %#x", i, j, got, want)
			}
		}
	}
}

func TestNumberAtomics(t *testing.T) {
	n := NewNumber(0)
	if !n.CompareAndSet32(0, 42) {
		t.Fatal("CAS on fresh Number should succeed")
	}
	if n.Load32() != 42 {
		t.Fatalf("get() after successful CAS should return the new value, got %d", n.Load32())
	}
	if n.CompareAndSet32(0, 99) {
		t.Fatal("CAS with stale expected value should fail")
	}
	if got := n.GetAndAdd32(8); got != 42 {
		t.Fatalf("getAndAdd should return the pre-add value, got %d", got)
	}
	if n.Load32() != 50 {
		t.Fatalf("expected 50 after add, got %d", n.Load32())
	}
}

func TestIdentityHashStable(t *testing.T) {
	o := NewString("x")
	h1 := o.IdentityHash()
	h2 := o.IdentityHash()
	if h1 != h2 {
		t.Fatal("identity hash must be cached/stable across calls")
	}
}
