/*
 * dalvik - a Dalvik-compatible bytecode virtual machine
 * Value/object model, generalized to a tagged-value register slot and
 * to Array/ClassMirror/Number object variants.
 */

// Package object implements the tagged Value that fills one register slot
// and the polymorphic heap Object (Number, Instance, String, ClassMirror,
// Array, Null) it can refer to.
package object

import (
	"math"
)

// Kind discriminates the contents of a register slot.
type Kind uint8

const (
	// Uninitialized is the default slot state: reads as null (object) or 0 (number).
	Uninitialized Kind = iota
	IntWord
	Ref
)

// Value is the contents of one 32-bit register slot. Long/double values
// occupy two consecutive slots (low word at v, high word at v+1); that
// pairing is the register file's responsibility, not Value's.
type Value struct {
	kind Kind
	bits int32
	ref  *Object
}

// Int32 returns an int-word value holding the given bit pattern.
func Int32(bits int32) Value { return Value{kind: IntWord, bits: bits} }

// Uint32 returns an int-word value holding the given bit pattern.
func Uint32(bits uint32) Value { return Value{kind: IntWord, bits: int32(bits)} }

// Ref32 returns an object-reference value. Passing nil is equivalent to
// NullValue().
func Ref32(o *Object) Value {
	if o == nil {
		o = TheNull
	}
	return Value{kind: Ref, ref: o}
}

// NullValue returns the uninitialized/default slot contents.
func NullValue() Value { return Value{} }

// IsRef reports whether this slot currently holds a reference kind.
func (v Value) IsRef() bool { return v.kind == Ref }

// AsInt reads this slot as a 32-bit int-word; an uninitialized or
// reference slot reads as 0.
func (v Value) AsInt() int32 {
	if v.kind == IntWord {
		return v.bits
	}
	return 0
}

func (v Value) AsUint() uint32 { return uint32(v.AsInt()) }

func (v Value) AsFloat() float32 { return math.Float32frombits(v.AsUint()) }

// AsRef reads this slot as an object reference; an uninitialized or
// int-word slot reads as the null singleton.
func (v Value) AsRef() *Object {
	if v.kind == Ref && v.ref != nil {
		return v.ref
	}
	return TheNull
}

// FromFloat32 packs an IEEE-754 single into an int-word slot.
func FromFloat32(f float32) Value { return Int32(int32(math.Float32bits(f))) }

// PackWide splits a 64-bit pattern into (low, high) int-word slots, low
// word first: "low word at v, high word at v+1".
func PackWide(bits uint64) (lo, hi Value) {
	return Uint32(uint32(bits)), Uint32(uint32(bits >> 32))
}

// UnpackWide recombines a (low, high) register pair into a 64-bit pattern.
func UnpackWide(lo, hi Value) uint64 {
	return uint64(lo.AsUint()) | uint64(hi.AsUint())<<32
}

func FromInt64(i int64) (lo, hi Value)     { return PackWide(uint64(i)) }
func FromFloat64(f float64) (lo, hi Value) { return PackWide(math.Float64bits(f)) }
func ToInt64(lo, hi Value) int64           { return int64(UnpackWide(lo, hi)) }
func ToFloat64(lo, hi Value) float64       { return math.Float64frombits(UnpackWide(lo, hi)) }

// Equal implements the Value-equality semantics used by if-eq/if-ne:
// same referent pointer, equal Number payload, equal String text, or
// both Null. An int word never equals a reference.
func Equal(a, b Value) bool {
	ao, bo := a.AsRef(), b.AsRef()
	if a.kind != Ref && b.kind != Ref {
		return a.AsInt() == b.AsInt()
	}
	if (a.kind == IntWord && b.kind == Ref) || (a.kind == Ref && b.kind == IntWord) {
		return false
	}
	return ObjectsEqual(ao, bo)
}

// ObjectsEqual applies the same rule directly to two heap references.
func ObjectsEqual(a, b *Object) bool {
	if a == b {
		return true
	}
	if a == nil {
		a = TheNull
	}
	if b == nil {
		b = TheNull
	}
	if a.Kind == KindNull && b.Kind == KindNull {
		return true
	}
	if a.Kind == KindNumber && b.Kind == KindNumber {
		return a.LoadWord() == b.LoadWord()
	}
	if a.Kind == KindString && b.Kind == KindString {
		return a.Text == b.Text
	}
	return false
}
