/*
 * dalvik - a Dalvik-compatible bytecode virtual machine
 * Frame & thread, grounded on jacobin's jacobin/frames
 * package (CreateFrame/PushFrame/PopFrame, a list.List-backed frame
 * stack) and the original sandvik/frame.cpp and jthread.cpp/hpp.
 */

// Package frame implements the per-invocation register file and the
// per-thread stack of frames, plus the thread state machine that drives
// suspend/resume for the garbage collector's stop-the-world phase.
package frame

import (
	"fmt"

	"dalvik/object"
	"dalvik/registry"
)

// Frame owns one method invocation's register file, program counter,
// return slot and pending-exception slot.
type Frame struct {
	Method    *registry.Method
	ClassName string
	Registers []object.Value
	PC        uint32
	Return    object.Value
	ReturnHigh object.Value   // high word of a wide Return; unused otherwise
	Exception  *object.Object // nil unless a throw is in progress / just caught
}

// New allocates a frame sized to the method's declared register count.
func New(m *registry.Method) *Frame {
	return &Frame{
		Method:    m,
		ClassName: m.DeclaringClass,
		Registers: make([]object.Value, m.RegisterSize),
	}
}

// Get reads register v.
func (f *Frame) Get(v int) object.Value {
	if v < 0 || v >= len(f.Registers) {
		return object.NullValue()
	}
	return f.Registers[v]
}

// Set writes register v; out-of-range writes are rejected rather than
// silently resizing the vector.
func (f *Frame) Set(v int, val object.Value) error {
	if v < 0 || v >= len(f.Registers) {
		return fmt.Errorf("register %d out of range (register_count=%d)", v, len(f.Registers))
	}
	f.Registers[v] = val
	return nil
}

// GetWide reads the (low, high) pair starting at v.
func (f *Frame) GetWide(v int) (lo, hi object.Value) {
	return f.Get(v), f.Get(v + 1)
}

// SetWide writes a (low, high) pair starting at v; requires
// v+1 to be a valid index for any wide write.
func (f *Frame) SetWide(v int, lo, hi object.Value) error {
	if v+1 >= len(f.Registers) || v < 0 {
		return fmt.Errorf("wide register %d/%d out of range (register_count=%d)", v, v+1, len(f.Registers))
	}
	f.Registers[v] = lo
	f.Registers[v+1] = hi
	return nil
}

// RegisterCount is the declared size of this frame's register file.
func (f *Frame) RegisterCount() int { return len(f.Registers) }
