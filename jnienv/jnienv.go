/*
 * dalvik - a Dalvik-compatible bytecode virtual machine
 * JNI environment vtable, grounded on original_source/src/jni.cpp's
 * JNIEnv function-table entries (FindClass, GetStringUTFChars/Release,
 * RegisterNatives, ThrowNew, New/DeleteGlobalRef) and on jnihandlemap.cpp
 * for the handle plumbing behind the ref-management entries.
 */

// Package jnienv implements the environment record a native call
// receives: the function-table entries §4.I requires fully working, plus
// stubs for everything else that fail loudly rather than silently.
package jnienv

import (
	"fmt"
	"sync"

	"dalvik/frame"
	"dalvik/native"
	"dalvik/object"
	"dalvik/registry"
)

// Version is the JNI version this environment reports.
const Version uint32 = 0x00010006 // JNI 1.6, the version the reference's vtable declares

// Env is one native call's environment record: the Go analogue of a
// JNIEnv* pointer, carrying everything a native-side entry point needs
// to reach back into the interpreted world.
type Env struct {
	Classes *registry.Registry
	Handles *native.HandleTable
	Thread  *frame.Thread
	Frame   *frame.Frame

	mu   sync.Mutex
	utf  map[uint64]string // live GetStringUTFChars checkouts, keyed by their own token
	next uint64
}

// New constructs an environment record scoped to one native call.
func New(classes *registry.Registry, handles *native.HandleTable, th *frame.Thread, fr *frame.Frame) *Env {
	return &Env{
		Classes: classes,
		Handles: handles,
		Thread:  th,
		Frame:   fr,
		utf:     make(map[uint64]string),
	}
}

// GetVersion is the version-query entry.
func (e *Env) GetVersion() uint32 { return Version }

// FindClass resolves fqname through the registry (§4.B), loading it on
// first touch, and returns a handle to its class mirror.
func (e *Env) FindClass(fqname string) (uint64, error) {
	cls, err := e.Classes.GetOrLoad(fqname)
	if err != nil {
		return 0, fmt.Errorf("jnienv: FindClass(%s): %w", fqname, err)
	}
	return e.Handles.ToHandle(cls.Mirror), nil
}

// GetStringUTFChars returns a heap-allocated copy of the String object
// strTok refers to, plus a token identifying this checkout for the
// matching ReleaseStringUTFChars call.
func (e *Env) GetStringUTFChars(strTok uint64) (text string, utfTok uint64, err error) {
	o := e.Handles.FromHandle(strTok)
	if o.Kind != object.KindString {
		return "", 0, fmt.Errorf("jnienv: GetStringUTFChars: handle %d is not a String", strTok)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.next++
	tok := e.next
	e.utf[tok] = o.Text
	return o.Text, tok, nil
}

// ReleaseStringUTFChars retires a checkout made by GetStringUTFChars.
func (e *Env) ReleaseStringUTFChars(utfTok uint64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.utf[utfTok]; !ok {
		return fmt.Errorf("jnienv: ReleaseStringUTFChars: unknown checkout token %d", utfTok)
	}
	delete(e.utf, utfTok)
	return nil
}

// RegisterNatives is accepted but otherwise a no-op: native binding
// already happens by symbol name at call time (§4.H), so there is
// nothing left for explicit registration to do.
func (e *Env) RegisterNatives(fqname string, methodCount int) error {
	return nil
}

// ThrowNew raises kind/msg as the current frame's pending exception,
// handing control back to the interpreter's unwinding loop the next time
// it steps this frame.
func (e *Env) ThrowNew(kind, msg string) {
	e.Frame.Exception = e.Classes.Throw(kind, msg)
}

// ExceptionOccurred reports the frame's current pending exception, or
// nil if none.
func (e *Env) ExceptionOccurred() *object.Object {
	return e.Frame.Exception
}

// ExceptionClear drops the frame's pending exception.
func (e *Env) ExceptionClear() {
	e.Frame.Exception = nil
}

// NewGlobalRef promotes tok to a long-lived reference that survives the
// native call's end-of-call handle release.
func (e *Env) NewGlobalRef(tok uint64) uint64 {
	e.Handles.Promote(tok)
	return tok
}

// DeleteGlobalRef releases a reference previously promoted by
// NewGlobalRef.
func (e *Env) DeleteGlobalRef(tok uint64) {
	e.Handles.Release(tok)
}

// DeleteLocalRef releases tok ahead of the call's normal end-of-call
// sweep, e.g. inside a loop that would otherwise accumulate handles.
func (e *Env) DeleteLocalRef(tok uint64) {
	e.Handles.Release(tok)
}

// unimplemented reports the standing policy for every vtable entry this
// package does not implement: fail loudly, never silently.
func (e *Env) unimplemented(name string) error {
	return fmt.Errorf("jnienv: %s is not implemented", name)
}

// GetObjectClass, CallObjectMethod and NewObjectArray stand in for the
// large remainder of the JNI vtable (reflection, field/method ID
// lookups, array element access, direct-buffer support, and so on) that
// this environment does not back: native code that exercises them fails
// with a clear error rather than silently misbehaving.
func (e *Env) GetObjectClass(objTok uint64) (uint64, error) {
	return 0, e.unimplemented("GetObjectClass")
}

func (e *Env) CallObjectMethod(objTok uint64, methodID string, args []uint64) (uint64, error) {
	return 0, e.unimplemented("CallObjectMethod")
}

func (e *Env) NewObjectArray(length int32, elementClassTok uint64, initialTok uint64) (uint64, error) {
	return 0, e.unimplemented("NewObjectArray")
}
