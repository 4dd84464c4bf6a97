package jnienv

import (
	"testing"

	"dalvik/frame"
	"dalvik/native"
	"dalvik/object"
	"dalvik/registry"
)

func newTestEnv(t *testing.T) *Env {
	t.Helper()
	r := registry.New(nil)
	handles := native.NewHandleTable()
	th := frame.NewThread(1, "main")
	fr := frame.New(&registry.Method{RegisterSize: 1})
	return New(r, handles, th, fr)
}

func TestFindClassReturnsAHandleToTheMirror(t *testing.T) {
	e := newTestEnv(t)
	tok, err := e.FindClass("java/lang/Object")
	if err != nil {
		t.Fatalf("FindClass: %v", err)
	}
	if tok == 0 {
		t.Fatalf("expected a non-zero handle")
	}
	cls, err := e.Classes.GetOrLoad("java/lang/Object")
	if err != nil {
		t.Fatalf("GetOrLoad: %v", err)
	}
	if got := e.Handles.FromHandle(tok); got != cls.Mirror {
		t.Fatalf("handle resolved to %v, want the class mirror %v", got, cls.Mirror)
	}
}

func TestFindClassUnknownReportsError(t *testing.T) {
	e := newTestEnv(t)
	if _, err := e.FindClass("nope/NoSuchClass"); err == nil {
		t.Fatalf("expected an error for an unresolvable class")
	}
}

func TestGetAndReleaseStringUTFChars(t *testing.T) {
	e := newTestEnv(t)
	s := object.NewString("hello")
	tok := e.Handles.ToHandle(s)

	text, utfTok, err := e.GetStringUTFChars(tok)
	if err != nil {
		t.Fatalf("GetStringUTFChars: %v", err)
	}
	if text != "hello" {
		t.Fatalf("text: got %q, want %q", text, "hello")
	}
	if err := e.ReleaseStringUTFChars(utfTok); err != nil {
		t.Fatalf("ReleaseStringUTFChars: %v", err)
	}
	if err := e.ReleaseStringUTFChars(utfTok); err == nil {
		t.Fatalf("expected releasing an already-released checkout to fail")
	}
}

func TestGetStringUTFCharsRejectsNonString(t *testing.T) {
	e := newTestEnv(t)
	n := object.NewNumber(42)
	tok := e.Handles.ToHandle(n)
	if _, _, err := e.GetStringUTFChars(tok); err == nil {
		t.Fatalf("expected an error for a non-String handle")
	}
}

func TestThrowNewSetsPendingExceptionOnTheFrame(t *testing.T) {
	e := newTestEnv(t)
	if e.ExceptionOccurred() != nil {
		t.Fatalf("expected no pending exception initially")
	}
	e.ThrowNew("RuntimeException", "boom")
	exc := e.ExceptionOccurred()
	if exc == nil {
		t.Fatalf("expected a pending exception after ThrowNew")
	}
	e.ExceptionClear()
	if e.ExceptionOccurred() != nil {
		t.Fatalf("expected no pending exception after ExceptionClear")
	}
}

func TestGlobalRefSurvivesLocalRelease(t *testing.T) {
	e := newTestEnv(t)
	o := object.NewNumber(7)
	tok := e.Handles.ToHandle(o)
	e.NewGlobalRef(tok)

	e.Handles.ReleaseLocals([]uint64{tok})
	if got := e.Handles.FromHandle(tok); got != o {
		t.Fatalf("expected the promoted handle to survive a local release, got %v", got)
	}

	e.DeleteGlobalRef(tok)
	if got := e.Handles.FromHandle(tok); got != object.TheNull {
		t.Fatalf("expected the handle to be gone after DeleteGlobalRef, got %v", got)
	}
}

func TestUnimplementedEntriesFailLoudly(t *testing.T) {
	e := newTestEnv(t)
	if _, err := e.GetObjectClass(1); err == nil {
		t.Fatalf("expected GetObjectClass to report not-implemented")
	}
	if _, err := e.CallObjectMethod(1, "foo()V", nil); err == nil {
		t.Fatalf("expected CallObjectMethod to report not-implemented")
	}
	if _, err := e.NewObjectArray(3, 1, 0); err == nil {
		t.Fatalf("expected NewObjectArray to report not-implemented")
	}
}
