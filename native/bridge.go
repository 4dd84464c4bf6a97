/*
 * dalvik - a Dalvik-compatible bytecode virtual machine
 * Library loading & call dispatch, grounded on
 * original_source/src/native_call.cpp's NativeCallHelper::invoke (marshal
 * arguments per call plan, invoke, unmarshal the result) and
 * interpreter.cpp's LD_LIBRARY_PATH-style library search.
 */

// Package native implements the bridge between the interpreted world and
// natively-compiled methods: symbol mangling, call-plan derivation from a
// Dalvik descriptor, and a handle table translating object references to
// opaque tokens for the call's duration.
package native

import (
	"fmt"
	"os"
	"path/filepath"
	"plugin"
	"strings"
	"sync"

	"dalvik/object"
	"dalvik/trace"
)

// Func is the canonical envelope every native symbol must implement: env
// is the calling thread's JNI environment record (concretely a
// *jnienv.Env, kept as interface{} here since package jnienv already
// depends on this package and cannot be imported back), recv is the
// receiver's handle for an instance method or the owning class's mirror
// handle for a static one, and args holds one packed 64-bit word per
// declared parameter -- wide values already recombined, references
// already converted to handle tokens. The result is packed the same
// way, reinterpreted by the caller's return tag.
//
// Object references still cross this boundary as handle-table tokens
// even though native code here is ordinary in-process Go and could in
// principle receive a *object.Object directly: the handle table is a
// named component in its own right (§4.H), and marshalling through it
// gives native code the same lifecycle guarantees (a local handle expires
// at call end unless promoted) a true cross-language boundary would
// enforce. Likewise this stands in for libffi's arbitrary-signature call
// construction, which Go cannot reproduce without cgo: every loaded
// native function commits to this one Go-callable shape instead, and
// PrepareCall's CallPlan documents and validates the descriptor it was
// derived from.
type Func func(env interface{}, recv uint64, args []uint64) uint64

// Library is one loaded native library: a plugin.Plugin -- Go's stdlib
// analog to dlopen, and the only way to load externally-compiled code
// without cgo, which no repo in reach uses -- exporting Func-typed
// symbols named per Symbol's mangling scheme.
type Library struct {
	path string
	plug *plugin.Plugin
}

// Lookup resolves symbol to a Func, failing loudly if the exported value
// has the wrong type: native code that exercises an unsupported call
// shape fails loudly rather than silently, the same standing policy
// §4.I states for its own unimplemented vtable entries.
func (l *Library) Lookup(symbol string) (Func, error) {
	sym, err := l.plug.Lookup(symbol)
	if err != nil {
		return nil, fmt.Errorf("native: symbol %s not found in %s: %w", symbol, l.path, err)
	}
	if fn, ok := sym.(Func); ok {
		return fn, nil
	}
	if fnp, ok := sym.(*Func); ok {
		return *fnp, nil
	}
	return nil, fmt.Errorf("native: symbol %s in %s does not implement native.Func", symbol, l.path)
}

// Bridge owns every library loaded so far and the handle table shared by
// every call made through it.
type Bridge struct {
	mu         sync.Mutex
	libs       map[string]*Library
	searchDirs []string
	Handles    *HandleTable
}

// NewBridge constructs a bridge that searches searchDirs -- populated
// from LD_LIBRARY_PATH per §6 -- for a library file on LoadLibrary.
func NewBridge(searchDirs []string) *Bridge {
	return &Bridge{
		libs:       make(map[string]*Library),
		searchDirs: searchDirs,
		Handles:    NewHandleTable(),
	}
}

// LoadLibrary implements System.loadLibrary(name): searches searchDirs
// for "lib<name>.so", opening the first match as a Go plugin. Repeated
// loads of an already-opened name return the cached Library.
func (b *Bridge) LoadLibrary(name string) (*Library, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if lib, ok := b.libs[name]; ok {
		return lib, nil
	}
	filename := "lib" + name + ".so"
	for _, dir := range b.searchDirs {
		path := filepath.Join(dir, filename)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		plug, err := plugin.Open(path)
		if err != nil {
			return nil, fmt.Errorf("native: loading %s: %w", path, err)
		}
		lib := &Library{path: path, plug: plug}
		b.libs[name] = lib
		trace.Info(fmt.Sprintf("native: loaded library %s from %s", name, path))
		return lib, nil
	}
	return nil, fmt.Errorf("native: library %s not found on search path %s", name, strings.Join(b.searchDirs, string(os.PathListSeparator)))
}

// FindSymbol searches every library loaded so far for symbol, the
// ordinary JNI convention of resolving a native method against whichever
// libraries the program has already loaded via System.loadLibrary rather
// than requiring the caller to name one.
func (b *Bridge) FindSymbol(symbol string) (Func, error) {
	b.mu.Lock()
	libs := make([]*Library, 0, len(b.libs))
	for _, l := range b.libs {
		libs = append(libs, l)
	}
	b.mu.Unlock()
	for _, l := range libs {
		if fn, err := l.Lookup(symbol); err == nil {
			return fn, nil
		}
	}
	return nil, fmt.Errorf("native: symbol %s not found in any loaded library", symbol)
}

// Invoke marshals args through plan, calls fn, and unmarshals the
// result. args holds one Value per declared parameter in Dalvik's own
// wide convention (two consecutive Values for J/D); recv is the receiver
// object for an instance method, or the class mirror for a static one,
// or nil. env is the calling thread's environment record, passed through
// to fn verbatim. The return is reported as (lo, hi) the same way a
// register pair would hold it; hi is unused for anything narrower than a
// wide value.
func (b *Bridge) Invoke(fn Func, env interface{}, recv *object.Object, plan CallPlan, args []object.Value) (lo, hi object.Value, err error) {
	recvTok := b.Handles.ToHandle(recv)
	locals := []uint64{recvTok}

	packed := make([]uint64, 0, len(plan.Params))
	ai := 0
	for _, tag := range plan.Params {
		if ai >= len(args) {
			return object.NullValue(), object.NullValue(), fmt.Errorf("native: call plan expects more arguments than were supplied")
		}
		switch tag {
		case TagInt32, TagFloat:
			packed = append(packed, uint64(args[ai].AsUint()))
			ai++
		case TagInt64, TagDouble:
			if ai+1 >= len(args) {
				return object.NullValue(), object.NullValue(), fmt.Errorf("native: wide argument missing its high word")
			}
			packed = append(packed, object.UnpackWide(args[ai], args[ai+1]))
			ai += 2
		case TagPointer:
			tok := b.Handles.ToHandle(args[ai].AsRef())
			locals = append(locals, tok)
			packed = append(packed, tok)
			ai++
		}
	}

	result := fn(env, recvTok, packed)
	defer b.Handles.ReleaseLocals(locals)

	switch plan.Return {
	case TagVoid:
		return object.NullValue(), object.NullValue(), nil
	case TagInt32, TagFloat:
		return object.Uint32(uint32(result)), object.NullValue(), nil
	case TagInt64, TagDouble:
		lo, hi = object.PackWide(result)
		return lo, hi, nil
	case TagPointer:
		return object.Ref32(b.Handles.FromHandle(result)), object.NullValue(), nil
	default:
		return object.NullValue(), object.NullValue(), fmt.Errorf("native: unknown return tag %v", plan.Return)
	}
}
