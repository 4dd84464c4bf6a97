/*
 * dalvik - a Dalvik-compatible bytecode virtual machine
 * VM context, grounded on jacobin/jvm's runProgram()-style top-level
 * wiring (load classpath, resolve and invoke main, run the interpreter
 * loop to completion) and on the "explicitly passed context" design
 * note: every collaborator below is a field on *VM, never a package
 * singleton.
 */

// Package vm wires the registry, garbage collector, native bridge and
// interpreter dispatch table into one constructed context and drives a
// program from its main method to completion.
package vm

import (
	"fmt"
	"sync"
	"sync/atomic"

	"dalvik/dex"
	"dalvik/frame"
	"dalvik/gc"
	"dalvik/globals"
	"dalvik/interp"
	"dalvik/jnienv"
	"dalvik/native"
	"dalvik/object"
	"dalvik/registry"
	"dalvik/runtimelib"
	"dalvik/trace"
)

// VM is the constructed, explicitly-passed context a running program
// shares: the class registry, collector, native bridge and the
// interpreter's dispatch Machine, plus the set of live threads the
// collector suspends during a collection.
type VM struct {
	Globals *globals.Globals
	Classes *registry.Registry
	GC      *gc.GC
	Bridge  *native.Bridge
	Machine *interp.Machine

	mu       sync.Mutex
	threads  map[uint64]*frame.Thread
	nextTID  uint64
}

// New constructs a VM from g: a registry seeded with g.ClassSearchPaths,
// a collector threshold from g.GCThreshold, a native bridge searching
// g.NativeLibSearchPaths, and an interp.Machine with both wired in. The
// bridge's handle table is registered as an additional GC root provider
// so a native call's live local/global handles keep their referents
// alive across a collection triggered mid-call. runtimelib's classes are
// registered after the root java/lang/Object record exists for them to
// descend from.
func New(g *globals.Globals) *VM {
	classes := registry.New(g.ClassSearchPaths)
	collector := gc.New(classes, g.GCThreshold)
	bridge := native.NewBridge(g.NativeLibSearchPaths)
	collector.AddRootProvider(bridge.Handles)
	runtimelib.Register(classes, bridge)

	v := &VM{
		Globals: g,
		Classes: classes,
		GC:      collector,
		Bridge:  bridge,
		threads: make(map[uint64]*frame.Thread),
	}
	v.Machine = interp.NewMachine(classes).WithGC(collector).WithNative(v.nativeInvoke)
	return v
}

// LoadContainer parses path as a pre-parsed dex.Container and registers
// it, making its classes resolvable by name.
func (v *VM) LoadContainer(path string) error {
	c, err := dex.Load(path)
	if err != nil {
		return err
	}
	v.Classes.AddContainer(c)
	return nil
}

// NewThread allocates a thread with a fresh VM-scoped id and registers
// it with the collector's suspend set.
func (v *VM) NewThread(name string) *frame.Thread {
	tid := atomic.AddUint64(&v.nextTID, 1)
	th := frame.NewThread(tid, name)
	v.GC.Manage(th)

	v.mu.Lock()
	v.threads[tid] = th
	v.mu.Unlock()
	return th
}

// RetireThread unmanages th once it has finished running, so the
// collector stops trying to suspend it.
func (v *VM) RetireThread(th *frame.Thread) {
	v.GC.Unmanage(th)
	v.mu.Lock()
	delete(v.threads, th.ID)
	v.mu.Unlock()
}

// RunMain resolves mainClass's mainSignature method (conventionally
// "main([Ljava/lang/String;)V"), seeds its incoming argument register
// with a String[] built from args, and drives the interpreter on a
// freshly allocated thread until the call stack empties.
func (v *VM) RunMain(mainClass, mainSignature string, args []string) error {
	cls, err := v.Classes.GetOrLoad(mainClass)
	if err != nil {
		return fmt.Errorf("vm: loading main class %s: %w", mainClass, err)
	}
	method, ok := cls.Methods[mainSignature]
	if !ok {
		return fmt.Errorf("vm: %s has no %s", mainClass, mainSignature)
	}

	th := v.NewThread("main")
	defer v.RetireThread(th)

	fr := frame.New(method)
	argv := v.track(object.NewArray("Ljava/lang/String;", []int{len(args)}))
	for i, a := range args {
		argv.SetAt(i, object.Ref32(v.track(object.NewString(a))))
	}
	base := int(method.RegisterSize) - int(method.InsSize)
	if err := fr.Set(base, object.Ref32(argv)); err != nil {
		return fmt.Errorf("vm: seeding main's argument register: %w", err)
	}
	th.PushFrame(fr)

	trace.Info(fmt.Sprintf("vm: running %s.%s", mainClass, mainSignature))
	return interp.Run(v.Machine, th)
}

// track registers a freshly allocated object with the collector, mirroring
// interp.Machine.track for the handful of allocations vm itself makes
// (the argv array and its String elements) ahead of handing control to
// the interpreter.
func (v *VM) track(o *object.Object) *object.Object {
	v.GC.Track(o)
	return o
}

// nativeInvoke is the interp.NativeInvoke hook bound into the Machine at
// construction time: it resolves target to a loaded library symbol
// (trying the unmangled name first, then falling back to the
// signature-mangled one the same way real JNI resolves an overloaded
// native method), marshals args through a jnienv.Env scoped to this
// call, and reports any exception the call raised through ThrowNew as a
// thrown return rather than a Go error.
func (v *VM) nativeInvoke(th *frame.Thread, fr *frame.Frame, target *registry.Method, args []object.Value) (lo, hi object.Value, thrown *object.Object, err error) {
	plan, err := native.PrepareCall(target.Descriptor)
	if err != nil {
		return object.NullValue(), object.NullValue(), nil, fmt.Errorf("vm: %s.%s: %w", target.DeclaringClass, target.Signature(), err)
	}

	var recv *object.Object
	params := args
	if !target.IsStatic() {
		if len(args) == 0 {
			return object.NullValue(), object.NullValue(), nil, fmt.Errorf("vm: instance native method %s.%s called with no receiver", target.DeclaringClass, target.Signature())
		}
		recv = args[0].AsRef()
		params = args[1:]
	} else if cls, err := v.Classes.GetOrLoad(target.DeclaringClass); err == nil {
		recv = cls.Mirror
	}

	fn, err := v.resolveNativeSymbol(target)
	if err != nil {
		return object.NullValue(), object.NullValue(), nil, err
	}

	env := jnienv.New(v.Classes, v.Bridge.Handles, th, fr)
	lo, hi, err = v.Bridge.Invoke(fn, env, recv, plan, params)
	if err != nil {
		return object.NullValue(), object.NullValue(), nil, err
	}
	if exc := env.ExceptionOccurred(); exc != nil {
		env.ExceptionClear()
		return object.NullValue(), object.NullValue(), exc, nil
	}
	return lo, hi, nil, nil
}

// resolveNativeSymbol tries the plain symbol first, falling back to the
// signature-mangled one only if the plain lookup fails -- the same
// short-name-first convention real JNI uses, which avoids needing the
// registry to track which native methods are overloaded.
func (v *VM) resolveNativeSymbol(target *registry.Method) (native.Func, error) {
	plain := native.Symbol(target.DeclaringClass, target.Name, target.Descriptor, false)
	if fn, err := v.Bridge.FindSymbol(plain); err == nil {
		return fn, nil
	}
	mangled := native.Symbol(target.DeclaringClass, target.Name, target.Descriptor, true)
	fn, err := v.Bridge.FindSymbol(mangled)
	if err != nil {
		return nil, fmt.Errorf("vm: no native method bound for %s.%s (tried %s and %s)", target.DeclaringClass, target.Signature(), plain, mangled)
	}
	return fn, nil
}
