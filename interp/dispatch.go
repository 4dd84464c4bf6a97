/*
 * dalvik - a Dalvik-compatible bytecode virtual machine
 * Opcode dispatch loop, grounded on jacobin's run.go switch-per-opcode
 * interpreter loop, generalized here into a decode-once/handler-table
 * dispatch so the ~230 opcodes don't live in one giant switch.
 */

package interp

import (
	"fmt"

	"dalvik/frame"
	"dalvik/gc"
	"dalvik/object"
	"dalvik/registry"
)

// handlerFunc executes one decoded instruction. thrown carries a
// program-visible exception to route through unwinding; err is a
// VM-fatal Go error. jumped reports whether the handler already
// repositioned fr.PC (branches, invokes, returns, <clinit> rewinds) so
// the dispatch loop must not auto-advance it.
type handlerFunc func(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (thrown *object.Object, jumped bool, err error)

// NativeInvoke dispatches a resolved JNI-native method (one with no
// bytecode and no synthetic callback) through whatever bridge package
// vm wires in. args is the same flat argument vector (receiver
// prepended for an instance method) the synthetic-callback path already
// builds; a non-nil thrown takes the exception-unwinding path instead of
// a normal return. Kept as a plain func field rather than an interface
// import so package interp need not depend on native/jnienv directly.
type NativeInvoke func(th *frame.Thread, fr *frame.Frame, target *registry.Method, args []object.Value) (lo, hi object.Value, thrown *object.Object, err error)

// Machine is the shared interpreter context threaded through every
// handler: the class registry plus whatever cross-cutting collaborators
// (GC, native bridge) get wired in as those packages are built.
type Machine struct {
	Classes *registry.Registry
	GC      *gc.GC       // nil when running without collection wired in (e.g. package-local tests)
	Native  NativeInvoke // nil when running without the native bridge wired in
}

// NewMachine constructs a Machine over an already-populated registry,
// with no collector or native bridge wired in.
func NewMachine(classes *registry.Registry) *Machine {
	return &Machine{Classes: classes}
}

// WithGC attaches a collector that every allocation opcode and thrown
// exception will register itself with.
func (m *Machine) WithGC(g *gc.GC) *Machine {
	m.GC = g
	return m
}

// WithNative attaches the dispatcher that resolved JNI-native methods
// run through.
func (m *Machine) WithNative(n NativeInvoke) *Machine {
	m.Native = n
	return m
}

// track registers a freshly allocated heap object with the collector, if
// one is wired in.
func (m *Machine) track(o *object.Object) *object.Object {
	if m.GC != nil && o != nil {
		m.GC.Track(o)
	}
	return o
}

// Throw builds an exception object the way registry.Throw does and
// registers it with the collector, so thrown exceptions are tracked
// exactly like any other allocation.
func (m *Machine) Throw(kind, msg string) *object.Object {
	return m.track(m.Classes.Throw(kind, msg))
}

// ensureInitialized runs cls's <clinit> on first touch. It sets
// StaticInitialized before pushing the <clinit> frame so a recursive
// touch during <clinit> itself doesn't re-enter; if no <clinit> exists
// it is vacuously satisfied. Returns rewound=true when a <clinit> frame
// was pushed, signaling the caller to return jumped=true without
// advancing PC so the triggering instruction re-runs once <clinit>
// returns.
func (m *Machine) ensureInitialized(th *frame.Thread, cls *registry.Class) (rewound bool) {
	if cls.StaticInitialized {
		return false
	}
	cls.StaticInitialized = true
	clinit, ok := cls.Methods["<clinit>()V"]
	if !ok {
		return false
	}
	th.PushFrame(frame.New(clinit))
	return true
}

var handlers [256]handlerFunc

func init() {
	for i := range handlers {
		handlers[i] = opUnimplemented
	}

	handlers[0x00] = opNop
	handlers[0x01] = opMove
	handlers[0x02] = opMove
	handlers[0x03] = opMove
	handlers[0x04] = opMoveWide
	handlers[0x05] = opMoveWide
	handlers[0x06] = opMoveWide
	handlers[0x07] = opMove // move-object family shares move's body
	handlers[0x08] = opMove
	handlers[0x09] = opMove
	handlers[0x0a] = opMoveResult
	handlers[0x0b] = opMoveResultWide
	handlers[0x0c] = opMoveResultObject
	handlers[0x0d] = opMoveException
	handlers[0x0e] = opReturnVoid
	handlers[0x0f] = opReturn
	handlers[0x10] = opReturnWide
	handlers[0x11] = opReturnObject

	handlers[0x12] = opConst4
	handlers[0x13] = opConst16
	handlers[0x14] = opConst
	handlers[0x15] = opConstHigh16
	handlers[0x16] = opConstWide16
	handlers[0x17] = opConstWide32
	handlers[0x18] = opConstWide
	handlers[0x19] = opConstWideHigh16
	handlers[0x1a] = opConstString
	handlers[0x1b] = opConstStringJumbo
	handlers[0x1c] = opConstClass

	handlers[0x1d] = opMonitorEnter
	handlers[0x1e] = opMonitorExit
	handlers[0x1f] = opCheckCast
	handlers[0x20] = opInstanceOf
	handlers[0x21] = opArrayLength
	handlers[0x22] = opNewInstance
	handlers[0x23] = opNewArray
	handlers[0x24] = opFilledNewArray
	handlers[0x25] = opFilledNewArrayRange
	handlers[0x26] = opFillArrayData
	handlers[0x27] = opThrow

	handlers[0x28] = opGoto
	handlers[0x29] = opGoto16
	handlers[0x2a] = opGoto32
	handlers[0x2b] = opPackedSwitch
	handlers[0x2c] = opSparseSwitch

	handlers[0x2d] = makeFloatCmp(-1, false)
	handlers[0x2e] = makeFloatCmp(1, false)
	handlers[0x2f] = makeFloatCmp(-1, true)
	handlers[0x30] = makeFloatCmp(1, true)
	handlers[0x31] = opCmpLong

	handlers[0x32] = makeIfHandler(ifEq, true)
	handlers[0x33] = makeIfHandler(ifNe, true)
	handlers[0x34] = makeIfHandler(ifLt, false)
	handlers[0x35] = makeIfHandler(ifGe, false)
	handlers[0x36] = makeIfHandler(ifGt, false)
	handlers[0x37] = makeIfHandler(ifLe, false)
	handlers[0x38] = makeIfzHandler(ifEq)
	handlers[0x39] = makeIfzHandler(ifNe)
	handlers[0x3a] = makeIfzHandler(ifLt)
	handlers[0x3b] = makeIfzHandler(ifGe)
	handlers[0x3c] = makeIfzHandler(ifGt)
	handlers[0x3d] = makeIfzHandler(ifLe)

	installArrayFieldHandlers()
	installInvokeHandlers()
	installArithHandlers()
}

func opUnimplemented(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	return nil, false, fmt.Errorf("interp: no handler wired for opcode %s (0x%02x)", ins.Op.Name, fr.Method.Code[ins.PC])
}

// Step decodes and executes the single instruction at fr.PC. A non-nil
// thrown exception is routed through unwinding before Step returns; a
// non-nil err is VM-fatal and propagates directly.
func Step(m *Machine, th *frame.Thread, fr *frame.Frame) error {
	ins, err := Decode(fr.Method.Code, fr.PC)
	if err != nil {
		return err
	}
	h := handlers[fr.Method.Code[fr.PC]]
	thrown, jumped, err := h(m, th, fr, ins)
	if err != nil {
		return err
	}
	if thrown != nil {
		return unwind(m, th, thrown)
	}
	if !jumped {
		fr.PC += uint32(ins.Len)
	}
	return nil
}

// Run drives th until its frame stack empties or it is stopped
// externally, checking for GC suspension requests between instructions.
func Run(m *Machine, th *frame.Thread) error {
	th.Start()
	for th.CheckSuspend() {
		fr := th.Current()
		if fr == nil {
			th.FinishIfEmpty()
			return nil
		}
		if err := Step(m, th, fr); err != nil {
			return err
		}
	}
	return nil
}

// unwind implements the five-step exception search: scan the current
// frame's try ranges for one covering the faulting pc, match a handler
// type (or catch-all) against the thrown object's class, and if none
// matches, pop the frame and retry in the caller. The search stops
// fatally once the thread's frame stack empties with no handler found.
func unwind(m *Machine, th *frame.Thread, thrown *object.Object) error {
	for {
		fr := th.Current()
		if fr == nil {
			return fmt.Errorf("uncaught exception: %s", thrown.ClassName)
		}
		if handlerPC, ok := findHandler(m, fr, thrown); ok {
			fr.Exception = thrown
			fr.PC = handlerPC
			return nil
		}
		th.PopFrame()
	}
}

func findHandler(m *Machine, fr *frame.Frame, thrown *object.Object) (uint32, bool) {
	pc := fr.PC
	for _, t := range fr.Method.Tries {
		if uint32(pc) < t.StartPC || uint32(pc) >= t.StartPC+t.InsnCount {
			continue
		}
		for _, h := range t.Handlers {
			typeName := resolveCatchType(m, fr, h.TypeIdx)
			if typeName != "" && m.Classes.IsInstanceOf(thrown, typeName) {
				return h.HandlerPC, true
			}
		}
		if t.CatchAll >= 0 {
			return uint32(t.CatchAll), true
		}
	}
	return 0, false
}

func resolveCatchType(m *Machine, fr *frame.Frame, typeIdx uint32) string {
	dexIdx, err := classDexIdx(m, fr)
	if err != nil {
		return ""
	}
	cls, err := m.Classes.ResolveClass(dexIdx, int(typeIdx))
	if err != nil {
		return ""
	}
	return cls.FQName
}
