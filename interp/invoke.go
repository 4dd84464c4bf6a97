package interp

import (
	"dalvik/frame"
	"dalvik/object"
	"dalvik/registry"
)

// invokeKind distinguishes how the callee is resolved; the bytecode
// operand decoding (packed 35c vs range 3rc) is already uniform via
// ins.Args, so only resolution differs across the five invoke opcodes.
type invokeKind int

const (
	invokeVirtual invokeKind = iota
	invokeSuper
	invokeDirect
	invokeStatic
	invokeInterface
)

func makeInvoke(kind invokeKind) handlerFunc {
	return func(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
		dexIdx, err := classDexIdx(m, fr)
		if err != nil {
			return nil, false, err
		}
		declared, declCls, err := m.Classes.ResolveMethod(dexIdx, int(ins.PoolIdx))
		if err != nil {
			return m.Throw("NoSuchMethodError", err.Error()), false, nil
		}

		var receiver *object.Object
		if kind != invokeStatic {
			receiver = fr.Get(int(ins.Args[0])).AsRef()
			if receiver == nil || receiver.Kind == object.KindNull {
				return npe(m, "invoke on null reference"), false, nil
			}
		}

		var target *registry.Method
		var targetCls *registry.Class
		switch kind {
		case invokeVirtual, invokeInterface:
			rcls, err := m.Classes.GetOrLoad(receiver.ClassName)
			if err != nil {
				return nil, false, err
			}
			target, targetCls, err = m.Classes.FindVirtualMethod(rcls, declared.Signature())
			if err != nil {
				return m.Throw("NoSuchMethodError", err.Error()), false, nil
			}
		case invokeSuper:
			// Resolves against the statically-declared class's own
			// superclass chain rather than the receiver's concrete class.
			super, err := m.Classes.GetOrLoad(declCls.Superclass)
			if err != nil {
				return nil, false, err
			}
			target, targetCls, err = m.Classes.FindVirtualMethod(super, declared.Signature())
			if err != nil {
				return m.Throw("NoSuchMethodError", err.Error()), false, nil
			}
		default: // invokeDirect, invokeStatic
			target, targetCls = declared, declCls
		}

		if rewound := m.ensureInitialized(th, targetCls); rewound {
			return nil, true, nil
		}

		if target.Callback != nil {
			args := make([]object.Value, len(ins.Args))
			for i, reg := range ins.Args {
				args[i] = fr.Get(int(reg))
			}
			lo, hi, err := target.Callback(args)
			if err != nil {
				return m.Throw("RuntimeException", err.Error()), false, nil
			}
			fr.Return = lo
			fr.ReturnHigh = hi
			fr.PC += uint32(ins.Len)
			return nil, true, nil
		}

		if !target.HasBytecode() {
			if target.IsNative() && m.Native != nil {
				args := make([]object.Value, len(ins.Args))
				for i, reg := range ins.Args {
					args[i] = fr.Get(int(reg))
				}
				lo, hi, thrown, err := m.Native(th, fr, target, args)
				if err != nil {
					return nil, false, err
				}
				if thrown != nil {
					return thrown, false, nil
				}
				fr.Return = lo
				fr.ReturnHigh = hi
				fr.PC += uint32(ins.Len)
				return nil, true, nil
			}
			return nil, false, &nativeUnsupportedError{method: target}
		}

		callee := frame.New(target)
		// Incoming arguments occupy the last InsSize registers of the
		// callee's frame.
		base := int(target.RegisterSize) - int(target.InsSize)
		for i, reg := range ins.Args {
			callee.Set(base+i, fr.Get(int(reg)))
		}
		// Advance past the invoke before switching frames, so control
		// resumes at the right instruction once the callee returns.
		fr.PC += uint32(ins.Len)
		th.PushFrame(callee)
		return nil, true, nil
	}
}

type nativeUnsupportedError struct{ method *registry.Method }

func (e *nativeUnsupportedError) Error() string {
	return "interp: native method " + e.method.DeclaringClass + "." + e.method.Signature() + " has no callback bound"
}

func installInvokeHandlers() {
	handlers[0x6e] = makeInvoke(invokeVirtual)
	handlers[0x6f] = makeInvoke(invokeSuper)
	handlers[0x70] = makeInvoke(invokeDirect)
	handlers[0x71] = makeInvoke(invokeStatic)
	handlers[0x72] = makeInvoke(invokeInterface)

	handlers[0x74] = makeInvoke(invokeVirtual)
	handlers[0x75] = makeInvoke(invokeSuper)
	handlers[0x76] = makeInvoke(invokeDirect)
	handlers[0x77] = makeInvoke(invokeStatic)
	handlers[0x78] = makeInvoke(invokeInterface)
}
