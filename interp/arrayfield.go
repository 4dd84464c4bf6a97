package interp

import (
	"fmt"

	"dalvik/frame"
	"dalvik/object"
	"dalvik/registry"
)

func checkArrayAccess(m *Machine, fr *frame.Frame, arrReg, idxReg int32) (*object.Object, *object.Object, int, bool) {
	o := fr.Get(int(arrReg)).AsRef()
	if o == nil || o.Kind == object.KindNull {
		return nil, npe(m, "array access on null reference"), 0, false
	}
	idx := int(fr.Get(int(idxReg)).AsInt())
	if idx < 0 || idx >= o.Length() {
		return nil, m.Throw("ArrayIndexOutOfBoundsException", fmt.Sprintf("length=%d; index=%d", o.Length(), idx)), 0, false
	}
	return o, nil, idx, true
}

func makeAget(signExtend func(int32) int32) handlerFunc {
	return func(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
		arr, thrown, idx, ok := checkArrayAccess(m, fr, ins.B, ins.C)
		if !ok {
			return thrown, false, nil
		}
		v := arr.At(idx)
		if signExtend != nil {
			v = object.Int32(signExtend(v.AsInt()))
		}
		fr.Set(int(ins.A), v)
		return nil, false, nil
	}
}

func opAgetWide(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	arr, thrown, idx, ok := checkArrayAccess(m, fr, ins.B, ins.C)
	if !ok {
		return thrown, false, nil
	}
	lo, hi := arr.AtWide(idx)
	fr.SetWide(int(ins.A), lo, hi)
	return nil, false, nil
}

func makeAput(narrow func(int32) int32) handlerFunc {
	return func(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
		arr, thrown, idx, ok := checkArrayAccess(m, fr, ins.B, ins.C)
		if !ok {
			return thrown, false, nil
		}
		v := fr.Get(int(ins.A))
		if narrow != nil {
			v = object.Int32(narrow(v.AsInt()))
		}
		arr.SetAt(idx, v)
		return nil, false, nil
	}
}

func opAputWide(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	arr, thrown, idx, ok := checkArrayAccess(m, fr, ins.B, ins.C)
	if !ok {
		return thrown, false, nil
	}
	lo, hi := fr.GetWide(int(ins.A))
	arr.SetAtWide(idx, lo, hi)
	return nil, false, nil
}

func signExtendByte(v int32) int32  { return int32(int8(v)) }
func signExtendShort(v int32) int32 { return int32(int16(v)) }
func zeroExtendChar(v int32) int32  { return int32(uint16(v)) }
func narrowByte(v int32) int32      { return int32(int8(v)) }
func narrowShort(v int32) int32     { return int32(int16(v)) }
func narrowChar(v int32) int32      { return int32(uint16(v)) }
func narrowBoolean(v int32) int32 {
	if v != 0 {
		return 1
	}
	return 0
}

// --- instance fields ---

func resolveInstanceField(m *Machine, fr *frame.Frame, ins Instruction) (*object.Object, *registry.Field, *object.Object) {
	o := fr.Get(int(ins.B)).AsRef()
	if o == nil || o.Kind == object.KindNull {
		return nil, nil, npe(m, "field access on null reference")
	}
	dexIdx, err := classDexIdx(m, fr)
	if err != nil {
		return nil, nil, m.Throw("NoSuchFieldException", err.Error())
	}
	field, _, err := m.Classes.ResolveField(dexIdx, int(ins.PoolIdx))
	if err != nil {
		return nil, nil, m.Throw("NoSuchFieldException", err.Error())
	}
	return o, field, nil
}

func makeIget(signExtend func(int32) int32) handlerFunc {
	return func(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
		o, field, thrown := resolveInstanceField(m, fr, ins)
		if thrown != nil {
			return thrown, false, nil
		}
		v, _ := o.GetField(field.Name, th.ID)
		if signExtend != nil {
			v = object.Int32(signExtend(v.AsInt()))
		}
		fr.Set(int(ins.A), v)
		return nil, false, nil
	}
}

func opIgetWide(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	o, field, thrown := resolveInstanceField(m, fr, ins)
	if thrown != nil {
		return thrown, false, nil
	}
	lo, hi := o.GetFieldWide(field.Name, th.ID)
	fr.SetWide(int(ins.A), lo, hi)
	return nil, false, nil
}

func makeIput(narrow func(int32) int32) handlerFunc {
	return func(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
		o, field, thrown := resolveInstanceField(m, fr, ins)
		if thrown != nil {
			return thrown, false, nil
		}
		v := fr.Get(int(ins.A))
		if narrow != nil {
			v = object.Int32(narrow(v.AsInt()))
		}
		o.SetField(field.Name, v, th.ID)
		return nil, false, nil
	}
}

func opIputWide(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	o, field, thrown := resolveInstanceField(m, fr, ins)
	if thrown != nil {
		return thrown, false, nil
	}
	lo, hi := fr.GetWide(int(ins.A))
	o.SetFieldWide(field.Name, lo, hi, th.ID)
	return nil, false, nil
}

// --- static fields ---

func resolveStaticField(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*registry.Field, *object.Object, bool) {
	dexIdx, err := classDexIdx(m, fr)
	if err != nil {
		return nil, m.Throw("NoSuchFieldException", err.Error()), false
	}
	field, cls, err := m.Classes.ResolveField(dexIdx, int(ins.PoolIdx))
	if err != nil {
		return nil, m.Throw("NoSuchFieldException", err.Error()), false
	}
	if rewound := m.ensureInitialized(th, cls); rewound {
		return nil, nil, true
	}
	return field, nil, false
}

func makeSget(signExtend func(int32) int32) handlerFunc {
	return func(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
		field, thrown, rewound := resolveStaticField(m, th, fr, ins)
		if rewound {
			return nil, true, nil
		}
		if thrown != nil {
			return thrown, false, nil
		}
		v := field.Get()
		if signExtend != nil {
			v = object.Int32(signExtend(v.AsInt()))
		}
		fr.Set(int(ins.A), v)
		return nil, false, nil
	}
}

func opSgetWide(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	field, thrown, rewound := resolveStaticField(m, th, fr, ins)
	if rewound {
		return nil, true, nil
	}
	if thrown != nil {
		return thrown, false, nil
	}
	lo, hi := field.GetWide()
	fr.SetWide(int(ins.A), lo, hi)
	return nil, false, nil
}

func makeSput(narrow func(int32) int32) handlerFunc {
	return func(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
		field, thrown, rewound := resolveStaticField(m, th, fr, ins)
		if rewound {
			return nil, true, nil
		}
		if thrown != nil {
			return thrown, false, nil
		}
		v := fr.Get(int(ins.A))
		if narrow != nil {
			v = object.Int32(narrow(v.AsInt()))
		}
		field.Set(v)
		return nil, false, nil
	}
}

func opSputWide(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	field, thrown, rewound := resolveStaticField(m, th, fr, ins)
	if rewound {
		return nil, true, nil
	}
	if thrown != nil {
		return thrown, false, nil
	}
	lo, hi := fr.GetWide(int(ins.A))
	field.SetWide(lo, hi)
	return nil, false, nil
}

func installArrayFieldHandlers() {
	handlers[0x44] = makeAget(nil)
	handlers[0x45] = opAgetWide
	handlers[0x46] = makeAget(nil)
	handlers[0x47] = makeAget(nil)
	handlers[0x48] = makeAget(signExtendByte)
	handlers[0x49] = makeAget(zeroExtendChar)
	handlers[0x4a] = makeAget(signExtendShort)

	handlers[0x4b] = makeAput(nil)
	handlers[0x4c] = opAputWide
	handlers[0x4d] = makeAput(nil)
	handlers[0x4e] = makeAput(narrowBoolean)
	handlers[0x4f] = makeAput(narrowByte)
	handlers[0x50] = makeAput(narrowChar)
	handlers[0x51] = makeAput(narrowShort)

	handlers[0x52] = makeIget(nil)
	handlers[0x53] = opIgetWide
	handlers[0x54] = makeIget(nil)
	handlers[0x55] = makeIget(nil)
	handlers[0x56] = makeIget(signExtendByte)
	handlers[0x57] = makeIget(zeroExtendChar)
	handlers[0x58] = makeIget(signExtendShort)

	handlers[0x59] = makeIput(nil)
	handlers[0x5a] = opIputWide
	handlers[0x5b] = makeIput(nil)
	handlers[0x5c] = makeIput(narrowBoolean)
	handlers[0x5d] = makeIput(narrowByte)
	handlers[0x5e] = makeIput(narrowChar)
	handlers[0x5f] = makeIput(narrowShort)

	handlers[0x60] = makeSget(nil)
	handlers[0x61] = opSgetWide
	handlers[0x62] = makeSget(nil)
	handlers[0x63] = makeSget(nil)
	handlers[0x64] = makeSget(signExtendByte)
	handlers[0x65] = makeSget(zeroExtendChar)
	handlers[0x66] = makeSget(signExtendShort)

	handlers[0x67] = makeSput(nil)
	handlers[0x68] = opSputWide
	handlers[0x69] = makeSput(nil)
	handlers[0x6a] = makeSput(narrowBoolean)
	handlers[0x6b] = makeSput(narrowByte)
	handlers[0x6c] = makeSput(narrowChar)
	handlers[0x6d] = makeSput(narrowShort)
}
