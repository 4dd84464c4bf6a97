package interp

import (
	"fmt"

	"dalvik/frame"
	"dalvik/monitor"
	"dalvik/object"
)

func npe(m *Machine, msg string) *object.Object {
	return m.Throw("NullPointerException", msg)
}

func opMonitorEnter(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	o := fr.Get(int(ins.A)).AsRef()
	if o == nil || o.Kind == object.KindNull {
		return npe(m, "monitor-enter on null reference"), false, nil
	}
	monitor.Enter(o, th.ID)
	return nil, false, nil
}

func opMonitorExit(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	o := fr.Get(int(ins.A)).AsRef()
	if o == nil || o.Kind == object.KindNull {
		return npe(m, "monitor-exit on null reference"), false, nil
	}
	if err := monitor.Exit(o, th.ID); err != nil {
		return m.Throw("IllegalMonitorStateException", err.Error()), false, nil
	}
	return nil, false, nil
}

func opCheckCast(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	o := fr.Get(int(ins.A)).AsRef()
	if o.Kind == object.KindNull {
		return nil, false, nil // casting null always succeeds
	}
	dexIdx, err := classDexIdx(m, fr)
	if err != nil {
		return nil, false, err
	}
	cls, err := m.Classes.ResolveClass(dexIdx, int(ins.PoolIdx))
	if err != nil {
		return nil, false, err
	}
	if !m.Classes.IsInstanceOf(o, cls.FQName) {
		return m.Throw("ClassCastException", fmt.Sprintf("%s cannot be cast to %s", o.ClassName, cls.FQName)), false, nil
	}
	return nil, false, nil
}

func opInstanceOf(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	o := fr.Get(int(ins.B)).AsRef()
	dexIdx, err := classDexIdx(m, fr)
	if err != nil {
		return nil, false, err
	}
	cls, err := m.Classes.ResolveClass(dexIdx, int(ins.PoolIdx))
	if err != nil {
		return nil, false, err
	}
	result := int32(0)
	if m.Classes.IsInstanceOf(o, cls.FQName) {
		result = 1
	}
	fr.Set(int(ins.A), object.Int32(result))
	return nil, false, nil
}

func opArrayLength(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	o := fr.Get(int(ins.B)).AsRef()
	if o == nil || o.Kind == object.KindNull {
		return npe(m, "array-length on null reference"), false, nil
	}
	fr.Set(int(ins.A), object.Int32(int32(o.Length())))
	return nil, false, nil
}

func opNewInstance(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	dexIdx, err := classDexIdx(m, fr)
	if err != nil {
		return nil, false, err
	}
	cls, err := m.Classes.ResolveClass(dexIdx, int(ins.PoolIdx))
	if err != nil {
		return nil, false, err
	}
	if rewound := m.ensureInitialized(th, cls); rewound {
		return nil, true, nil
	}
	inst := m.track(object.NewInstance(cls.FQName, m.Classes))
	fr.Set(int(ins.A), object.Ref32(inst))
	return nil, false, nil
}

func opNewArray(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	dexIdx, err := classDexIdx(m, fr)
	if err != nil {
		return nil, false, err
	}
	ref, err := m.Classes.ResolveArray(dexIdx, int(ins.PoolIdx))
	if err != nil {
		return nil, false, err
	}
	size := fr.Get(int(ins.B)).AsInt()
	if size < 0 {
		return m.Throw("NegativeArraySizeException", fmt.Sprintf("%d", size)), false, nil
	}
	arr := m.track(object.NewArray(ref.ElementDescriptor, []int{int(size)}))
	fr.Set(int(ins.A), object.Ref32(arr))
	return nil, false, nil
}

// filledNewArray shares decoding between the packed (35c) and range (3rc)
// encodings: Decode has already normalized both into ins.Args.
func filledNewArray(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	dexIdx, err := classDexIdx(m, fr)
	if err != nil {
		return nil, false, err
	}
	ref, err := m.Classes.ResolveArray(dexIdx, int(ins.PoolIdx))
	if err != nil {
		return nil, false, err
	}
	arr := m.track(object.NewArray(ref.ElementDescriptor, []int{len(ins.Args)}))
	for i, reg := range ins.Args {
		arr.SetAt(i, fr.Get(int(reg)))
	}
	fr.Return = object.Ref32(arr)
	return nil, false, nil
}

func opFilledNewArray(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	return filledNewArray(m, th, fr, ins)
}

func opFilledNewArrayRange(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	return filledNewArray(m, th, fr, ins)
}

// fill-array-data's payload is tagged 0x0300: element width, element
// count, then the raw element bytes packed at that width.
func opFillArrayData(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	o := fr.Get(int(ins.A)).AsRef()
	if o == nil || o.Kind == object.KindNull {
		return npe(m, "fill-array-data on null reference"), false, nil
	}
	byteOff := uint32(int64(ins.PC) + int64(ins.Branch)*2)
	code := fr.Method.Code
	elemWidth := int(codeUnit(code, int(byteOff)+2))
	lo := uint32(codeUnit(code, int(byteOff)+4))
	hi := uint32(codeUnit(code, int(byteOff)+6))
	count := int(lo | hi<<16)
	if count != o.Length() {
		return m.Throw("IllegalArgumentException", "fill-array-data size mismatch"), false, nil
	}
	base := int(byteOff) + 8
	for i := 0; i < count; i++ {
		var v int32
		switch elemWidth {
		case 1:
			v = int32(int8(code[base+i]))
		case 2:
			v = int32(int16(codeUnit(code, base+2*i)))
		case 4:
			b32lo := uint32(codeUnit(code, base+4*i))
			b32hi := uint32(codeUnit(code, base+4*i+2))
			v = int32(b32lo | b32hi<<16)
		case 8:
			var word uint64
			for j := 0; j < 4; j++ {
				word |= uint64(codeUnit(code, base+8*i+2*j)) << (16 * j)
			}
			loV, hiV := object.PackWide(word)
			o.SetAtWide(i, loV, hiV)
			continue
		}
		o.SetAt(i, object.Int32(v))
	}
	return nil, false, nil
}

func opThrow(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	o := fr.Get(int(ins.A)).AsRef()
	if o == nil || o.Kind == object.KindNull {
		return npe(m, "throw of null reference"), false, nil
	}
	return o, false, nil
}
