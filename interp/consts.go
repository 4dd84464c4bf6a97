package interp

import (
	"dalvik/frame"
	"dalvik/object"
)

// classDexIdx looks up the dex container index backing the class that
// owns fr, used to resolve const-string/const-class and field/method
// pool references against the right container's tables.
func classDexIdx(m *Machine, fr *frame.Frame) (int, error) {
	cls, err := m.Classes.GetOrLoad(fr.ClassName)
	if err != nil {
		return 0, err
	}
	return cls.DexIdx, nil
}

func opConst4(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	fr.Set(int(ins.A), object.Int32(int32(ins.Lit)))
	return nil, false, nil
}

func opConst16(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	fr.Set(int(ins.A), object.Int32(int32(ins.Lit)))
	return nil, false, nil
}

func opConst(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	fr.Set(int(ins.A), object.Int32(int32(ins.Lit)))
	return nil, false, nil
}

func opConstHigh16(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	fr.Set(int(ins.A), object.Int32(int32(ins.Lit)<<16))
	return nil, false, nil
}

func opConstWide16(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	lo, hi := object.PackWide(uint64(ins.Lit))
	fr.SetWide(int(ins.A), lo, hi)
	return nil, false, nil
}

func opConstWide32(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	lo, hi := object.PackWide(uint64(int64(int32(ins.Lit))))
	fr.SetWide(int(ins.A), lo, hi)
	return nil, false, nil
}

func opConstWide(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	lo, hi := object.PackWide(uint64(ins.Lit))
	fr.SetWide(int(ins.A), lo, hi)
	return nil, false, nil
}

func opConstWideHigh16(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	lo, hi := object.PackWide(uint64(ins.Lit) << 48)
	fr.SetWide(int(ins.A), lo, hi)
	return nil, false, nil
}

func opConstString(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	dexIdx, err := classDexIdx(m, fr)
	if err != nil {
		return nil, false, err
	}
	s, err := m.Classes.ResolveString(dexIdx, int(ins.PoolIdx))
	if err != nil {
		return nil, false, err
	}
	fr.Set(int(ins.A), object.Ref32(m.track(object.NewString(s))))
	return nil, false, nil
}

// opConstStringJumbo shares const-string's body; only the pool index
// width differs, and Decode already normalized that into ins.PoolIdx.
func opConstStringJumbo(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	return opConstString(m, th, fr, ins)
}

func opConstClass(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
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
	fr.Set(int(ins.A), object.Ref32(cls.Mirror))
	return nil, false, nil
}
