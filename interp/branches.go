package interp

import (
	"dalvik/frame"
	"dalvik/object"
)

func jump(fr *frame.Frame, ins Instruction, offsetUnits int32) {
	// Offsets are relative to the branching instruction's own pc, in
	// 16-bit code units.
	fr.PC = uint32(int64(ins.PC) + int64(offsetUnits)*2)
}

func opGoto(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	jump(fr, ins, ins.Branch)
	return nil, true, nil
}

// opGoto16/32 share goto's body; Decode already normalized the offset
// width into ins.Branch.
func opGoto16(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	return opGoto(m, th, fr, ins)
}
func opGoto32(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	return opGoto(m, th, fr, ins)
}

// packedSwitchPayload is the 0x0100-tagged table read at pc+offset:
// a contiguous run of branch targets starting at firstKey.
type packedSwitchPayload struct {
	firstKey int32
	targets  []int32 // code-unit offsets, relative to the switch instruction
}

func readPackedSwitch(code []byte, byteOff uint32) packedSwitchPayload {
	// header: ident(0x0100) size firstKeyLo firstKeyHi [targets...]
	size := int(codeUnit(code, int(byteOff)+2))
	firstKey := int32(codeUnit(code, int(byteOff)+4)) | int32(codeUnit(code, int(byteOff)+6))<<16
	targets := make([]int32, size)
	base := int(byteOff) + 8
	// targets are 32-bit each, 4 bytes/2 code units
	for i := 0; i < size; i++ {
		off := base + 4*i
		lo := uint32(codeUnit(code, off))
		hi := uint32(codeUnit(code, off+2))
		targets[i] = int32(lo | hi<<16)
	}
	return packedSwitchPayload{firstKey: firstKey, targets: targets}
}

type sparseSwitchPayload struct {
	keys    []int32
	targets []int32
}

func readSparseSwitch(code []byte, byteOff uint32) sparseSwitchPayload {
	// header: ident(0x0200) size [keys...] [targets...]
	size := int(codeUnit(code, int(byteOff)+2))
	keys := make([]int32, size)
	targets := make([]int32, size)
	base := int(byteOff) + 4
	for i := 0; i < size; i++ {
		off := base + 4*i
		lo := uint32(codeUnit(code, off))
		hi := uint32(codeUnit(code, off+2))
		keys[i] = int32(lo | hi<<16)
	}
	base2 := base + 4*size
	for i := 0; i < size; i++ {
		off := base2 + 4*i
		lo := uint32(codeUnit(code, off))
		hi := uint32(codeUnit(code, off+2))
		targets[i] = int32(lo | hi<<16)
	}
	return sparseSwitchPayload{keys: keys, targets: targets}
}

func opPackedSwitch(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	payloadOff := uint32(int64(ins.PC) + int64(ins.Branch)*2)
	p := readPackedSwitch(fr.Method.Code, payloadOff)
	key := fr.Get(int(ins.A)).AsInt()
	idx := int(key - p.firstKey)
	if idx >= 0 && idx < len(p.targets) {
		jump(fr, ins, p.targets[idx])
	} else {
		fr.PC += uint32(ins.Len)
	}
	return nil, true, nil
}

func opSparseSwitch(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	payloadOff := uint32(int64(ins.PC) + int64(ins.Branch)*2)
	p := readSparseSwitch(fr.Method.Code, payloadOff)
	key := fr.Get(int(ins.A)).AsInt()
	for i, k := range p.keys {
		if k == key {
			jump(fr, ins, p.targets[i])
			return nil, true, nil
		}
	}
	fr.PC += uint32(ins.Len)
	return nil, true, nil
}

// ifOp is one of the six two-register comparisons (if-eq..if-le).
type ifOp func(a, b int32) bool

// isEqOp/isNeOp identify ifEq/ifNe so reference comparisons (if-eq/if-ne
// on object registers) can dispatch on Value equality rather than the
// raw bit pattern, while still sharing one handler factory with the
// integer comparisons.
func isEqOp(op ifOp) bool { return op(0, 0) && !op(0, 1) }

func makeIfHandler(op ifOp, refCompare bool) handlerFunc {
	return func(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
		va, vb := fr.Get(int(ins.A)), fr.Get(int(ins.B))
		var take bool
		if refCompare {
			eq := object.Equal(va, vb)
			if isEqOp(op) {
				take = eq
			} else {
				take = !eq
			}
		} else {
			take = op(va.AsInt(), vb.AsInt())
		}
		if take {
			jump(fr, ins, ins.Branch)
		} else {
			fr.PC += uint32(ins.Len)
		}
		return nil, true, nil
	}
}

func makeIfzHandler(op ifOp) handlerFunc {
	return func(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
		if op(fr.Get(int(ins.A)).AsInt(), 0) {
			jump(fr, ins, ins.Branch)
		} else {
			fr.PC += uint32(ins.Len)
		}
		return nil, true, nil
	}
}

var (
	ifEq = func(a, b int32) bool { return a == b }
	ifNe = func(a, b int32) bool { return a != b }
	ifLt = func(a, b int32) bool { return a < b }
	ifGe = func(a, b int32) bool { return a >= b }
	ifGt = func(a, b int32) bool { return a > b }
	ifLe = func(a, b int32) bool { return a <= b }
)

// --- three-way compares ---

func sign(i int) int32 {
	switch {
	case i < 0:
		return -1
	case i > 0:
		return 1
	default:
		return 0
	}
}

func opCmpLong(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	a := object.ToInt64(fr.GetWide(int(ins.B)))
	b := object.ToInt64(fr.GetWide(int(ins.C)))
	fr.Set(int(ins.A), object.Int32(sign(cmp64(a, b))))
	return nil, false, nil
}

func cmp64(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func makeFloatCmp(nanResult int32, wide bool) handlerFunc {
	return func(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
		var result int32
		if wide {
			a := object.ToFloat64(fr.GetWide(int(ins.B)))
			b := object.ToFloat64(fr.GetWide(int(ins.C)))
			if a != a || b != b { // either is NaN
				result = nanResult
			} else {
				result = sign(cmp64f(a, b))
			}
		} else {
			a := fr.Get(int(ins.B)).AsFloat()
			b := fr.Get(int(ins.C)).AsFloat()
			if a != a || b != b {
				result = nanResult
			} else {
				result = sign(cmp64f(float64(a), float64(b)))
			}
		}
		fr.Set(int(ins.A), object.Int32(result))
		return nil, false, nil
	}
}

func cmp64f(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
