package interp

import (
	"math"

	"dalvik/frame"
	"dalvik/object"
)

// --- int/long/float/double binary operator tables, shared by the 23x,
// 2addr, lit16 and lit8 encodings of the same arithmetic family ---

// i32op returns (result, ok); ok is false only for div/rem by zero,
// which the caller turns into an ArithmeticException.
type i32op func(a, b int32) (int32, bool)
type i64op func(a, b int64) (int64, bool)
type f32op func(a, b float32) float32
type f64op func(a, b float64) float64

var intOps = [11]i32op{
	func(a, b int32) (int32, bool) { return a + b, true },
	func(a, b int32) (int32, bool) { return a - b, true },
	func(a, b int32) (int32, bool) { return a * b, true },
	func(a, b int32) (int32, bool) {
		if b == 0 {
			return 0, false
		}
		return a / b, true
	},
	func(a, b int32) (int32, bool) {
		if b == 0 {
			return 0, false
		}
		return a % b, true
	},
	func(a, b int32) (int32, bool) { return a & b, true },
	func(a, b int32) (int32, bool) { return a | b, true },
	func(a, b int32) (int32, bool) { return a ^ b, true },
	func(a, b int32) (int32, bool) { return a << uint(b&31), true },
	func(a, b int32) (int32, bool) { return a >> uint(b&31), true },
	func(a, b int32) (int32, bool) { return int32(uint32(a) >> (uint32(b) & 31)), true },
}

var longOps = [11]i64op{
	func(a, b int64) (int64, bool) { return a + b, true },
	func(a, b int64) (int64, bool) { return a - b, true },
	func(a, b int64) (int64, bool) { return a * b, true },
	func(a, b int64) (int64, bool) {
		if b == 0 {
			return 0, false
		}
		return a / b, true
	},
	func(a, b int64) (int64, bool) {
		if b == 0 {
			return 0, false
		}
		return a % b, true
	},
	func(a, b int64) (int64, bool) { return a & b, true },
	func(a, b int64) (int64, bool) { return a | b, true },
	func(a, b int64) (int64, bool) { return a ^ b, true },
	func(a, b int64) (int64, bool) { return a << uint(b&63), true },
	func(a, b int64) (int64, bool) { return a >> uint(b&63), true },
	func(a, b int64) (int64, bool) { return int64(uint64(a) >> (uint64(b) & 63)), true },
}

var floatOps = [5]f32op{
	func(a, b float32) float32 { return a + b },
	func(a, b float32) float32 { return a - b },
	func(a, b float32) float32 { return a * b },
	func(a, b float32) float32 { return a / b },
	func(a, b float32) float32 { return float32(math.Mod(float64(a), float64(b))) },
}

var doubleOps = [5]f64op{
	func(a, b float64) float64 { return a + b },
	func(a, b float64) float64 { return a - b },
	func(a, b float64) float64 { return a * b },
	func(a, b float64) float64 { return a / b },
	math.Mod,
}

// lit16Ops/lit8Ops share intOps' non-shift entries but reorder rsub's
// operands (literal minus register, not register minus literal); a is
// always the register value, b the literal.
var lit16Ops = [8]i32op{intOps[0], rsub, intOps[2], intOps[3], intOps[4], intOps[5], intOps[6], intOps[7]}
var lit8Ops = [11]i32op{intOps[0], rsub, intOps[2], intOps[3], intOps[4], intOps[5], intOps[6], intOps[7], intOps[8], intOps[9], intOps[10]}

func rsub(a, b int32) (int32, bool) { return b - a, true }

func arithThrow(m *Machine) *object.Object {
	return m.Throw("ArithmeticException", "divide by zero")
}

// --- int family: 23x / 12x-2addr / 22s-lit16 / 22b-lit8 ---

func makeIntBin23x(idx int) handlerFunc {
	return func(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
		a, b := fr.Get(int(ins.B)).AsInt(), fr.Get(int(ins.C)).AsInt()
		v, ok := intOps[idx](a, b)
		if !ok {
			return arithThrow(m), false, nil
		}
		fr.Set(int(ins.A), object.Int32(v))
		return nil, false, nil
	}
}

func makeIntBin2addr(idx int) handlerFunc {
	return func(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
		a, b := fr.Get(int(ins.A)).AsInt(), fr.Get(int(ins.B)).AsInt()
		v, ok := intOps[idx](a, b)
		if !ok {
			return arithThrow(m), false, nil
		}
		fr.Set(int(ins.A), object.Int32(v))
		return nil, false, nil
	}
}

func makeIntLit16(idx int) handlerFunc {
	return func(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
		a := fr.Get(int(ins.B)).AsInt()
		v, ok := lit16Ops[idx](a, int32(ins.Lit))
		if !ok {
			return arithThrow(m), false, nil
		}
		fr.Set(int(ins.A), object.Int32(v))
		return nil, false, nil
	}
}

func makeIntLit8(idx int) handlerFunc {
	return func(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
		a := fr.Get(int(ins.B)).AsInt()
		v, ok := lit8Ops[idx](a, int32(ins.Lit))
		if !ok {
			return arithThrow(m), false, nil
		}
		fr.Set(int(ins.A), object.Int32(v))
		return nil, false, nil
	}
}

// --- long family: shl/shr/ushr (idx 8,9,10) take a plain int register
// as the shift distance; every other op takes a wide second operand ---

func isLongShift(idx int) bool { return idx >= 8 }

func makeLongBin23x(idx int) handlerFunc {
	shift := isLongShift(idx)
	return func(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
		aLo, aHi := fr.GetWide(int(ins.B))
		a := object.ToInt64(aLo, aHi)
		var b int64
		if shift {
			b = int64(fr.Get(int(ins.C)).AsInt())
		} else {
			bLo, bHi := fr.GetWide(int(ins.C))
			b = object.ToInt64(bLo, bHi)
		}
		v, ok := longOps[idx](a, b)
		if !ok {
			return arithThrow(m), false, nil
		}
		lo, hi := object.FromInt64(v)
		fr.SetWide(int(ins.A), lo, hi)
		return nil, false, nil
	}
}

func makeLongBin2addr(idx int) handlerFunc {
	shift := isLongShift(idx)
	return func(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
		aLo, aHi := fr.GetWide(int(ins.A))
		a := object.ToInt64(aLo, aHi)
		var b int64
		if shift {
			b = int64(fr.Get(int(ins.B)).AsInt())
		} else {
			bLo, bHi := fr.GetWide(int(ins.B))
			b = object.ToInt64(bLo, bHi)
		}
		v, ok := longOps[idx](a, b)
		if !ok {
			return arithThrow(m), false, nil
		}
		lo, hi := object.FromInt64(v)
		fr.SetWide(int(ins.A), lo, hi)
		return nil, false, nil
	}
}

// --- float family: 23x / 12x-2addr, all single registers ---

func makeFloatBin23x(idx int) handlerFunc {
	return func(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
		a, b := fr.Get(int(ins.B)).AsFloat(), fr.Get(int(ins.C)).AsFloat()
		fr.Set(int(ins.A), object.FromFloat32(floatOps[idx](a, b)))
		return nil, false, nil
	}
}

func makeFloatBin2addr(idx int) handlerFunc {
	return func(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
		a, b := fr.Get(int(ins.A)).AsFloat(), fr.Get(int(ins.B)).AsFloat()
		fr.Set(int(ins.A), object.FromFloat32(floatOps[idx](a, b)))
		return nil, false, nil
	}
}

// --- double family: 23x / 12x-2addr, all wide registers ---

func makeDoubleBin23x(idx int) handlerFunc {
	return func(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
		aLo, aHi := fr.GetWide(int(ins.B))
		bLo, bHi := fr.GetWide(int(ins.C))
		v := doubleOps[idx](object.ToFloat64(aLo, aHi), object.ToFloat64(bLo, bHi))
		lo, hi := object.FromFloat64(v)
		fr.SetWide(int(ins.A), lo, hi)
		return nil, false, nil
	}
}

func makeDoubleBin2addr(idx int) handlerFunc {
	return func(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
		aLo, aHi := fr.GetWide(int(ins.A))
		bLo, bHi := fr.GetWide(int(ins.B))
		v := doubleOps[idx](object.ToFloat64(aLo, aHi), object.ToFloat64(bLo, bHi))
		lo, hi := object.FromFloat64(v)
		fr.SetWide(int(ins.A), lo, hi)
		return nil, false, nil
	}
}

// --- unary family (neg/not/conversions), all 12x ---

func opNegInt(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	fr.Set(int(ins.A), object.Int32(-fr.Get(int(ins.B)).AsInt()))
	return nil, false, nil
}

func opNotInt(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	fr.Set(int(ins.A), object.Int32(^fr.Get(int(ins.B)).AsInt()))
	return nil, false, nil
}

func opNegLong(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	lo, hi := fr.GetWide(int(ins.B))
	r := -object.ToInt64(lo, hi)
	rl, rh := object.FromInt64(r)
	fr.SetWide(int(ins.A), rl, rh)
	return nil, false, nil
}

func opNotLong(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	lo, hi := fr.GetWide(int(ins.B))
	r := ^object.ToInt64(lo, hi)
	rl, rh := object.FromInt64(r)
	fr.SetWide(int(ins.A), rl, rh)
	return nil, false, nil
}

func opNegFloat(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	fr.Set(int(ins.A), object.FromFloat32(-fr.Get(int(ins.B)).AsFloat()))
	return nil, false, nil
}

func opNegDouble(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	lo, hi := fr.GetWide(int(ins.B))
	rl, rh := object.FromFloat64(-object.ToFloat64(lo, hi))
	fr.SetWide(int(ins.A), rl, rh)
	return nil, false, nil
}

func opIntToLong(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	lo, hi := object.FromInt64(int64(fr.Get(int(ins.B)).AsInt()))
	fr.SetWide(int(ins.A), lo, hi)
	return nil, false, nil
}

func opIntToFloat(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	fr.Set(int(ins.A), object.FromFloat32(float32(fr.Get(int(ins.B)).AsInt())))
	return nil, false, nil
}

func opIntToDouble(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	lo, hi := object.FromFloat64(float64(fr.Get(int(ins.B)).AsInt()))
	fr.SetWide(int(ins.A), lo, hi)
	return nil, false, nil
}

func opLongToInt(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	lo, hi := fr.GetWide(int(ins.B))
	fr.Set(int(ins.A), object.Int32(int32(object.ToInt64(lo, hi))))
	return nil, false, nil
}

func opLongToFloat(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	lo, hi := fr.GetWide(int(ins.B))
	fr.Set(int(ins.A), object.FromFloat32(float32(object.ToInt64(lo, hi))))
	return nil, false, nil
}

func opLongToDouble(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	lo, hi := fr.GetWide(int(ins.B))
	rl, rh := object.FromFloat64(float64(object.ToInt64(lo, hi)))
	fr.SetWide(int(ins.A), rl, rh)
	return nil, false, nil
}

// saturatingInt32 implements Java's float/double-to-int conversion: NaN
// becomes 0, out-of-range values saturate to MinInt32/MaxInt32.
func saturatingInt32(f float64) int32 {
	if f != f {
		return 0
	}
	if f >= math.MaxInt32 {
		return math.MaxInt32
	}
	if f <= math.MinInt32 {
		return math.MinInt32
	}
	return int32(f)
}

func saturatingInt64(f float64) int64 {
	if f != f {
		return 0
	}
	if f >= math.MaxInt64 {
		return math.MaxInt64
	}
	if f <= math.MinInt64 {
		return math.MinInt64
	}
	return int64(f)
}

func opFloatToInt(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	fr.Set(int(ins.A), object.Int32(saturatingInt32(float64(fr.Get(int(ins.B)).AsFloat()))))
	return nil, false, nil
}

func opFloatToLong(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	lo, hi := object.FromInt64(saturatingInt64(float64(fr.Get(int(ins.B)).AsFloat())))
	fr.SetWide(int(ins.A), lo, hi)
	return nil, false, nil
}

func opFloatToDouble(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	lo, hi := object.FromFloat64(float64(fr.Get(int(ins.B)).AsFloat()))
	fr.SetWide(int(ins.A), lo, hi)
	return nil, false, nil
}

func opDoubleToInt(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	lo, hi := fr.GetWide(int(ins.B))
	fr.Set(int(ins.A), object.Int32(saturatingInt32(object.ToFloat64(lo, hi))))
	return nil, false, nil
}

func opDoubleToLong(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	lo, hi := fr.GetWide(int(ins.B))
	rl, rh := object.FromInt64(saturatingInt64(object.ToFloat64(lo, hi)))
	fr.SetWide(int(ins.A), rl, rh)
	return nil, false, nil
}

func opDoubleToFloat(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	lo, hi := fr.GetWide(int(ins.B))
	fr.Set(int(ins.A), object.FromFloat32(float32(object.ToFloat64(lo, hi))))
	return nil, false, nil
}

func opIntToByte(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	fr.Set(int(ins.A), object.Int32(signExtendByte(fr.Get(int(ins.B)).AsInt())))
	return nil, false, nil
}

func opIntToChar(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	fr.Set(int(ins.A), object.Int32(zeroExtendChar(fr.Get(int(ins.B)).AsInt())))
	return nil, false, nil
}

func opIntToShort(m *Machine, th *frame.Thread, fr *frame.Frame, ins Instruction) (*object.Object, bool, error) {
	fr.Set(int(ins.A), object.Int32(signExtendShort(fr.Get(int(ins.B)).AsInt())))
	return nil, false, nil
}

func installArithHandlers() {
	handlers[0x7B] = opNegInt
	handlers[0x7C] = opNotInt
	handlers[0x7D] = opNegLong
	handlers[0x7E] = opNotLong
	handlers[0x7F] = opNegFloat
	handlers[0x80] = opNegDouble
	handlers[0x81] = opIntToLong
	handlers[0x82] = opIntToFloat
	handlers[0x83] = opIntToDouble
	handlers[0x84] = opLongToInt
	handlers[0x85] = opLongToFloat
	handlers[0x86] = opLongToDouble
	handlers[0x87] = opFloatToInt
	handlers[0x88] = opFloatToLong
	handlers[0x89] = opFloatToDouble
	handlers[0x8A] = opDoubleToInt
	handlers[0x8B] = opDoubleToLong
	handlers[0x8C] = opDoubleToFloat
	handlers[0x8D] = opIntToByte
	handlers[0x8E] = opIntToChar
	handlers[0x8F] = opIntToShort

	for i := 0; i < 11; i++ {
		handlers[0x90+i] = makeIntBin23x(i)
		handlers[0xB0+i] = makeIntBin2addr(i)
	}
	for i := 0; i < 11; i++ {
		handlers[0x9B+i] = makeLongBin23x(i)
		handlers[0xBB+i] = makeLongBin2addr(i)
	}
	for i := 0; i < 5; i++ {
		handlers[0xA6+i] = makeFloatBin23x(i)
		handlers[0xC6+i] = makeFloatBin2addr(i)
	}
	for i := 0; i < 5; i++ {
		handlers[0xAB+i] = makeDoubleBin23x(i)
		handlers[0xCB+i] = makeDoubleBin2addr(i)
	}
	for i := 0; i < 8; i++ {
		handlers[0xD0+i] = makeIntLit16(i)
	}
	for i := 0; i < 11; i++ {
		handlers[0xD8+i] = makeIntLit8(i)
	}
}
