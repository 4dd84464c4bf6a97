package interp

// Small byte-level encoders for hand-assembling instruction streams in
// tests, mirroring the field layouts Decode expects.

func u16(v uint16) (byte, byte) { return byte(v), byte(v >> 8) }

func enc10x(op byte) []byte { return []byte{op, 0x00} }

func enc12x(op byte, a, b int) []byte {
	return []byte{op, byte(a&0x0F) | byte(b&0x0F)<<4}
}

func enc11n(op byte, a int, lit int8) []byte {
	return []byte{op, byte(a&0x0F) | byte(lit&0x0F)<<4}
}

func enc11x(op byte, a int) []byte { return []byte{op, byte(a)} }

func enc10t(op byte, offset int8) []byte { return []byte{op, byte(offset)} }

func enc22x(op byte, a int, b uint16) []byte {
	lo, hi := u16(b)
	return []byte{op, byte(a), lo, hi}
}

func enc21t(op byte, a int, offset int16) []byte {
	lo, hi := u16(uint16(offset))
	return []byte{op, byte(a), lo, hi}
}

func enc21s(op byte, a int, lit int16) []byte {
	lo, hi := u16(uint16(lit))
	return []byte{op, byte(a), lo, hi}
}

func enc21c(op byte, a int, poolIdx uint16) []byte {
	lo, hi := u16(poolIdx)
	return []byte{op, byte(a), lo, hi}
}

func enc23x(op byte, a, b, c int) []byte {
	return []byte{op, byte(a), byte(b), byte(c)}
}

func enc22b(op byte, a, b int, lit int8) []byte {
	return []byte{op, byte(a), byte(b), byte(lit)}
}

func enc22t(op byte, a, b int, offset int16) []byte {
	lo, hi := u16(uint16(offset))
	return []byte{op, byte(a&0x0F) | byte(b&0x0F)<<4, lo, hi}
}

func enc22s(op byte, a, b int, lit int16) []byte {
	lo, hi := u16(uint16(lit))
	return []byte{op, byte(a&0x0F) | byte(b&0x0F)<<4, lo, hi}
}

func enc22c(op byte, a, b int, poolIdx uint16) []byte {
	lo, hi := u16(poolIdx)
	return []byte{op, byte(a&0x0F) | byte(b&0x0F)<<4, lo, hi}
}

func enc31i(op byte, a int, lit int32) []byte {
	lo, hi := u16(uint16(uint32(lit)))
	lo2, hi2 := u16(uint16(uint32(lit) >> 16))
	return []byte{op, byte(a), lo, hi, lo2, hi2}
}

func enc31t(op byte, a int, branch int32) []byte { return enc31i(op, a, branch) }

func enc35c(op byte, poolIdx uint16, regs []int) []byte {
	count := len(regs)
	padded := [5]int{}
	copy(padded[:], regs)
	g := padded[4]
	b1 := byte(count<<4) | byte(g&0x0F)
	poolLo, poolHi := u16(poolIdx)
	cu2 := uint16(padded[0]&0x0F) | uint16(padded[1]&0x0F)<<4 | uint16(padded[2]&0x0F)<<8 | uint16(padded[3]&0x0F)<<12
	cuLo, cuHi := u16(cu2)
	return []byte{op, b1, poolLo, poolHi, cuLo, cuHi}
}

func enc3rc(op byte, poolIdx uint16, startReg uint16, count int) []byte {
	poolLo, poolHi := u16(poolIdx)
	startLo, startHi := u16(startReg)
	return []byte{op, byte(count), poolLo, poolHi, startLo, startHi}
}

// concatIns joins a sequence of already-encoded instructions into one
// contiguous code array, the way a method's bytecode is laid out.
func concatIns(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}
