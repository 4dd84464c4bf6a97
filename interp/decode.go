package interp

import "fmt"

// Instruction is one decoded bytecode instruction. Only the fields
// meaningful for its Format are populated; callers know which to read
// because they dispatch on Op.Format.
type Instruction struct {
	Op  OpInfo
	PC  uint32 // byte offset of the opcode byte
	Len int    // total byte length, including the opcode byte

	A, B, C int32 // register indices, or literal/immediate depending on format
	Args    []int32 // decoded callee-argument registers (35c / 3rc forms)
	PoolIdx int32
	Lit     int64
	Branch  int32 // signed branch offset, in 16-bit code units
}

func codeUnit(code []byte, byteOff int) uint16 {
	return uint16(code[byteOff]) | uint16(code[byteOff+1])<<8
}

func sext16(u uint16) int32 { return int32(int16(u)) }
func sext8(b byte) int32    { return int32(int8(b)) }

// Decode reads the instruction starting at byte offset pc in code. It
// never needs to special-case individual mnemonics: only Op.Format
// drives field extraction.
func Decode(code []byte, pc uint32) (Instruction, error) {
	if int(pc) >= len(code) {
		return Instruction{}, fmt.Errorf("interp: pc %d out of range (len %d)", pc, len(code))
	}
	opByte := code[pc]
	op, ok := lookupOp(opByte)
	if !ok {
		return Instruction{}, fmt.Errorf("interp: unassigned opcode 0x%02x at pc %d", opByte, pc)
	}
	need := op.Format.ByteLength()
	if int(pc)+need > len(code) {
		return Instruction{}, fmt.Errorf("interp: %s at pc %d truncated (need %d bytes, have %d)", op.Name, pc, need, len(code)-int(pc))
	}
	ins := Instruction{Op: op, PC: pc, Len: need}
	b := code[pc:]

	switch op.Format {
	case Fmt10x:
		// no operands

	case Fmt12x:
		ins.A = int32(b[1] & 0x0F)
		ins.B = int32(b[1] >> 4)

	case Fmt11n:
		ins.A = int32(b[1] & 0x0F)
		ins.Lit = int64(sext8((b[1]>>4)<<4) >> 4) // sign-extend low 4 bits of the high nibble

	case Fmt11x:
		ins.A = int32(b[1])

	case Fmt10t:
		ins.Branch = sext8(b[1])

	case Fmt20t:
		ins.Branch = sext16(codeUnit(b, 2))

	case Fmt22x:
		ins.A = int32(b[1])
		ins.B = int32(codeUnit(b, 2))

	case Fmt21t:
		ins.A = int32(b[1])
		ins.Branch = sext16(codeUnit(b, 2))

	case Fmt21s:
		ins.A = int32(b[1])
		ins.Lit = int64(sext16(codeUnit(b, 2)))

	case Fmt21h:
		ins.A = int32(b[1])
		ins.Lit = int64(codeUnit(b, 2)) // caller shifts left 16 or 48 per width

	case Fmt21c:
		ins.A = int32(b[1])
		ins.PoolIdx = int32(codeUnit(b, 2))

	case Fmt23x:
		ins.A = int32(b[1])
		ins.B = int32(b[2])
		ins.C = int32(b[3])

	case Fmt22b:
		ins.A = int32(b[1])
		ins.B = int32(b[2])
		ins.Lit = int64(sext8(b[3]))

	case Fmt22t:
		ins.A = int32(b[1] & 0x0F)
		ins.B = int32(b[1] >> 4)
		ins.Branch = sext16(codeUnit(b, 2))

	case Fmt22s:
		ins.A = int32(b[1] & 0x0F)
		ins.B = int32(b[1] >> 4)
		ins.Lit = int64(sext16(codeUnit(b, 2)))

	case Fmt22c:
		ins.A = int32(b[1] & 0x0F)
		ins.B = int32(b[1] >> 4)
		ins.PoolIdx = int32(codeUnit(b, 2))

	case Fmt30t:
		lo := uint32(codeUnit(b, 2))
		hi := uint32(codeUnit(b, 4))
		ins.Branch = int32(lo | hi<<16)

	case Fmt32x:
		ins.A = int32(codeUnit(b, 2))
		ins.B = int32(codeUnit(b, 4))

	case Fmt31i:
		ins.A = int32(b[1])
		lo := uint32(codeUnit(b, 2))
		hi := uint32(codeUnit(b, 4))
		ins.Lit = int64(int32(lo | hi<<16))

	case Fmt31t:
		ins.A = int32(b[1])
		lo := uint32(codeUnit(b, 2))
		hi := uint32(codeUnit(b, 4))
		ins.Branch = int32(lo | hi<<16)

	case Fmt31c:
		ins.A = int32(b[1])
		lo := uint32(codeUnit(b, 2))
		hi := uint32(codeUnit(b, 4))
		ins.PoolIdx = int32(lo | hi<<16)

	case Fmt35c:
		count := int32(b[1] >> 4)
		g := int32(b[1] & 0x0F)
		ins.PoolIdx = int32(codeUnit(b, 2))
		cu2 := codeUnit(b, 4)
		c := int32(cu2 & 0x0F)
		d := int32((cu2 >> 4) & 0x0F)
		e := int32((cu2 >> 8) & 0x0F)
		f := int32((cu2 >> 12) & 0x0F)
		all := []int32{c, d, e, f, g}
		ins.Args = all[:count]

	case Fmt3rc:
		count := int32(b[1])
		ins.PoolIdx = int32(codeUnit(b, 2))
		start := int32(codeUnit(b, 4))
		args := make([]int32, count)
		for i := range args {
			args[i] = start + int32(i)
		}
		ins.Args = args

	case Fmt51l:
		ins.A = int32(b[1])
		var v uint64
		for i := 0; i < 4; i++ {
			v |= uint64(codeUnit(b, 2+2*i)) << (16 * i)
		}
		ins.Lit = int64(v)

	default:
		return Instruction{}, fmt.Errorf("interp: unhandled format %q", op.Format)
	}

	return ins, nil
}
