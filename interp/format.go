/*
 * dalvik - a Dalvik-compatible bytecode virtual machine
 * Instruction formats and the disassembler length table, grounded on
 * the opcode dispatch table of original_source/src/interpreter.cpp and
 * on the Disassembler contract named alongside it.
 */

// Package interp implements the opcode interpreter: instruction decode,
// the per-opcode handler table, exception unwinding, and the top-level
// run loop that drives a thread until its frame stack empties.
package interp

// Format names one of the fixed Dalvik instruction layouts. The suffix
// encodes register-operand shape; most formats fit in one 16-bit code
// unit (2 bytes) beyond any operand words.
type Format string

const (
	Fmt10x Format = "10x" // no operands (nop, return-void, ...)
	Fmt12x Format = "12x" // two 4-bit registers
	Fmt11n Format = "11n" // 4-bit register + 4-bit signed literal
	Fmt11x Format = "11x" // one 8-bit register
	Fmt10t Format = "10t" // 8-bit signed branch offset
	Fmt20t Format = "20t" // 16-bit signed branch offset
	Fmt22x Format = "22x" // 8-bit register + 16-bit register
	Fmt21t Format = "21t" // 8-bit register + 16-bit signed branch offset
	Fmt21s Format = "21s" // 8-bit register + 16-bit signed literal
	Fmt21h Format = "21h" // 8-bit register + 16-bit literal, shifted
	Fmt21c Format = "21c" // 8-bit register + 16-bit pool index
	Fmt23x Format = "23x" // three 8-bit registers
	Fmt22b Format = "22b" // 8-bit register + 8-bit register + 8-bit literal
	Fmt22t Format = "22t" // two 4-bit registers + 16-bit signed branch offset
	Fmt22s Format = "22s" // two 4-bit registers + 16-bit signed literal
	Fmt22c Format = "22c" // two 4-bit registers + 16-bit pool index
	Fmt30t Format = "30t" // 32-bit signed branch offset
	Fmt32x Format = "32x" // 16-bit register + 16-bit register
	Fmt31i Format = "31i" // 8-bit register + 32-bit literal
	Fmt31t Format = "31t" // 8-bit register + 32-bit signed offset (payload tables)
	Fmt31c Format = "31c" // 8-bit register + 32-bit pool index (jumbo string)
	Fmt35c Format = "35c" // 4-bit arg count + pool index + up to five 4-bit regs
	Fmt3rc Format = "3rc" // 8-bit arg count + pool index + consecutive register range
	Fmt51l Format = "51l" // 8-bit register + 64-bit literal
)

// lengthUnits is the instruction length in 16-bit code units (including
// the opcode unit itself), indexed by Format. The disassembler and the
// interpreter's pc-advance both consult this table so they can never
// disagree on length.
var lengthUnits = map[Format]int{
	Fmt10x: 1, Fmt12x: 1, Fmt11n: 1, Fmt11x: 1, Fmt10t: 1,
	Fmt20t: 2, Fmt22x: 2, Fmt21t: 2, Fmt21s: 2, Fmt21h: 2, Fmt21c: 2,
	Fmt23x: 2, Fmt22b: 2, Fmt22t: 2, Fmt22s: 2, Fmt22c: 2,
	Fmt30t: 3, Fmt32x: 3, Fmt31i: 3, Fmt31t: 3, Fmt31c: 3,
	Fmt35c: 3, Fmt3rc: 3,
	Fmt51l: 5,
}

// ByteLength returns the instruction's length in bytes (code units * 2).
func (f Format) ByteLength() int { return lengthUnits[f] * 2 }

// OpInfo is one opcode's static metadata: its mnemonic (for the
// disassembler and error messages) and instruction format (for decode
// and length).
type OpInfo struct {
	Name   string
	Format Format
}
