// Package isa implements the 32-bit DSP instruction set: its two mutually
// exclusive encoding formats, the opcode table, and the encode/decode
// round trip every other package in this module builds on.
package isa

// Opcode identifies a DSP instruction's operation. The low 5 bits are the
// opcode's own identity; bit 5 of the encoded instruction word (set by
// Format, not stored here) is the format discriminator.
type Opcode int

const (
	NOP Opcode = iota
	ADD
	SUB
	MADD
	ARSH
	LSH
	RSH
	ABS
	MIN
	MAX
	CLAMP
	MOVACC
	MOVLACC
	MOVUACC
	MACZ
	UMACZ
	MAC
	UMAC

	// Supplemental opcodes carried over from the original reference
	// emulator's commented-out accumulator/fractional-delay path
	// (see SPEC_FULL.md §5.9). They occupy otherwise-unused Format A
	// opcode slots.
	ACC
	CLEARACC
	LOADACC
	SAVEACC
)

// Format B opcodes: resource access (delay lines, scratch memory, LUTs).
const (
	LUTREAD Opcode = iota + 100
	DELAYREAD
	DELAYWRITE
	MEMREAD
	MEMWRITE
	FRACDELAYREAD
)

var opcodeNames = map[Opcode]string{
	NOP:      "NOP",
	ADD:      "ADD",
	SUB:      "SUB",
	MADD:     "MADD",
	ARSH:     "ARSH",
	LSH:      "LSH",
	RSH:      "RSH",
	ABS:      "ABS",
	MIN:      "MIN",
	MAX:      "MAX",
	CLAMP:    "CLAMP",
	MOVACC:   "MOV_ACC",
	MOVLACC:  "MOV_LACC",
	MOVUACC:  "MOV_UACC",
	MACZ:     "MACZ",
	UMACZ:    "UMACZ",
	MAC:      "MAC",
	UMAC:     "UMAC",
	ACC:      "ACC",
	CLEARACC: "CLEAR_ACC",
	LOADACC:  "LOAD_ACC",
	SAVEACC:  "SAVE_ACC",

	LUTREAD:       "LUT_READ",
	DELAYREAD:     "DELAY_READ",
	DELAYWRITE:    "DELAY_WRITE",
	MEMREAD:       "MEM_READ",
	MEMWRITE:      "MEM_WRITE",
	FRACDELAYREAD: "FRAC_DELAY_READ",
}

func (o Opcode) String() string {
	if name, ok := opcodeNames[o]; ok {
		return name
	}
	return "UNKNOWN_OPCODE"
}

// FormatKind is the wire-format discriminator stored in bit 5 of an
// encoded instruction word.
type FormatKind int

const (
	FormatA FormatKind = 0 // arithmetic / MAC / shift / compare
	FormatB FormatKind = 1 // resource access
)

// formatBOpcodes is the set of opcodes that use Format B (resource
// access). Every other known opcode uses Format A.
var formatBOpcodes = map[Opcode]bool{
	LUTREAD:       true,
	DELAYREAD:     true,
	DELAYWRITE:    true,
	MEMREAD:       true,
	MEMWRITE:      true,
	FRACDELAYREAD: true,
}

// Format returns the wire format an opcode is encoded with.
func Format(opcode Opcode) FormatKind {
	if formatBOpcodes[opcode] {
		return FormatB
	}
	return FormatA
}

// NoShift is the sentinel shift value meaning "do not post-shift the
// 32-bit product", taken by the pipeline's multiply helpers. An
// Instruction expresses this with its NoShift field, which the wire
// encoding carries as the dedicated NoShift bit (§4.2); Encode does not
// translate a Shift of NoShift into that bit.
const NoShift = -1

// formatAByCode/formatBByCode map each opcode's low-5-bit wire value back to the
// Opcode, split by format so Format A and Format B opcodes don't collide
// despite sharing the 0..31 numeric range.
var (
	formatAByCode = map[int]Opcode{}
	formatBByCode = map[int]Opcode{}
)

func init() {
	formatAOpcodesInOrder := []Opcode{
		NOP, ADD, SUB, MADD, ARSH, LSH, RSH, ABS, MIN, MAX, CLAMP,
		MOVACC, MOVLACC, MOVUACC, MACZ, UMACZ, MAC, UMAC,
		ACC, CLEARACC, LOADACC, SAVEACC,
	}
	for i, op := range formatAOpcodesInOrder {
		formatAByCode[i] = op
	}

	formatBOpcodesInOrder := []Opcode{
		LUTREAD, DELAYREAD, DELAYWRITE, MEMREAD, MEMWRITE, FRACDELAYREAD,
	}
	for i, op := range formatBOpcodesInOrder {
		formatBByCode[i] = op
	}
}

// wireCode returns the low-5-bit wire value for an opcode, and whether it
// is recognised at all.
func wireCode(opcode Opcode) (code int, ok bool) {
	if Format(opcode) == FormatB {
		for c, op := range formatBByCode {
			if op == opcode {
				return c, true
			}
		}
		return 0, false
	}
	for c, op := range formatAByCode {
		if op == opcode {
			return c, true
		}
	}
	return 0, false
}
