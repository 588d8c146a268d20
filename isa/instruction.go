package isa

import (
	"github.com/linkinparks/mfpga/mfpgaerr"
)

// Instruction is the decoded form of a 32-bit DSP instruction word. Not
// every field is meaningful for every opcode: Format A instructions use
// SrcC/Shift/Sat/NoShift, Format B instructions use ResAddr, and both
// share SrcA/SrcB/Dest with the appropriate is-register flags.
type Instruction struct {
	Opcode Opcode

	SrcA    int
	AIsReg  bool
	SrcB    int
	BIsReg  bool
	SrcC    int
	CIsReg  bool
	Dest    int

	Shift   int // [0,15], meaningless when NoShift is true
	Sat     bool
	NoShift bool

	ResAddr int // Format B only
}

const (
	opWidth      = 6
	regAddrWidth = 4
	destWidth    = 4
	shiftWidth   = 5
	resAddrWidthB = 8
)

func packReg(idx int, isReg bool) uint32 {
	v := uint32(idx) & 0xF
	if isReg {
		v |= 1 << 4
	}
	return v
}

func unpackReg(field uint32) (idx int, isReg bool) {
	return int(field & 0xF), field&(1<<4) != 0
}

// Encode packs an Instruction into its 32-bit wire form. Bit 5 of the
// result equals Format(instr.Opcode); the remaining fields are placed per
// SPEC_FULL.md §5.2.
func Encode(instr Instruction) (uint32, error) {
	code, ok := wireCode(instr.Opcode)
	if !ok {
		return 0, mfpgaerr.Newf(mfpgaerr.BadInstruction, "unknown opcode %v", instr.Opcode)
	}

	format := Format(instr.Opcode)
	opcodeField := uint32(code) & 0x1F
	if format == FormatB {
		opcodeField |= 1 << 5
	}

	var word uint32
	word |= opcodeField

	switch format {
	case FormatA:
		word |= packReg(instr.SrcA, instr.AIsReg) << 6
		word |= packReg(instr.SrcB, instr.BIsReg) << 11
		word |= packReg(instr.SrcC, instr.CIsReg) << 16
		word |= (uint32(instr.Dest) & 0xF) << 21
		word |= (uint32(instr.Shift) & 0x1F) << 25
		if instr.Sat {
			word |= 1 << 30
		}
		if instr.NoShift {
			word |= 1 << 31
		}
	case FormatB:
		word |= packReg(instr.SrcA, instr.AIsReg) << 6
		word |= packReg(instr.SrcB, instr.BIsReg) << 11
		word |= (uint32(instr.Dest) & 0xF) << 16
		word |= (uint32(instr.ResAddr) & 0xFF) << 20
	}

	return word, nil
}

// Decode unpacks a 32-bit wire word into an Instruction. It returns
// BadInstruction if the opcode bits don't correspond to any known
// opcode in the discriminated format.
func Decode(word uint32) (Instruction, error) {
	opcodeField := word & 0x3F
	code := int(opcodeField & 0x1F)
	format := FormatKind((opcodeField >> 5) & 1)

	var (
		opcode Opcode
		ok     bool
	)
	if format == FormatB {
		opcode, ok = formatBByCode[code]
	} else {
		opcode, ok = formatAByCode[code]
	}
	if !ok {
		return Instruction{}, mfpgaerr.Newf(mfpgaerr.BadInstruction, "unknown opcode word 0x%08X", word)
	}

	instr := Instruction{Opcode: opcode}

	switch format {
	case FormatA:
		instr.SrcA, instr.AIsReg = unpackReg((word >> 6) & 0x1F)
		instr.SrcB, instr.BIsReg = unpackReg((word >> 11) & 0x1F)
		instr.SrcC, instr.CIsReg = unpackReg((word >> 16) & 0x1F)
		instr.Dest = int((word >> 21) & 0xF)
		instr.Shift = int((word >> 25) & 0x1F)
		instr.Sat = (word>>30)&1 != 0
		instr.NoShift = (word>>31)&1 != 0
	case FormatB:
		instr.SrcA, instr.AIsReg = unpackReg((word >> 6) & 0x1F)
		instr.SrcB, instr.BIsReg = unpackReg((word >> 11) & 0x1F)
		instr.Dest = int((word >> 16) & 0xF)
		instr.ResAddr = int((word >> 20) & 0xFF)
	}

	return instr, nil
}

// NOPInstruction returns the canonical encoded NOP instruction, used to
// initialise a pipeline's instruction array.
func NOPInstruction() Instruction {
	return Instruction{Opcode: NOP}
}
