package isa

import (
	"testing"

	"github.com/linkinparks/mfpga/mfpgaerr"
)

func TestFormatDiscrimination(t *testing.T) {
	if Format(MADD) != FormatA {
		t.Errorf("MADD should be FormatA")
	}
	if Format(DELAYREAD) != FormatB {
		t.Errorf("DELAY_READ should be FormatB")
	}
}

func TestEncodeFormatBitMatchesFormat(t *testing.T) {
	tests := []Opcode{NOP, MADD, ARSH, MACZ, LUTREAD, DELAYREAD, MEMWRITE}
	for _, op := range tests {
		word, err := Encode(Instruction{Opcode: op})
		if err != nil {
			t.Fatalf("Encode(%v) error: %v", op, err)
		}
		bit5 := (word >> 5) & 1
		if FormatKind(bit5) != Format(op) {
			t.Errorf("opcode %v: bit5=%d, format=%v", op, bit5, Format(op))
		}
	}
}

func TestRoundTripFormatA(t *testing.T) {
	orig := Instruction{
		Opcode: MADD,
		SrcA:   3, AIsReg: false,
		SrcB: 1, BIsReg: true,
		SrcC: 2, CIsReg: false,
		Dest:  7,
		Shift: 5, Sat: true, NoShift: false,
	}

	word, err := Encode(orig)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	decoded, err := Decode(word)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	if decoded != orig {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, orig)
	}
}

func TestRoundTripFormatB(t *testing.T) {
	orig := Instruction{
		Opcode: DELAYREAD,
		SrcA:   9, AIsReg: true,
		SrcB: 0, BIsReg: false,
		Dest:    4,
		ResAddr: 200,
	}

	word, err := Encode(orig)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}

	decoded, err := Decode(word)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	if decoded != orig {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, orig)
	}
}

func TestDecodeUnknownOpcode(t *testing.T) {
	// Format A, code value past the last known opcode (22..31 unused).
	word := uint32(30)
	_, err := Decode(word)
	if !mfpgaerr.Is(err, mfpgaerr.BadInstruction) {
		t.Errorf("expected BadInstruction, got %v", err)
	}
}

func TestEncodeUnknownOpcode(t *testing.T) {
	_, err := Encode(Instruction{Opcode: Opcode(999)})
	if !mfpgaerr.Is(err, mfpgaerr.BadInstruction) {
		t.Errorf("expected BadInstruction, got %v", err)
	}
}

func TestAllKnownOpcodesRoundTrip(t *testing.T) {
	all := []Opcode{
		NOP, ADD, SUB, MADD, ARSH, LSH, RSH, ABS, MIN, MAX, CLAMP,
		MOVACC, MOVLACC, MOVUACC, MACZ, UMACZ, MAC, UMAC,
		ACC, CLEARACC, LOADACC, SAVEACC,
		LUTREAD, DELAYREAD, DELAYWRITE, MEMREAD, MEMWRITE, FRACDELAYREAD,
	}

	for _, op := range all {
		instr := Instruction{Opcode: op, SrcA: 1, SrcB: 2, Dest: 3, ResAddr: 5}
		word, err := Encode(instr)
		if err != nil {
			t.Fatalf("Encode(%v): %v", op, err)
		}
		decoded, err := Decode(word)
		if err != nil {
			t.Fatalf("Decode after Encode(%v): %v", op, err)
		}
		if decoded.Opcode != op {
			t.Errorf("opcode %v round-tripped to %v", op, decoded.Opcode)
		}
	}
}
