package batch

import (
	"bytes"
	"testing"

	"github.com/linkinparks/mfpga/mfpgaerr"
)

func TestAppendU8U16U32(t *testing.T) {
	b := New()
	b.AppendU8(0xAB)
	b.AppendU16BE(0x1234)
	b.AppendU32BE(0xDEADBEEF)

	want := []byte{0xAB, 0x12, 0x34, 0xDE, 0xAD, 0xBE, 0xEF}
	if !bytes.Equal(b.Bytes(), want) {
		t.Errorf("got % X, want % X", b.Bytes(), want)
	}
}

func TestWriteBlockInstr(t *testing.T) {
	b := New()
	if err := b.WriteBlockInstr(3, 0xCAFEBABE); err != nil {
		t.Fatalf("WriteBlockInstr error: %v", err)
	}
	want := []byte{OpWriteBlockInstr, 0x03, 0xCA, 0xFE, 0xBA, 0xBE}
	if !bytes.Equal(b.Bytes(), want) {
		t.Errorf("got % X, want % X", b.Bytes(), want)
	}
}

func TestWriteBlockInstrRejectsOutOfRangeBlock(t *testing.T) {
	b := New()
	err := b.WriteBlockInstr(300, 0)
	if !mfpgaerr.Is(err, mfpgaerr.BadArgs) {
		t.Errorf("expected BadArgs, got %v", err)
	}
	if b.Len() != 0 {
		t.Errorf("expected no partial write, buffer has %d bytes", b.Len())
	}
}

func TestWriteBlockRegLayout(t *testing.T) {
	b := New()
	if err := b.WriteBlockReg(1, 0, 16384); err != nil {
		t.Fatalf("WriteBlockReg error: %v", err)
	}
	want := []byte{OpWriteBlockReg, 0x01, 0x00, 0x40, 0x00}
	if !bytes.Equal(b.Bytes(), want) {
		t.Errorf("got % X, want % X", b.Bytes(), want)
	}
}

func TestUpdateBlockRegRejectsBadRegAtomically(t *testing.T) {
	b := New()
	err := b.UpdateBlockReg(0, 5, 0)
	if !mfpgaerr.Is(err, mfpgaerr.BadArgs) {
		t.Errorf("expected BadArgs, got %v", err)
	}
	if b.Len() != 0 {
		t.Errorf("expected no partial write, buffer has %d bytes", b.Len())
	}
}

func TestAllocDelayRequiresPowerOfTwo(t *testing.T) {
	b := New()
	if err := b.AllocDelay(100); err == nil {
		t.Errorf("expected error for non-power-of-two size")
	}
	if err := b.AllocDelay(8192); err != nil {
		t.Errorf("AllocDelay(8192) unexpected error: %v", err)
	}
}

func TestNoPayloadCommands(t *testing.T) {
	b := New()
	b.SwapPipelines()
	b.ResetPipeline()
	b.CommitRegUpdates()
	want := []byte{OpSwapPipelines, OpResetPipeline, OpCommitRegUpdates}
	if !bytes.Equal(b.Bytes(), want) {
		t.Errorf("got % X, want % X", b.Bytes(), want)
	}
}

func TestGainCommands(t *testing.T) {
	b := New()
	b.SetInputGain(0x0400)
	b.SetOutputGain(0x0400)
	want := []byte{OpSetInputGain, 0x04, 0x00, OpSetOutputGain, 0x04, 0x00}
	if !bytes.Equal(b.Bytes(), want) {
		t.Errorf("got % X, want % X", b.Bytes(), want)
	}
}
