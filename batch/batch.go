// Package batch implements the append-only transfer-batch buffer and its
// typed command writers: the serialised form of a compiled effect that
// crosses to the device-side decoder.
package batch

import "github.com/linkinparks/mfpga/mfpgaerr"

// Command opcodes, per the wire format table.
const (
	OpSwapPipelines    byte = 0b0000_0001
	OpSetInputGain     byte = 0b0000_0010
	OpSetOutputGain    byte = 0b0000_0011
	OpAllocDelay       byte = 0b0010_0000
	OpCommitRegUpdates byte = 0b0000_1010
	OpResetPipeline    byte = 0b0000_1001
	OpWriteBlockInstr  byte = 0b1001_0000
	OpWriteBlockReg    byte = 0b1110_0000
	OpUpdateBlockReg   byte = 0b1110_1000
)

// Batch is a growable byte buffer, doubling on exhaustion, that carries a
// serialised command stream. Every high-level writer either appends its
// entire command or leaves the buffer untouched.
type Batch struct {
	data []byte
}

// New returns an empty Batch with a small initial capacity.
func New() *Batch {
	return &Batch{data: make([]byte, 0, 64)}
}

// Bytes returns the buffer's contents. The returned slice aliases the
// Batch's storage and must not be retained across further appends.
func (b *Batch) Bytes() []byte {
	return b.data
}

// Len returns the number of bytes written so far.
func (b *Batch) Len() int {
	return len(b.data)
}

func (b *Batch) AppendU8(v uint8) {
	b.data = append(b.data, v)
}

func (b *Batch) AppendU16BE(v uint16) {
	b.data = append(b.data, byte(v>>8), byte(v))
}

func (b *Batch) AppendU32BE(v uint32) {
	b.data = append(b.data, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// checkpoint/rollback give writers atomic append-or-none semantics without
// needing to pre-validate every field before touching the buffer.
func (b *Batch) checkpoint() int {
	return len(b.data)
}

func (b *Batch) rollback(mark int) {
	b.data = b.data[:mark]
}

// WriteBlockInstr appends a WRITE_BLOCK_INSTR command: block index
// (must fit in a byte) and the 32-bit instruction word.
func (b *Batch) WriteBlockInstr(block int, instrWord uint32) error {
	if block < 0 || block > 255 {
		return mfpgaerr.Newf(mfpgaerr.BadArgs, "block index %d does not fit in one byte", block)
	}
	b.AppendU8(OpWriteBlockInstr)
	b.AppendU8(uint8(block))
	b.AppendU32BE(instrWord)
	return nil
}

func (b *Batch) writeRegCommand(opcode byte, block, reg int, value int16) error {
	if block < 0 || block > 255 {
		return mfpgaerr.Newf(mfpgaerr.BadArgs, "block index %d does not fit in one byte", block)
	}
	if reg != 0 && reg != 1 {
		return mfpgaerr.Newf(mfpgaerr.BadArgs, "register index %d out of range", reg)
	}
	b.AppendU8(opcode)
	b.AppendU8(uint8(block))
	b.AppendU8(uint8(reg))
	b.AppendU16BE(uint16(value))
	return nil
}

// WriteBlockReg appends a WRITE_BLOCK_REG command.
func (b *Batch) WriteBlockReg(block, reg int, value int16) error {
	mark := b.checkpoint()
	if err := b.writeRegCommand(OpWriteBlockReg, block, reg, value); err != nil {
		b.rollback(mark)
		return err
	}
	return nil
}

// UpdateBlockReg appends an UPDATE_BLOCK_REG command.
func (b *Batch) UpdateBlockReg(block, reg int, value int16) error {
	mark := b.checkpoint()
	if err := b.writeRegCommand(OpUpdateBlockReg, block, reg, value); err != nil {
		b.rollback(mark)
		return err
	}
	return nil
}

// CommitRegUpdates appends a COMMIT_REG_UPDATES command (no payload).
func (b *Batch) CommitRegUpdates() {
	b.AppendU8(OpCommitRegUpdates)
}

// AllocDelay appends an ALLOC_DELAY command. size must be a power of two
// and fit in 16 bits.
func (b *Batch) AllocDelay(size int) error {
	if size <= 0 || size > 0xFFFF || size&(size-1) != 0 {
		return mfpgaerr.Newf(mfpgaerr.BadArgs, "delay size %d is not a positive power of two fitting in 16 bits", size)
	}
	b.AppendU8(OpAllocDelay)
	b.AppendU16BE(uint16(size))
	return nil
}

// SwapPipelines appends a SWAP_PIPELINES command (no payload).
func (b *Batch) SwapPipelines() {
	b.AppendU8(OpSwapPipelines)
}

// ResetPipeline appends a RESET_PIPELINE command (no payload).
func (b *Batch) ResetPipeline() {
	b.AppendU8(OpResetPipeline)
}

// SetInputGain appends a SET_INPUT_GAIN command with a Q10.5 value.
func (b *Batch) SetInputGain(q105 int16) {
	b.AppendU8(OpSetInputGain)
	b.AppendU16BE(uint16(q105))
}

// SetOutputGain appends a SET_OUTPUT_GAIN command with a Q10.5 value.
func (b *Batch) SetOutputGain(q105 int16) {
	b.AppendU8(OpSetOutputGain)
	b.AppendU16BE(uint16(q105))
}
