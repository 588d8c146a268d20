// Package pipeline implements the per-sample instruction evaluator: one
// configured pipeline's channel file, accumulator, scratch memory, delay
// lines, and look-up tables, executed against its instruction array once
// per input sample.
package pipeline

import (
	"math"

	"github.com/linkinparks/mfpga/delay"
	"github.com/linkinparks/mfpga/fixedpoint"
	"github.com/linkinparks/mfpga/isa"
)

const (
	NumInstrs    = 256
	NumRegWords  = 512 // 2 per block
	NumChannels  = 16
	NumScratch   = 256
	MaxDelays    = 32
	StockLUTs    = 2
	lutTableSize = 256
)

// Pipeline is one of the engine's two swappable configurations: a fixed
// instruction array plus all the state that array's opcodes read and
// write. Only the inactive pipeline receives WRITE_BLOCK_INSTR /
// WRITE_BLOCK_REG / ALLOC_DELAY; only the active one receives
// UPDATE_BLOCK_REG — that separation is enforced by the engine, not here.
type Pipeline struct {
	instrs    [NumInstrs]isa.Instruction
	regVals   [NumRegWords]int16
	channels  [NumChannels]int16
	acc       int32
	scratch   [NumScratch]int16
	delays    [MaxDelays]*delay.Buffer
	numDelays int
	lastBlock int // -1 means no instructions written yet

	luts [][]int16

	unknownOpcodesSeen map[isa.Opcode]bool
}

// New returns a freshly reset Pipeline with its stock LUTs populated.
func New() *Pipeline {
	p := &Pipeline{lastBlock: -1, unknownOpcodesSeen: make(map[isa.Opcode]bool)}
	p.luts = append(p.luts, sineTable(), tanhTable())
	return p
}

func sineTable() []int16 {
	t := make([]int16, lutTableSize)
	for i := range t {
		angle := 2 * math.Pi * float64(i) / float64(lutTableSize)
		t[i] = fixedpoint.ToQ15(math.Sin(angle))
	}
	return t
}

func tanhTable() []int16 {
	t := make([]int16, lutTableSize)
	for i := range t {
		// Map table index to [-4, 4], a range where tanh is near its
		// asymptotes at both ends.
		x := (float64(i)/float64(lutTableSize))*8 - 4
		t[i] = fixedpoint.ToQ15(math.Tanh(x))
	}
	return t
}

// Reset clears the pipeline to its initial state, matching RESET_PIPELINE.
func (p *Pipeline) Reset() {
	stock := p.luts[:StockLUTs]
	*p = Pipeline{lastBlock: -1, unknownOpcodesSeen: make(map[isa.Opcode]bool)}
	p.luts = append([][]int16{}, stock...)
}

// LastBlock returns the highest-indexed instruction written so far.
func (p *Pipeline) LastBlock() int {
	return p.lastBlock
}

// WriteInstr installs the instruction at blockIdx and bumps the
// high-water mark.
func (p *Pipeline) WriteInstr(blockIdx int, instr isa.Instruction) {
	p.instrs[blockIdx] = instr
	if blockIdx > p.lastBlock {
		p.lastBlock = blockIdx
	}
}

// WriteReg sets block-register (blockIdx, reg) to value. Used for both
// WRITE_BLOCK_REG and UPDATE_BLOCK_REG; the distinction between
// configuring the inactive pipeline and live-tweaking the active one is
// the engine's responsibility, not the pipeline's.
func (p *Pipeline) WriteReg(blockIdx, reg int, value int16) {
	p.regVals[blockIdx*2+reg] = value
}

// AllocDelay appends a new delay buffer of the given size (must already
// be a power of two) and returns its resource index.
func (p *Pipeline) AllocDelay(size int) int {
	idx := p.numDelays
	p.delays[idx] = delay.New(size)
	p.numDelays++
	return idx
}

// NumDelaysAllocated reports how many delay buffers have been allocated.
func (p *Pipeline) NumDelaysAllocated() int {
	return p.numDelays
}

// EnsureLUT grows the user LUT table so index idx is addressable, zero-
// filling any newly created tables. Nothing in the external command set
// (§6) currently writes LUT contents, so user LUTs stay at zero unless a
// caller populates them directly via this handle for testing/tooling.
func (p *Pipeline) EnsureLUT(idx int) {
	for len(p.luts) <= idx {
		p.luts = append(p.luts, make([]int16, lutTableSize))
	}
}

// LUT returns the table at idx, growing the table set if necessary.
func (p *Pipeline) LUT(idx int) []int16 {
	p.EnsureLUT(idx)
	return p.luts[idx]
}

func (p *Pipeline) operand(blockIdx, srcIdx int, isReg bool) int16 {
	if isReg {
		return p.regVals[blockIdx*2+(srcIdx&1)]
	}
	return p.channels[srcIdx&0xF]
}

func (p *Pipeline) setDest(dest int, value int16) {
	p.channels[dest&0xF] = value
}

// Step runs one sample through the instruction array from index 0 to
// lastBlock and returns the new value of channel 0.
func (p *Pipeline) Step(sample int16) int16 {
	p.channels[0] = sample

	for i := 0; i <= p.lastBlock; i++ {
		p.execute(i, p.instrs[i])
	}

	return p.channels[0]
}

func (p *Pipeline) execute(blockIdx int, instr isa.Instruction) {
	a := p.operand(blockIdx, instr.SrcA, instr.AIsReg)
	b := p.operand(blockIdx, instr.SrcB, instr.BIsReg)
	c := p.operand(blockIdx, instr.SrcC, instr.CIsReg)
	shift := instr.Shift
	if instr.NoShift {
		shift = isa.NoShift
	}

	switch instr.Opcode {
	case isa.NOP:
		// True no-op: no branch taken, matching the hardware.

	case isa.ADD:
		p.setDest(instr.Dest, fixedpoint.Sum16Sat(a, b, instr.Sat))
	case isa.SUB:
		p.setDest(instr.Dest, fixedpoint.Sum16Sat(a, negate(b), instr.Sat))
	case isa.MADD:
		prod := fixedpoint.Mul16(a, b, instr.NoShift, instr.Shift, false)
		p.setDest(instr.Dest, fixedpoint.Sum16Sat(prod, c, instr.Sat))
	case isa.ABS:
		p.setDest(instr.Dest, absInt16(a))
	case isa.MIN:
		p.setDest(instr.Dest, minInt16(a, b))
	case isa.MAX:
		p.setDest(instr.Dest, maxInt16(a, b))
	case isa.CLAMP:
		p.setDest(instr.Dest, clampInt16(a, b, c))

	case isa.LSH:
		p.setDest(instr.Dest, int16(uint16(a)<<uint(instr.SrcB&0xF)))
	case isa.RSH:
		p.setDest(instr.Dest, int16(uint16(a)>>uint(instr.SrcB&0xF)))
	case isa.ARSH:
		p.setDest(instr.Dest, a>>uint(instr.SrcB&0xF))

	case isa.MACZ:
		p.acc = mul32(a, b, shift)
	case isa.UMACZ:
		p.acc = umul32(a, b, shift)
	case isa.MAC:
		p.acc += mul32(a, b, shift)
	case isa.UMAC:
		p.acc += umul32(a, b, shift)
	case isa.MOVACC:
		p.setDest(instr.Dest, int16(clampInt32(p.acc)))
	case isa.MOVUACC:
		p.setDest(instr.Dest, int16(uint32(p.acc)>>16))
	case isa.MOVLACC:
		p.setDest(instr.Dest, int16(uint32(p.acc)&0xFFFF))

	case isa.ACC:
		p.acc += int32(a)
	case isa.CLEARACC:
		p.acc = 0
	case isa.LOADACC:
		p.acc = int32(a)
	case isa.SAVEACC:
		p.setDest(instr.Dest, int16(clampInt32(p.acc)))

	case isa.LUTREAD:
		table := p.LUT(instr.ResAddr)
		idx := int(uint16(a)) & (len(table) - 1)
		p.setDest(instr.Dest, table[idx])

	case isa.DELAYREAD:
		buf := p.delays[instr.ResAddr]
		p.setDest(instr.Dest, buf.Read(a))
	case isa.DELAYWRITE:
		buf := p.delays[instr.ResAddr]
		buf.Write(a)

	case isa.FRACDELAYREAD:
		buf := p.delays[instr.ResAddr]
		frac := uint16(a) & 0xFF
		intDelay := int16(uint16(a) >> 8)
		x := buf.Read(intDelay)
		y := buf.Read(intDelay + 1)
		p.setDest(instr.Dest, fixedpoint.Linterp(x, y, uint16(frac)<<8))

	case isa.MEMREAD:
		p.setDest(instr.Dest, p.scratch[instr.ResAddr])
	case isa.MEMWRITE:
		p.scratch[instr.ResAddr] = a

	default:
		if !p.unknownOpcodesSeen[instr.Opcode] {
			p.unknownOpcodesSeen[instr.Opcode] = true
		}
		// Treated as NOP to preserve audio continuity.
	}
}

func negate(v int16) int16 {
	if v == math.MinInt16 {
		return math.MaxInt16
	}
	return -v
}

func absInt16(v int16) int16 {
	if v < 0 {
		return negate(v)
	}
	return v
}

func minInt16(a, b int16) int16 {
	if a < b {
		return a
	}
	return b
}

func maxInt16(a, b int16) int16 {
	if a > b {
		return a
	}
	return b
}

func clampInt16(v, lo, hi int16) int16 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt32(v int32) int32 {
	if v > math.MaxInt16 {
		return math.MaxInt16
	}
	if v < math.MinInt16 {
		return math.MinInt16
	}
	return v
}

func mul32(a, b int16, shift int) int32 {
	z := int32(a) * int32(b)
	if shift != isa.NoShift {
		actualShift := 15 - shift
		if actualShift > 0 {
			z >>= uint(actualShift)
		}
	}
	return z
}

func umul32(a, b int16, shift int) int32 {
	z := int32(uint32(uint16(a)) * uint32(uint16(b)))
	if shift != isa.NoShift {
		actualShift := 15 - shift
		if actualShift > 0 {
			z >>= uint(actualShift)
		}
	}
	return z
}
