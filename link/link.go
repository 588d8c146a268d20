// Package link implements the resource-aware linker: it relocates delay,
// scratch-memory, and LUT addresses across effects that share a pipeline,
// and emits the final WRITE_BLOCK_INSTR / WRITE_BLOCK_REG command stream.
package link

import (
	"github.com/linkinparks/mfpga/batch"
	"github.com/linkinparks/mfpga/effect"
	"github.com/linkinparks/mfpga/isa"
)

// StockLUTs is the number of read-only stock look-up tables (0 = sine,
// 1 = tanh) that precede user-allocated LUT entries. LUT_READ addresses
// below this are never relocated.
const StockLUTs = 2

// Context is the running resource tally consumed by effects linked so
// far: it doubles as the "report" returned after linking a sequence,
// since both describe the same four counters plus the block count.
type Context struct {
	Blocks int
	Memory int
	SDelay int // no opcode in this instruction set produces sdelay usage; carried for parity with the resource taxonomy
	DDelay int
	LUTs   int
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// localReport is the per-block relocation bookkeeping: blocks is always
// 1, and at most one of the resource fields is nonzero (whichever
// resource that block's instruction touches, if any).
type localReport struct {
	Blocks int
	Memory int
	SDelay int
	DDelay int
	LUTs   int
}

// LinkBlock rewrites a single block's instruction against base (the
// resource counts consumed by effects processed so far), returning the
// relocated instruction and that instruction's local usage.
func LinkBlock(base Context, blk effect.Block) (isa.Instruction, localReport) {
	instr := blk.Instr
	local := localReport{Blocks: 1}

	if isa.Format(instr.Opcode) != isa.FormatB {
		return instr, local
	}

	switch instr.Opcode {
	case isa.DELAYREAD, isa.DELAYWRITE:
		local.DDelay = instr.ResAddr + 1
		instr.ResAddr += base.DDelay
	case isa.MEMREAD, isa.MEMWRITE:
		local.Memory = instr.ResAddr + 1
		instr.ResAddr += base.Memory
	case isa.LUTREAD:
		if instr.ResAddr >= StockLUTs {
			local.LUTs = instr.ResAddr + 1
			instr.ResAddr += base.LUTs
		}
	}

	return instr, local
}

// LinkEffect links one effect's resource requests and blocks into batch b,
// relocating against ctx and then advancing ctx to reflect this effect's
// consumption. It does not emit the final SWAP_PIPELINES; callers linking
// a sequence of effects do that once, after the last effect.
func LinkEffect(ctx *Context, e *effect.Effect, b *batch.Batch) error {
	base := *ctx

	for _, req := range e.Resources {
		switch req.Kind {
		case effect.DDelay:
			if err := b.AllocDelay(req.Size); err != nil {
				return err
			}
			ctx.DDelay++
		}
	}

	var localMax localReport
	for i, blk := range e.Blocks {
		linked, local := LinkBlock(base, blk)

		word, err := isa.Encode(linked)
		if err != nil {
			return err
		}
		if err := b.WriteBlockInstr(base.Blocks+i, word); err != nil {
			return err
		}

		localMax.Memory = maxInt(localMax.Memory, local.Memory)
		localMax.DDelay = maxInt(localMax.DDelay, local.DDelay)
		localMax.LUTs = maxInt(localMax.LUTs, local.LUTs)
	}

	for i, blk := range e.Blocks {
		for _, rv := range blk.RegisterVals {
			value := rv.Resolve(&e.Params)
			if err := b.WriteBlockReg(base.Blocks+i, rv.Reg, value); err != nil {
				return err
			}
		}
	}

	ctx.Blocks += len(e.Blocks)
	ctx.Memory = maxInt(ctx.Memory, base.Memory+localMax.Memory)
	ctx.DDelay = maxInt(ctx.DDelay, base.DDelay+localMax.DDelay)
	ctx.LUTs = maxInt(ctx.LUTs, base.LUTs+localMax.LUTs)

	return nil
}

// LinkEffects links a sequence of effects in order, sharing a single
// running Context, and emits the trailing SWAP_PIPELINES that finalises
// the configuration. It returns the final context, which a caller can
// inspect for total resource consumption.
func LinkEffects(effects []*effect.Effect, b *batch.Batch) (Context, error) {
	var ctx Context
	for _, e := range effects {
		if err := LinkEffect(&ctx, e, b); err != nil {
			return ctx, err
		}
	}
	b.SwapPipelines()
	return ctx, nil
}
