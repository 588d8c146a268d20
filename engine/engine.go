// Package engine implements the orchestrator: two swappable pipelines,
// input/output gain, and the cross-fade that makes a configuration swap
// inaudible.
package engine

import (
	"fmt"

	"github.com/linkinparks/mfpga/decoder"
	"github.com/linkinparks/mfpga/fixedpoint"
	"github.com/linkinparks/mfpga/isa"
	"github.com/linkinparks/mfpga/pipeline"
)

// gainFractionalShift is the Mul16 shift argument that yields Q10.5's 11
// fractional bits (actualShift = 15-4 = 11), matching the default gain
// encoding 0x0400 == 0.5 used throughout §8's scenarios.
const gainFractionalShift = 4

// crossFadeStep is the per-sample weight moved from the outgoing
// pipeline's gain to the incoming one during a swap (§4.10 step 4).
const crossFadeStep = 64

// fullWeight is the cross-fade weight corresponding to a pipeline at full
// (unity) output gain: weightToGain(fullWeight) must itself be a unity
// Mul16 coefficient under gainFractionalShift, so the two pipelines'
// contributions sum to 1.0 rather than 0.5 at steady state.
const fullWeight int32 = 1 << 15

// Engine holds both pipelines and the cross-fade state that makes a
// SWAP_PIPELINES command inaudible rather than an abrupt cut.
type Engine struct {
	pipelines      [2]*pipeline.Pipeline
	current        int
	swapInProgress bool
	enabled        [2]bool

	inputGain  int16
	outputGain int16

	// weight[i] is pipeline i's current cross-fade contribution, in
	// [0, fullWeight]; weight[current] starts at fullWeight and
	// weight[1-current] at 0 outside of an in-progress swap.
	weight [2]int32
}

// New returns an Engine with two freshly reset pipelines and default
// gains of 0.5 (Q10.5 0x0400, matching §8's scenario defaults).
func New() *Engine {
	e := &Engine{
		pipelines:  [2]*pipeline.Pipeline{pipeline.New(), pipeline.New()},
		inputGain:  0x0400,
		outputGain: 0x0400,
	}
	e.enabled[0] = true
	e.weight[0] = fullWeight
	return e
}

func (e *Engine) inactive() int {
	return 1 - e.current
}

// Handle applies a decoded command to the appropriate pipeline or
// engine-global state, per the routing table in SPEC_FULL.md §5.7.
func (e *Engine) Handle(a decoder.Action) {
	switch a.Kind {
	case decoder.ActionWriteBlockInstr:
		instr, err := isa.Decode(a.InstrWord)
		if err != nil {
			return
		}
		e.pipelines[e.inactive()].WriteInstr(a.Block, instr)

	case decoder.ActionWriteBlockReg:
		e.pipelines[e.inactive()].WriteReg(a.Block, a.Reg, a.Value)

	case decoder.ActionUpdateBlockReg:
		e.pipelines[e.current].WriteReg(a.Block, a.Reg, a.Value)

	case decoder.ActionCommitRegUpdates:
		// Updates are written directly in this implementation (no
		// separate staging buffer), so committing is a no-op; the
		// command is still consumed so stream framing stays intact.

	case decoder.ActionAllocDelay:
		e.pipelines[e.inactive()].AllocDelay(a.AllocSize)

	case decoder.ActionSwapPipelines:
		e.swapInProgress = true
		e.enabled[e.inactive()] = true

	case decoder.ActionResetPipeline:
		e.pipelines[e.inactive()].Reset()

	case decoder.ActionSetInputGain:
		e.inputGain = a.Gain

	case decoder.ActionSetOutputGain:
		e.outputGain = a.Gain
	}
}

// Step runs one sample through the full orchestration algorithm of
// SPEC_FULL.md §5.10 / spec §4.10: input gain, per-pipeline evaluation,
// weighted mix, cross-fade advance, master output gain.
func (e *Engine) Step(sample int16) int16 {
	scaled := fixedpoint.Mul16(sample, e.inputGain, false, gainFractionalShift, true)

	var out [2]int16
	for i := 0; i < 2; i++ {
		if e.enabled[i] {
			out[i] = e.pipelines[i].Step(scaled)
		}
	}

	gainA := weightToGain(e.weight[0])
	gainB := weightToGain(e.weight[1])
	mixedA := fixedpoint.Mul16(out[0], gainA, false, gainFractionalShift, true)
	mixedB := fixedpoint.Mul16(out[1], gainB, false, gainFractionalShift, true)
	mixed := fixedpoint.Sum16Sat(mixedA, mixedB, true)

	if e.swapInProgress {
		e.advanceCrossFade()
	}

	return fixedpoint.Mul16(mixed, e.outputGain, false, gainFractionalShift, true)
}

// weightToGain converts an internal [0,fullWeight] cross-fade weight into
// the Q10.5-equivalent gain Mul16 expects.
func weightToGain(weight int32) int16 {
	return int16(weight >> 4) // fullWeight(2^15) -> 0x0800, a unity Mul16 coefficient at gainFractionalShift
}

func (e *Engine) advanceCrossFade() {
	out := e.current
	in := e.inactive()

	e.weight[out] -= crossFadeStep
	if e.weight[out] < 0 {
		e.weight[out] = 0
	}
	e.weight[in] = fullWeight - e.weight[out]

	if e.weight[out] == 0 {
		e.enabled[out] = false
		e.current = in
		e.swapInProgress = false
	}
}

// DumpState renders a one-line human-readable summary of engine state,
// useful for ad hoc inspection while developing effects.
func (e *Engine) DumpState() string {
	return fmt.Sprintf(
		"current=%d swap=%v enabled=%v weight=%v inGain=0x%04X outGain=0x%04X",
		e.current, e.swapInProgress, e.enabled, e.weight, uint16(e.inputGain), uint16(e.outputGain),
	)
}

// CurrentPipeline returns the index of the active pipeline.
func (e *Engine) CurrentPipeline() int {
	return e.current
}

// SwapInProgress reports whether a cross-fade is currently advancing.
func (e *Engine) SwapInProgress() bool {
	return e.swapInProgress
}

// Pipeline exposes one of the two pipelines for read-only inspection
// (e.g. by the monitor UI's resource-usage display).
func (e *Engine) Pipeline(idx int) *pipeline.Pipeline {
	return e.pipelines[idx]
}
