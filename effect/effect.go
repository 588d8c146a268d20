// Package effect builds the in-memory description of an audio effect — its
// instruction blocks, parameters, and resource requests — that the linker
// and transfer-batch builder consume.
package effect

import (
	"github.com/linkinparks/mfpga/expr"
	"github.com/linkinparks/mfpga/fixedpoint"
	"github.com/linkinparks/mfpga/isa"
	"github.com/linkinparks/mfpga/mfpgaerr"
)

// RegFormat is either a legal post-multiply shift in [0,15], or the
// sentinel Literal meaning "write the integer value as-is".
type RegFormat int

// Literal mirrors the original source's DSP_REG_FORMAT_LITERAL sentinel:
// a register-value binding in this format bypasses float-to-Q conversion
// entirely and writes its integer value unchanged.
const Literal RegFormat = 0xFFFF

// RegisterVal binds one of a block's two constant registers to an
// expression, evaluated at link time against the effect's parameter list.
type RegisterVal struct {
	Reg    int // 0 or 1
	Format RegFormat
	Expr   *expr.Tree
	Lit    int16 // used only when Format == Literal
}

// ResourceKind identifies a resource request's target pool. Only delay
// lines are requestable; scratch memory and LUT addresses are referenced
// directly from block instructions and relocated by the linker without a
// separate allocation step.
type ResourceKind int

const (
	DDelay ResourceKind = iota
)

// ResourceRequest asks the linker to allocate size_in_samples worth of a
// resource (currently only delay-line space) ahead of this effect's
// blocks.
type ResourceRequest struct {
	Kind ResourceKind
	Size int // samples, must be a power of two by link time
}

// Block is one decoded instruction plus up to two register-value
// bindings.
type Block struct {
	Instr        isa.Instruction
	RegisterVals []RegisterVal
}

// Effect is an ordered sequence of blocks, a parameter list, and a set of
// resource requests: the unit the compiler lowers into a command stream.
type Effect struct {
	Blocks    []Block
	Params    expr.ParamList
	Resources []ResourceRequest
}

// New returns an empty Effect ready to be built up with AddBlock/AddParam.
func New() *Effect {
	return &Effect{}
}

// AddBlock appends a block and returns its effect-local index.
func (e *Effect) AddBlock(instr isa.Instruction) int {
	e.Blocks = append(e.Blocks, Block{Instr: instr})
	return len(e.Blocks) - 1
}

// AddParam appends a parameter; subsequent AddRegisterVal expressions may
// reference it by internal name.
func (e *Effect) AddParam(p *expr.Param) {
	e.Params.Add(p)
}

// AddResourceRequest appends a resource request; requests are emitted
// before instructions at link time.
func (e *Effect) AddResourceRequest(req ResourceRequest) {
	e.Resources = append(e.Resources, req)
}

// AddRegisterVal parses exprString and binds it to (blockIdx, reg) in the
// given Q-format. It fails with BadArgs if blockIdx or reg is out of
// range, or if format is neither a legal shift in [0,15] nor Literal.
func (e *Effect) AddRegisterVal(blockIdx, reg int, format RegFormat, exprString string) error {
	if blockIdx < 0 || blockIdx >= len(e.Blocks) {
		return mfpgaerr.Newf(mfpgaerr.BadArgs, "block index %d out of range", blockIdx)
	}
	if reg != 0 && reg != 1 {
		return mfpgaerr.Newf(mfpgaerr.BadArgs, "register index %d out of range", reg)
	}
	if format != Literal && (format < 0 || format > 15) {
		return mfpgaerr.Newf(mfpgaerr.BadArgs, "Q-format shift %d out of range", format)
	}

	tree, err := expr.Parse(exprString)
	if err != nil {
		return err
	}

	e.Blocks[blockIdx].RegisterVals = append(e.Blocks[blockIdx].RegisterVals, RegisterVal{
		Reg:    reg,
		Format: format,
		Expr:   tree,
	})
	return nil
}

// AddRegisterValLiteral binds (blockIdx, reg) to a raw int16, bypassing
// expression evaluation entirely.
func (e *Effect) AddRegisterValLiteral(blockIdx, reg int, value int16) error {
	if blockIdx < 0 || blockIdx >= len(e.Blocks) {
		return mfpgaerr.Newf(mfpgaerr.BadArgs, "block index %d out of range", blockIdx)
	}
	if reg != 0 && reg != 1 {
		return mfpgaerr.Newf(mfpgaerr.BadArgs, "register index %d out of range", reg)
	}

	e.Blocks[blockIdx].RegisterVals = append(e.Blocks[blockIdx].RegisterVals, RegisterVal{
		Reg:    reg,
		Format: Literal,
		Lit:    value,
	})
	return nil
}

// Resolve evaluates a register-value binding against the effect's
// parameters, returning the int16 to write on the wire.
func (rv RegisterVal) Resolve(params *expr.ParamList) int16 {
	if rv.Format == Literal {
		if rv.Expr == nil {
			return rv.Lit
		}
		return int16(expr.Eval(rv.Expr, params))
	}
	val := expr.Eval(rv.Expr, params)
	return fixedpoint.ToQ(val, int(rv.Format))
}
