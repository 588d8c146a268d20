// Package decoder implements the device-side command-stream decoder: a
// sequential state machine that turns the byte stream emitted by the
// linker/transfer-batch builder back into discrete, self-delimiting
// actions for the engine to apply.
package decoder

import (
	"github.com/linkinparks/mfpga/batch"
	"github.com/linkinparks/mfpga/mfpgaerr"
)

// State names the decoder's position in a command, per SPEC_FULL.md §5.7.
type State int

const (
	ExpectCommand State = iota
	ExpectBlock
	ExpectInstrWord
	ExpectReg
	ExpectRegVal
	ExpectAllocSize
	ExpectGain
)

// ActionKind identifies which routed operation a completed command
// represents.
type ActionKind int

const (
	ActionWriteBlockInstr ActionKind = iota
	ActionWriteBlockReg
	ActionUpdateBlockReg
	ActionCommitRegUpdates
	ActionAllocDelay
	ActionSwapPipelines
	ActionResetPipeline
	ActionSetInputGain
	ActionSetOutputGain
)

// Action is one fully decoded command, ready for the engine to apply.
type Action struct {
	Kind      ActionKind
	Block     int
	Reg       int
	Value     int16
	InstrWord uint32
	AllocSize int
	Gain      int16
}

// Decoder holds the in-progress command's state across Feed calls. It is
// never reset mid-command by an error: UnknownCommand is non-fatal and
// the decoder stays in ExpectCommand, resynchronising on the next byte.
type Decoder struct {
	state State

	pendingOp    byte
	pendingBlock int
	pendingReg   int

	buf  []byte
	need int
}

// New returns a Decoder ready to consume a command stream from the start.
func New() *Decoder {
	return &Decoder{state: ExpectCommand}
}

// Feed consumes one byte. It returns a completed Action once a full
// command has been read, or nil if more bytes are needed. An
// UnknownCommand error is returned (non-fatally — the decoder remains
// usable) when a byte in ExpectCommand position doesn't match any known
// opcode.
func (d *Decoder) Feed(b byte) (*Action, error) {
	switch d.state {
	case ExpectCommand:
		return d.feedCommand(b)

	case ExpectBlock:
		d.pendingBlock = int(b)
		switch d.pendingOp {
		case batch.OpWriteBlockInstr:
			d.state = ExpectInstrWord
			d.buf = d.buf[:0]
			d.need = 4
		case batch.OpWriteBlockReg, batch.OpUpdateBlockReg:
			d.state = ExpectReg
		}
		return nil, nil

	case ExpectReg:
		d.pendingReg = int(b)
		d.state = ExpectRegVal
		d.buf = d.buf[:0]
		d.need = 2
		return nil, nil

	case ExpectInstrWord:
		return d.feedCounted(b, d.finishInstrWord)

	case ExpectRegVal:
		return d.feedCounted(b, d.finishRegVal)

	case ExpectAllocSize:
		return d.feedCounted(b, d.finishAllocSize)

	case ExpectGain:
		return d.feedCounted(b, d.finishGain)
	}

	return nil, mfpgaerr.New(mfpgaerr.BadArgs, "decoder in unknown state")
}

func (d *Decoder) feedCommand(b byte) (*Action, error) {
	d.pendingOp = b

	switch b {
	case batch.OpSwapPipelines:
		return &Action{Kind: ActionSwapPipelines}, nil
	case batch.OpResetPipeline:
		return &Action{Kind: ActionResetPipeline}, nil
	case batch.OpCommitRegUpdates:
		return &Action{Kind: ActionCommitRegUpdates}, nil

	case batch.OpWriteBlockInstr, batch.OpWriteBlockReg, batch.OpUpdateBlockReg:
		d.state = ExpectBlock
		return nil, nil

	case batch.OpAllocDelay:
		d.state = ExpectAllocSize
		d.buf = d.buf[:0]
		d.need = 2
		return nil, nil

	case batch.OpSetInputGain, batch.OpSetOutputGain:
		d.state = ExpectGain
		d.buf = d.buf[:0]
		d.need = 2
		return nil, nil
	}

	return nil, mfpgaerr.Newf(mfpgaerr.UnknownCommand, "unknown command opcode 0x%02X", b)
}

func (d *Decoder) feedCounted(b byte, finish func() *Action) (*Action, error) {
	d.buf = append(d.buf, b)
	d.need--
	if d.need > 0 {
		return nil, nil
	}
	d.state = ExpectCommand
	return finish(), nil
}

func (d *Decoder) finishInstrWord() *Action {
	word := uint32(d.buf[0])<<24 | uint32(d.buf[1])<<16 | uint32(d.buf[2])<<8 | uint32(d.buf[3])
	return &Action{Kind: ActionWriteBlockInstr, Block: d.pendingBlock, InstrWord: word}
}

func (d *Decoder) finishRegVal() *Action {
	value := int16(uint16(d.buf[0])<<8 | uint16(d.buf[1]))
	kind := ActionWriteBlockReg
	if d.pendingOp == batch.OpUpdateBlockReg {
		kind = ActionUpdateBlockReg
	}
	return &Action{Kind: kind, Block: d.pendingBlock, Reg: d.pendingReg, Value: value}
}

func (d *Decoder) finishAllocSize() *Action {
	size := int(uint16(d.buf[0])<<8 | uint16(d.buf[1]))
	return &Action{Kind: ActionAllocDelay, AllocSize: size}
}

func (d *Decoder) finishGain() *Action {
	gain := int16(uint16(d.buf[0])<<8 | uint16(d.buf[1]))
	kind := ActionSetInputGain
	if d.pendingOp == batch.OpSetOutputGain {
		kind = ActionSetOutputGain
	}
	return &Action{Kind: kind, Gain: gain}
}

// FeedAll decodes every byte in data, calling onAction for each completed
// Action. UnknownCommand errors are swallowed (per §4.7, they're
// non-fatal); any other error aborts immediately.
func FeedAll(d *Decoder, data []byte, onAction func(Action)) error {
	for _, b := range data {
		action, err := d.Feed(b)
		if err != nil {
			if mfpgaerr.Is(err, mfpgaerr.UnknownCommand) {
				continue
			}
			return err
		}
		if action != nil {
			onAction(*action)
		}
	}
	return nil
}
