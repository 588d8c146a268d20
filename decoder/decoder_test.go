package decoder

import (
	"testing"

	"github.com/linkinparks/mfpga/batch"
	"github.com/linkinparks/mfpga/isa"
	"github.com/linkinparks/mfpga/mfpgaerr"
)

func TestCommandRoundTrip(t *testing.T) {
	b := batch.New()
	if err := b.AllocDelay(8192); err != nil {
		t.Fatalf("AllocDelay error: %v", err)
	}
	instrWord, err := isa.Encode(isa.NOPInstruction())
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if err := b.WriteBlockInstr(0, instrWord); err != nil {
		t.Fatalf("WriteBlockInstr error: %v", err)
	}
	if err := b.WriteBlockReg(0, 0, 16384); err != nil {
		t.Fatalf("WriteBlockReg error: %v", err)
	}
	b.SwapPipelines()

	d := New()
	var actions []Action
	err = FeedAll(d, b.Bytes(), func(a Action) {
		actions = append(actions, a)
	})
	if err != nil {
		t.Fatalf("FeedAll error: %v", err)
	}

	if len(actions) != 4 {
		t.Fatalf("got %d actions, expected 4: %+v", len(actions), actions)
	}

	if actions[0].Kind != ActionAllocDelay || actions[0].AllocSize != 8192 {
		t.Errorf("action[0] = %+v, expected ALLOC_DELAY(8192)", actions[0])
	}
	if actions[1].Kind != ActionWriteBlockInstr || actions[1].InstrWord != instrWord {
		t.Errorf("action[1] = %+v, expected WRITE_BLOCK_INSTR", actions[1])
	}
	if actions[2].Kind != ActionWriteBlockReg || actions[2].Block != 0 || actions[2].Reg != 0 || actions[2].Value != 16384 {
		t.Errorf("action[2] = %+v, expected WRITE_BLOCK_REG(0,0,16384)", actions[2])
	}
	if actions[3].Kind != ActionSwapPipelines {
		t.Errorf("action[3] = %+v, expected SWAP_PIPELINES", actions[3])
	}

	if d.state != ExpectCommand {
		t.Errorf("decoder left in state %v, expected ExpectCommand (no residual bytes)", d.state)
	}
}

func TestUnknownCommandIsNonFatal(t *testing.T) {
	d := New()
	_, err := d.Feed(0xFF)
	if !mfpgaerr.Is(err, mfpgaerr.UnknownCommand) {
		t.Fatalf("expected UnknownCommand, got %v", err)
	}

	// The decoder should still be usable afterward.
	action, err := d.Feed(batch.OpSwapPipelines)
	if err != nil {
		t.Fatalf("Feed after UnknownCommand error: %v", err)
	}
	if action == nil || action.Kind != ActionSwapPipelines {
		t.Errorf("expected SWAP_PIPELINES after resync, got %+v", action)
	}
}

func TestUpdateBlockRegDistinctFromWrite(t *testing.T) {
	b := batch.New()
	if err := b.UpdateBlockReg(2, 1, -100); err != nil {
		t.Fatalf("UpdateBlockReg error: %v", err)
	}

	d := New()
	var got Action
	err := FeedAll(d, b.Bytes(), func(a Action) { got = a })
	if err != nil {
		t.Fatalf("FeedAll error: %v", err)
	}
	if got.Kind != ActionUpdateBlockReg || got.Block != 2 || got.Reg != 1 || got.Value != -100 {
		t.Errorf("got %+v, expected UPDATE_BLOCK_REG(2,1,-100)", got)
	}
}
