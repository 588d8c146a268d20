// Package monitor implements a live tview/tcell dashboard over a running
// engine.Engine: active pipeline, cross-fade progress, per-pipeline
// resource usage, and a scrolling log of decoded commands.
package monitor

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/linkinparks/mfpga/decoder"
	"github.com/linkinparks/mfpga/engine"
	"github.com/linkinparks/mfpga/link"
)

// Monitor is the TUI application wrapping one engine.Engine.
type Monitor struct {
	Engine *engine.Engine
	App    *tview.Application

	MainLayout   *tview.Flex
	StatusView   *tview.TextView
	PipelineView *tview.TextView
	CommandLog   *tview.TextView

	logLines    []string
	maxLogLines int
}

// New builds a Monitor over engine e. maxLogLines bounds the scrolling
// command log; values <= 0 fall back to 200.
func New(e *engine.Engine, maxLogLines int) *Monitor {
	if maxLogLines <= 0 {
		maxLogLines = 200
	}

	m := &Monitor{
		Engine:      e,
		App:         tview.NewApplication(),
		maxLogLines: maxLogLines,
	}

	m.initializeViews()
	m.buildLayout()
	m.setupKeyBindings()

	return m
}

func (m *Monitor) initializeViews() {
	m.StatusView = tview.NewTextView().SetDynamicColors(true)
	m.StatusView.SetBorder(true).SetTitle(" Engine ")

	m.PipelineView = tview.NewTextView().SetDynamicColors(true)
	m.PipelineView.SetBorder(true).SetTitle(" Pipelines ")

	m.CommandLog = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	m.CommandLog.SetBorder(true).SetTitle(" Command log ")
}

func (m *Monitor) buildLayout() {
	top := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(m.StatusView, 0, 1, false).
		AddItem(m.PipelineView, 0, 2, false)

	m.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(top, 8, 0, false).
		AddItem(m.CommandLog, 0, 1, false)
}

func (m *Monitor) setupKeyBindings() {
	m.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			m.App.Stop()
			return nil
		case tcell.KeyCtrlL:
			m.RefreshAll()
			return nil
		}
		return event
	})
}

// LogAction appends a decoded action's one-line summary to the scrolling
// command log, trimming from the front once maxLogLines is exceeded.
func (m *Monitor) LogAction(a decoder.Action) {
	m.logLines = append(m.logLines, describeAction(a))
	if len(m.logLines) > m.maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-m.maxLogLines:]
	}
}

func describeAction(a decoder.Action) string {
	switch a.Kind {
	case decoder.ActionWriteBlockInstr:
		return fmt.Sprintf("WRITE_BLOCK_INSTR block=%d word=0x%08X", a.Block, a.InstrWord)
	case decoder.ActionWriteBlockReg:
		return fmt.Sprintf("WRITE_BLOCK_REG block=%d reg=%d value=%d", a.Block, a.Reg, a.Value)
	case decoder.ActionUpdateBlockReg:
		return fmt.Sprintf("UPDATE_BLOCK_REG block=%d reg=%d value=%d", a.Block, a.Reg, a.Value)
	case decoder.ActionCommitRegUpdates:
		return "COMMIT_REG_UPDATES"
	case decoder.ActionAllocDelay:
		return fmt.Sprintf("ALLOC_DELAY size=%d", a.AllocSize)
	case decoder.ActionSwapPipelines:
		return "SWAP_PIPELINES"
	case decoder.ActionResetPipeline:
		return "RESET_PIPELINE"
	case decoder.ActionSetInputGain:
		return fmt.Sprintf("SET_INPUT_GAIN 0x%04X", uint16(a.Gain))
	case decoder.ActionSetOutputGain:
		return fmt.Sprintf("SET_OUTPUT_GAIN 0x%04X", uint16(a.Gain))
	default:
		return "unknown action"
	}
}

// RefreshAll redraws every panel from current engine state.
func (m *Monitor) RefreshAll() {
	m.StatusView.SetText(m.Engine.DumpState())
	m.PipelineView.SetText(m.pipelineSummary())
	m.CommandLog.SetText(strings.Join(m.logLines, "\n"))
	m.CommandLog.ScrollToEnd()
	m.App.Draw()
}

func (m *Monitor) pipelineSummary() string {
	var b strings.Builder
	for i := 0; i < 2; i++ {
		p := m.Engine.Pipeline(i)
		active := ""
		if i == m.Engine.CurrentPipeline() {
			active = " [green](active)[white]"
		}
		fmt.Fprintf(&b, "pipeline %d%s: last_block=%d delays=%d\n", i, active, p.LastBlock(), p.NumDelaysAllocated())
	}
	fmt.Fprintf(&b, "stock LUTs: %d\n", link.StockLUTs)
	return b.String()
}

// Run starts the tview event loop, blocking until the user quits.
func (m *Monitor) Run() error {
	m.RefreshAll()
	return m.App.SetRoot(m.MainLayout, true).Run()
}
