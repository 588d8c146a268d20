// Command mfpga-monitor is a thin diagnostic entry point: it builds one
// demonstration effect in-process, links and decodes it into an engine,
// then drives the monitor TUI against that engine for manual inspection.
// It performs no audio file I/O.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/linkinparks/mfpga/batch"
	"github.com/linkinparks/mfpga/config"
	"github.com/linkinparks/mfpga/decoder"
	"github.com/linkinparks/mfpga/effect"
	"github.com/linkinparks/mfpga/engine"
	"github.com/linkinparks/mfpga/expr"
	"github.com/linkinparks/mfpga/isa"
	"github.com/linkinparks/mfpga/link"
	"github.com/linkinparks/mfpga/monitor"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		gainDB      = flag.Float64("gain-db", -6.0, "Demonstration effect's gain, in dB")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("mfpga-monitor %s (%s)\n", Version, Commit)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config: %v\n", err)
		os.Exit(1)
	}

	e, err := buildDemoEngine(*gainDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error building demonstration effect: %v\n", err)
		os.Exit(1)
	}

	m := monitor.New(e, cfg.Monitor.CommandLogLines)

	if err := m.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "monitor error: %v\n", err)
		os.Exit(1)
	}
}

// buildDemoEngine compiles a single-block gain effect (channel 0 scaled by
// 10^(gainDB/20), expressed as a bound expression rather than a literal),
// links it, decodes the resulting command stream, and applies it to a
// fresh engine so the monitor has something non-trivial to display.
func buildDemoEngine(gainDB float64) (*engine.Engine, error) {
	gain := effect.New()

	blockIdx := gain.AddBlock(isa.Instruction{
		Opcode: isa.MADD,
		SrcA:   0, AIsReg: false, // channel 0
		SrcB: 0, BIsReg: true, // block register 0 holds the gain coefficient
		SrcC: 0, CIsReg: false, // add zero
		Dest:  0,
		Shift: 3, // matches the register's Q-format below (range ±16)
		Sat:   true,
	})

	gain.AddParam(&expr.Param{
		DisplayName:  "Gain",
		InternalName: "gain_db",
		Value:        gainDB,
		Min:          -96.0,
		Max:          12.0,
	})

	if err := gain.AddRegisterVal(blockIdx, 0, 3, "pow 10 (/ gain_db 20)"); err != nil {
		return nil, err
	}

	b := batch.New()
	if _, err := link.LinkEffects([]*effect.Effect{gain}, b); err != nil {
		return nil, err
	}

	eng := engine.New()
	d := decoder.New()
	err := decoder.FeedAll(d, b.Bytes(), func(a decoder.Action) {
		eng.Handle(a)
	})
	if err != nil {
		return nil, err
	}

	return eng, nil
}
