// Package main provides a tool that decodes an angle compensation reply and
// tabulates the resulting correction over one turn.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/banshee-data/anglecomp/internal/lidar/anglecomp"
	"github.com/banshee-data/anglecomp/internal/lidar/monitor"
)

// DefaultReply is a reply captured from a scanner in the field.
const DefaultReply = "sRA MCAngleCompSin +1893 -210503 -245"

// Config holds the command line options.
type Config struct {
	Reply    string
	HexReply string
	Step     float64
	Output   string
	PlotPath string
	Verbose  bool
}

func parseFlags(args []string) (Config, error) {
	var cfg Config
	fs := flag.NewFlagSet("anglecomp-table", flag.ContinueOnError)
	fs.StringVar(&cfg.Reply, "reply", DefaultReply, "ASCII reply to decode")
	fs.StringVar(&cfg.HexReply, "hex", "", "Binary reply as hex; takes precedence over -reply")
	fs.Float64Var(&cfg.Step, "step", monitor.DefaultTableStep, "Input angle spacing in degrees")
	fs.StringVar(&cfg.Output, "out", "-", "CSV output path, - for stdout")
	fs.StringVar(&cfg.PlotPath, "plot", "", "Optional path for a PNG plot of the correction")
	fs.BoolVar(&cfg.Verbose, "v", false, "Log decoding details")
	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if cfg.Step <= 0 || cfg.Step > 90 {
		return cfg, fmt.Errorf("step must be in (0, 90], got %g", cfg.Step)
	}
	return cfg, nil
}

// decode parses the configured reply into comp.
func decode(comp *anglecomp.Compensator, cfg Config) error {
	if cfg.HexReply != "" {
		payload, err := hex.DecodeString(strings.ReplaceAll(cfg.HexReply, " ", ""))
		if err != nil {
			return fmt.Errorf("invalid -hex value: %w", err)
		}
		return comp.ParseReply(true, payload)
	}
	return comp.ParseReply(false, []byte(cfg.Reply))
}

func run(cfg Config, stdout, stderr io.Writer) error {
	if cfg.Verbose {
		anglecomp.SetLogWriters(stderr, stderr, stderr)
		defer anglecomp.SetLogWriters(nil, nil, nil)
	}

	comp := anglecomp.NewCompensator()
	if err := decode(comp, cfg); err != nil {
		return fmt.Errorf("failed to decode reply: %w", err)
	}
	cal := comp.Calibration()
	rows := monitor.CorrectionTable(cal, cfg.Step)

	out := stdout
	if cfg.Output != "-" && cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := monitor.WriteCorrectionCSV(out, rows); err != nil {
		return err
	}

	if cfg.PlotPath != "" {
		title := fmt.Sprintf("ampl=%.4f phase=%.4f deg offset=%.4f deg",
			cal.AmplitudeCorrection, cal.PhaseCorrectionDeg, cal.OffsetCorrectionDeg)
		if err := monitor.SaveCorrectionPlot(rows, title, cfg.PlotPath); err != nil {
			return err
		}
	}

	s := monitor.SummariseCorrections(rows)
	fmt.Fprintf(stderr, "Calibration: ampl=%.4f phase=%.4f deg offset=%.4f deg\n",
		cal.AmplitudeCorrection, cal.PhaseCorrectionDeg, cal.OffsetCorrectionDeg)
	fmt.Fprintf(stderr, "Correction over %d inputs: mean=%.6f std=%.6f min=%.6f max=%.6f p2p=%.6f deg\n",
		s.Count, s.Mean, s.StdDev, s.Min, s.Max, s.PeakToPeak)
	return nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			return
		}
		log.Fatalf("invalid arguments: %v", err)
	}
	if err := run(cfg, os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}
