package monitor

import (
	"bufio"
	"fmt"
	"io"

	"github.com/banshee-data/anglecomp/internal/lidar/anglecomp"
)

// DefaultTableStep is the input spacing, in degrees, of a correction table.
const DefaultTableStep = 1.0

// CorrectionRow is one line of a correction table. All values are degrees.
type CorrectionRow struct {
	Input      float64 `json:"input"`
	Output     float64 `json:"output"`
	Correction float64 `json:"correction"`
}

// CorrectionTable evaluates the degree formula of cal for inputs in
// [0, 360) spaced by stepDeg. A non-positive step uses DefaultTableStep.
func CorrectionTable(cal anglecomp.Calibration, stepDeg float64) []CorrectionRow {
	if stepDeg <= 0 {
		stepDeg = DefaultTableStep
	}
	rows := make([]CorrectionRow, 0, int(360/stepDeg)+1)
	for i := 0; ; i++ {
		in := float64(i) * stepDeg
		if in >= 360 {
			break
		}
		out := cal.CompensateDegree(in)
		rows = append(rows, CorrectionRow{Input: in, Output: out, Correction: out - in})
	}
	return rows
}

// WriteCorrectionCSV writes rows as semicolon separated fixed-width columns
// under an "Input;Output;Correction" header.
func WriteCorrectionCSV(w io.Writer, rows []CorrectionRow) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "Input   ;Output  ;Correction\n")
	for _, r := range rows {
		fmt.Fprintf(bw, "%10.6f;%10.6f;%10.6f\n", r.Input, r.Output, r.Correction)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write correction table: %w", err)
	}
	return nil
}
