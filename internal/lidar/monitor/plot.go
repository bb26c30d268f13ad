package monitor

import (
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	plotWidth  = 10 * vg.Inch
	plotHeight = 4 * vg.Inch
)

// newCorrectionPlot builds a line plot of correction against input angle.
func newCorrectionPlot(rows []CorrectionRow, title string) (*plot.Plot, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no correction rows to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Input angle (deg)"
	p.Y.Label.Text = "Correction (deg)"
	p.X.Min = 0
	p.X.Max = 360
	p.Add(plotter.NewGrid())

	pts := make(plotter.XYs, len(rows))
	for i, r := range rows {
		pts[i] = plotter.XY{X: r.Input, Y: r.Correction}
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	line.Width = vg.Points(1.5)
	p.Add(line)
	p.Legend.Add("correction", line)
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10

	return p, nil
}

// SaveCorrectionPlot writes the correction curve as an image. The format
// follows the file extension (png, svg, pdf).
func SaveCorrectionPlot(rows []CorrectionRow, title, path string) error {
	p, err := newCorrectionPlot(rows, title)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return fmt.Errorf("save correction plot: %w", err)
	}
	return nil
}

// WriteCorrectionPNG renders the correction curve as a PNG to w.
func WriteCorrectionPNG(w io.Writer, rows []CorrectionRow, title string) error {
	p, err := newCorrectionPlot(rows, title)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(plotWidth, plotHeight, "png")
	if err != nil {
		return fmt.Errorf("render correction plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write correction plot: %w", err)
	}
	return nil
}
