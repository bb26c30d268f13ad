package monitor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"tailscale.com/tsweb"

	"github.com/banshee-data/anglecomp/internal/lidar/anglecomp"
)

const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// CalibrationState is the JSON view of the active calibration.
type CalibrationState struct {
	AmplitudeCorrection float64           `json:"amplitude_correction"`
	PhaseCorrectionDeg  float64           `json:"phase_correction_deg"`
	PhaseCorrectionRad  float64           `json:"phase_correction_rad"`
	OffsetCorrectionDeg float64           `json:"offset_correction_deg"`
	OffsetCorrectionRad float64           `json:"offset_correction_rad"`
	Updates             uint64            `json:"updates"`
	Summary             CorrectionSummary `json:"summary"`
	Replies             *StatsSnapshot    `json:"replies,omitempty"`
}

// AngleCompHandlers serves the active calibration of a Compensator.
type AngleCompHandlers struct {
	comp  *anglecomp.Compensator
	stats *ReplyStats
}

// NewAngleCompHandlers creates handlers for comp. stats may be nil.
func NewAngleCompHandlers(comp *anglecomp.Compensator, stats *ReplyStats) *AngleCompHandlers {
	return &AngleCompHandlers{comp: comp, stats: stats}
}

// AttachAngleCompRoutes registers the calibration debug endpoints under
// /debug/ on mux.
func AttachAngleCompRoutes(mux *http.ServeMux, comp *anglecomp.Compensator, stats *ReplyStats) {
	h := NewAngleCompHandlers(comp, stats)
	debug := tsweb.Debugger(mux)

	debug.HandleFunc("anglecomp", "active angle compensation calibration (JSON)", h.handleState)
	debug.HandleFunc("anglecomp-chart", "angle compensation correction curve", h.handleChart)
	debug.HandleSilentFunc("anglecomp-table", h.handleTable)
	debug.HandleSilentFunc("anglecomp-plot.png", h.handlePlot)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

// stepParam reads the optional step query parameter, in degrees.
func stepParam(r *http.Request) (float64, error) {
	s := r.URL.Query().Get("step")
	if s == "" {
		return DefaultTableStep, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0.01 || v > 90 {
		return 0, fmt.Errorf("invalid step %q: must be between 0.01 and 90", s)
	}
	return v, nil
}

// State returns the current calibration and its correction summary.
func (h *AngleCompHandlers) State() CalibrationState {
	cal := h.comp.Calibration()
	state := CalibrationState{
		AmplitudeCorrection: cal.AmplitudeCorrection,
		PhaseCorrectionDeg:  cal.PhaseCorrectionDeg,
		PhaseCorrectionRad:  cal.PhaseCorrectionRad,
		OffsetCorrectionDeg: cal.OffsetCorrectionDeg,
		OffsetCorrectionRad: cal.OffsetCorrectionRad,
		Updates:             h.comp.Updates(),
		Summary:             SummariseCorrections(CorrectionTable(cal, DefaultTableStep)),
	}
	if h.stats != nil {
		s := h.stats.Snapshot()
		state.Replies = &s
	}
	return state
}

func (h *AngleCompHandlers) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.State()); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode state")
	}
}

// handleChart renders the correction curve (HTML) using go-echarts.
// Query params:
//   - step (optional; default 1) input spacing in degrees
func (h *AngleCompHandlers) handleChart(w http.ResponseWriter, r *http.Request) {
	step, err := stepParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	cal := h.comp.Calibration()
	rows := CorrectionTable(cal, step)

	xs := make([]string, len(rows))
	data := make([]opts.LineData, len(rows))
	for i, row := range rows {
		xs[i] = strconv.FormatFloat(row.Input, 'f', -1, 64)
		data[i] = opts.LineData{Value: row.Correction}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Angle Compensation", Theme: "dark", Width: "1000px", Height: "480px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{
			Title: "Angle compensation correction",
			Subtitle: fmt.Sprintf("ampl=%.4f phase=%.4f deg offset=%.4f deg updates=%d",
				cal.AmplitudeCorrection, cal.PhaseCorrectionDeg, cal.OffsetCorrectionDeg, h.comp.Updates()),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Input (deg)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Correction (deg)", NameLocation: "middle", NameGap: 50}),
	)
	line.SetXAxis(xs).AddSeries("correction", data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

func (h *AngleCompHandlers) handleTable(w http.ResponseWriter, r *http.Request) {
	step, err := stepParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	if err := WriteCorrectionCSV(w, CorrectionTable(h.comp.Calibration(), step)); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *AngleCompHandlers) handlePlot(w http.ResponseWriter, r *http.Request) {
	step, err := stepParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	var buf bytes.Buffer
	if err := WriteCorrectionPNG(&buf, CorrectionTable(h.comp.Calibration(), step), "Angle compensation correction"); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}
