package monitor

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// CorrectionSummary describes the spread of a correction table in degrees.
type CorrectionSummary struct {
	Count      int     `json:"count"`
	Mean       float64 `json:"mean"`
	StdDev     float64 `json:"std_dev"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	PeakToPeak float64 `json:"peak_to_peak"`
}

// SummariseCorrections computes statistics over the Correction column.
func SummariseCorrections(rows []CorrectionRow) CorrectionSummary {
	if len(rows) == 0 {
		return CorrectionSummary{}
	}
	corr := make([]float64, len(rows))
	for i, r := range rows {
		corr[i] = r.Correction
	}

	mean, std := stat.MeanStdDev(corr, nil)
	lo, hi := floats.Min(corr), floats.Max(corr)
	return CorrectionSummary{
		Count:      len(corr),
		Mean:       mean,
		StdDev:     std,
		Min:        lo,
		Max:        hi,
		PeakToPeak: hi - lo,
	}
}
