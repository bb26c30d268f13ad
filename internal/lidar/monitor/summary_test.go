package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/anglecomp/internal/lidar/anglecomp"
)

func TestSummariseCorrections(t *testing.T) {
	s := SummariseCorrections(CorrectionTable(testCalibration(), 1))

	assert.Equal(t, 360, s.Count)
	// The sine term averages out over a whole turn, leaving the offset.
	assert.InDelta(t, -0.0245, s.Mean, 1e-9)
	assert.InDelta(t, 0.1893-0.0245, s.Max, 1e-4)
	assert.InDelta(t, -0.1893-0.0245, s.Min, 1e-4)
	assert.InDelta(t, 2*0.1893, s.PeakToPeak, 2e-4)
	assert.InDelta(t, 0.1339, s.StdDev, 1e-3)
}

func TestSummariseCorrections_Empty(t *testing.T) {
	assert.Equal(t, CorrectionSummary{}, SummariseCorrections(nil))
}

func TestSummariseCorrections_Zero(t *testing.T) {
	s := SummariseCorrections(CorrectionTable(anglecomp.Calibration{}, 1))
	assert.Equal(t, 360, s.Count)
	assert.Equal(t, 0.0, s.PeakToPeak)
	assert.Equal(t, 0.0, s.Mean)
}
