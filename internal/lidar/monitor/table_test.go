package monitor

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/anglecomp/internal/lidar/anglecomp"
)

func testCalibration() anglecomp.Calibration {
	return anglecomp.NewCalibration(0.1893, -21.0503, -0.0245)
}

func TestCorrectionTable(t *testing.T) {
	rows := CorrectionTable(testCalibration(), 1)
	require.Len(t, rows, 360)

	assert.Equal(t, 0.0, rows[0].Input)
	assert.Equal(t, 359.0, rows[359].Input)
	assert.InDelta(t, -0.0924941752, rows[0].Output, 1e-9)
	assert.InDelta(t, 90.1521671507, rows[90].Output, 1e-9)
	for _, r := range rows {
		assert.InDelta(t, r.Output-r.Input, r.Correction, 1e-12)
	}
}

func TestCorrectionTable_Step(t *testing.T) {
	assert.Len(t, CorrectionTable(testCalibration(), 0.5), 720)
	assert.Len(t, CorrectionTable(testCalibration(), 90), 4)
	assert.Len(t, CorrectionTable(testCalibration(), 0), 360)
	assert.Len(t, CorrectionTable(testCalibration(), -3), 360)
}

func TestCorrectionTable_Identity(t *testing.T) {
	for _, r := range CorrectionTable(anglecomp.Calibration{}, 10) {
		assert.Equal(t, r.Input, r.Output)
		assert.Equal(t, 0.0, r.Correction)
	}
}

func TestWriteCorrectionCSV(t *testing.T) {
	var buf bytes.Buffer
	rows := CorrectionTable(testCalibration(), 90)
	require.NoError(t, WriteCorrectionCSV(&buf, rows))

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, "Input   ;Output  ;Correction", lines[0])
	assert.Equal(t, "  0.000000; -0.092494; -0.092494", lines[1])
	assert.Equal(t, " 90.000000; 90.152167;  0.152167", lines[2])
}
