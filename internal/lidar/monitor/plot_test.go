package monitor

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestSaveCorrectionPlot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plots", "correction.png")

	require.NoError(t, SaveCorrectionPlot(CorrectionTable(testCalibration(), 1), "test", path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic), "expected a PNG file")
}

func TestWriteCorrectionPNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCorrectionPNG(&buf, CorrectionTable(testCalibration(), 5), "test"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestCorrectionPlot_NoRows(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, WriteCorrectionPNG(&buf, nil, "empty"))
	assert.Error(t, SaveCorrectionPlot(nil, "empty", filepath.Join(t.TempDir(), "x.png")))
}
