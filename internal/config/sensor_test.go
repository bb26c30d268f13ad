package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/anglecomp/internal/serialmux"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestEmptySensorConfig_Defaults(t *testing.T) {
	cfg := EmptySensorConfig()

	assert.Equal(t, "/dev/ttyUSB0", cfg.GetPort())
	assert.Equal(t, serialmux.DefaultBaudRate, cfg.GetBaudRate())
	assert.Equal(t, 8, cfg.GetDataBits())
	assert.Equal(t, 1, cfg.GetStopBits())
	assert.Equal(t, "N", cfg.GetParity())
	assert.False(t, cfg.GetBinary())
	assert.Equal(t, serialmux.DefaultQueryCommand, cfg.GetQueryCommand())
	assert.Equal(t, time.Duration(0), cfg.GetQueryInterval())
	assert.Equal(t, "localhost:8083", cfg.GetListen())
	assert.Equal(t, serialmux.ColaA, cfg.Dialect())
	assert.NoError(t, cfg.Validate())
}

func TestDefaultSensorConfig(t *testing.T) {
	cfg := DefaultSensorConfig()

	require.NotNil(t, cfg.Port)
	assert.Equal(t, "/dev/ttyUSB0", *cfg.Port)
	require.NotNil(t, cfg.BaudRate)
	assert.Equal(t, 115200, *cfg.BaudRate)
	require.NotNil(t, cfg.Binary)
	assert.False(t, *cfg.Binary)
	assert.NoError(t, cfg.Validate())
}

func TestLoadSensorConfig(t *testing.T) {
	path := writeConfig(t, "sensor.json", `{
  "port": "/dev/ttyACM1",
  "baud_rate": 57600,
  "parity": "even",
  "binary": true,
  "query_interval": "90s",
  "listen": ":9090"
}`)

	cfg, err := LoadSensorConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM1", cfg.GetPort())
	assert.Equal(t, 57600, cfg.GetBaudRate())
	assert.True(t, cfg.GetBinary())
	assert.Equal(t, serialmux.ColaB, cfg.Dialect())
	assert.Equal(t, 90*time.Second, cfg.GetQueryInterval())
	assert.Equal(t, ":9090", cfg.GetListen())

	// Fields not in the file keep their defaults.
	assert.Nil(t, cfg.DataBits)
	assert.Equal(t, 8, cfg.GetDataBits())
	assert.Equal(t, serialmux.DefaultQueryCommand, cfg.GetQueryCommand())

	opts, err := cfg.PortOptions().Normalise()
	require.NoError(t, err)
	assert.Equal(t, serialmux.PortOptions{BaudRate: 57600, DataBits: 8, StopBits: 1, Parity: "E"}, opts)
}

func TestLoadSensorConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"wrong extension", "sensor.yaml", `{}`, ".json extension"},
		{"bad json", "sensor.json", `{"port":`, "failed to parse config JSON"},
		{"bad baud", "sensor.json", `{"baud_rate": 12345}`, "invalid baud rate"},
		{"bad parity", "sensor.json", `{"parity": "M"}`, "unsupported parity"},
		{"bad interval", "sensor.json", `{"query_interval": "soon"}`, "invalid query_interval"},
		{"negative interval", "sensor.json", `{"query_interval": "-1s"}`, "non-negative"},
		{"blank query", "sensor.json", `{"query_command": "  "}`, "query_command"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.body)
			_, err := LoadSensorConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadSensorConfig_Missing(t *testing.T) {
	_, err := LoadSensorConfig(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to stat config file")
}

func TestLoadSensorConfig_TooLarge(t *testing.T) {
	body := `{"port": "` + strings.Repeat("x", 1024*1024) + `"}`
	path := writeConfig(t, "big.json", body)

	_, err := LoadSensorConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()

	assert.Equal(t, "/dev/ttyUSB0", cfg.GetPort())
	assert.Equal(t, 10*time.Minute, cfg.GetQueryInterval())
	assert.Equal(t, serialmux.DefaultQueryCommand, cfg.GetQueryCommand())
	assert.NoError(t, cfg.Validate())
}
