package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/banshee-data/anglecomp/internal/serialmux"
)

// DefaultConfigPath is the path to the canonical sensor defaults file.
const DefaultConfigPath = "config/sensor.defaults.json"

// SensorConfig describes how to reach the scanner and how often to ask it for
// its angle compensation coefficients. Unset fields fall back to the
// defaults returned by the Get* methods, so partial configs are safe.
type SensorConfig struct {
	// Serial port params
	Port     *string `json:"port,omitempty"`
	BaudRate *int    `json:"baud_rate,omitempty"`
	DataBits *int    `json:"data_bits,omitempty"`
	StopBits *int    `json:"stop_bits,omitempty"`
	Parity   *string `json:"parity,omitempty"`

	// Protocol params
	Binary        *bool   `json:"binary,omitempty"` // CoLa-B when true, CoLa-A otherwise
	QueryCommand  *string `json:"query_command,omitempty"`
	QueryInterval *string `json:"query_interval,omitempty"` // duration string like "10m", "0" disables

	// Admin server
	Listen *string `json:"listen,omitempty"`
}

// Helper functions to create pointers
func ptrBool(v bool) *bool       { return &v }
func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }

// EmptySensorConfig returns a SensorConfig with all fields set to nil.
func EmptySensorConfig() *SensorConfig {
	return &SensorConfig{}
}

// DefaultSensorConfig returns a SensorConfig with every field populated with
// its default value.
func DefaultSensorConfig() *SensorConfig {
	c := EmptySensorConfig()
	return &SensorConfig{
		Port:          ptrString(c.GetPort()),
		BaudRate:      ptrInt(c.GetBaudRate()),
		DataBits:      ptrInt(c.GetDataBits()),
		StopBits:      ptrInt(c.GetStopBits()),
		Parity:        ptrString(c.GetParity()),
		Binary:        ptrBool(c.GetBinary()),
		QueryCommand:  ptrString(c.GetQueryCommand()),
		QueryInterval: ptrString("0"),
		Listen:        ptrString(c.GetListen()),
	}
}

// LoadSensorConfig loads a SensorConfig from a JSON file.
// The file is validated to ensure it has a .json extension and is under the max file size.
func LoadSensorConfig(path string) (*SensorConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptySensorConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads the canonical sensor defaults from DefaultConfigPath.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *SensorConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadSensorConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *SensorConfig) Validate() error {
	if _, err := c.PortOptions().Normalise(); err != nil {
		return err
	}

	if c.QueryCommand != nil && strings.TrimSpace(*c.QueryCommand) == "" {
		return fmt.Errorf("query_command must not be empty")
	}

	if c.QueryInterval != nil && *c.QueryInterval != "" {
		d, err := time.ParseDuration(*c.QueryInterval)
		if err != nil {
			return fmt.Errorf("invalid query_interval '%s': %w", *c.QueryInterval, err)
		}
		if d < 0 {
			return fmt.Errorf("query_interval must be non-negative, got %s", d)
		}
	}

	return nil
}

// GetPort returns the serial device path or the default.
func (c *SensorConfig) GetPort() string {
	if c.Port == nil || *c.Port == "" {
		return "/dev/ttyUSB0" // default
	}
	return *c.Port
}

// GetBaudRate returns the baud_rate value or the default.
func (c *SensorConfig) GetBaudRate() int {
	if c.BaudRate == nil {
		return serialmux.DefaultBaudRate
	}
	return *c.BaudRate
}

// GetDataBits returns the data_bits value or the default.
func (c *SensorConfig) GetDataBits() int {
	if c.DataBits == nil {
		return 8 // default
	}
	return *c.DataBits
}

// GetStopBits returns the stop_bits value or the default.
func (c *SensorConfig) GetStopBits() int {
	if c.StopBits == nil {
		return 1 // default
	}
	return *c.StopBits
}

// GetParity returns the parity value or the default.
func (c *SensorConfig) GetParity() string {
	if c.Parity == nil || *c.Parity == "" {
		return "N" // default
	}
	return *c.Parity
}

// GetBinary reports whether the sensor speaks CoLa-B.
func (c *SensorConfig) GetBinary() bool {
	if c.Binary == nil {
		return false // default
	}
	return *c.Binary
}

// GetQueryCommand returns the calibration query or the default.
func (c *SensorConfig) GetQueryCommand() string {
	if c.QueryCommand == nil || *c.QueryCommand == "" {
		return serialmux.DefaultQueryCommand
	}
	return *c.QueryCommand
}

// GetQueryInterval parses and returns the QueryInterval as a time.Duration.
// Zero disables periodic re-query.
func (c *SensorConfig) GetQueryInterval() time.Duration {
	if c.QueryInterval == nil || *c.QueryInterval == "" {
		return 0
	}
	d, err := time.ParseDuration(*c.QueryInterval)
	if err != nil || d < 0 {
		return 0 // default on parse error
	}
	return d
}

// GetListen returns the admin HTTP listen address or the default.
func (c *SensorConfig) GetListen() string {
	if c.Listen == nil || *c.Listen == "" {
		return "localhost:8083" // default
	}
	return *c.Listen
}

// PortOptions returns the serial parameters in the form serialmux expects.
func (c *SensorConfig) PortOptions() serialmux.PortOptions {
	return serialmux.PortOptions{
		BaudRate: c.GetBaudRate(),
		DataBits: c.GetDataBits(),
		StopBits: c.GetStopBits(),
		Parity:   c.GetParity(),
	}
}

// Dialect returns the framing implied by the binary flag.
func (c *SensorConfig) Dialect() serialmux.Dialect {
	if c.GetBinary() {
		return serialmux.ColaB
	}
	return serialmux.ColaA
}
