package serialmux

import (
	"testing"
)

func TestNewRealSerialMux(t *testing.T) {
	// There is no real device in unit tests; opening a missing path must fail
	// cleanly.
	mux, err := NewRealSerialMux("/dev/nonexistent-serial-port-12345", PortOptions{}, ColaA)
	if err == nil {
		t.Error("Expected error when opening non-existent serial port")
		if mux != nil {
			mux.Close()
		}
	}
	if err != nil && mux != nil {
		t.Error("Expected nil mux when error is returned")
	}
}

func TestNewRealSerialMux_InvalidOptions(t *testing.T) {
	_, err := NewRealSerialMux("/dev/null", PortOptions{Parity: "X"}, ColaB)
	if err == nil {
		t.Error("Expected error for invalid port options")
	}
}
