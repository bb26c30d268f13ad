package anglecomp

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetLogWriters_Streams(t *testing.T) {
	var ops bytes.Buffer
	SetLogWriters(&ops, nil, nil)
	defer SetLogWriters(nil, nil, nil)

	if opsLogger == nil {
		t.Fatal("opsLogger should be non-nil after SetLogWriters with a writer")
	}
	if diagLogger != nil || traceLogger != nil {
		t.Fatal("diag and trace loggers should be nil when passed nil writers")
	}

	SetLogWriters(nil, nil, nil)
	if opsLogger != nil {
		t.Fatal("opsLogger should be nil after SetLogWriters(nil, nil, nil)")
	}
}

func TestDecodeLogging(t *testing.T) {
	var ops, diag, trace bytes.Buffer
	SetLogWriters(&ops, &diag, &trace)
	defer SetLogWriters(nil, nil, nil)

	comp := NewCompensator()
	if err := comp.ParseASCIIReply("sRA MCAngleCompSin +1893 -210503 -245"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(diag.String(), "ampl=0.1893 phase=-21.0503 deg offset=-0.0245 deg") {
		t.Errorf("diag stream missing calibration update, got %q", diag.String())
	}
	if !strings.Contains(trace.String(), "MCAngleCompSin +1893") {
		t.Errorf("trace stream missing reply text, got %q", trace.String())
	}
	if ops.Len() != 0 {
		t.Errorf("ops stream should be empty after a good reply, got %q", ops.String())
	}

	if err := comp.ParseReply(true, []byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for short binary reply")
	}
	if !strings.Contains(ops.String(), "[anglecomp]") || !strings.Contains(ops.String(), "3 bytes") {
		t.Errorf("ops stream missing rejection, got %q", ops.String())
	}
}

func TestLogHelpers_WithoutLogger(t *testing.T) {
	SetLogWriters(nil, nil, nil)
	// Should not panic when no logger is configured.
	opsf("no-op %d", 1)
	diagf("no-op %d", 2)
	tracef("no-op %d", 3)
}
