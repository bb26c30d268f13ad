package serialmux

import (
	"context"
	"testing"
	"time"
)

func TestMockSerialMux_AnswersQuery(t *testing.T) {
	for _, d := range []Dialect{ColaA, ColaB} {
		t.Run(d.String(), func(t *testing.T) {
			reply := []byte("sRA MCAngleCompSin +1893 -210503 -245")
			mux := NewMockSerialMux(d, reply)
			defer mux.Close()

			_, ch := mux.Subscribe()
			out := collect(ch)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			go mux.Monitor(ctx)
			time.Sleep(10 * time.Millisecond)

			if err := mux.Initialize(); err != nil {
				t.Fatalf("Initialize returned error: %v", err)
			}

			select {
			case got := <-out:
				if got != string(reply) {
					t.Errorf("payload = %q, want %q", got, reply)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("timeout waiting for mock reply")
			}
		})
	}
}

func TestMockSerialPort_IgnoresOtherCommands(t *testing.T) {
	mux := NewMockSerialMux(ColaA, []byte("sRA MCAngleCompSin 0 0 0"))
	defer mux.Close()

	if err := mux.SendCommand("sRN DeviceIdent"); err != nil {
		t.Fatalf("SendCommand returned error: %v", err)
	}
}

func TestTestableSerialPort_ReadWrite(t *testing.T) {
	port := NewTestableSerialPort()
	port.AddReadData([]byte("abc"))

	buf := make([]byte, 8)
	n, err := port.Read(buf)
	if err != nil || string(buf[:n]) != "abc" {
		t.Errorf("Read = %q, %v", buf[:n], err)
	}

	if _, err := port.Write([]byte("xyz")); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if string(port.GetWrittenData()) != "xyz" {
		t.Errorf("written = %q", port.GetWrittenData())
	}

	port.Close()
	if _, err := port.Read(buf); err == nil {
		t.Error("expected error reading closed port")
	}
	if _, err := port.Write([]byte("x")); err == nil {
		t.Error("expected error writing closed port")
	}
}
