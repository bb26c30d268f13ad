package serialmux

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"
	"strings"
)

// Dialect selects how commands and replies are framed on the wire.
type Dialect int

const (
	// ColaA frames printable commands as STX <command> ETX.
	ColaA Dialect = iota
	// ColaB frames commands as 02 02 02 02 <len uint32 BE> <command> <xor>.
	ColaB
)

// CoLa framing constants
const (
	STX = 0x02
	ETX = 0x03

	COLA_B_HEADER_SIZE   = 8         // Magic (4 bytes) + payload length (4 bytes)
	COLA_B_CHECKSUM_SIZE = 1         // XOR over the payload bytes
	MAX_FRAME_PAYLOAD    = 64 * 1024 // Larger declared lengths are treated as corrupt
)

var colaBMagic = []byte{STX, STX, STX, STX}

// ParseDialect maps a config value onto a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "a", "cola-a", "ascii":
		return ColaA, nil
	case "b", "cola-b", "binary":
		return ColaB, nil
	default:
		return ColaA, fmt.Errorf("unsupported dialect %q: expected cola-a or cola-b", s)
	}
}

func (d Dialect) String() string {
	if d == ColaB {
		return "cola-b"
	}
	return "cola-a"
}

// Binary reports whether replies in this dialect carry binary values.
func (d Dialect) Binary() bool { return d == ColaB }

// FrameCommand wraps a command in the framing of the dialect.
func (d Dialect) FrameCommand(command string) []byte {
	if d == ColaB {
		frame := make([]byte, 0, COLA_B_HEADER_SIZE+len(command)+COLA_B_CHECKSUM_SIZE)
		frame = append(frame, colaBMagic...)
		frame = binary.BigEndian.AppendUint32(frame, uint32(len(command)))
		frame = append(frame, command...)
		return append(frame, checksum([]byte(command)))
	}
	frame := make([]byte, 0, len(command)+2)
	frame = append(frame, STX)
	frame = append(frame, command...)
	return append(frame, ETX)
}

// SplitFunc returns a bufio.SplitFunc yielding unframed reply payloads.
func (d Dialect) SplitFunc() func(data []byte, atEOF bool) (int, []byte, error) {
	if d == ColaB {
		return scanColaB
	}
	return scanColaA
}

func checksum(payload []byte) byte {
	var sum byte
	for _, b := range payload {
		sum ^= b
	}
	return sum
}

// scanColaA yields the bytes between STX and ETX. Bytes outside a frame are
// dropped.
func scanColaA(data []byte, atEOF bool) (int, []byte, error) {
	start := bytes.IndexByte(data, STX)
	if start < 0 {
		return len(data), nil, nil
	}
	end := bytes.IndexByte(data[start+1:], ETX)
	if end < 0 {
		if atEOF {
			return len(data), nil, nil
		}
		return start, nil, nil
	}
	end += start + 1
	return end + 1, data[start+1 : end], nil
}

// scanColaB yields the payload of each length-prefixed frame. On an
// implausible length or a bad checksum the scan resumes one byte later, so
// stray STX bytes before a frame cannot swallow it. Skipped bytes are
// consumed in the same call as the frame that follows them: bufio.Scanner
// only calls the split function again after reading more input.
func scanColaB(data []byte, atEOF bool) (int, []byte, error) {
	skipped := 0
	for {
		buf := data[skipped:]
		start := bytes.Index(buf, colaBMagic)
		if start < 0 {
			if atEOF {
				return len(data), nil, nil
			}
			// The tail may hold the start of the next magic.
			keep := len(colaBMagic) - 1
			if len(buf) <= keep {
				return skipped, nil, nil
			}
			return len(data) - keep, nil, nil
		}
		skipped += start
		buf = buf[start:]

		if len(buf) < COLA_B_HEADER_SIZE {
			if atEOF {
				return len(data), nil, nil
			}
			return skipped, nil, nil
		}

		n := binary.BigEndian.Uint32(buf[4:COLA_B_HEADER_SIZE])
		if n > MAX_FRAME_PAYLOAD {
			// Not a real header; resync on the next byte.
			skipped++
			continue
		}
		total := COLA_B_HEADER_SIZE + int(n) + COLA_B_CHECKSUM_SIZE
		if len(buf) < total {
			if atEOF {
				// No more input will complete it; a real frame may start inside.
				skipped++
				continue
			}
			return skipped, nil, nil
		}

		payload := buf[COLA_B_HEADER_SIZE : COLA_B_HEADER_SIZE+int(n)]
		if got := buf[total-1]; got != checksum(payload) {
			log.Printf("dropping CoLa-B frame: checksum 0x%02X, computed 0x%02X", got, checksum(payload))
			skipped++
			continue
		}
		return skipped + total, payload, nil
	}
}
