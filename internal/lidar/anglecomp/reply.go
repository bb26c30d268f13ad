package anglecomp

import (
	"encoding/hex"
	"strconv"
	"strings"
)

// Reply layout constants for the MCAngleCompSin reply
const (
	REPLY_TOKENS        = 5   // Two header tokens followed by three value tokens
	HEADER_TOKENS       = 2   // Command type and command name, e.g. "sRA MCAngleCompSin"
	TOKEN_DELIMITER     = " " // Single ASCII space, repeated delimiters yield empty tokens
	BINARY_PAYLOAD_SIZE = 12  // Trailing bytes carrying the three values in a binary reply
	BINARY_GROUP_SIZE   = 4   // Binary payload bytes rendered per ASCII value token

	AMPLITUDE_BITS = 16
	PHASE_BITS     = 32
	OFFSET_BITS    = 16
)

// BinaryToASCII renders a binary reply into the ASCII token form understood by
// ParseASCIIReply. Bytes before the trailing BINARY_PAYLOAD_SIZE bytes are the
// command header and are copied unchanged. The payload bytes are written as
// uppercase hex, one space after each group of BINARY_GROUP_SIZE bytes except
// the last.
func BinaryToASCII(payload []byte) (string, error) {
	if len(payload) < BINARY_PAYLOAD_SIZE {
		return "", &FrameError{Binary: true, Count: len(payload), Want: BINARY_PAYLOAD_SIZE}
	}
	split := len(payload) - BINARY_PAYLOAD_SIZE

	var sb strings.Builder
	sb.Grow(split + 2*BINARY_PAYLOAD_SIZE + BINARY_PAYLOAD_SIZE/BINARY_GROUP_SIZE)
	sb.Write(payload[:split])
	for i := split; i < len(payload); i += BINARY_GROUP_SIZE {
		if i > split {
			sb.WriteString(TOKEN_DELIMITER)
		}
		sb.WriteString(strings.ToUpper(hex.EncodeToString(payload[i : i+BINARY_GROUP_SIZE])))
	}
	return sb.String(), nil
}

// ParseASCIIReply decodes an ASCII MCAngleCompSin reply into a calibration.
func ParseASCIIReply(reply string) (Calibration, error) {
	f, err := parseFrame(reply)
	if err != nil {
		return Calibration{}, err
	}
	return f.calibration(), nil
}

// ParseReply decodes a binary or ASCII reply and, on success, makes it the
// active calibration. A failed decode leaves the previous calibration in
// place.
func (c *Compensator) ParseReply(isBinary bool, payload []byte) error {
	_, err := c.ApplyReply(isBinary, payload)
	return err
}

// ApplyReply is ParseReply that also returns the calibration it stored.
func (c *Compensator) ApplyReply(isBinary bool, payload []byte) (Calibration, error) {
	reply := string(payload)
	if isBinary {
		var err error
		if reply, err = BinaryToASCII(payload); err != nil {
			opsf("rejected binary reply (%d bytes): %v", len(payload), err)
			return Calibration{}, err
		}
	}
	return c.applyASCII(reply)
}

// ParseASCIIReply decodes an ASCII reply and, on success, makes it the active
// calibration.
func (c *Compensator) ParseASCIIReply(reply string) error {
	_, err := c.applyASCII(reply)
	return err
}

func (c *Compensator) applyASCII(reply string) (Calibration, error) {
	tracef("reply %q", reply)
	cal, err := ParseASCIIReply(reply)
	if err != nil {
		opsf("rejected reply %q: %v", reply, err)
		return Calibration{}, err
	}
	c.SetCalibration(cal)
	diagf("calibration updated: ampl=%.4f phase=%.4f deg offset=%.4f deg",
		cal.AmplitudeCorrection, cal.PhaseCorrectionDeg, cal.OffsetCorrectionDeg)
	return cal, nil
}

func parseFrame(reply string) (frame, error) {
	tokens := splitTokens(reply)
	if len(tokens) != REPLY_TOKENS {
		return frame{}, &FrameError{Count: len(tokens), Want: REPLY_TOKENS}
	}
	values := tokens[HEADER_TOKENS:]

	ampl, err := parseValue("amplitude", values[0], AMPLITUDE_BITS)
	if err != nil {
		return frame{}, err
	}
	phase, err := parseValue("phase", values[1], PHASE_BITS)
	if err != nil {
		return frame{}, err
	}
	offset, err := parseValue("offset", values[2], OFFSET_BITS)
	if err != nil {
		return frame{}, err
	}

	return frame{
		amplitude10000th: int16(uint16(ampl)),
		phase10000th:     int32(uint32(phase)),
		offset10000th:    int16(uint16(offset)),
	}, nil
}

// splitTokens splits on every delimiter. A delimiter at the very end does not
// start another token.
func splitTokens(reply string) []string {
	if reply == "" {
		return nil
	}
	tokens := strings.Split(reply, TOKEN_DELIMITER)
	if tokens[len(tokens)-1] == "" {
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}

// parseValue returns the low bits of a value token as an unsigned bit
// pattern. Tokens starting with '+' or '-' are signed decimal; all others are
// hexadecimal, with an optional 0x prefix.
func parseValue(field, token string, bits int) (uint64, error) {
	var raw uint64
	if strings.HasPrefix(token, "+") || strings.HasPrefix(token, "-") {
		v, err := strconv.ParseInt(token, 10, 64)
		if err != nil {
			return 0, &LiteralError{Field: field, Token: token, Err: err}
		}
		raw = uint64(v)
	} else {
		digits := token
		if len(digits) > 2 && (digits[:2] == "0x" || digits[:2] == "0X") {
			digits = digits[2:]
		}
		v, err := strconv.ParseUint(digits, 16, 64)
		if err != nil {
			return 0, &LiteralError{Field: field, Token: token, Err: err}
		}
		raw = v
	}
	return raw & (1<<uint(bits) - 1), nil
}
