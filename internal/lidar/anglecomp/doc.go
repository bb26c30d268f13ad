// Package anglecomp corrects the raw mirror angle of a rotating-mirror
// scanner with the sensor's sinusoidal calibration model and decodes the
// MCAngleCompSin reply that carries the calibration coefficients.
/*
CORRECTION MODEL

	compensated = raw + ampl * sin(raw + phase) + offset

The sine term removes a once-per-revolution deviation of the mirror encoder,
the offset removes a constant bias. Coefficients come from the sensor itself
in reply to the "sRN MCAngleCompSin" query.

REPLY LAYOUT

ASCII (CoLa-A) reply, five space separated tokens:

	sRA MCAngleCompSin <ampl> <phase> <offset>

Binary (CoLa-B) reply, command header followed by 12 payload bytes:

	"sRA MCAngleCompSin " | 00 00 07 65 | FF FC C9 B9 | FF FF FF 0B

Every value is fixed point in 1/10000 units of its native unit. Amplitude and
offset are 16-bit signed, phase is 32-bit signed. A value token with a leading
'+' or '-' is signed decimal, anything else is the hexadecimal bit pattern. The
binary payload is rendered into the ASCII token form before parsing so both
dialects share one parser.
*/
package anglecomp
