package anglecomp

import "math"

const (
	DEG_TO_RAD = math.Pi / 180.0 // Degrees to radians factor used by both correction formulas

	FIXED_POINT_SCALE = 10000.0 // Reply values are transmitted in 1/10000 units
)

// Calibration is one immutable set of angle compensation coefficients.
// The radian fields are derived from the degree fields by NewCalibration and
// are never set on their own.
type Calibration struct {
	AmplitudeCorrection float64 // Sine amplitude in degrees
	PhaseCorrectionDeg  float64 // Phase shift of the sine term in degrees
	PhaseCorrectionRad  float64 // PhaseCorrectionDeg in radians
	OffsetCorrectionDeg float64 // Constant angular bias in degrees
	OffsetCorrectionRad float64 // OffsetCorrectionDeg in radians
}

// NewCalibration builds a calibration from its degree-valued coefficients.
func NewCalibration(amplitude, phaseDeg, offsetDeg float64) Calibration {
	return Calibration{
		AmplitudeCorrection: amplitude,
		PhaseCorrectionDeg:  phaseDeg,
		PhaseCorrectionRad:  phaseDeg * DEG_TO_RAD,
		OffsetCorrectionDeg: offsetDeg,
		OffsetCorrectionRad: offsetDeg * DEG_TO_RAD,
	}
}

// IsZero reports whether the calibration applies no correction.
func (c Calibration) IsZero() bool {
	return c.AmplitudeCorrection == 0 && c.PhaseCorrectionDeg == 0 && c.OffsetCorrectionDeg == 0
}

// CompensateRadian returns the corrected angle for a raw angle in radians.
// The amplitude is scaled by DEG_TO_RAD here but not in CompensateDegree;
// the sensor documents both formulas this way.
func (c Calibration) CompensateRadian(angleInRad float64) float64 {
	return angleInRad + DEG_TO_RAD*c.AmplitudeCorrection*math.Sin(angleInRad+c.PhaseCorrectionRad) + c.OffsetCorrectionRad
}

// CompensateDegree returns the corrected angle for a raw angle in degrees.
func (c Calibration) CompensateDegree(angleInDeg float64) float64 {
	angleRawInRad := DEG_TO_RAD * angleInDeg
	phaseCorrInRad := DEG_TO_RAD * c.PhaseCorrectionDeg
	return angleInDeg + c.AmplitudeCorrection*math.Sin(angleRawInRad+phaseCorrInRad) + c.OffsetCorrectionDeg
}

// frame holds the three fixed-point fields of one reply, already narrowed to
// their wire widths.
type frame struct {
	amplitude10000th int16
	phase10000th     int32
	offset10000th    int16
}

func (f frame) calibration() Calibration {
	return NewCalibration(
		float64(f.amplitude10000th)/FIXED_POINT_SCALE,
		float64(f.phase10000th)/FIXED_POINT_SCALE,
		float64(f.offset10000th)/FIXED_POINT_SCALE,
	)
}
