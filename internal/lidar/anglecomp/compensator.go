package anglecomp

import "sync/atomic"

// Compensator owns the active calibration and applies it to raw angles.
// Decoders replace the calibration as a whole snapshot, so concurrent readers
// always see the degree and radian fields of a single reply.
type Compensator struct {
	current atomic.Pointer[Calibration]
	updates atomic.Uint64
}

// NewCompensator returns a compensator with a zero calibration, which leaves
// angles unchanged until a reply has been decoded.
func NewCompensator() *Compensator {
	c := &Compensator{}
	c.current.Store(&Calibration{})
	return c
}

// Calibration returns the active calibration snapshot.
func (c *Compensator) Calibration() Calibration {
	return *c.current.Load()
}

// SetCalibration replaces the active calibration.
func (c *Compensator) SetCalibration(cal Calibration) {
	c.current.Store(&cal)
	c.updates.Add(1)
}

// Updates returns how many times the calibration has been replaced.
func (c *Compensator) Updates() uint64 {
	return c.updates.Load()
}

// CompensateRadian corrects a raw angle given in radians.
func (c *Compensator) CompensateRadian(angleInRad float64) float64 {
	return c.current.Load().CompensateRadian(angleInRad)
}

// CompensateDegree corrects a raw angle given in degrees.
func (c *Compensator) CompensateDegree(angleInDeg float64) float64 {
	return c.current.Load().CompensateDegree(angleInDeg)
}
