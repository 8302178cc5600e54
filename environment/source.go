// Package environment provides the time-dependent velocity sources a
// current mover can attach: a discrete time-series interpolator and an
// analytic tidal-harmonic predictor.
package environment

import "time"

// Velocity is an east/north current sample in m/s.
type Velocity struct {
	U float64
	V float64
}

// VelocitySource yields the velocity for an absolute time. Sources are
// immutable after construction; a mover swaps them wholesale.
type VelocitySource interface {
	Sample(t time.Time) Velocity
}
