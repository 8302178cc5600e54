package movers

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

// UncertaintyParams configures the eddy uncertainty model.
type UncertaintyParams struct {
	// EddyDiffusion enables the model when > 0. Zero (the default)
	// disables it entirely: no draws are made and velocities pass
	// through untouched.
	EddyDiffusion float64

	// EddyV0 is the base velocity below which perturbations attenuate,
	// so stagnant water does not get amplified noise.
	EddyV0 float64

	// Duration is how long one draw stays in effect before a reseed;
	// TimeDelay is how long after release the model stays inactive.
	Duration  time.Duration
	TimeDelay time.Duration

	// Directional scale factors bounding the perturbation. The
	// along-flow factor is drawn from [DownCurrent, UpCurrent], the
	// cross-flow factor from [LeftCurrent, RightCurrent].
	DownCurrent  float64
	UpCurrent    float64
	RightCurrent float64
	LeftCurrent  float64
}

// DefaultUncertaintyParams returns the standard parameter set:
// uncertainty disabled, 48 h duration, no delay.
func DefaultUncertaintyParams() UncertaintyParams {
	return UncertaintyParams{
		EddyDiffusion: 0,
		EddyV0:        0.1,
		Duration:      48 * time.Hour,
		TimeDelay:     0,
		DownCurrent:   -0.3,
		UpCurrent:     0.3,
		RightCurrent:  0.1,
		LeftCurrent:   -0.1,
	}
}

// eddySlot holds the per-element draw and its expiry. A zero expiry
// means the slot has never been seeded.
type eddySlot struct {
	along    float64
	cross    float64
	expireAt time.Time
}

// EddyUncertainty perturbs element velocities with temporally correlated
// noise: each element keeps its draw until the configured duration
// elapses, then reseeds on the next step. Slots are indexed alongside
// the uncertainty batch.
type EddyUncertainty struct {
	params UncertaintyParams
	start  time.Time
	uni    distuv.Uniform
	slots  []eddySlot
}

// NewEddyUncertainty creates the model with its own seeded uniform
// source. start anchors the TimeDelay countdown (spill release time).
func NewEddyUncertainty(params UncertaintyParams, start time.Time, seed uint64) *EddyUncertainty {
	return &EddyUncertainty{
		params: params,
		start:  start,
		uni: distuv.Uniform{
			Min: 0,
			Max: 1,
			Src: rand.NewPCG(seed, seed^0x9e3779b97f4a7c15),
		},
	}
}

// Params returns the current parameter set.
func (e *EddyUncertainty) Params() UncertaintyParams { return e.params }

// SetParams replaces the parameter set. Existing draws keep their expiry.
func (e *EddyUncertainty) SetParams(p UncertaintyParams) { e.params = p }

// SetStart rebases the release time the delay counts from.
func (e *EddyUncertainty) SetStart(t time.Time) { e.start = t }

// Enabled reports whether perturbation is active.
func (e *EddyUncertainty) Enabled() bool { return e.params.EddyDiffusion > 0 }

// Resize grows or shrinks the slot array to n entries. New slots start
// unseeded.
func (e *EddyUncertainty) Resize(n int) {
	if n <= cap(e.slots) {
		e.slots = e.slots[:n]
		return
	}
	grown := make([]eddySlot, n)
	copy(grown, e.slots)
	e.slots = grown
}

// Perturb applies the slot-i perturbation to (u, v) at the given time,
// seeding or reseeding the slot first if due. With the model disabled or
// the delay not yet elapsed the inputs pass through unchanged.
func (e *EddyUncertainty) Perturb(i int, now time.Time, u, v float64) (float64, float64) {
	if !e.Enabled() {
		return u, v
	}
	if now.Before(e.start.Add(e.params.TimeDelay)) {
		return u, v
	}

	s := &e.slots[i]
	if s.expireAt.IsZero() || !now.Before(s.expireAt) {
		e.reseed(s, now)
	}

	speed := math.Hypot(u, v)
	atten := 1.0
	if e.params.EddyV0 > 0 && speed < e.params.EddyV0 {
		atten = speed / e.params.EddyV0
	}
	along := s.along * atten
	cross := s.cross * atten

	return u*(1+along) - v*cross, v*(1+along) + u*cross
}

// reseed draws two independent unit-interval values and maps them onto
// the directional bounds.
func (e *EddyUncertainty) reseed(s *eddySlot, now time.Time) {
	r1 := e.uni.Rand()
	r2 := e.uni.Rand()
	s.along = e.params.DownCurrent + r1*(e.params.UpCurrent-e.params.DownCurrent)
	s.cross = e.params.LeftCurrent + r2*(e.params.RightCurrent-e.params.LeftCurrent)
	s.expireAt = now.Add(e.params.Duration)
}
