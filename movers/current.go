package movers

import (
	"fmt"
	"math"
	"time"

	"github.com/pthm-cable/drift/elements"
	"github.com/pthm-cable/drift/environment"
)

// ScaleMode selects how the mover scales sampled velocities.
type ScaleMode uint8

const (
	ScaleNone ScaleMode = iota
	ScaleConstant
)

// unsetDepth is the internal sentinel for "no reference point". It never
// leaves this package; ReferencePoint reports unset through its second
// return value.
const unsetDepth = math.MaxFloat64

// CurrentMover advects elements with a time-dependent current field. It
// combines an attachable velocity source, a reference-point anchored
// scale, and the eddy uncertainty model for the uncertainty element set.
//
// A fresh mover scales by a constant 1 and has uncertainty disabled. A
// velocity source must be attached before the first ComputeDisplacement
// call.
type CurrentMover struct {
	source environment.VelocitySource

	refPoint   elements.WorldPoint
	scaleValue float64

	uncertainty *EddyUncertainty
}

// NewCurrentMover returns a mover with default configuration.
func NewCurrentMover(seed uint64) *CurrentMover {
	return &CurrentMover{
		refPoint:    elements.WorldPoint{Z: unsetDepth},
		scaleValue:  1,
		uncertainty: NewEddyUncertainty(DefaultUncertaintyParams(), time.Time{}, seed),
	}
}

// ConfigureTimeSeries attaches a discrete time-series source built from
// the given samples, replacing any prior source.
func (m *CurrentMover) ConfigureTimeSeries(samples []environment.Sample) error {
	ts, err := environment.NewTimeSeries(samples)
	if err != nil {
		return err
	}
	m.source = ts
	return nil
}

// ConfigureHarmonic attaches a tidal-harmonic source built from the
// given station record and constituent table, replacing any prior
// source.
func (m *CurrentMover) ConfigureHarmonic(station environment.Station, constituents []environment.Constituent, epoch time.Time) error {
	tide, err := environment.NewTide(station, constituents, epoch)
	if err != nil {
		return err
	}
	m.source = tide
	return nil
}

// SetTimeSource attaches an already-built source (last write wins).
func (m *CurrentMover) SetTimeSource(src environment.VelocitySource) error {
	if src == nil {
		return fmt.Errorf("%w: nil velocity source", elements.ErrInvalidArgument)
	}
	m.source = src
	return nil
}

// SetReferencePoint sets the scaling reference point from exactly three
// numeric components (longitude, latitude, depth).
func (m *CurrentMover) SetReferencePoint(coords []float64) error {
	if len(coords) != 3 {
		return fmt.Errorf("%w: reference point needs exactly 3 components, got %d",
			elements.ErrInvalidArgument, len(coords))
	}
	for i, c := range coords {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: reference point component %d is %v",
				elements.ErrInvalidArgument, i, c)
		}
	}
	m.refPoint = elements.WorldPoint{Lon: coords[0], Lat: coords[1], Z: coords[2]}
	return nil
}

// ClearReferencePoint returns the mover to the unset state.
func (m *CurrentMover) ClearReferencePoint() {
	m.refPoint = elements.WorldPoint{Z: unsetDepth}
}

// ReferencePoint returns the reference point and whether one is set.
func (m *CurrentMover) ReferencePoint() (elements.WorldPoint, bool) {
	if m.refPoint.Z == unsetDepth {
		return elements.WorldPoint{}, false
	}
	return m.refPoint, true
}

// SetScale configures velocity scaling. Mode "none" and a constant scale
// of 1 are numerically equivalent, so the mover always records a
// constant with an explicit value; configuring ScaleNone stores
// constant/1.
func (m *CurrentMover) SetScale(mode ScaleMode, value float64) error {
	switch mode {
	case ScaleNone:
		m.scaleValue = 1
	case ScaleConstant:
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return fmt.Errorf("%w: scale value is %v", elements.ErrInvalidArgument, value)
		}
		m.scaleValue = value
	default:
		return fmt.Errorf("%w: unknown scale mode %d", elements.ErrInvalidArgument, mode)
	}
	return nil
}

// Scale returns the recorded scale configuration.
func (m *CurrentMover) Scale() (ScaleMode, float64) {
	return ScaleConstant, m.scaleValue
}

// computeScale returns the velocity multiplier for the given time.
func (m *CurrentMover) computeScale(time.Time) float64 {
	return m.scaleValue
}

// Uncertainty exposes the eddy uncertainty model for parameter access.
func (m *CurrentMover) Uncertainty() *EddyUncertainty { return m.uncertainty }

// SetEddyDiffusion sets the eddy diffusion coefficient; zero disables
// uncertainty perturbation entirely.
func (m *CurrentMover) SetEddyDiffusion(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%w: eddy diffusion must be >= 0, got %v", elements.ErrInvalidArgument, v)
	}
	p := m.uncertainty.Params()
	p.EddyDiffusion = v
	m.uncertainty.SetParams(p)
	return nil
}

// EddyDiffusion returns the eddy diffusion coefficient.
func (m *CurrentMover) EddyDiffusion() float64 {
	return m.uncertainty.Params().EddyDiffusion
}

// SetEddyV0 sets the eddy base velocity.
func (m *CurrentMover) SetEddyV0(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%w: eddy v0 must be >= 0, got %v", elements.ErrInvalidArgument, v)
	}
	p := m.uncertainty.Params()
	p.EddyV0 = v
	m.uncertainty.SetParams(p)
	return nil
}

// SetUncertaintyTiming sets the draw duration and the post-release delay.
func (m *CurrentMover) SetUncertaintyTiming(duration, delay time.Duration) error {
	if duration <= 0 {
		return fmt.Errorf("%w: uncertainty duration must be positive, got %s",
			elements.ErrInvalidArgument, duration)
	}
	if delay < 0 {
		return fmt.Errorf("%w: uncertainty time delay must be >= 0, got %s",
			elements.ErrInvalidArgument, delay)
	}
	p := m.uncertainty.Params()
	p.Duration = duration
	p.TimeDelay = delay
	m.uncertainty.SetParams(p)
	return nil
}

// SetDirectionalScales sets the four directional uncertainty factors.
func (m *CurrentMover) SetDirectionalScales(down, up, right, left float64) error {
	for _, v := range []float64{down, up, right, left} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: directional scale is %v", elements.ErrInvalidArgument, v)
		}
	}
	if down > up {
		return fmt.Errorf("%w: down-current scale %v exceeds up-current scale %v",
			elements.ErrInvalidArgument, down, up)
	}
	if left > right {
		return fmt.Errorf("%w: left-current scale %v exceeds right-current scale %v",
			elements.ErrInvalidArgument, left, right)
	}
	p := m.uncertainty.Params()
	p.DownCurrent, p.UpCurrent = down, up
	p.RightCurrent, p.LeftCurrent = right, left
	m.uncertainty.SetParams(p)
	return nil
}

// ComputeDisplacement implements Mover. Elements not in the water
// receive a zero delta; everything else gets the scaled, optionally
// perturbed current integrated over the step. All validation happens
// before the first write, so a failed call leaves deltas and the
// uncertainty state untouched.
func (m *CurrentMover) ComputeDisplacement(modelTime time.Time, stepLen time.Duration,
	batch elements.Batch, deltas []elements.Delta, kind elements.Kind) error {

	if !kind.Valid() {
		return fmt.Errorf("%w: element kind %d: must be forecast (%d) or uncertainty (%d)",
			elements.ErrInvalidArgument, kind, elements.KindForecast, elements.KindUncertainty)
	}
	if m.source == nil {
		return fmt.Errorf("%w: no velocity time source attached", elements.ErrData)
	}

	n := batch.Len()
	if n == 0 {
		return fmt.Errorf("%w: empty element batch", elements.ErrArrayMismatch)
	}
	if len(batch.Status) != n {
		return fmt.Errorf("%w: %d positions but %d statuses",
			elements.ErrArrayMismatch, n, len(batch.Status))
	}
	if len(deltas) != n {
		return fmt.Errorf("%w: %d elements but %d displacement slots",
			elements.ErrArrayMismatch, n, len(deltas))
	}

	vel := m.source.Sample(modelTime)
	scale := m.computeScale(modelTime)
	u := vel.U * scale
	v := vel.V * scale
	dt := stepLen.Seconds()

	uncertain := kind == elements.KindUncertainty
	if uncertain {
		m.uncertainty.Resize(n)
	}

	for i := 0; i < n; i++ {
		if batch.Status[i] != elements.StatusInWater {
			deltas[i] = elements.Delta{}
			continue
		}
		ui, vi := u, v
		if uncertain {
			ui, vi = m.uncertainty.Perturb(i, modelTime, ui, vi)
		}
		deltas[i] = elements.VelocityDelta(ui, vi, batch.Positions[i].Lat, dt)
	}
	return nil
}
