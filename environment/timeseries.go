package environment

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pthm-cable/drift/elements"
)

// Sample is one (time, velocity) entry of a discrete series.
type Sample struct {
	Time time.Time
	V    Velocity
}

// TimeSeries interpolates linearly between ordered velocity samples.
// Outside the covered range it clamps to the boundary value rather than
// extrapolating.
type TimeSeries struct {
	samples []Sample
}

// NewTimeSeries validates and copies the sample sequence. The sequence
// must be non-empty and strictly increasing in time, and every velocity
// component must be finite.
func NewTimeSeries(samples []Sample) (*TimeSeries, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("%w: time series is empty", elements.ErrData)
	}
	for i, s := range samples {
		if !isFinite(s.V.U) || !isFinite(s.V.V) {
			return nil, fmt.Errorf("%w: non-finite velocity (%v, %v) at entry %d",
				elements.ErrData, s.V.U, s.V.V, i)
		}
		if i > 0 && !samples[i-1].Time.Before(s.Time) {
			return nil, fmt.Errorf("%w: time series not strictly increasing at entry %d (%s >= %s)",
				elements.ErrData, i-1, samples[i-1].Time.Format(time.RFC3339), s.Time.Format(time.RFC3339))
		}
	}
	ts := &TimeSeries{samples: make([]Sample, len(samples))}
	copy(ts.samples, samples)
	return ts, nil
}

// Len returns the number of samples.
func (ts *TimeSeries) Len() int { return len(ts.samples) }

// Sample returns the velocity at t, linearly interpolated between the
// two bracketing entries and clamped at the boundaries.
func (ts *TimeSeries) Sample(t time.Time) Velocity {
	n := len(ts.samples)
	if !t.After(ts.samples[0].Time) {
		return ts.samples[0].V
	}
	if !t.Before(ts.samples[n-1].Time) {
		return ts.samples[n-1].V
	}

	// First entry at or after t; the loop above guarantees 1 <= hi < n.
	hi := sort.Search(n, func(i int) bool {
		return !ts.samples[i].Time.Before(t)
	})
	lo := hi - 1

	a, b := ts.samples[lo], ts.samples[hi]
	span := b.Time.Sub(a.Time).Seconds()
	frac := t.Sub(a.Time).Seconds() / span
	return Velocity{
		U: a.V.U + frac*(b.V.U-a.V.U),
		V: a.V.V + frac*(b.V.V-a.V.V),
	}
}

func isFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
