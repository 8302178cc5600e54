package environment

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/pthm-cable/drift/elements"
)

func ts(sec int) time.Time {
	return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(sec) * time.Second)
}

func TestNewTimeSeriesEmpty(t *testing.T) {
	_, err := NewTimeSeries(nil)
	if !errors.Is(err, elements.ErrData) {
		t.Fatalf("empty series: got %v, want ErrData", err)
	}
}

func TestNewTimeSeriesUnordered(t *testing.T) {
	samples := []Sample{
		{Time: ts(3600), V: Velocity{U: 1}},
		{Time: ts(0), V: Velocity{U: 2}},
	}
	_, err := NewTimeSeries(samples)
	if !errors.Is(err, elements.ErrData) {
		t.Fatalf("unordered series: got %v, want ErrData", err)
	}

	// Duplicate timestamps are also rejected
	samples = []Sample{
		{Time: ts(0), V: Velocity{U: 1}},
		{Time: ts(0), V: Velocity{U: 2}},
	}
	if _, err := NewTimeSeries(samples); !errors.Is(err, elements.ErrData) {
		t.Fatalf("duplicate timestamps: got %v, want ErrData", err)
	}
}

func TestNewTimeSeriesNonFinite(t *testing.T) {
	samples := []Sample{{Time: ts(0), V: Velocity{U: math.NaN()}}}
	if _, err := NewTimeSeries(samples); !errors.Is(err, elements.ErrData) {
		t.Fatalf("NaN velocity: got %v, want ErrData", err)
	}
}

func TestTimeSeriesInterpolation(t *testing.T) {
	series, err := NewTimeSeries([]Sample{
		{Time: ts(0), V: Velocity{U: 1, V: 0}},
		{Time: ts(3600), V: Velocity{U: 0, V: 1}},
	})
	if err != nil {
		t.Fatalf("NewTimeSeries: %v", err)
	}

	tests := []struct {
		name string
		at   time.Time
		u, v float64
	}{
		{"first sample", ts(0), 1, 0},
		{"last sample", ts(3600), 0, 1},
		{"midpoint", ts(1800), 0.5, 0.5},
		{"quarter", ts(900), 0.75, 0.25},
	}
	for _, tc := range tests {
		got := series.Sample(tc.at)
		if math.Abs(got.U-tc.u) > 1e-12 || math.Abs(got.V-tc.v) > 1e-12 {
			t.Errorf("%s: got (%v, %v), want (%v, %v)", tc.name, got.U, got.V, tc.u, tc.v)
		}
	}
}

func TestTimeSeriesClampsAtBoundaries(t *testing.T) {
	series, err := NewTimeSeries([]Sample{
		{Time: ts(0), V: Velocity{U: 1, V: 2}},
		{Time: ts(3600), V: Velocity{U: 3, V: 4}},
	})
	if err != nil {
		t.Fatalf("NewTimeSeries: %v", err)
	}

	// Before the range: first value, no extrapolation
	before := series.Sample(ts(-7200))
	if before.U != 1 || before.V != 2 {
		t.Errorf("before range: got (%v, %v), want (1, 2)", before.U, before.V)
	}

	// After the range: last value
	after := series.Sample(ts(7200))
	if after.U != 3 || after.V != 4 {
		t.Errorf("after range: got (%v, %v), want (3, 4)", after.U, after.V)
	}
}

func TestTimeSeriesCopiesInput(t *testing.T) {
	samples := []Sample{
		{Time: ts(0), V: Velocity{U: 1}},
		{Time: ts(60), V: Velocity{U: 2}},
	}
	series, err := NewTimeSeries(samples)
	if err != nil {
		t.Fatalf("NewTimeSeries: %v", err)
	}

	samples[0].V.U = 99
	if got := series.Sample(ts(0)); got.U != 1 {
		t.Errorf("series shares caller memory: got U=%v, want 1", got.U)
	}
}
