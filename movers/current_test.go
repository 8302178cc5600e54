package movers

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/pthm-cable/drift/elements"
	"github.com/pthm-cable/drift/environment"
)

var t0 = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// constantMover returns a mover whose source always reports (u, v).
func constantMover(t *testing.T, u, v float64) *CurrentMover {
	t.Helper()
	m := NewCurrentMover(1)
	err := m.ConfigureTimeSeries([]environment.Sample{
		{Time: t0, V: environment.Velocity{U: u, V: v}},
	})
	if err != nil {
		t.Fatalf("ConfigureTimeSeries: %v", err)
	}
	return m
}

// singleBatch returns a one-element in-water batch at the given point.
func singleBatch(p elements.WorldPoint) elements.Batch {
	return elements.Batch{
		Positions: []elements.WorldPoint{p},
		Status:    []elements.Status{elements.StatusInWater},
		Windage:   []float64{0.03},
	}
}

func TestComputeDisplacementLinearInStepLength(t *testing.T) {
	m := constantMover(t, 0.4, -0.2)
	batch := singleBatch(elements.WorldPoint{Lat: 42})

	d1 := make([]elements.Delta, 1)
	d2 := make([]elements.Delta, 1)
	if err := m.ComputeDisplacement(t0, 900*time.Second, batch, d1, elements.KindForecast); err != nil {
		t.Fatalf("ComputeDisplacement: %v", err)
	}
	if err := m.ComputeDisplacement(t0, 1800*time.Second, batch, d2, elements.KindForecast); err != nil {
		t.Fatalf("ComputeDisplacement: %v", err)
	}

	if math.Abs(d2[0].DLon-2*d1[0].DLon) > 1e-15 {
		t.Errorf("DLon not linear: dt gave %v, 2dt gave %v", d1[0].DLon, d2[0].DLon)
	}
	if math.Abs(d2[0].DLat-2*d1[0].DLat) > 1e-15 {
		t.Errorf("DLat not linear: dt gave %v, 2dt gave %v", d1[0].DLat, d2[0].DLat)
	}
}

func TestComputeDisplacementInterpolatedScenario(t *testing.T) {
	// Two samples an hour apart rotating the current from east to
	// north; sampling at t0+30min interpolates to (0.5, 0.5).
	m := NewCurrentMover(1)
	err := m.ConfigureTimeSeries([]environment.Sample{
		{Time: t0, V: environment.Velocity{U: 1, V: 0}},
		{Time: t0.Add(time.Hour), V: environment.Velocity{U: 0, V: 1}},
	})
	if err != nil {
		t.Fatalf("ConfigureTimeSeries: %v", err)
	}

	batch := singleBatch(elements.WorldPoint{Lon: 0, Lat: 0})
	deltas := make([]elements.Delta, 1)
	if err := m.ComputeDisplacement(t0.Add(30*time.Minute), 1800*time.Second, batch, deltas, elements.KindForecast); err != nil {
		t.Fatalf("ComputeDisplacement: %v", err)
	}

	// 0.5 m/s over 1800 s = 900 m in each direction; at the equator
	// both axes convert identically.
	want := 900.0 / elements.MetersPerDegreeLat
	if math.Abs(deltas[0].DLon-want) > 1e-12 {
		t.Errorf("DLon: got %v, want %v", deltas[0].DLon, want)
	}
	if math.Abs(deltas[0].DLat-want) > 1e-12 {
		t.Errorf("DLat: got %v, want %v", deltas[0].DLat, want)
	}
}

func TestComputeDisplacementZeroForNonInWater(t *testing.T) {
	m := constantMover(t, 2, 2)

	statuses := []elements.Status{
		elements.StatusNotReleased,
		elements.StatusOnLand,
		elements.StatusOffMaps,
		elements.StatusEvaporated,
	}
	batch := elements.Batch{
		Positions: make([]elements.WorldPoint, len(statuses)),
		Status:    statuses,
		Windage:   make([]float64, len(statuses)),
	}
	deltas := make([]elements.Delta, len(statuses))
	for i := range deltas {
		deltas[i] = elements.Delta{DLon: 99, DLat: 99, DZ: 99} // stale garbage
	}

	if err := m.ComputeDisplacement(t0, time.Hour, batch, deltas, elements.KindForecast); err != nil {
		t.Fatalf("ComputeDisplacement: %v", err)
	}
	for i, d := range deltas {
		if d != (elements.Delta{}) {
			t.Errorf("element %d (%s): got %+v, want zero delta", i, statuses[i], d)
		}
	}
}

func TestComputeDisplacementArrayMismatch(t *testing.T) {
	m := constantMover(t, 1, 0)

	batch := elements.Batch{
		Positions: make([]elements.WorldPoint, 10),
		Status:    make([]elements.Status, 10),
	}
	for i := range batch.Status {
		batch.Status[i] = elements.StatusInWater
	}
	deltas := make([]elements.Delta, 11)
	sentinel := elements.Delta{DLon: -1, DLat: -1, DZ: -1}
	for i := range deltas {
		deltas[i] = sentinel
	}

	err := m.ComputeDisplacement(t0, time.Hour, batch, deltas, elements.KindForecast)
	if !errors.Is(err, elements.ErrArrayMismatch) {
		t.Fatalf("length mismatch: got %v, want ErrArrayMismatch", err)
	}
	for i, d := range deltas {
		if d != sentinel {
			t.Errorf("delta %d written despite error: %+v", i, d)
		}
	}

	// Empty batch is also a mismatch
	err = m.ComputeDisplacement(t0, time.Hour, elements.Batch{}, nil, elements.KindForecast)
	if !errors.Is(err, elements.ErrArrayMismatch) {
		t.Fatalf("empty batch: got %v, want ErrArrayMismatch", err)
	}
}

func TestComputeDisplacementInvalidKind(t *testing.T) {
	m := constantMover(t, 1, 0)
	batch := singleBatch(elements.WorldPoint{})
	deltas := make([]elements.Delta, 1)

	err := m.ComputeDisplacement(t0, time.Hour, batch, deltas, elements.Kind(3))
	if !errors.Is(err, elements.ErrInvalidArgument) {
		t.Fatalf("kind 3: got %v, want ErrInvalidArgument", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "forecast") || !strings.Contains(msg, "uncertainty") {
		t.Errorf("error does not name the allowed kinds: %q", msg)
	}
}

func TestComputeDisplacementNoSource(t *testing.T) {
	m := NewCurrentMover(1)
	batch := singleBatch(elements.WorldPoint{})
	deltas := make([]elements.Delta, 1)

	err := m.ComputeDisplacement(t0, time.Hour, batch, deltas, elements.KindForecast)
	if !errors.Is(err, elements.ErrData) {
		t.Fatalf("no source: got %v, want ErrData", err)
	}
}

func TestSourceRebindLastWriteWins(t *testing.T) {
	m := constantMover(t, 1, 0)

	// Replace the time series with a harmonic source; the mover must
	// use the replacement.
	station := environment.Station{Name: "rebind", FloodDirDeg: 0}
	err := m.ConfigureHarmonic(station, []environment.Constituent{
		{Name: "M2", Amplitude: 2},
	}, t0)
	if err != nil {
		t.Fatalf("ConfigureHarmonic: %v", err)
	}

	batch := singleBatch(elements.WorldPoint{Lat: 0})
	deltas := make([]elements.Delta, 1)
	if err := m.ComputeDisplacement(t0, time.Hour, batch, deltas, elements.KindForecast); err != nil {
		t.Fatalf("ComputeDisplacement: %v", err)
	}

	// The tide at its epoch flows north at 2 m/s; the old series ran
	// east at 1 m/s.
	if deltas[0].DLat <= 0 {
		t.Errorf("DLat: got %v, want northward movement from rebound source", deltas[0].DLat)
	}
	wantLat := 2.0 * 3600 / elements.MetersPerDegreeLat
	if math.Abs(deltas[0].DLat-wantLat) > 1e-9 {
		t.Errorf("DLat: got %v, want %v", deltas[0].DLat, wantLat)
	}
}

func TestReferencePointRoundTrip(t *testing.T) {
	m := NewCurrentMover(1)

	if _, ok := m.ReferencePoint(); ok {
		t.Fatal("fresh mover reports a reference point")
	}

	if err := m.SetReferencePoint([]float64{-70.953, 42.327, 5}); err != nil {
		t.Fatalf("SetReferencePoint: %v", err)
	}
	p, ok := m.ReferencePoint()
	if !ok {
		t.Fatal("reference point not set after setter")
	}
	if p.Lon != -70.953 || p.Lat != 42.327 || p.Z != 5 {
		t.Errorf("round trip: got %+v", p)
	}

	m.ClearReferencePoint()
	if _, ok := m.ReferencePoint(); ok {
		t.Error("reference point still set after clear")
	}
}

func TestSetReferencePointValidation(t *testing.T) {
	m := NewCurrentMover(1)

	for _, coords := range [][]float64{
		nil,
		{1},
		{1, 2},
		{1, 2, 3, 4},
		{1, math.NaN(), 3},
		{math.Inf(1), 2, 3},
	} {
		if err := m.SetReferencePoint(coords); !errors.Is(err, elements.ErrInvalidArgument) {
			t.Errorf("coords %v: got %v, want ErrInvalidArgument", coords, err)
		}
	}
}

func TestScaleModeNormalization(t *testing.T) {
	a := constantMover(t, 0.7, -0.3)
	b := constantMover(t, 0.7, -0.3)

	if err := a.SetScale(ScaleNone, 5); err != nil { // value ignored for none
		t.Fatalf("SetScale none: %v", err)
	}
	if err := b.SetScale(ScaleConstant, 1); err != nil {
		t.Fatalf("SetScale constant: %v", err)
	}

	// Both record constant with an explicit value
	modeA, valA := a.Scale()
	if modeA != ScaleConstant || valA != 1 {
		t.Errorf("none normalizes to (constant, 1), got (%d, %v)", modeA, valA)
	}

	batch := singleBatch(elements.WorldPoint{Lat: 30})
	da := make([]elements.Delta, 1)
	db := make([]elements.Delta, 1)
	if err := a.ComputeDisplacement(t0, time.Hour, batch, da, elements.KindForecast); err != nil {
		t.Fatalf("ComputeDisplacement: %v", err)
	}
	if err := b.ComputeDisplacement(t0, time.Hour, batch, db, elements.KindForecast); err != nil {
		t.Fatalf("ComputeDisplacement: %v", err)
	}
	if da[0] != db[0] {
		t.Errorf("none and constant/1 diverge: %+v vs %+v", da[0], db[0])
	}
}

func TestScaleApplied(t *testing.T) {
	m := constantMover(t, 1, 0)
	if err := m.SetScale(ScaleConstant, 2.5); err != nil {
		t.Fatalf("SetScale: %v", err)
	}

	batch := singleBatch(elements.WorldPoint{Lat: 0})
	deltas := make([]elements.Delta, 1)
	if err := m.ComputeDisplacement(t0, time.Hour, batch, deltas, elements.KindForecast); err != nil {
		t.Fatalf("ComputeDisplacement: %v", err)
	}

	want := 2.5 * 3600 / elements.MetersPerDegreeLat
	if math.Abs(deltas[0].DLon-want) > 1e-12 {
		t.Errorf("scaled DLon: got %v, want %v", deltas[0].DLon, want)
	}
}

func TestAccessorValidation(t *testing.T) {
	m := NewCurrentMover(1)

	if err := m.SetEddyDiffusion(-1); !errors.Is(err, elements.ErrInvalidArgument) {
		t.Errorf("negative eddy diffusion: got %v", err)
	}
	if err := m.SetEddyV0(math.NaN()); !errors.Is(err, elements.ErrInvalidArgument) {
		t.Errorf("NaN eddy v0: got %v", err)
	}
	if err := m.SetUncertaintyTiming(0, 0); !errors.Is(err, elements.ErrInvalidArgument) {
		t.Errorf("zero duration: got %v", err)
	}
	if err := m.SetUncertaintyTiming(time.Hour, -time.Hour); !errors.Is(err, elements.ErrInvalidArgument) {
		t.Errorf("negative delay: got %v", err)
	}
	if err := m.SetDirectionalScales(0.3, -0.3, 0.1, -0.1); !errors.Is(err, elements.ErrInvalidArgument) {
		t.Errorf("inverted along bounds: got %v", err)
	}
	if err := m.SetScale(ScaleConstant, math.Inf(1)); !errors.Is(err, elements.ErrInvalidArgument) {
		t.Errorf("infinite scale: got %v", err)
	}

	if err := m.SetEddyDiffusion(0.05); err != nil {
		t.Errorf("valid eddy diffusion rejected: %v", err)
	}
	if got := m.EddyDiffusion(); got != 0.05 {
		t.Errorf("EddyDiffusion: got %v, want 0.05", got)
	}
}

func TestDisabledUncertaintyBitReproducible(t *testing.T) {
	m := constantMover(t, 0.8, 0.6)
	batch := singleBatch(elements.WorldPoint{Lat: 42})

	first := make([]elements.Delta, 1)
	if err := m.ComputeDisplacement(t0, time.Hour, batch, first, elements.KindUncertainty); err != nil {
		t.Fatalf("ComputeDisplacement: %v", err)
	}
	for i := 0; i < 5; i++ {
		again := make([]elements.Delta, 1)
		if err := m.ComputeDisplacement(t0, time.Hour, batch, again, elements.KindUncertainty); err != nil {
			t.Fatalf("ComputeDisplacement: %v", err)
		}
		if again[0] != first[0] {
			t.Fatalf("call %d differs with uncertainty disabled: %+v vs %+v", i, again[0], first[0])
		}
	}

	// Disabled uncertainty also matches the forecast result exactly
	forecast := make([]elements.Delta, 1)
	if err := m.ComputeDisplacement(t0, time.Hour, batch, forecast, elements.KindForecast); err != nil {
		t.Fatalf("ComputeDisplacement: %v", err)
	}
	if forecast[0] != first[0] {
		t.Errorf("disabled uncertainty differs from forecast: %+v vs %+v", first[0], forecast[0])
	}
}

func TestUncertaintySeedPersistsUntilExpiry(t *testing.T) {
	m := constantMover(t, 0.8, 0.0)
	m.Uncertainty().SetStart(t0)
	if err := m.SetEddyDiffusion(0.05); err != nil {
		t.Fatalf("SetEddyDiffusion: %v", err)
	}
	if err := m.SetUncertaintyTiming(3*time.Hour, 0); err != nil {
		t.Fatalf("SetUncertaintyTiming: %v", err)
	}

	batch := singleBatch(elements.WorldPoint{Lat: 0})

	a := make([]elements.Delta, 1)
	b := make([]elements.Delta, 1)
	if err := m.ComputeDisplacement(t0, time.Hour, batch, a, elements.KindUncertainty); err != nil {
		t.Fatalf("ComputeDisplacement: %v", err)
	}
	// Same time again, duration not elapsed: identical perturbation
	if err := m.ComputeDisplacement(t0, time.Hour, batch, b, elements.KindUncertainty); err != nil {
		t.Fatalf("ComputeDisplacement: %v", err)
	}
	if a[0] != b[0] {
		t.Errorf("perturbation changed before expiry: %+v vs %+v", a[0], b[0])
	}

	// Past the duration: reseed produces a different perturbation
	c := make([]elements.Delta, 1)
	if err := m.ComputeDisplacement(t0.Add(4*time.Hour), time.Hour, batch, c, elements.KindUncertainty); err != nil {
		t.Fatalf("ComputeDisplacement: %v", err)
	}
	if a[0] == c[0] {
		t.Errorf("perturbation identical after expiry: %+v", c[0])
	}

	// Forecast elements are never perturbed
	f := make([]elements.Delta, 1)
	if err := m.ComputeDisplacement(t0, time.Hour, batch, f, elements.KindForecast); err != nil {
		t.Fatalf("ComputeDisplacement: %v", err)
	}
	want := 0.8 * 3600 / elements.MetersPerDegreeLat
	if math.Abs(f[0].DLon-want) > 1e-12 {
		t.Errorf("forecast DLon: got %v, want unperturbed %v", f[0].DLon, want)
	}
}
