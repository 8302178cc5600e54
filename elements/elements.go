// Package elements defines the Lagrangian element data model shared by the
// trajectory model and its movers: world positions, status codes, kind tags,
// and the borrowed batch views movers operate on.
package elements

import "math"

// Status is the lifecycle state of a single element.
type Status uint8

// Element status codes. The numeric values are stable and appear in
// telemetry output; do not renumber.
const (
	StatusNotReleased Status = 0
	StatusInWater     Status = 2
	StatusOnLand      Status = 3
	StatusOffMaps     Status = 7
	StatusEvaporated  Status = 10
)

// String returns a short label for the status.
func (s Status) String() string {
	switch s {
	case StatusNotReleased:
		return "not_released"
	case StatusInWater:
		return "in_water"
	case StatusOnLand:
		return "on_land"
	case StatusOffMaps:
		return "off_maps"
	case StatusEvaporated:
		return "evaporated"
	default:
		return "unknown"
	}
}

// Kind distinguishes the forecast element set from the uncertainty set.
// Only uncertainty elements receive stochastic perturbation.
type Kind uint8

const (
	KindForecast Kind = iota + 1
	KindUncertainty
)

// Valid reports whether k is one of the two recognized kinds.
func (k Kind) Valid() bool {
	return k == KindForecast || k == KindUncertainty
}

// String returns the kind label.
func (k Kind) String() string {
	switch k {
	case KindForecast:
		return "forecast"
	case KindUncertainty:
		return "uncertainty"
	default:
		return "unknown"
	}
}

// WorldPoint is a geographic position. Lon and Lat are in degrees,
// Z is depth in meters (positive down).
type WorldPoint struct {
	Lon float64
	Lat float64
	Z   float64
}

// Delta is the displacement of one element over one step, in the same
// units as WorldPoint (degrees, degrees, meters).
type Delta struct {
	DLon float64
	DLat float64
	DZ   float64
}

// Batch is a borrowed view over the caller-owned element arrays for one
// mover call. Movers read positions and statuses; they never resize or
// reorder the slices.
type Batch struct {
	Positions []WorldPoint
	Status    []Status
	Windage   []float64
}

// Len returns the number of elements in the batch.
func (b Batch) Len() int { return len(b.Positions) }

// MetersPerDegreeLat is the conversion used between meter-based
// velocities and degree-based positions (1 degree latitude = 60 nm).
const MetersPerDegreeLat = 111120.0

// minCosLat keeps the longitude conversion finite near the poles.
const minCosLat = 1e-6

// VelocityDelta integrates an east/north velocity in m/s over dt seconds
// into a positional delta at the given latitude.
func VelocityDelta(u, v, lat, dt float64) Delta {
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < minCosLat {
		cosLat = minCosLat
	}
	return Delta{
		DLon: u * dt / (MetersPerDegreeLat * cosLat),
		DLat: v * dt / MetersPerDegreeLat,
	}
}

// DeltaMeters returns the horizontal length of a delta in meters at the
// given latitude.
func DeltaMeters(d Delta, lat float64) float64 {
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < minCosLat {
		cosLat = minCosLat
	}
	dx := d.DLon * MetersPerDegreeLat * cosLat
	dy := d.DLat * MetersPerDegreeLat
	return math.Hypot(dx, dy)
}
