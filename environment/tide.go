package environment

import (
	"fmt"
	"math"
	"time"

	"github.com/pthm-cable/drift/elements"
)

// Station identifies the tidal current station a harmonic prediction is
// anchored to. FloodDirDeg is the direction of the flood current in
// degrees clockwise from true north; predicted speeds are projected onto
// this axis (negative values are ebb).
type Station struct {
	Name        string
	Lon         float64
	Lat         float64
	FloodDirDeg float64
}

// Constituent is one harmonic term of a tidal current prediction.
// Amplitude is in m/s along the flood axis, PhaseDeg in degrees, and
// SpeedDegPerHr the angular speed. A zero speed is resolved against the
// standard constituent table by name.
type Constituent struct {
	Name          string
	Amplitude     float64
	PhaseDeg      float64
	SpeedDegPerHr float64
}

// StandardSpeeds holds angular speeds (degrees/hour) for the common
// tidal constituents.
var StandardSpeeds = map[string]float64{
	"M2": 28.9841042,
	"S2": 30.0000000,
	"N2": 28.4397295,
	"K2": 30.0821373,

	"K1": 15.0410686,
	"O1": 13.9430356,
	"P1": 14.9589314,
	"Q1": 13.3986609,

	"M4":  57.9682084,
	"M6":  86.9523127,
	"MK3": 44.0251729,
	"S4":  60.0000000,
	"MN4": 57.4238337,
	"MS4": 58.9841042,

	"Mf":  1.0980331,
	"Mm":  0.5443747,
	"Ssa": 0.0821373,
	"Sa":  0.0410686,
}

// Tide predicts current velocity analytically from a constituent table.
type Tide struct {
	station      Station
	constituents []Constituent
	epoch        time.Time
}

// NewTide validates the station record and constituent table. The table
// must be non-empty; every constituent needs a finite non-negative
// amplitude and a resolvable angular speed.
func NewTide(station Station, constituents []Constituent, epoch time.Time) (*Tide, error) {
	if station.Name == "" {
		return nil, fmt.Errorf("%w: tide station has no name", elements.ErrData)
	}
	if len(constituents) == 0 {
		return nil, fmt.Errorf("%w: tide station %q has no constituents", elements.ErrData, station.Name)
	}

	resolved := make([]Constituent, len(constituents))
	for i, c := range constituents {
		if !isFinite(c.Amplitude) || c.Amplitude < 0 {
			return nil, fmt.Errorf("%w: constituent %q has bad amplitude %v",
				elements.ErrData, c.Name, c.Amplitude)
		}
		if !isFinite(c.PhaseDeg) {
			return nil, fmt.Errorf("%w: constituent %q has bad phase %v",
				elements.ErrData, c.Name, c.PhaseDeg)
		}
		if c.SpeedDegPerHr == 0 {
			speed, ok := StandardSpeeds[c.Name]
			if !ok {
				return nil, fmt.Errorf("%w: constituent %q has no speed and is not a standard constituent",
					elements.ErrData, c.Name)
			}
			c.SpeedDegPerHr = speed
		}
		if !isFinite(c.SpeedDegPerHr) || c.SpeedDegPerHr <= 0 {
			return nil, fmt.Errorf("%w: constituent %q has bad speed %v",
				elements.ErrData, c.Name, c.SpeedDegPerHr)
		}
		resolved[i] = c
	}

	return &Tide{station: station, constituents: resolved, epoch: epoch}, nil
}

// Station returns the station record.
func (td *Tide) Station() Station { return td.station }

// Sample evaluates the harmonic sum at t and projects the signed speed
// onto the station's flood axis.
func (td *Tide) Sample(t time.Time) Velocity {
	hours := t.Sub(td.epoch).Hours()

	var speed float64
	for _, c := range td.constituents {
		arg := (c.SpeedDegPerHr*hours - c.PhaseDeg) * math.Pi / 180
		speed += c.Amplitude * math.Cos(arg)
	}

	// Compass convention: 0 = north, 90 = east.
	theta := td.station.FloodDirDeg * math.Pi / 180
	return Velocity{
		U: speed * math.Sin(theta),
		V: speed * math.Cos(theta),
	}
}
