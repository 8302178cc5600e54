package model

import (
	"fmt"
	"time"

	"github.com/pthm-cable/drift/config"
	"github.com/pthm-cable/drift/elements"
	"github.com/pthm-cable/drift/environment"
	"github.com/pthm-cable/drift/movers"
)

// buildMover constructs a current mover from its configuration block:
// velocity source (CSV file or inline), scale, reference point, and
// uncertainty parameters.
func buildMover(mc *config.MoverConfig, start time.Time, seed uint64) (*movers.CurrentMover, error) {
	mv := movers.NewCurrentMover(seed)
	mv.Uncertainty().SetStart(start)

	if err := attachSource(mv, mc, start); err != nil {
		return nil, err
	}

	mode := movers.ScaleConstant
	if mc.ScaleMode == "none" {
		mode = movers.ScaleNone
	}
	if err := mv.SetScale(mode, mc.ScaleValue); err != nil {
		return nil, err
	}

	if len(mc.ReferencePoint) == 3 {
		if err := mv.SetReferencePoint(mc.ReferencePoint); err != nil {
			return nil, err
		}
	}

	if err := mv.SetEddyDiffusion(mc.EddyDiffusion); err != nil {
		return nil, err
	}
	if err := mv.SetEddyV0(mc.EddyV0); err != nil {
		return nil, err
	}
	duration := time.Duration(mc.UncertaintyDurationHours * float64(time.Hour))
	delay := time.Duration(mc.UncertaintyDelayHours * float64(time.Hour))
	if err := mv.SetUncertaintyTiming(duration, delay); err != nil {
		return nil, err
	}
	if err := mv.SetDirectionalScales(mc.DownCurrent, mc.UpCurrent, mc.RightCurrent, mc.LeftCurrent); err != nil {
		return nil, err
	}

	return mv, nil
}

// attachSource configures the mover's velocity source from a CSV file
// or the inline config tables.
func attachSource(mv *movers.CurrentMover, mc *config.MoverConfig, start time.Time) error {
	switch mc.Type {
	case "timeseries":
		if mc.File != "" {
			series, err := environment.LoadTimeSeriesCSV(mc.File)
			if err != nil {
				return err
			}
			return mv.SetTimeSource(series)
		}
		samples := make([]environment.Sample, len(mc.Samples))
		for i, sc := range mc.Samples {
			ts, err := time.Parse(time.RFC3339, sc.Time)
			if err != nil {
				return fmt.Errorf("%w: samples[%d]: bad timestamp %q: %v",
					elements.ErrData, i, sc.Time, err)
			}
			samples[i] = environment.Sample{Time: ts, V: environment.Velocity{U: sc.U, V: sc.V}}
		}
		return mv.ConfigureTimeSeries(samples)

	case "tide":
		station := environment.Station{
			Name:        mc.Station.Name,
			Lon:         mc.Station.Lon,
			Lat:         mc.Station.Lat,
			FloodDirDeg: mc.Station.FloodDirDeg,
		}
		if mc.File != "" {
			tide, err := environment.LoadTideCSV(mc.File, station, start)
			if err != nil {
				return err
			}
			return mv.SetTimeSource(tide)
		}
		constituents := make([]environment.Constituent, len(mc.Constituents))
		for i, cc := range mc.Constituents {
			constituents[i] = environment.Constituent{
				Name:          cc.Name,
				Amplitude:     cc.Amplitude,
				PhaseDeg:      cc.Phase,
				SpeedDegPerHr: cc.Speed,
			}
		}
		return mv.ConfigureHarmonic(station, constituents, start)

	default:
		return fmt.Errorf("%w: unknown mover type %q", elements.ErrInvalidArgument, mc.Type)
	}
}
