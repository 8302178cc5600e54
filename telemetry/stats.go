// Package telemetry collects run statistics and writes CSV output for
// the trajectory model.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for one stats window.
type WindowStats struct {
	WindowStartStep int     `csv:"-"`
	WindowEndStep   int     `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Element counts at window end
	Released int `csv:"released"`
	InWater  int `csv:"in_water"`
	OffMaps  int `csv:"off_maps"`

	// Events during the window
	NewlyReleased int `csv:"newly_released"`
	WentOffMap    int `csv:"went_off_map"`

	// Per-element step displacement, meters
	DispMeanM float64 `csv:"disp_mean_m"`
	DispP10M  float64 `csv:"disp_p10_m"`
	DispP50M  float64 `csv:"disp_p50_m"`
	DispP90M  float64 `csv:"disp_p90_m"`
}

// Log emits the window stats via slog.
func (s WindowStats) Log() {
	slog.Info("window stats",
		"window_end", s.WindowEndStep,
		"sim_time", s.SimTimeSec,
		"released", s.Released,
		"in_water", s.InWater,
		"off_maps", s.OffMaps,
		"went_off_map", s.WentOffMap,
		"disp_mean_m", s.DispMeanM,
		"disp_p50_m", s.DispP50M,
	)
}

// displacementSummary computes mean and percentiles of the recorded
// step displacements. The input is sorted in place.
func displacementSummary(disp []float64) (mean, p10, p50, p90 float64) {
	if len(disp) == 0 {
		return 0, 0, 0, 0
	}
	sort.Float64s(disp)
	mean = stat.Mean(disp, nil)
	p10 = stat.Quantile(0.10, stat.Empirical, disp, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, disp, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, disp, nil)
	return mean, p10, p50, p90
}
