package environment

import (
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/drift/elements"
)

// seriesRecord is one row of a time-series CSV file.
type seriesRecord struct {
	Time string  `csv:"time"`
	U    float64 `csv:"u"`
	V    float64 `csv:"v"`
}

// constituentRecord is one row of a harmonic constituent CSV file.
type constituentRecord struct {
	Name      string  `csv:"name"`
	Amplitude float64 `csv:"amplitude"`
	Phase     float64 `csv:"phase"`
	Speed     float64 `csv:"speed"`
}

// LoadTimeSeriesCSV reads a (time, u, v) CSV file into a TimeSeries.
// Timestamps are RFC 3339. Any parse or validation failure surfaces as a
// single data error naming the path.
func LoadTimeSeriesCSV(path string) (*TimeSeries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", elements.ErrData, path, err)
	}
	defer f.Close()

	var records []seriesRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", elements.ErrData, path, err)
	}

	samples := make([]Sample, len(records))
	for i, rec := range records {
		ts, err := time.Parse(time.RFC3339, rec.Time)
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: bad timestamp %q: %v",
				elements.ErrData, path, i+1, rec.Time, err)
		}
		samples[i] = Sample{Time: ts, V: Velocity{U: rec.U, V: rec.V}}
	}

	series, err := NewTimeSeries(samples)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return series, nil
}

// LoadTideCSV reads a constituent table CSV file into a Tide anchored at
// the given station and epoch.
func LoadTideCSV(path string, station Station, epoch time.Time) (*Tide, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", elements.ErrData, path, err)
	}
	defer f.Close()

	var records []constituentRecord
	if err := gocsv.UnmarshalFile(f, &records); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", elements.ErrData, path, err)
	}

	constituents := make([]Constituent, len(records))
	for i, rec := range records {
		constituents[i] = Constituent{
			Name:          rec.Name,
			Amplitude:     rec.Amplitude,
			PhaseDeg:      rec.Phase,
			SpeedDegPerHr: rec.Speed,
		}
	}

	tide, err := NewTide(station, constituents, epoch)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tide, nil
}
