package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/drift/config"
)

// TrajectoryRecord is one element position row in trajectory.csv.
type TrajectoryRecord struct {
	Step    int     `csv:"step"`
	SimTime string  `csv:"time"`
	ID      uint32  `csv:"id"`
	Kind    string  `csv:"kind"`
	Lon     float64 `csv:"lon"`
	Lat     float64 `csv:"lat"`
	Depth   float64 `csv:"depth"`
	Status  string  `csv:"status"`
}

// OutputManager handles structured run output with CSV logging.
type OutputManager struct {
	dir            string
	trajectoryFile *os.File
	statsFile      *os.File

	// Track if headers have been written
	trajectoryHeaderWritten bool
	statsHeaderWritten      bool
}

// NewOutputManager creates a new output manager and initializes the
// output directory. Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	trajectoryPath := filepath.Join(dir, "trajectory.csv")
	f, err := os.Create(trajectoryPath)
	if err != nil {
		return nil, fmt.Errorf("creating trajectory.csv: %w", err)
	}
	om.trajectoryFile = f

	statsPath := filepath.Join(dir, "stats.csv")
	f, err = os.Create(statsPath)
	if err != nil {
		om.trajectoryFile.Close()
		return nil, fmt.Errorf("creating stats.csv: %w", err)
	}
	om.statsFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	configPath := filepath.Join(om.dir, "config.yaml")
	return cfg.WriteYAML(configPath)
}

// WriteTrajectory appends element position records to trajectory.csv.
func (om *OutputManager) WriteTrajectory(records []TrajectoryRecord) error {
	if om == nil || len(records) == 0 {
		return nil
	}

	if !om.trajectoryHeaderWritten {
		if err := gocsv.Marshal(records, om.trajectoryFile); err != nil {
			return fmt.Errorf("writing trajectory: %w", err)
		}
		om.trajectoryHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.trajectoryFile); err != nil {
			return fmt.Errorf("writing trajectory: %w", err)
		}
	}

	return nil
}

// WriteStats appends a window stats record to stats.csv.
func (om *OutputManager) WriteStats(stats WindowStats) error {
	if om == nil {
		return nil
	}

	records := []WindowStats{stats}

	if !om.statsHeaderWritten {
		if err := gocsv.Marshal(records, om.statsFile); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
		om.statsHeaderWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.statsFile); err != nil {
			return fmt.Errorf("writing stats: %w", err)
		}
	}

	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error

	if om.trajectoryFile != nil {
		if err := om.trajectoryFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	if om.statsFile != nil {
		if err := om.statsFile.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
