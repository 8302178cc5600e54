// Package config provides configuration loading and access for the
// trajectory model.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all model configuration parameters.
type Config struct {
	Model     ModelConfig     `yaml:"model"`
	Map       MapConfig       `yaml:"map"`
	Spill     SpillConfig     `yaml:"spill"`
	Movers    []MoverConfig   `yaml:"movers"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ModelConfig holds run timing parameters.
type ModelConfig struct {
	StartTime     string  `yaml:"start_time"`     // RFC 3339
	DurationHours float64 `yaml:"duration_hours"` // total run length
	StepSeconds   float64 `yaml:"step_seconds"`   // step length
}

// MapConfig bounds the map; elements leaving it are flagged off-map.
type MapConfig struct {
	MinLon float64 `yaml:"min_lon"`
	MinLat float64 `yaml:"min_lat"`
	MaxLon float64 `yaml:"max_lon"`
	MaxLat float64 `yaml:"max_lat"`
}

// SpillConfig describes the element release.
type SpillConfig struct {
	NumElements  int     `yaml:"num_elements"`
	ReleaseLon   float64 `yaml:"release_lon"`
	ReleaseLat   float64 `yaml:"release_lat"`
	ReleaseDepth float64 `yaml:"release_depth"`
	WindageMin   float64 `yaml:"windage_min"` // fraction, e.g. 0.01
	WindageMax   float64 `yaml:"windage_max"`
	Uncertain    bool    `yaml:"uncertain"` // also release an uncertainty set
}

// MoverConfig describes one current mover and its velocity source.
// Exactly one of File, Samples, or Constituents supplies the source,
// selected by Type ("timeseries" or "tide").
type MoverConfig struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`

	File         string              `yaml:"file"`         // CSV path (optional)
	Samples      []SampleConfig      `yaml:"samples"`      // inline time series
	Station      StationConfig       `yaml:"station"`      // tide station
	Constituents []ConstituentConfig `yaml:"constituents"` // inline tide table

	ScaleMode      string    `yaml:"scale_mode"`      // none | constant
	ScaleValue     float64   `yaml:"scale_value"`     // default 1
	ReferencePoint []float64 `yaml:"reference_point"` // [lon, lat, depth] or empty

	EddyDiffusion            float64 `yaml:"eddy_diffusion"`
	EddyV0                   float64 `yaml:"eddy_v0"`
	UncertaintyDurationHours float64 `yaml:"uncertainty_duration_hours"`
	UncertaintyDelayHours    float64 `yaml:"uncertainty_delay_hours"`
	DownCurrent              float64 `yaml:"down_current"`
	UpCurrent                float64 `yaml:"up_current"`
	RightCurrent             float64 `yaml:"right_current"`
	LeftCurrent              float64 `yaml:"left_current"`
}

// SampleConfig is one inline time-series entry.
type SampleConfig struct {
	Time string  `yaml:"time"` // RFC 3339
	U    float64 `yaml:"u"`
	V    float64 `yaml:"v"`
}

// StationConfig is a tidal current station record.
type StationConfig struct {
	Name        string  `yaml:"name"`
	Lon         float64 `yaml:"lon"`
	Lat         float64 `yaml:"lat"`
	FloodDirDeg float64 `yaml:"flood_dir_deg"`
}

// ConstituentConfig is one inline harmonic constituent. A zero speed is
// resolved against the standard constituent table by name.
type ConstituentConfig struct {
	Name      string  `yaml:"name"`
	Amplitude float64 `yaml:"amplitude"` // m/s
	Phase     float64 `yaml:"phase"`     // degrees
	Speed     float64 `yaml:"speed"`     // degrees/hour
}

// TelemetryConfig holds output settings.
type TelemetryConfig struct {
	OutputIntervalSteps int `yaml:"output_interval_steps"` // trajectory rows every N steps
	StatsWindowSteps    int `yaml:"stats_window_steps"`    // stats window length
}

// DerivedConfig holds values computed after loading.
type DerivedConfig struct {
	Start    time.Time     // parsed Model.StartTime
	Step     time.Duration // Model.StepSeconds
	Duration time.Duration // Model.DurationHours
	NumSteps int           // Duration / Step, rounded up
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults
// if path is empty. Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived validates the configuration and calculates derived
// values.
func (c *Config) computeDerived() error {
	start, err := time.Parse(time.RFC3339, c.Model.StartTime)
	if err != nil {
		return fmt.Errorf("parsing model.start_time %q: %w", c.Model.StartTime, err)
	}
	if c.Model.StepSeconds <= 0 {
		return fmt.Errorf("model.step_seconds must be positive, got %v", c.Model.StepSeconds)
	}
	if c.Model.DurationHours <= 0 {
		return fmt.Errorf("model.duration_hours must be positive, got %v", c.Model.DurationHours)
	}
	if c.Spill.NumElements <= 0 {
		return fmt.Errorf("spill.num_elements must be positive, got %d", c.Spill.NumElements)
	}
	if c.Spill.WindageMax < c.Spill.WindageMin {
		return fmt.Errorf("spill.windage_max %v is below spill.windage_min %v",
			c.Spill.WindageMax, c.Spill.WindageMin)
	}

	c.Derived.Start = start
	c.Derived.Step = time.Duration(c.Model.StepSeconds * float64(time.Second))
	c.Derived.Duration = time.Duration(c.Model.DurationHours * float64(time.Hour))
	c.Derived.NumSteps = int((c.Derived.Duration + c.Derived.Step - 1) / c.Derived.Step)

	for i := range c.Movers {
		if err := c.Movers[i].applyDefaults(); err != nil {
			return fmt.Errorf("movers[%d] (%s): %w", i, c.Movers[i].Name, err)
		}
	}

	if c.Telemetry.OutputIntervalSteps <= 0 {
		c.Telemetry.OutputIntervalSteps = 1
	}
	if c.Telemetry.StatsWindowSteps <= 0 {
		c.Telemetry.StatsWindowSteps = 1
	}
	return nil
}

// applyDefaults fills unset mover fields with the standard defaults and
// validates the enum-like fields.
func (mc *MoverConfig) applyDefaults() error {
	switch mc.Type {
	case "timeseries", "tide":
	default:
		return fmt.Errorf("unknown mover type %q (want timeseries or tide)", mc.Type)
	}
	switch mc.ScaleMode {
	case "":
		mc.ScaleMode = "constant"
	case "none", "constant":
	default:
		return fmt.Errorf("unknown scale_mode %q (want none or constant)", mc.ScaleMode)
	}
	if mc.ScaleValue == 0 {
		mc.ScaleValue = 1
	}
	if mc.EddyV0 == 0 {
		mc.EddyV0 = 0.1
	}
	if mc.UncertaintyDurationHours == 0 {
		mc.UncertaintyDurationHours = 48
	}
	if mc.DownCurrent == 0 && mc.UpCurrent == 0 {
		mc.DownCurrent, mc.UpCurrent = -0.3, 0.3
	}
	if mc.LeftCurrent == 0 && mc.RightCurrent == 0 {
		mc.LeftCurrent, mc.RightCurrent = -0.1, 0.1
	}
	if len(mc.ReferencePoint) != 0 && len(mc.ReferencePoint) != 3 {
		return fmt.Errorf("reference_point needs exactly 3 components, got %d", len(mc.ReferencePoint))
	}
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
