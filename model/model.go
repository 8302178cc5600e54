// Package model runs the trajectory simulation: it owns the element
// world, releases the spill, and steps every registered mover over the
// element sets for each model step.
package model

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/drift/config"
	"github.com/pthm-cable/drift/elements"
	"github.com/pthm-cable/drift/movers"
	"github.com/pthm-cable/drift/telemetry"
)

// Options configures a model run beyond the config file.
type Options struct {
	Seed      int64
	OutputDir string
	LogStats  bool
}

// Model is one simulation run.
type Model struct {
	cfg  *config.Config
	opts Options

	world  *ecs.World
	mapper *ecs.Map2[elements.WorldPoint, elements.LEState]
	filter *ecs.Filter2[elements.WorldPoint, elements.LEState]

	movers []movers.Mover
	rng    *rand.Rand

	collector *telemetry.Collector
	output    *telemetry.OutputManager

	step   int
	now    time.Time
	nextID uint32

	// Cumulative counts
	released int
	offMaps  int

	// Per-kind scratch buffers reused across steps
	scratch [2]*batchScratch
}

// batchScratch holds the gathered parallel-array view of one element
// kind plus the per-mover and summed deltas for the current step.
type batchScratch struct {
	entities  []ecs.Entity
	positions []elements.WorldPoint
	status    []elements.Status
	windage   []float64
	deltas    []elements.Delta
	sums      []elements.Delta
	intents   []moveIntent
}

func (s *batchScratch) reset() {
	s.entities = s.entities[:0]
	s.positions = s.positions[:0]
	s.status = s.status[:0]
	s.windage = s.windage[:0]
}

func (s *batchScratch) batch() elements.Batch {
	return elements.Batch{
		Positions: s.positions,
		Status:    s.status,
		Windage:   s.windage,
	}
}

// New creates a model from the configuration, builds its movers, and
// spawns the spill elements (unreleased until their release time).
func New(cfg *config.Config, opts Options) (*Model, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	world := ecs.NewWorld()
	m := &Model{
		cfg:    cfg,
		opts:   opts,
		world:  world,
		mapper: ecs.NewMap2[elements.WorldPoint, elements.LEState](world),
		filter: ecs.NewFilter2[elements.WorldPoint, elements.LEState](world),
		rng:    rand.New(rand.NewSource(seed)),
		now:    cfg.Derived.Start,
		nextID: 1,
	}
	for i := range m.scratch {
		m.scratch[i] = &batchScratch{}
	}

	for i := range cfg.Movers {
		mv, err := buildMover(&cfg.Movers[i], cfg.Derived.Start, uint64(seed)+uint64(i))
		if err != nil {
			return nil, fmt.Errorf("building mover %q: %w", cfg.Movers[i].Name, err)
		}
		m.movers = append(m.movers, mv)
	}
	if len(m.movers) == 0 {
		return nil, fmt.Errorf("no movers configured")
	}

	m.collector = telemetry.NewCollector(cfg.Telemetry.StatsWindowSteps, cfg.Model.StepSeconds)

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, err
	}
	m.output = output
	if err := m.output.WriteConfig(cfg); err != nil {
		return nil, err
	}

	m.spawnSpill()
	return m, nil
}

// Now returns the current model time.
func (m *Model) Now() time.Time { return m.now }

// StepCount returns the number of completed steps.
func (m *Model) StepCount() int { return m.step }

// Done reports whether the configured duration has been covered.
func (m *Model) Done() bool { return m.step >= m.cfg.Derived.NumSteps }

// Movers returns the registered movers.
func (m *Model) Movers() []movers.Mover { return m.movers }

// Step advances the model by one step: release due elements, compute
// displacements for both element sets through every mover, apply them,
// and emit telemetry. The step fails atomically: a mover error leaves
// all positions unchanged.
func (m *Model) Step() error {
	if m.Done() {
		return nil
	}

	m.releaseDue()
	m.gather()

	stepLen := m.cfg.Derived.Step
	for kindIdx, kind := range []elements.Kind{elements.KindForecast, elements.KindUncertainty} {
		s := m.scratch[kindIdx]
		n := len(s.positions)
		if n == 0 {
			continue
		}

		s.sums = resize(s.sums, n)
		for i := range s.sums {
			s.sums[i] = elements.Delta{}
		}
		s.deltas = resize(s.deltas, n)

		for _, mv := range m.movers {
			if err := mv.ComputeDisplacement(m.now, stepLen, s.batch(), s.deltas, kind); err != nil {
				return fmt.Errorf("step %d (%s set): %w", m.step, kind, err)
			}
			for i := range s.sums {
				s.sums[i].DLon += s.deltas[i].DLon
				s.sums[i].DLat += s.deltas[i].DLat
				s.sums[i].DZ += s.deltas[i].DZ
			}
		}

		m.computeIntents(s)
		m.applyIntents(s, kind)
	}

	m.step++
	m.now = m.now.Add(stepLen)
	m.emitTelemetry()
	return nil
}

// Run steps the model to completion, or for maxSteps steps if positive.
func (m *Model) Run(maxSteps int) error {
	for !m.Done() {
		if maxSteps > 0 && m.step >= maxSteps {
			break
		}
		if err := m.Step(); err != nil {
			return err
		}
	}
	m.logRunSummary()
	return nil
}

// Close releases output resources.
func (m *Model) Close() error {
	return m.output.Close()
}

// releaseDue switches elements whose release time has arrived into the
// water.
func (m *Model) releaseDue() {
	released := 0
	query := m.filter.Query()
	for query.Next() {
		_, st := query.Get()
		if st.Status == elements.StatusNotReleased && !m.now.Before(st.ReleaseTime) {
			st.Status = elements.StatusInWater
			released++
		}
	}
	if released > 0 {
		m.released += released
		m.collector.RecordRelease(released)
		Logf("step %d: released %d elements", m.step, released)
	}
}

// gather partitions the element world into per-kind parallel arrays for
// the mover contract.
func (m *Model) gather() {
	for _, s := range m.scratch {
		s.reset()
	}
	query := m.filter.Query()
	for query.Next() {
		pos, st := query.Get()
		s := m.scratch[kindIndex(st.Kind)]
		s.entities = append(s.entities, query.Entity())
		s.positions = append(s.positions, *pos)
		s.status = append(s.status, st.Status)
		s.windage = append(s.windage, st.Windage)
	}
}

// applyIntents writes computed positions and statuses back into the
// element world and records telemetry events.
func (m *Model) applyIntents(s *batchScratch, kind elements.Kind) {
	for i, entity := range s.entities {
		intent := s.intents[i]
		if !intent.Moved {
			continue
		}
		pos, st := m.mapper.Get(entity)
		pos.Lon = intent.Lon
		pos.Lat = intent.Lat
		pos.Z = intent.Z
		if intent.OffMap && st.Status == elements.StatusInWater {
			st.Status = elements.StatusOffMaps
			m.offMaps++
			m.collector.RecordOffMap()
		}
		if kind == elements.KindForecast {
			m.collector.RecordDisplacement(intent.Meters)
		}
	}
}

// emitTelemetry writes trajectory rows and window stats on their
// configured cadences.
func (m *Model) emitTelemetry() {
	if m.step%m.cfg.Telemetry.OutputIntervalSteps == 0 {
		if err := m.output.WriteTrajectory(m.trajectoryRecords()); err != nil {
			Logf("trajectory output failed: %v", err)
		}
	}

	if m.collector.WindowDone(m.step) {
		inWater, offMaps := m.countStatus()
		stats := m.collector.Snapshot(m.step, m.released, inWater, offMaps)
		if m.opts.LogStats {
			stats.Log()
		}
		if err := m.output.WriteStats(stats); err != nil {
			Logf("stats output failed: %v", err)
		}
	}
}

// trajectoryRecords snapshots every released element.
func (m *Model) trajectoryRecords() []telemetry.TrajectoryRecord {
	var records []telemetry.TrajectoryRecord
	simTime := m.now.Format(time.RFC3339)
	query := m.filter.Query()
	for query.Next() {
		pos, st := query.Get()
		if st.Status == elements.StatusNotReleased {
			continue
		}
		records = append(records, telemetry.TrajectoryRecord{
			Step:    m.step,
			SimTime: simTime,
			ID:      st.ID,
			Kind:    st.Kind.String(),
			Lon:     pos.Lon,
			Lat:     pos.Lat,
			Depth:   pos.Z,
			Status:  st.Status.String(),
		})
	}
	return records
}

// countStatus tallies in-water and off-map elements.
func (m *Model) countStatus() (inWater, offMaps int) {
	query := m.filter.Query()
	for query.Next() {
		_, st := query.Get()
		switch st.Status {
		case elements.StatusInWater:
			inWater++
		case elements.StatusOffMaps:
			offMaps++
		}
	}
	return inWater, offMaps
}

func kindIndex(k elements.Kind) int {
	if k == elements.KindUncertainty {
		return 1
	}
	return 0
}

func resize(d []elements.Delta, n int) []elements.Delta {
	if cap(d) < n {
		return make([]elements.Delta, n)
	}
	return d[:n]
}
