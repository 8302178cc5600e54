package telemetry

// Collector accumulates events within step windows and produces
// WindowStats.
type Collector struct {
	windowSteps int
	stepSeconds float64

	windowStartStep int

	// Event counters for the current window
	newlyReleased int
	wentOffMap    int

	// Step displacement magnitudes recorded during the window, meters
	displacements []float64
}

// NewCollector creates a stats collector.
// windowSteps: how many model steps each stats window spans
// stepSeconds: seconds per step (for step-to-time conversion)
func NewCollector(windowSteps int, stepSeconds float64) *Collector {
	if windowSteps < 1 {
		windowSteps = 1
	}
	return &Collector{
		windowSteps:   windowSteps,
		stepSeconds:   stepSeconds,
		displacements: make([]float64, 0, 1024),
	}
}

// RecordRelease records n elements released this step.
func (c *Collector) RecordRelease(n int) {
	c.newlyReleased += n
}

// RecordOffMap records one element leaving the map.
func (c *Collector) RecordOffMap() {
	c.wentOffMap++
}

// RecordDisplacement records one element's step displacement in meters.
func (c *Collector) RecordDisplacement(meters float64) {
	c.displacements = append(c.displacements, meters)
}

// WindowDone reports whether the window ending at step is complete.
func (c *Collector) WindowDone(step int) bool {
	return step-c.windowStartStep >= c.windowSteps
}

// Snapshot closes the current window and returns its stats. The caller
// supplies the element counts at window end.
func (c *Collector) Snapshot(step, released, inWater, offMaps int) WindowStats {
	mean, p10, p50, p90 := displacementSummary(c.displacements)

	stats := WindowStats{
		WindowStartStep: c.windowStartStep,
		WindowEndStep:   step,
		SimTimeSec:      float64(step) * c.stepSeconds,
		Released:        released,
		InWater:         inWater,
		OffMaps:         offMaps,
		NewlyReleased:   c.newlyReleased,
		WentOffMap:      c.wentOffMap,
		DispMeanM:       mean,
		DispP10M:        p10,
		DispP50M:        p50,
		DispP90M:        p90,
	}

	c.windowStartStep = step
	c.newlyReleased = 0
	c.wentOffMap = 0
	c.displacements = c.displacements[:0]

	return stats
}
