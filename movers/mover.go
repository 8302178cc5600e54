// Package movers implements the displacement movers of the trajectory
// model. A mover computes, for one element batch and one step, the
// incremental displacement each element receives from a forcing field.
package movers

import (
	"time"

	"github.com/pthm-cable/drift/elements"
)

// Mover is the capability every mover kind implements. The simulation
// loop treats movers uniformly through it.
//
// ComputeDisplacement fills deltas with one displacement per element of
// the batch for a step of stepLen starting at modelTime. The deltas
// slice must be the same length as the batch and is fully overwritten on
// success; on error nothing is written. A single mover instance is not
// safe for concurrent calls.
type Mover interface {
	ComputeDisplacement(modelTime time.Time, stepLen time.Duration,
		batch elements.Batch, deltas []elements.Delta, kind elements.Kind) error
}
