package elements

import "time"

// LEState is the per-element bookkeeping component stored in the model's
// ECS world alongside the WorldPoint position component.
type LEState struct {
	ID          uint32
	Kind        Kind
	Status      Status
	Windage     float64
	ReleaseTime time.Time
}
