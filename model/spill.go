package model

import (
	"github.com/pthm-cable/drift/elements"
)

// spawnSpill creates the configured element sets at the release point.
// Elements start unreleased; releaseDue puts them in the water once the
// model clock reaches their release time. When the uncertainty set is
// enabled it mirrors the forecast set element for element.
func (m *Model) spawnSpill() {
	kinds := []elements.Kind{elements.KindForecast}
	if m.cfg.Spill.Uncertain {
		kinds = append(kinds, elements.KindUncertainty)
	}

	for _, kind := range kinds {
		for i := 0; i < m.cfg.Spill.NumElements; i++ {
			m.spawnElement(kind)
		}
	}
}

// spawnElement creates a single element with a windage drawn from the
// configured range.
func (m *Model) spawnElement(kind elements.Kind) {
	spill := &m.cfg.Spill

	windage := spill.WindageMin
	if spill.WindageMax > spill.WindageMin {
		windage += m.rng.Float64() * (spill.WindageMax - spill.WindageMin)
	}

	pos := elements.WorldPoint{
		Lon: spill.ReleaseLon,
		Lat: spill.ReleaseLat,
		Z:   spill.ReleaseDepth,
	}
	st := elements.LEState{
		ID:          m.nextID,
		Kind:        kind,
		Status:      elements.StatusNotReleased,
		Windage:     windage,
		ReleaseTime: m.cfg.Derived.Start,
	}
	m.nextID++

	m.mapper.NewEntity(&pos, &st)
}
