package model

import (
	"runtime"
	"sync"

	"github.com/pthm-cable/drift/elements"
)

// parallelThreshold is the minimum element count to use parallel
// processing. Below this, single-threaded is faster due to goroutine
// overhead.
const parallelThreshold = 256

// moveIntent captures one element's computed outcome, applied to the
// world after the compute phase.
type moveIntent struct {
	Lon, Lat, Z float64
	Meters      float64
	Moved       bool
	OffMap      bool
}

// computeIntents turns the summed deltas into new positions and off-map
// flags, chunked across workers for large batches. It only reads the
// scratch arrays, so chunks are independent.
func (m *Model) computeIntents(s *batchScratch) {
	n := len(s.positions)
	s.intents = resizeIntents(s.intents, n)

	if n < parallelThreshold {
		m.computeIntentRange(s, 0, n)
		return
	}

	workers := runtime.GOMAXPROCS(0)
	chunk := (n + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			m.computeIntentRange(s, start, end)
		}(start, end)
	}
	wg.Wait()
}

// computeIntentRange fills intents for elements [start, end).
func (m *Model) computeIntentRange(s *batchScratch, start, end int) {
	bounds := &m.cfg.Map
	for i := start; i < end; i++ {
		if s.status[i] != elements.StatusInWater {
			s.intents[i] = moveIntent{}
			continue
		}
		pos := s.positions[i]
		delta := s.sums[i]

		lon := pos.Lon + delta.DLon
		lat := pos.Lat + delta.DLat
		z := pos.Z + delta.DZ

		s.intents[i] = moveIntent{
			Lon:    lon,
			Lat:    lat,
			Z:      z,
			Meters: elements.DeltaMeters(delta, pos.Lat),
			Moved:  true,
			OffMap: lon < bounds.MinLon || lon > bounds.MaxLon ||
				lat < bounds.MinLat || lat > bounds.MaxLat,
		}
	}
}

func resizeIntents(d []moveIntent, n int) []moveIntent {
	if cap(d) < n {
		return make([]moveIntent, n)
	}
	return d[:n]
}
