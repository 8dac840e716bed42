package ring

import (
	"sync/atomic"
)

// Statistics counts buffer activity. It is always collected and safe to read
// from other goroutines while the owning buffer is in use.
type Statistics struct {
	pushes        atomic.Int64
	pops          atomic.Int64
	evictions     atomic.Int64
	discards      atomic.Int64
	constructions atomic.Int64
	destructions  atomic.Int64
	reallocations atomic.Int64
	peakSize      atomic.Int64
}

func (s *Statistics) push()      { s.pushes.Add(1) }
func (s *Statistics) pop()       { s.pops.Add(1) }
func (s *Statistics) evict()     { s.evictions.Add(1) }
func (s *Statistics) discard()   { s.discards.Add(1) }
func (s *Statistics) construct() { s.constructions.Add(1) }
func (s *Statistics) destroy()   { s.destructions.Add(1) }
func (s *Statistics) realloc()   { s.reallocations.Add(1) }

func (s *Statistics) constructN(n int) { s.constructions.Add(int64(n)) }
func (s *Statistics) destroyN(n int)   { s.destructions.Add(int64(n)) }

// observeSize raises the peak size to size if it is larger.
func (s *Statistics) observeSize(size int) {
	n := int64(size)
	for {
		peak := s.peakSize.Load()
		if n <= peak || s.peakSize.CompareAndSwap(peak, n) {
			return
		}
	}
}

// Pushes returns the number of elements pushed or emplaced at either end.
func (s *Statistics) Pushes() int64 { return s.pushes.Load() }

// Pops returns the number of elements popped from either end.
func (s *Statistics) Pops() int64 { return s.pops.Load() }

// Evictions returns the number of elements destroyed to make room for a push
// into a full buffer.
func (s *Statistics) Evictions() int64 { return s.evictions.Load() }

// Discards returns the number of pushes into a zero-capacity buffer.
func (s *Statistics) Discards() int64 { return s.discards.Load() }

// Constructions returns the number of elements that became live.
func (s *Statistics) Constructions() int64 { return s.constructions.Load() }

// Destructions returns the number of live elements that were destroyed.
func (s *Statistics) Destructions() int64 { return s.destructions.Load() }

// Live returns Constructions minus Destructions.
func (s *Statistics) Live() int64 { return s.Constructions() - s.Destructions() }

// Reallocations returns the number of storage replacements.
func (s *Statistics) Reallocations() int64 { return s.reallocations.Load() }

// PeakSize returns the largest size the buffer has reached.
func (s *Statistics) PeakSize() int64 { return s.peakSize.Load() }

// Reset zeroes the activity counters. Constructions and destructions are kept
// so Live stays meaningful.
func (s *Statistics) Reset() {
	s.pushes.Store(0)
	s.pops.Store(0)
	s.evictions.Store(0)
	s.discards.Store(0)
	s.reallocations.Store(0)
	s.peakSize.Store(0)
}

// StatsSummary is a snapshot of Statistics.
type StatsSummary struct {
	Pushes        int64 `json:"pushes"`
	Pops          int64 `json:"pops"`
	Evictions     int64 `json:"evictions"`
	Discards      int64 `json:"discards"`
	Constructions int64 `json:"constructions"`
	Destructions  int64 `json:"destructions"`
	Live          int64 `json:"live"`
	Reallocations int64 `json:"reallocations"`
	PeakSize      int64 `json:"peak_size"`
}

// Summary returns a snapshot of all counters.
func (s *Statistics) Summary() StatsSummary {
	return StatsSummary{
		Pushes:        s.Pushes(),
		Pops:          s.Pops(),
		Evictions:     s.Evictions(),
		Discards:      s.Discards(),
		Constructions: s.Constructions(),
		Destructions:  s.Destructions(),
		Live:          s.Live(),
		Reallocations: s.Reallocations(),
		PeakSize:      s.PeakSize(),
	}
}
