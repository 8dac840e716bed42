package buffer

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360/ringbuffer/pkg/ring"
)

// Statistics tracks buffer activity. The element-level counters of the
// underlying ring (evictions, constructions, destructions) are available
// through Ring.
type Statistics struct {
	writes    atomic.Int64
	reads     atomic.Int64
	peeks     atomic.Int64
	overflows atomic.Int64
	drops     atomic.Int64

	currentSize atomic.Int64

	ring *ring.Statistics

	mu        sync.RWMutex
	startTime time.Time
}

func newStatistics(rs *ring.Statistics) *Statistics {
	return &Statistics{
		ring:      rs,
		startTime: time.Now(),
	}
}

func (s *Statistics) write()           { s.writes.Add(1) }
func (s *Statistics) read(n int)       { s.reads.Add(int64(n)) }
func (s *Statistics) peek()            { s.peeks.Add(1) }
func (s *Statistics) overflow()        { s.overflows.Add(1) }
func (s *Statistics) drop()            { s.drops.Add(1) }
func (s *Statistics) updateSize(n int) { s.currentSize.Store(int64(n)) }

// Writes returns the number of accepted writes.
func (s *Statistics) Writes() int64 { return s.writes.Load() }

// Reads returns the number of items read.
func (s *Statistics) Reads() int64 { return s.reads.Load() }

// Peeks returns the number of successful peeks.
func (s *Statistics) Peeks() int64 { return s.peeks.Load() }

// Overflows returns the number of writes that found the buffer full.
func (s *Statistics) Overflows() int64 { return s.overflows.Load() }

// Drops returns the number of items dropped by the overflow policy.
func (s *Statistics) Drops() int64 { return s.drops.Load() }

// CurrentSize returns the number of items after the last write or read.
func (s *Statistics) CurrentSize() int64 { return s.currentSize.Load() }

// MaxSize returns the largest number of items the buffer has held.
func (s *Statistics) MaxSize() int64 { return s.ring.PeakSize() }

// Ring returns the statistics of the ring storing the items.
func (s *Statistics) Ring() *ring.Statistics { return s.ring }

// Throughput returns the average number of writes per second.
func (s *Statistics) Throughput() float64 {
	elapsed := s.Uptime()
	if elapsed == 0 {
		return 0.0
	}
	return float64(s.Writes()) / elapsed.Seconds()
}

// ReadThroughput returns the average number of reads per second.
func (s *Statistics) ReadThroughput() float64 {
	elapsed := s.Uptime()
	if elapsed == 0 {
		return 0.0
	}
	return float64(s.Reads()) / elapsed.Seconds()
}

// DropRate returns drops as a fraction of writes (0.0 to 1.0). Writes
// rejected under DropNewest count as drops but not as writes, so the rate can
// exceed 1.0 for that policy.
func (s *Statistics) DropRate() float64 {
	writes := s.Writes()
	if writes == 0 {
		return 0.0
	}
	return float64(s.Drops()) / float64(writes)
}

// OverflowRate returns overflows as a fraction of writes.
func (s *Statistics) OverflowRate() float64 {
	writes := s.Writes()
	if writes == 0 {
		return 0.0
	}
	return float64(s.Overflows()) / float64(writes)
}

// Utilization returns the current size as a fraction of capacity.
func (s *Statistics) Utilization(capacity int64) float64 {
	if capacity == 0 {
		return 0.0
	}
	return float64(s.CurrentSize()) / float64(capacity)
}

// Uptime returns how long ago the buffer was created or the statistics reset.
func (s *Statistics) Uptime() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.startTime)
}

// Reset zeroes the counters and restarts the uptime clock. The current size
// is left alone since the buffer still holds its items.
func (s *Statistics) Reset() {
	s.writes.Store(0)
	s.reads.Store(0)
	s.peeks.Store(0)
	s.overflows.Store(0)
	s.drops.Store(0)
	s.ring.Reset()

	s.mu.Lock()
	s.startTime = time.Now()
	s.mu.Unlock()
}

// StatsSummary is a snapshot of all statistics.
type StatsSummary struct {
	Writes         int64             `json:"writes"`
	Reads          int64             `json:"reads"`
	Peeks          int64             `json:"peeks"`
	Overflows      int64             `json:"overflows"`
	Drops          int64             `json:"drops"`
	CurrentSize    int64             `json:"current_size"`
	MaxSize        int64             `json:"max_size"`
	Throughput     float64           `json:"throughput"`
	ReadThroughput float64           `json:"read_throughput"`
	DropRate       float64           `json:"drop_rate"`
	OverflowRate   float64           `json:"overflow_rate"`
	Uptime         time.Duration     `json:"uptime"`
	Ring           ring.StatsSummary `json:"ring"`
}

// Summary returns a snapshot of all statistics.
func (s *Statistics) Summary() StatsSummary {
	return StatsSummary{
		Writes:         s.Writes(),
		Reads:          s.Reads(),
		Peeks:          s.Peeks(),
		Overflows:      s.Overflows(),
		Drops:          s.Drops(),
		CurrentSize:    s.CurrentSize(),
		MaxSize:        s.MaxSize(),
		Throughput:     s.Throughput(),
		ReadThroughput: s.ReadThroughput(),
		DropRate:       s.DropRate(),
		OverflowRate:   s.OverflowRate(),
		Uptime:         s.Uptime(),
		Ring:           s.ring.Summary(),
	}
}
