package buffer

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/c360/ringbuffer/metric"
)

func newBenchBuffer(b *testing.B, capacity int, options ...Option[int]) Buffer[int] {
	b.Helper()
	buf, err := NewCircularBuffer[int](capacity, options...)
	if err != nil {
		b.Fatal(err)
	}
	b.Cleanup(func() { buf.Close() })
	return buf
}

// BenchmarkBufferWrite benchmarks parallel writes into a buffer that overflows.
func BenchmarkBufferWrite(b *testing.B) {
	for _, capacity := range []int{100, 1000} {
		for _, policy := range []OverflowPolicy{DropOldest, DropNewest} {
			b.Run(fmt.Sprintf("%s_%d", policy, capacity), func(b *testing.B) {
				buf := newBenchBuffer(b, capacity, WithOverflowPolicy[int](policy))
				b.ResetTimer()
				b.RunParallel(func(pb *testing.PB) {
					i := 0
					for pb.Next() {
						_ = buf.Write(i)
						i++
					}
				})
			})
		}
	}
}

// BenchmarkBufferReadBatch benchmarks draining a full buffer in batches.
func BenchmarkBufferReadBatch(b *testing.B) {
	for _, batchSize := range []int{1, 10, 100} {
		b.Run(fmt.Sprintf("BatchSize_%d", batchSize), func(b *testing.B) {
			buf := newBenchBuffer(b, 1000)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				for j := 0; j < 1000; j++ {
					_ = buf.Write(j)
				}
				for !buf.IsEmpty() {
					buf.ReadBatch(batchSize)
				}
			}
		})
	}
}

// BenchmarkBufferMixed benchmarks 40% writes, 40% reads and 20% peeks.
func BenchmarkBufferMixed(b *testing.B) {
	for _, withMetrics := range []bool{false, true} {
		b.Run(fmt.Sprintf("metrics=%v", withMetrics), func(b *testing.B) {
			var options []Option[int]
			if withMetrics {
				options = append(options, WithMetrics[int](metric.NewMetricsRegistry(), "bench"))
			}
			buf := newBenchBuffer(b, 1000, options...)
			for i := 0; i < 500; i++ {
				_ = buf.Write(i)
			}

			b.ResetTimer()
			b.RunParallel(func(pb *testing.PB) {
				i := 0
				for pb.Next() {
					switch rand.IntN(5) {
					case 0, 1:
						_ = buf.Write(i)
						i++
					case 2, 3:
						buf.Read()
					case 4:
						buf.Peek()
					}
				}
			})
		})
	}
}

// BenchmarkBufferProducerConsumer benchmarks one writer and one reader goroutine
// exchanging items through a blocking buffer.
func BenchmarkBufferProducerConsumer(b *testing.B) {
	buf := newBenchBuffer(b, 256, WithOverflowPolicy[int](Block))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for n := 0; n < b.N; {
			n += len(buf.ReadBatch(64))
		}
	}()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = buf.Write(i)
	}
	<-done
}

// BenchmarkBufferSnapshot benchmarks copying out a full buffer.
func BenchmarkBufferSnapshot(b *testing.B) {
	buf := newBenchBuffer(b, 1024)
	for i := 0; i < 1024; i++ {
		_ = buf.Write(i)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = buf.Snapshot()
	}
}
