package main

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/c360/ringbuffer/pkg/buffer"
)

// sample is the item written by the load generator.
type sample struct {
	Producer int       `json:"producer"`
	Seq      uint64    `json:"seq"`
	At       time.Time `json:"at"`
}

type loadOptions struct {
	producers       int
	consumers       int
	batchSize       int
	shutdownTimeout time.Duration
}

type loadResult struct {
	consumed int64
	// outOfOrder counts samples whose sequence number did not increase
	// relative to the previous sample of the same producer seen by the same
	// consumer.
	outOfOrder int64
}

// runLoad writes samples until ctx is done, then closes buf and lets the
// consumers drain what is left.
func runLoad(ctx context.Context, buf buffer.Buffer[sample], opts loadOptions) (loadResult, error) {
	var (
		result   loadResult
		consumed atomic.Int64
		disorder atomic.Int64
		finished atomic.Bool
	)

	drainCtx, cancelDrain := context.WithCancel(context.Background())
	defer cancelDrain()

	consumers, cctx := errgroup.WithContext(drainCtx)
	for range opts.consumers {
		consumers.Go(func() error {
			last := make(map[int]uint64)
			for {
				done := finished.Load()
				batch := buf.ReadBatch(opts.batchSize)
				if len(batch) == 0 {
					if done {
						return nil
					}
					select {
					case <-cctx.Done():
						return cctx.Err()
					case <-time.After(time.Millisecond):
					}
					continue
				}
				for _, s := range batch {
					if prev, ok := last[s.Producer]; ok && s.Seq <= prev {
						disorder.Add(1)
					}
					last[s.Producer] = s.Seq
				}
				consumed.Add(int64(len(batch)))
			}
		})
	}

	producers := new(errgroup.Group)
	for p := range opts.producers {
		producers.Go(func() error {
			for seq := uint64(1); ctx.Err() == nil; seq++ {
				err := buf.WriteWithContext(ctx, sample{Producer: p, Seq: seq, At: time.Now()})
				if err != nil && ctx.Err() == nil {
					return fmt.Errorf("producer %d: %w", p, err)
				}
			}
			return nil
		})
	}

	perr := producers.Wait()
	finished.Store(true)
	if err := buf.Close(); err != nil {
		return result, err
	}

	timer := time.AfterFunc(opts.shutdownTimeout, cancelDrain)
	defer timer.Stop()
	cerr := consumers.Wait()

	result.consumed = consumed.Load()
	result.outOfOrder = disorder.Load()
	if perr != nil {
		return result, perr
	}
	if cerr != nil {
		return result, fmt.Errorf("drain buffer: %w", cerr)
	}
	return result, nil
}
