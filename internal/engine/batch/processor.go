package batch

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Default batch processing configuration.
const (
	// DefaultBatchSize is the default number of items per batch.
	DefaultBatchSize = 100

	// MinBatchSize is the minimum allowed batch size.
	MinBatchSize = 1

	// MaxBatchSize is the maximum allowed batch size.
	MaxBatchSize = 1000
)

// Common batch processing errors.
var (
	ErrInvalidBatchSize = errors.New("batch size must be between 1 and 1000")
	ErrNilCallback      = errors.New("batch callback cannot be nil")
)

// MapFunc computes the output for one item. index is the item's position in
// the input slice.
type MapFunc[T, R any] func(ctx context.Context, index int, item T) R

// ProgressCallback is invoked after each batch completes.
type ProgressCallback func(snapshot ProgressSnapshot)

// Processor maps items to results in fixed-size batches.
type Processor struct {
	batchSize   int
	concurrency int
	onProgress  ProgressCallback
}

// NewProcessor creates a processor. concurrency below 1 is treated as 1,
// which runs batches sequentially on the calling goroutine.
func NewProcessor(batchSize, concurrency int) (*Processor, error) {
	if batchSize < MinBatchSize || batchSize > MaxBatchSize {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBatchSize, batchSize)
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &Processor{batchSize: batchSize, concurrency: concurrency}, nil
}

// NewProcessorWithDefaults creates a sequential processor with the default
// batch size.
func NewProcessorWithDefaults() *Processor {
	return &Processor{batchSize: DefaultBatchSize, concurrency: 1}
}

// WithProgressCallback sets a progress callback for the processor.
func (p *Processor) WithProgressCallback(callback ProgressCallback) *Processor {
	p.onProgress = callback
	return p
}

// BatchSize returns the configured batch size.
func (p *Processor) BatchSize() int { return p.batchSize }

// Concurrency returns the maximum number of batches run at once.
func (p *Processor) Concurrency() int { return p.concurrency }

// Bounds returns the [start, end) index pairs of each batch for n items.
func (p *Processor) Bounds(n int) [][2]int {
	total := p.totalBatches(n)
	out := make([][2]int, total)
	for i := range total {
		start := i * p.batchSize
		end := min(start+p.batchSize, n)
		out[i] = [2]int{start, end}
	}
	return out
}

func (p *Processor) totalBatches(n int) int {
	batches := n / p.batchSize
	if n%p.batchSize > 0 {
		batches++
	}
	return batches
}

// Map applies fn to every item and returns the results in input order.
// When ctx is cancelled before all batches have started, Map returns the
// context error together with the results computed so far; slots of batches
// that never ran hold the zero value.
func Map[T, R any](ctx context.Context, p *Processor, items []T, fn MapFunc[T, R]) ([]R, error) {
	if fn == nil {
		return nil, ErrNilCallback
	}
	if p == nil {
		p = NewProcessorWithDefaults()
	}
	out := make([]R, len(items))
	if len(items) == 0 {
		return out, nil
	}

	bounds := p.Bounds(len(items))
	progress := NewProgress(len(items), len(bounds), p.batchSize)

	runBatch := func(b [2]int) {
		for i := b[0]; i < b[1]; i++ {
			out[i] = fn(ctx, i, items[i])
		}
		progress.AddProcessed(b[1] - b[0])
		if p.onProgress != nil {
			p.onProgress(progress.Snapshot())
		}
	}

	if p.concurrency == 1 {
		for _, b := range bounds {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			runBatch(b)
		}
		return out, nil
	}

	g := new(errgroup.Group)
	g.SetLimit(p.concurrency)
	for _, b := range bounds {
		if err := ctx.Err(); err != nil {
			_ = g.Wait()
			return out, err
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			runBatch(b)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}
