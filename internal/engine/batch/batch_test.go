package batch

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(_ context.Context, _ int, v int) int { return v * v }

func TestMap(t *testing.T) {
	items := make([]int, 25)
	for i := range items {
		items[i] = i
	}

	t.Run("Sequential", func(t *testing.T) {
		p, err := NewProcessor(10, 1)
		require.NoError(t, err)

		out, err := Map(context.Background(), p, items, square)
		require.NoError(t, err)
		require.Len(t, out, 25)
		for i, v := range out {
			assert.Equal(t, i*i, v)
		}
	})

	t.Run("Concurrent preserves order", func(t *testing.T) {
		p, err := NewProcessor(3, 4)
		require.NoError(t, err)

		var calls int32
		out, err := Map(context.Background(), p, items, func(ctx context.Context, i, v int) int {
			atomic.AddInt32(&calls, 1)
			return square(ctx, i, v)
		})
		require.NoError(t, err)
		assert.Equal(t, int32(25), calls)
		for i, v := range out {
			assert.Equal(t, i*i, v)
		}
	})

	t.Run("Empty input", func(t *testing.T) {
		out, err := Map(context.Background(), NewProcessorWithDefaults(), []int{}, square)
		require.NoError(t, err)
		assert.Empty(t, out)
	})

	t.Run("Nil callback", func(t *testing.T) {
		_, err := Map[int, int](context.Background(), NewProcessorWithDefaults(), items, nil)
		require.ErrorIs(t, err, ErrNilCallback)
	})

	t.Run("Nil processor uses defaults", func(t *testing.T) {
		out, err := Map(context.Background(), nil, items, square)
		require.NoError(t, err)
		assert.Equal(t, 576, out[24])
	})
}

func TestMap_Cancelled(t *testing.T) {
	items := make([]int, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, concurrency := range []int{1, 3} {
		p, err := NewProcessor(2, concurrency)
		require.NoError(t, err)

		out, err := Map(ctx, p, items, square)
		require.ErrorIs(t, err, context.Canceled)
		assert.Len(t, out, 10)
	}
}

func TestMap_Progress(t *testing.T) {
	items := make([]int, 7)
	p, err := NewProcessor(3, 2)
	require.NoError(t, err)

	var mu sync.Mutex
	var snapshots []ProgressSnapshot
	p.WithProgressCallback(func(s ProgressSnapshot) {
		mu.Lock()
		defer mu.Unlock()
		snapshots = append(snapshots, s)
	})

	_, err = Map(context.Background(), p, items, square)
	require.NoError(t, err)

	require.Len(t, snapshots, 3)
	last := snapshots[0]
	for _, s := range snapshots {
		if s.ProcessedBatches > last.ProcessedBatches {
			last = s
		}
	}
	assert.True(t, last.Complete())
	assert.InDelta(t, 100.0, last.PercentComplete, 1e-9)
	assert.Equal(t, 3, last.TotalBatches)
}

func TestNewProcessor(t *testing.T) {
	_, err := NewProcessor(0, 1)
	require.ErrorIs(t, err, ErrInvalidBatchSize)
	_, err = NewProcessor(MaxBatchSize+1, 1)
	require.ErrorIs(t, err, ErrInvalidBatchSize)

	p, err := NewProcessor(10, -2)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Concurrency())
	assert.Equal(t, 10, p.BatchSize())
	assert.Equal(t, [][2]int{{0, 10}, {10, 20}, {20, 23}}, p.Bounds(23))
}
