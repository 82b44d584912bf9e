package metrics

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(id string, ok bool) CompilationRecord {
	r := CompilationRecord{CompilationID: id, Success: ok, StepCount: 4, CompilationTimeMS: 2, Stage: "done"}
	if !ok {
		r.ErrorType = "SCHEMA"
		r.Stage = "ir_validation"
		r.StepCount = 0
	}
	return r
}

func ids(records []CompilationRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.CompilationID
	}
	return out
}

func TestRingBufferOrder(t *testing.T) {
	ctx := context.Background()
	rb := NewRingBuffer(3)
	assert.Empty(t, rb.Snapshot())

	for _, id := range []string{"a", "b"} {
		require.NoError(t, rb.Record(ctx, rec(id, true)))
	}
	assert.Equal(t, []string{"a", "b"}, ids(rb.Snapshot()))
	assert.Equal(t, 2, rb.Len())

	for _, id := range []string{"c", "d", "e"} {
		require.NoError(t, rb.Record(ctx, rec(id, true)))
	}
	assert.Equal(t, []string{"c", "d", "e"}, ids(rb.Snapshot()))
	assert.Equal(t, 3, rb.Len())
}

func TestRingBufferDefaultCapacity(t *testing.T) {
	rb := NewRingBuffer(0)
	assert.Len(t, rb.buf, DefaultCapacity)
}

func TestRingBufferCopiesFeatures(t *testing.T) {
	rb := NewRingBuffer(2)
	features := []string{"filters"}
	r := rec("a", true)
	r.Features = features
	require.NoError(t, rb.Record(context.Background(), r))

	features[0] = "changed"
	assert.Equal(t, []string{"filters"}, rb.Snapshot()[0].Features)
}

func TestRingBufferSummary(t *testing.T) {
	ctx := context.Background()
	rb := NewRingBuffer(10)
	assert.Equal(t, 0, rb.Summary().Recorded)

	ok := rec("a", true)
	ok.Features = []string{"filters", "ai_operations"}
	ok.WarningCount = 2
	require.NoError(t, rb.Record(ctx, ok))
	require.NoError(t, rb.Record(ctx, rec("b", true)))
	require.NoError(t, rb.Record(ctx, rec("c", true)))
	require.NoError(t, rb.Record(ctx, rec("d", false)))

	s := rb.Summary()
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 3, s.Succeeded)
	assert.InDelta(t, 0.75, s.SuccessRate, 1e-9)
	assert.InDelta(t, 2.0, s.AvgCompileTimeMS, 1e-9)
	assert.InDelta(t, 3.0, s.AvgStepCount, 1e-9)
	assert.Equal(t, map[string]int{"SCHEMA": 1}, s.ErrorTypes)
	assert.Equal(t, map[string]int{"filters": 1, "ai_operations": 1}, s.Features)
	assert.Equal(t, 2, s.Warnings)
}

func TestRingBufferConcurrent(t *testing.T) {
	rb := NewRingBuffer(50)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				_ = rb.Record(context.Background(), rec(fmt.Sprintf("%d-%d", i, j), true))
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, rb.Len())
	assert.Equal(t, 200, rb.Summary().Total)
}

type failingSink struct{ err error }

func (f failingSink) Record(context.Context, CompilationRecord) error { return f.err }

func TestMulti(t *testing.T) {
	a, b := NewRingBuffer(5), NewRingBuffer(5)
	errA := errors.New("a failed")
	m := Multi{a, failingSink{errA}, nil, b, Discard{}}

	err := m.Record(context.Background(), rec("x", true))
	require.ErrorIs(t, err, errA)
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 1, b.Len())

	assert.NoError(t, Multi{a}.Record(context.Background(), rec("y", true)))
}
