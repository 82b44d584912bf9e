package metrics

import (
	"context"
	"slices"
	"sync"
)

// DefaultCapacity is the RingBuffer size used when none is configured.
const DefaultCapacity = 1000

// RingBuffer keeps the last N records. It is safe for concurrent use.
type RingBuffer struct {
	mu    sync.Mutex
	buf   []CompilationRecord
	next  int
	full  bool
	total int
}

// NewRingBuffer creates a buffer holding up to capacity records.
// A non-positive capacity selects DefaultCapacity.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &RingBuffer{buf: make([]CompilationRecord, capacity)}
}

// Record stores rec, overwriting the oldest record when full.
func (r *RingBuffer) Record(_ context.Context, rec CompilationRecord) error {
	rec.Features = slices.Clone(rec.Features)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.buf[r.next] = rec
	r.next = (r.next + 1) % len(r.buf)
	if r.next == 0 {
		r.full = true
	}
	r.total++
	return nil
}

// Snapshot returns the stored records, oldest first.
func (r *RingBuffer) Snapshot() []CompilationRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.full {
		return slices.Clone(r.buf[:r.next])
	}
	out := make([]CompilationRecord, 0, len(r.buf))
	out = append(out, r.buf[r.next:]...)
	return append(out, r.buf[:r.next]...)
}

// Len returns the number of stored records.
func (r *RingBuffer) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.full {
		return len(r.buf)
	}
	return r.next
}

// Summary aggregates the stored records.
type Summary struct {
	Total            int            `json:"total"`
	Recorded         int            `json:"recorded"`
	Succeeded        int            `json:"succeeded"`
	SuccessRate      float64        `json:"success_rate"`
	AvgCompileTimeMS float64        `json:"avg_compilation_time_ms"`
	AvgStepCount     float64        `json:"avg_step_count"`
	ErrorTypes       map[string]int `json:"error_types"`
	Features         map[string]int `json:"features"`
	Warnings         int            `json:"warnings"`
}

// Summary computes aggregates over the records currently held. Total counts
// every record ever written, including overwritten ones.
func (r *RingBuffer) Summary() Summary {
	records := r.Snapshot()

	r.mu.Lock()
	total := r.total
	r.mu.Unlock()

	s := Summary{
		Total:      total,
		Recorded:   len(records),
		ErrorTypes: map[string]int{},
		Features:   map[string]int{},
	}
	if len(records) == 0 {
		return s
	}

	var timeSum float64
	var steps int
	for _, rec := range records {
		if rec.Success {
			s.Succeeded++
		}
		if rec.ErrorType != "" {
			s.ErrorTypes[rec.ErrorType]++
		}
		for _, f := range rec.Features {
			s.Features[f]++
		}
		timeSum += rec.CompilationTimeMS
		steps += rec.StepCount
		s.Warnings += rec.WarningCount
	}
	n := float64(len(records))
	s.SuccessRate = float64(s.Succeeded) / n
	s.AvgCompileTimeMS = timeSum / n
	s.AvgStepCount = float64(steps) / n
	return s
}
