package metrics

import (
	"context"
	"errors"
	"time"
)

// CompilationRecord describes one pass through the pipeline.
type CompilationRecord struct {
	CompilationID     string    `json:"compilation_id"`
	Success           bool      `json:"success"`
	StepCount         int       `json:"step_count"`
	CompilationTimeMS float64   `json:"compilation_time_ms"`
	ErrorType         string    `json:"error_type,omitempty"`
	Stage             string    `json:"stage"`
	Features          []string  `json:"features"`
	IRFingerprint     string    `json:"ir_fingerprint,omitempty"`
	WarningCount      int       `json:"warning_count"`
	RecordedAt        time.Time `json:"recorded_at"`
}

// Sink receives compilation records.
type Sink interface {
	Record(ctx context.Context, rec CompilationRecord) error
}

// Multi sends every record to each sink in order. All sinks are tried; their
// errors are joined.
type Multi []Sink

func (m Multi) Record(ctx context.Context, rec CompilationRecord) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Discard drops every record.
type Discard struct{}

func (Discard) Record(context.Context, CompilationRecord) error { return nil }
