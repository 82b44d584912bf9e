package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/flowc/internal/metrics"
)

var _ metrics.Sink = (*Archive)(nil)

// Record inserts a compilation record. It makes Archive a metrics.Sink.
// Uses ON CONFLICT(id) DO NOTHING: writing the same compilation twice keeps
// the first record.
func (a *Archive) Record(ctx context.Context, rec metrics.CompilationRecord) error {
	features, err := marshalFeatures(rec.Features)
	if err != nil {
		return fmt.Errorf("write compilation: %w", err)
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO compilations
		(id, success, stage, error_type, step_count, warning_count,
		 compilation_time_ms, features, ir_fingerprint, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		rec.CompilationID,
		boolToInt(rec.Success),
		rec.Stage,
		rec.ErrorType,
		rec.StepCount,
		rec.WarningCount,
		rec.CompilationTimeMS,
		features,
		rec.IRFingerprint,
		rec.RecordedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("write compilation: %w", err)
	}
	return nil
}

// WriteArtifacts stores the normalized IR and compiled steps of a recorded
// compilation. The compilation must already exist.
func (a *Archive) WriteArtifacts(ctx context.Context, compilationID string, doc map[string]any, steps json.RawMessage) error {
	irJSON, err := marshalIR(doc)
	if err != nil {
		return fmt.Errorf("write artifacts: %w", err)
	}
	stepsJSON := "[]"
	if len(steps) > 0 {
		stepsJSON = string(steps)
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO artifacts (compilation_id, ir, steps)
		VALUES (?, ?, ?)
		ON CONFLICT(compilation_id) DO NOTHING
	`, compilationID, irJSON, stepsJSON)
	if err != nil {
		return fmt.Errorf("write artifacts: %w", err)
	}
	return nil
}
