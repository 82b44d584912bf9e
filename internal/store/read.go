package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/roach88/flowc/internal/metrics"
)

// ErrNotFound is returned when no row matches.
var ErrNotFound = errors.New("not found")

const selectCompilation = `
	SELECT id, success, stage, error_type, step_count, warning_count,
	       compilation_time_ms, features, ir_fingerprint, recorded_at
	FROM compilations`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompilation(row rowScanner) (metrics.CompilationRecord, error) {
	var (
		rec        metrics.CompilationRecord
		success    int
		features   string
		recordedAt string
	)
	err := row.Scan(
		&rec.CompilationID,
		&success,
		&rec.Stage,
		&rec.ErrorType,
		&rec.StepCount,
		&rec.WarningCount,
		&rec.CompilationTimeMS,
		&features,
		&rec.IRFingerprint,
		&recordedAt,
	)
	if err != nil {
		return metrics.CompilationRecord{}, err
	}
	rec.Success = success != 0

	if rec.Features, err = unmarshalFeatures(features); err != nil {
		return metrics.CompilationRecord{}, err
	}
	if rec.RecordedAt, err = time.Parse(timeLayout, recordedAt); err != nil {
		return metrics.CompilationRecord{}, fmt.Errorf("parse recorded_at: %w", err)
	}
	return rec, nil
}

// ReadCompilation returns the record with the given id.
func (a *Archive) ReadCompilation(ctx context.Context, id string) (metrics.CompilationRecord, error) {
	row := a.db.QueryRowContext(ctx, selectCompilation+` WHERE id = ?`, id)
	rec, err := scanCompilation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return metrics.CompilationRecord{}, fmt.Errorf("compilation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return metrics.CompilationRecord{}, fmt.Errorf("read compilation: %w", err)
	}
	return rec, nil
}

// ListRecent returns up to limit records, newest first.
func (a *Archive) ListRecent(ctx context.Context, limit int) ([]metrics.CompilationRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	return a.query(ctx, selectCompilation+`
		ORDER BY seq DESC, id COLLATE BINARY DESC
		LIMIT ?`, limit)
}

// FindByFingerprint returns every compilation of the same IR, oldest first.
func (a *Archive) FindByFingerprint(ctx context.Context, fingerprint string) ([]metrics.CompilationRecord, error) {
	return a.query(ctx, selectCompilation+`
		WHERE ir_fingerprint = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC`, fingerprint)
}

func (a *Archive) query(ctx context.Context, q string, args ...any) ([]metrics.CompilationRecord, error) {
	rows, err := a.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query compilations: %w", err)
	}
	defer rows.Close()

	records := []metrics.CompilationRecord{}
	for rows.Next() {
		rec, err := scanCompilation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan compilation: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate compilations: %w", err)
	}
	return records, nil
}

// StageCount is the number of failed compilations at one stage.
type StageCount struct {
	Stage string `json:"stage"`
	Count int    `json:"count"`
}

// FailuresByStage counts failed compilations per stage.
func (a *Archive) FailuresByStage(ctx context.Context) ([]StageCount, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT stage, COUNT(*)
		FROM compilations
		WHERE success = 0
		GROUP BY stage
		ORDER BY stage COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()

	out := []StageCount{}
	for rows.Next() {
		var sc StageCount
		if err := rows.Scan(&sc.Stage, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan failures: %w", err)
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate failures: %w", err)
	}
	return out, nil
}

// Artifacts is the stored input and output of a compilation.
type Artifacts struct {
	IR    map[string]any  `json:"ir"`
	Steps json.RawMessage `json:"steps"`
}

// ReadArtifacts returns the stored IR and steps of a compilation.
func (a *Archive) ReadArtifacts(ctx context.Context, compilationID string) (Artifacts, error) {
	var irJSON, steps string
	err := a.db.QueryRowContext(ctx, `
		SELECT ir, steps FROM artifacts WHERE compilation_id = ?
	`, compilationID).Scan(&irJSON, &steps)
	if errors.Is(err, sql.ErrNoRows) {
		return Artifacts{}, fmt.Errorf("artifacts %s: %w", compilationID, ErrNotFound)
	}
	if err != nil {
		return Artifacts{}, fmt.Errorf("read artifacts: %w", err)
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(irJSON), &doc); err != nil {
		return Artifacts{}, fmt.Errorf("unmarshal ir: %w", err)
	}
	return Artifacts{IR: doc, Steps: json.RawMessage(steps)}, nil
}
