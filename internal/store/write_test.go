package store

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestRecord_RoundTrip(t *testing.T) {
	a := createTestArchive(t)
	ctx := context.Background()

	rec := createTestRecord("c-1", "fp-1")
	rec.WarningCount = 2
	if err := a.Record(ctx, rec); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}

	got, err := a.ReadCompilation(ctx, "c-1")
	if err != nil {
		t.Fatalf("ReadCompilation() failed: %v", err)
	}
	if got.CompilationID != "c-1" || !got.Success || got.StepCount != 3 || got.WarningCount != 2 {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.IRFingerprint != "fp-1" || got.Stage != "done" {
		t.Errorf("unexpected record: %+v", got)
	}
	if len(got.Features) != 1 || got.Features[0] != "filters" {
		t.Errorf("Features = %v, want [filters]", got.Features)
	}
	if !got.RecordedAt.Equal(testTime) {
		t.Errorf("RecordedAt = %v, want %v", got.RecordedAt, testTime)
	}
}

func TestRecord_Failure(t *testing.T) {
	a := createTestArchive(t)
	ctx := context.Background()

	rec := createTestRecord("c-2", "fp")
	rec.Success = false
	rec.Stage = "ir_validation"
	rec.ErrorType = "FORBIDDEN_TOKEN"
	rec.StepCount = 0
	rec.Features = nil
	if err := a.Record(ctx, rec); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}

	got, err := a.ReadCompilation(ctx, "c-2")
	if err != nil {
		t.Fatalf("ReadCompilation() failed: %v", err)
	}
	if got.Success {
		t.Error("Success = true, want false")
	}
	if got.ErrorType != "FORBIDDEN_TOKEN" {
		t.Errorf("ErrorType = %q", got.ErrorType)
	}
	if got.Features == nil || len(got.Features) != 0 {
		t.Errorf("Features = %#v, want empty slice", got.Features)
	}
}

func TestRecord_Idempotent(t *testing.T) {
	a := createTestArchive(t)
	ctx := context.Background()

	first := createTestRecord("dup", "fp")
	second := createTestRecord("dup", "fp")
	second.StepCount = 99
	if err := a.Record(ctx, first); err != nil {
		t.Fatalf("first Record() failed: %v", err)
	}
	if err := a.Record(ctx, second); err != nil {
		t.Fatalf("second Record() failed: %v", err)
	}

	var count int
	if err := a.db.QueryRow("SELECT COUNT(*) FROM compilations").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	got, _ := a.ReadCompilation(ctx, "dup")
	if got.StepCount != 3 {
		t.Errorf("StepCount = %d, want first write kept", got.StepCount)
	}
}

func TestArtifacts_RoundTrip(t *testing.T) {
	a := createTestArchive(t)
	ctx := context.Background()

	if err := a.Record(ctx, createTestRecord("c-3", "fp")); err != nil {
		t.Fatalf("Record() failed: %v", err)
	}
	doc := map[string]any{"goal": "Send <report> & more", "delivery": []any{}}
	steps := json.RawMessage(`[{"id":"step1","type":"action","config":{}}]`)
	if err := a.WriteArtifacts(ctx, "c-3", doc, steps); err != nil {
		t.Fatalf("WriteArtifacts() failed: %v", err)
	}

	got, err := a.ReadArtifacts(ctx, "c-3")
	if err != nil {
		t.Fatalf("ReadArtifacts() failed: %v", err)
	}
	if got.IR["goal"] != "Send <report> & more" {
		t.Errorf("IR goal = %v", got.IR["goal"])
	}
	if string(got.Steps) != string(steps) {
		t.Errorf("Steps = %s", got.Steps)
	}

	var raw string
	if err := a.db.QueryRow("SELECT ir FROM artifacts WHERE compilation_id = ?", "c-3").Scan(&raw); err != nil {
		t.Fatalf("query ir: %v", err)
	}
	if raw != `{"delivery":[],"goal":"Send <report> & more"}` {
		t.Errorf("stored ir is not canonical: %s", raw)
	}
}

func TestArtifacts_RequireCompilation(t *testing.T) {
	a := createTestArchive(t)
	err := a.WriteArtifacts(context.Background(), "missing", map[string]any{}, nil)
	if err == nil {
		t.Error("expected foreign key error")
	}
}

func TestArtifacts_NotFound(t *testing.T) {
	a := createTestArchive(t)
	_, err := a.ReadArtifacts(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
