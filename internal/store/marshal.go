package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/flowc/internal/ir"
)

// timeLayout is the stored form of recorded_at. UTC is applied on write.
const timeLayout = time.RFC3339Nano

// marshalFeatures converts a feature list to canonical JSON TEXT.
func marshalFeatures(features []string) (string, error) {
	if features == nil {
		features = []string{}
	}
	data, err := ir.MarshalCanonical(features)
	if err != nil {
		return "", fmt.Errorf("marshal features: %w", err)
	}
	return string(data), nil
}

func unmarshalFeatures(data string) ([]string, error) {
	out := []string{}
	if data == "" || data == "[]" {
		return out, nil
	}
	if err := json.Unmarshal([]byte(data), &out); err != nil {
		return nil, fmt.Errorf("unmarshal features: %w", err)
	}
	return out, nil
}

// marshalIR converts an IR document to canonical JSON TEXT.
func marshalIR(doc map[string]any) (string, error) {
	data, err := ir.MarshalCanonical(doc)
	if err != nil {
		return "", fmt.Errorf("marshal ir: %w", err)
	}
	return string(data), nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
