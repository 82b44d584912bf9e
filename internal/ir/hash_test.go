package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintDeterminism(t *testing.T) {
	doc := map[string]any{
		"goal":         "Email stage 4 deals",
		"data_sources": []any{map[string]any{"type": "spreadsheet", "source": "deals"}},
	}

	a, err := Fingerprint(doc)
	require.NoError(t, err)
	b, err := Fingerprint(doc)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64, "SHA-256 hex is 64 characters")
}

func TestFingerprintIgnoresKeyOrderAndNormalization(t *testing.T) {
	a, err := Fingerprint(map[string]any{"goal": "cafe\u0301", "ir_version": "2.0"})
	require.NoError(t, err)
	b, err := Fingerprint(map[string]any{"ir_version": "2.0", "goal": "caf\u00e9"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestFingerprintChangesWithContent(t *testing.T) {
	a, err := Fingerprint(map[string]any{"goal": "one"})
	require.NoError(t, err)
	b, err := Fingerprint(map[string]any{"goal": "two"})
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestDomainSeparation(t *testing.T) {
	data := []byte(`{"goal":"x"}`)
	assert.NotEqual(t, FingerprintBytes(DomainIR, data), FingerprintBytes(DomainWorkflow, data))
}

func TestFingerprintUnsupportedValue(t *testing.T) {
	_, err := Fingerprint(map[string]any{"bad": make(chan int)})
	assert.Error(t, err)
}
