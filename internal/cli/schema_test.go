package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaCommand(t *testing.T) {
	for _, format := range ValidFormats {
		t.Run(format, func(t *testing.T) {
			buf := &bytes.Buffer{}
			cmd := NewSchemaCommand(&RootOptions{Format: format})
			cmd.SetOut(buf)
			cmd.SetArgs([]string{})

			require.NoError(t, cmd.Execute())

			var schema map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &schema))
			assert.Equal(t, "DeclarativeIR", schema["title"])
			assert.Contains(t, schema, "properties")
		})
	}
}
