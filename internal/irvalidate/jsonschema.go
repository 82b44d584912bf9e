package irvalidate

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"

	"github.com/roach88/flowc/internal/ir"
)

// JSONSchema reflects the typed IR into a JSON Schema document. Upstream
// formalization uses it to constrain model output.
func JSONSchema() ([]byte, error) {
	reflector := &jsonschema.Reflector{
		AllowAdditionalProperties: true,
		ExpandedStruct:            true,
		Mapper: func(t reflect.Type) *jsonschema.Schema {
			if t == reflect.TypeOf(ir.LoopAction{}) {
				return loopActionSchema()
			}
			return nil
		},
	}

	schema := reflector.Reflect(&ir.DeclarativeIR{})
	schema.Title = "DeclarativeIR"
	schema.Description = fmt.Sprintf("Declarative workflow intent, ir_version %s. Execution tokens (%v) are not allowed.",
		ir.CurrentVersion, ir.ForbiddenTokens)

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal ir schema: %w", err)
	}
	return data, nil
}

// loopActionSchema describes the bare-string-or-single-variant union.
func loopActionSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "string", Description: "unresolved reference bound by the compiler"},
			{Type: "object", Description: "exactly one of delivery, ai_operation, transform, filter"},
		},
	}
}
