package compiler

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/kaptinlin/jsonschema"

	"github.com/roach88/flowc/internal/ir"
	"github.com/roach88/flowc/internal/workflow"
)

// jsonTypes maps output schema type names to JSON Schema types.
var jsonTypes = map[string]string{
	"string":  "string",
	"text":    "string",
	"number":  "number",
	"float":   "number",
	"integer": "integer",
	"int":     "integer",
	"boolean": "boolean",
	"bool":    "boolean",
	"array":   "array",
	"list":    "array",
	"object":  "object",
}

// ContractFor maps an AI operation's output schema to a response contract.
// The contract's JSON Schema is compiled before it is returned, so a contract
// that cannot be compiled is reported here rather than at run time.
func ContractFor(s *ir.OutputSchema) (workflow.ResponseContract, error) {
	c := contractFor(s)
	if _, err := compileContract(c); err != nil {
		return workflow.ResponseContract{}, err
	}
	return c, nil
}

func contractFor(s *ir.OutputSchema) workflow.ResponseContract {
	if s == nil {
		return workflow.ResponseContract{
			Kind:   workflow.ContractText,
			Schema: map[string]any{"type": "string"},
		}
	}

	t := strings.ToLower(strings.TrimSpace(s.Type))
	switch {
	case t == "enum" || (len(s.Values) > 0 && (t == "string" || t == "")):
		return workflow.ResponseContract{
			Kind:   workflow.ContractEnum,
			Values: slices.Clone(s.Values),
			Schema: withDescription(map[string]any{
				"type": "string",
				"enum": stringsToAny(s.Values),
			}, s.Description),
		}

	case t == "object" && len(s.Properties) > 0:
		props := make(map[string]string, len(s.Properties))
		schemaProps := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = p.Type
			schemaProps[name] = propertySchema(p)
		}
		required := make([]string, 0, len(props))
		for name := range props {
			required = append(required, name)
		}
		slices.Sort(required)
		return workflow.ResponseContract{
			Kind:       workflow.ContractObject,
			Properties: props,
			Schema: withDescription(map[string]any{
				"type":       "object",
				"properties": schemaProps,
				"required":   stringsToAny(required),
			}, s.Description),
		}

	case t == "string" || t == "text":
		return workflow.ResponseContract{
			Kind:   workflow.ContractText,
			Schema: withDescription(map[string]any{"type": "string"}, s.Description),
		}

	case t == "number" || t == "float" || t == "integer" || t == "int" || t == "boolean" || t == "bool":
		return workflow.ResponseContract{
			Kind:   workflow.ContractScalar,
			Schema: withDescription(map[string]any{"type": jsonTypes[t]}, s.Description),
		}
	}

	schema := map[string]any{}
	if jt, ok := jsonTypes[t]; ok {
		schema["type"] = jt
	}
	return workflow.ResponseContract{
		Kind:   workflow.ContractJSON,
		Schema: withDescription(schema, s.Description),
	}
}

func propertySchema(p ir.PropertySchema) map[string]any {
	out := map[string]any{}
	if len(p.Values) > 0 {
		out["type"] = "string"
		out["enum"] = stringsToAny(p.Values)
	} else if jt, ok := jsonTypes[strings.ToLower(p.Type)]; ok {
		out["type"] = jt
	}
	return withDescription(out, p.Description)
}

func withDescription(schema map[string]any, desc string) map[string]any {
	if desc != "" {
		schema["description"] = desc
	}
	return schema
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func compileContract(c workflow.ResponseContract) (*jsonschema.Schema, error) {
	data, err := json.Marshal(c.Schema)
	if err != nil {
		return nil, fmt.Errorf("contract schema: %w", err)
	}
	schema, err := jsonschema.NewCompiler().Compile(data)
	if err != nil {
		return nil, fmt.Errorf("compile %s contract: %w", c.Kind, err)
	}
	return schema, nil
}

// ValidateResponse checks a model answer against a contract. Runtimes use it
// to reject answers that do not match the declared output schema.
func ValidateResponse(c workflow.ResponseContract, value any) error {
	schema, err := compileContract(c)
	if err != nil {
		return err
	}
	result := schema.Validate(value)
	if result.Valid {
		return nil
	}

	keys := make([]string, 0, len(result.Errors))
	for k := range result.Errors {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, result.Errors[k].Error())
	}
	return fmt.Errorf("response does not match %s contract: %s", c.Kind, strings.Join(msgs, "; "))
}
