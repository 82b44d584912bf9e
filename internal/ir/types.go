package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DeclarativeIR is the execution-agnostic description of a workflow's intent.
// It is produced upstream, normalized and validated, then treated as
// immutable compiler input.
type DeclarativeIR struct {
	IRVersion              string        `json:"ir_version,omitempty"`
	Goal                   string        `json:"goal"`
	DataSources            []DataSource  `json:"data_sources" jsonschema:"minItems=1"`
	Filters                []Filter      `json:"filters,omitempty"`
	AIOperations           []AIOperation `json:"ai_operations,omitempty"`
	Conditionals           []Conditional `json:"conditionals,omitempty"`
	Loops                  []Loop        `json:"loops,omitempty"`
	Partitions             []Partition   `json:"partitions,omitempty"`
	Grouping               *Grouping     `json:"grouping,omitempty"`
	Rendering              *Rendering    `json:"rendering,omitempty"`
	Delivery               []Delivery    `json:"delivery" jsonschema:"minItems=1"`
	EdgeCases              []EdgeCase    `json:"edge_cases,omitempty"`
	ClarificationsRequired []string      `json:"clarifications_required"`
}

// DataSource names where the workflow reads its input from.
type DataSource struct {
	Type           string `json:"type" jsonschema:"enum=api,enum=database,enum=spreadsheet,enum=file,enum=webhook,enum=email,enum=crm,enum=calendar,enum=storage,enum=table"`
	Source         string `json:"source"`
	Location       string `json:"location,omitempty"`
	Tab            string `json:"tab,omitempty"`
	Query          string `json:"query,omitempty"`
	Role           string `json:"role,omitempty"`
	OutputVariable string `json:"output_variable,omitempty"`
}

// Filter is a single row-level predicate. Filters are combined with AND.
type Filter struct {
	Field       string `json:"field"`
	Operator    string `json:"operator" jsonschema:"enum=equals,enum=not_equals,enum=contains,enum=not_contains,enum=greater_than,enum=less_than,enum=greater_than_or_equal,enum=less_than_or_equal,enum=in,enum=not_in,enum=is_empty,enum=is_not_empty,enum=within_last_days,enum=before,enum=after"`
	Value       any    `json:"value,omitempty"`
	Description string `json:"description,omitempty"`
}

// AIOperation describes one model-backed transformation of data.
type AIOperation struct {
	Type           string         `json:"type" jsonschema:"enum=summarize,enum=extract,enum=classify,enum=sentiment,enum=generate,enum=decide"`
	Instruction    string         `json:"instruction"`
	InputSource    string         `json:"input_source,omitempty"`
	OutputSchema   *OutputSchema  `json:"output_schema"`
	Constraints    *AIConstraints `json:"constraints,omitempty"`
	OutputVariable string         `json:"output_variable,omitempty"`
}

// OutputSchema is the shape the AI operation must produce.
type OutputSchema struct {
	Type        string                    `json:"type"`
	Values      []string                  `json:"values,omitempty"`
	Properties  map[string]PropertySchema `json:"properties,omitempty"`
	Description string                    `json:"description,omitempty"`
}

// PropertySchema describes one property of an object output schema.
type PropertySchema struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Values      []string `json:"values,omitempty"`
}

// AIConstraints lets the IR pin model selection for one operation.
type AIConstraints struct {
	ModelPreference string   `json:"model_preference,omitempty" jsonschema:"enum=fast,enum=accurate,enum=balanced"`
	Model           string   `json:"model,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxTokens       int      `json:"max_tokens,omitempty"`
}

// Condition is a predicate over a field of the current item or row.
type Condition struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    any    `json:"value,omitempty"`
}

// Conditional runs Then when When holds, Else otherwise.
type Conditional struct {
	When *Condition   `json:"when"`
	Then []LoopAction `json:"then"`
	Else []LoopAction `json:"else,omitempty"`
}

// Loop applies Do to every element of ForEach.
type Loop struct {
	ForEach        string       `json:"for_each"`
	ItemVariable   string       `json:"item_variable,omitempty"`
	Do             []LoopAction `json:"do"`
	MaxIterations  int          `json:"max_iterations,omitempty"`
	MaxConcurrency int          `json:"max_concurrency,omitempty"`
	OutputVariable string       `json:"output_variable,omitempty"`
}

// Partition splits a collection by a field value or a condition.
type Partition struct {
	Field          string     `json:"field"`
	SplitBy        string     `json:"split_by" jsonschema:"enum=value,enum=condition"`
	Condition      *Condition `json:"condition,omitempty"`
	HandleEmpty    string     `json:"handle_empty,omitempty" jsonschema:"enum=skip,enum=include,enum=error"`
	OutputVariable string     `json:"output_variable,omitempty"`
}

// Grouping groups rows by a field, optionally emitting one result per group.
type Grouping struct {
	GroupBy        string `json:"group_by"`
	EmitPerGroup   bool   `json:"emit_per_group"`
	OutputVariable string `json:"output_variable,omitempty"`
}

// Rendering describes how results are formatted before delivery.
type Rendering struct {
	Type     string   `json:"type" jsonschema:"enum=html_table,enum=email_embedded_table,enum=summary_block,enum=json,enum=csv,enum=plain_text,enum=list"`
	Template string   `json:"template,omitempty"`
	Columns  []string `json:"columns,omitempty"`
}

// Delivery names where and how results are sent.
type Delivery struct {
	Method          string   `json:"method" jsonschema:"enum=email,enum=slack,enum=webhook,enum=sms,enum=sheets,enum=file,enum=teams"`
	Recipient       string   `json:"recipient,omitempty"`
	RecipientSource string   `json:"recipient_source,omitempty"`
	Channel         string   `json:"channel,omitempty"`
	Subject         string   `json:"subject,omitempty"`
	Body            string   `json:"body,omitempty"`
	URL             string   `json:"url,omitempty"`
	CC              []string `json:"cc,omitempty"`
}

// EdgeCase names a runtime condition and the policy applied when it occurs.
type EdgeCase struct {
	Condition string `json:"condition"`
	Action    string `json:"action"`
	Message   string `json:"message,omitempty"`
}

// TransformSpec is an inline data transformation inside a loop or branch.
type TransformSpec struct {
	Operation string `json:"operation"`
	Field     string `json:"field,omitempty"`
	Value     any    `json:"value,omitempty"`
}

// LoopAction is a tagged union: exactly one of the pointer fields is set,
// or Ref holds a bare string reference left for the outer compiler to bind.
type LoopAction struct {
	Ref         string         `json:"-"`
	Delivery    *Delivery      `json:"delivery,omitempty"`
	AIOperation *AIOperation   `json:"ai_operation,omitempty"`
	Transform   *TransformSpec `json:"transform,omitempty"`
	Filter      *Filter        `json:"filter,omitempty"`
}

// Kind reports which variant of the union is set.
func (a LoopAction) Kind() string {
	switch {
	case a.Delivery != nil:
		return "delivery"
	case a.AIOperation != nil:
		return "ai_operation"
	case a.Transform != nil:
		return "transform"
	case a.Filter != nil:
		return "filter"
	case a.Ref != "":
		return "reference"
	default:
		return ""
	}
}

// loopActionFields mirrors LoopAction without its custom codec.
type loopActionFields struct {
	Delivery    *Delivery      `json:"delivery,omitempty"`
	AIOperation *AIOperation   `json:"ai_operation,omitempty"`
	Transform   *TransformSpec `json:"transform,omitempty"`
	Filter      *Filter        `json:"filter,omitempty"`
}

// UnmarshalJSON accepts either a bare string or a single-variant object.
func (a *LoopAction) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var ref string
		if err := json.Unmarshal(trimmed, &ref); err != nil {
			return err
		}
		*a = LoopAction{Ref: ref}
		return nil
	}

	var f loopActionFields
	if err := json.Unmarshal(trimmed, &f); err != nil {
		return fmt.Errorf("loop action: %w", err)
	}
	*a = LoopAction{
		Delivery:    f.Delivery,
		AIOperation: f.AIOperation,
		Transform:   f.Transform,
		Filter:      f.Filter,
	}
	return nil
}

// MarshalJSON writes references back as bare strings.
func (a LoopAction) MarshalJSON() ([]byte, error) {
	if a.Kind() == "reference" {
		return json.Marshal(a.Ref)
	}
	return json.Marshal(loopActionFields{
		Delivery:    a.Delivery,
		AIOperation: a.AIOperation,
		Transform:   a.Transform,
		Filter:      a.Filter,
	})
}

// ForbiddenTokens are execution-level keys that must never appear in an IR.
var ForbiddenTokens = []string{"plugin", "step_id", "execute", "workflow_steps"}

// Decode converts a generic (normalized) IR document into the typed form.
func Decode(doc map[string]any) (*DeclarativeIR, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("decode ir: %w", err)
	}
	var out DeclarativeIR
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode ir: %w", err)
	}
	return &out, nil
}
