package compiler

import (
	"fmt"
	"maps"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/roach88/flowc/internal/ir"
	"github.com/roach88/flowc/internal/workflow"
)

// promptData is the input to a prompt template. InputRef is the placeholder
// for the data the step consumes, e.g. "{{deals}}"; it is passed as data so
// the template engine never interprets it.
type promptData struct {
	Instruction string
	InputRef    string
	Values      []string
	Properties  map[string]ir.PropertySchema
	Description string
}

var promptSources = map[string]string{
	"summarize": `Summarize the following data.
Instruction: {{ .Instruction | trim }}
{{- with .Description }}
Output: {{ . }}
{{- end }}

Data:
{{ .InputRef }}`,

	"extract": `Extract structured fields from the following data.
Instruction: {{ .Instruction | trim }}
{{- if .Properties }}
Fields:
{{- range $name, $p := .Properties }}
- {{ $name }} ({{ default "string" $p.Type }}){{ with $p.Description }}: {{ . }}{{ end }}
{{- end }}
{{- end }}
Respond with a JSON object.

Data:
{{ .InputRef }}`,

	"classify": `Classify the following data.
Instruction: {{ .Instruction | trim }}
{{- if .Values }}
Answer with exactly one of: {{ join ", " .Values }}.
{{- end }}

Data:
{{ .InputRef }}`,

	"sentiment": `Determine the sentiment of the following data.
Instruction: {{ .Instruction | trim }}
Answer with exactly one of: {{ join ", " (default (list "positive" "neutral" "negative") .Values) }}.

Data:
{{ .InputRef }}`,

	"generate": `Generate content from the following data.
Instruction: {{ .Instruction | trim }}
{{- with .Description }}
Output: {{ . }}
{{- end }}

Data:
{{ .InputRef }}`,

	"decide": `Make a decision based on the following data.
Instruction: {{ .Instruction | trim }}
{{- if .Values }}
Choose one of: {{ join ", " .Values }}.
{{- end }}
Explain the decision in one sentence.

Data:
{{ .InputRef }}`,
}

// prompts holds the parsed prompt templates, keyed by operation type.
var prompts = func() map[string]*template.Template {
	out := make(map[string]*template.Template, len(promptSources))
	for name, src := range promptSources {
		out[name] = template.Must(template.New(name).
			Option("missingkey=error").
			Funcs(sprig.TxtFuncMap()).
			Parse(src))
	}
	return out
}()

// AIOperationResolver turns IR AI operations into ai_processing steps.
// It only describes model calls; it never performs them.
type AIOperationResolver struct {
	tiers map[string]ModelSpec
	names *nameSet
}

// NewAIOperationResolver creates a resolver. A nil tiers map uses
// DefaultModelTiers; missing tiers fall back to the defaults.
func NewAIOperationResolver(tiers map[string]ModelSpec) *AIOperationResolver {
	merged := DefaultModelTiers()
	maps.Copy(merged, tiers)
	return &AIOperationResolver{tiers: merged, names: newNameSet()}
}

// Resolve returns one ai_processing step per operation. Operations are
// chained: each consumes the previous step's output unless it names an
// input_source. The first operation consumes inputVar.
func (r *AIOperationResolver) Resolve(ops []ir.AIOperation, inputVar string) ([]workflow.Step, error) {
	steps := make([]workflow.Step, 0, len(ops))
	current := inputVar
	for i, op := range ops {
		step, err := r.resolveOne(op, current)
		if err != nil {
			return nil, fmt.Errorf("ai_operations[%d]: %w", i, err)
		}
		steps = append(steps, step)
		current = step.OutputVariable
	}
	return steps, nil
}

func (r *AIOperationResolver) resolveOne(op ir.AIOperation, inputVar string) (*workflow.AIProcessingStep, error) {
	input := ir.Ref(inputVar)
	if op.InputSource != "" {
		input = ir.Ref(op.InputSource)
	}

	prompt, err := renderPrompt(op, input)
	if err != nil {
		return nil, err
	}
	contract, err := ContractFor(op.OutputSchema)
	if err != nil {
		return nil, err
	}
	spec := r.modelFor(op)

	out := op.OutputVariable
	if out == "" {
		out = op.Type + "_result"
	}

	return &workflow.AIProcessingStep{
		OutputVariable: r.names.claim(out),
		Op:             op.Type,
		Input:          workflow.Template(input),
		Prompt:         workflow.Template(prompt),
		Model:          spec.Model,
		Temperature:    spec.Temperature,
		MaxTokens:      spec.MaxTokens,
		Contract:       contract,
	}, nil
}

// modelFor picks the tier from the operation's preference or type, then
// applies explicit constraint overrides.
func (r *AIOperationResolver) modelFor(op ir.AIOperation) ModelSpec {
	tier := DefaultTier(op.Type)
	if op.Constraints != nil && op.Constraints.ModelPreference != "" {
		tier = op.Constraints.ModelPreference
	}
	spec, ok := r.tiers[tier]
	if !ok {
		spec = r.tiers[TierBalanced]
	}

	if c := op.Constraints; c != nil {
		if c.Model != "" {
			spec.Model = c.Model
		}
		if c.Temperature != nil {
			spec.Temperature = *c.Temperature
		}
		if c.MaxTokens > 0 {
			spec.MaxTokens = c.MaxTokens
		}
	}
	return spec
}

func renderPrompt(op ir.AIOperation, inputRef string) (string, error) {
	tmpl, ok := prompts[op.Type]
	if !ok {
		tmpl = prompts["generate"]
	}

	data := promptData{Instruction: op.Instruction, InputRef: inputRef}
	if s := op.OutputSchema; s != nil {
		data.Values = s.Values
		data.Properties = s.Properties
		data.Description = s.Description
	}

	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", op.Type, err)
	}
	return b.String(), nil
}
