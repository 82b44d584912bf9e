package workflow

import (
	"github.com/roach88/flowc/internal/ir"
)

// StepType discriminates the Step variants on the wire.
type StepType string

const (
	TypeAction        StepType = "action"
	TypeTransform     StepType = "transform"
	TypeAIProcessing  StepType = "ai_processing"
	TypeScatterGather StepType = "scatter_gather"
)

// Template is a config value that may contain {{name}} placeholders.
type Template string

// Refs returns the placeholders in t.
func (t Template) Refs() []ir.VarRef {
	return ir.Refs(string(t))
}

// Step is one node of a compiled workflow. The interface is sealed: only the
// four variants in this package implement it.
type Step interface {
	StepID() string
	StepType() StepType
	Output() string
	// Operation names what the step does, e.g. "send_email" or "group".
	Operation() string
	// Refs lists the variable references in the step's own config.
	// References inside nested steps are not included.
	Refs() []ir.VarRef
	isStep()
}

// ActionStep invokes a plugin.
type ActionStep struct {
	ID             string
	OutputVariable string
	Plugin         string
	Op             string
	Capability     Capability
	Config         PluginConfig

	// Unresolved marks a bare reference the compiler could not bind.
	Unresolved bool
	Reference  string
}

// TransformStep reshapes data without calling a plugin or a model.
type TransformStep struct {
	ID             string
	OutputVariable string
	Input          Template
	Config         TransformConfig
}

// AIProcessingStep describes one model call.
type AIProcessingStep struct {
	ID             string
	OutputVariable string
	Op             string
	Input          Template
	Prompt         Template
	Model          string
	Temperature    float64
	MaxTokens      int
	Contract       ResponseContract
}

// ResponseContract is the shape the model must answer with.
type ResponseContract struct {
	Kind       string            `json:"kind"`
	Values     []string          `json:"values,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
	Schema     map[string]any    `json:"schema"`
}

// Response contract kinds.
const (
	ContractEnum   = "enum"
	ContractObject = "object"
	ContractText   = "text"
	ContractScalar = "scalar"
	ContractJSON   = "json"
)

// ScatterGatherStep applies Actions to every element of Input independently
// and gathers the results into OutputVariable.
type ScatterGatherStep struct {
	ID             string
	OutputVariable string
	Input          Template
	ItemVariable   string
	Actions        []Step
	MaxIterations  int
	MaxConcurrency int
}

func (s *ActionStep) StepID() string        { return s.ID }
func (s *TransformStep) StepID() string     { return s.ID }
func (s *AIProcessingStep) StepID() string  { return s.ID }
func (s *ScatterGatherStep) StepID() string { return s.ID }

func (s *ActionStep) StepType() StepType        { return TypeAction }
func (s *TransformStep) StepType() StepType     { return TypeTransform }
func (s *AIProcessingStep) StepType() StepType  { return TypeAIProcessing }
func (s *ScatterGatherStep) StepType() StepType { return TypeScatterGather }

func (s *ActionStep) Output() string        { return s.OutputVariable }
func (s *TransformStep) Output() string     { return s.OutputVariable }
func (s *AIProcessingStep) Output() string  { return s.OutputVariable }
func (s *ScatterGatherStep) Output() string { return s.OutputVariable }

func (s *ActionStep) Operation() string       { return s.Op }
func (s *AIProcessingStep) Operation() string { return s.Op }
func (s *ScatterGatherStep) Operation() string {
	return string(TypeScatterGather)
}

func (s *TransformStep) Operation() string {
	if s.Config == nil {
		return ""
	}
	return s.Config.Operation()
}

func (s *ActionStep) Refs() []ir.VarRef {
	if s.Config == nil {
		return nil
	}
	return s.Config.Refs()
}

func (s *TransformStep) Refs() []ir.VarRef {
	refs := s.Input.Refs()
	if s.Config != nil {
		refs = append(refs, s.Config.Refs()...)
	}
	return refs
}

func (s *AIProcessingStep) Refs() []ir.VarRef {
	return append(s.Input.Refs(), s.Prompt.Refs()...)
}

func (s *ScatterGatherStep) Refs() []ir.VarRef {
	return s.Input.Refs()
}

func (*ActionStep) isStep()        {}
func (*TransformStep) isStep()     {}
func (*AIProcessingStep) isStep()  {}
func (*ScatterGatherStep) isStep() {}

// Children returns the nested step lists of s: scatter_gather actions, or
// the then and else branches of a branch transform.
func Children(s Step) [][]Step {
	switch v := s.(type) {
	case *ScatterGatherStep:
		return [][]Step{v.Actions}
	case *TransformStep:
		if b, ok := v.Config.(*BranchConfig); ok {
			return [][]Step{b.Then, b.Else}
		}
	}
	return nil
}

// Walk visits steps depth-first in order, descending into nested steps.
// Returning false from fn skips the children of that step.
func Walk(steps []Step, fn func(s Step, depth int) bool) {
	walk(steps, 0, fn)
}

func walk(steps []Step, depth int, fn func(Step, int) bool) {
	for _, s := range steps {
		if !fn(s, depth) {
			continue
		}
		for _, children := range Children(s) {
			walk(children, depth+1, fn)
		}
	}
}

// Count returns how many steps, nested included, satisfy pred.
func Count(steps []Step, pred func(Step) bool) int {
	n := 0
	Walk(steps, func(s Step, _ int) bool {
		if pred(s) {
			n++
		}
		return true
	})
	return n
}

// OfType is a Count predicate matching one step type.
func OfType(t StepType) func(Step) bool {
	return func(s Step) bool { return s.StepType() == t }
}

func templateRefs(ts ...Template) []ir.VarRef {
	var refs []ir.VarRef
	for _, t := range ts {
		refs = append(refs, t.Refs()...)
	}
	return refs
}

// valueRefs extracts references from loosely typed values such as filter operands.
func valueRefs(v any) []ir.VarRef {
	switch val := v.(type) {
	case string:
		return ir.Refs(val)
	case Template:
		return val.Refs()
	case []any:
		var refs []ir.VarRef
		for _, elem := range val {
			refs = append(refs, valueRefs(elem)...)
		}
		return refs
	case map[string]any:
		var refs []ir.VarRef
		for _, k := range ir.SortedKeys(val) {
			refs = append(refs, valueRefs(val[k])...)
		}
		return refs
	}
	return nil
}
