package workflow

import (
	"github.com/roach88/flowc/internal/ir"
)

// Transform operations.
const (
	OpFilter    = "filter"
	OpBranch    = "branch"
	OpPartition = "partition"
	OpGroup     = "group"
	OpRender    = "render"
)

// TransformConfig is the sealed set of transform configs.
type TransformConfig interface {
	Operation() string
	Refs() []ir.VarRef
	isTransformConfig()
}

// FilterConfig keeps rows where Field Operator Value holds.
type FilterConfig struct {
	Field       string `json:"field"`
	Operator    string `json:"operator"`
	Value       any    `json:"value,omitempty"`
	Description string `json:"description,omitempty"`
}

// BranchConfig runs Then when Condition holds and Else otherwise. Nested
// steps see the enclosing scope.
type BranchConfig struct {
	Condition ir.Condition `json:"condition"`
	Then      []Step       `json:"then"`
	Else      []Step       `json:"else,omitempty"`
}

// PartitionConfig splits the input by a field value or a condition.
type PartitionConfig struct {
	Field       string        `json:"field"`
	SplitBy     string        `json:"split_by"`
	Condition   *ir.Condition `json:"condition,omitempty"`
	HandleEmpty string        `json:"handle_empty"`
}

// GroupConfig groups the input rows by a field.
type GroupConfig struct {
	GroupBy      string `json:"group_by"`
	EmitPerGroup bool   `json:"emit_per_group"`
}

// RenderConfig formats the input for delivery.
type RenderConfig struct {
	Format   string   `json:"format"`
	Template Template `json:"template,omitempty"`
	Columns  []string `json:"columns,omitempty"`
}

// MapConfig is a free-form transform declared inline in a loop or branch.
type MapConfig struct {
	Op    string `json:"-"`
	Field string `json:"field,omitempty"`
	Value any    `json:"value,omitempty"`
}

func (*FilterConfig) Operation() string    { return OpFilter }
func (*BranchConfig) Operation() string    { return OpBranch }
func (*PartitionConfig) Operation() string { return OpPartition }
func (*GroupConfig) Operation() string     { return OpGroup }
func (*RenderConfig) Operation() string    { return OpRender }
func (c *MapConfig) Operation() string     { return c.Op }

func (c *FilterConfig) Refs() []ir.VarRef { return valueRefs(c.Value) }
func (c *BranchConfig) Refs() []ir.VarRef { return valueRefs(c.Condition.Value) }
func (c *PartitionConfig) Refs() []ir.VarRef {
	if c.Condition == nil {
		return nil
	}
	return valueRefs(c.Condition.Value)
}
func (*GroupConfig) Refs() []ir.VarRef    { return nil }
func (c *RenderConfig) Refs() []ir.VarRef { return c.Template.Refs() }
func (c *MapConfig) Refs() []ir.VarRef    { return valueRefs(c.Value) }

func (*FilterConfig) isTransformConfig()    {}
func (*BranchConfig) isTransformConfig()    {}
func (*PartitionConfig) isTransformConfig() {}
func (*GroupConfig) isTransformConfig()     {}
func (*RenderConfig) isTransformConfig()    {}
func (*MapConfig) isTransformConfig()       {}

// newTransformConfig returns an empty config for an operation, for decoding.
// Unknown operations decode as MapConfig.
func newTransformConfig(op string) TransformConfig {
	switch op {
	case OpFilter:
		return &FilterConfig{}
	case OpBranch:
		return &BranchConfig{}
	case OpPartition:
		return &PartitionConfig{}
	case OpGroup:
		return &GroupConfig{}
	case OpRender:
		return &RenderConfig{}
	default:
		return &MapConfig{Op: op}
	}
}
