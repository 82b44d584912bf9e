package checker

import (
	"strings"

	"github.com/roach88/flowc/internal/workflow"
)

// ValueType is the coarse shape of a step's output.
type ValueType string

const (
	TypeArray  ValueType = "array"
	TypeObject ValueType = "object"
	TypeAny    ValueType = "any"
)

// operationPrefixes maps operation name prefixes to output types. Order
// matters: get_all must be tried before get.
var operationPrefixes = []struct {
	prefix string
	typ    ValueType
}{
	{"list", TypeArray},
	{"search", TypeArray},
	{"get_all", TypeArray},
	{"send", TypeObject},
	{"post", TypeObject},
	{"create", TypeObject},
	{"read", TypeAny},
	{"get", TypeAny},
	{"fetch", TypeAny},
}

// InferType returns the output type of a step from its type and operation.
func InferType(s workflow.Step) ValueType {
	switch s.StepType() {
	case workflow.TypeScatterGather:
		return TypeArray
	case workflow.TypeTransform:
		switch s.Operation() {
		case workflow.OpGroup, workflow.OpPartition, workflow.OpFilter:
			return TypeArray
		}
		return TypeAny
	}

	op := strings.ToLower(s.Operation())
	for _, p := range operationPrefixes {
		if strings.HasPrefix(op, p.prefix) {
			return p.typ
		}
	}
	return TypeAny
}
