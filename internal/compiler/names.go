package compiler

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/roach88/flowc/internal/workflow"
)

// nameSet hands out output variable names that are unique within one
// compilation. A taken name gets a numeric suffix: data, data_2, data_3.
type nameSet struct {
	used map[string]bool
}

func newNameSet() *nameSet {
	return &nameSet{used: map[string]bool{}}
}

func (n *nameSet) claim(base string) string {
	name := base
	for i := 2; n.used[name]; i++ {
		name = base + "_" + strconv.Itoa(i)
	}
	n.used[name] = true
	return name
}

// identifier turns free text like "Pipeline Q4" into pipeline_q4.
func identifier(s string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			lastUnderscore = false
			continue
		}
		if !lastUnderscore {
			b.WriteByte('_')
			lastUnderscore = true
		}
	}
	out := strings.TrimSuffix(b.String(), "_")
	if out == "" {
		return ""
	}
	if out[0] >= '0' && out[0] <= '9' {
		out = "v_" + out
	}
	return out
}

// Number assigns ids to steps in place: step1..stepN at the top level and
// <parent>_1.. for nested steps. Else branches continue the numbering of
// their then branch.
func Number(steps []workflow.Step) {
	for i, s := range steps {
		setID(s, "step"+strconv.Itoa(i+1))
		numberNested(s)
	}
}

func numberNested(s workflow.Step) {
	n := 0
	for _, children := range workflow.Children(s) {
		for _, c := range children {
			n++
			setID(c, s.StepID()+"_"+strconv.Itoa(n))
			numberNested(c)
		}
	}
}

func setID(s workflow.Step, id string) {
	switch v := s.(type) {
	case *workflow.ActionStep:
		v.ID = id
	case *workflow.TransformStep:
		v.ID = id
	case *workflow.AIProcessingStep:
		v.ID = id
	case *workflow.ScatterGatherStep:
		v.ID = id
	}
}
