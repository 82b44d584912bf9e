package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTemplate(t *testing.T) {
	segs := ParseTemplate("Hello {{rep.name}}, you have {{count}} deals")
	require.Len(t, segs, 5)

	assert.Equal(t, "Hello ", segs[0].Literal)
	require.NotNil(t, segs[1].Ref)
	assert.Equal(t, VarRef{Name: "rep", Path: []string{"name"}}, *segs[1].Ref)
	assert.Equal(t, ", you have ", segs[2].Literal)
	assert.Equal(t, VarRef{Name: "count"}, *segs[3].Ref)
	assert.Equal(t, " deals", segs[4].Literal)
}

func TestParseTemplateInvalidInnerStaysLiteral(t *testing.T) {
	for _, s := range []string{"{{ }}", "{{1abc}}", "{{a-b}}", "{{a..b}}", "{{unterminated"} {
		t.Run(s, func(t *testing.T) {
			assert.Empty(t, Refs(s))
		})
	}
}

func TestRefsTrimsInnerSpace(t *testing.T) {
	refs := Refs("{{ grouped_data }} and {{items.0.name}}")
	require.Len(t, refs, 2)
	assert.Equal(t, "grouped_data", refs[0].Name)
	assert.Equal(t, []string{"0", "name"}, refs[1].Path)
}

func TestSingleRef(t *testing.T) {
	ref, ok := SingleRef("{{deals}}")
	require.True(t, ok)
	assert.Equal(t, "deals", ref.Name)

	_, ok = SingleRef("deals: {{deals}}")
	assert.False(t, ok)

	_, ok = SingleRef("deals")
	assert.False(t, ok)
}

func TestRef(t *testing.T) {
	assert.Equal(t, "{{deals}}", Ref("deals"))
	assert.Equal(t, "{{group.owner}}", Ref("group.owner"))
	assert.Equal(t, "{{deals}}", Ref("{{deals}}"))
}

func TestVarRefString(t *testing.T) {
	assert.Equal(t, "{{a}}", VarRef{Name: "a"}.String())
	assert.Equal(t, "{{a.b.c}}", VarRef{Name: "a", Path: []string{"b", "c"}}.String())
}

func TestIsIdentifierPath(t *testing.T) {
	assert.True(t, IsIdentifierPath("step3.output"))
	assert.True(t, IsIdentifierPath("sales_rep"))
	assert.False(t, IsIdentifierPath("Email each rep"))
	assert.False(t, IsIdentifierPath(""))
}
