package checker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/flowc/internal/compiler"
	"github.com/roach88/flowc/internal/ir"
	"github.com/roach88/flowc/internal/testutil"
	"github.com/roach88/flowc/internal/workflow"
)

func read(id, out, op string) *workflow.ActionStep {
	return &workflow.ActionStep{
		ID:             id,
		OutputVariable: out,
		Op:             op,
		Capability:     workflow.CapabilityGeneric,
		Config:         &workflow.GenericConfig{Params: map[string]workflow.Template{}},
	}
}

func send(id string, body workflow.Template) *workflow.ActionStep {
	return &workflow.ActionStep{
		ID:         id,
		Op:         "send_email",
		Capability: workflow.CapabilityMail,
		Config:     &workflow.MailConfig{To: "a@example.com", Body: body},
	}
}

func codes(issues []Issue) []string {
	out := make([]string, len(issues))
	for i, is := range issues {
		out[i] = is.Code
	}
	return out
}

// =============================================================================
// Compiled fixtures
// =============================================================================

func TestCheck_CompiledFixtures(t *testing.T) {
	fixtures := map[string]func() map[string]any{
		"minimal":  testutil.MinimalIR,
		"filtered": testutil.FilteredSpreadsheetEmailIR,
		"salesrep": testutil.SalesRepIR,
		"ai chain": testutil.AIChainIR,
		"loop":     testutil.LoopIR,
	}
	for name, fixture := range fixtures {
		t.Run(name, func(t *testing.T) {
			doc := testutil.MustDecode(t, fixture())
			res, err := compiler.New(compiler.Options{}).Compile(doc)
			require.NoError(t, err)

			got := Check(res.Steps, doc)
			assert.True(t, got.Valid, "errors: %v", got.Errors)
			assert.Empty(t, got.Errors)
			assert.Empty(t, got.Warnings)
		})
	}
}

// =============================================================================
// Variable continuity
// =============================================================================

func TestContinuity_Undefined(t *testing.T) {
	steps := []workflow.Step{
		read("step1", "rows", "list_rows"),
		send("step2", "{{missing.field}} and {{rows}} and {{missing}}"),
	}
	res := Check(steps, nil)

	assert.False(t, res.Valid)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, CodeVariableUndefined, res.Errors[0].Code)
	assert.Equal(t, "step2", res.Errors[0].StepID)
	assert.Contains(t, res.Errors[0].Message, "{{missing.field}}")
}

func TestContinuity_RejectsForwardReference(t *testing.T) {
	steps := []workflow.Step{
		send("step1", "{{rows}}"),
		read("step2", "rows", "list_rows"),
	}
	res := Check(steps, nil)
	assert.Equal(t, []string{CodeVariableUndefined}, codes(res.Errors))
}

func TestContinuity_ScatterGatherScope(t *testing.T) {
	steps := []workflow.Step{
		read("step1", "leads", "search_records"),
		&workflow.ScatterGatherStep{
			ID:             "step2",
			OutputVariable: "results",
			Input:          "{{leads}}",
			ItemVariable:   "lead",
			Actions: []workflow.Step{
				&workflow.AIProcessingStep{ID: "step2_1", OutputVariable: "draft", Op: "generate", Input: "{{lead}}", Prompt: "{{lead.name}}"},
				send("step2_2", "{{draft}} for {{lead.email}}"),
			},
		},
		// Nested outputs and the item variable do not leak.
		send("step3", "{{draft}} {{lead}} {{results}}"),
	}
	res := Check(steps, nil)

	require.Len(t, res.Errors, 2)
	for _, e := range res.Errors {
		assert.Equal(t, "step3", e.StepID)
	}
	assert.Contains(t, res.Errors[0].Message, "{{draft}}")
	assert.Contains(t, res.Errors[1].Message, "{{lead}}")
}

func TestContinuity_BranchSeesEnclosingScope(t *testing.T) {
	steps := []workflow.Step{
		read("step1", "rows", "list_rows"),
		&workflow.TransformStep{
			ID:    "step2",
			Input: "{{rows}}",
			Config: &workflow.BranchConfig{
				Condition: ir.Condition{Field: "n", Operator: "greater_than", Value: 1},
				Then:      []workflow.Step{send("step2_1", "{{rows}}")},
				Else:      []workflow.Step{send("step2_2", "{{item}}")},
			},
		},
	}
	res := Check(steps, nil)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, "step2_2", res.Errors[0].StepID)
}

// =============================================================================
// Type compatibility
// =============================================================================

func TestTypes_Mismatch(t *testing.T) {
	steps := []workflow.Step{
		read("step1", "receipt", "send_email"),
		&workflow.ScatterGatherStep{ID: "step2", OutputVariable: "r", Input: "{{receipt}}", ItemVariable: "x"},
	}
	res := Check(steps, nil)
	assert.Equal(t, []string{CodeTypeMismatch}, codes(res.Errors))
	assert.Equal(t, "step2", res.Errors[0].StepID)
}

func TestTypes_CompatibleInputs(t *testing.T) {
	for _, op := range []string{"list_rows", "search_records", "get_all_contacts", "read_range", "fetch"} {
		t.Run(op, func(t *testing.T) {
			steps := []workflow.Step{
				read("step1", "data", op),
				&workflow.ScatterGatherStep{ID: "step2", OutputVariable: "r", Input: "{{data}}", ItemVariable: "x"},
			}
			assert.Empty(t, Check(steps, nil).Errors)
		})
	}
}

func TestTypes_InferType(t *testing.T) {
	tests := []struct {
		step workflow.Step
		want ValueType
	}{
		{read("", "", "list_rows"), TypeArray},
		{read("", "", "search_messages"), TypeArray},
		{read("", "", "get_all_deals"), TypeArray},
		{read("", "", "get_record"), TypeAny},
		{read("", "", "post"), TypeObject},
		{read("", "", "create_file"), TypeObject},
		{read("", "", "query"), TypeAny},
		{&workflow.ScatterGatherStep{}, TypeArray},
		{&workflow.TransformStep{Config: &workflow.GroupConfig{}}, TypeArray},
		{&workflow.TransformStep{Config: &workflow.PartitionConfig{}}, TypeArray},
		{&workflow.TransformStep{Config: &workflow.RenderConfig{}}, TypeAny},
		{&workflow.AIProcessingStep{Op: "summarize"}, TypeAny},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InferType(tt.step), tt.step.Operation())
	}
}

// =============================================================================
// Completeness
// =============================================================================

func TestCompleteness_MissingAI(t *testing.T) {
	doc := testutil.MustDecode(t, testutil.AIChainIR())
	steps := []workflow.Step{
		read("step1", "tickets", "list_rows"),
		send("step2", "{{tickets}}"),
	}
	res := Check(steps, doc)

	assert.False(t, res.Valid)
	assert.Equal(t, []string{CodeMissingOperation}, codes(res.Errors))
}

func TestCompleteness_PartialShortfallWarns(t *testing.T) {
	doc := testutil.MustDecode(t, testutil.AIChainIR())
	steps := []workflow.Step{
		read("step1", "tickets", "list_rows"),
		&workflow.AIProcessingStep{ID: "step2", OutputVariable: "summaries", Op: "summarize", Input: "{{tickets}}"},
		send("step3", "{{summaries}}"),
	}
	res := Check(steps, doc)

	assert.True(t, res.Valid)
	assert.Equal(t, []string{CodeMissingOperation}, codes(res.Warnings))
	assert.Contains(t, res.Warnings[0].Message, "2 ai_processing")
}

func TestCompleteness_CountsNestedAI(t *testing.T) {
	doc := testutil.MustDecode(t, testutil.LoopIR())
	res, err := compiler.New(compiler.Options{}).Compile(doc)
	require.NoError(t, err)

	assert.Equal(t, 1, countDeclaredAI(doc))
	assert.Empty(t, Check(res.Steps, doc).Warnings)
}

func TestCompleteness_FiltersAndLoops(t *testing.T) {
	doc := testutil.MustDecode(t, testutil.FilteredSpreadsheetEmailIR())
	doc.Loops = []ir.Loop{{ForEach: "{{pipeline}}"}}

	steps := []workflow.Step{
		read("step1", "pipeline", "read_range"),
		send("step2", "{{pipeline}}"),
	}
	res := Check(steps, doc)
	assert.True(t, res.Valid)
	assert.Equal(t, []string{CodeMissingOperation, CodeMissingOperation}, codes(res.Warnings))
}

// =============================================================================
// Dead code
// =============================================================================

func TestDeadCode_OrphanedStep(t *testing.T) {
	steps := []workflow.Step{
		read("step1", "rows", "list_rows"),
		&workflow.TransformStep{ID: "step2", OutputVariable: "unused", Input: "{{rows}}", Config: &workflow.GroupConfig{GroupBy: "owner"}},
		&workflow.TransformStep{ID: "step3", OutputVariable: "kept", Input: "{{rows}}", Config: &workflow.FilterConfig{Field: "a", Operator: "is_empty"}},
		send("step4", "{{kept}}"),
	}
	res := Check(steps, nil)

	assert.True(t, res.Valid)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, CodeOrphanedStep, res.Warnings[0].Code)
	assert.Equal(t, KindUnusedOutput, res.Warnings[0].Kind)
	assert.Equal(t, "step2", res.Warnings[0].StepID)
}

func TestDeadCode_NonActionTerminal(t *testing.T) {
	// The terminal step is a root even when it is not an action.
	steps := []workflow.Step{
		read("step1", "rows", "list_rows"),
		&workflow.TransformStep{ID: "step2", OutputVariable: "report", Input: "{{rows}}", Config: &workflow.RenderConfig{Format: "csv"}},
	}
	assert.Empty(t, Check(steps, nil).Warnings)
}

func TestDeadCode_NestedReadsCount(t *testing.T) {
	steps := []workflow.Step{
		read("step1", "rows", "list_rows"),
		&workflow.TransformStep{ID: "step2", OutputVariable: "summary", Input: "{{rows}}", Config: &workflow.RenderConfig{Format: "plain_text"}},
		&workflow.ScatterGatherStep{
			ID:           "step3",
			Input:        "{{rows}}",
			ItemVariable: "row",
			Actions:      []workflow.Step{send("step3_1", "{{summary}}")},
		},
	}
	assert.Empty(t, Check(steps, nil).Warnings)
}

// =============================================================================
// Result shape
// =============================================================================

func TestCheck_Empty(t *testing.T) {
	res := Check(nil, nil)
	assert.True(t, res.Valid)
	assert.NotNil(t, res.Errors)
	assert.NotNil(t, res.Warnings)
}

func TestIssue_Error(t *testing.T) {
	assert.Equal(t, "[TYPE_MISMATCH] step2: bad", Issue{Code: CodeTypeMismatch, StepID: "step2", Message: "bad"}.Error())
	assert.Equal(t, "[MISSING_OPERATION] none", Issue{Code: CodeMissingOperation, Message: "none"}.Error())
}
