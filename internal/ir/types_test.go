package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoopActionUnmarshalString(t *testing.T) {
	var a LoopAction
	require.NoError(t, json.Unmarshal([]byte(`"send_email"`), &a))
	assert.Equal(t, "reference", a.Kind())
	assert.Equal(t, "send_email", a.Ref)
}

func TestLoopActionUnmarshalObject(t *testing.T) {
	var a LoopAction
	require.NoError(t, json.Unmarshal([]byte(`{"delivery":{"method":"email","recipient":"{{rep.email}}"}}`), &a))
	assert.Equal(t, "delivery", a.Kind())
	require.NotNil(t, a.Delivery)
	assert.Equal(t, "email", a.Delivery.Method)
}

func TestLoopActionMarshalRoundTrip(t *testing.T) {
	in := []LoopAction{
		{Ref: "notify"},
		{Transform: &TransformSpec{Operation: "map", Field: "amount"}},
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `["notify",{"transform":{"operation":"map","field":"amount"}}]`, string(data))

	var out []LoopAction
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestLoopActionEmpty(t *testing.T) {
	assert.Equal(t, "", LoopAction{}.Kind())
}

func TestDecode(t *testing.T) {
	doc := map[string]any{
		"ir_version": "2.0",
		"goal":       "Send deals",
		"data_sources": []any{
			map[string]any{"type": "spreadsheet", "source": "deals", "location": "Q4"},
		},
		"filters": []any{
			map[string]any{"field": "stage", "operator": "equals", "value": 4},
		},
		"grouping": map[string]any{"group_by": "sales_rep", "emit_per_group": true},
		"delivery": []any{
			map[string]any{"method": "email", "recipient_source": "email"},
		},
		"clarifications_required": []any{},
	}

	out, err := Decode(doc)
	require.NoError(t, err)
	assert.Equal(t, "Send deals", out.Goal)
	require.Len(t, out.DataSources, 1)
	assert.Equal(t, "Q4", out.DataSources[0].Location)
	require.Len(t, out.Filters, 1)
	assert.EqualValues(t, 4, out.Filters[0].Value)
	require.NotNil(t, out.Grouping)
	assert.True(t, out.Grouping.EmitPerGroup)
	assert.Equal(t, "email", out.Delivery[0].Method)
}

func TestDecodeWrongShape(t *testing.T) {
	_, err := Decode(map[string]any{"data_sources": "not a list"})
	assert.Error(t, err)
}
