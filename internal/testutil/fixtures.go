package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/flowc/internal/ir"
)

// Each fixture returns a fresh document so tests may mutate it freely.

// MinimalIR has one data source, one delivery and empty optional arrays.
func MinimalIR() map[string]any {
	return map[string]any{
		"ir_version": ir.CurrentVersion,
		"goal":       "Send the weekly pipeline report",
		"data_sources": []any{
			map[string]any{"type": "spreadsheet", "source": "pipeline", "location": "Pipeline Q4"},
		},
		"filters":       []any{},
		"ai_operations": []any{},
		"conditionals":  []any{},
		"loops":         []any{},
		"partitions":    []any{},
		"grouping":      nil,
		"rendering":     nil,
		"delivery": []any{
			map[string]any{"method": "email", "recipient": "team@example.com", "subject": "Weekly pipeline"},
		},
		"edge_cases":              []any{},
		"clarifications_required": []any{},
	}
}

// FilteredSpreadsheetEmailIR reads a spreadsheet, keeps stage 4 deals and emails them.
func FilteredSpreadsheetEmailIR() map[string]any {
	doc := MinimalIR()
	doc["goal"] = "Email me all stage 4 deals"
	doc["filters"] = []any{
		map[string]any{"field": "stage", "operator": "equals", "value": 4},
	}
	doc["edge_cases"] = []any{
		map[string]any{"condition": "no_rows_after_filter", "action": "skip", "message": "No stage 4 deals"},
	}
	return doc
}

// SalesRepIR emails each sales rep their own opportunities.
func SalesRepIR() map[string]any {
	doc := MinimalIR()
	doc["goal"] = "Email each sales rep their opportunities"
	doc["data_sources"] = []any{
		map[string]any{"type": "spreadsheet", "source": "opportunities", "location": "CRM Export", "tab": "Open"},
	}
	doc["grouping"] = map[string]any{"group_by": "sales_rep", "emit_per_group": true}
	doc["rendering"] = map[string]any{"type": "html_table", "columns": []any{"name", "amount", "stage"}}
	doc["delivery"] = []any{
		map[string]any{"method": "email", "recipient_source": "sales_rep_email", "subject": "Your opportunities"},
	}
	return doc
}

// AIChainIR summarizes and then classifies support tickets.
func AIChainIR() map[string]any {
	doc := MinimalIR()
	doc["goal"] = "Summarize support tickets and classify urgency"
	doc["data_sources"] = []any{
		map[string]any{"type": "table", "source": "tickets"},
	}
	doc["ai_operations"] = []any{
		map[string]any{
			"type":            "summarize",
			"instruction":     "Summarize each ticket in two sentences",
			"output_schema":   map[string]any{"type": "string"},
			"output_variable": "summaries",
		},
		map[string]any{
			"type":          "classify",
			"instruction":   "Classify urgency",
			"output_schema": map[string]any{"type": "enum", "values": []any{"low", "medium", "high"}},
		},
	}
	return doc
}

// LoopIR runs an AI step and a delivery for every row, plus one unresolved reference.
func LoopIR() map[string]any {
	doc := MinimalIR()
	doc["goal"] = "Draft a follow-up for every lead"
	doc["data_sources"] = []any{
		map[string]any{"type": "crm", "source": "leads", "output_variable": "leads"},
	}
	doc["loops"] = []any{
		map[string]any{
			"for_each":      "{{leads}}",
			"item_variable": "lead",
			"do": []any{
				map[string]any{"ai_operation": map[string]any{
					"type":            "generate",
					"instruction":     "Write a follow-up for {{lead.name}}",
					"output_schema":   map[string]any{"type": "string"},
					"output_variable": "draft",
				}},
				map[string]any{"delivery": map[string]any{
					"method":    "email",
					"recipient": "{{lead.email}}",
					"body":      "{{draft}}",
				}},
				"slack",
			},
		},
	}
	doc["delivery"] = []any{
		map[string]any{"method": "slack", "channel": "#sales"},
	}
	return doc
}

// MustDecode converts a fixture document into the typed IR.
func MustDecode(t testing.TB, doc map[string]any) *ir.DeclarativeIR {
	t.Helper()
	out, err := ir.Decode(doc)
	require.NoError(t, err)
	return out
}
