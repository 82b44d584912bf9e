package irvalidate

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/flowc/internal/ir"
)

var (
	// spacedPlaceholder matches {{ name }} with padding inside the braces.
	spacedPlaceholder = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z0-9_]+)*)\s*\}\}`)
	// singlePlaceholder matches {name}; callers check it is not already doubled.
	singlePlaceholder = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z0-9_]+)*)\}`)
)

// Normalize returns a normalized deep copy of doc. The input is not modified.
//
//   - data_sources and delivery given as a single object become one-element arrays
//   - clarifications_required given as a string becomes a one-element array and
//     defaults to an empty array
//   - ir_version defaults to the current version
//   - leaf strings are trimmed and NFC-normalized
//   - {x} and {{ x }} are repaired to {{x}}
//
// Normalize is idempotent.
func Normalize(doc map[string]any) map[string]any {
	out, _ := normalizeValue(doc).(map[string]any)
	if out == nil {
		out = map[string]any{}
	}

	for _, field := range []string{"data_sources", "delivery"} {
		if obj, ok := out[field].(map[string]any); ok {
			out[field] = []any{obj}
		}
	}

	switch c := out["clarifications_required"].(type) {
	case nil:
		out["clarifications_required"] = []any{}
	case string:
		if c == "" {
			out["clarifications_required"] = []any{}
		} else {
			out["clarifications_required"] = []any{c}
		}
	}

	switch v := out["ir_version"].(type) {
	case nil:
		out["ir_version"] = ir.CurrentVersion
	case string:
		if v == "" {
			out["ir_version"] = ir.CurrentVersion
		}
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case string:
		return NormalizeString(val)
	case map[string]any:
		if val == nil {
			return nil
		}
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = normalizeValue(elem)
		}
		return out
	case []any:
		if val == nil {
			return nil
		}
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = normalizeValue(elem)
		}
		return out
	case []string:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = NormalizeString(elem)
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = normalizeValue(elem)
		}
		return out
	default:
		return v
	}
}

// NormalizeString trims, NFC-normalizes and repairs placeholder syntax in s.
func NormalizeString(s string) string {
	s = norm.NFC.String(strings.TrimSpace(s))
	if !strings.Contains(s, "{") {
		return s
	}
	s = spacedPlaceholder.ReplaceAllString(s, "{{$1}}")
	return repairSingleBraces(s)
}

// repairSingleBraces doubles {x} unless it is already part of {{x}} or is a
// shell-style ${x}, which the variable syntax rule reports instead.
func repairSingleBraces(s string) string {
	matches := singlePlaceholder.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s
	}
	var b strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if (start > 0 && (s[start-1] == '{' || s[start-1] == '$')) || (end < len(s) && s[end] == '}') {
			continue
		}
		b.WriteString(s[last:start])
		b.WriteString("{{")
		b.WriteString(s[m[2]:m[3]])
		b.WriteString("}}")
		last = end
	}
	b.WriteString(s[last:])
	return b.String()
}
