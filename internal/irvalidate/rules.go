package irvalidate

import (
	"fmt"
	"iter"
	"regexp"
	"slices"
	"strings"

	"github.com/roach88/flowc/internal/ir"
)

// stepReferencePatterns match text that looks like a variable reference
// written without placeholder braces.
var stepReferencePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bstep_?\d+\.[A-Za-z_]\w*`),
	regexp.MustCompile(`\bsteps\.[A-Za-z_]\w*\.[A-Za-z_]\w*`),
	regexp.MustCompile(`\$\{[A-Za-z_][\w.]*\}`),
	regexp.MustCompile(`\$[A-Za-z_]\w*\.[A-Za-z_]\w*`),
}

// checkRules applies the custom semantic rules to a normalized document.
func checkRules(doc map[string]any) []ValidationError {
	var errs []ValidationError
	errs = append(errs, checkForbiddenTokens(doc, "")...)
	errs = append(errs, checkVariableSyntax(doc, "")...)
	errs = append(errs, checkAIOperations(doc)...)
	errs = append(errs, checkControlFlow(doc)...)
	errs = append(errs, checkDeliveries(doc)...)
	return errs
}

// checkForbiddenTokens reports every key naming an execution-level concept.
func checkForbiddenTokens(v any, path string) []ValidationError {
	var errs []ValidationError
	switch val := v.(type) {
	case map[string]any:
		for _, k := range ir.SortedKeys(val) {
			p := ir.Path(path, k)
			if slices.Contains(ir.ForbiddenTokens, strings.ToLower(k)) {
				errs = append(errs, ValidationError{
					Path:    p,
					Code:    CodeForbiddenToken,
					Message: fmt.Sprintf("execution token %q is not allowed in IR; IR expresses intent, not plugin bindings", k),
				})
			}
			errs = append(errs, checkForbiddenTokens(val[k], p)...)
		}
	case []any:
		for i, elem := range val {
			errs = append(errs, checkForbiddenTokens(elem, ir.Path(path, i))...)
		}
	}
	return errs
}

// checkVariableSyntax flags step-style references outside {{}} placeholders.
func checkVariableSyntax(v any, path string) []ValidationError {
	var errs []ValidationError
	switch val := v.(type) {
	case string:
		for _, seg := range ir.ParseTemplate(val) {
			if seg.Ref != nil {
				continue
			}
			for _, re := range stepReferencePatterns {
				if m := re.FindString(seg.Literal); m != "" {
					errs = append(errs, ValidationError{
						Path:    path,
						Code:    CodeInvalidVariableSyntax,
						Message: fmt.Sprintf("%q looks like a variable reference; use {{name}} syntax", m),
					})
					break
				}
			}
		}
	case map[string]any:
		for _, k := range ir.SortedKeys(val) {
			errs = append(errs, checkVariableSyntax(val[k], ir.Path(path, k))...)
		}
	case []any:
		for i, elem := range val {
			errs = append(errs, checkVariableSyntax(elem, ir.Path(path, i))...)
		}
	}
	return errs
}

// checkAIOperations requires an output_schema with a type on every AI
// operation, top-level and nested inside loops and conditionals.
func checkAIOperations(doc map[string]any) []ValidationError {
	var errs []ValidationError
	for i, op := range objects(doc["ai_operations"]) {
		errs = append(errs, checkAIOperation(op, ir.Path("ai_operations", i))...)
	}
	eachNestedAction(doc, func(action map[string]any, path string) {
		if op, ok := action["ai_operation"].(map[string]any); ok {
			errs = append(errs, checkAIOperation(op, ir.Path(path, "ai_operation"))...)
		}
	})
	return errs
}

func checkAIOperation(op map[string]any, path string) []ValidationError {
	schema, ok := op["output_schema"].(map[string]any)
	if !ok {
		return []ValidationError{{
			Path:    ir.Path(path, "output_schema"),
			Code:    CodeMissingRequiredField,
			Message: "ai_operation requires an output_schema",
		}}
	}
	if t, _ := schema["type"].(string); t == "" {
		return []ValidationError{{
			Path:    ir.Path(ir.Path(path, "output_schema"), "type"),
			Code:    CodeMissingRequiredField,
			Message: "output_schema requires a type",
		}}
	}
	return nil
}

// checkControlFlow requires when+then on conditionals and for_each+do on loops.
func checkControlFlow(doc map[string]any) []ValidationError {
	var errs []ValidationError
	for i, c := range objects(doc["conditionals"]) {
		path := ir.Path("conditionals", i)
		if _, ok := c["when"].(map[string]any); !ok {
			errs = append(errs, missing(ir.Path(path, "when"), "conditional requires a when condition"))
		}
		if len(list(c["then"])) == 0 {
			errs = append(errs, missing(ir.Path(path, "then"), "conditional requires a non-empty then"))
		}
	}
	for i, l := range objects(doc["loops"]) {
		path := ir.Path("loops", i)
		if s, _ := l["for_each"].(string); s == "" {
			errs = append(errs, missing(ir.Path(path, "for_each"), "loop requires for_each"))
		}
		if len(list(l["do"])) == 0 {
			errs = append(errs, missing(ir.Path(path, "do"), "loop requires a non-empty do"))
		}
	}
	return errs
}

// checkDeliveries enforces method-specific delivery fields.
func checkDeliveries(doc map[string]any) []ValidationError {
	var errs []ValidationError
	for i, d := range objects(doc["delivery"]) {
		errs = append(errs, checkDelivery(d, ir.Path("delivery", i))...)
	}
	eachNestedAction(doc, func(action map[string]any, path string) {
		if d, ok := action["delivery"].(map[string]any); ok {
			errs = append(errs, checkDelivery(d, ir.Path(path, "delivery"))...)
		}
	})
	return errs
}

func checkDelivery(d map[string]any, path string) []ValidationError {
	method, _ := d["method"].(string)
	switch method {
	case "email":
		if str(d, "recipient") == "" && str(d, "recipient_source") == "" {
			return []ValidationError{missing(ir.Path(path, "recipient"), "email delivery requires recipient or recipient_source")}
		}
	case "slack":
		if str(d, "channel") == "" {
			return []ValidationError{missing(ir.Path(path, "channel"), "slack delivery requires channel")}
		}
	case "webhook":
		if str(d, "url") == "" {
			return []ValidationError{missing(ir.Path(path, "url"), "webhook delivery requires url")}
		}
	}
	return nil
}

// eachNestedAction visits every object action in loops[].do and
// conditionals[].then/else.
func eachNestedAction(doc map[string]any, fn func(action map[string]any, path string)) {
	for i, l := range objects(doc["loops"]) {
		for j, a := range objects(l["do"]) {
			fn(a, ir.Path(ir.Path(ir.Path("loops", i), "do"), j))
		}
	}
	for i, c := range objects(doc["conditionals"]) {
		for _, branch := range []string{"then", "else"} {
			for j, a := range objects(c[branch]) {
				fn(a, ir.Path(ir.Path(ir.Path("conditionals", i), branch), j))
			}
		}
	}
}

func missing(path, msg string) ValidationError {
	return ValidationError{Path: path, Code: CodeMissingRequiredField, Message: msg}
}

func list(v any) []any {
	l, _ := v.([]any)
	return l
}

// objects yields the map elements of a list with their original index.
func objects(v any) iter.Seq2[int, map[string]any] {
	return func(yield func(int, map[string]any) bool) {
		for i, elem := range list(v) {
			if m, ok := elem.(map[string]any); ok {
				if !yield(i, m) {
					return
				}
			}
		}
	}
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
