package irvalidate

import (
	_ "embed"
	"fmt"
	"strconv"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"

	"github.com/roach88/flowc/internal/ir"
)

//go:embed schema.cue
var schemaSource string

// requiredTopLevel are the fields every IR document must carry.
var requiredTopLevel = []string{"goal", "data_sources", "delivery"}

// checkStructure unifies the document with #IR and reports every CUE error.
// A cue.Context is not safe for concurrent use, so each call builds its own.
func checkStructure(doc map[string]any) (errs []ValidationError) {
	defer func() {
		if r := recover(); r != nil {
			errs = append(errs, ValidationError{
				Code:    CodeSchema,
				Message: fmt.Sprintf("schema evaluation failed: %v", r),
			})
		}
	}()

	for _, field := range requiredTopLevel {
		if _, ok := doc[field]; !ok {
			errs = append(errs, ValidationError{
				Path:    field,
				Code:    CodeMissingRequiredField,
				Message: "field is required",
			})
		}
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return append(errs, ValidationError{Code: CodeSchema, Message: "invalid embedded schema: " + err.Error()})
	}

	data := ctx.Encode(doc)
	if err := data.Err(); err != nil {
		return append(errs, ValidationError{Code: CodeSchema, Message: err.Error()})
	}

	unified := schema.LookupPath(cue.ParsePath("#IR")).Unify(data)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		errs = append(errs, convertCUEErrors(err)...)
	}
	return dedupeByPath(errs)
}

// convertCUEErrors flattens a CUE error list into path-qualified validation errors.
func convertCUEErrors(err error) []ValidationError {
	var out []ValidationError
	for _, e := range errors.Errors(err) {
		format, args := e.Msg()
		msg := fmt.Sprintf(format, args...)
		code := CodeSchema
		if strings.Contains(msg, "required") || strings.Contains(msg, "incomplete") {
			code = CodeMissingRequiredField
		}
		out = append(out, ValidationError{
			Path:    cuePath(e.Path()),
			Code:    code,
			Message: msg,
		})
	}
	return out
}

// cuePath renders CUE selectors as a document path, dropping the #IR root.
func cuePath(sels []string) string {
	path := ""
	for _, sel := range sels {
		if strings.HasPrefix(sel, "#") {
			continue
		}
		if i, err := strconv.Atoi(sel); err == nil {
			path = ir.Path(path, i)
			continue
		}
		path = ir.Path(path, strings.Trim(sel, `"`))
	}
	return path
}

// dedupeByPath keeps the first error reported for each path. A failed
// disjunction yields one error per alternative; one is enough.
func dedupeByPath(errs []ValidationError) []ValidationError {
	seen := make(map[string]bool, len(errs))
	out := errs[:0]
	for _, e := range errs {
		key := e.Path
		if key == "" {
			key = e.Code + ":" + e.Message
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, e)
	}
	return out
}
