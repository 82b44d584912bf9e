package ir

import "strings"

// VarRef is a parsed {{name}} or {{name.prop.sub}} placeholder.
type VarRef struct {
	Name string   `json:"name"`
	Path []string `json:"path,omitempty"`
}

// String renders the reference back into placeholder syntax.
func (r VarRef) String() string {
	if len(r.Path) == 0 {
		return "{{" + r.Name + "}}"
	}
	return "{{" + r.Name + "." + strings.Join(r.Path, ".") + "}}"
}

// Segment is one piece of a parsed template: literal text or a reference.
type Segment struct {
	Literal string
	Ref     *VarRef
}

// ParseTemplate splits s into literal and reference segments.
// Text between "{{" and "}}" that is not a valid dotted identifier stays literal.
func ParseTemplate(s string) []Segment {
	var segs []Segment
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, Segment{Literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(s); {
		open := strings.Index(s[i:], "{{")
		if open < 0 {
			lit.WriteString(s[i:])
			break
		}
		open += i
		end := strings.Index(s[open+2:], "}}")
		if end < 0 {
			lit.WriteString(s[i:])
			break
		}
		end += open + 2

		lit.WriteString(s[i:open])
		inner := strings.TrimSpace(s[open+2 : end])
		if ref, ok := parseRef(inner); ok {
			flush()
			segs = append(segs, Segment{Ref: &ref})
		} else {
			lit.WriteString(s[open : end+2])
		}
		i = end + 2
	}
	flush()
	return segs
}

// Refs returns every reference in s in order of appearance.
func Refs(s string) []VarRef {
	var refs []VarRef
	for _, seg := range ParseTemplate(s) {
		if seg.Ref != nil {
			refs = append(refs, *seg.Ref)
		}
	}
	return refs
}

// SingleRef reports whether s is exactly one placeholder with no literal text.
func SingleRef(s string) (VarRef, bool) {
	segs := ParseTemplate(strings.TrimSpace(s))
	if len(segs) == 1 && segs[0].Ref != nil {
		return *segs[0].Ref, true
	}
	return VarRef{}, false
}

// Ref wraps a variable name (optionally dotted) in placeholder syntax.
// Values already in placeholder form are returned unchanged.
func Ref(name string) string {
	if _, ok := SingleRef(name); ok {
		return strings.TrimSpace(name)
	}
	return "{{" + strings.TrimSpace(name) + "}}"
}

// IsIdentifierPath reports whether s is a dotted identifier like a.b.c.
func IsIdentifierPath(s string) bool {
	_, ok := parseRef(s)
	return ok
}

func parseRef(inner string) (VarRef, bool) {
	if inner == "" {
		return VarRef{}, false
	}
	parts := strings.Split(inner, ".")
	if !isIdentifier(parts[0]) {
		return VarRef{}, false
	}
	for _, p := range parts[1:] {
		if !isPathElem(p) {
			return VarRef{}, false
		}
	}
	ref := VarRef{Name: parts[0]}
	if len(parts) > 1 {
		ref.Path = parts[1:]
	}
	return ref, true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// isPathElem allows numeric indexes (items.0.name) as well as identifiers.
func isPathElem(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '_' && !(r >= 'a' && r <= 'z') && !(r >= 'A' && r <= 'Z') && !(r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}
