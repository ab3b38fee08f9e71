package docs

import (
	"fmt"
	"strings"
)

// TypeRegistry reports whether a vendor type identifier is legal. The parser
// treats it as an immutable, opaque read-only set; a nil registry means no
// vendor identifiers are valid.
type TypeRegistry interface {
	Valid(identifier string) bool
}

var scalarKinds = map[string]ScalarKind{
	"string":  ScalarString,
	"number":  ScalarNumber,
	"boolean": ScalarBoolean,
	"object":  ScalarObject,
}

// resolveTypeExpr classifies the raw text between the braces of a type
// expression. Scalar names match ASCII-case-insensitively; a trailing []
// marker turns a scalar into an array. Vendor identifiers match the registry
// exactly and do not combine with the array marker. ok is false when the
// expression matches nothing.
func resolveTypeExpr(expr string, reg TypeRegistry) (spec *TypeSpec, ok bool) {
	ident := strings.TrimSpace(expr)
	isArray := false
	if after, found := strings.CutSuffix(ident, "[]"); found {
		ident = strings.TrimSpace(after)
		isArray = true
	}
	if kind, found := scalarKinds[strings.ToLower(ident)]; found {
		if isArray {
			return ArrayOf(kind), true
		}
		return ScalarType(kind), true
	}
	if !isArray && reg != nil && reg.Valid(ident) {
		return VendorType(ident), true
	}
	return nil, false
}

// resolveType resolves a type expression and emits the unknown-type
// diagnostic on failure. openOff is the absolute byte offset of the opening
// brace, which positions the diagnostic.
func (p *blockParser) resolveType(expr string, openOff int) *TypeSpec {
	spec, ok := resolveTypeExpr(expr, p.reg)
	if !ok {
		line, col := p.ix.pos(openOff)
		p.diags = append(p.diags, Diagnostic{
			Line:    line,
			Column:  col,
			Message: fmt.Sprintf("Unknown parameter type on %d:%d: \"%s\"", line, col, strings.TrimSpace(expr)),
		})
		return nil
	}
	return spec
}
