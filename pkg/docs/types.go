// Package docs parses documentation annotation blocks embedded in Liquid
// template files.
//
// A documentation block is delimited by {% doc %} and {% enddoc %} tags and
// carries three kinds of directives: @description, @param and @example. The
// parser locates blocks (skipping comment and raw regions), runs a
// line-oriented state machine over each block interior, and resolves @param
// type expressions against the built-in scalars and an injected vendor type
// registry. Malformed input never fails a parse; every problem degrades to a
// position-tracked Diagnostic alongside a best-effort result.
package docs

// ScalarKind is one of the four built-in scalar type names.
type ScalarKind string

const (
	ScalarString  ScalarKind = "string"
	ScalarNumber  ScalarKind = "number"
	ScalarBoolean ScalarKind = "boolean"
	ScalarObject  ScalarKind = "object"
)

// TypeKind discriminates the TypeSpec variants.
type TypeKind string

const (
	// KindScalar is a bare scalar type such as {string}.
	KindScalar TypeKind = "scalar"

	// KindArray is a scalar with the trailing array marker, such as {string[]}.
	KindArray TypeKind = "array"

	// KindVendor is an identifier validated against the vendor type registry,
	// such as {product}.
	KindVendor TypeKind = "vendor"
)

// TypeSpec is the resolved type of a @param directive. Exactly one variant
// applies per value: Scalar is set for KindScalar and KindArray, Vendor for
// KindVendor.
type TypeSpec struct {
	Kind   TypeKind   `json:"kind"`
	Scalar ScalarKind `json:"scalar,omitempty"`
	Vendor string     `json:"vendor,omitempty"`
}

// ScalarType returns a TypeSpec for a built-in scalar.
func ScalarType(kind ScalarKind) *TypeSpec {
	return &TypeSpec{Kind: KindScalar, Scalar: kind}
}

// ArrayOf returns a TypeSpec for an array of a built-in scalar.
func ArrayOf(kind ScalarKind) *TypeSpec {
	return &TypeSpec{Kind: KindArray, Scalar: kind}
}

// VendorType returns a TypeSpec for a registry-validated identifier.
func VendorType(identifier string) *TypeSpec {
	return &TypeSpec{Kind: KindVendor, Vendor: identifier}
}

// String renders the type the way it is written in source: "string",
// "boolean[]", "product".
func (t *TypeSpec) String() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case KindArray:
		return string(t.Scalar) + "[]"
	case KindVendor:
		return t.Vendor
	default:
		return string(t.Scalar)
	}
}

// Param is one @param directive.
type Param struct {
	// Name is the parameter name. Always non-empty: a directive without an
	// extractable name is dropped with a diagnostic, never synthesized.
	Name string `json:"name"`

	// Description is the free text after the name, possibly spanning
	// continuation lines. May be empty.
	Description string `json:"description"`

	// Type is nil when the directive carried no type expression or when
	// resolution failed.
	Type *TypeSpec `json:"type,omitempty"`

	// Optional is true iff the name was written in brackets: [name].
	Optional bool `json:"optional"`
}

// DocBlock is one parsed documentation block.
type DocBlock struct {
	Description string `json:"description"`

	// Params in source order.
	Params []Param `json:"params"`

	// Examples holds one raw body per @example directive, in source order.
	// Empty (never nil) when the block has no @example.
	Examples []string `json:"examples"`
}

// Diagnostic reports a problem in the scanned text. Diagnostics never abort
// a parse; they accumulate next to whatever could still be extracted.
type Diagnostic struct {
	// Line is 1-based.
	Line int `json:"line"`

	// Column is the 1-based byte offset within the line.
	Column int `json:"column"`

	Message string `json:"message"`
}

// SourceFile pairs a path with already-loaded content. The parser performs
// no I/O; callers supply content.
type SourceFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// FileResult is the outcome of parsing one file. A file with no
// documentation block has an empty (not nil) Blocks slice; callers
// distinguish "no blocks" from "present but empty" by slice length.
type FileResult struct {
	Path        string       `json:"path"`
	Blocks      []DocBlock   `json:"blocks"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}
