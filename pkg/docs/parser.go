package docs

import "strings"

// Parser is the documentation parsing engine. It is stateless apart from the
// injected vendor type registry, so a single Parser is safe for concurrent
// use and parsing the same content twice yields identical results.
type Parser struct {
	reg TypeRegistry
}

// NewParser returns a Parser resolving vendor types against reg. A nil
// registry is valid: every non-scalar identifier then fails resolution.
func NewParser(reg TypeRegistry) *Parser {
	return &Parser{reg: reg}
}

// Parse extracts every documentation block from one in-memory text, in
// source order, plus all diagnostics. Malformed input never returns an
// error; it degrades to diagnostics and a best-effort result.
func (p *Parser) Parse(content string) ([]DocBlock, []Diagnostic) {
	blocks := make([]DocBlock, 0)
	diags := make([]Diagnostic, 0)

	// A file without a single tag delimiter can hold neither a block nor a
	// block diagnostic.
	if !strings.Contains(content, "{%") {
		return blocks, diags
	}

	spans, unterminated := scanBlocks(content)
	if len(spans) == 0 && len(unterminated) == 0 {
		return blocks, diags
	}

	ix := newLineIndex(content)
	for _, span := range spans {
		block, blockDiags := parseBlock(span, p.reg, ix)
		blocks = append(blocks, block)
		diags = append(diags, blockDiags...)
	}
	for _, off := range unterminated {
		line, col := ix.pos(off)
		diags = append(diags, Diagnostic{Line: line, Column: col, Message: "Unterminated block"})
	}
	return blocks, diags
}

// ParseFiles parses many files in one engine invocation. Result order
// matches input order; a file with zero documentation blocks yields a
// FileResult with an empty Blocks slice.
func (p *Parser) ParseFiles(files []SourceFile) []FileResult {
	results := make([]FileResult, 0, len(files))
	for _, f := range files {
		blocks, diags := p.Parse(f.Content)
		results = append(results, FileResult{Path: f.Path, Blocks: blocks, Diagnostics: diags})
	}
	return results
}
