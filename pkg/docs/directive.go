package docs

import "strings"

// parseState is the directive state machine's current mode. Non-directive
// lines are routed by state: description continuation, param description
// continuation, or example body.
type parseState int

const (
	stateDescription parseState = iota
	stateInParam
	stateInExample
)

// blockLine is one line of a block interior with the absolute byte offset of
// its first byte.
type blockLine struct {
	text   string
	offset int
}

// splitBlockLines splits inner on newlines, tracking absolute offsets. base
// is the offset of inner's first byte within the file.
func splitBlockLines(inner string, base int) []blockLine {
	lines := make([]blockLine, 0, strings.Count(inner, "\n")+1)
	start := 0
	for {
		rel := strings.IndexByte(inner[start:], '\n')
		if rel < 0 {
			lines = append(lines, blockLine{text: inner[start:], offset: base + start})
			return lines
		}
		lines = append(lines, blockLine{text: inner[start : start+rel], offset: base + start})
		start += rel + 1
	}
}

// blockParser accumulates one DocBlock while feeding lines through the state
// machine. Directive lines switch state and close whatever was in progress;
// a partially accumulated param or example is never lost at block end.
type blockParser struct {
	reg TypeRegistry
	ix  *lineIndex

	diags []Diagnostic
	state parseState

	descLines []string

	params    []Param
	param     Param
	paramDesc []string
	paramLive bool

	examples    []string
	example     []string
	exampleLive bool
}

// parseBlock parses one block interior into a DocBlock, with diagnostics in
// file coordinates.
func parseBlock(span blockSpan, reg TypeRegistry, ix *lineIndex) (DocBlock, []Diagnostic) {
	p := &blockParser{reg: reg, ix: ix}
	for _, line := range splitBlockLines(span.inner, span.start) {
		p.feed(line)
	}
	return p.finish(), p.diags
}

func (p *blockParser) feed(l blockLine) {
	trimmed := strings.TrimSpace(l.text)
	switch {
	case isDirective(trimmed, "description"):
		p.closeParam()
		p.closeExample()
		p.state = stateDescription
		if rest := stripSeparator(trimmed[len("@description"):]); rest != "" {
			p.descLines = append(p.descLines, rest)
		}

	case isDirective(trimmed, "param"):
		p.closeParam()
		p.closeExample()
		p.state = stateInParam
		p.parseParamLine(l)

	case isDirective(trimmed, "example"):
		p.closeParam()
		p.closeExample()
		p.state = stateInExample
		p.exampleLive = true
		if rest := stripSeparator(trimmed[len("@example"):]); rest != "" {
			p.example = append(p.example, rest)
		}

	default:
		switch p.state {
		case stateDescription:
			p.descLines = append(p.descLines, l.text)
		case stateInParam:
			// Continuation lines extend the param description. When the
			// directive line was dropped, its continuation goes with it.
			if p.paramLive {
				p.paramDesc = append(p.paramDesc, strings.TrimSpace(l.text))
			}
		case stateInExample:
			p.example = append(p.example, l.text)
		}
	}
}

func (p *blockParser) finish() DocBlock {
	p.closeParam()
	p.closeExample()
	block := DocBlock{
		Description: strings.TrimSpace(strings.Join(p.descLines, "\n")),
		Params:      p.params,
		Examples:    p.examples,
	}
	if block.Params == nil {
		block.Params = make([]Param, 0)
	}
	if block.Examples == nil {
		block.Examples = make([]string, 0)
	}
	return block
}

// parseParamLine consumes one @param directive line. Grammar, left to right:
// optional {type} expression, then a name token (bracketed to mark the
// parameter optional), then an optional dash separator and free text. A
// directive without an extractable name yields a diagnostic, not a param.
func (p *blockParser) parseParamLine(l blockLine) {
	text := l.text
	at := skipSpace(text, 0)
	k := skipSpace(text, at+len("@param"))

	var param Param

	if k < len(text) && text[k] == '{' {
		brace := k
		end := strings.IndexByte(text[k:], '}')
		if end < 0 {
			p.errorAt(l.offset+brace, "Unterminated type expression")
			return
		}
		param.Type = p.resolveType(text[k+1:k+end], l.offset+brace)
		k += end + 1
	}
	k = skipSpace(text, k)

	if k < len(text) && text[k] == '[' {
		bracket := k
		k++
		end := strings.IndexByte(text[k:], ']')
		if end < 0 {
			p.errorAt(l.offset+bracket, "Missing closing bracket for optional parameter")
			return
		}
		param.Name = strings.TrimSpace(text[k : k+end])
		param.Optional = true
		k += end + 1
	} else {
		start := k
		for k < len(text) && !isSpace(text[k]) {
			k++
		}
		param.Name = text[start:k]
	}
	if param.Name == "" {
		p.errorAt(l.offset+at, "Missing parameter name")
		return
	}

	p.param = param
	p.paramLive = true
	if rest := stripSeparator(text[k:]); rest != "" {
		p.paramDesc = append(p.paramDesc, rest)
	}
}

func (p *blockParser) closeParam() {
	if p.paramLive {
		p.param.Description = strings.Join(trimBlankEdges(p.paramDesc), "\n")
		p.params = append(p.params, p.param)
		p.paramLive = false
	}
	p.paramDesc = nil
}

func (p *blockParser) closeExample() {
	if p.exampleLive {
		p.examples = append(p.examples, strings.Join(trimBlankEdges(p.example), "\n"))
		p.exampleLive = false
	}
	p.example = nil
}

func (p *blockParser) errorAt(off int, msg string) {
	line, col := p.ix.pos(off)
	p.diags = append(p.diags, Diagnostic{Line: line, Column: col, Message: msg})
}

// isDirective reports whether a trimmed line starts the named directive:
// "@"+word followed by end of line or a non-alphanumeric byte. "@paramount"
// is prose; "@param{string} x" is a directive.
func isDirective(trimmed, word string) bool {
	if len(trimmed) < 1+len(word) || trimmed[0] != '@' || trimmed[1:1+len(word)] != word {
		return false
	}
	rest := trimmed[1+len(word):]
	return rest == "" || !isAlnum(rest[0])
}

// stripSeparator trims surrounding whitespace and at most one leading dash:
// " - text" becomes "text", "-- text" keeps its second dash.
func stripSeparator(s string) string {
	s = strings.TrimSpace(s)
	if after, ok := strings.CutPrefix(s, "-"); ok {
		return strings.TrimSpace(after)
	}
	return s
}

// trimBlankEdges drops leading and trailing whitespace-only lines.
func trimBlankEdges(lines []string) []string {
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return lines[start:end]
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}
