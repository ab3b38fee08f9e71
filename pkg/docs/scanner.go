package docs

import "strings"

// blockSpan is one documentation region located by scanBlocks: the text
// between the end of the opening marker and the start of the closing marker,
// plus the offsets needed to translate positions back into the file.
type blockSpan struct {
	inner     string
	start     int // byte offset of inner within the source
	openStart int // byte offset of the '{' of the opening marker
}

// scanBlocks walks the source once and collects every documentation block
// region in order. Tag names match ASCII-case-insensitively and require a
// non-alphanumeric boundary, so {% enddoc1 %} does not close a block. One
// trim dash is tolerated on either side of a tag ({%- doc -%}), as are
// arbitrary whitespace runs ({%doc%}, {%   doc  %}).
//
// Comment regions are skipped wholesale: {% comment %}..{% endcomment %},
// {% raw %}..{% endraw %}, and inline {% # .. %} tags. A doc tag inside any
// of them is plain text.
//
// An opening marker with no closing marker before end of input is reported
// via the second return value (byte offset of its '{') and ends the scan:
// nothing after it can close either.
func scanBlocks(src string) ([]blockSpan, []int) {
	var spans []blockSpan
	var unterminated []int

	i := 0
	for {
		rel := strings.Index(src[i:], "{%")
		if rel < 0 {
			break
		}
		open := i + rel
		j := skipSpace(src, skipDash(src, open+2))
		switch {
		case j < len(src) && src[j] == '#':
			// Inline comment; the marker needs no trailing boundary
			// ({% #note %} is as much a comment as {% # note %}).
			if close := strings.Index(src[j:], "%}"); close >= 0 {
				i = j + close + 2
			} else {
				i = len(src)
			}
		case isTagWord(src, j, "raw"):
			i = skipPastEndTag(src, j+len("raw"), "endraw")
		case isTagWord(src, j, "comment"):
			i = skipPastEndTag(src, j+len("comment"), "endcomment")
		case isTagWord(src, j, "doc"):
			innerStart, ok := tagClose(src, j+len("doc"))
			if !ok {
				// Junk between the tag name and %}: not an opening marker.
				i = open + 2
				continue
			}
			markerStart, resume, found := findEndTag(src, innerStart, "enddoc")
			if !found {
				unterminated = append(unterminated, open)
				return spans, unterminated
			}
			spans = append(spans, blockSpan{
				inner:     src[innerStart:markerStart],
				start:     innerStart,
				openStart: open,
			})
			i = resume
		default:
			i = open + 2
		}
	}
	return spans, unterminated
}

// findEndTag locates the next {% word %} marker at or after from. It returns
// the offset of the marker's '{', the offset scanning should resume from,
// and whether a marker was found. The tag close is not validated: matching
// the word alone ends the region, and a malformed close simply becomes
// trailing text.
func findEndTag(src string, from int, word string) (markerStart, resume int, found bool) {
	i := from
	for {
		rel := strings.Index(src[i:], "{%")
		if rel < 0 {
			return 0, 0, false
		}
		start := i + rel
		j := skipSpace(src, skipDash(src, start+2))
		if isTagWord(src, j, word) {
			end := j + len(word)
			if after, ok := tagClose(src, end); ok {
				return start, after, true
			}
			return start, end, true
		}
		i = start + 2
	}
}

// skipPastEndTag returns the offset just past the next {% word %} marker, or
// end of input when the region never closes.
func skipPastEndTag(src string, from int, word string) int {
	i := from
	for {
		rel := strings.Index(src[i:], "{%")
		if rel < 0 {
			return len(src)
		}
		start := i + rel
		j := skipSpace(src, skipDash(src, start+2))
		if isTagWord(src, j, word) {
			end := j + len(word)
			if after, ok := tagClose(src, end); ok {
				return after
			}
			return end
		}
		i = start + 2
	}
}

// tagClose expects optional whitespace, an optional trim dash and the %}
// delimiter at offset i. It returns the offset just past the delimiter.
func tagClose(src string, i int) (int, bool) {
	i = skipDash(src, skipSpace(src, i))
	if i+1 < len(src) && src[i] == '%' && src[i+1] == '}' {
		return i + 2, true
	}
	return 0, false
}

// isTagWord reports whether word appears at offset i, ASCII case folded,
// followed by a non-alphanumeric boundary.
func isTagWord(src string, i int, word string) bool {
	end := i + len(word)
	if end > len(src) || !strings.EqualFold(src[i:end], word) {
		return false
	}
	return end == len(src) || !isAlnum(src[end])
}

// skipDash consumes at most one trim dash.
func skipDash(src string, i int) int {
	if i < len(src) && src[i] == '-' {
		i++
	}
	return i
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}
