package docs

import (
	"sort"
	"strings"
)

// lineIndex translates byte offsets into 1-based line/column positions.
// Columns are byte offsets within the line, so multi-byte runes count as
// their encoded length.
type lineIndex struct {
	// starts holds the byte offset of the first byte of each line.
	// starts[0] is always 0.
	starts []int
}

func newLineIndex(src string) *lineIndex {
	starts := make([]int, 1, strings.Count(src, "\n")+1)
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{starts: starts}
}

// pos returns the 1-based line and column of a byte offset.
func (ix *lineIndex) pos(off int) (line, col int) {
	i := sort.Search(len(ix.starts), func(i int) bool { return ix.starts[i] > off }) - 1
	return i + 1, off - ix.starts[i] + 1
}
