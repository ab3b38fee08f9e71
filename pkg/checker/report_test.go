package checker

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func sampleSummary() *Summary {
	return &Summary{
		FilesScanned:    3,
		FilesDocumented: 1,
		MissingDocs:     1,
		Diagnostics:     1,
		Duration:        125 * time.Millisecond,
		Findings: []Finding{
			{
				Path:     "snippets/bare.liquid",
				Line:     1,
				Column:   1,
				Severity: SeverityError,
				Kind:     KindMissingDocs,
				Message:  "Missing documentation",
			},
			{
				Path:     "snippets/typo.liquid",
				Line:     2,
				Column:   10,
				Severity: SeverityError,
				Kind:     KindParse,
				Message:  `Unknown parameter type on 2:10: "strang"`,
			},
		},
	}
}

func TestFinding_String(t *testing.T) {
	f := Finding{
		Path:     "sections/hero.liquid",
		Line:     4,
		Column:   12,
		Severity: SeverityWarning,
		Message:  "Missing documentation",
	}
	assert.Equal(t, "sections/hero.liquid:4:12: warning: Missing documentation", f.String())
}

func TestWriteHuman(t *testing.T) {
	var buf bytes.Buffer
	WriteHuman(&buf, sampleSummary())
	out := buf.String()

	assert.Contains(t, out, "snippets/bare.liquid:1:1: error: Missing documentation")
	assert.Contains(t, out, `snippets/typo.liquid:2:10: error: Unknown parameter type on 2:10: "strang"`)

	// Summary table after the findings.
	assert.Contains(t, out, "Files scanned")
	assert.Contains(t, out, "Missing docs")
	assert.Contains(t, out, "125ms")
	assert.Contains(t, out, "+")
	assert.Less(t, strings.Index(out, "bare.liquid"), strings.Index(out, "Files scanned"))
}

func TestWriteHuman_NoFindings(t *testing.T) {
	var buf bytes.Buffer
	WriteHuman(&buf, &Summary{FilesScanned: 2, FilesDocumented: 2})
	out := buf.String()

	assert.NotContains(t, out, "error:")
	assert.Contains(t, out, "Files scanned")
	assert.NotContains(t, out, "Load failures")
}

func TestWriteHuman_LoadFailuresRow(t *testing.T) {
	var buf bytes.Buffer
	WriteHuman(&buf, &Summary{FilesScanned: 1, LoadFailures: 1})
	assert.Contains(t, buf.String(), "Load failures")
}

func TestWriteCI(t *testing.T) {
	var annotations, plain bytes.Buffer
	WriteCI(&annotations, &plain, sampleSummary())

	assert.Contains(t, annotations.String(),
		"::error file=snippets/bare.liquid,line=1,col=1::Missing documentation")
	assert.Contains(t, annotations.String(),
		`::error file=snippets/typo.liquid,line=2,col=10::Unknown parameter type on 2:10: "strang"`)

	assert.Contains(t, plain.String(), "snippets/bare.liquid:1:1: error: Missing documentation")
	assert.Contains(t, plain.String(), "3 files scanned, 1 documented, 1 missing docs, 1 diagnostics in 125ms")

	// Annotation commands never leak into the plain stream.
	assert.NotContains(t, plain.String(), "::error")
}

func TestWriteCI_WarningSeverity(t *testing.T) {
	var annotations, plain bytes.Buffer
	sum := &Summary{
		FilesScanned: 1,
		MissingDocs:  1,
		Warn:         true,
		Findings: []Finding{{
			Path:     "snippets/bare.liquid",
			Line:     1,
			Column:   1,
			Severity: SeverityWarning,
			Kind:     KindMissingDocs,
			Message:  "Missing documentation",
		}},
	}
	WriteCI(&annotations, &plain, sum)

	assert.Contains(t, annotations.String(), "::warning file=snippets/bare.liquid")
	assert.Contains(t, plain.String(), "warning: Missing documentation")
}
