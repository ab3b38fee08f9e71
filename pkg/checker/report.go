package checker

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/bndr/gotabulate"
)

// WriteHuman prints findings one per line followed by a summary table.
func WriteHuman(w io.Writer, sum *Summary) {
	for _, f := range sum.Findings {
		fmt.Fprintln(w, f.String())
	}
	if len(sum.Findings) > 0 {
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, renderSummaryTable(sum))
}

// WriteCI prints plain findings to plain (normally stderr) and workflow
// annotation commands to annotations (normally stdout), where the CI
// runner's log scanner picks them up.
func WriteCI(annotations, plain io.Writer, sum *Summary) {
	for _, f := range sum.Findings {
		fmt.Fprintln(plain, f.String())
		fmt.Fprintf(annotations, "::%s file=%s,line=%d,col=%d::%s\n",
			f.Severity, f.Path, f.Line, f.Column, f.Message)
	}
	fmt.Fprintf(plain, "%d files scanned, %d documented, %d missing docs, %d diagnostics in %s\n",
		sum.FilesScanned, sum.FilesDocumented, sum.MissingDocs, sum.Diagnostics,
		sum.Duration.Round(time.Millisecond))
}

func renderSummaryTable(sum *Summary) string {
	rows := [][]string{
		{"Files scanned", strconv.Itoa(sum.FilesScanned)},
		{"Documented", strconv.Itoa(sum.FilesDocumented)},
		{"Missing docs", strconv.Itoa(sum.MissingDocs)},
		{"Diagnostics", strconv.Itoa(sum.Diagnostics)},
	}
	if sum.LoadFailures > 0 {
		rows = append(rows, []string{"Load failures", strconv.Itoa(sum.LoadFailures)})
	}
	rows = append(rows, []string{"Duration", sum.Duration.Round(time.Millisecond).String()})

	t := gotabulate.Create(rows)
	t.SetHeaders([]string{"Metric", "Value"})
	t.SetAlign("left")
	return t.Render("grid")
}
