package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bndr/gotabulate"
	"github.com/spf13/cobra"

	"github.com/liquidoc/liquidoc/pkg/docs"
)

const maxWidth = 80

func newParseCmd() *cobra.Command {
	var (
		asJSON       bool
		showExamples bool
		regPath      string
	)

	cmd := &cobra.Command{
		Use:   "parse <file>...",
		Short: "Parse documentation blocks and print them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadProjectConfig(".")
			if err != nil {
				return err
			}
			reg, err := resolveRegistry(regPath, cfg)
			if err != nil {
				return err
			}
			parser := docs.NewParser(reg)

			results := make([]docs.FileResult, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				blocks, diags := parser.Parse(string(data))
				results = append(results, docs.FileResult{Path: path, Blocks: blocks, Diagnostics: diags})
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}

			out := cmd.OutOrStdout()
			for i, fr := range results {
				if i > 0 {
					fmt.Fprintln(out)
				}
				writeTemplateDoc(out, fr, showExamples)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print machine-readable JSON")
	cmd.Flags().BoolVar(&showExamples, "examples", false, "Include example bodies in the outline")
	cmd.Flags().StringVar(&regPath, "registry", "", "Vendor type dataset JSON file")
	return cmd
}

// writeTemplateDoc prints one file's documentation as a human outline.
func writeTemplateDoc(w io.Writer, fr docs.FileResult, showExamples bool) {
	fmt.Fprintln(w, fr.Path)

	if len(fr.Blocks) == 0 {
		fmt.Fprintln(w, "  (no documentation block)")
	}
	for i, block := range fr.Blocks {
		if i > 0 {
			fmt.Fprintln(w)
		}
		if block.Description != "" {
			writeWrapped(w, block.Description, 2, maxWidth)
		}
		if len(block.Params) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintln(w, renderParamsTable(block.Params))
		}
		switch {
		case showExamples && len(block.Examples) > 0:
			fmt.Fprintln(w)
			fmt.Fprintln(w, "  Examples")
			for _, ex := range block.Examples {
				fmt.Fprintln(w, "  "+strings.Repeat("─", 40))
				for _, line := range strings.Split(ex, "\n") {
					fmt.Fprintf(w, "  %s\n", line)
				}
			}
		case len(block.Examples) > 0:
			fmt.Fprintf(w, "  Examples: %d\n", len(block.Examples))
		}
	}

	for _, d := range fr.Diagnostics {
		fmt.Fprintf(w, "%s:%d:%d: error: %s\n", fr.Path, d.Line, d.Column, d.Message)
	}
}

// renderParamsTable renders a block's params as a grid.
func renderParamsTable(params []docs.Param) string {
	rows := make([][]string, 0, len(params))
	for _, p := range params {
		required := "yes"
		if p.Optional {
			required = "no"
		}
		rows = append(rows, []string{p.Name, p.Type.String(), required, p.Description})
	}
	table := gotabulate.Create(rows)
	table.SetHeaders([]string{"Param", "Type", "Required", "Description"})
	table.SetAlign("left")
	return table.Render("grid")
}

// writeWrapped prints text word-wrapped at width with the given left
// indent.
func writeWrapped(w io.Writer, text string, indent, width int) {
	words := strings.Fields(text)
	prefix := strings.Repeat(" ", indent)
	line := prefix
	for _, word := range words {
		if len(line)+len(word)+1 > width && line != prefix {
			fmt.Fprintln(w, line)
			line = prefix + word
			continue
		}
		if line == prefix {
			line += word
		} else {
			line += " " + word
		}
	}
	if line != prefix {
		fmt.Fprintln(w, line)
	}
}
