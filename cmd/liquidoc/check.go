package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/liquidoc/liquidoc/pkg/checker"
)

// errCheckFailed maps a failed check to exit code 1 without printing a
// second error line; the findings already said everything.
var errCheckFailed = errors.New("check failed")

// checkOptions holds the pipeline flags shared by check and watch.
type checkOptions struct {
	warn       bool
	eparse     bool
	noCache    bool
	include    []string
	exclude    []string
	batchBytes int64
	workers    int
	registry   string
}

// bindCheckFlags registers the shared pipeline flags on cmd.
func bindCheckFlags(cmd *cobra.Command, opts *checkOptions) {
	cmd.Flags().BoolVarP(&opts.warn, "warn", "w", false, "Report missing documentation as warnings, not failures")
	cmd.Flags().BoolVarP(&opts.eparse, "eparse", "e", false, "Fail the run on parse diagnostics")
	cmd.Flags().StringArrayVar(&opts.include, "include", nil, "Include glob, replaces the default (repeatable)")
	cmd.Flags().StringArrayVar(&opts.exclude, "exclude", nil, "Exclude glob, replaces the defaults (repeatable)")
	cmd.Flags().Int64Var(&opts.batchBytes, "batch-bytes", 0, "Parse batch flush threshold in bytes (0 = 10MB)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Parse worker count (0 = sized from CPU count)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "Disable the parse result cache")
	cmd.Flags().StringVar(&opts.registry, "registry", "", "Vendor type dataset JSON file")
}

// applyConfig fills in values from the project config for flags the user
// left untouched on the command line.
func (o *checkOptions) applyConfig(cmd *cobra.Command, cfg *ProjectConfig) {
	if cfg == nil {
		return
	}
	flags := cmd.Flags()
	if !flags.Changed("warn") {
		o.warn = cfg.Warn
	}
	if !flags.Changed("eparse") {
		o.eparse = cfg.Eparse
	}
	if !flags.Changed("include") && len(cfg.Include) > 0 {
		o.include = cfg.Include
	}
	if !flags.Changed("exclude") && len(cfg.Exclude) > 0 {
		o.exclude = cfg.Exclude
	}
	if !flags.Changed("batch-bytes") && cfg.BatchBytes > 0 {
		o.batchBytes = cfg.BatchBytes
	}
	if !flags.Changed("workers") && cfg.Workers > 0 {
		o.workers = cfg.Workers
	}
}

// newChecker builds the checker both check and watch run.
func (o *checkOptions) newChecker(root string, cfg *ProjectConfig) (*checker.Checker, error) {
	reg, err := resolveRegistry(o.registry, cfg)
	if err != nil {
		return nil, err
	}
	return checker.New(checker.Config{
		Root:     root,
		Include:  o.include,
		Exclude:  o.exclude,
		Warn:     o.warn,
		Eparse:   o.eparse,
		MaxBytes: o.batchBytes,
		Workers:  o.workers,
		NoCache:  o.noCache,
		Registry: reg,
	}), nil
}

func newCheckCmd() *cobra.Command {
	var (
		opts checkOptions
		ci   bool
	)

	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Check Liquid templates for documentation blocks",
		Long: `Check scans a template tree (or a single file), parses every {% doc %}
block and reports templates with missing documentation or malformed
directives. Exits 1 when the run fails under the active policy.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			cfg, err := loadProjectConfig(root)
			if err != nil {
				return err
			}
			opts.applyConfig(cmd, cfg)

			chk, err := opts.newChecker(root, cfg)
			if err != nil {
				return err
			}
			defer chk.Close()

			sum, err := chk.Run(cmd.Context())
			if err != nil {
				return err
			}

			if ci {
				checker.WriteCI(cmd.OutOrStdout(), cmd.ErrOrStderr(), sum)
			} else {
				checker.WriteHuman(cmd.OutOrStdout(), sum)
			}

			if sum.Failed() {
				return errCheckFailed
			}
			return nil
		},
	}

	bindCheckFlags(cmd, &opts)
	cmd.Flags().BoolVarP(&ci, "ci", "c", false, "Emit GitHub annotations on stdout, findings on stderr")
	return cmd
}
