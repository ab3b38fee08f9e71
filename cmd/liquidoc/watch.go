package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/liquidoc/liquidoc/pkg/checker"
	"github.com/liquidoc/liquidoc/pkg/watch"
)

func newWatchCmd() *cobra.Command {
	var (
		opts     checkOptions
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Re-check templates as they change on disk",
		Long: `Watch runs a full check, then watches the tree and re-checks each
changed template after it settles. Stop with Ctrl-C.`,
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

			out := cmd.OutOrStdout()
			w, err := watch.New(chk, root, watch.Options{
				Debounce: debounce,
				Include:  opts.include,
				Exclude:  opts.exclude,
				OnResult: func(paths []string, sum *checker.Summary) {
					if paths == nil {
						checker.WriteHuman(out, sum)
						return
					}
					for _, f := range sum.Findings {
						fmt.Fprintln(out, f.String())
					}
					if len(sum.Findings) == 0 {
						fmt.Fprintf(out, "%s: ok\n", paths[0])
					}
				},
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return w.Run(ctx)
		},
	}

	bindCheckFlags(cmd, &opts)
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before a changed file re-checks")
	return cmd
}
