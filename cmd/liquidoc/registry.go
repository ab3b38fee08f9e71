package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bndr/gotabulate"
	"github.com/spf13/cobra"

	"github.com/liquidoc/liquidoc/pkg/registry"
)

func newRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Inspect and refresh the vendor type registry",
	}
	cmd.AddCommand(newRegistryShowCmd(), newRegistryInfoCmd(), newRegistryRefreshCmd())
	return cmd
}

func newRegistryShowCmd() *cobra.Command {
	var regPath string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "List the vendor type identifiers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := activeRegistry(regPath)
			if err != nil {
				return err
			}
			for _, name := range reg.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&regPath, "registry", "", "Vendor type dataset JSON file")
	return cmd
}

func newRegistryInfoCmd() *cobra.Command {
	var regPath string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show the active registry's provenance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := activeRegistry(regPath)
			if err != nil {
				return err
			}

			meta := reg.Meta()
			rows := [][]string{
				{"Name", meta.Name},
				{"Schema version", meta.SchemaVersion},
				{"Source", meta.Source},
				{"Origin", meta.Origin},
				{"Types", strconv.Itoa(reg.Len())},
			}
			if !meta.GeneratedAt.IsZero() {
				rows = append(rows, []string{"Generated", meta.GeneratedAt.Format(time.RFC3339)})
			}
			if !meta.FetchedAt.IsZero() {
				rows = append(rows, []string{"Fetched", meta.FetchedAt.Format(time.RFC3339)})
			}

			table := gotabulate.Create(rows)
			table.SetHeaders([]string{"Field", "Value"})
			table.SetAlign("left")
			fmt.Fprint(cmd.OutOrStdout(), table.Render("grid"))
			return nil
		},
	}
	cmd.Flags().StringVar(&regPath, "registry", "", "Vendor type dataset JSON file")
	return cmd
}

func newRegistryRefreshCmd() *cobra.Command {
	var url string

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch the dataset and persist a snapshot",
		Long: `Refresh downloads the vendor type dataset and writes it as a local
snapshot, which later runs pick up without network access.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadProjectConfig(".")
			if err != nil {
				return err
			}

			fetchURL := resolveRegistryURL(url, cfg)
			if fetchURL == "" {
				return fmt.Errorf("no registry URL configured: pass --url, set %s or registry.url in the config", envRegistryURL)
			}

			reg, err := registry.Fetch(cmd.Context(), fetchURL)
			if err != nil {
				return err
			}
			if err := registry.SaveSnapshot(snapshotRelPath, reg); err != nil {
				return err
			}

			meta := reg.Meta()
			fmt.Fprintf(cmd.OutOrStdout(), "Refreshed %s (schema %s): %d types written to %s\n",
				meta.Name, meta.SchemaVersion, reg.Len(), snapshotRelPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Dataset URL (default from config or "+envRegistryURL+")")
	return cmd
}

// activeRegistry resolves the registry exactly as check does.
func activeRegistry(flagPath string) (*registry.Registry, error) {
	cfg, err := loadProjectConfig(".")
	if err != nil {
		return nil, err
	}
	return resolveRegistry(flagPath, cfg)
}
