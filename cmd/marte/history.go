// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/marte/internal/catalog"
	"github.com/pdiddy/marte/internal/physics"
	"github.com/pdiddy/marte/pkg/types"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect the catalog of saved runs (list, show, export)",
	Long: `History reads the local SQLite catalog populated by solve --save and
branches --save.`,
}

// --- list subcommand ---

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved runs, newest first",
	RunE:  runHistoryList,
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	store, k, err := openCatalog()
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := store.List(context.Background(), limit)
	if err != nil {
		return err
	}

	if format != "table" {
		if runs == nil {
			runs = []types.RunRecord{}
		}
		return encode(os.Stdout, format, runs)
	}
	printRunTable(os.Stdout, k, runs)
	return nil
}

// --- show subcommand ---

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one saved run with all its candidates",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	format, err := outputFormat(cmd)
	if err != nil {
		return err
	}
	store, k, err := openCatalog()
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.Get(context.Background(), args[0])
	if err != nil {
		return err
	}

	if format != "table" {
		return encode(os.Stdout, format, run)
	}

	req := run.Request
	fmt.Fprintf(os.Stdout, "Run %s (%s, %s)\n", run.ID, run.Kind, run.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(os.Stdout, "  model %s, target %s, t0 %.4f y, tf %.4f y, tau %.4f y, a %.4g m/s²\n\n",
		req.Model, req.Ephemeris, k.Years(req.Departure), k.Years(req.Arrival), k.Years(req.ProperTime), req.Acceleration)
	for i, c := range run.Candidates {
		fmt.Fprintf(os.Stdout, "Candidate %d\n", i+1)
		printCandidate(os.Stdout, k, c)
		fmt.Fprintln(os.Stdout)
	}
	return nil
}

// --- export subcommand ---

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the catalog to YAML or JSON",
	Long: `Export writes every saved run to export.yaml or export.json in the
catalog directory.`,
	RunE: runHistoryExport,
}

func runHistoryExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, _, err := openCatalog()
	if err != nil {
		return err
	}
	defer store.Close()

	var path string
	switch format {
	case "yaml", "":
		path, err = store.ExportYAML(context.Background())
	case "json":
		path, err = store.ExportJSON(context.Background())
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
	if err != nil {
		return err
	}
	fmt.Println("Exported to", path)
	return nil
}

// --- shared helpers ---

func openCatalog() (*catalog.Store, physics.Constants, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, physics.Constants{}, err
	}
	store, err := catalog.NewStore(cfg.Catalog)
	if err != nil {
		return nil, physics.Constants{}, err
	}
	return store, physics.FromConfig(cfg.Physics), nil
}

func init() {
	addOutputFlags(historyListCmd)
	historyListCmd.Flags().Int("limit", 0, "maximum runs to list (0 = use config max_results)")

	addOutputFlags(historyShowCmd)

	historyExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyExportCmd)

	rootCmd.AddCommand(historyCmd)
}
