// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/site-import/internal/ledger"
	"github.com/pdiddy/site-import/pkg/types"
)

const ledgerDirName = ".site-import"

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the import ledger (runs, export)",
	Long: `Ledger reads the SQLite record of import runs: which Markdown files each
run wrote or skipped and how every asset download ended.`,
}

// --- runs subcommand ---

var ledgerRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent import runs",
	RunE:  runLedgerRuns,
}

func runLedgerRuns(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	store, err := ledger.NewStore(ledgerConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(cmd.Context(), limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-5s  %-10s  %-20s  %-10s  %7s  %7s  %6s  %6s\n",
		"ID", "Kind", "Started", "Status", "Written", "Skipped", "Assets", "Failed")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 86))
	for _, r := range runs {
		fmt.Fprintf(os.Stdout, "%-5d  %-10s  %-20s  %-10s  %7d  %7d  %6d  %6d\n",
			r.ID, r.Kind, r.StartedAt.Local().Format("2006-01-02 15:04:05"), r.Status,
			r.Written, r.Skipped, r.Assets, r.Failed)
	}
	return nil
}

// --- export subcommand ---

var ledgerExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the ledger to YAML or JSON",
	Long: `Export writes recorded runs with their entries and asset outcomes to
export.yaml or export.json in the ledger directory.`,
	RunE: runLedgerExport,
}

func runLedgerExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	limit, _ := cmd.Flags().GetInt("limit")

	store, err := ledger.NewStore(ledgerConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	path, err := store.Export(cmd.Context(), format, limit)
	if err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", path)
	return nil
}

// --- shared helpers ---

// ledgerConfig locates the ledger: --ledger-dir, or .site-import under the
// WordPress resources directory.
func ledgerConfig() types.LedgerConfig {
	dir := viper.GetString("ledger.dir")
	if dir == "" {
		dir = filepath.Join(viper.GetString("wordpress.resources_dir"), ledgerDirName)
	}
	return types.LedgerConfig{Dir: dir}
}

// withRun records fn as a ledger run of the given kind. With --no-ledger fn
// receives a nil run.
func withRun(ctx context.Context, kind string, fn func(run *ledger.Run) error) error {
	if viper.GetBool("ledger.disabled") {
		return fn(nil)
	}

	store, err := ledger.NewStore(ledgerConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	run, err := store.BeginRun(ctx, kind)
	if err != nil {
		return err
	}
	runErr := fn(run)
	if err := run.Finish(runErr); err != nil {
		logger.Warn("could not finish ledger run", "run", run.ID, "error", err)
	}
	return runErr
}

func init() {
	ledgerRunsCmd.Flags().Int("limit", 20, "maximum runs to list (0 = all)")
	ledgerRunsCmd.Flags().Bool("json", false, "output runs as JSON")

	ledgerExportCmd.Flags().String("format", ledger.FormatYAML, "export format: yaml or json")
	ledgerExportCmd.Flags().Int("limit", 0, "maximum runs to export (0 = all)")

	ledgerCmd.AddCommand(ledgerRunsCmd)
	ledgerCmd.AddCommand(ledgerExportCmd)

	rootCmd.AddCommand(ledgerCmd)
}
