package cmd

import (
	"fmt"
	"os"

	"github.com/theirongolddev/rupee/internal/pipeline"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file-or-dir>...",
	Short: "Import transactions from CSV or JSONL files",
	Long: "Import transactions from CSV files with a Date,Type,Category,Description,Amount\n" +
		"header (as written by `rupee export`) or from JSON-lines files. Directories are\n" +
		"scanned for .csv and .jsonl files.",
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

var (
	importWorkers int
	importDryRun  bool
)

func init() {
	importCmd.Flags().IntVarP(&importWorkers, "workers", "w", 0, "Parallel parsers (default from config, else CPU count)")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Parse and report without saving")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	workers := importWorkers
	if workers <= 0 {
		workers = appCfg.General.ImportWorkers
	}

	progress("  Scanning files...\n")
	result, err := pipeline.Load(cmd.Context(), args, workers, func(current, total int) {
		progress("\r  Parsing [%d/%d]", current, total)
	})
	if err != nil {
		return err
	}
	if result.TotalFiles == 0 {
		fmt.Println("  No .csv or .jsonl files found.")
		return nil
	}
	progress("\r  Parsed %d transactions from %d files    \n", len(result.Transactions), result.ParsedFiles)

	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "  %v\n", e)
	}
	if result.ParseErrors > len(result.Errors)-result.FileErrors {
		fmt.Fprintf(os.Stderr, "  ... %d row errors in total\n", result.ParseErrors)
	}

	if importDryRun || len(result.Transactions) == 0 {
		return nil
	}

	l, closeFn, err := openLedger(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	n, err := l.ImportTransactions(cmd.Context(), result.Transactions)
	if err != nil {
		return err
	}
	fmt.Printf("  Imported %d transactions\n", n)
	return nil
}
