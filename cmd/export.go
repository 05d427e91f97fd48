package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/rupee/internal/export"
	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/pipeline"

	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export transactions to CSV or XLSX",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var (
	exportFormat string
	exportOutput string
	exportQuery  string
	exportType   string
)

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "", "csv or xlsx (default from the output extension, else csv)")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default transactions_<date>.<format>, - for stdout)")
	exportCmd.Flags().StringVarP(&exportQuery, "query", "s", "", "Only export matching transactions")
	exportCmd.Flags().StringVarP(&exportType, "type", "t", "all", "Filter: all, income or expense")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	format := strings.ToLower(exportFormat)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(exportOutput)), ".")
		if format != "xlsx" {
			format = "csv"
		}
	}
	if format != "csv" && format != "xlsx" {
		return fmt.Errorf("unknown export format %q: want csv or xlsx", exportFormat)
	}
	filter, err := model.ParseTypeFilter(exportType)
	if err != nil {
		return err
	}

	l, closeFn, err := openLedger(cmd.Context())
	if err != nil {
		return err
	}
	defer closeFn()

	txs := pipeline.FilterTransactions(l.Transactions(), exportQuery, filter)

	out := exportOutput
	if out == "" {
		out = fmt.Sprintf("transactions_%s.%s", time.Now().Format("20060102"), format)
	}

	var (
		w  io.Writer = os.Stdout
		bw *bufio.Writer
	)
	if out != "-" {
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("creating %s: %w", out, err)
		}
		defer func() { _ = f.Close() }()
		bw = bufio.NewWriter(f)
		w = bw
	}

	switch format {
	case "xlsx":
		err = export.WriteXLSX(w, txs)
	default:
		err = export.WriteCSV(w, txs)
	}
	if err != nil {
		return err
	}
	if bw != nil {
		if err := bw.Flush(); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
	}

	if out != "-" {
		progress("  Exported %d transactions to %s\n", len(txs), out)
	}
	return nil
}
