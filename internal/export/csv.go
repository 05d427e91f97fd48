// Package export writes ledger transactions to spreadsheet formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/theirongolddev/rupee/internal/model"
)

// Row renders one transaction in ExportHeader column order.
func Row(tx model.Transaction) []string {
	return []string{
		tx.Date.String(),
		string(tx.Type),
		tx.Category,
		tx.Description,
		tx.Amount.String(),
	}
}

// WriteCSV writes the header and one row per transaction, in the order given.
// Fields containing commas, quotes or newlines are quoted.
func WriteCSV(w io.Writer, txs []model.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(model.ExportHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, tx := range txs {
		if err := cw.Write(Row(tx)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
