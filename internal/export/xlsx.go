package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/pipeline"
)

const (
	TransactionsSheet = "Transactions"
	SummarySheet      = "Summary"
)

// ContentTypeXLSX is the MIME type of WriteXLSX output.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// WriteXLSX writes a workbook with the transactions on one sheet and the
// headline totals plus expense-by-category on a second.
func WriteXLSX(w io.Writer, txs []model.Transaction) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// The default sheet is renamed rather than deleted so index 0 stays valid.
	if err := f.SetSheetName("Sheet1", TransactionsSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	if err := writeTransactions(f, txs); err != nil {
		return err
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}
	if err := writeSummary(f, txs); err != nil {
		return err
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeTransactions(f *excelize.File, txs []model.Transaction) error {
	if err := f.SetSheetRow(TransactionsSheet, "A1", &model.ExportHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, tx := range txs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			tx.Date.String(),
			string(tx.Type),
			tx.Category,
			tx.Description,
			tx.Amount.InexactFloat64(),
		}
		if err := f.SetSheetRow(TransactionsSheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	widths := map[string]float64{"A": 12, "B": 10, "C": 16, "D": 30, "E": 12}
	for col, width := range widths {
		if err := f.SetColWidth(TransactionsSheet, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

func writeSummary(f *excelize.File, txs []model.Transaction) error {
	totals := pipeline.Totals(txs)
	rows := [][]any{
		{"Total Income", totals.Income.InexactFloat64()},
		{"Total Expense", totals.Expense.InexactFloat64()},
		{"Balance", totals.Balance.InexactFloat64()},
		{"Savings Rate (%)", totals.SavingsRate},
		{},
		{"Category", "Expense"},
	}
	for _, c := range pipeline.ExpenseByCategory(txs) {
		rows = append(rows, []any{c.Name, c.Value.InexactFloat64()})
	}

	for i := range rows {
		if len(rows[i]) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}
	return f.SetColWidth(SummarySheet, "A", "A", 18)
}
