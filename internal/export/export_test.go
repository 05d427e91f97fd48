package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/theirongolddev/rupee/internal/model"
)

func sample() []model.Transaction {
	return []model.Transaction{
		{
			Type: model.Expense, Category: "Food", Description: "Pizza, large",
			Amount: decimal.RequireFromString("25.50"), Date: model.NewDate(2025, 11, 2),
		},
		{
			Type: model.Income, Category: "Salary", Description: "Monthly Salary",
			Amount: decimal.NewFromInt(3500), Date: model.NewDate(2025, 11, 1),
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sample()); err != nil {
		t.Fatal(err)
	}

	want := "Date,Type,Category,Description,Amount\n" +
		"2025-11-02,expense,Food,\"Pizza, large\",25.5\n" +
		"2025-11-01,income,Salary,Monthly Salary,3500\n"
	if buf.String() != want {
		t.Errorf("csv =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestWriteCSV_RoundTripsEmbeddedComma(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sample()); err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records", len(records))
	}
	if records[1][3] != "Pizza, large" || len(records[1]) != 5 {
		t.Errorf("row = %q", records[1])
	}
}

func TestWriteCSV_EmptyHasHeaderOnly(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "Date,Type,Category,Description,Amount\n" {
		t.Errorf("got %q", buf.String())
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sample()); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != TransactionsSheet || sheets[1] != SummarySheet {
		t.Fatalf("sheets = %v", sheets)
	}

	rows, err := f.GetRows(TransactionsSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[0][0] != "Date" || rows[1][3] != "Pizza, large" {
		t.Errorf("transaction rows = %v", rows)
	}

	label, _ := f.GetCellValue(SummarySheet, "A1")
	income, _ := f.GetCellValue(SummarySheet, "B1")
	if label != "Total Income" || income != "3500" {
		t.Errorf("summary A1:B1 = %q %q", label, income)
	}
	cat, _ := f.GetCellValue(SummarySheet, "A7")
	if cat != "Food" {
		t.Errorf("first category = %q", cat)
	}
}
