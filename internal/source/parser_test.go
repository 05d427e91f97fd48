package source

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/rupee/internal/model"
)

func writeFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestParseCSV_QuotedFields(t *testing.T) {
	res := ParseCSV(strings.NewReader(strings.Join([]string{
		"Date,Type,Category,Description,Amount",
		`2025-11-02,expense,Food,"Pizza, with friends",25.50`,
		"2025-11-01,income,Salary,Monthly Salary,3500",
	}, "\n")))
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(res.Transactions) != 2 {
		t.Fatalf("got %d transactions, want 2", len(res.Transactions))
	}
	first := res.Transactions[0]
	if first.Description != "Pizza, with friends" {
		t.Errorf("Description = %q", first.Description)
	}
	if first.Amount.String() != "25.5" {
		t.Errorf("Amount = %s, want 25.5", first.Amount)
	}
	if first.Emoji != "🍕" {
		t.Errorf("Emoji = %q, want catalog glyph", first.Emoji)
	}
	if res.Transactions[1].Type != model.Income {
		t.Errorf("second row type = %q", res.Transactions[1].Type)
	}
}

func TestParseCSV_RowErrorsCarryLine(t *testing.T) {
	res := ParseCSV(strings.NewReader(strings.Join([]string{
		"Date,Type,Category,Description,Amount",
		"2025-11-02,expense,Food,ok,10",
		"not-a-date,expense,Food,bad,10",
		"2025-11-03,transfer,Food,bad,10",
	}, "\n")))
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(res.Transactions) != 1 || res.ParseErrors != 2 {
		t.Fatalf("got %d transactions and %d errors", len(res.Transactions), res.ParseErrors)
	}
	if !strings.Contains(res.RowErrors[0].Error(), "line 3") {
		t.Errorf("first row error = %v, want line 3", res.RowErrors[0])
	}
}

func TestParseCSV_MissingColumn(t *testing.T) {
	res := ParseCSV(strings.NewReader("Date,Type,Category\n2025-11-02,expense,Food\n"))
	if res.Err == nil {
		t.Fatal("expected header error")
	}
}

func TestParseJSONL(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "tx.jsonl",
		`{"type":"income","amount":500,"category":"Freelance","description":"Web Design Project","date":"2025-10-28"}`,
		``,
		`{"type":"expense","amount":"oops","category":"Food","date":"2025-10-29"}`,
	)

	res := ParseFile(DiscoveredFile{Path: path, Format: FormatJSONL})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(res.Transactions) != 1 || res.ParseErrors != 1 {
		t.Fatalf("got %d transactions and %d errors", len(res.Transactions), res.ParseErrors)
	}
	if res.Transactions[0].Emoji != "💻" {
		t.Errorf("Emoji = %q", res.Transactions[0].Emoji)
	}
}

func TestScanPaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.csv", "Date,Type,Category,Description,Amount")
	writeFile(t, dir, "a.jsonl", "")
	writeFile(t, dir, "notes.txt", "ignored")

	files, err := ScanPaths([]string{dir})
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Fatalf("got %d files, want 2", len(files))
	}
	if filepath.Base(files[0].Path) != "a.jsonl" || files[0].Format != FormatJSONL {
		t.Errorf("first file = %+v", files[0])
	}

	if _, err := ScanPaths([]string{filepath.Join(dir, "notes.txt")}); err == nil {
		t.Error("expected error for explicit unsupported file")
	}
}
