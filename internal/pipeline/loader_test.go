package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func TestLoad_MergesFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		t.Helper()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	write("a.csv", "Date,Type,Category,Description,Amount\n2025-11-02,expense,Food,Pizza Hut,25.50\n")
	write("b.csv", "Date,Type,Category,Description,Amount\n2025-11-01,income,Salary,Monthly Salary,3500\nbad,row\n")
	write("c.csv", "Date,Type\n")

	var calls atomic.Int64
	res, err := Load(context.Background(), []string{dir}, 2, func(current, total int) {
		calls.Add(1)
		if total != 3 {
			t.Errorf("total = %d, want 3", total)
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalFiles != 3 || res.ParsedFiles != 2 || res.FileErrors != 1 {
		t.Errorf("files: total=%d parsed=%d failed=%d", res.TotalFiles, res.ParsedFiles, res.FileErrors)
	}
	if res.ParseErrors != 1 {
		t.Errorf("ParseErrors = %d, want 1", res.ParseErrors)
	}
	if len(res.Transactions) != 2 || res.Transactions[0].Description != "Pizza Hut" {
		t.Errorf("transactions = %+v", res.Transactions)
	}
	if calls.Load() != 3 {
		t.Errorf("progress called %d times, want 3", calls.Load())
	}
}

func TestLoad_Empty(t *testing.T) {
	res, err := Load(context.Background(), []string{t.TempDir()}, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if res.TotalFiles != 0 || len(res.Transactions) != 0 {
		t.Errorf("got %+v", res)
	}
}
