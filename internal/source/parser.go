// Package source discovers and parses transaction files for import.
package source

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/rupee/internal/model"
)

// ParseFile reads one CSV or JSONL file into transactions. A malformed row is
// counted and skipped; only an unreadable file or a bad CSV header fails the file.
func ParseFile(df DiscoveredFile) ParseResult {
	f, err := os.Open(df.Path)
	if err != nil {
		return ParseResult{File: df, Err: err}
	}
	defer func() { _ = f.Close() }()

	var res ParseResult
	switch df.Format {
	case FormatJSONL:
		res = ParseJSONL(f)
	default:
		res = ParseCSV(f)
	}
	res.File = df
	for i, e := range res.RowErrors {
		res.RowErrors[i] = fmt.Errorf("%s: %w", df.Path, e)
	}
	if res.Err != nil {
		res.Err = fmt.Errorf("%s: %w", df.Path, res.Err)
	}
	return res
}

// ParseCSV reads the export layout: Date,Type,Category,Description,Amount.
// Extra trailing columns Emoji, Recurring and Notes are honored when present.
func ParseCSV(r io.Reader) ParseResult {
	var res ParseResult

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return res
		}
		res.Err = fmt.Errorf("reading header: %w", err)
		return res
	}
	cols, err := headerIndex(header)
	if err != nil {
		res.Err = err
		return res
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.rowError(err)
			continue
		}
		line, _ := cr.FieldPos(0)
		tx, err := parseRecord(record, cols)
		if err != nil {
			res.rowError(fmt.Errorf("line %d: %w", line, err))
			continue
		}
		res.Transactions = append(res.Transactions, tx)
	}
	return res
}

// ParseJSONL reads one JSON transaction object per line. Blank lines are skipped.
func ParseJSONL(r io.Reader) ParseResult {
	var res ParseResult

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}
		var tx model.Transaction
		if err := json.Unmarshal(raw, &tx); err != nil {
			res.rowError(fmt.Errorf("line %d: %w", line, err))
			continue
		}
		finish(&tx)
		if err := tx.Validate(); err != nil {
			res.rowError(fmt.Errorf("line %d: %w", line, err))
			continue
		}
		res.Transactions = append(res.Transactions, tx)
	}
	if err := scanner.Err(); err != nil {
		res.Err = err
	}
	return res
}

func (r *ParseResult) rowError(err error) {
	r.ParseErrors++
	if len(r.RowErrors) < maxRowErrors {
		r.RowErrors = append(r.RowErrors, err)
	}
}

var requiredColumns = model.ExportHeader

// headerIndex maps column names to positions. Matching is case-insensitive and
// every export column must be present.
func headerIndex(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	for _, want := range requiredColumns {
		if _, ok := cols[strings.ToLower(want)]; !ok {
			return nil, fmt.Errorf("header missing column %q", want)
		}
	}
	return cols, nil
}

func parseRecord(record []string, cols map[string]int) (model.Transaction, error) {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var tx model.Transaction
	var err error
	if tx.Date, err = model.ParseDate(get("date")); err != nil {
		return tx, err
	}
	if tx.Type, err = model.ParseTxType(get("type")); err != nil {
		return tx, err
	}
	if tx.Amount, err = decimal.NewFromString(get("amount")); err != nil {
		return tx, fmt.Errorf("%w: %q", model.ErrInvalidAmount, get("amount"))
	}
	tx.Category = get("category")
	tx.Description = get("description")
	tx.Emoji = get("emoji")
	tx.Notes = get("notes")
	if s := get("recurring"); s != "" {
		if tx.Recurring, err = strconv.ParseBool(s); err != nil {
			return tx, fmt.Errorf("recurring: %w", err)
		}
	}
	finish(&tx)
	return tx, tx.Validate()
}

func finish(tx *model.Transaction) {
	if tx.Emoji == "" {
		tx.Emoji = model.EmojiFor(tx.Type, tx.Category)
	}
}
