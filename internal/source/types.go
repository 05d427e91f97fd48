package source

import "github.com/theirongolddev/rupee/internal/model"

// Format identifies how a transaction file is encoded.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
)

// DiscoveredFile is an importable file found during scanning.
type DiscoveredFile struct {
	Path   string
	Format Format
}

// ParseResult holds the output of parsing a single file.
type ParseResult struct {
	File         DiscoveredFile
	Transactions []model.Transaction
	ParseErrors  int
	// RowErrors keeps the first few row failures with their line numbers.
	RowErrors []error
	Err       error
}

const maxRowErrors = 10
