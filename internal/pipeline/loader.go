package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/rupee/internal/model"
	"github.com/theirongolddev/rupee/internal/source"
)

// LoadResult holds the output of an import run.
type LoadResult struct {
	Transactions []model.Transaction
	TotalFiles   int
	ParsedFiles  int
	ParseErrors  int
	FileErrors   int
	// Errors collects file failures and the first row failures of each file.
	Errors []error
}

// ProgressFunc is called during loading to report progress.
// current is the number of files processed so far, total is the total count.
type ProgressFunc func(current, total int)

// Load discovers and parses transaction files under paths using a bounded
// worker pool. Transactions keep file order, then row order within each file.
func Load(ctx context.Context, paths []string, workers int, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := source.ScanPaths(paths)
	if err != nil {
		return nil, fmt.Errorf("scanning import paths: %w", err)
	}

	result := &LoadResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(files) {
		workers = len(files)
	}

	results := make([]source.ParseResult, len(files))
	var processed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = source.ParseFile(files[i])
			n := processed.Add(1)
			if progressFn != nil {
				progressFn(int(n), len(files))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, pr := range results {
		if pr.Err != nil {
			result.FileErrors++
			result.Errors = append(result.Errors, pr.Err)
			continue
		}
		result.ParsedFiles++
		result.ParseErrors += pr.ParseErrors
		result.Errors = append(result.Errors, pr.RowErrors...)
		result.Transactions = append(result.Transactions, pr.Transactions...)
	}
	return result, nil
}
