package store

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/theirongolddev/rupee/internal/config"
)

// New opens the backend selected in cfg.
func New(ctx context.Context, cfg config.Config, log zerolog.Logger) (Store, error) {
	backend := cfg.Storage.Backend
	if !backend.IsValid() {
		return nil, fmt.Errorf("invalid storage backend: %q", backend)
	}

	switch backend {
	case config.BackendMemory:
		log.Debug().Msg("using in-memory ledger")
		return NewMemory(), nil
	case config.BackendPostgres:
		return OpenPostgres(ctx, PostgresConfig{DSN: cfg.Storage.DSN}, log)
	default:
		path := cfg.LedgerPath()
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("path", path).Msg("opened sqlite ledger")
		return s, nil
	}
}
