package store

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/theirongolddev/rupee/internal/model"
)

//go:embed migrations/postgres/schema.sql
var postgresSchema string

// Postgres stores the ledger in PostgreSQL through a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// PostgresConfig tunes the connection pool. Zero values get defaults.
type PostgresConfig struct {
	DSN         string
	MaxConns    int32
	PingTimeout time.Duration
}

// OpenPostgres connects, pings and applies the embedded schema.
func OpenPostgres(ctx context.Context, cfg PostgresConfig, log zerolog.Logger) (*Postgres, error) {
	if cfg.MaxConns == 0 {
		cfg.MaxConns = 10
	}
	if cfg.PingTimeout == 0 {
		cfg.PingTimeout = 5 * time.Second
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	poolConfig.MaxConns = cfg.MaxConns
	poolConfig.MinConns = 1
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.PingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	log.Info().
		Str("host", poolConfig.ConnConfig.Host).
		Str("database", poolConfig.ConnConfig.Database).
		Msg("connected to PostgreSQL")

	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) Load(ctx context.Context) (model.Dataset, error) {
	var ds model.Dataset
	var err error
	if ds.Transactions, err = pgQueryAll(ctx, p.pool, selectTransactions, scanTransactions); err != nil {
		return ds, fmt.Errorf("loading transactions: %w", err)
	}
	if ds.Budgets, err = pgQueryAll(ctx, p.pool, selectBudgets, scanBudgets); err != nil {
		return ds, fmt.Errorf("loading budgets: %w", err)
	}
	if ds.Goals, err = pgQueryAll(ctx, p.pool, selectGoals, scanGoals); err != nil {
		return ds, fmt.Errorf("loading goals: %w", err)
	}
	if ds.Notifications, err = pgQueryAll(ctx, p.pool, selectNotifications, scanNotifications); err != nil {
		return ds, fmt.Errorf("loading notifications: %w", err)
	}
	return ds, nil
}

func pgQueryAll[T any](ctx context.Context, pool *pgxpool.Pool, query string, scan func(rows) ([]T, error)) ([]T, error) {
	r, err := pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return scan(r)
}

func (p *Postgres) Replace(ctx context.Context, ds model.Dataset) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `TRUNCATE transactions, budgets, goals, notifications`); err != nil {
			return err
		}
		for i, t := range ds.Transactions {
			if err := insertTransactionPG(ctx, tx, t, int64(i)); err != nil {
				return err
			}
		}
		for i, b := range ds.Budgets {
			if _, err := tx.Exec(ctx,
				`INSERT INTO budgets (key, pos, category, limit_amount, spent, emoji, month, year) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				b.Key(), i, b.Category, b.Limit, b.Spent, b.Emoji, b.Month, b.Year,
			); err != nil {
				return fmt.Errorf("inserting budget %s: %w", b.Category, err)
			}
		}
		for i, g := range ds.Goals {
			if _, err := tx.Exec(ctx,
				`INSERT INTO goals (id, pos, name, target, current, emoji, deadline) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
				g.ID, i, g.Name, g.Target, g.Current, g.Emoji, g.Deadline,
			); err != nil {
				return fmt.Errorf("inserting goal %s: %w", g.ID, err)
			}
		}
		return insertNotificationsPG(ctx, tx, ds.Notifications)
	})
}

func insertTransactionPG(ctx context.Context, tx pgx.Tx, t model.Transaction, pos int64) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO transactions (id, pos, type, amount, category, description, date, emoji, recurring, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, pos, string(t.Type), t.Amount, t.Category, t.Description, t.Date, t.Emoji, t.Recurring, t.Notes,
	)
	if err != nil {
		return fmt.Errorf("inserting transaction %s: %w", t.ID, err)
	}
	return nil
}

func insertNotificationsPG(ctx context.Context, tx pgx.Tx, ns []model.Notification) error {
	for i, n := range ns {
		if _, err := tx.Exec(ctx,
			`INSERT INTO notifications (id, pos, message, kind, read) VALUES ($1, $2, $3, $4, $5)`,
			n.ID, i, n.Message, string(n.Kind), n.Read,
		); err != nil {
			return fmt.Errorf("inserting notification %s: %w", n.ID, err)
		}
	}
	return nil
}

func (p *Postgres) PrependTransactions(ctx context.Context, txs ...model.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		// Serialize concurrent prepends so positions never collide.
		if _, err := tx.Exec(ctx, `LOCK TABLE transactions IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return err
		}
		var first int64
		if err := tx.QueryRow(ctx, `SELECT COALESCE(MIN(pos), 0) FROM transactions`).Scan(&first); err != nil {
			return err
		}
		start := first - int64(len(txs))
		for i, t := range txs {
			if err := insertTransactionPG(ctx, tx, t, start+int64(i)); err != nil {
				return err
			}
		}
		return nil
	})
}

func (p *Postgres) UpdateTransaction(ctx context.Context, t model.Transaction) error {
	return pgAffected(p.pool.Exec(ctx,
		`UPDATE transactions SET type = $1, amount = $2, category = $3, description = $4, date = $5, emoji = $6, recurring = $7, notes = $8
		 WHERE id = $9`,
		string(t.Type), t.Amount, t.Category, t.Description, t.Date, t.Emoji, t.Recurring, t.Notes, t.ID,
	))
}

func (p *Postgres) DeleteTransaction(ctx context.Context, id string) error {
	return pgAffected(p.pool.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id))
}

func (p *Postgres) PutBudget(ctx context.Context, b model.Budget) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO budgets (key, pos, category, limit_amount, spent, emoji, month, year)
		 VALUES ($1, (SELECT COALESCE(MAX(pos), -1) + 1 FROM budgets), $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (key) DO UPDATE SET
		     category = EXCLUDED.category,
		     limit_amount = EXCLUDED.limit_amount,
		     spent = EXCLUDED.spent,
		     emoji = EXCLUDED.emoji`,
		b.Key(), b.Category, b.Limit, b.Spent, b.Emoji, b.Month, b.Year,
	)
	return err
}

func (p *Postgres) DeleteBudget(ctx context.Context, key string) error {
	return pgAffected(p.pool.Exec(ctx, `DELETE FROM budgets WHERE key = $1`, key))
}

func (p *Postgres) AppendGoal(ctx context.Context, g model.Goal) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO goals (id, pos, name, target, current, emoji, deadline)
		 VALUES ($1, (SELECT COALESCE(MAX(pos), -1) + 1 FROM goals), $2, $3, $4, $5, $6)`,
		g.ID, g.Name, g.Target, g.Current, g.Emoji, g.Deadline,
	)
	return err
}

func (p *Postgres) UpdateGoal(ctx context.Context, g model.Goal) error {
	return pgAffected(p.pool.Exec(ctx,
		`UPDATE goals SET name = $1, target = $2, current = $3, emoji = $4, deadline = $5 WHERE id = $6`,
		g.Name, g.Target, g.Current, g.Emoji, g.Deadline, g.ID,
	))
}

func (p *Postgres) DeleteGoal(ctx context.Context, id string) error {
	return pgAffected(p.pool.Exec(ctx, `DELETE FROM goals WHERE id = $1`, id))
}

func (p *Postgres) ReplaceNotifications(ctx context.Context, ns []model.Notification) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM notifications`); err != nil {
			return err
		}
		return insertNotificationsPG(ctx, tx, ns)
	})
}

func pgAffected(tag pgconn.CommandTag, err error) error {
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
