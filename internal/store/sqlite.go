package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/theirongolddev/rupee/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

//go:embed migrations/sqlite/*.sql
var sqliteMigrations embed.FS

// SQLite stores the ledger in a single database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the ledger database at dbPath and migrates it
// to the latest schema.
func OpenSQLite(dbPath string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}
	if err := migrateSQLite(dbPath); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening ledger db: %w", err)
	}
	return &SQLite{db: db}, nil
}

// migrateSQLite uses its own connection so migration locks never touch the
// main pool.
func migrateSQLite(dbPath string) error {
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer func() { _ = migrateDB.Close() }()

	driver, err := migratesqlite.WithInstance(migrateDB, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}
	src, err := iofs.New(sqliteMigrations, "migrations/sqlite")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Load(ctx context.Context) (model.Dataset, error) {
	var ds model.Dataset
	var err error
	if ds.Transactions, err = queryAll(ctx, s.db, selectTransactions, scanTransactions); err != nil {
		return ds, fmt.Errorf("loading transactions: %w", err)
	}
	if ds.Budgets, err = queryAll(ctx, s.db, selectBudgets, scanBudgets); err != nil {
		return ds, fmt.Errorf("loading budgets: %w", err)
	}
	if ds.Goals, err = queryAll(ctx, s.db, selectGoals, scanGoals); err != nil {
		return ds, fmt.Errorf("loading goals: %w", err)
	}
	if ds.Notifications, err = queryAll(ctx, s.db, selectNotifications, scanNotifications); err != nil {
		return ds, fmt.Errorf("loading notifications: %w", err)
	}
	return ds, nil
}

func queryAll[T any](ctx context.Context, db *sql.DB, query string, scan func(rows) ([]T, error)) ([]T, error) {
	r, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return scan(r)
}

func (s *SQLite) Replace(ctx context.Context, ds model.Dataset) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, table := range []string{"transactions", "budgets", "goals", "notifications"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	for i, t := range ds.Transactions {
		if err := insertTransactionSQLite(ctx, tx, t, int64(i)); err != nil {
			return err
		}
	}
	for i, b := range ds.Budgets {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO budgets (key, pos, category, limit_amount, spent, emoji, month, year) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			b.Key(), i, b.Category, b.Limit, b.Spent, b.Emoji, b.Month, b.Year,
		); err != nil {
			return fmt.Errorf("inserting budget %s: %w", b.Category, err)
		}
	}
	for i, g := range ds.Goals {
		if err := insertGoalSQLite(ctx, tx, g, int64(i)); err != nil {
			return err
		}
	}
	if err := replaceNotificationsSQLite(ctx, tx, ds.Notifications); err != nil {
		return err
	}
	return tx.Commit()
}

func insertTransactionSQLite(ctx context.Context, tx *sql.Tx, t model.Transaction, pos int64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (id, pos, type, amount, category, description, date, emoji, recurring, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, pos, string(t.Type), t.Amount, t.Category, t.Description, t.Date, t.Emoji, t.Recurring, t.Notes,
	)
	if err != nil {
		return fmt.Errorf("inserting transaction %s: %w", t.ID, err)
	}
	return nil
}

func insertGoalSQLite(ctx context.Context, tx *sql.Tx, g model.Goal, pos int64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO goals (id, pos, name, target, current, emoji, deadline) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID, pos, g.Name, g.Target, g.Current, g.Emoji, g.Deadline,
	)
	if err != nil {
		return fmt.Errorf("inserting goal %s: %w", g.ID, err)
	}
	return nil
}

func (s *SQLite) PrependTransactions(ctx context.Context, txs ...model.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var first int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MIN(pos), 0) FROM transactions`).Scan(&first); err != nil {
		return err
	}
	start := first - int64(len(txs))
	for i, t := range txs {
		if err := insertTransactionSQLite(ctx, tx, t, start+int64(i)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLite) UpdateTransaction(ctx context.Context, t model.Transaction) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET type = ?, amount = ?, category = ?, description = ?, date = ?, emoji = ?, recurring = ?, notes = ?
		 WHERE id = ?`,
		string(t.Type), t.Amount, t.Category, t.Description, t.Date, t.Emoji, t.Recurring, t.Notes, t.ID,
	)
	return affected(res, err)
}

func (s *SQLite) DeleteTransaction(ctx context.Context, id string) error {
	return affected(s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id))
}

func (s *SQLite) PutBudget(ctx context.Context, b model.Budget) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (key, pos, category, limit_amount, spent, emoji, month, year)
		 VALUES (?, (SELECT COALESCE(MAX(pos), -1) + 1 FROM budgets), ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET
		     category = excluded.category,
		     limit_amount = excluded.limit_amount,
		     spent = excluded.spent,
		     emoji = excluded.emoji`,
		b.Key(), b.Category, b.Limit, b.Spent, b.Emoji, b.Month, b.Year,
	)
	return err
}

func (s *SQLite) DeleteBudget(ctx context.Context, key string) error {
	return affected(s.db.ExecContext(ctx, `DELETE FROM budgets WHERE key = ?`, key))
}

func (s *SQLite) AppendGoal(ctx context.Context, g model.Goal) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO goals (id, pos, name, target, current, emoji, deadline)
		 VALUES (?, (SELECT COALESCE(MAX(pos), -1) + 1 FROM goals), ?, ?, ?, ?, ?)`,
		g.ID, g.Name, g.Target, g.Current, g.Emoji, g.Deadline,
	)
	return err
}

func (s *SQLite) UpdateGoal(ctx context.Context, g model.Goal) error {
	return affected(s.db.ExecContext(ctx,
		`UPDATE goals SET name = ?, target = ?, current = ?, emoji = ?, deadline = ? WHERE id = ?`,
		g.Name, g.Target, g.Current, g.Emoji, g.Deadline, g.ID,
	))
}

func (s *SQLite) DeleteGoal(ctx context.Context, id string) error {
	return affected(s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id))
}

func (s *SQLite) ReplaceNotifications(ctx context.Context, ns []model.Notification) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM notifications`); err != nil {
		return err
	}
	if err := replaceNotificationsSQLite(ctx, tx, ns); err != nil {
		return err
	}
	return tx.Commit()
}

func replaceNotificationsSQLite(ctx context.Context, tx *sql.Tx, ns []model.Notification) error {
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO notifications (id, pos, message, kind, read) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i, n := range ns {
		if _, err := stmt.ExecContext(ctx, n.ID, i, n.Message, string(n.Kind), n.Read); err != nil {
			return fmt.Errorf("inserting notification %s: %w", n.ID, err)
		}
	}
	return nil
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
