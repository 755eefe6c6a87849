// Package storage implements the ledger ports on SQLite.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/core"
	"fintrack/internal/ledger"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// dsn builds the connection string for dbPath. SQLite ships with foreign
// key enforcement off, so the ON DELETE CASCADE on budget_categories only
// fires when the pragma is set per connection.
func dsn(dbPath string) string {
	return dbPath + "?_pragma=foreign_keys(1)"
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

const transactionColumns = `id, amount_cents, type, category, description, date, is_recurring, recurring_frequency`

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (`+transactionColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Amount.Cents, string(t.Type), string(t.Category), t.Description,
		t.Date.ISO(), boolToInt(t.IsRecurring), string(t.RecurringFrequency))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions
		 SET amount_cents = ?, type = ?, category = ?, description = ?, date = ?,
		     is_recurring = ?, recurring_frequency = ?
		 WHERE id = ?`,
		t.Amount.Cents, string(t.Type), string(t.Category), t.Description,
		t.Date.ISO(), boolToInt(t.IsRecurring), string(t.RecurringFrequency), t.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions ORDER BY date DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var out []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) SaveBudget(ctx context.Context, b core.Budget) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin budget save: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO budgets (id, month, total_budgeted_cents, total_spent_cents)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		     month = excluded.month,
		     total_budgeted_cents = excluded.total_budgeted_cents,
		     total_spent_cents = excluded.total_spent_cents`,
		b.ID, b.Month, b.TotalBudgeted.Cents, b.TotalSpent.Cents)
	if err != nil {
		return fmt.Errorf("upsert budget: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM budget_categories WHERE budget_id = ?`, b.ID); err != nil {
		return fmt.Errorf("clear budget categories: %w", err)
	}

	for i, bc := range b.Categories {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO budget_categories
			     (budget_id, category, budgeted_cents, spent_cents, remaining_cents, percentage, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			b.ID, string(bc.Category), bc.Budgeted.Cents, bc.Spent.Cents,
			bc.Remaining.Cents, bc.Percentage, i)
		if err != nil {
			return fmt.Errorf("insert budget category: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit budget save: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, id string) (core.Budget, error) {
	return r.getBudget(ctx, `id = ?`, id)
}

func (r *SQLiteRepository) GetBudgetByMonth(ctx context.Context, month string) (core.Budget, error) {
	return r.getBudget(ctx, `month = ?`, month)
}

func (r *SQLiteRepository) getBudget(ctx context.Context, where string, arg any) (core.Budget, error) {
	var b core.Budget
	var budgeted, spent int64
	err := r.db.QueryRowContext(ctx,
		`SELECT id, month, total_budgeted_cents, total_spent_cents FROM budgets WHERE `+where, arg).
		Scan(&b.ID, &b.Month, &budgeted, &spent)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	b.TotalBudgeted = core.Money{Cents: budgeted}
	b.TotalSpent = core.Money{Cents: spent}

	b.Categories, err = r.budgetCategories(ctx, b.ID)
	if err != nil {
		return core.Budget{}, err
	}
	return b, nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, month, total_budgeted_cents, total_spent_cents FROM budgets ORDER BY month ASC`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		var budgeted, spent int64
		if err := rows.Scan(&b.ID, &b.Month, &budgeted, &spent); err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		b.TotalBudgeted = core.Money{Cents: budgeted}
		b.TotalSpent = core.Money{Cents: spent}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budgets: %w", err)
	}

	for i := range out {
		out[i].Categories, err = r.budgetCategories(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *SQLiteRepository) budgetCategories(ctx context.Context, budgetID string) ([]core.BudgetCategory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT category, budgeted_cents, spent_cents, remaining_cents, percentage
		 FROM budget_categories WHERE budget_id = ? ORDER BY position ASC`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list budget categories: %w", err)
	}
	defer rows.Close()

	var out []core.BudgetCategory
	for rows.Next() {
		var bc core.BudgetCategory
		var category string
		var budgeted, spent, remaining int64
		if err := rows.Scan(&category, &budgeted, &spent, &remaining, &bc.Percentage); err != nil {
			return nil, fmt.Errorf("scan budget category: %w", err)
		}
		bc.Category = core.Category(category)
		bc.Budgeted = core.Money{Cents: budgeted}
		bc.Spent = core.Money{Cents: spent}
		bc.Remaining = core.Money{Cents: remaining}
		out = append(out, bc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate budget categories: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) ListRecurring(ctx context.Context) ([]ledger.RecurringTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+`, last_recurring_run
		 FROM transactions WHERE is_recurring = 1 ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list recurring: %w", err)
	}
	defer rows.Close()

	var out []ledger.RecurringTransaction
	for rows.Next() {
		var (
			t           core.Transaction
			amountCents int64
			typ, cat    string
			dateStr     string
			recurring   int
			freq        string
			lastRun     string
		)
		err := rows.Scan(&t.ID, &amountCents, &typ, &cat, &t.Description,
			&dateStr, &recurring, &freq, &lastRun)
		if err != nil {
			return nil, fmt.Errorf("scan recurring: %w", err)
		}
		date, err := core.ParseISODate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse stored date %q: %w", dateStr, err)
		}
		t.Amount = core.Money{Cents: amountCents}
		t.Type = core.TransactionType(typ)
		t.Category = core.Category(cat)
		t.Date = date
		t.IsRecurring = recurring != 0
		t.RecurringFrequency = core.RecurringFrequency(freq)

		rt := ledger.RecurringTransaction{Transaction: t}
		if lastRun != "" {
			rt.LastRun, err = time.Parse(time.RFC3339, lastRun)
			if err != nil {
				return nil, fmt.Errorf("parse last run %q: %w", lastRun, err)
			}
		}
		out = append(out, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recurring: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) MarkRecurringRun(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET last_recurring_run = ? WHERE id = ?`,
		at.UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("mark recurring run: %w", err)
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t           core.Transaction
		amountCents int64
		typ, cat    string
		dateStr     string
		recurring   int
		freq        string
	)
	err := row.Scan(&t.ID, &amountCents, &typ, &cat, &t.Description, &dateStr, &recurring, &freq)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := core.ParseISODate(dateStr)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse stored date %q: %w", dateStr, err)
	}
	t.Amount = core.Money{Cents: amountCents}
	t.Type = core.TransactionType(typ)
	t.Category = core.Category(cat)
	t.Date = date
	t.IsRecurring = recurring != 0
	t.RecurringFrequency = core.RecurringFrequency(freq)
	return t, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ledger.ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
