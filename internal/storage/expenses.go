package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"spendwise/internal/core"
)

const expenseColumns = `id, date, category, category_id, amount_cents, note,
	currency, entry_type, status, imported_at, source`

func scanExpense(row interface{ Scan(...any) error }) (core.Expense, error) {
	var (
		e          core.Expense
		date       string
		importedAt string
	)
	err := row.Scan(&e.ID, &date, &e.Category, &e.CategoryID, &e.Amount.Cents,
		&e.Note, &e.Currency, &e.EntryType, &e.Status, &importedAt, &e.Source)
	if err != nil {
		return core.Expense{}, err
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("stored date %q: %w", date, err)
	}
	e.Date = d
	if importedAt != "" {
		if t, err := time.Parse(time.RFC3339, importedAt); err == nil {
			e.ImportedAt = t
		}
	}
	return e, nil
}

func (r *SQLiteRepository) CreateExpense(ctx context.Context, userID string, e core.Expense) error {
	importedAt := ""
	if !e.ImportedAt.IsZero() {
		importedAt = e.ImportedAt.UTC().Format(time.RFC3339)
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (id, user_id, date, category, category_id, amount_cents,
		   note, currency, entry_type, status, imported_at, source)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, userID, e.Date.ISO(), e.Category, e.CategoryID, e.Amount.Cents,
		e.Note, e.Currency, e.EntryType, e.Status, importedAt, e.Source)
	if err != nil {
		return fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"expense_id", e.ID,
		"user_id", userID,
		"amount_cents", e.Amount.Cents,
		"category", e.Category)

	return nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, userID, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = ? AND id = ?`,
		userID, id)
	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return core.Expense{}, ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// ExpenseExists reports whether the id is already present in the user's
// active set. The import endpoint uses this for idempotent skips.
func (r *SQLiteRepository) ExpenseExists(ctx context.Context, userID, id string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx,
		`SELECT 1 FROM expenses WHERE user_id = ? AND id = ?`,
		userID, id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check expense exists: %w", err)
	}
	return true, nil
}

func (r *SQLiteRepository) ListExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	return r.queryExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE user_id = ? ORDER BY date DESC`,
		userID)
}

// ListExpensesInRange returns active expenses whose date falls inside the
// window, inclusive on both ends. Dates are RFC 3339 text, so lexicographic
// comparison matches chronological order.
func (r *SQLiteRepository) ListExpensesInRange(ctx context.Context, userID string, rng core.PeriodRange) ([]core.Expense, error) {
	start := rng.Start.UTC().Format(time.RFC3339)
	end := rng.End.UTC().Format(time.RFC3339)
	return r.queryExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses
		 WHERE user_id = ? AND date >= ? AND date <= ? ORDER BY date DESC`,
		userID, start, end)
}

// ListUncategorizedExpenses returns imported entries still waiting for manual
// categorization.
func (r *SQLiteRepository) ListUncategorizedExpenses(ctx context.Context, userID string) ([]core.Expense, error) {
	return r.queryExpenses(ctx,
		`SELECT `+expenseColumns+` FROM expenses
		 WHERE user_id = ? AND category = '' ORDER BY date DESC`,
		userID)
}

func (r *SQLiteRepository) queryExpenses(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

func (r *SQLiteRepository) UpdateExpense(ctx context.Context, userID string, e core.Expense) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET date = ?, category = ?, category_id = ?,
		   amount_cents = ?, note = ?
		 WHERE user_id = ? AND id = ?`,
		e.Date.ISO(), e.Category, e.CategoryID, e.Amount.Cents, e.Note,
		userID, e.ID)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	return requireRow(res)
}

// CategorizeExpense assigns a category to an imported, uncategorized entry.
func (r *SQLiteRepository) CategorizeExpense(ctx context.Context, userID, id, category, categoryID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET category = ?, category_id = ? WHERE user_id = ? AND id = ?`,
		category, categoryID, userID, id)
	if err != nil {
		return fmt.Errorf("categorize expense: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE user_id = ? AND id = ?`,
		userID, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
