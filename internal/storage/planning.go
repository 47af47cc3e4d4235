package storage

import (
	"context"
	"database/sql"
	"fmt"

	"spendwise/internal/core"

	"github.com/google/uuid"
)

// ListBudgetCategories returns the user's categories, seeding the defaults
// from the template table on first access.
func (r *SQLiteRepository) ListBudgetCategories(ctx context.Context, userID string) ([]core.BudgetCategory, error) {
	cats, err := r.queryCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(cats) > 0 {
		return cats, nil
	}

	if err := r.seedDefaultCategories(ctx, userID); err != nil {
		return nil, err
	}
	return r.queryCategories(ctx, userID)
}

func (r *SQLiteRepository) queryCategories(ctx context.Context, userID string) ([]core.BudgetCategory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, planned_amount_cents, color
		 FROM budget_categories WHERE user_id = ? ORDER BY name`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list budget categories: %w", err)
	}
	defer rows.Close()

	var cats []core.BudgetCategory
	for rows.Next() {
		var c core.BudgetCategory
		if err := rows.Scan(&c.ID, &c.Name, &c.PlannedAmount.Cents, &c.Color); err != nil {
			return nil, fmt.Errorf("scan budget category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *SQLiteRepository) seedDefaultCategories(ctx context.Context, userID string) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, planned_amount_cents, color FROM default_categories`)
	if err != nil {
		return fmt.Errorf("read default categories: %w", err)
	}
	defer rows.Close()

	type tmpl struct {
		name  string
		cents int64
		color string
	}
	var templates []tmpl
	for rows.Next() {
		var t tmpl
		if err := rows.Scan(&t.name, &t.cents, &t.color); err != nil {
			return fmt.Errorf("scan default category: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for _, t := range templates {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO budget_categories (id, user_id, name, planned_amount_cents, color)
			 VALUES (?, ?, ?, ?, ?)`,
			uuid.NewString(), userID, t.name, t.cents, t.color)
		if err != nil {
			return fmt.Errorf("seed category %q: %w", t.name, err)
		}
	}
	return nil
}

func (r *SQLiteRepository) CreateBudgetCategory(ctx context.Context, userID string, c core.BudgetCategory) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO budget_categories (id, user_id, name, planned_amount_cents, color)
		 VALUES (?, ?, ?, ?, ?)`,
		c.ID, userID, c.Name, c.PlannedAmount.Cents, c.Color)
	if err != nil {
		return fmt.Errorf("create budget category: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateBudgetCategory(ctx context.Context, userID string, c core.BudgetCategory) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE budget_categories SET name = ?, planned_amount_cents = ?, color = ?
		 WHERE user_id = ? AND id = ?`,
		c.Name, c.PlannedAmount.Cents, c.Color, userID, c.ID)
	if err != nil {
		return fmt.Errorf("update budget category: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteBudgetCategory(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM budget_categories WHERE user_id = ? AND id = ?`,
		userID, id)
	if err != nil {
		return fmt.Errorf("delete budget category: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) ListSavingsGoals(ctx context.Context, userID string) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, target_amount_cents, current_amount_cents, from_date, to_date, tracking_day
		 FROM savings_goals WHERE user_id = ? ORDER BY from_date`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list savings goals: %w", err)
	}
	defer rows.Close()

	var goals []core.SavingsGoal
	for rows.Next() {
		g, err := scanSavingsGoal(rows)
		if err != nil {
			return nil, err
		}
		goals = append(goals, g)
	}
	return goals, rows.Err()
}

func (r *SQLiteRepository) GetSavingsGoal(ctx context.Context, userID, id string) (core.SavingsGoal, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, target_amount_cents, current_amount_cents, from_date, to_date, tracking_day
		 FROM savings_goals WHERE user_id = ? AND id = ?`,
		userID, id)
	g, err := scanSavingsGoal(row)
	if err == sql.ErrNoRows {
		return core.SavingsGoal{}, ErrNotFound
	}
	return g, err
}

func scanSavingsGoal(row interface{ Scan(...any) error }) (core.SavingsGoal, error) {
	var (
		g          core.SavingsGoal
		from, to   string
	)
	if err := row.Scan(&g.ID, &g.Name, &g.TargetAmount.Cents, &g.CurrentAmount.Cents,
		&from, &to, &g.TrackingDay); err != nil {
		return core.SavingsGoal{}, err
	}
	var err error
	if g.FromDate, err = core.ParseDate(from); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("goal from date %q: %w", from, err)
	}
	if g.ToDate, err = core.ParseDate(to); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("goal to date %q: %w", to, err)
	}
	return g, nil
}

func (r *SQLiteRepository) CreateSavingsGoal(ctx context.Context, userID string, g core.SavingsGoal) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO savings_goals (id, user_id, name, target_amount_cents,
		   current_amount_cents, from_date, to_date, tracking_day)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, userID, g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents,
		g.FromDate.ISO(), g.ToDate.ISO(), g.TrackingDay)
	if err != nil {
		return fmt.Errorf("create savings goal: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateSavingsGoal(ctx context.Context, userID string, g core.SavingsGoal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE savings_goals SET name = ?, target_amount_cents = ?,
		   current_amount_cents = ?, from_date = ?, to_date = ?, tracking_day = ?
		 WHERE user_id = ? AND id = ?`,
		g.Name, g.TargetAmount.Cents, g.CurrentAmount.Cents,
		g.FromDate.ISO(), g.ToDate.ISO(), g.TrackingDay, userID, g.ID)
	if err != nil {
		return fmt.Errorf("update savings goal: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteSavingsGoal(ctx context.Context, userID, id string) error {
	if _, err := r.db.ExecContext(ctx,
		`DELETE FROM monthly_balances WHERE user_id = ? AND goal_id = ?`,
		userID, id); err != nil {
		return fmt.Errorf("delete goal balances: %w", err)
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM savings_goals WHERE user_id = ? AND id = ?`,
		userID, id)
	if err != nil {
		return fmt.Errorf("delete savings goal: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) ListMonthlyBalances(ctx context.Context, userID, goalID string) ([]core.MonthlyBalance, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, goal_id, date, amount_cents, note
		 FROM monthly_balances WHERE user_id = ? AND goal_id = ? ORDER BY date DESC`,
		userID, goalID)
	if err != nil {
		return nil, fmt.Errorf("list monthly balances: %w", err)
	}
	defer rows.Close()

	var balances []core.MonthlyBalance
	for rows.Next() {
		var (
			b    core.MonthlyBalance
			date string
		)
		if err := rows.Scan(&b.ID, &b.GoalID, &date, &b.Amount.Cents, &b.Note); err != nil {
			return nil, fmt.Errorf("scan monthly balance: %w", err)
		}
		if b.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("balance date %q: %w", date, err)
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

func (r *SQLiteRepository) CreateMonthlyBalance(ctx context.Context, userID string, b core.MonthlyBalance) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO monthly_balances (id, user_id, goal_id, date, amount_cents, note)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, userID, b.GoalID, b.Date.ISO(), b.Amount.Cents, b.Note)
	if err != nil {
		return fmt.Errorf("create monthly balance: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListBorrowedMoney(ctx context.Context, userID string) ([]core.BorrowedMoney, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, date, amount_cents, description, friend_name, return_date, is_returned, returned_date
		 FROM borrowed_money WHERE user_id = ? ORDER BY date DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list borrowed money: %w", err)
	}
	defer rows.Close()

	var entries []core.BorrowedMoney
	for rows.Next() {
		var (
			b                          core.BorrowedMoney
			date, retDate, returnedAt string
		)
		if err := rows.Scan(&b.ID, &date, &b.Amount.Cents, &b.Description,
			&b.FriendName, &retDate, &b.IsReturned, &returnedAt); err != nil {
			return nil, fmt.Errorf("scan borrowed money: %w", err)
		}
		if b.Date, err = core.ParseDate(date); err != nil {
			return nil, fmt.Errorf("borrowed date %q: %w", date, err)
		}
		if retDate != "" {
			if d, err := core.ParseDate(retDate); err == nil {
				b.ReturnDate = d
			}
		}
		if returnedAt != "" {
			if d, err := core.ParseDate(returnedAt); err == nil {
				b.ReturnedDate = d
			}
		}
		entries = append(entries, b)
	}
	return entries, rows.Err()
}

func (r *SQLiteRepository) CreateBorrowedMoney(ctx context.Context, userID string, b core.BorrowedMoney) error {
	retDate := ""
	if !b.ReturnDate.IsZero() {
		retDate = b.ReturnDate.ISO()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO borrowed_money (id, user_id, date, amount_cents, description,
		   friend_name, return_date, is_returned, returned_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, '')`,
		b.ID, userID, b.Date.ISO(), b.Amount.Cents, b.Description,
		b.FriendName, retDate, b.IsReturned)
	if err != nil {
		return fmt.Errorf("create borrowed money: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateBorrowedMoney(ctx context.Context, userID string, b core.BorrowedMoney) error {
	retDate := ""
	if !b.ReturnDate.IsZero() {
		retDate = b.ReturnDate.ISO()
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE borrowed_money SET amount_cents = ?, description = ?,
		   friend_name = ?, return_date = ?
		 WHERE user_id = ? AND id = ?`,
		b.Amount.Cents, b.Description, b.FriendName, retDate, userID, b.ID)
	if err != nil {
		return fmt.Errorf("update borrowed money: %w", err)
	}
	return requireRow(res)
}

// MarkBorrowedReturned flips the returned flag and records when it happened.
func (r *SQLiteRepository) MarkBorrowedReturned(ctx context.Context, userID, id string, returnedDate core.Date) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE borrowed_money SET is_returned = 1, returned_date = ?
		 WHERE user_id = ? AND id = ?`,
		returnedDate.ISO(), userID, id)
	if err != nil {
		return fmt.Errorf("mark borrowed returned: %w", err)
	}
	return requireRow(res)
}

func (r *SQLiteRepository) DeleteBorrowedMoney(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM borrowed_money WHERE user_id = ? AND id = ?`,
		userID, id)
	if err != nil {
		return fmt.Errorf("delete borrowed money: %w", err)
	}
	return requireRow(res)
}
