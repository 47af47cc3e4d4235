package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"spendwise/internal/core"
)

// expenseDoc is the frozen JSON form of an expense inside an archive row.
// The snapshot is written once at archive time and never rewritten, so this
// layout must stay backward compatible.
type expenseDoc struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Category    string `json:"category"`
	CategoryID  string `json:"categoryId,omitempty"`
	AmountCents int64  `json:"amountCents"`
	Note        string `json:"note"`
	Currency    string `json:"currency,omitempty"`
	EntryType   string `json:"entryType,omitempty"`
	Status      string `json:"status,omitempty"`
	ImportedAt  string `json:"importedAt,omitempty"`
	Source      string `json:"source,omitempty"`
}

func toExpenseDoc(e core.Expense) expenseDoc {
	doc := expenseDoc{
		ID:          e.ID,
		Date:        e.Date.ISO(),
		Category:    e.Category,
		CategoryID:  e.CategoryID,
		AmountCents: e.Amount.Cents,
		Note:        e.Note,
		Currency:    e.Currency,
		EntryType:   e.EntryType,
		Status:      e.Status,
		Source:      e.Source,
	}
	if !e.ImportedAt.IsZero() {
		doc.ImportedAt = e.ImportedAt.UTC().Format(time.RFC3339)
	}
	return doc
}

func fromExpenseDoc(doc expenseDoc) (core.Expense, error) {
	d, err := core.ParseDate(doc.Date)
	if err != nil {
		return core.Expense{}, fmt.Errorf("archived expense date %q: %w", doc.Date, err)
	}
	e := core.Expense{
		ID:         doc.ID,
		Date:       d,
		Category:   doc.Category,
		CategoryID: doc.CategoryID,
		Amount:     core.Money{Cents: doc.AmountCents},
		Note:       doc.Note,
		Currency:   doc.Currency,
		EntryType:  doc.EntryType,
		Status:     doc.Status,
		Source:     doc.Source,
	}
	if doc.ImportedAt != "" {
		if t, err := time.Parse(time.RFC3339, doc.ImportedAt); err == nil {
			e.ImportedAt = t
		}
	}
	return e, nil
}

// InsertArchivedPeriod persists the immutable archive record. Expenses are
// serialized by value into the row, detached from the live collection.
func (r *SQLiteRepository) InsertArchivedPeriod(ctx context.Context, userID string, p core.ArchivedPeriod) error {
	docs := make([]expenseDoc, len(p.Expenses))
	for i, e := range p.Expenses {
		docs[i] = toExpenseDoc(e)
	}
	blob, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("marshal archived expenses: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO archived_periods (id, user_id, period_start, period_end,
		   expenses_json, total_spent_cents, archived_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.ID, userID, p.PeriodStart.ISO(), p.PeriodEnd.ISO(),
		string(blob), p.TotalSpent.Cents, p.ArchivedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("insert archived period: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListArchivedPeriods(ctx context.Context, userID string) ([]core.ArchivedPeriod, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, period_start, period_end, expenses_json, total_spent_cents, archived_at
		 FROM archived_periods WHERE user_id = ? ORDER BY period_start DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list archived periods: %w", err)
	}
	defer rows.Close()

	var periods []core.ArchivedPeriod
	for rows.Next() {
		p, err := scanArchivedPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	return periods, rows.Err()
}

func (r *SQLiteRepository) GetArchivedPeriod(ctx context.Context, userID, id string) (core.ArchivedPeriod, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, period_start, period_end, expenses_json, total_spent_cents, archived_at
		 FROM archived_periods WHERE user_id = ? AND id = ?`,
		userID, id)
	p, err := scanArchivedPeriod(row)
	if err == sql.ErrNoRows {
		return core.ArchivedPeriod{}, ErrNotFound
	}
	return p, err
}

func scanArchivedPeriod(row interface{ Scan(...any) error }) (core.ArchivedPeriod, error) {
	var (
		p          core.ArchivedPeriod
		start, end string
		blob       string
		archivedAt string
	)
	if err := row.Scan(&p.ID, &start, &end, &blob, &p.TotalSpent.Cents, &archivedAt); err != nil {
		return core.ArchivedPeriod{}, err
	}

	var err error
	if p.PeriodStart, err = core.ParseDate(start); err != nil {
		return core.ArchivedPeriod{}, fmt.Errorf("period start %q: %w", start, err)
	}
	if p.PeriodEnd, err = core.ParseDate(end); err != nil {
		return core.ArchivedPeriod{}, fmt.Errorf("period end %q: %w", end, err)
	}
	if p.ArchivedAt, err = time.Parse(time.RFC3339, archivedAt); err != nil {
		return core.ArchivedPeriod{}, fmt.Errorf("archived at %q: %w", archivedAt, err)
	}

	var docs []expenseDoc
	if err := json.Unmarshal([]byte(blob), &docs); err != nil {
		return core.ArchivedPeriod{}, fmt.Errorf("unmarshal archived expenses: %w", err)
	}
	p.Expenses = make([]core.Expense, len(docs))
	for i, doc := range docs {
		e, err := fromExpenseDoc(doc)
		if err != nil {
			return core.ArchivedPeriod{}, err
		}
		p.Expenses[i] = e
	}
	return p, nil
}
