package services

import (
	"context"
	"log/slog"
	"time"

	"spendwise/internal/core"
)

// ImportStore is the slice of the repository the importer needs.
type ImportStore interface {
	ExpenseExists(ctx context.Context, userID, id string) (bool, error)
	CreateExpense(ctx context.Context, userID string, e core.Expense) error
}

// BankTransaction is one entry from a bank feed. Amount arrives as a
// formatted string ("£1,234.56"); the importer strips it down to cents.
type BankTransaction struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Currency    string `json:"currency"`
	EntryType   string `json:"entryType"`
	Status      string `json:"status"`
}

// ImportResult reports per-call counts, mirroring what the feed client needs
// to reconcile its own ledger.
type ImportResult struct {
	TotalReceived       int      `json:"totalReceived"`
	SavedCount          int      `json:"savedCount"`
	SkippedCount        int      `json:"skippedCount"`
	FailedCount         int      `json:"failedCount"`
	SavedTransactions   []string `json:"savedTransactions"`
	SkippedTransactions []string `json:"skippedTransactions"`
}

// ImportService converts bank transactions into uncategorized expenses.
type ImportService struct {
	store ImportStore
	now   func() time.Time
}

func NewImportService(store ImportStore) *ImportService {
	return &ImportService{store: store, now: time.Now}
}

// Import writes each transaction into the user's active set. Transactions
// whose id already exists are skipped and counted, making the import
// idempotent: replaying a feed never duplicates expenses. Individual bad
// records are logged and counted as failed without aborting the batch.
func (s *ImportService) Import(ctx context.Context, userID string, txs []BankTransaction) (ImportResult, error) {
	result := ImportResult{
		TotalReceived:       len(txs),
		SavedTransactions:   []string{},
		SkippedTransactions: []string{},
	}

	for _, tx := range txs {
		exists, err := s.store.ExpenseExists(ctx, userID, tx.ID)
		if err != nil {
			return result, err
		}
		if exists {
			result.SkippedCount++
			result.SkippedTransactions = append(result.SkippedTransactions, tx.ID)
			continue
		}

		expense, err := s.toExpense(tx)
		if err != nil {
			slog.WarnContext(ctx, "Skipping malformed bank transaction",
				"transaction_id", tx.ID, "user_id", userID, "error", err)
			result.FailedCount++
			continue
		}

		if err := s.store.CreateExpense(ctx, userID, expense); err != nil {
			slog.ErrorContext(ctx, "Failed to save imported transaction",
				"transaction_id", tx.ID, "user_id", userID, "error", err)
			result.FailedCount++
			continue
		}

		result.SavedCount++
		result.SavedTransactions = append(result.SavedTransactions, tx.ID)
	}

	slog.InfoContext(ctx, "Import completed",
		"user_id", userID,
		"total_received", result.TotalReceived,
		"saved_count", result.SavedCount,
		"skipped_count", result.SkippedCount,
		"failed_count", result.FailedCount)

	return result, nil
}

// toExpense converts a feed entry into the active-set shape: category left
// empty pending manual categorization, source marked as a bank import.
func (s *ImportService) toExpense(tx BankTransaction) (core.Expense, error) {
	date, err := core.ParseDate(tx.Date)
	if err != nil {
		return core.Expense{}, err
	}
	cents, err := core.ParseBankAmount(tx.Amount)
	if err != nil {
		return core.Expense{}, err
	}

	e := core.Expense{
		ID:         tx.ID,
		Date:       date,
		Category:   "",
		Amount:     core.Money{Cents: cents},
		Note:       tx.Description,
		Currency:   tx.Currency,
		EntryType:  tx.EntryType,
		Status:     tx.Status,
		ImportedAt: s.now(),
		Source:     core.SourceBankImport,
	}
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}
