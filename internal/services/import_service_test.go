package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"spendwise/internal/core"
)

type fakeImportStore struct {
	existing  map[string]bool
	created   []core.Expense
	createErr map[string]error
	existsErr error
}

func (f *fakeImportStore) ExpenseExists(_ context.Context, _ string, id string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.existing[id], nil
}

func (f *fakeImportStore) CreateExpense(_ context.Context, _ string, e core.Expense) error {
	if err, ok := f.createErr[e.ID]; ok {
		return err
	}
	f.created = append(f.created, e)
	return nil
}

func newTestImporter(store *fakeImportStore) *ImportService {
	s := NewImportService(store)
	s.now = func() time.Time { return time.Date(2024, time.March, 15, 10, 0, 0, 0, time.UTC) }
	return s
}

func TestImportSavesNewTransactions(t *testing.T) {
	store := &fakeImportStore{existing: map[string]bool{}}
	s := newTestImporter(store)

	result, err := s.Import(context.Background(), "u1", []BankTransaction{
		{ID: "tx-1", Date: "2024-03-01", Amount: "£12.50", Description: "Coffee", Currency: "GBP", EntryType: "debit", Status: "booked"},
		{ID: "tx-2", Date: "2024-03-02", Amount: "1,234.56", Description: "Rent", Currency: "GBP", EntryType: "debit", Status: "booked"},
	})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.SavedCount != 2 || result.SkippedCount != 0 || result.FailedCount != 0 {
		t.Errorf("counts = saved %d / skipped %d / failed %d, want 2/0/0",
			result.SavedCount, result.SkippedCount, result.FailedCount)
	}
	if len(store.created) != 2 {
		t.Fatalf("created %d expenses, want 2", len(store.created))
	}

	first := store.created[0]
	if first.Amount.Cents != 1250 {
		t.Errorf("tx-1 amount = %d cents, want 1250", first.Amount.Cents)
	}
	if first.Category != "" {
		t.Errorf("tx-1 category = %q, want empty pending categorization", first.Category)
	}
	if first.Source != core.SourceBankImport {
		t.Errorf("tx-1 source = %q, want %q", first.Source, core.SourceBankImport)
	}
	if first.Note != "Coffee" {
		t.Errorf("tx-1 note = %q, want description carried over", first.Note)
	}
	if store.created[1].Amount.Cents != 123456 {
		t.Errorf("tx-2 amount = %d cents, want 123456", store.created[1].Amount.Cents)
	}
}

func TestImportSkipsExisting(t *testing.T) {
	store := &fakeImportStore{existing: map[string]bool{"tx-1": true}}
	s := newTestImporter(store)

	txs := []BankTransaction{
		{ID: "tx-1", Date: "2024-03-01", Amount: "10.00"},
		{ID: "tx-2", Date: "2024-03-02", Amount: "20.00"},
	}
	result, err := s.Import(context.Background(), "u1", txs)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.SavedCount != 1 || result.SkippedCount != 1 {
		t.Errorf("counts = saved %d / skipped %d, want 1/1", result.SavedCount, result.SkippedCount)
	}
	if len(result.SkippedTransactions) != 1 || result.SkippedTransactions[0] != "tx-1" {
		t.Errorf("SkippedTransactions = %v, want [tx-1]", result.SkippedTransactions)
	}
	if len(result.SavedTransactions) != 1 || result.SavedTransactions[0] != "tx-2" {
		t.Errorf("SavedTransactions = %v, want [tx-2]", result.SavedTransactions)
	}
}

func TestImportReplayIsIdempotent(t *testing.T) {
	store := &fakeImportStore{existing: map[string]bool{}}
	s := newTestImporter(store)

	txs := []BankTransaction{{ID: "tx-1", Date: "2024-03-01", Amount: "10.00"}}
	if _, err := s.Import(context.Background(), "u1", txs); err != nil {
		t.Fatalf("first Import() error = %v", err)
	}
	// The store now contains the row.
	store.existing["tx-1"] = true

	result, err := s.Import(context.Background(), "u1", txs)
	if err != nil {
		t.Fatalf("second Import() error = %v", err)
	}
	if result.SavedCount != 0 || result.SkippedCount != 1 {
		t.Errorf("replay counts = saved %d / skipped %d, want 0/1", result.SavedCount, result.SkippedCount)
	}
	if len(store.created) != 1 {
		t.Errorf("created %d expenses total, want 1", len(store.created))
	}
}

func TestImportCountsMalformedAsFailed(t *testing.T) {
	store := &fakeImportStore{existing: map[string]bool{}}
	s := newTestImporter(store)

	result, err := s.Import(context.Background(), "u1", []BankTransaction{
		{ID: "bad-date", Date: "not-a-date", Amount: "10.00"},
		{ID: "bad-amount", Date: "2024-03-01", Amount: "free"},
		{ID: "ok", Date: "2024-03-01", Amount: "5.00"},
	})
	if err != nil {
		t.Fatalf("Import() error = %v, bad records must not abort the batch", err)
	}
	if result.FailedCount != 2 || result.SavedCount != 1 {
		t.Errorf("counts = saved %d / failed %d, want 1/2", result.SavedCount, result.FailedCount)
	}
}

func TestImportStorageErrorCountedAsFailed(t *testing.T) {
	store := &fakeImportStore{
		existing:  map[string]bool{},
		createErr: map[string]error{"tx-1": errors.New("locked")},
	}
	s := newTestImporter(store)

	result, err := s.Import(context.Background(), "u1", []BankTransaction{
		{ID: "tx-1", Date: "2024-03-01", Amount: "10.00"},
		{ID: "tx-2", Date: "2024-03-02", Amount: "20.00"},
	})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if result.FailedCount != 1 || result.SavedCount != 1 {
		t.Errorf("counts = saved %d / failed %d, want 1/1", result.SavedCount, result.FailedCount)
	}
}

func TestImportNegativeAmountPreserved(t *testing.T) {
	store := &fakeImportStore{existing: map[string]bool{}}
	s := newTestImporter(store)

	_, err := s.Import(context.Background(), "u1", []BankTransaction{
		{ID: "refund", Date: "2024-03-01", Amount: "-12.50 EUR"},
	})
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("created %d expenses, want 1", len(store.created))
	}
	if store.created[0].Amount.Cents != -1250 {
		t.Errorf("refund amount = %d cents, want -1250", store.created[0].Amount.Cents)
	}
}
