package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"spendwise/internal/amqp"
	"spendwise/internal/services"
	"spendwise/internal/storage"
)

type fakeUserStore struct {
	users   []storage.User
	listErr error
}

func (f *fakeUserStore) GetUserByAPIKey(_ context.Context, apiKey string) (*storage.User, error) {
	for i := range f.users {
		if f.users[i].APIKey == apiKey {
			return &f.users[i], nil
		}
	}
	return nil, storage.ErrNotFound
}

func (f *fakeUserStore) ListUsers(_ context.Context) ([]storage.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.users, nil
}

type fakeImporter struct {
	calls  []string
	result services.ImportResult
	err    error
}

func (f *fakeImporter) Import(_ context.Context, userID string, _ []services.BankTransaction) (services.ImportResult, error) {
	f.calls = append(f.calls, userID)
	return f.result, f.err
}

func TestHandleBatchImportsForKnownUser(t *testing.T) {
	store := &fakeUserStore{users: []storage.User{{ID: "u1", APIKey: "key-1"}}}
	importer := &fakeImporter{result: services.ImportResult{TotalReceived: 2, SavedCount: 2}}
	w := NewImportWorker(store, importer)

	msg := amqp.NewTransactionBatchMessage("key-1", []services.BankTransaction{
		{ID: "tx-1", Amount: "-12.50"},
		{ID: "tx-2", Amount: "-3.00"},
	})

	if err := w.HandleBatch(context.Background(), msg); err != nil {
		t.Fatalf("HandleBatch() error = %v", err)
	}
	if len(importer.calls) != 1 || importer.calls[0] != "u1" {
		t.Errorf("importer called with %v, want [u1]", importer.calls)
	}
}

func TestHandleBatchDropsUnknownAPIKey(t *testing.T) {
	store := &fakeUserStore{}
	importer := &fakeImporter{}
	w := NewImportWorker(store, importer)

	msg := amqp.NewTransactionBatchMessage("nope", []services.BankTransaction{{ID: "tx-1"}})

	// No error: returning one would make the broker requeue the batch.
	if err := w.HandleBatch(context.Background(), msg); err != nil {
		t.Fatalf("HandleBatch() error = %v, want nil for unknown key", err)
	}
	if len(importer.calls) != 0 {
		t.Errorf("importer called %d times, want 0", len(importer.calls))
	}
}

func TestHandleBatchPropagatesImportError(t *testing.T) {
	store := &fakeUserStore{users: []storage.User{{ID: "u1", APIKey: "key-1"}}}
	importer := &fakeImporter{err: errors.New("disk full")}
	w := NewImportWorker(store, importer)

	msg := amqp.NewTransactionBatchMessage("key-1", []services.BankTransaction{{ID: "tx-1"}})

	if err := w.HandleBatch(context.Background(), msg); err == nil {
		t.Fatal("HandleBatch() error = nil, want import error")
	}
}

type fakeChecker struct {
	newPeriods map[string]bool
	errFor     map[string]error
	checked    []string
}

func (f *fakeChecker) CheckForNewPeriod(_ context.Context, userID string, _ time.Time) (bool, error) {
	f.checked = append(f.checked, userID)
	if err := f.errFor[userID]; err != nil {
		return false, err
	}
	return f.newPeriods[userID], nil
}

func TestSweepChecksEveryUser(t *testing.T) {
	store := &fakeUserStore{users: []storage.User{{ID: "u1"}, {ID: "u2"}, {ID: "u3"}}}
	checker := &fakeChecker{newPeriods: map[string]bool{"u2": true}}
	w := NewPeriodWorker(store, checker)
	w.now = func() time.Time { return time.Date(2024, 3, 26, 6, 0, 0, 0, time.UTC) }

	if err := w.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep() error = %v", err)
	}
	if len(checker.checked) != 3 {
		t.Errorf("checked %d users, want 3", len(checker.checked))
	}
}

func TestSweepContinuesPastFailingUser(t *testing.T) {
	store := &fakeUserStore{users: []storage.User{{ID: "u1"}, {ID: "u2"}}}
	checker := &fakeChecker{errFor: map[string]error{"u1": errors.New("corrupt config")}}
	w := NewPeriodWorker(store, checker)

	if err := w.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep() error = %v, want nil despite per-user failure", err)
	}
	if len(checker.checked) != 2 {
		t.Errorf("checked %d users, want 2", len(checker.checked))
	}
}

func TestSweepFailsWhenUsersCannotBeListed(t *testing.T) {
	store := &fakeUserStore{listErr: errors.New("db locked")}
	w := NewPeriodWorker(store, &fakeChecker{})

	if err := w.Sweep(context.Background()); err == nil {
		t.Fatal("Sweep() error = nil, want list error")
	}
}
