package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"spendwise/internal/core"
)

type fakeArchiveStore struct {
	inserted   []core.ArchivedPeriod
	deleted    []string
	insertErr  error
	deleteErrs map[string]error
}

func (f *fakeArchiveStore) InsertArchivedPeriod(_ context.Context, _ string, p core.ArchivedPeriod) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, p)
	return nil
}

func (f *fakeArchiveStore) DeleteExpense(_ context.Context, _ string, id string) error {
	if err, ok := f.deleteErrs[id]; ok {
		return err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeExporter struct {
	exported []core.ArchivedPeriod
	err      error
}

func (f *fakeExporter) ExportArchivedPeriod(_ context.Context, _ string, p core.ArchivedPeriod) error {
	if f.err != nil {
		return f.err
	}
	f.exported = append(f.exported, p)
	return nil
}

func sampleExpenses() []core.Expense {
	return []core.Expense{
		{ID: "x", Date: core.NewDate(2024, time.March, 1), Category: "food", Amount: core.Money{Cents: 1250}},
		{ID: "y", Date: core.NewDate(2024, time.March, 10), Category: "transport", Amount: core.Money{Cents: 750}},
	}
}

func TestArchiveEmptyIsNoOp(t *testing.T) {
	store := &fakeArchiveStore{}
	archiver := NewArchiver(store, nil)

	archived, err := archiver.Archive(context.Background(), "u1", nil,
		core.NewDate(2024, time.February, 25), core.NewDate(2024, time.March, 24))
	if err != nil {
		t.Fatalf("Archive() error = %v, want nil", err)
	}
	if archived != nil {
		t.Fatalf("Archive() = %+v, want nil for empty input", archived)
	}
	if len(store.inserted) != 0 || len(store.deleted) != 0 {
		t.Errorf("store touched on empty archive: inserted=%d deleted=%d", len(store.inserted), len(store.deleted))
	}
}

func TestArchiveTotalAndCleanup(t *testing.T) {
	store := &fakeArchiveStore{}
	archiver := NewArchiver(store, nil)

	archived, err := archiver.Archive(context.Background(), "u1", sampleExpenses(),
		core.NewDate(2024, time.February, 25), core.NewDate(2024, time.March, 24))
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	if archived == nil {
		t.Fatal("Archive() returned nil record")
	}
	if archived.TotalSpent.Cents != 2000 {
		t.Errorf("TotalSpent = %d cents, want 2000", archived.TotalSpent.Cents)
	}
	if archived.ID == "" {
		t.Error("archive ID is empty")
	}
	if len(store.inserted) != 1 {
		t.Fatalf("inserted %d archives, want 1", len(store.inserted))
	}
	if got := len(store.deleted); got != 2 {
		t.Errorf("deleted %d expenses, want 2", got)
	}
}

func TestArchiveSnapshotIsolation(t *testing.T) {
	store := &fakeArchiveStore{}
	archiver := NewArchiver(store, nil)

	expenses := sampleExpenses()
	archived, err := archiver.Archive(context.Background(), "u1", expenses,
		core.NewDate(2024, time.February, 25), core.NewDate(2024, time.March, 24))
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}

	expenses[0].Amount = core.Money{Cents: 999999}
	expenses[0].Category = "mutated"

	if archived.Expenses[0].Amount.Cents != 1250 {
		t.Errorf("archived amount changed to %d after caller mutation", archived.Expenses[0].Amount.Cents)
	}
	if archived.Expenses[0].Category != "food" {
		t.Errorf("archived category changed to %q after caller mutation", archived.Expenses[0].Category)
	}
}

func TestArchiveInsertFailureDeletesNothing(t *testing.T) {
	store := &fakeArchiveStore{insertErr: errors.New("disk full")}
	archiver := NewArchiver(store, nil)

	archived, err := archiver.Archive(context.Background(), "u1", sampleExpenses(),
		core.NewDate(2024, time.February, 25), core.NewDate(2024, time.March, 24))
	if err == nil {
		t.Fatal("Archive() error = nil, want insert failure")
	}
	if archived != nil {
		t.Errorf("Archive() = %+v, want nil on insert failure", archived)
	}
	if len(store.deleted) != 0 {
		t.Errorf("deleted %d expenses despite failed insert", len(store.deleted))
	}
}

func TestArchivePartialDeleteFailure(t *testing.T) {
	store := &fakeArchiveStore{
		deleteErrs: map[string]error{"y": errors.New("locked")},
	}
	archiver := NewArchiver(store, nil)

	archived, err := archiver.Archive(context.Background(), "u1", sampleExpenses(),
		core.NewDate(2024, time.February, 25), core.NewDate(2024, time.March, 24))
	if archived == nil {
		t.Fatal("Archive() returned nil record; archive was written and must be reported")
	}

	var partial *PartialArchiveError
	if !errors.As(err, &partial) {
		t.Fatalf("Archive() error = %v, want *PartialArchiveError", err)
	}
	if partial.ArchiveID != archived.ID {
		t.Errorf("PartialArchiveError.ArchiveID = %q, want %q", partial.ArchiveID, archived.ID)
	}
	if len(partial.FailedIDs) != 1 || partial.FailedIDs[0] != "y" {
		t.Errorf("FailedIDs = %v, want [y]", partial.FailedIDs)
	}
	// The archive record itself still holds every expense.
	if len(archived.Expenses) != 2 {
		t.Errorf("archived %d expenses, want 2", len(archived.Expenses))
	}
}

func TestArchiveExporterErrorsIgnored(t *testing.T) {
	store := &fakeArchiveStore{}
	exporter := &fakeExporter{err: errors.New("sheets unavailable")}
	archiver := NewArchiver(store, exporter)

	archived, err := archiver.Archive(context.Background(), "u1", sampleExpenses(),
		core.NewDate(2024, time.February, 25), core.NewDate(2024, time.March, 24))
	if err != nil {
		t.Fatalf("Archive() error = %v, exporter failures must not surface", err)
	}
	if archived == nil {
		t.Fatal("Archive() returned nil record")
	}
}

func TestArchiveExporterReceivesRecord(t *testing.T) {
	store := &fakeArchiveStore{}
	exporter := &fakeExporter{}
	archiver := NewArchiver(store, exporter)

	archived, err := archiver.Archive(context.Background(), "u1", sampleExpenses(),
		core.NewDate(2024, time.February, 25), core.NewDate(2024, time.March, 24))
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	if len(exporter.exported) != 1 {
		t.Fatalf("exporter called %d times, want 1", len(exporter.exported))
	}
	if exporter.exported[0].ID != archived.ID {
		t.Errorf("exported archive %q, want %q", exporter.exported[0].ID, archived.ID)
	}
}
