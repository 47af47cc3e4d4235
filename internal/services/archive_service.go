// Package services holds the business operations that sit between the HTTP
// layer and storage: period archival, bank-transaction import, and new-period
// detection.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"spendwise/internal/core"

	"github.com/google/uuid"
)

// ArchiveStore is the slice of the repository the archiver needs.
type ArchiveStore interface {
	InsertArchivedPeriod(ctx context.Context, userID string, p core.ArchivedPeriod) error
	DeleteExpense(ctx context.Context, userID, id string) error
}

// ArchiveExporter receives a copy of every successfully archived period.
// Export failures never affect the archive operation itself.
type ArchiveExporter interface {
	ExportArchivedPeriod(ctx context.Context, userID string, p core.ArchivedPeriod) error
}

// PartialArchiveError reports an archive whose record was durably written but
// whose active-set cleanup did not fully complete. The archived data is safe;
// the listed expenses are duplicated in the active set until deletion is
// retried.
type PartialArchiveError struct {
	ArchiveID string
	FailedIDs []string
}

func (e *PartialArchiveError) Error() string {
	return fmt.Sprintf("archive %s written but %d expense(s) not removed from active set: %s",
		e.ArchiveID, len(e.FailedIDs), strings.Join(e.FailedIDs, ", "))
}

// Archiver performs the one-way OPEN -> CLOSED transition of a budget period.
type Archiver struct {
	store    ArchiveStore
	exporter ArchiveExporter
	now      func() time.Time
}

func NewArchiver(store ArchiveStore, exporter ArchiveExporter) *Archiver {
	return &Archiver{
		store:    store,
		exporter: exporter,
		now:      time.Now,
	}
}

// Archive freezes the given expenses into an immutable archive record, then
// removes them from the active set.
//
// The caller selects the expenses; no re-filtering by date happens here. An
// empty slice is a deliberate no-op: nothing is persisted and (nil, nil) is
// returned, so callers can tell the user there was nothing to archive.
//
// The archive insert happens strictly before any deletion. A crash or failure
// between the two steps leaves expenses duplicated (recoverable), never lost.
// Deletion failures after a successful insert are reported as
// *PartialArchiveError rather than rolled back.
func (a *Archiver) Archive(ctx context.Context, userID string, expenses []core.Expense, periodStart, periodEnd core.Date) (*core.ArchivedPeriod, error) {
	if len(expenses) == 0 {
		slog.InfoContext(ctx, "Nothing to archive", "user_id", userID)
		return nil, nil
	}

	// Snapshot by value so later mutation of the live set cannot reach
	// into the archive.
	frozen := make([]core.Expense, len(expenses))
	copy(frozen, expenses)

	archived := core.ArchivedPeriod{
		ID:          uuid.NewString(),
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		Expenses:    frozen,
		TotalSpent:  core.TotalAmount(frozen),
		ArchivedAt:  a.now(),
	}

	if err := a.store.InsertArchivedPeriod(ctx, userID, archived); err != nil {
		return nil, fmt.Errorf("write archive record: %w", err)
	}

	slog.InfoContext(ctx, "Period archived",
		"archive_id", archived.ID,
		"user_id", userID,
		"period_start", periodStart.ISO(),
		"period_end", periodEnd.ISO(),
		"expense_count", len(frozen),
		"total_spent_cents", archived.TotalSpent.Cents)

	var failed []string
	for _, e := range frozen {
		if err := a.store.DeleteExpense(ctx, userID, e.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to remove archived expense from active set",
				"archive_id", archived.ID,
				"expense_id", e.ID,
				"error", err)
			failed = append(failed, e.ID)
		}
	}
	if len(failed) > 0 {
		return &archived, &PartialArchiveError{ArchiveID: archived.ID, FailedIDs: failed}
	}

	if a.exporter != nil {
		if err := a.exporter.ExportArchivedPeriod(ctx, userID, archived); err != nil {
			slog.ErrorContext(ctx, "Archive export failed",
				"archive_id", archived.ID, "error", err)
		}
	}

	return &archived, nil
}
