// Package worker holds the background jobs: queued transaction-batch imports
// and the daily new-period sweep.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"spendwise/internal/amqp"
	"spendwise/internal/services"
	"spendwise/internal/storage"
)

// UserResolver maps an API key from a queued message to its user.
type UserResolver interface {
	GetUserByAPIKey(ctx context.Context, apiKey string) (*storage.User, error)
}

// BatchImporter saves a batch of bank transactions for a user.
type BatchImporter interface {
	Import(ctx context.Context, userID string, transactions []services.BankTransaction) (services.ImportResult, error)
}

// ImportWorker consumes queued transaction batches and writes them into the
// owning user's active set.
type ImportWorker struct {
	users    UserResolver
	importer BatchImporter
}

func NewImportWorker(users UserResolver, importer BatchImporter) *ImportWorker {
	return &ImportWorker{users: users, importer: importer}
}

// HandleBatch processes one queued batch. An unknown API key drops the batch
// without error so the broker does not requeue it forever.
func (w *ImportWorker) HandleBatch(ctx context.Context, msg *amqp.TransactionBatchMessage) error {
	user, err := w.users.GetUserByAPIKey(ctx, msg.APIKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.WarnContext(ctx, "Dropping batch for unknown API key",
				"transaction_count", len(msg.Transactions))
			return nil
		}
		return fmt.Errorf("resolve API key: %w", err)
	}

	result, err := w.importer.Import(ctx, user.ID, msg.Transactions)
	if err != nil {
		return fmt.Errorf("import batch: %w", err)
	}

	slog.InfoContext(ctx, "Queued batch imported",
		"user_id", user.ID,
		"saved_count", result.SavedCount,
		"skipped_count", result.SkippedCount,
		"failed_count", result.FailedCount)
	return nil
}
