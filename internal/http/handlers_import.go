package http

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"spendwise/internal/amqp"
	"spendwise/internal/services"
)

// parseTransactionPayload accepts either a bare JSON array of transactions or
// an object wrapping them: {"transactions": [...]}.
func parseTransactionPayload(body []byte) ([]services.BankTransaction, error) {
	var bare []services.BankTransaction
	if err := json.Unmarshal(body, &bare); err == nil {
		return bare, nil
	}

	var wrapped struct {
		Transactions []services.BankTransaction `json:"transactions"`
	}
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("body must be a transaction array or {\"transactions\": [...]}")
	}
	if wrapped.Transactions == nil {
		return nil, fmt.Errorf("missing transactions field")
	}
	return wrapped.Transactions, nil
}

// handleImportTransactions ingests a bank feed batch. By default the import
// runs synchronously and the result is returned; with ?async=true and a
// configured broker, the batch is queued for the worker instead.
func (s *Server) handleImportTransactions(w http.ResponseWriter, r *http.Request) {
	user := requestUser(r)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	txs, err := parseTransactionPayload(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(txs) == 0 {
		writeError(w, http.StatusBadRequest, "empty transaction batch")
		return
	}
	if s.importMaxBatch > 0 && len(txs) > s.importMaxBatch {
		writeError(w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("batch of %d exceeds limit of %d transactions", len(txs), s.importMaxBatch))
		return
	}

	if r.URL.Query().Get("async") == "true" && s.publisher != nil {
		msg := amqp.NewTransactionBatchMessage(user.APIKey, txs)
		if err := s.publisher.PublishTransactionBatch(r.Context(), msg); err != nil {
			slog.ErrorContext(r.Context(), "Failed to queue transaction batch",
				"user_id", user.ID, "transaction_count", len(txs), "error", err)
			writeError(w, http.StatusServiceUnavailable, "failed to queue batch for import")
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]any{
			"queued":        true,
			"totalReceived": len(txs),
		})
		return
	}

	result, err := s.importer.Import(r.Context(), user.ID, txs)
	if err != nil {
		writeStoreError(w, r, err, "import transactions")
		return
	}
	writeJSON(w, http.StatusOK, result)
}
