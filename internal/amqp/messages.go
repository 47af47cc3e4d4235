package amqp

import (
	"encoding/json"
	"time"

	"spendwise/internal/services"
)

// TransactionBatchMessage carries one batch of bank transactions from the API
// to the import worker. The API key identifies the owning user; the worker
// resolves it to a user id before importing.
type TransactionBatchMessage struct {
	APIKey       string                     `json:"apiKey"`
	Transactions []services.BankTransaction `json:"transactions"`
	Timestamp    time.Time                  `json:"timestamp"`
}

func NewTransactionBatchMessage(apiKey string, txs []services.BankTransaction) *TransactionBatchMessage {
	return &TransactionBatchMessage{
		APIKey:       apiKey,
		Transactions: txs,
		Timestamp:    time.Now(),
	}
}

func (m *TransactionBatchMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionBatchMessageFromJSON(data []byte) (*TransactionBatchMessage, error) {
	var msg TransactionBatchMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
