package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Operations carried by LedgerChangedMessage
const (
	OpTransactionCreated = "transaction.created"
	OpTransactionDeleted = "transaction.deleted"
	OpBudgetUpdated      = "budget.updated"
	OpCurrencyUpdated    = "currency.updated"
	OpLedgerImported     = "ledger.imported"
	OpRecurringCreated   = "recurring.materialized"
)

// LedgerChangedMessage announces that the ledger was mutated. It carries no
// ledger data; consumers reload the snapshot they need.
type LedgerChangedMessage struct {
	ID            string    `json:"id"`
	Operation     string    `json:"operation"`
	TransactionID int64     `json:"transaction_id,omitempty"`
	Revision      uint64    `json:"revision"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerChangedMessage creates a message with a fresh id
func NewLedgerChangedMessage(operation string, transactionID int64, revision uint64, now time.Time) *LedgerChangedMessage {
	return &LedgerChangedMessage{
		ID:            uuid.NewString(),
		Operation:     operation,
		TransactionID: transactionID,
		Revision:      revision,
		Timestamp:     now.UTC(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerChangedMessageFromJSON parses a message and checks its id
func LedgerChangedMessageFromJSON(data []byte) (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(msg.ID); err != nil {
		return nil, err
	}
	return &msg, nil
}
