package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	EventTransactionRecorded = "transaction_recorded"
	EventTransactionDeleted  = "transaction_deleted"
	EventCreditUpdated       = "credit_updated"
)

// LedgerEventMessage tells the worker that an account's ledger or credit
// record changed. It carries only identifiers; the worker reads current state
// from the database, so stale or duplicated deliveries are harmless.
type LedgerEventMessage struct {
	AccountID     uuid.UUID `json:"account_id"`
	TransactionID int64     `json:"transaction_id,omitempty"`
	Event         string    `json:"event"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewLedgerEventMessage creates an event for the given account.
func NewLedgerEventMessage(accountID uuid.UUID, transactionID int64, event string) *LedgerEventMessage {
	return &LedgerEventMessage{
		AccountID:     accountID,
		TransactionID: transactionID,
		Event:         event,
		Timestamp:     time.Now(),
	}
}

func (m *LedgerEventMessage) Validate() error {
	switch m.Event {
	case EventTransactionRecorded, EventTransactionDeleted, EventCreditUpdated:
	default:
		return fmt.Errorf("unknown event %q", m.Event)
	}
	if m.AccountID == uuid.Nil {
		return fmt.Errorf("missing account id")
	}
	return nil
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	return &msg, nil
}
