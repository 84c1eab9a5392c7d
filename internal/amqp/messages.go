package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message kinds carried on the ledger-events queue. Messages are thin:
// they carry keys and a timestamp, never derived state. Consumers
// re-read the snapshot and re-derive, so a lost or reordered message can
// at worst delay an export, not corrupt it.
const (
	KindLedgerChanged = "ledger.changed"
	KindBudgetChanged = "budget.changed"
)

// Envelope wraps every published message with its kind so one queue can
// carry both.
type Envelope struct {
	Kind      string          `json:"kind"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// LedgerChangedMessage signals that a transaction was created or
// soft-deleted. Year and month locate the affected reporting period.
type LedgerChangedMessage struct {
	TransactionID string `json:"transaction_id"`
	Action        string `json:"action"` // "created" or "deleted"
	Year          int    `json:"year"`
	Month         int    `json:"month"`
	GroupID       string `json:"group_id,omitempty"`
}

// BudgetChangedMessage signals that a budget cell was upserted.
type BudgetChangedMessage struct {
	SubcategoryID string `json:"subcategory_id"`
	Month         int    `json:"month"`
	Year          int    `json:"year"`
	GroupID       string `json:"group_id,omitempty"`
}

func wrap(kind string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return json.Marshal(Envelope{Kind: kind, Timestamp: time.Now(), Payload: raw})
}

// EnvelopeFromJSON decodes a raw delivery body.
func EnvelopeFromJSON(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	if env.Kind == "" {
		return nil, fmt.Errorf("message without kind")
	}
	return &env, nil
}

// LedgerChanged decodes the payload of a ledger.changed envelope.
func (e *Envelope) LedgerChanged() (*LedgerChangedMessage, error) {
	var msg LedgerChangedMessage
	if err := json.Unmarshal(e.Payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// BudgetChanged decodes the payload of a budget.changed envelope.
func (e *Envelope) BudgetChanged() (*BudgetChangedMessage, error) {
	var msg BudgetChangedMessage
	if err := json.Unmarshal(e.Payload, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
