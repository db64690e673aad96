package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// TransactionType enumerates all points ledger entry types.
type TransactionType string

const (
	TxSignupBonus TransactionType = "signup_bonus"
	TxStake       TransactionType = "stake"
	TxPayout      TransactionType = "payout"
	TxRefund      TransactionType = "refund"
	TxCashout     TransactionType = "cashout"

	// Admin override credits, kept distinct from engine settlements
	// so disputes are visible in the ledger.
	TxAdminPayout TransactionType = "admin_payout"
	TxAdminRefund TransactionType = "admin_refund"
)

// Transaction represents a transactions row (append-only ledger entry).
// BalanceAfter snapshots the points balance immediately after the entry
// was applied, within the same database transaction.
type Transaction struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	Type         TransactionType `json:"type"`
	Amount       int64           `json:"amount"`
	BalanceAfter int64           `json:"balance_after"`
	Reference    *string         `json:"reference,omitempty"`
	CouponID     *uuid.UUID      `json:"coupon_id,omitempty"`
	Metadata     json.RawMessage `json:"metadata"`
	CreatedAt    time.Time       `json:"created_at"`
}

// IdempotencyKey is the composite key used for ledger deduplication.
type IdempotencyKey struct {
	UserID    uuid.UUID
	Reference string
}

// PostEntryParams is the input to the atomic PostEntry operation.
// PointsDelta is applied server-side; Amount is the entry's face value.
type PostEntryParams struct {
	UserID      uuid.UUID
	Type        TransactionType
	Amount      int64
	PointsDelta int64
	Reference   *string
	CouponID    *uuid.UUID
	Metadata    json.RawMessage
}

// CommandResult is the return value of every ledger command.
type CommandResult struct {
	Transaction *Transaction
	Profile     *Profile
	Idempotent  bool // true when a duplicate reference returned the existing entry
}

// StakeParams holds the input for ExecuteStake.
type StakeParams struct {
	UserID    uuid.UUID
	Amount    int64
	Reference string
	CouponID  uuid.UUID
	Metadata  json.RawMessage
}

// CreditParams holds the input for ExecuteCredit.
type CreditParams struct {
	UserID    uuid.UUID
	Type      TransactionType
	Amount    int64
	Reference string
	CouponID  uuid.UUID
	Metadata  json.RawMessage
}
