package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates all domain event types.
type EventType string

const (
	EventProfileCreated    EventType = "profile.created"
	EventTransactionPosted EventType = "transaction.posted"
	EventCouponPlaced      EventType = "coupon.placed"
	EventCouponSettled     EventType = "coupon.settled"
	EventMatchSettled      EventType = "match.settled"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateProfile AggregateType = "profile"
	AggregateWallet  AggregateType = "wallet"
	AggregateCoupon  AggregateType = "coupon"
	AggregateMatch   AggregateType = "match"
)

// OutboxDraft is the payload written to the event_outbox table, within
// the same database transaction as the state change it describes.
type OutboxDraft struct {
	EventID       uuid.UUID       `json:"event_id"`
	AggregateType AggregateType   `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     EventType       `json:"event_type"`
	PartitionKey  string          `json:"partition_key"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewTransactionPostedEvent builds the outbox event for a ledger entry.
func NewTransactionPostedEvent(tx *Transaction) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"transaction_id": tx.ID,
		"user_id":        tx.UserID,
		"type":           tx.Type,
		"amount":         tx.Amount,
		"balance_after":  tx.BalanceAfter,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateWallet,
		AggregateID:   tx.UserID.String(),
		EventType:     EventTransactionPosted,
		PartitionKey:  tx.UserID.String(),
		Payload:       payload,
		OccurredAt:    time.Now().UTC(),
	}
}

// NewProfileCreatedEvent builds the outbox event for a new registration.
func NewProfileCreatedEvent(profileID uuid.UUID, email string) OutboxDraft {
	payload, _ := json.Marshal(map[string]string{"email": email})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateProfile,
		AggregateID:   profileID.String(),
		EventType:     EventProfileCreated,
		PartitionKey:  profileID.String(),
		Payload:       payload,
		OccurredAt:    time.Now().UTC(),
	}
}

// NewCouponPlacedEvent builds the outbox event for a placed coupon.
func NewCouponPlacedEvent(c *Coupon, legCount int) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"coupon_id":     c.ID,
		"user_id":       c.UserID,
		"stake":         c.Stake,
		"total_odds":    c.TotalOdds,
		"potential_win": c.PotentialWin,
		"legs":          legCount,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateCoupon,
		AggregateID:   c.ID.String(),
		EventType:     EventCouponPlaced,
		PartitionKey:  c.UserID.String(),
		Payload:       payload,
		OccurredAt:    time.Now().UTC(),
	}
}

// NewCouponSettledEvent builds the outbox event for a coupon reaching a
// terminal state, whether by engine, cashout, or admin override.
func NewCouponSettledEvent(couponID, userID uuid.UUID, status CouponStatus, credited int64) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"coupon_id": couponID,
		"user_id":   userID,
		"status":    status,
		"credited":  credited,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateCoupon,
		AggregateID:   couponID.String(),
		EventType:     EventCouponSettled,
		PartitionKey:  userID.String(),
		Payload:       payload,
		OccurredAt:    time.Now().UTC(),
	}
}

// NewMatchSettledEvent builds the outbox event summarizing a settlement run.
func NewMatchSettledEvent(matchID uuid.UUID, status MatchStatus, settled int) OutboxDraft {
	payload, _ := json.Marshal(map[string]interface{}{
		"match_id": matchID,
		"status":   status,
		"settled":  settled,
	})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateMatch,
		AggregateID:   matchID.String(),
		EventType:     EventMatchSettled,
		PartitionKey:  matchID.String(),
		Payload:       payload,
		OccurredAt:    time.Now().UTC(),
	}
}
