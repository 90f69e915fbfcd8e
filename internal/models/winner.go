package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WinnerStatus string

const (
	WinnerStatusPendingClaim     WinnerStatus = "pending_claim"
	WinnerStatusNotified         WinnerStatus = "notified"
	WinnerStatusVerified         WinnerStatus = "verified"
	WinnerStatusClaimed          WinnerStatus = "claimed"
	WinnerStatusExpiredUnclaimed WinnerStatus = "expired_unclaimed"
	WinnerStatusDelivered        WinnerStatus = "delivered"
)

type RaffleWinner struct {
	ID               primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	RaffleID         primitive.ObjectID  `json:"raffle_id" bson:"raffle_id"`
	PrizeID          primitive.ObjectID  `json:"prize_id" bson:"prize_id"`
	TicketID         primitive.ObjectID  `json:"ticket_id" bson:"ticket_id"`
	UserID           primitive.ObjectID  `json:"user_id" bson:"user_id"`
	Status           WinnerStatus        `json:"status" bson:"status"`
	PrizeName        string              `json:"prize_name" bson:"prize_name"`
	PrizeValue       float64             `json:"prize_value" bson:"prize_value"`
	WonAt            time.Time           `json:"won_at" bson:"won_at"`
	ClaimDeadline    time.Time           `json:"claim_deadline" bson:"claim_deadline"`
	VerificationCode string              `json:"-" bson:"verification_code"`
	IsVerified       bool                `json:"is_verified" bson:"is_verified"`
	NotifiedAt       *time.Time          `json:"notified_at,omitempty" bson:"notified_at,omitempty"`
	VerifiedAt       *time.Time          `json:"verified_at,omitempty" bson:"verified_at,omitempty"`
	VerifiedBy       *primitive.ObjectID `json:"verified_by,omitempty" bson:"verified_by,omitempty"`
	ClaimedAt        *time.Time          `json:"claimed_at,omitempty" bson:"claimed_at,omitempty"`
	DeliveryInfo     string              `json:"delivery_info,omitempty" bson:"delivery_info,omitempty"`
	DeliveredAt      *time.Time          `json:"delivered_at,omitempty" bson:"delivered_at,omitempty"`
	CreatedAt        time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at" bson:"updated_at"`
}

// winnerTransitions: notified is a marker on top of pending_claim, so both
// can move forward; expired_unclaimed and delivered are terminal, claimed
// only advances to delivered.
var winnerTransitions = map[WinnerStatus][]WinnerStatus{
	WinnerStatusPendingClaim: {WinnerStatusNotified, WinnerStatusVerified, WinnerStatusClaimed, WinnerStatusExpiredUnclaimed},
	WinnerStatusNotified:     {WinnerStatusVerified, WinnerStatusClaimed, WinnerStatusExpiredUnclaimed},
	WinnerStatusVerified:     {WinnerStatusClaimed, WinnerStatusExpiredUnclaimed},
	WinnerStatusClaimed:      {WinnerStatusDelivered},
}

func (s WinnerStatus) CanTransitionTo(target WinnerStatus) bool {
	for _, allowed := range winnerTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (w *RaffleWinner) IsClaimExpired(t time.Time) bool {
	return t.After(w.ClaimDeadline)
}
