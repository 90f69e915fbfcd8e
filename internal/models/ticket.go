package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TicketStatus string

const (
	TicketStatusActive      TicketStatus = "active"
	TicketStatusWon         TicketStatus = "won"
	TicketStatusExpired     TicketStatus = "expired"
	TicketStatusCancelled   TicketStatus = "cancelled"
	TicketStatusTransferred TicketStatus = "transferred"
	TicketStatusSuspended   TicketStatus = "suspended"
)

type TicketSource string

const (
	SourceCouponRedemption TicketSource = "coupon_redemption"
	SourcePurchase         TicketSource = "purchase"
	SourcePromotional      TicketSource = "promotional"
	SourceLoyaltyReward    TicketSource = "loyalty_reward"
	SourceReferral         TicketSource = "referral"
	SourceAdminIssued      TicketSource = "admin_issued"
)

type RaffleTicket struct {
	ID               primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	RaffleID         primitive.ObjectID  `json:"raffle_id" bson:"raffle_id" validate:"required"`
	UserID           primitive.ObjectID  `json:"user_id" bson:"user_id" validate:"required"`
	TicketNumber     string              `json:"ticket_number" bson:"ticket_number"`
	Status           TicketStatus        `json:"status" bson:"status"`
	SourceType       TicketSource        `json:"source_type" bson:"source_type"`
	SourceReference  string              `json:"source_reference" bson:"source_reference"`
	SourceSequence   int                 `json:"source_seq" bson:"source_seq"`
	StationID        *primitive.ObjectID `json:"station_id,omitempty" bson:"station_id,omitempty"`
	TransactionRef   string              `json:"transaction_ref,omitempty" bson:"transaction_ref,omitempty"`
	VerificationCode string              `json:"-" bson:"verification_code,omitempty"`
	IsVerified       bool                `json:"is_verified" bson:"is_verified"`
	VerifiedBy       *primitive.ObjectID `json:"verified_by,omitempty" bson:"verified_by,omitempty"`
	CancelReason     string              `json:"cancel_reason,omitempty" bson:"cancel_reason,omitempty"`
	CreatedAt        time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at" bson:"updated_at"`
}

// ticketTransitions: tickets are never hard-deleted, they only move to a
// terminal status. Suspended tickets may be reinstated.
var ticketTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusActive:    {TicketStatusWon, TicketStatusExpired, TicketStatusCancelled, TicketStatusTransferred, TicketStatusSuspended},
	TicketStatusSuspended: {TicketStatusActive, TicketStatusCancelled, TicketStatusExpired},
}

func (s TicketStatus) CanTransitionTo(target TicketStatus) bool {
	for _, allowed := range ticketTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// SourceWeight is the weight a ticket contributes under weighted selection.
func (s TicketSource) SourceWeight() float64 {
	switch s {
	case SourcePurchase:
		return 2.0
	case SourceCouponRedemption:
		return 1.5
	case SourceLoyaltyReward:
		return 1.3
	case SourceReferral:
		return 1.2
	case SourcePromotional:
		return 1.0
	case SourceAdminIssued:
		return 0.5
	default:
		return 1.0
	}
}

func IsValidTicketSource(s TicketSource) bool {
	switch s {
	case SourceCouponRedemption, SourcePurchase, SourcePromotional,
		SourceLoyaltyReward, SourceReferral, SourceAdminIssued:
		return true
	}
	return false
}
