package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PrizeType string

const (
	PrizeTypeCash       PrizeType = "cash"
	PrizeTypeGiftCard   PrizeType = "gift_card"
	PrizeTypeCredit     PrizeType = "credit"
	PrizeTypePhysical   PrizeType = "physical_item"
	PrizeTypeService    PrizeType = "service"
	PrizeTypeDiscount   PrizeType = "discount"
	PrizeTypePoints     PrizeType = "points"
	PrizeTypeFuelCredit PrizeType = "fuel_credit"
	PrizeTypeOther      PrizeType = "other"
)

type RafflePrize struct {
	ID                   primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RaffleID             primitive.ObjectID `json:"raffle_id" bson:"raffle_id" validate:"required"`
	Name                 string             `json:"name" bson:"name" validate:"required"`
	Description          string             `json:"description" bson:"description"`
	Type                 PrizeType          `json:"type" bson:"type"`
	Tier                 int                `json:"tier" bson:"tier"`
	Value                float64            `json:"value" bson:"value"`
	QuantityAvailable    int                `json:"quantity_available" bson:"quantity_available"`
	QuantityAwarded      int                `json:"quantity_awarded" bson:"quantity_awarded"`
	WinningProbability   float64            `json:"winning_probability,omitempty" bson:"winning_probability,omitempty"`
	RequiresVerification bool               `json:"requires_verification" bson:"requires_verification"`
	CreatedAt            time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at" bson:"updated_at"`
}

func (p *RafflePrize) RemainingQuantity() int {
	remaining := p.QuantityAvailable - p.QuantityAwarded
	if remaining < 0 {
		return 0
	}
	return remaining
}

// ClaimWindow returns how long a winner has to claim a prize of this type.
func (t PrizeType) ClaimWindow() time.Duration {
	switch t {
	case PrizeTypeCash:
		return 30 * 24 * time.Hour
	case PrizeTypeGiftCard:
		return 90 * 24 * time.Hour
	case PrizeTypeCredit:
		return 60 * 24 * time.Hour
	case PrizeTypePhysical:
		return 14 * 24 * time.Hour
	case PrizeTypeService:
		return 30 * 24 * time.Hour
	case PrizeTypeDiscount:
		return 60 * 24 * time.Hour
	case PrizeTypePoints:
		return 90 * 24 * time.Hour
	case PrizeTypeFuelCredit:
		return 60 * 24 * time.Hour
	default:
		return 30 * 24 * time.Hour
	}
}
