package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RaffleStatus string

const (
	RaffleStatusDraft     RaffleStatus = "draft"
	RaffleStatusActive    RaffleStatus = "active"
	RaffleStatusPaused    RaffleStatus = "paused"
	RaffleStatusCompleted RaffleStatus = "completed"
	RaffleStatusCancelled RaffleStatus = "cancelled"
)

type RaffleType string

const (
	RaffleTypeStandard   RaffleType = "standard"
	RaffleTypeInstantWin RaffleType = "instant_win"
	RaffleTypeTiered     RaffleType = "tiered"
)

type SelectionMethod string

const (
	SelectionRandom      SelectionMethod = "random"
	SelectionProbability SelectionMethod = "probability"
	SelectionFCFS        SelectionMethod = "first_come_first_served"
	SelectionWeighted    SelectionMethod = "weighted"
)

type Raffle struct {
	ID                      primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name                    string             `json:"name" bson:"name" validate:"required"`
	NameLower               string             `json:"-" bson:"name_lower"`
	Description             string             `json:"description" bson:"description"`
	Status                  RaffleStatus       `json:"status" bson:"status"`
	Type                    RaffleType         `json:"type" bson:"type"`
	WinnerSelectionMethod   SelectionMethod    `json:"winner_selection_method" bson:"winner_selection_method"`
	RegistrationStart       time.Time          `json:"registration_start" bson:"registration_start" validate:"required"`
	RegistrationEnd         time.Time          `json:"registration_end" bson:"registration_end" validate:"required"`
	DrawDate                time.Time          `json:"draw_date" bson:"draw_date" validate:"required"`
	MinTicketsToParticipate int                `json:"min_tickets_to_participate" bson:"min_tickets_to_participate"`
	MaxTicketsPerUser       int                `json:"max_tickets_per_user" bson:"max_tickets_per_user"`
	MaxParticipants         int                `json:"max_participants" bson:"max_participants"`
	EntryFee                float64            `json:"entry_fee" bson:"entry_fee"`
	IsPublic                bool               `json:"is_public" bson:"is_public"`
	RequiresVerification    bool               `json:"requires_verification" bson:"requires_verification"`
	ParticipantCount        int64              `json:"participant_count" bson:"participant_count"`
	CreatedBy               primitive.ObjectID `json:"created_by" bson:"created_by"`
	CreatedAt               time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt               time.Time          `json:"updated_at" bson:"updated_at"`
}

// raffleTransitions is the single transition table for the raffle state
// machine. Completed and cancelled are terminal.
var raffleTransitions = map[RaffleStatus][]RaffleStatus{
	RaffleStatusDraft:  {RaffleStatusActive, RaffleStatusCancelled},
	RaffleStatusActive: {RaffleStatusPaused, RaffleStatusCompleted, RaffleStatusCancelled},
	RaffleStatusPaused: {RaffleStatusActive, RaffleStatusCompleted, RaffleStatusCancelled},
}

func (s RaffleStatus) CanTransitionTo(target RaffleStatus) bool {
	for _, allowed := range raffleTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (s RaffleStatus) IsTerminal() bool {
	return s == RaffleStatusCompleted || s == RaffleStatusCancelled
}

// IsRegistrationOpen reports whether new entries are accepted at t. A
// paused raffle keeps its window but refuses entries.
func (r *Raffle) IsRegistrationOpen(t time.Time) bool {
	if r.Status != RaffleStatusActive {
		return false
	}
	return !t.Before(r.RegistrationStart) && !t.After(r.RegistrationEnd)
}

// IsEligibleForDraw reports whether the draw may run at t: registration is
// over, the draw date has arrived, and the raffle is not already settled.
func (r *Raffle) IsEligibleForDraw(t time.Time) bool {
	if r.Status != RaffleStatusActive && r.Status != RaffleStatusPaused {
		return false
	}
	return t.After(r.RegistrationEnd) && !t.Before(r.DrawDate)
}

// AllowsMultipleWins reports whether one user may win more than one prize
// tier within a single draw.
func (r *Raffle) AllowsMultipleWins() bool {
	return r.Type == RaffleTypeInstantWin || r.Type == RaffleTypeTiered
}

func (r *Raffle) RemainingSlots() int64 {
	if r.MaxParticipants <= 0 {
		return -1
	}
	remaining := int64(r.MaxParticipants) - r.ParticipantCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

// RaffleSnapshot is the compact view returned with every entry response.
type RaffleSnapshot struct {
	RaffleID        primitive.ObjectID `json:"raffle_id"`
	Name            string             `json:"name"`
	Status          RaffleStatus       `json:"status"`
	RegistrationEnd time.Time          `json:"registration_end"`
	DrawDate        time.Time          `json:"draw_date"`
	RemainingSlots  int64              `json:"remaining_slots"`
}

func (r *Raffle) Snapshot() *RaffleSnapshot {
	return &RaffleSnapshot{
		RaffleID:        r.ID,
		Name:            r.Name,
		Status:          r.Status,
		RegistrationEnd: r.RegistrationEnd,
		DrawDate:        r.DrawDate,
		RemainingSlots:  r.RemainingSlots(),
	}
}
