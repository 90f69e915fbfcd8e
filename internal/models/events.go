package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DomainEvent is a fact produced by a command after its state change has
// been persisted. Services return events explicitly instead of holding an
// uncommitted list on the aggregate, so publication stays a separate step.
type DomainEvent interface {
	EventName() string
	OccurredAt() time.Time
}

type TicketsIssued struct {
	RaffleID   primitive.ObjectID
	UserID     primitive.ObjectID
	TicketIDs  []primitive.ObjectID
	SourceType TicketSource
	At         time.Time
}

func (e TicketsIssued) EventName() string     { return "raffle.tickets_issued" }
func (e TicketsIssued) OccurredAt() time.Time { return e.At }

type TicketCancelled struct {
	TicketID primitive.ObjectID
	RaffleID primitive.ObjectID
	UserID   primitive.ObjectID
	Reason   string
	At       time.Time
}

func (e TicketCancelled) EventName() string     { return "raffle.ticket_cancelled" }
func (e TicketCancelled) OccurredAt() time.Time { return e.At }

type RaffleStatusChanged struct {
	RaffleID primitive.ObjectID
	From     RaffleStatus
	To       RaffleStatus
	At       time.Time
}

func (e RaffleStatusChanged) EventName() string     { return "raffle.status_changed" }
func (e RaffleStatusChanged) OccurredAt() time.Time { return e.At }

type RaffleDrawn struct {
	RaffleID    primitive.ObjectID
	WinnerCount int
	At          time.Time
}

func (e RaffleDrawn) EventName() string     { return "raffle.drawn" }
func (e RaffleDrawn) OccurredAt() time.Time { return e.At }

type WinnerStatusChanged struct {
	WinnerID primitive.ObjectID
	RaffleID primitive.ObjectID
	From     WinnerStatus
	To       WinnerStatus
	At       time.Time
}

func (e WinnerStatusChanged) EventName() string     { return "raffle.winner_status_changed" }
func (e WinnerStatusChanged) OccurredAt() time.Time { return e.At }
