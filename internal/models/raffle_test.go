package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRaffleStatusTransitions(t *testing.T) {
	cases := []struct {
		from    RaffleStatus
		to      RaffleStatus
		allowed bool
	}{
		{RaffleStatusDraft, RaffleStatusActive, true},
		{RaffleStatusDraft, RaffleStatusCancelled, true},
		{RaffleStatusDraft, RaffleStatusCompleted, false},
		{RaffleStatusDraft, RaffleStatusPaused, false},
		{RaffleStatusActive, RaffleStatusPaused, true},
		{RaffleStatusActive, RaffleStatusCompleted, true},
		{RaffleStatusActive, RaffleStatusCancelled, true},
		{RaffleStatusActive, RaffleStatusDraft, false},
		{RaffleStatusPaused, RaffleStatusActive, true},
		{RaffleStatusPaused, RaffleStatusCompleted, true},
		{RaffleStatusPaused, RaffleStatusCancelled, true},
		{RaffleStatusCompleted, RaffleStatusActive, false},
		{RaffleStatusCompleted, RaffleStatusCancelled, false},
		{RaffleStatusCancelled, RaffleStatusActive, false},
		{RaffleStatusCancelled, RaffleStatusCompleted, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestRaffleStatusIsTerminal(t *testing.T) {
	assert.True(t, RaffleStatusCompleted.IsTerminal())
	assert.True(t, RaffleStatusCancelled.IsTerminal())
	assert.False(t, RaffleStatusDraft.IsTerminal())
	assert.False(t, RaffleStatusActive.IsTerminal())
	assert.False(t, RaffleStatusPaused.IsTerminal())
}

func windowedRaffle(status RaffleStatus) *Raffle {
	return &Raffle{
		Status:            status,
		RegistrationStart: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		RegistrationEnd:   time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		DrawDate:          time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestIsRegistrationOpen(t *testing.T) {
	inside := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	before := time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC)
	after := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)

	assert.True(t, windowedRaffle(RaffleStatusActive).IsRegistrationOpen(inside))
	assert.False(t, windowedRaffle(RaffleStatusActive).IsRegistrationOpen(before))
	assert.False(t, windowedRaffle(RaffleStatusActive).IsRegistrationOpen(after))

	// A paused raffle refuses entries even inside the window.
	assert.False(t, windowedRaffle(RaffleStatusPaused).IsRegistrationOpen(inside))
	assert.False(t, windowedRaffle(RaffleStatusDraft).IsRegistrationOpen(inside))
	assert.False(t, windowedRaffle(RaffleStatusCompleted).IsRegistrationOpen(inside))
}

func TestIsRegistrationOpen_WindowBoundariesInclusive(t *testing.T) {
	raffle := windowedRaffle(RaffleStatusActive)
	assert.True(t, raffle.IsRegistrationOpen(raffle.RegistrationStart))
	assert.True(t, raffle.IsRegistrationOpen(raffle.RegistrationEnd))
}

func TestIsEligibleForDraw(t *testing.T) {
	onDrawDate := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	beforeDrawDate := time.Date(2026, 6, 30, 12, 0, 0, 0, time.UTC)
	duringRegistration := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	assert.True(t, windowedRaffle(RaffleStatusActive).IsEligibleForDraw(onDrawDate))
	assert.True(t, windowedRaffle(RaffleStatusPaused).IsEligibleForDraw(onDrawDate))

	assert.False(t, windowedRaffle(RaffleStatusActive).IsEligibleForDraw(beforeDrawDate))
	assert.False(t, windowedRaffle(RaffleStatusActive).IsEligibleForDraw(duringRegistration))
	assert.False(t, windowedRaffle(RaffleStatusCompleted).IsEligibleForDraw(onDrawDate))
	assert.False(t, windowedRaffle(RaffleStatusCancelled).IsEligibleForDraw(onDrawDate))
	assert.False(t, windowedRaffle(RaffleStatusDraft).IsEligibleForDraw(onDrawDate))
}

func TestAllowsMultipleWins(t *testing.T) {
	assert.False(t, (&Raffle{Type: RaffleTypeStandard}).AllowsMultipleWins())
	assert.True(t, (&Raffle{Type: RaffleTypeInstantWin}).AllowsMultipleWins())
	assert.True(t, (&Raffle{Type: RaffleTypeTiered}).AllowsMultipleWins())
}

func TestRemainingSlots(t *testing.T) {
	assert.Equal(t, int64(-1), (&Raffle{MaxParticipants: 0}).RemainingSlots())
	assert.Equal(t, int64(3), (&Raffle{MaxParticipants: 10, ParticipantCount: 7}).RemainingSlots())
	assert.Equal(t, int64(0), (&Raffle{MaxParticipants: 10, ParticipantCount: 12}).RemainingSlots())
}
