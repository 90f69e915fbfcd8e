package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWinnerStatusTransitions(t *testing.T) {
	cases := []struct {
		from    WinnerStatus
		to      WinnerStatus
		allowed bool
	}{
		{WinnerStatusPendingClaim, WinnerStatusNotified, true},
		{WinnerStatusPendingClaim, WinnerStatusVerified, true},
		{WinnerStatusPendingClaim, WinnerStatusClaimed, true},
		{WinnerStatusPendingClaim, WinnerStatusExpiredUnclaimed, true},
		{WinnerStatusPendingClaim, WinnerStatusDelivered, false},
		{WinnerStatusNotified, WinnerStatusVerified, true},
		{WinnerStatusNotified, WinnerStatusClaimed, true},
		{WinnerStatusNotified, WinnerStatusExpiredUnclaimed, true},
		{WinnerStatusVerified, WinnerStatusClaimed, true},
		{WinnerStatusVerified, WinnerStatusExpiredUnclaimed, true},
		{WinnerStatusVerified, WinnerStatusNotified, false},
		{WinnerStatusClaimed, WinnerStatusDelivered, true},
		{WinnerStatusClaimed, WinnerStatusExpiredUnclaimed, false},
		{WinnerStatusExpiredUnclaimed, WinnerStatusClaimed, false},
		{WinnerStatusDelivered, WinnerStatusClaimed, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestIsClaimExpired(t *testing.T) {
	deadline := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	winner := &RaffleWinner{ClaimDeadline: deadline}

	assert.False(t, winner.IsClaimExpired(deadline.Add(-time.Hour)))
	assert.False(t, winner.IsClaimExpired(deadline))
	assert.True(t, winner.IsClaimExpired(deadline.Add(time.Second)))
}
