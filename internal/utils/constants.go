package utils

import "time"

// Application Constants
const (
	AppName    = "Raffled"
	AppVersion = "1.0.0"

	// Default values
	DefaultTimeZone = "UTC"
	DefaultCurrency = "USD"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Tickets
	TicketRandomSuffixLength = 4
	VerificationCodeLength   = 8

	// Draw
	DrawLockTTL = 2 * time.Minute

	// Claim sweep
	ClaimSweepInterval = 1 * time.Hour

	// Notification
	NotificationRetryAttempts = 3
	NotificationTimeout       = 30 * time.Second
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrInvalidInput     = "invalid input"
	ErrInternalServer   = "internal server error"
	ErrUnauthorized     = "unauthorized"
	ErrForbidden        = "forbidden"
	ErrValidationFailed = "validation failed"
)

// Entry validation rules, surfaced in InvalidEntry errors.
const (
	RuleRegistrationClosed = "registration_closed"
	RuleSourceRefRequired  = "source_ref_required"
	RuleCapacityReached    = "capacity_reached"
	RuleTicketCountBounds  = "ticket_count_out_of_bounds"
	RuleDuplicateSource    = "duplicate_source"
	RuleInsufficientAmount = "insufficient_amount"
)

// Cache Keys
const (
	CacheRafflePrefix   = "raffle:"
	CacheSnapshotPrefix = "raffle_snapshot:"
	CacheDrawLockPrefix = "raffle_draw_lock:"
)
