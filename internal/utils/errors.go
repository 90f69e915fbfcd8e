package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Domain error taxonomy. Handlers map these onto the HTTP surface; every
// validation failure carries the specific rule that was violated.

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func NewNotFoundError(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

type InvalidEntryError struct {
	Rule    string
	Message string
}

func (e *InvalidEntryError) Error() string {
	return fmt.Sprintf("invalid entry (%s): %s", e.Rule, e.Message)
}

func NewInvalidEntryError(rule, message string) *InvalidEntryError {
	return &InvalidEntryError{Rule: rule, Message: message}
}

type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

type InvalidStateError struct {
	Message string
}

func (e *InvalidStateError) Error() string {
	return e.Message
}

func NewInvalidStateError(format string, args ...interface{}) *InvalidStateError {
	return &InvalidStateError{Message: fmt.Sprintf(format, args...)}
}

type NotYetVerifiedError struct {
	Message string
}

func (e *NotYetVerifiedError) Error() string {
	return e.Message
}

func NewNotYetVerifiedError(message string) *NotYetVerifiedError {
	return &NotYetVerifiedError{Message: message}
}

type ClaimExpiredError struct {
	Message string
}

func (e *ClaimExpiredError) Error() string {
	return e.Message
}

func NewClaimExpiredError(message string) *ClaimExpiredError {
	return &ClaimExpiredError{Message: message}
}

// HandleDomainError writes the response for a service-layer error,
// falling back to 500 for anything outside the taxonomy.
func HandleDomainError(c *gin.Context, err error) {
	var notFound *NotFoundError
	var invalidEntry *InvalidEntryError
	var forbidden *ForbiddenError
	var invalidState *InvalidStateError
	var notVerified *NotYetVerifiedError
	var claimExpired *ClaimExpiredError

	switch {
	case errors.As(err, &notFound):
		NotFoundResponse(c, notFound.Resource)
	case errors.As(err, &invalidEntry):
		ErrorResponseWithDetails(c, http.StatusBadRequest, "INVALID_ENTRY", invalidEntry.Message,
			map[string]string{"rule": invalidEntry.Rule})
	case errors.As(err, &forbidden):
		ErrorResponse(c, http.StatusForbidden, "FORBIDDEN", forbidden.Message)
	case errors.As(err, &invalidState):
		ErrorResponse(c, http.StatusConflict, "INVALID_STATE", invalidState.Message)
	case errors.As(err, &notVerified):
		ErrorResponse(c, http.StatusBadRequest, "NOT_YET_VERIFIED", notVerified.Message)
	case errors.As(err, &claimExpired):
		ErrorResponse(c, http.StatusGone, "CLAIM_EXPIRED", claimExpired.Message)
	default:
		InternalServerErrorResponse(c)
	}
}
