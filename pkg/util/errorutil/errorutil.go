package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes shared by the bot, the router and the ops API.
const (
	CodeDuplicateTicket  = "DUPLICATE_TICKET"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeUnboundChannel   = "UNBOUND_CHANNEL"
	CodeTicketClosed     = "TICKET_CLOSED"
	CodeValidation       = "VALIDATION_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeTransportFailure = "TRANSPORT_FAILURE"
	CodeInternal         = "INTERNAL_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewDuplicateTicket reports that the requester already owns an open ticket.
func NewDuplicateTicket(requesterID, channelID string) error {
	details := map[string]any{"requester_id": requesterID}
	if channelID != "" {
		details["channel_id"] = channelID
	}
	return NewDomainError(CodeDuplicateTicket, "⚠️ You already have a ticket.", http.StatusConflict, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

// NewForbidden is the actor-level rejection used for staff-only and rating-only actions.
func NewForbidden(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusForbidden, nil)
}

func NewUnboundChannel(channelID string) error {
	return NewDomainError(CodeUnboundChannel, "This channel is not a ticket.", http.StatusUnprocessableEntity,
		map[string]any{"channel_id": channelID})
}

func NewTicketClosed(channelID string) error {
	return NewDomainError(CodeTicketClosed, "This ticket is already closing.", http.StatusConflict,
		map[string]any{"channel_id": channelID})
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewTransportFailure wraps a platform API failure.
func NewTransportFailure(op string, err error) error {
	return &DomainError{
		Code:       CodeTransportFailure,
		Message:    op + " failed",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}

// HasCode reports whether err carries the given domain code.
func HasCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// IsUserFacing reports whether the error message may be shown to the actor as-is.
func IsUserFacing(err error) bool {
	var domainErr *DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	switch domainErr.Code {
	case CodeDuplicateTicket, CodeUnauthorized, CodeUnboundChannel, CodeTicketClosed, CodeValidation:
		return true
	}
	return false
}
