package auctionerrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Repository-level errors
var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrBidNotFound     = errors.New("bid not found")
	ErrUserNotFound    = errors.New("user not found")
)

// business logic errors
var (
	ErrValidation    = errors.New("validation failed")
	ErrForbidden     = errors.New("requester does not own the auction")
	ErrSelfBid       = errors.New("seller cannot bid on own auction")
	ErrAuctionClosed = errors.New("auction is no longer active")
	ErrBidTooLow     = errors.New("bid amount too low")
)

// identity errors
var (
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already exists")
)

// ValidationError carries field-level detail for malformed or missing input.
// It matches ErrValidation with errors.Is.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError from field/reason pairs.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+e.Fields[name])
	}
	return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// BidTooLowError reports the price the next bid had to beat.
// CurrentHighest is nil when the auction has no bids and the floor was MinPrice.
type BidTooLowError struct {
	Amount         int64
	CurrentHighest *int64
	MinPrice       *int64
}

func (e *BidTooLowError) Error() string {
	switch {
	case e.CurrentHighest != nil:
		return fmt.Sprintf("%s: %d must exceed current highest bid %d", ErrBidTooLow, e.Amount, *e.CurrentHighest)
	case e.MinPrice != nil:
		return fmt.Sprintf("%s: %d is below minimum price %d", ErrBidTooLow, e.Amount, *e.MinPrice)
	default:
		return ErrBidTooLow.Error()
	}
}

func (e *BidTooLowError) Unwrap() error { return ErrBidTooLow }
