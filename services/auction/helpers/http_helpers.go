package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode"

	"crop-auction/internal/auctionerrors"
	"crop-auction/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// machine-readable failure reasons returned in the "reason" field
const (
	ReasonValidation      = "validation_failed"
	ReasonNotFound        = "not_found"
	ReasonForbidden       = "forbidden"
	ReasonSelfBid         = "self_bid"
	ReasonAuctionClosed   = "auction_closed"
	ReasonBidTooLow       = "bid_too_low"
	ReasonUnauthenticated = "unauthenticated"
	ReasonConflict        = "conflict"
	ReasonInternal        = "internal_error"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	extra := gin.H{"reason": ReasonValidation}
	if fields := bindingFields(err); len(fields) > 0 {
		extra["fields"] = fields
	}
	utils.JSONErrorWithFields(c, http.StatusBadRequest, wrappedErr, "invalid request payload", extra)
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status code, reason and message
func MapErrorToHTTP(err error) (int, string, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrValidation):
		return http.StatusBadRequest, ReasonValidation, "invalid input"
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, ReasonNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrBidNotFound):
		return http.StatusNotFound, ReasonNotFound, "bid not found"
	case errors.Is(err, auctionerrors.ErrUserNotFound):
		return http.StatusNotFound, ReasonNotFound, "user not found"
	case errors.Is(err, auctionerrors.ErrForbidden):
		return http.StatusForbidden, ReasonForbidden, "you can only update your own auctions"
	case errors.Is(err, auctionerrors.ErrSelfBid):
		return http.StatusBadRequest, ReasonSelfBid, "you cannot bid on your own auction"
	case errors.Is(err, auctionerrors.ErrAuctionClosed):
		return http.StatusBadRequest, ReasonAuctionClosed, "this auction is no longer active"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusBadRequest, ReasonBidTooLow, "your bid must be higher than the current highest bid"
	case errors.Is(err, auctionerrors.ErrUnauthenticated):
		return http.StatusUnauthorized, ReasonUnauthenticated, "authentication required"
	case errors.Is(err, auctionerrors.ErrInvalidCredentials):
		return http.StatusUnauthorized, ReasonUnauthenticated, "invalid credentials"
	case errors.Is(err, auctionerrors.ErrUsernameTaken):
		return http.StatusConflict, ReasonConflict, "username already exists"
	default:
		return http.StatusInternalServerError, ReasonInternal, "internal server error"
	}
}

// HandleServiceError writes the response for a failed service call and logs it
func HandleServiceError(c *gin.Context, handlerName string, err error, ctx map[string]any) {
	status, reason, message := MapErrorToHTTP(err)
	extra := gin.H{"reason": reason}

	var verr *auctionerrors.ValidationError
	if errors.As(err, &verr) {
		extra["fields"] = verr.Fields
	}
	var low *auctionerrors.BidTooLowError
	if errors.As(err, &low) {
		extra["currentHighestBid"] = low.CurrentHighest
		if low.MinPrice != nil {
			extra["minPrice"] = *low.MinPrice
		}
		if low.CurrentHighest == nil {
			message = "your bid must be at least the minimum price"
		}
	}

	utils.JSONErrorWithFields(c, status, fmt.Errorf("%s: %w", message, err), message, extra)

	fields := map[string]any{"handler": handlerName, "error": err.Error(), "status": status}
	for k, v := range ctx {
		fields[k] = v
	}
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": request failed", fields)
		return
	}
	utils.Warn(handlerName+": request rejected", fields)
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

// bindingFields extracts per-field reasons from validator errors raised during binding
func bindingFields(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := toSnake(fe.Field())
		switch fe.Tag() {
		case "required":
			fields[name] = "is required"
		case "gt":
			fields[name] = "must be greater than " + fe.Param()
		case "gte":
			fields[name] = "must be at least " + fe.Param()
		default:
			fields[name] = "is invalid"
		}
	}
	return fields
}

// toSnake converts a Go field name such as CropName to crop_name
func toSnake(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
