package helpers

import (
	"errors"
	"fmt"
	"net/http"

	"auction-market/internal/auctionerrors"
	"auction-market/utils"

	"github.com/gin-gonic/gin"
)

// Stable reason codes carried on every error response
const (
	CodeInvalidRequest     = "invalid_request"
	CodeBidTooLow          = "bid_too_low"
	CodePriceChanged       = "price_changed"
	CodeAuctionEnded       = "auction_ended"
	CodeAuctionNotFound    = "auction_not_found"
	CodeSelfBid            = "self_bid"
	CodeAlreadyWinning     = "already_winning"
	CodeInsufficientFunds  = "insufficient_funds"
	CodeItemNotOwned       = "item_not_owned"
	CodeServiceUnavailable = "service_unavailable"
	CodeInternalError      = "internal_error"
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, CodeInvalidRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// MapErrorToHTTP maps domain/service errors to HTTP status, reason code and message
func MapErrorToHTTP(err error) (int, string, string) {
	switch {
	case errors.Is(err, auctionerrors.ErrAuctionNotFound):
		return http.StatusNotFound, CodeAuctionNotFound, "auction not found"
	case errors.Is(err, auctionerrors.ErrInvalidInput):
		return http.StatusBadRequest, CodeInvalidRequest, "invalid request details"
	case errors.Is(err, auctionerrors.ErrBidTooLow):
		return http.StatusConflict, CodeBidTooLow, "bid amount too low"
	case errors.Is(err, auctionerrors.ErrPriceChanged):
		return http.StatusConflict, CodePriceChanged, "price changed, please retry"
	case errors.Is(err, auctionerrors.ErrAuctionEnded):
		return http.StatusGone, CodeAuctionEnded, "auction has ended"
	case errors.Is(err, auctionerrors.ErrSelfBid):
		return http.StatusForbidden, CodeSelfBid, "cannot bid on own auction"
	case errors.Is(err, auctionerrors.ErrAlreadyWinning):
		return http.StatusConflict, CodeAlreadyWinning, "already holding the winning bid"
	case errors.Is(err, auctionerrors.ErrInsufficientFunds):
		return http.StatusBadRequest, CodeInsufficientFunds, "insufficient funds"
	case errors.Is(err, auctionerrors.ErrItemNotOwned):
		return http.StatusForbidden, CodeItemNotOwned, "item not owned by seller"
	case errors.Is(err, auctionerrors.ErrServiceUnavailable):
		return http.StatusServiceUnavailable, CodeServiceUnavailable, "service temporarily unavailable"
	default:
		return http.StatusInternalServerError, CodeInternalError, "internal server error"
	}
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}
