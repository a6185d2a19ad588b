package auctionerrors

import "errors"

// Store-level errors
var (
	ErrAuctionNotFound  = errors.New("auction not found")
	ErrDuplicateAuction = errors.New("auction id already exists")
	ErrVersionConflict  = errors.New("auction modified since last read")
)

// Validation errors: rejected immediately, no state change
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrAuctionEnded   = errors.New("auction has ended")
	ErrBidTooLow      = errors.New("bid amount too low")
	ErrSelfBid        = errors.New("seller cannot bid on own auction")
	ErrAlreadyWinning = errors.New("bidder already holds the winning bid")
)

// Account Service outcomes surfaced through the consistency layer
var (
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrItemNotOwned       = errors.New("item not owned by user")
	ErrServiceUnavailable = errors.New("account service unavailable")
)

// Concurrency conflict: lost the bid race after bounded retries
var ErrPriceChanged = errors.New("price changed, please retry")
