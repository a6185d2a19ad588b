package models

import "time"

// Auction is the durable record of one timed auction. Amounts are integer
// smallest-unit currency. Version backs the store's conditional writes and
// increments on every successful update.
type Auction struct {
	AuctionID       string    `json:"auction_id"`
	ItemID          string    `json:"item_id"`
	SellerID        string    `json:"seller_id"`
	CurrentWinnerID string    `json:"current_winner_id"` // empty until a bid is accepted
	StartingPrice   int64     `json:"starting_price"`
	CurrentPrice    int64     `json:"current_price"`
	CreatedAt       time.Time `json:"created_at"`
	EndsAt          time.Time `json:"ends_at"`
	Bids            []Bid     `json:"bids"` // append-only, insertion order = chronological
	Version         int64     `json:"-"`
}

// Ended reports whether the auction's bidding window has closed at the given instant.
func (a Auction) Ended(now time.Time) bool {
	return !now.Before(a.EndsAt)
}

// Bid represents one accepted bid on an auction. Immutable once recorded.
type Bid struct {
	BidID     string    `json:"bid_id"`
	AuctionID string    `json:"auction_id"`
	BidderID  string    `json:"bidder_id"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}
