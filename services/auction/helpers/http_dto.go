package helpers

import (
	"time"

	model "auction-market/internal/models"
)

// Request/Response DTOs
type CreateAuctionRequest struct {
	ItemID        string `json:"item_id" binding:"required"`
	StartingPrice int64  `json:"starting_price" binding:"required,gt=0"`
}

type PlaceBidRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

type BidResponse struct {
	BidID     string `json:"bid_id"`
	AuctionID string `json:"auction_id"`
	BidderID  string `json:"bidder_id"`
	Amount    int64  `json:"amount"`
	CreatedAt string `json:"created_at"`
}

type AuctionResponse struct {
	AuctionID       string        `json:"auction_id"`
	ItemID          string        `json:"item_id"`
	SellerID        string        `json:"seller_id"`
	CurrentWinnerID string        `json:"current_winner_id"`
	StartingPrice   int64         `json:"starting_price"`
	CurrentPrice    int64         `json:"current_price"`
	CreatedAt       string        `json:"created_at"`
	EndsAt          string        `json:"ends_at"`
	Bids            []BidResponse `json:"bids"`
}

// NewBidResponse converts a bid record into its wire shape
func NewBidResponse(bid model.Bid) BidResponse {
	return BidResponse{
		BidID:     bid.BidID,
		AuctionID: bid.AuctionID,
		BidderID:  bid.BidderID,
		Amount:    bid.Amount,
		CreatedAt: bid.CreatedAt.UTC().Format(time.RFC3339),
	}
}

// NewAuctionResponse converts an auction record into its wire shape
func NewAuctionResponse(auction model.Auction) AuctionResponse {
	bids := make([]BidResponse, 0, len(auction.Bids))
	for _, b := range auction.Bids {
		bids = append(bids, NewBidResponse(b))
	}
	return AuctionResponse{
		AuctionID:       auction.AuctionID,
		ItemID:          auction.ItemID,
		SellerID:        auction.SellerID,
		CurrentWinnerID: auction.CurrentWinnerID,
		StartingPrice:   auction.StartingPrice,
		CurrentPrice:    auction.CurrentPrice,
		CreatedAt:       auction.CreatedAt.UTC().Format(time.RFC3339),
		EndsAt:          auction.EndsAt.UTC().Format(time.RFC3339),
		Bids:            bids,
	}
}
