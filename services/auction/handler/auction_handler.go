package handler

import (
	"context"
	"fmt"
	"net/http"

	model "auction-market/internal/models"
	"auction-market/services/auction/helpers"
	"auction-market/utils"

	"github.com/gin-gonic/gin"
)

type AuctionServiceInterface interface {
	CreateAuction(ctx context.Context, sellerID, itemID string, startingPrice int64) (model.Auction, error)
	PlaceBid(ctx context.Context, bidderID, auctionID string, amount int64) (model.Bid, error)
	CancelAuction(ctx context.Context, auctionID string) error
	GetAuction(auctionID string) (model.Auction, error)
	ListActiveAuctions() ([]model.Auction, error)
	Health() error
}

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// CreateAuctionHandler handles POST /auctions. The seller is the
// authenticated caller, never a field of the request body.
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}
	sellerID := c.GetString("userID")

	auction, err := h.service.CreateAuction(c.Request.Context(), sellerID, req.ItemID, req.StartingPrice)
	if err != nil {
		status, code, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, code, fmt.Errorf("%s: %w", message, err), message)
		utils.Error("CreateAuctionHandler: failed to create auction", map[string]any{
			"handler":   "CreateAuctionHandler",
			"seller_id": sellerID,
			"item_id":   req.ItemID,
			"error":     err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewAuctionResponse(auction), "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id": auction.AuctionID,
		"seller_id":  sellerID,
		"item_id":    req.ItemID,
	})
}

// PlaceBidHandler handles POST /auctions/:auction_id/bids
func (h *AuctionHandler) PlaceBidHandler(c *gin.Context) {
	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}
	auctionID := c.Param("auction_id")
	bidderID := c.GetString("userID")

	bid, err := h.service.PlaceBid(c.Request.Context(), bidderID, auctionID, req.Amount)
	if err != nil {
		status, code, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, code, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("PlaceBidHandler: bid rejected", map[string]any{
			"auction_id": auctionID,
			"bidder_id":  bidderID,
			"amount":     req.Amount,
			"code":       code,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, helpers.NewBidResponse(bid), "bid placed successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid placed successfully", map[string]any{
		"bid_id":     bid.BidID,
		"auction_id": auctionID,
		"bidder_id":  bidderID,
		"amount":     bid.Amount,
	})
}

// CancelAuctionHandler handles DELETE /auctions/:auction_id (admin only)
func (h *AuctionHandler) CancelAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	if err := h.service.CancelAuction(c.Request.Context(), auctionID); err != nil {
		status, code, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, code, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("CancelAuctionHandler: cancel failed", map[string]any{
			"auction_id": auctionID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "auction cancelled successfully")
	helpers.LogSuccess("CancelAuctionHandler", "auction cancelled successfully", map[string]any{
		"auction_id": auctionID,
		"admin_id":   c.GetString("userID"),
	})
}

// GetAuctionHandler handles GET /auctions/:auction_id
func (h *AuctionHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("auction_id")

	auction, err := h.service.GetAuction(auctionID)
	if err != nil {
		status, code, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, code, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("GetAuctionHandler: error retrieving auction", map[string]any{
			"auction_id": auctionID,
			"error":      err.Error(),
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, helpers.NewAuctionResponse(auction), "auction retrieved successfully")
}

// ListAuctionsHandler handles GET /auctions
func (h *AuctionHandler) ListAuctionsHandler(c *gin.Context) {
	auctions, err := h.service.ListActiveAuctions()
	if err != nil {
		status, code, message := helpers.MapErrorToHTTP(err)
		utils.JSONError(c, status, code, fmt.Errorf("%s: %w", message, err), message)
		utils.Warn("ListAuctionsHandler: error listing auctions", map[string]any{"error": err.Error()})
		return
	}

	resp := make([]helpers.AuctionResponse, 0, len(auctions))
	for _, a := range auctions {
		resp = append(resp, helpers.NewAuctionResponse(a))
	}

	utils.JSONResponse(c, http.StatusOK, resp, "auctions retrieved successfully")
}

// HealthHandler handles GET /health
func (h *AuctionHandler) HealthHandler(c *gin.Context) {
	if err := h.service.Health(); err != nil {
		utils.JSONError(c, http.StatusServiceUnavailable, helpers.CodeServiceUnavailable, err, "store unreachable")
		return
	}
	utils.JSONResponse(c, http.StatusOK, nil, "ok")
}
