package server

import (
	"auction-market/internal/auth"
	handler "auction-market/services/auction/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application. Mutating
// operations require a verified identity with the right role; reads and the
// health probe are open.
func SetupRouter(auctionService handler.AuctionServiceInterface, verifier auth.Verifier) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging

	auctionHandler := handler.NewAuctionHandler(auctionService)

	router.GET("/health", auctionHandler.HealthHandler)

	auctions := router.Group("/auctions")
	{
		auctions.GET("", auctionHandler.ListAuctionsHandler)
		auctions.GET("/:auction_id", auctionHandler.GetAuctionHandler)
		auctions.POST("", RequireAuth(verifier, auth.RoleUser), auctionHandler.CreateAuctionHandler)
		auctions.POST("/:auction_id/bids", RequireAuth(verifier, auth.RoleUser), auctionHandler.PlaceBidHandler)
		auctions.DELETE("/:auction_id", RequireAuth(verifier, auth.RoleAdmin), auctionHandler.CancelAuctionHandler)
	}

	return router
}
