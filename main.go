package main

import (
	"context"
	"fmt"
	"os"

	"auction-market/internal/accounts"
	"auction-market/internal/auction"
	"auction-market/internal/auth"
	"auction-market/internal/consistency"
	"auction-market/internal/repository"
	"auction-market/internal/scheduler"
	"auction-market/internal/server"
	"auction-market/utils"
)

func main() {
	cfg := ParseArgs()
	if cfg.JWTSecret == "" {
		utils.Fatal("jwt-secret is required", nil)
	}

	store := repository.NewMemoryStore()
	accountsClient := accounts.NewHTTPClient(cfg.AccountServiceURL)
	caller := consistency.NewCaller(cfg.CallTimeout, cfg.CallAttempts, cfg.RetryInterval)

	// the scheduler fires the engine's finalization, and the engine registers
	// jobs with the scheduler; the closure breaks the construction cycle
	var auctionService *auction.AuctionService
	settleScheduler := scheduler.New(func(ctx context.Context, auctionID string) error {
		return auctionService.FinalizeAuction(ctx, auctionID)
	}, cfg.SchedulerRetryBase, cfg.SchedulerRetryMax)

	auctionService = auction.NewAuctionService(store, accountsClient, caller, settleScheduler, cfg.AuctionDuration)

	// recover pending finalizations from durable state before serving traffic
	recovered, err := settleScheduler.Rehydrate(store)
	if err != nil {
		utils.Fatal("failed to rehydrate scheduler", map[string]any{"error": err.Error()})
	}
	utils.Info("scheduler rehydrated", map[string]any{"jobs": recovered})

	settleScheduler.Start(context.Background())
	defer settleScheduler.Stop()

	verifier := auth.NewJWTVerifier(cfg.JWTSecret)
	router := server.SetupRouter(auctionService, verifier)

	fmt.Printf("Starting auction server on %s...\n", cfg.ListenAddr)
	if err := router.Run(cfg.ListenAddr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}
