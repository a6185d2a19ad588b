package auction

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"auction-market/internal/accounts"
	"auction-market/internal/auctionerrors"
	"auction-market/internal/consistency"
	model "auction-market/internal/models"
	"auction-market/internal/repository"
	"auction-market/utils"
)

// JobRegistrar is the scheduler surface the engine needs: register one
// finalization job per auction, cancel it on early settlement.
type JobRegistrar interface {
	Schedule(jobID string, runAt time.Time)
	Cancel(jobID string)
}

// AuctionService implements the marketplace engine: it validates and creates
// auctions, applies bids, and drives settlement. Every mutation of one
// auction runs under that auction's lock, so no two money-moving sequences
// for the same auction are ever in flight together; store writes are
// additionally version-conditioned.
type AuctionService struct {
	store         repository.AuctionStore
	accounts      accounts.Service
	caller        *consistency.Caller
	registrar     JobRegistrar
	duration      time.Duration
	maxBidRetries int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewAuctionService creates an AuctionService. duration is the fixed bidding
// window applied to every new auction.
func NewAuctionService(store repository.AuctionStore, accountsSvc accounts.Service, caller *consistency.Caller, registrar JobRegistrar, duration time.Duration) *AuctionService {
	return &AuctionService{
		store:         store,
		accounts:      accountsSvc,
		caller:        caller,
		registrar:     registrar,
		duration:      duration,
		maxBidRetries: 3,
		locks:         make(map[string]*sync.Mutex),
	}
}

// lockFor returns the per-auction mutex, creating it on first use
func (s *AuctionService) lockFor(auctionID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[auctionID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[auctionID] = l
	}
	return l
}

// CreateAuction escrows the item with the Account Service, persists the new
// auction, and registers its finalization job. If escrow fails nothing is
// written; if the store write fails the escrowed item is returned to the
// seller before the error is surfaced.
func (s *AuctionService) CreateAuction(ctx context.Context, sellerID, itemID string, startingPrice int64) (model.Auction, error) {
	if sellerID == "" || itemID == "" {
		return model.Auction{}, fmt.Errorf("service: %w - missing sellerID or itemID", auctionerrors.ErrInvalidInput)
	}
	if startingPrice <= 0 {
		return model.Auction{}, fmt.Errorf("service: %w - starting price must be positive", auctionerrors.ErrInvalidInput)
	}

	err := s.caller.Call(ctx, "escrow item", func(c context.Context) error {
		return s.accounts.RemoveItem(c, sellerID, itemID)
	})
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: failed to escrow item %s: %w", itemID, err)
	}

	now := time.Now().UTC()
	auction := model.Auction{
		AuctionID:     utils.GenerateID(),
		ItemID:        itemID,
		SellerID:      sellerID,
		StartingPrice: startingPrice,
		CurrentPrice:  startingPrice,
		CreatedAt:     now,
		EndsAt:        now.Add(s.duration),
	}

	if err := s.store.CreateAuction(auction); err != nil {
		// item is already escrowed, hand it back before failing the call
		if rerr := s.caller.Call(ctx, "return escrowed item", func(c context.Context) error {
			return s.accounts.AddItem(c, sellerID, itemID)
		}); rerr != nil {
			utils.Error("failed to return escrowed item after store write failure", map[string]any{
				"auction_id": auction.AuctionID,
				"item_id":    itemID,
				"seller_id":  sellerID,
				"error":      rerr.Error(),
			})
		}
		return model.Auction{}, fmt.Errorf("service: failed to persist auction: %w", err)
	}

	s.registrar.Schedule(auction.AuctionID, auction.EndsAt)

	utils.Info("auction created", map[string]any{
		"auction_id":     auction.AuctionID,
		"item_id":        itemID,
		"seller_id":      sellerID,
		"starting_price": startingPrice,
		"ends_at":        auction.EndsAt.Format(time.RFC3339),
	})
	return auction, nil
}

// PlaceBid validates and applies a bid. Funds move in a fixed order: the
// previous winner is refunded before the new bidder is debited, so a failure
// between the two leaves the auction with no escrowed winner rather than two.
func (s *AuctionService) PlaceBid(ctx context.Context, bidderID, auctionID string, amount int64) (model.Bid, error) {
	if bidderID == "" || auctionID == "" {
		return model.Bid{}, fmt.Errorf("service: %w - missing bidderID or auctionID", auctionerrors.ErrInvalidInput)
	}
	if amount <= 0 {
		return model.Bid{}, fmt.Errorf("service: %w - non-positive bid amount", auctionerrors.ErrInvalidInput)
	}

	lock := s.lockFor(auctionID)
	lock.Lock()
	defer lock.Unlock()

	for attempt := 0; attempt < s.maxBidRetries; attempt++ {
		bid, retry, err := s.tryBid(ctx, bidderID, auctionID, amount)
		if err == nil {
			return bid, nil
		}
		if !retry {
			return model.Bid{}, err
		}
	}
	return model.Bid{}, fmt.Errorf("service: bid on auction %s: %w", auctionID, auctionerrors.ErrPriceChanged)
}

// tryBid runs one read-validate-move-write cycle. retry is true only when
// the conditional write lost and the debit was compensated, so the caller
// may safely start over from a fresh snapshot.
func (s *AuctionService) tryBid(ctx context.Context, bidderID, auctionID string, amount int64) (model.Bid, bool, error) {
	auction, err := s.store.GetAuction(auctionID)
	if err != nil {
		return model.Bid{}, false, fmt.Errorf("service: %w", err)
	}

	now := time.Now().UTC()
	switch {
	case auction.Ended(now):
		return model.Bid{}, false, fmt.Errorf("service: auction %s: %w", auctionID, auctionerrors.ErrAuctionEnded)
	case bidderID == auction.SellerID:
		return model.Bid{}, false, fmt.Errorf("service: auction %s: %w", auctionID, auctionerrors.ErrSelfBid)
	case bidderID == auction.CurrentWinnerID:
		return model.Bid{}, false, fmt.Errorf("service: auction %s: %w", auctionID, auctionerrors.ErrAlreadyWinning)
	case amount <= auction.CurrentPrice:
		return model.Bid{}, false, fmt.Errorf("service: %w - current price is %d", auctionerrors.ErrBidTooLow, auction.CurrentPrice)
	}

	// refund first: if this fails the new bid is not committed, which keeps
	// at most one bidder escrowed per auction
	if auction.CurrentWinnerID != "" {
		err := s.caller.Call(ctx, "refund previous winner", func(c context.Context) error {
			return s.accounts.IncreaseBalance(c, auction.CurrentWinnerID, auction.CurrentPrice)
		})
		if err != nil {
			return model.Bid{}, false, fmt.Errorf("service: bid on auction %s: %w", auctionID, err)
		}
	}

	err = s.caller.Call(ctx, "debit bidder", func(c context.Context) error {
		return s.accounts.DecreaseBalance(c, bidderID, amount)
	})
	if err != nil {
		// the previous winner is refunded but the new bid did not land:
		// persist the no-winner state so the escrow bookkeeping stays honest
		if auction.CurrentWinnerID != "" {
			cleared := auction
			cleared.CurrentWinnerID = ""
			if uerr := s.store.UpdateAuction(cleared, auction.Version); uerr != nil {
				utils.Error("failed to persist cleared winner after debit failure", map[string]any{
					"auction_id": auctionID,
					"error":      uerr.Error(),
				})
			}
			utils.Error("debit failed after refund, auction left with no winner", map[string]any{
				"auction_id":      auctionID,
				"refunded_user":   auction.CurrentWinnerID,
				"refunded_amount": auction.CurrentPrice,
				"bidder_id":       bidderID,
				"error":           err.Error(),
			})
		}
		return model.Bid{}, false, fmt.Errorf("service: bid on auction %s: %w", auctionID, err)
	}

	bid := model.Bid{
		BidID:     utils.GenerateID(),
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    amount,
		CreatedAt: now,
	}
	updated := auction
	updated.Bids = append(updated.Bids, bid)
	updated.CurrentPrice = amount
	updated.CurrentWinnerID = bidderID

	switch err := s.store.UpdateAuction(updated, auction.Version); {
	case err == nil:
		utils.Info("bid accepted", map[string]any{
			"auction_id": auctionID,
			"bid_id":     bid.BidID,
			"bidder_id":  bidderID,
			"amount":     amount,
		})
		return bid, false, nil
	case errors.Is(err, auctionerrors.ErrVersionConflict), errors.Is(err, auctionerrors.ErrAuctionNotFound):
		// lost the conditional write; give the escrowed amount back before
		// retrying from a fresh snapshot
		if cerr := s.caller.Call(ctx, "compensate lost bid", func(c context.Context) error {
			return s.accounts.IncreaseBalance(c, bidderID, amount)
		}); cerr != nil {
			utils.Error("failed to compensate debit after lost write", map[string]any{
				"auction_id": auctionID,
				"bidder_id":  bidderID,
				"amount":     amount,
				"error":      cerr.Error(),
			})
			return model.Bid{}, false, fmt.Errorf("service: bid on auction %s: %w", auctionID, cerr)
		}
		if errors.Is(err, auctionerrors.ErrAuctionNotFound) {
			return model.Bid{}, false, fmt.Errorf("service: auction %s: %w", auctionID, auctionerrors.ErrAuctionEnded)
		}
		return model.Bid{}, true, fmt.Errorf("service: %w", err)
	default:
		return model.Bid{}, false, fmt.Errorf("service: failed to persist bid: %w", err)
	}
}

// FinalizeAuction settles an expired auction. Invoked only by the scheduler
// and idempotent: a missing record means a previous attempt already
// committed, so the call is a no-op. Record deletion is the commit point;
// any earlier failure leaves the job pending for retry.
func (s *AuctionService) FinalizeAuction(ctx context.Context, auctionID string) error {
	lock := s.lockFor(auctionID)
	lock.Lock()
	defer lock.Unlock()

	auction, err := s.store.GetAuction(auctionID)
	if errors.Is(err, auctionerrors.ErrAuctionNotFound) {
		// a previous attempt already committed; replayed job is a no-op
		utils.Debug("finalize skipped, record absent", map[string]any{"auction_id": auctionID})
		return nil
	}
	if err != nil {
		return fmt.Errorf("service: finalize auction %s: %w", auctionID, err)
	}

	var steps []consistency.Step
	if auction.CurrentWinnerID != "" {
		// item moves before money so a partial failure strands a credit,
		// not the unique item
		steps = []consistency.Step{
			{Op: "award item to winner", Do: func(c context.Context) error {
				return s.accounts.AddItem(c, auction.CurrentWinnerID, auction.ItemID)
			}},
			{Op: "credit seller", Do: func(c context.Context) error {
				return s.accounts.IncreaseBalance(c, auction.SellerID, auction.CurrentPrice)
			}},
		}
	} else {
		steps = []consistency.Step{
			{Op: "return item to seller", Do: func(c context.Context) error {
				return s.accounts.AddItem(c, auction.SellerID, auction.ItemID)
			}},
		}
	}

	if err := s.caller.Run(ctx, steps...); err != nil {
		return fmt.Errorf("service: finalize auction %s: %w", auctionID, err)
	}

	if err := s.store.DeleteAuction(auctionID); err != nil {
		return fmt.Errorf("service: finalize auction %s: delete record: %w", auctionID, err)
	}

	utils.Info("auction finalized", map[string]any{
		"auction_id":  auctionID,
		"item_id":     auction.ItemID,
		"winner_id":   auction.CurrentWinnerID,
		"final_price": auction.CurrentPrice,
	})
	return nil
}

// CancelAuction settles an auction early: the current winner (if any) is
// refunded, the item goes back to the seller, and the scheduled finalization
// is dropped. Admin operation.
func (s *AuctionService) CancelAuction(ctx context.Context, auctionID string) error {
	if auctionID == "" {
		return fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidInput)
	}

	lock := s.lockFor(auctionID)
	lock.Lock()
	defer lock.Unlock()

	auction, err := s.store.GetAuction(auctionID)
	if err != nil {
		return fmt.Errorf("service: cancel auction %s: %w", auctionID, err)
	}

	var steps []consistency.Step
	if auction.CurrentWinnerID != "" {
		steps = append(steps, consistency.Step{Op: "refund winner", Do: func(c context.Context) error {
			return s.accounts.IncreaseBalance(c, auction.CurrentWinnerID, auction.CurrentPrice)
		}})
	}
	steps = append(steps, consistency.Step{Op: "return item to seller", Do: func(c context.Context) error {
		return s.accounts.AddItem(c, auction.SellerID, auction.ItemID)
	}})

	if err := s.caller.Run(ctx, steps...); err != nil {
		return fmt.Errorf("service: cancel auction %s: %w", auctionID, err)
	}

	if err := s.store.DeleteAuction(auctionID); err != nil {
		return fmt.Errorf("service: cancel auction %s: delete record: %w", auctionID, err)
	}
	s.registrar.Cancel(auctionID)

	utils.Info("auction cancelled", map[string]any{
		"auction_id":      auctionID,
		"item_id":         auction.ItemID,
		"refunded_winner": auction.CurrentWinnerID,
	})
	return nil
}

// GetAuction returns a snapshot of one auction
func (s *AuctionService) GetAuction(auctionID string) (model.Auction, error) {
	if auctionID == "" {
		return model.Auction{}, fmt.Errorf("service: %w - empty auction ID", auctionerrors.ErrInvalidInput)
	}
	auction, err := s.store.GetAuction(auctionID)
	if err != nil {
		return model.Auction{}, fmt.Errorf("service: %w", err)
	}
	return auction, nil
}

// ListActiveAuctions returns all live auctions ordered by closing time
func (s *AuctionService) ListActiveAuctions() ([]model.Auction, error) {
	auctions, err := s.store.ListAuctions()
	if err != nil {
		return nil, fmt.Errorf("service: failed to list auctions: %w", err)
	}
	sort.Slice(auctions, func(i, j int) bool { return auctions[i].EndsAt.Before(auctions[j].EndsAt) })
	return auctions, nil
}

// Health reports whether the auction store is reachable
func (s *AuctionService) Health() error {
	return s.store.Ping()
}
