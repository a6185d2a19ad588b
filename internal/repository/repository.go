package repository

import (
	"fmt"
	"sync"

	"auction-market/internal/auctionerrors"
	model "auction-market/internal/models"
)

// AuctionStore defines the auction persistence interface. The store is
// document-oriented: one record per active auction, atomic single-record
// updates via a version check, no cross-record transactions.
type AuctionStore interface {
	CreateAuction(auction model.Auction) error
	GetAuction(auctionID string) (model.Auction, error)
	ListAuctions() ([]model.Auction, error)
	// UpdateAuction replaces the record only if its stored version still
	// equals expectedVersion, otherwise it returns ErrVersionConflict.
	UpdateAuction(auction model.Auction, expectedVersion int64) error
	DeleteAuction(auctionID string) error
	Ping() error
}

// MemoryStore is a concurrency-safe in-memory implementation of AuctionStore
type MemoryStore struct {
	mu       sync.RWMutex
	auctions map[string]model.Auction // key: auctionID
}

// NewMemoryStore creates a new in-memory store instance
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		auctions: make(map[string]model.Auction),
	}
}

// CreateAuction inserts a new auction record with version 1
func (s *MemoryStore) CreateAuction(auction model.Auction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.auctions[auction.AuctionID]; ok {
		return fmt.Errorf("create auction %s: %w", auction.AuctionID, auctionerrors.ErrDuplicateAuction)
	}

	auction.Version = 1
	s.auctions[auction.AuctionID] = copyAuction(auction)
	return nil
}

// GetAuction returns a snapshot of an auction record
func (s *MemoryStore) GetAuction(auctionID string) (model.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	auction, ok := s.auctions[auctionID]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, auctionerrors.ErrAuctionNotFound)
	}
	return copyAuction(auction), nil
}

// ListAuctions returns snapshots of all auction records. Finalized auctions
// are deleted, so everything in the store is active or awaiting settlement.
func (s *MemoryStore) ListAuctions() ([]model.Auction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	auctions := make([]model.Auction, 0, len(s.auctions))
	for _, a := range s.auctions {
		auctions = append(auctions, copyAuction(a))
	}
	return auctions, nil
}

// UpdateAuction performs a version-conditioned replace of an auction record
func (s *MemoryStore) UpdateAuction(auction model.Auction, expectedVersion int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.auctions[auction.AuctionID]
	if !ok {
		return fmt.Errorf("update auction %s: %w", auction.AuctionID, auctionerrors.ErrAuctionNotFound)
	}
	if current.Version != expectedVersion {
		return fmt.Errorf("update auction %s: expected version %d, have %d: %w",
			auction.AuctionID, expectedVersion, current.Version, auctionerrors.ErrVersionConflict)
	}

	auction.Version = expectedVersion + 1
	s.auctions[auction.AuctionID] = copyAuction(auction)
	return nil
}

// DeleteAuction removes an auction record. Deleting a record that is already
// gone is not an error: deletion is the settlement commit point and must be
// safe to repeat.
func (s *MemoryStore) DeleteAuction(auctionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.auctions, auctionID)
	return nil
}

// Ping reports store liveness
func (s *MemoryStore) Ping() error {
	return nil
}

// copyAuction deep-copies the record so callers never share the stored bid slice
func copyAuction(a model.Auction) model.Auction {
	a.Bids = append([]model.Bid(nil), a.Bids...)
	return a
}
