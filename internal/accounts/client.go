// Package accounts is the client for the external Account Service, which
// owns per-user currency balances and item collections. Calls here are a
// single HTTP round trip each; retry and timeout policy belongs to the
// consistency layer, not this client.
package accounts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"auction-market/internal/auctionerrors"
)

// Service is the logical Account Service contract consumed by the engine
type Service interface {
	RemoveItem(ctx context.Context, userID, itemID string) error
	AddItem(ctx context.Context, userID, itemID string) error
	IncreaseBalance(ctx context.Context, userID string, amount int64) error
	DecreaseBalance(ctx context.Context, userID string, amount int64) error
}

// HTTPClient talks JSON over HTTP to the Account Service
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates an Account Service client for the given base URL.
// Per-call deadlines come from the caller's context.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{},
	}
}

type itemRequest struct {
	UserID string `json:"user_id"`
	ItemID string `json:"item_id"`
}

type balanceRequest struct {
	UserID string `json:"user_id"`
	Amount int64  `json:"amount"`
}

// RemoveItem takes an item out of the user's collection (escrow)
func (c *HTTPClient) RemoveItem(ctx context.Context, userID, itemID string) error {
	status, err := c.post(ctx, "/collection/remove", itemRequest{UserID: userID, ItemID: itemID})
	if err != nil {
		return err
	}
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusForbidden || status == http.StatusNotFound:
		return fmt.Errorf("remove item %s from %s: %w", itemID, userID, auctionerrors.ErrItemNotOwned)
	default:
		return fmt.Errorf("remove item %s from %s: account service returned %d", itemID, userID, status)
	}
}

// AddItem places an item into the user's collection (award or return)
func (c *HTTPClient) AddItem(ctx context.Context, userID, itemID string) error {
	status, err := c.post(ctx, "/collection/add", itemRequest{UserID: userID, ItemID: itemID})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("add item %s to %s: account service returned %d", itemID, userID, status)
	}
	return nil
}

// IncreaseBalance credits the user's balance (payout or refund)
func (c *HTTPClient) IncreaseBalance(ctx context.Context, userID string, amount int64) error {
	status, err := c.post(ctx, "/balance/increase", balanceRequest{UserID: userID, Amount: amount})
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("increase balance of %s by %d: account service returned %d", userID, amount, status)
	}
	return nil
}

// DecreaseBalance debits the user's balance (bid escrow)
func (c *HTTPClient) DecreaseBalance(ctx context.Context, userID string, amount int64) error {
	status, err := c.post(ctx, "/balance/decrease", balanceRequest{UserID: userID, Amount: amount})
	if err != nil {
		return err
	}
	switch status {
	case http.StatusOK:
		return nil
	case http.StatusBadRequest:
		return fmt.Errorf("decrease balance of %s by %d: %w", userID, amount, auctionerrors.ErrInsufficientFunds)
	default:
		return fmt.Errorf("decrease balance of %s by %d: account service returned %d", userID, amount, status)
	}
}

// post sends a JSON body and returns the response status. Transport errors
// (including context deadline) come back as errors and are treated as
// retryable by the consistency layer; a timed-out call is never assumed to
// have succeeded.
func (c *HTTPClient) post(ctx context.Context, path string, payload any) (int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return 0, fmt.Errorf("marshal request for %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("account service call %s: %w", path, err)
	}
	defer resp.Body.Close()

	return resp.StatusCode, nil
}
