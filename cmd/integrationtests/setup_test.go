package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"auction-market/internal/accounts"
	"auction-market/internal/auction"
	"auction-market/internal/auth"
	"auction-market/internal/consistency"
	"auction-market/internal/repository"
	"auction-market/internal/scheduler"
	"auction-market/internal/server"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const testSecret = "integration-test-secret"

// fakeAccountService is an in-memory stand-in for the external Account
// Service, speaking the same HTTP contract.
type fakeAccountService struct {
	mu       sync.Mutex
	balances map[string]int64
	items    map[string]map[string]bool // userID -> owned itemIDs
}

func newFakeAccountService() *fakeAccountService {
	return &fakeAccountService{
		balances: make(map[string]int64),
		items:    make(map[string]map[string]bool),
	}
}

func (f *fakeAccountService) SeedBalance(userID string, amount int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[userID] = amount
}

func (f *fakeAccountService) SeedItem(userID, itemID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.items[userID] == nil {
		f.items[userID] = make(map[string]bool)
	}
	f.items[userID][itemID] = true
}

func (f *fakeAccountService) Balance(userID string) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[userID]
}

func (f *fakeAccountService) Owns(userID, itemID string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.items[userID][itemID]
}

func (f *fakeAccountService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"user_id"`
		ItemID string `json:"item_id"`
		Amount int64  `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.URL.Path {
	case "/collection/remove":
		if !f.items[body.UserID][body.ItemID] {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		delete(f.items[body.UserID], body.ItemID)
	case "/collection/add":
		if f.items[body.UserID] == nil {
			f.items[body.UserID] = make(map[string]bool)
		}
		f.items[body.UserID][body.ItemID] = true
	case "/balance/increase":
		f.balances[body.UserID] += body.Amount
	case "/balance/decrease":
		if f.balances[body.UserID] < body.Amount {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.balances[body.UserID] -= body.Amount
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// testEnv wires the full stack against the fake Account Service
type testEnv struct {
	router   *gin.Engine
	store    *repository.MemoryStore
	accounts *fakeAccountService
}

// SetupEnv builds the engine with the given auction duration so expiry-driven
// tests stay fast.
func SetupEnv(t *testing.T, auctionDuration time.Duration) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	fake := newFakeAccountService()
	accountsSrv := httptest.NewServer(fake)
	t.Cleanup(accountsSrv.Close)

	store := repository.NewMemoryStore()
	caller := consistency.NewCaller(time.Second, 2, 5*time.Millisecond)
	client := accounts.NewHTTPClient(accountsSrv.URL)

	var service *auction.AuctionService
	settleScheduler := scheduler.New(func(ctx context.Context, auctionID string) error {
		return service.FinalizeAuction(ctx, auctionID)
	}, 10*time.Millisecond, 100*time.Millisecond)
	service = auction.NewAuctionService(store, client, caller, settleScheduler, auctionDuration)

	settleScheduler.Start(context.Background())
	t.Cleanup(settleScheduler.Stop)

	router := server.SetupRouter(service, auth.NewJWTVerifier(testSecret))
	return &testEnv{router: router, store: store, accounts: fake}
}

// Token signs a bearer token the way the identity service would
func Token(t *testing.T, userID, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userID": userID,
		"role":   role,
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

// ExecuteRequest executes an HTTP request against the router and parses the
// JSON response envelope.
func (e *testEnv) ExecuteRequest(t *testing.T, method, url, bearer string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	if body != nil {
		var err error
		reqBody, err = json.Marshal(body)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	resp := map[string]any{}
	if len(w.Body.Bytes()) > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return resp, w
}

// Data unwraps the data field of a success envelope
func Data(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	data, ok := resp["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", resp)
	return data
}

// WaitForSettlement polls until the auction record disappears from the store
func (e *testEnv) WaitForSettlement(t *testing.T, auctionID string) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if _, err := e.store.GetAuction(auctionID); err != nil {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("auction %s not settled in time", auctionID)
}
