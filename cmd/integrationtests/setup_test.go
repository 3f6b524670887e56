package integrationtests

import (
	"bytes"
	auction "crop-auction/internal/auctionService"
	"crop-auction/internal/auth"
	"crop-auction/internal/database"
	model "crop-auction/internal/models"
	"crop-auction/internal/repository"
	"crop-auction/internal/server"
	"crop-auction/internal/users"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "password123"

// seeded farmers shared by every test router
var farmers = []model.User{
	{ID: "user1", Username: "rajpatel", Name: "Raj Patel", Location: "Nagpur, Maharashtra"},
	{ID: "user2", Username: "harpreetkaur", Name: "Harpreet Kaur", Location: "Ludhiana, Punjab"},
	{ID: "user3", Username: "mohanverma", Name: "Mohan Verma", Location: "Indore, Madhya Pradesh"},
}

// TestApp bundles a router with the pieces tests need to drive it
type TestApp struct {
	Router  *gin.Engine
	Service *auction.AuctionService
	Tokens  *auth.TokenManager
}

// SetupTestRouter initializes the router with an in-memory repository for integration testing.
func SetupTestRouter(t *testing.T) *TestApp {
	t.Helper()
	return setupApp(t, repository.NewMemoryRepo())
}

// SetupSQLiteRouter initializes the router over an in-memory SQLite database.
func SetupSQLiteRouter(t *testing.T) *TestApp {
	t.Helper()

	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	repo, err := repository.NewGormRepo(db)
	require.NoError(t, err)
	return setupApp(t, repo)
}

func setupApp(t *testing.T, repo repository.AuctionStore) *TestApp {
	gin.SetMode(gin.TestMode)

	dir := users.NewMemoryDirectory(repository.UUIDGenerator{}).WithHashCost(bcrypt.MinCost)
	for _, f := range farmers {
		require.NoError(t, dir.Seed(f, testPassword))
	}

	tokens, err := auth.NewTokenManager("integration-secret", time.Hour)
	require.NoError(t, err)

	svc := auction.NewAuctionService(repo, dir)
	router := server.SetupRouter(server.Dependencies{
		Auctions: svc,
		Accounts: dir,
		Tokens:   tokens,
	})
	return &TestApp{Router: router, Service: svc, Tokens: tokens}
}

// TokenFor issues a bearer token for a seeded user
func (a *TestApp) TokenFor(t *testing.T, userID string) string {
	t.Helper()

	for _, f := range farmers {
		if f.ID == userID {
			token, err := a.Tokens.GenerateToken(f.ID, f.Username)
			require.NoError(t, err)
			return token
		}
	}
	t.Fatalf("unknown test user %s", userID)
	return ""
}

// ExecuteRequestAndParse executes an HTTP request on the router and parses the envelope
func ExecuteRequestAndParse(t *testing.T, router *gin.Engine, method, url, token string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reader io.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case []byte:
		reader = bytes.NewReader(v)
	default:
		raw, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	router.ServeHTTP(w, req)

	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
	}
	return resp, w
}

// CreateAuction posts a new auction as sellerID and returns its id
func (a *TestApp) CreateAuction(t *testing.T, sellerID string, minPrice *int64) string {
	t.Helper()

	body := map[string]any{
		"title":     "Premium Basmati Rice",
		"crop_name": "Rice",
		"quantity":  500,
		"unit":      "kg",
		"end_time":  time.Now().Add(72 * time.Hour).UTC().Format(time.RFC3339),
	}
	if minPrice != nil {
		body["min_price"] = *minPrice
	}

	resp, w := ExecuteRequestAndParse(t, a.Router, "POST", "/api/auctions", a.TokenFor(t, sellerID), body)
	require.Equal(t, 201, w.Code, w.Body.String())
	return resp["data"].(map[string]any)["id"].(string)
}
