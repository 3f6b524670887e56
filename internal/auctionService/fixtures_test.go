package auction

import (
	"context"
	"crop-auction/internal/models"
	"crop-auction/internal/repository"
	"crop-auction/internal/users"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var testNow = time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)

// testClock is a settable clock shared by the service and the store
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock { return &testClock{now: testNow} }

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

var testUsers = []models.User{
	{ID: "seller1", Username: "rajpatel", Name: "Raj Patel", Location: "Nagpur", ProfilePic: "https://example.com/raj.jpg"},
	{ID: "buyer1", Username: "harpreetkaur", Name: "Harpreet Kaur", Location: "Ludhiana", ProfilePic: "https://example.com/harpreet.jpg"},
	{ID: "buyer2", Username: "mohanverma", Name: "Mohan Verma", Location: "Indore", ProfilePic: "https://example.com/mohan.jpg"},
}

func newTestDirectory(t testing.TB) *users.MemoryDirectory {
	t.Helper()

	dir := users.NewMemoryDirectory(repository.NewSequenceGenerator("user")).WithHashCost(bcrypt.MinCost)
	for _, u := range testUsers {
		require.NoError(t, dir.Seed(u, "password123"))
	}
	return dir
}

// newTestService wires a service over a fresh memory store with sequential ids
func newTestService(dir users.Directory, clock *testClock) (*AuctionService, *repository.MemoryRepo) {
	repo := repository.NewMemoryRepo(
		repository.WithIDGenerator(repository.NewSequenceGenerator("id")),
		repository.WithClock(clock.Now),
	)
	return NewAuctionService(repo, dir, WithClock(clock.Now)), repo
}

func int64Ptr(v int64) *int64 { return &v }

func wheatSpec(minPrice *int64) models.AuctionSpec {
	return models.AuctionSpec{
		Title:    "Sharbati wheat",
		CropName: "Wheat",
		Quantity: 1000,
		Unit:     "kg",
		MinPrice: minPrice,
		EndTime:  testNow.Add(24 * time.Hour),
	}
}

func createAuction(t testing.TB, svc *AuctionService, sellerID string, minPrice *int64) models.Auction {
	t.Helper()

	a, err := svc.CreateAuction(context.Background(), sellerID, wheatSpec(minPrice))
	require.NoError(t, err)
	return a
}
