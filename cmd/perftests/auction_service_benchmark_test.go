package perftests

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sync/atomic"
	"testing"
	"time"

	auction "crop-auction/internal/auctionService"
	model "crop-auction/internal/models"
	"crop-auction/internal/repository"
	"crop-auction/utils"
)

// benchDirectory resolves every id to a synthetic user so lookups stay off the profile
type benchDirectory struct{}

func (benchDirectory) GetUser(_ context.Context, id string) (model.User, error) {
	return model.User{ID: id, Username: id, Name: id}, nil
}

func newBenchService() *auction.AuctionService {
	utils.SetLogOutput(io.Discard)
	return auction.NewAuctionService(repository.NewMemoryRepo(), benchDirectory{})
}

func mustCreateAuction(b *testing.B, svc *auction.AuctionService, title string) string {
	b.Helper()

	a, err := svc.CreateAuction(context.Background(), "seller", model.AuctionSpec{
		Title:    title,
		CropName: "Soybean",
		Quantity: 20,
		Unit:     "quintal",
		EndTime:  time.Now().Add(time.Hour),
	})
	if err != nil {
		b.Fatalf("failed to create auction: %v", err)
	}
	return a.ID
}

// Benchmark 1: PlaceBid - Isolated Auctions (Low Contention - Micro Benchmark)
func Benchmark_PlaceBid_Isolated(b *testing.B) {
	svc := newBenchService()
	ctx := context.Background()

	ids := make([]string, b.N)
	for i := 0; i < b.N; i++ {
		ids[i] = mustCreateAuction(b, svc, fmt.Sprintf("Low-Contention Auction %d", i))
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		userID := fmt.Sprintf("user_%d", i)
		bidAmount := int64(50 + rand.Intn(100))
		if _, err := svc.PlaceBid(ctx, ids[i], userID, bidAmount); err != nil {
			b.Fatalf("failed to place bid: %v", err)
		}
	}
}

// Benchmark 2: PlaceBid - Shared Auction (High Contention - Concurrency Benchmark)
func Benchmark_PlaceBid_ConcurrentSharedAuction(b *testing.B) {
	svc := newBenchService()
	ctx := context.Background()
	auctionID := mustCreateAuction(b, svc, "High-Contention Auction")

	b.ReportAllocs()
	b.ResetTimer()

	var lastBid int64 = 50

	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			userID := fmt.Sprintf("user_parallel_%d", rnd.Int())

			// amounts rise, but goroutines can still arrive out of order and be rejected
			nextBid := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
			_, _ = svc.PlaceBid(ctx, auctionID, userID, nextBid)
		}
	})
}

// Benchmark 3: GetAuctionSummary - Single - Threaded (Low Contention)
func Benchmark_GetAuctionSummary_SingleThreaded(b *testing.B) {
	svc := newBenchService()
	ctx := context.Background()

	ids := make([]string, b.N)
	for i := 0; i < b.N; i++ {
		ids[i] = mustCreateAuction(b, svc, fmt.Sprintf("Low-Contention Auction %d", i))
		for j := 0; j < 10; j++ {
			userID := fmt.Sprintf("user_%d_%d", i, j)
			_, _ = svc.PlaceBid(ctx, ids[i], userID, int64(50+j*10))
		}
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := svc.GetAuctionSummary(ctx, ids[i]); err != nil {
			b.Fatalf("failed to summarize auction: %v", err)
		}
	}
}

// Benchmark 4: GetAuctionDetail - Concurrent (High Contention)
func Benchmark_GetAuctionDetail_ConcurrentSharedAuction(b *testing.B) {
	svc := newBenchService()
	ctx := context.Background()
	auctionID := mustCreateAuction(b, svc, "High-Contention Auction")

	for j := 0; j < 100; j++ {
		userID := fmt.Sprintf("user_%d", j)
		_, _ = svc.PlaceBid(ctx, auctionID, userID, int64(50+j))
	}

	b.ReportAllocs()
	b.ResetTimer()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := svc.GetAuctionDetail(ctx, auctionID); err != nil {
				b.Fatalf("failed to get auction detail: %v", err)
			}
		}
	})
}

// Benchmark 5: Mixed Workload (Readers + Writers concurrently)
func Benchmark_MixedWorkload_SharedAuction(b *testing.B) {
	svc := newBenchService()
	ctx := context.Background()
	auctionID := mustCreateAuction(b, svc, "Shared Auction")

	for j := 0; j < 50; j++ {
		userID := fmt.Sprintf("user_seed_%d", j)
		_, _ = svc.PlaceBid(ctx, auctionID, userID, int64(50+j*2))
	}

	b.ReportAllocs()
	b.ResetTimer()

	var lastBid int64 = 150

	// Ratio: 70% readers, 30% writers
	b.RunParallel(func(pb *testing.PB) {
		rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
		for pb.Next() {
			if rnd.Intn(10) < 3 {
				userID := fmt.Sprintf("user_writer_%d", rnd.Int())
				nextBid := atomic.AddInt64(&lastBid, int64(rnd.Intn(5)+1))
				_, _ = svc.PlaceBid(ctx, auctionID, userID, nextBid)
				continue
			}
			_, _ = svc.ListAuctions(ctx, model.AuctionFilter{Status: model.AuctionActive})
		}
	})
}
