package auction

import (
	"context"
	"crop-auction/internal/auctionerrors"
	"crop-auction/internal/models"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func bidsWithAmounts(amounts ...int64) []models.Bid {
	bids := make([]models.Bid, len(amounts))
	for i, a := range amounts {
		bids[i] = models.Bid{ID: fmt.Sprintf("bid%d", i+1), Amount: a}
	}
	return bids
}

func TestHighestBid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		bids   []models.Bid
		wantID string
		wantOK bool
	}{
		{name: "no_bids", bids: nil, wantOK: false},
		{name: "single_bid", bids: bidsWithAmounts(50), wantID: "bid1", wantOK: true},
		{name: "highest_in_middle", bids: bidsWithAmounts(100, 300, 200), wantID: "bid2", wantOK: true},
		{name: "tie_first_seen_wins", bids: bidsWithAmounts(200, 100, 200), wantID: "bid1", wantOK: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, ok := HighestBid(tc.bids)
			require.Equal(t, tc.wantOK, ok)
			require.Equal(t, tc.wantID, got.ID)
		})
	}
}

func TestSortByAmountDesc(t *testing.T) {
	t.Parallel()

	bids := bidsWithAmounts(100, 300, 200, 300)
	sorted := SortByAmountDesc(bids)

	ids := make([]string, len(sorted))
	for i, b := range sorted {
		ids[i] = b.ID
	}
	require.Equal(t, []string{"bid2", "bid4", "bid3", "bid1"}, ids)
	require.Equal(t, "bid1", bids[0].ID, "input is left untouched")
}

func TestViewComposer_Summaries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc, _ := newTestService(newTestDirectory(t), newTestClock())
	empty := createAuction(t, svc, "seller1", int64Ptr(100))
	busy := createAuction(t, svc, "buyer2", nil)
	orphan := createAuction(t, svc, "deleted-user", nil)

	_, err := svc.PlaceBid(ctx, busy.ID, "buyer1", 120)
	require.NoError(t, err)
	_, err = svc.PlaceBid(ctx, busy.ID, "seller1", 180)
	require.NoError(t, err)

	t.Run("list_in_creation_order", func(t *testing.T) {
		summaries, err := svc.ListAuctions(ctx, models.AuctionFilter{})
		require.NoError(t, err)
		require.Len(t, summaries, 3)
		require.Equal(t, []string{empty.ID, busy.ID, orphan.ID}, []string{summaries[0].ID, summaries[1].ID, summaries[2].ID})

		require.Nil(t, summaries[0].HighestBid, "no bids means no highest bid, not min_price")
		require.Zero(t, summaries[0].BidCount)
		require.Equal(t, "Nagpur", summaries[0].Seller.Location)

		require.Equal(t, int64(180), *summaries[1].HighestBid)
		require.Equal(t, 2, summaries[1].BidCount)
		require.Equal(t, "mohanverma", summaries[1].Seller.Username)

		require.Nil(t, summaries[2].Seller, "unknown sellers resolve to nil")
	})

	t.Run("list_filters", func(t *testing.T) {
		bySeller, err := svc.ListAuctions(ctx, models.AuctionFilter{SellerID: "buyer2"})
		require.NoError(t, err)
		require.Len(t, bySeller, 1)
		require.Equal(t, busy.ID, bySeller[0].ID)

		_, err = svc.ListAuctions(ctx, models.AuctionFilter{Status: "open"})
		require.ErrorIs(t, err, auctionerrors.ErrValidation)
	})

	t.Run("detail_with_bids", func(t *testing.T) {
		detail, err := svc.GetAuctionDetail(ctx, busy.ID)
		require.NoError(t, err)
		require.Len(t, detail.Bids, 2)
		require.Equal(t, int64(180), detail.Bids[0].Amount)
		require.Equal(t, "rajpatel", detail.Bids[0].Bidder.Username)
		require.Equal(t, int64(120), detail.Bids[1].Amount)
		require.Empty(t, detail.Bids[1].Bidder.Location)
		require.Equal(t, "Indore", detail.Seller.Location)
	})

	t.Run("detail_without_bids", func(t *testing.T) {
		detail, err := svc.GetAuctionDetail(ctx, empty.ID)
		require.NoError(t, err)
		require.NotNil(t, detail.Bids)
		require.Empty(t, detail.Bids)
	})

	t.Run("detail_missing", func(t *testing.T) {
		_, err := svc.GetAuctionDetail(ctx, "missing")
		require.ErrorIs(t, err, auctionerrors.ErrAuctionNotFound)
	})

	t.Run("bids_by_bidder", func(t *testing.T) {
		bids, err := svc.GetBidsByBidder(ctx, "buyer1")
		require.NoError(t, err)
		require.Len(t, bids, 1)
		require.Equal(t, int64(120), bids[0].Amount)

		_, err = svc.GetBidsByBidder(ctx, "")
		require.ErrorIs(t, err, auctionerrors.ErrValidation)
	})
}

func TestProperty_HighestBidIsFirstMaximum(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		amounts := rapid.SliceOfN(rapid.Int64Range(1, 50), 1, 40).Draw(t, "amounts")
		bids := bidsWithAmounts(amounts...)

		got, ok := HighestBid(bids)
		if !ok {
			t.Fatalf("expected a highest bid for %d bids", len(bids))
		}
		for i, b := range bids {
			if b.Amount > got.Amount {
				t.Fatalf("bid %s (%d) exceeds reported highest %d", b.ID, b.Amount, got.Amount)
			}
			if b.Amount == got.Amount {
				if b.ID != got.ID {
					t.Fatalf("tie resolved to %s, first maximum is %s at index %d", got.ID, b.ID, i)
				}
				break
			}
		}
	})
}

func TestProperty_SortIsStableDescendingPermutation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		amounts := rapid.SliceOf(rapid.Int64Range(1, 20)).Draw(t, "amounts")
		bids := bidsWithAmounts(amounts...)
		index := make(map[string]int, len(bids))
		for i, b := range bids {
			index[b.ID] = i
		}

		sorted := SortByAmountDesc(bids)
		if len(sorted) != len(bids) {
			t.Fatalf("sorted has %d bids, want %d", len(sorted), len(bids))
		}
		seen := make(map[string]bool, len(sorted))
		for i, b := range sorted {
			if seen[b.ID] {
				t.Fatalf("bid %s appears twice", b.ID)
			}
			seen[b.ID] = true
			if i == 0 {
				continue
			}
			prev := sorted[i-1]
			if prev.Amount < b.Amount {
				t.Fatalf("not descending at %d: %d then %d", i, prev.Amount, b.Amount)
			}
			if prev.Amount == b.Amount && index[prev.ID] > index[b.ID] {
				t.Fatalf("equal amounts %d out of insertion order: %s before %s", b.Amount, prev.ID, b.ID)
			}
		}
	})
}

// Any sequence of attempts leaves a strictly increasing bid history that honours the floor
func TestProperty_AdmittedBidsStrictlyIncrease(t *testing.T) {
	dir := newTestDirectory(t)

	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		svc, repo := newTestService(dir, newTestClock())

		var floor *int64
		if rapid.Bool().Draw(t, "hasFloor") {
			floor = int64Ptr(rapid.Int64Range(0, 500).Draw(t, "floor"))
		}
		a, err := svc.CreateAuction(ctx, "seller1", wheatSpec(floor))
		if err != nil {
			t.Fatalf("create auction: %v", err)
		}

		attempts := rapid.SliceOfN(rapid.Int64Range(1, 1000), 1, 30).Draw(t, "attempts")
		var highest *int64
		for _, amount := range attempts {
			_, err := svc.PlaceBid(ctx, a.ID, "buyer1", amount)

			wantOK := highest == nil && (floor == nil || amount >= *floor) ||
				highest != nil && amount > *highest
			if wantOK != (err == nil) {
				t.Fatalf("amount %d: admitted=%v, want %v (err %v)", amount, err == nil, wantOK, err)
			}
			if err == nil {
				v := amount
				highest = &v
			}
		}

		bids, err := repo.GetBidsByAuction(ctx, a.ID)
		if err != nil {
			t.Fatalf("get bids: %v", err)
		}
		for i := 1; i < len(bids); i++ {
			if bids[i].Amount <= bids[i-1].Amount {
				t.Fatalf("history not strictly increasing at %d: %d then %d", i, bids[i-1].Amount, bids[i].Amount)
			}
		}
		summary, err := svc.GetAuctionSummary(ctx, a.ID)
		if err != nil {
			t.Fatalf("summary: %v", err)
		}
		if summary.BidCount != len(bids) {
			t.Fatalf("bidCount %d, stored %d", summary.BidCount, len(bids))
		}
		if (highest == nil) != (summary.HighestBid == nil) || highest != nil && *highest != *summary.HighestBid {
			t.Fatalf("summary highest %v, want %v", summary.HighestBid, highest)
		}
	})
}
