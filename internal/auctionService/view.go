package auction

import (
	"context"
	"crop-auction/internal/auctionerrors"
	"crop-auction/internal/models"
	"crop-auction/internal/repository"
	"crop-auction/internal/users"
	"errors"
	"fmt"
	"sort"
)

// HighestBid returns the bid with the largest amount. Ties go to the earliest bid in the slice.
func HighestBid(bids []models.Bid) (models.Bid, bool) {
	if len(bids) == 0 {
		return models.Bid{}, false
	}
	highest := bids[0]
	for _, b := range bids[1:] {
		if b.Amount > highest.Amount {
			highest = b
		}
	}
	return highest, true
}

// SortByAmountDesc orders bids by amount, highest first, keeping insertion order among equal amounts
func SortByAmountDesc(bids []models.Bid) []models.Bid {
	sorted := append([]models.Bid(nil), bids...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Amount > sorted[j].Amount })
	return sorted
}

// ViewComposer derives read-time projections of auctions. It never writes to the store.
type ViewComposer struct {
	repo  repository.AuctionStore
	users users.Directory
}

func newViewComposer(repo repository.AuctionStore, dir users.Directory) *ViewComposer {
	return &ViewComposer{repo: repo, users: dir}
}

// Summarize annotates an auction with its seller, highest bid amount and bid count.
// HighestBid is nil when there are no bids; falling back to min_price is the consumer's choice.
func (v *ViewComposer) Summarize(ctx context.Context, auction models.Auction) (models.AuctionSummary, error) {
	return v.summarize(ctx, auction, newUserCache(v.users))
}

func (v *ViewComposer) summarize(ctx context.Context, auction models.Auction, cache *userCache) (models.AuctionSummary, error) {
	bids, err := v.repo.GetBidsByAuction(ctx, auction.ID)
	if err != nil {
		return models.AuctionSummary{}, fmt.Errorf("service: failed to load bids for auction %s: %w", auction.ID, err)
	}
	seller, err := cache.get(ctx, auction.SellerID)
	if err != nil {
		return models.AuctionSummary{}, err
	}

	summary := models.AuctionSummary{
		Auction:  auction,
		BidCount: len(bids),
	}
	if seller != nil {
		summary.Seller = seller.SellerSummary()
	}
	if highest, ok := HighestBid(bids); ok {
		amount := highest.Amount
		summary.HighestBid = &amount
	}
	return summary, nil
}

// SummarizeAll summarizes auctions in order, looking each seller up once
func (v *ViewComposer) SummarizeAll(ctx context.Context, auctions []models.Auction) ([]models.AuctionSummary, error) {
	cache := newUserCache(v.users)
	out := make([]models.AuctionSummary, 0, len(auctions))
	for _, a := range auctions {
		s, err := v.summarize(ctx, a, cache)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Detail returns the auction with its seller and every bid, highest first, each with its bidder
func (v *ViewComposer) Detail(ctx context.Context, auction models.Auction) (models.AuctionDetail, error) {
	bids, err := v.repo.GetBidsByAuction(ctx, auction.ID)
	if err != nil {
		return models.AuctionDetail{}, fmt.Errorf("service: failed to load bids for auction %s: %w", auction.ID, err)
	}

	cache := newUserCache(v.users)
	detail := models.AuctionDetail{
		Auction: auction,
		Bids:    make([]models.BidView, 0, len(bids)),
	}

	seller, err := cache.get(ctx, auction.SellerID)
	if err != nil {
		return models.AuctionDetail{}, err
	}
	if seller != nil {
		detail.Seller = seller.SellerSummary()
	}

	for _, b := range SortByAmountDesc(bids) {
		view := models.BidView{Bid: b}
		bidder, err := cache.get(ctx, b.BidderID)
		if err != nil {
			return models.AuctionDetail{}, err
		}
		if bidder != nil {
			view.Bidder = bidder.BidderSummary()
		}
		detail.Bids = append(detail.Bids, view)
	}
	return detail, nil
}

// userCache memoizes directory lookups for one projection. Unknown users resolve to nil.
type userCache struct {
	dir   users.Directory
	users map[string]*models.User
}

func newUserCache(dir users.Directory) *userCache {
	return &userCache{dir: dir, users: make(map[string]*models.User)}
}

func (c *userCache) get(ctx context.Context, id string) (*models.User, error) {
	if u, ok := c.users[id]; ok {
		return u, nil
	}
	u, err := c.dir.GetUser(ctx, id)
	if errors.Is(err, auctionerrors.ErrUserNotFound) {
		c.users[id] = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("service: failed to look up user %s: %w", id, err)
	}
	c.users[id] = &u
	return &u, nil
}
