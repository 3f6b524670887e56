package repository

import (
	"context"
	"crop-auction/internal/auctionerrors"
	model "crop-auction/internal/models"
	"fmt"
	"sync"
)

//go:generate mockgen -destination=mock_repository.go -package=repository crop-auction/internal/repository AuctionStore

// AuctionStore defines the auction and bid storage interface
type AuctionStore interface {
	CreateAuction(ctx context.Context, auction model.Auction) (model.Auction, error)
	GetAuction(ctx context.Context, id string) (model.Auction, error)
	ListAuctions(ctx context.Context, filter model.AuctionFilter) ([]model.Auction, error)
	UpdateAuction(ctx context.Context, id string, patch model.AuctionPatch) (model.Auction, error)

	CreateBid(ctx context.Context, bid model.Bid) (model.Bid, error)
	GetBid(ctx context.Context, id string) (model.Bid, error)
	GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error)
	GetBidsByBidder(ctx context.Context, bidderID string) ([]model.Bid, error)
	UpdateBidStatus(ctx context.Context, id string, status model.BidStatus) (model.Bid, error)
}

// MemoryRepo is a concurrency-safe in-memory implementation of AuctionStore
type MemoryRepo struct {
	mu           sync.RWMutex
	opts         storeOptions
	auctions     map[string]model.Auction // key: auctionID -> value: auction
	auctionOrder []string                 // auction ids in creation order
	bids         map[string][]model.Bid   // key: auctionID -> value: bids in insertion order
	bidIndex     map[string]bidRef        // key: bidID -> position in bids
	bidderBids   map[string][]bidRef      // key: bidderID -> bids placed by the user
}

type bidRef struct {
	auctionID string
	pos       int
}

// NewMemoryRepo creates a new in-memory repository instance
func NewMemoryRepo(opts ...Option) *MemoryRepo {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &MemoryRepo{
		opts:       o,
		auctions:   make(map[string]model.Auction),
		bids:       make(map[string][]model.Bid),
		bidIndex:   make(map[string]bidRef),
		bidderBids: make(map[string][]bidRef),
	}
}

// CreateAuction assigns an id and created_at and stores the auction
func (r *MemoryRepo) CreateAuction(_ context.Context, auction model.Auction) (model.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	auction.ID = r.opts.ids.NewID()
	auction.CreatedAt = r.opts.clock()
	if auction.Status == "" {
		auction.Status = model.AuctionActive
	}
	auction.MinPrice = cloneInt64(auction.MinPrice)

	r.auctions[auction.ID] = auction
	r.auctionOrder = append(r.auctionOrder, auction.ID)
	return copyAuction(auction), nil
}

// GetAuction returns a single auction
func (r *MemoryRepo) GetAuction(_ context.Context, id string) (model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auction, ok := r.auctions[id]
	if !ok {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", id, auctionerrors.ErrAuctionNotFound)
	}
	return copyAuction(auction), nil
}

// ListAuctions returns the auctions matching filter in creation order
func (r *MemoryRepo) ListAuctions(_ context.Context, filter model.AuctionFilter) ([]model.Auction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	auctions := make([]model.Auction, 0, len(r.auctionOrder))
	for _, id := range r.auctionOrder {
		if a := r.auctions[id]; filter.Matches(a) {
			auctions = append(auctions, copyAuction(a))
		}
	}
	return auctions, nil
}

// UpdateAuction merges the set fields of patch into the stored auction
func (r *MemoryRepo) UpdateAuction(_ context.Context, id string, patch model.AuctionPatch) (model.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	auction, ok := r.auctions[id]
	if !ok {
		return model.Auction{}, fmt.Errorf("update auction %s: %w", id, auctionerrors.ErrAuctionNotFound)
	}
	if patch.Status != nil {
		auction.Status = *patch.Status
	}
	r.auctions[id] = auction
	return copyAuction(auction), nil
}

// CreateBid assigns an id and created_at and records the bid against its auction
func (r *MemoryRepo) CreateBid(_ context.Context, bid model.Bid) (model.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.auctions[bid.AuctionID]; !ok {
		return model.Bid{}, fmt.Errorf("create bid for auction %s: %w", bid.AuctionID, auctionerrors.ErrAuctionNotFound)
	}

	bid.ID = r.opts.ids.NewID()
	bid.CreatedAt = r.opts.clock()
	if bid.Status == "" {
		bid.Status = model.BidPending
	}

	ref := bidRef{auctionID: bid.AuctionID, pos: len(r.bids[bid.AuctionID])}
	r.bids[bid.AuctionID] = append(r.bids[bid.AuctionID], bid)
	r.bidIndex[bid.ID] = ref
	r.bidderBids[bid.BidderID] = append(r.bidderBids[bid.BidderID], ref)
	return bid, nil
}

// GetBid returns a single bid
func (r *MemoryRepo) GetBid(_ context.Context, id string) (model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ref, ok := r.bidIndex[id]
	if !ok {
		return model.Bid{}, fmt.Errorf("get bid %s: %w", id, auctionerrors.ErrBidNotFound)
	}
	return r.bids[ref.auctionID][ref.pos], nil
}

// GetBidsByAuction returns all bids for an auction in insertion order
func (r *MemoryRepo) GetBidsByAuction(_ context.Context, auctionID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]model.Bid{}, r.bids[auctionID]...), nil
}

// GetBidsByBidder returns all bids a user has placed in insertion order
func (r *MemoryRepo) GetBidsByBidder(_ context.Context, bidderID string) ([]model.Bid, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	refs := r.bidderBids[bidderID]
	bids := make([]model.Bid, 0, len(refs))
	for _, ref := range refs {
		bids = append(bids, r.bids[ref.auctionID][ref.pos])
	}
	return bids, nil
}

// UpdateBidStatus sets the status of a stored bid
func (r *MemoryRepo) UpdateBidStatus(_ context.Context, id string, status model.BidStatus) (model.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ref, ok := r.bidIndex[id]
	if !ok {
		return model.Bid{}, fmt.Errorf("update bid %s: %w", id, auctionerrors.ErrBidNotFound)
	}
	r.bids[ref.auctionID][ref.pos].Status = status
	return r.bids[ref.auctionID][ref.pos], nil
}

// copyAuction detaches the MinPrice pointer from stored state
func copyAuction(a model.Auction) model.Auction {
	a.MinPrice = cloneInt64(a.MinPrice)
	return a
}

func cloneInt64(v *int64) *int64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
