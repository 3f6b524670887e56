package auction

import (
	"context"
	"crop-auction/internal/auctionerrors"
	"crop-auction/internal/models"
	"crop-auction/internal/repository"
	"crop-auction/internal/users"
	"fmt"
	"time"
)

// AuctionService defines the business logic for crop auctions
type AuctionService struct {
	repo      repository.AuctionStore
	lifecycle *LifecycleManager
	admission *BidAdmission
	views     *ViewComposer
}

// Option configures an AuctionService
type Option func(*serviceOptions)

type serviceOptions struct {
	now func() time.Time
}

// WithClock replaces time.Now for end-time checks
func WithClock(now func() time.Time) Option {
	return func(o *serviceOptions) { o.now = now }
}

// NewAuctionService creates a new AuctionService instance
func NewAuctionService(repo repository.AuctionStore, dir users.Directory, opts ...Option) *AuctionService {
	o := serviceOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	// lifecycle and admission share the per-auction locks so status changes are ordered with bids
	locks := newKeyedLocker()
	return &AuctionService{
		repo:      repo,
		lifecycle: newLifecycleManager(repo, locks, o.now),
		admission: newBidAdmission(repo, dir, locks),
		views:     newViewComposer(repo, dir),
	}
}

// Lifecycle exposes the lifecycle manager, used by the expiry job
func (s *AuctionService) Lifecycle() *LifecycleManager { return s.lifecycle }

// CreateAuction stores a new active auction owned by sellerID
func (s *AuctionService) CreateAuction(ctx context.Context, sellerID string, spec models.AuctionSpec) (models.Auction, error) {
	return s.lifecycle.Create(ctx, sellerID, spec)
}

// ListAuctions returns the auctions matching filter, each summarized
func (s *AuctionService) ListAuctions(ctx context.Context, filter models.AuctionFilter) ([]models.AuctionSummary, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("service: %w", auctionerrors.NewValidationError(map[string]string{
			"status": "must be one of active, closed, cancelled",
		}))
	}

	auctions, err := s.repo.ListAuctions(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list auctions: %w", err)
	}
	return s.views.SummarizeAll(ctx, auctions)
}

// GetAuctionDetail returns one auction with its sorted bid history
func (s *AuctionService) GetAuctionDetail(ctx context.Context, auctionID string) (models.AuctionDetail, error) {
	auction, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return models.AuctionDetail{}, fmt.Errorf("service: failed to load auction %s: %w", auctionID, err)
	}
	return s.views.Detail(ctx, auction)
}

// GetAuctionSummary returns one auction with its highest bid and bid count
func (s *AuctionService) GetAuctionSummary(ctx context.Context, auctionID string) (models.AuctionSummary, error) {
	auction, err := s.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return models.AuctionSummary{}, fmt.Errorf("service: failed to load auction %s: %w", auctionID, err)
	}
	return s.views.Summarize(ctx, auction)
}

// PlaceBid admits and records a bid
func (s *AuctionService) PlaceBid(ctx context.Context, auctionID, bidderID string, amount int64) (models.BidView, error) {
	return s.admission.PlaceBid(ctx, auctionID, bidderID, amount)
}

// SetAuctionStatus changes an auction's status on behalf of its seller
func (s *AuctionService) SetAuctionStatus(ctx context.Context, auctionID, requesterID string, status models.AuctionStatus) (models.Auction, error) {
	return s.lifecycle.SetStatus(ctx, auctionID, requesterID, status)
}

// SetBidStatus changes a bid's status on behalf of the auction's seller
func (s *AuctionService) SetBidStatus(ctx context.Context, auctionID, bidID, requesterID string, status models.BidStatus) (models.Bid, error) {
	return s.lifecycle.SetBidStatus(ctx, auctionID, bidID, requesterID, status)
}

// GetBidsByBidder returns every bid a user has placed
func (s *AuctionService) GetBidsByBidder(ctx context.Context, bidderID string) ([]models.Bid, error) {
	if bidderID == "" {
		return nil, fmt.Errorf("service: %w", auctionerrors.NewValidationError(map[string]string{"bidder_id": "is required"}))
	}
	bids, err := s.repo.GetBidsByBidder(ctx, bidderID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to get bids for user %s: %w", bidderID, err)
	}
	return bids, nil
}
