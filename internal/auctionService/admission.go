package auction

import (
	"context"
	"crop-auction/internal/auctionerrors"
	"crop-auction/internal/models"
	"crop-auction/internal/repository"
	"crop-auction/internal/users"
	"crop-auction/utils"
	"fmt"
)

// BidAdmission decides whether a proposed bid is admissible and commits it.
// Admission is serialized per auction so the read-compare-write sequence cannot interleave.
type BidAdmission struct {
	repo  repository.AuctionStore
	users users.Directory
	locks *keyedLocker
}

func newBidAdmission(repo repository.AuctionStore, dir users.Directory, locks *keyedLocker) *BidAdmission {
	return &BidAdmission{repo: repo, users: dir, locks: locks}
}

// PlaceBid validates and records bidderID's bid of amount on auctionID
func (a *BidAdmission) PlaceBid(ctx context.Context, auctionID, bidderID string, amount int64) (models.BidView, error) {
	if err := validateBidInput(auctionID, bidderID, amount); err != nil {
		return models.BidView{}, fmt.Errorf("service: %w", err)
	}

	unlock := a.locks.Lock(auctionID)
	defer unlock()

	auction, err := a.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return models.BidView{}, fmt.Errorf("service: failed to load auction %s: %w", auctionID, err)
	}

	if err := checkEligibility(auction, bidderID); err != nil {
		return models.BidView{}, err
	}

	bids, err := a.repo.GetBidsByAuction(ctx, auctionID)
	if err != nil {
		return models.BidView{}, fmt.Errorf("service: failed to load bids for auction %s: %w", auctionID, err)
	}

	if err := checkPrice(auction, bids, amount); err != nil {
		return models.BidView{}, fmt.Errorf("service: %w", err)
	}

	bid, err := a.repo.CreateBid(ctx, models.Bid{
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    amount,
		Status:    models.BidPending,
	})
	if err != nil {
		return models.BidView{}, fmt.Errorf("service: failed to record bid for auction %s by user %s: %w", auctionID, bidderID, err)
	}

	return models.BidView{Bid: bid, Bidder: a.bidderSummary(ctx, bidderID)}, nil
}

// bidderSummary never fails the request: the bid is already committed
func (a *BidAdmission) bidderSummary(ctx context.Context, bidderID string) *models.UserSummary {
	u, err := a.users.GetUser(ctx, bidderID)
	if err != nil {
		utils.Warn("admission: bidder lookup failed after commit", map[string]any{
			"bidder_id": bidderID,
			"error":     err.Error(),
		})
		return nil
	}
	return u.BidderSummary()
}

func validateBidInput(auctionID, bidderID string, amount int64) error {
	fields := map[string]string{}
	if auctionID == "" {
		fields["auction_id"] = "is required"
	}
	if bidderID == "" {
		fields["bidder_id"] = "is required"
	}
	if amount <= 0 {
		fields["amount"] = "must be greater than 0"
	}
	if len(fields) > 0 {
		return auctionerrors.NewValidationError(fields)
	}
	return nil
}

// checkEligibility gates admission on the bidder and the auction status only; end_time is not consulted
func checkEligibility(auction models.Auction, bidderID string) error {
	if bidderID == auction.SellerID {
		return fmt.Errorf("service: %w - user %s owns auction %s", auctionerrors.ErrSelfBid, bidderID, auction.ID)
	}
	if auction.Status != models.AuctionActive {
		return fmt.Errorf("service: %w - auction %s is %s", auctionerrors.ErrAuctionClosed, auction.ID, auction.Status)
	}
	return nil
}

// checkPrice enforces the strict-increase rule, and the min_price floor for the first bid
func checkPrice(auction models.Auction, bids []models.Bid, amount int64) error {
	if highest, ok := HighestBid(bids); ok {
		if amount <= highest.Amount {
			current := highest.Amount
			return &auctionerrors.BidTooLowError{Amount: amount, CurrentHighest: &current, MinPrice: auction.MinPrice}
		}
		return nil
	}
	if auction.MinPrice != nil && amount < *auction.MinPrice {
		return &auctionerrors.BidTooLowError{Amount: amount, MinPrice: auction.MinPrice}
	}
	return nil
}
