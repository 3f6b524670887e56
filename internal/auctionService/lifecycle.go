package auction

import (
	"context"
	"crop-auction/internal/auctionerrors"
	"crop-auction/internal/models"
	"crop-auction/internal/repository"
	"crop-auction/utils"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// LifecycleManager creates auctions and applies seller-initiated status changes
type LifecycleManager struct {
	repo     repository.AuctionStore
	locks    *keyedLocker
	validate *validator.Validate
	now      func() time.Time
}

func newLifecycleManager(repo repository.AuctionStore, locks *keyedLocker, now func() time.Time) *LifecycleManager {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return &LifecycleManager{repo: repo, locks: locks, validate: v, now: now}
}

// Create validates spec and stores a new active auction owned by sellerID
func (m *LifecycleManager) Create(ctx context.Context, sellerID string, spec models.AuctionSpec) (models.Auction, error) {
	spec = normalizeSpec(spec)
	if err := m.validateSpec(sellerID, spec); err != nil {
		return models.Auction{}, fmt.Errorf("service: %w", err)
	}

	auction, err := m.repo.CreateAuction(ctx, models.Auction{
		Title:       spec.Title,
		CropName:    spec.CropName,
		Quantity:    spec.Quantity,
		Unit:        spec.Unit,
		Description: spec.Description,
		MinPrice:    spec.MinPrice,
		SellerID:    sellerID,
		EndTime:     spec.EndTime.UTC(),
		Status:      models.AuctionActive,
	})
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to create auction for seller %s: %w", sellerID, err)
	}
	return auction, nil
}

// SetStatus changes the status of an auction owned by requesterID.
// Any valid status may follow any other; only ownership is enforced.
func (m *LifecycleManager) SetStatus(ctx context.Context, auctionID, requesterID string, status models.AuctionStatus) (models.Auction, error) {
	if !status.Valid() {
		return models.Auction{}, fmt.Errorf("service: %w", auctionerrors.NewValidationError(map[string]string{
			"status": "must be one of active, closed, cancelled",
		}))
	}

	unlock := m.locks.Lock(auctionID)
	defer unlock()

	if _, err := m.ownedAuction(ctx, auctionID, requesterID); err != nil {
		return models.Auction{}, err
	}

	updated, err := m.repo.UpdateAuction(ctx, auctionID, models.AuctionPatch{Status: &status})
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to update status of auction %s: %w", auctionID, err)
	}
	return updated, nil
}

// SetBidStatus lets the seller settle a bid on their auction
func (m *LifecycleManager) SetBidStatus(ctx context.Context, auctionID, bidID, requesterID string, status models.BidStatus) (models.Bid, error) {
	if !status.Valid() {
		return models.Bid{}, fmt.Errorf("service: %w", auctionerrors.NewValidationError(map[string]string{
			"status": "must be one of pending, accepted, rejected",
		}))
	}

	unlock := m.locks.Lock(auctionID)
	defer unlock()

	if _, err := m.ownedAuction(ctx, auctionID, requesterID); err != nil {
		return models.Bid{}, err
	}

	bid, err := m.repo.GetBid(ctx, bidID)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to load bid %s: %w", bidID, err)
	}
	if bid.AuctionID != auctionID {
		return models.Bid{}, fmt.Errorf("service: bid %s on auction %s: %w", bidID, auctionID, auctionerrors.ErrBidNotFound)
	}

	updated, err := m.repo.UpdateBidStatus(ctx, bidID, status)
	if err != nil {
		return models.Bid{}, fmt.Errorf("service: failed to update bid %s: %w", bidID, err)
	}
	return updated, nil
}

// CloseExpired closes every active auction whose end time has passed and reports how many it closed
func (m *LifecycleManager) CloseExpired(ctx context.Context) (int, error) {
	active, err := m.repo.ListAuctions(ctx, models.AuctionFilter{Status: models.AuctionActive})
	if err != nil {
		return 0, fmt.Errorf("service: failed to list active auctions: %w", err)
	}

	closed := 0
	for _, a := range active {
		if err := ctx.Err(); err != nil {
			return closed, err
		}
		if m.now().Before(a.EndTime) {
			continue
		}
		ok, err := m.closeIfExpired(ctx, a.ID)
		if err != nil {
			return closed, err
		}
		if ok {
			closed++
		}
	}
	return closed, nil
}

func (m *LifecycleManager) closeIfExpired(ctx context.Context, auctionID string) (bool, error) {
	unlock := m.locks.Lock(auctionID)
	defer unlock()

	// re-read under the lock: the seller may have changed the status since the list
	a, err := m.repo.GetAuction(ctx, auctionID)
	if err != nil {
		if errors.Is(err, auctionerrors.ErrAuctionNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("service: failed to reload auction %s: %w", auctionID, err)
	}
	if a.Status != models.AuctionActive || m.now().Before(a.EndTime) {
		return false, nil
	}

	status := models.AuctionClosed
	if _, err := m.repo.UpdateAuction(ctx, auctionID, models.AuctionPatch{Status: &status}); err != nil {
		return false, fmt.Errorf("service: failed to close expired auction %s: %w", auctionID, err)
	}
	utils.Info("auction closed after end time", map[string]any{
		"auction_id": auctionID,
		"end_time":   a.EndTime.Format(time.RFC3339),
	})
	return true, nil
}

// ownedAuction loads an auction and checks that requesterID is its seller
func (m *LifecycleManager) ownedAuction(ctx context.Context, auctionID, requesterID string) (models.Auction, error) {
	a, err := m.repo.GetAuction(ctx, auctionID)
	if err != nil {
		return models.Auction{}, fmt.Errorf("service: failed to load auction %s: %w", auctionID, err)
	}
	if a.SellerID != requesterID {
		return models.Auction{}, fmt.Errorf("service: %w - user %s is not the seller of auction %s", auctionerrors.ErrForbidden, requesterID, auctionID)
	}
	return a, nil
}

func (m *LifecycleManager) validateSpec(sellerID string, spec models.AuctionSpec) error {
	fields := map[string]string{}
	if sellerID == "" {
		fields["seller_id"] = "is required"
	}

	if err := m.validate.Struct(spec); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			fields[fe.Field()] = describeRule(fe)
		}
	}

	if _, bad := fields["end_time"]; !bad && !spec.EndTime.After(m.now()) {
		fields["end_time"] = "must be in the future"
	}

	if len(fields) > 0 {
		return auctionerrors.NewValidationError(fields)
	}
	return nil
}

func normalizeSpec(spec models.AuctionSpec) models.AuctionSpec {
	spec.Title = strings.TrimSpace(spec.Title)
	spec.CropName = strings.TrimSpace(spec.CropName)
	spec.Unit = strings.TrimSpace(spec.Unit)
	spec.Description = strings.TrimSpace(spec.Description)
	return spec
}

// describeRule turns a validator failure into a short client-facing reason
func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}
