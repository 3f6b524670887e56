package repository

import (
	"context"
	"crop-auction/internal/auctionerrors"
	model "crop-auction/internal/models"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// auctionRecord is the table row for an auction. Seq keeps creation order independent of the id format.
type auctionRecord struct {
	Seq         uint64 `gorm:"primaryKey;autoIncrement"`
	ID          string `gorm:"uniqueIndex;size:64;not null"`
	Title       string `gorm:"not null"`
	CropName    string `gorm:"not null"`
	Quantity    int64  `gorm:"not null"`
	Unit        string `gorm:"not null"`
	Description string
	MinPrice    *int64
	SellerID    string    `gorm:"index;size:64;not null"`
	EndTime     time.Time `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null"`
	Status      string    `gorm:"index;size:16;not null"`
}

func (auctionRecord) TableName() string { return "auctions" }

type bidRecord struct {
	Seq       uint64    `gorm:"primaryKey;autoIncrement"`
	ID        string    `gorm:"uniqueIndex;size:64;not null"`
	AuctionID string    `gorm:"index;size:64;not null"`
	BidderID  string    `gorm:"index;size:64;not null"`
	Amount    int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
	Status    string    `gorm:"size:16;not null"`
}

func (bidRecord) TableName() string { return "bids" }

// GormRepo is an AuctionStore backed by a gorm database
type GormRepo struct {
	db   *gorm.DB
	opts storeOptions
}

// NewGormRepo migrates the auction tables and returns a repository over db
func NewGormRepo(db *gorm.DB, opts ...Option) (*GormRepo, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if err := db.AutoMigrate(&auctionRecord{}, &bidRecord{}); err != nil {
		return nil, fmt.Errorf("migrate auction tables: %w", err)
	}
	return &GormRepo{db: db, opts: o}, nil
}

func (r *GormRepo) CreateAuction(ctx context.Context, auction model.Auction) (model.Auction, error) {
	auction.ID = r.opts.ids.NewID()
	auction.CreatedAt = r.opts.clock()
	if auction.Status == "" {
		auction.Status = model.AuctionActive
	}

	rec := toAuctionRecord(auction)
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return model.Auction{}, fmt.Errorf("create auction: %w", err)
	}
	return rec.toModel(), nil
}

func (r *GormRepo) GetAuction(ctx context.Context, id string) (model.Auction, error) {
	var rec auctionRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", id, auctionerrors.ErrAuctionNotFound)
	}
	if err != nil {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", id, err)
	}
	return rec.toModel(), nil
}

func (r *GormRepo) ListAuctions(ctx context.Context, filter model.AuctionFilter) ([]model.Auction, error) {
	q := r.db.WithContext(ctx).Order("seq")
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.SellerID != "" {
		q = q.Where("seller_id = ?", filter.SellerID)
	}

	var recs []auctionRecord
	if err := q.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list auctions: %w", err)
	}
	auctions := make([]model.Auction, 0, len(recs))
	for _, rec := range recs {
		auctions = append(auctions, rec.toModel())
	}
	return auctions, nil
}

func (r *GormRepo) UpdateAuction(ctx context.Context, id string, patch model.AuctionPatch) (model.Auction, error) {
	var out model.Auction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec auctionRecord
		if err := tx.Where("id = ?", id).Take(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return auctionerrors.ErrAuctionNotFound
			}
			return err
		}
		if patch.Status != nil {
			rec.Status = string(*patch.Status)
			if err := tx.Model(&auctionRecord{}).Where("seq = ?", rec.Seq).Update("status", rec.Status).Error; err != nil {
				return err
			}
		}
		out = rec.toModel()
		return nil
	})
	if err != nil {
		return model.Auction{}, fmt.Errorf("update auction %s: %w", id, err)
	}
	return out, nil
}

func (r *GormRepo) CreateBid(ctx context.Context, bid model.Bid) (model.Bid, error) {
	bid.ID = r.opts.ids.NewID()
	bid.CreatedAt = r.opts.clock()
	if bid.Status == "" {
		bid.Status = model.BidPending
	}

	rec := toBidRecord(bid)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&auctionRecord{}).Where("id = ?", bid.AuctionID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return auctionerrors.ErrAuctionNotFound
		}
		return tx.Create(&rec).Error
	})
	if err != nil {
		return model.Bid{}, fmt.Errorf("create bid for auction %s: %w", bid.AuctionID, err)
	}
	return rec.toModel(), nil
}

func (r *GormRepo) GetBid(ctx context.Context, id string) (model.Bid, error) {
	var rec bidRecord
	err := r.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Bid{}, fmt.Errorf("get bid %s: %w", id, auctionerrors.ErrBidNotFound)
	}
	if err != nil {
		return model.Bid{}, fmt.Errorf("get bid %s: %w", id, err)
	}
	return rec.toModel(), nil
}

func (r *GormRepo) GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error) {
	return r.findBids(ctx, "auction_id = ?", auctionID)
}

func (r *GormRepo) GetBidsByBidder(ctx context.Context, bidderID string) ([]model.Bid, error) {
	return r.findBids(ctx, "bidder_id = ?", bidderID)
}

func (r *GormRepo) findBids(ctx context.Context, query string, arg string) ([]model.Bid, error) {
	var recs []bidRecord
	if err := r.db.WithContext(ctx).Where(query, arg).Order("seq").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("find bids: %w", err)
	}
	bids := make([]model.Bid, 0, len(recs))
	for _, rec := range recs {
		bids = append(bids, rec.toModel())
	}
	return bids, nil
}

func (r *GormRepo) UpdateBidStatus(ctx context.Context, id string, status model.BidStatus) (model.Bid, error) {
	var out model.Bid
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec bidRecord
		if err := tx.Where("id = ?", id).Take(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return auctionerrors.ErrBidNotFound
			}
			return err
		}
		rec.Status = string(status)
		if err := tx.Model(&bidRecord{}).Where("seq = ?", rec.Seq).Update("status", rec.Status).Error; err != nil {
			return err
		}
		out = rec.toModel()
		return nil
	})
	if err != nil {
		return model.Bid{}, fmt.Errorf("update bid %s: %w", id, err)
	}
	return out, nil
}

func toAuctionRecord(a model.Auction) auctionRecord {
	return auctionRecord{
		ID:          a.ID,
		Title:       a.Title,
		CropName:    a.CropName,
		Quantity:    a.Quantity,
		Unit:        a.Unit,
		Description: a.Description,
		MinPrice:    cloneInt64(a.MinPrice),
		SellerID:    a.SellerID,
		EndTime:     a.EndTime.UTC(),
		CreatedAt:   a.CreatedAt.UTC(),
		Status:      string(a.Status),
	}
}

func (rec auctionRecord) toModel() model.Auction {
	return model.Auction{
		ID:          rec.ID,
		Title:       rec.Title,
		CropName:    rec.CropName,
		Quantity:    rec.Quantity,
		Unit:        rec.Unit,
		Description: rec.Description,
		MinPrice:    cloneInt64(rec.MinPrice),
		SellerID:    rec.SellerID,
		EndTime:     rec.EndTime.UTC(),
		CreatedAt:   rec.CreatedAt.UTC(),
		Status:      model.AuctionStatus(rec.Status),
	}
}

func toBidRecord(b model.Bid) bidRecord {
	return bidRecord{
		ID:        b.ID,
		AuctionID: b.AuctionID,
		BidderID:  b.BidderID,
		Amount:    b.Amount,
		CreatedAt: b.CreatedAt.UTC(),
		Status:    string(b.Status),
	}
}

func (rec bidRecord) toModel() model.Bid {
	return model.Bid{
		ID:        rec.ID,
		AuctionID: rec.AuctionID,
		BidderID:  rec.BidderID,
		Amount:    rec.Amount,
		CreatedAt: rec.CreatedAt.UTC(),
		Status:    model.BidStatus(rec.Status),
	}
}
