package models

import "time"

// AuctionStatus is the lifecycle state of an auction
type AuctionStatus string

const (
	AuctionActive    AuctionStatus = "active"
	AuctionClosed    AuctionStatus = "closed"
	AuctionCancelled AuctionStatus = "cancelled"
)

// Valid reports whether s is one of the known auction states
func (s AuctionStatus) Valid() bool {
	switch s {
	case AuctionActive, AuctionClosed, AuctionCancelled:
		return true
	}
	return false
}

// BidStatus is the settlement state of a bid
type BidStatus string

const (
	BidPending  BidStatus = "pending"
	BidAccepted BidStatus = "accepted"
	BidRejected BidStatus = "rejected"
)

func (s BidStatus) Valid() bool {
	switch s {
	case BidPending, BidAccepted, BidRejected:
		return true
	}
	return false
}

// User is the identity record owned by the user directory
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	Location     string `json:"location"`
	ProfilePic   string `json:"profile_pic"`
	Role         string `json:"role"`
	PasswordHash string `json:"-"`
}

// UserSummary is the public identity attached to auctions and bids
type UserSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Username   string `json:"username"`
	Location   string `json:"location,omitempty"`
	ProfilePic string `json:"profile_pic"`
}

// Auction represents a seller's timed listing for a bulk crop quantity
type Auction struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	CropName    string        `json:"crop_name"`
	Quantity    int64         `json:"quantity"`
	Unit        string        `json:"unit"`
	Description string        `json:"description,omitempty"`
	MinPrice    *int64        `json:"min_price"`
	SellerID    string        `json:"seller_id"`
	EndTime     time.Time     `json:"end_time"`
	CreatedAt   time.Time     `json:"created_at"`
	Status      AuctionStatus `json:"status"`
}

// AuctionSpec is the seller-supplied input for a new auction
type AuctionSpec struct {
	Title       string    `json:"title" validate:"required,max=200"`
	CropName    string    `json:"crop_name" validate:"required,max=100"`
	Quantity    int64     `json:"quantity" validate:"required,gt=0"`
	Unit        string    `json:"unit" validate:"required,max=20"`
	Description string    `json:"description" validate:"max=2000"`
	MinPrice    *int64    `json:"min_price" validate:"omitempty,gte=0"`
	EndTime     time.Time `json:"end_time" validate:"required"`
}

// AuctionPatch holds the mutable auction fields; nil means unchanged
type AuctionPatch struct {
	Status *AuctionStatus
}

// AuctionFilter selects auctions by exact field equality; empty fields match everything
type AuctionFilter struct {
	Status   AuctionStatus
	SellerID string
}

// Matches reports whether a satisfies every criterion set on f
func (f AuctionFilter) Matches(a Auction) bool {
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.SellerID != "" && a.SellerID != f.SellerID {
		return false
	}
	return true
}

// Bid represents a bidder's proposed price for an auction
type Bid struct {
	ID        string    `json:"id"`
	AuctionID string    `json:"auction_id"`
	BidderID  string    `json:"bidder_id"`
	Amount    int64     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
	Status    BidStatus `json:"status"`
}

// BidView is a bid enriched with the bidder's public identity
type BidView struct {
	Bid
	Bidder *UserSummary `json:"bidder"`
}

// AuctionSummary is the list projection of an auction
type AuctionSummary struct {
	Auction
	Seller     *UserSummary `json:"seller"`
	HighestBid *int64       `json:"highestBid"`
	BidCount   int          `json:"bidCount"`
}

// AuctionDetail is the single-auction projection with its full bid history
type AuctionDetail struct {
	Auction
	Seller *UserSummary `json:"seller"`
	Bids   []BidView    `json:"bids"`
}

// SellerSummary is the public identity shown for an auction's seller
func (u User) SellerSummary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Username: u.Username, Location: u.Location, ProfilePic: u.ProfilePic}
}

// BidderSummary is the public identity shown next to a bid
func (u User) BidderSummary() *UserSummary {
	return &UserSummary{ID: u.ID, Name: u.Name, Username: u.Username, ProfilePic: u.ProfilePic}
}
