package handler

import (
	"context"
	"fmt"
	"net/http"

	"crop-auction/internal/auctionerrors"
	"crop-auction/internal/auth"
	model "crop-auction/internal/models"
	"crop-auction/services/auction/helpers"
	"crop-auction/utils"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -destination=mock_auction_service.go -package=handler crop-auction/services/auction/handler AuctionServiceInterface

type AuctionServiceInterface interface {
	CreateAuction(ctx context.Context, sellerID string, spec model.AuctionSpec) (model.Auction, error)
	ListAuctions(ctx context.Context, filter model.AuctionFilter) ([]model.AuctionSummary, error)
	GetAuctionDetail(ctx context.Context, auctionID string) (model.AuctionDetail, error)
	PlaceBid(ctx context.Context, auctionID, bidderID string, amount int64) (model.BidView, error)
	SetAuctionStatus(ctx context.Context, auctionID, requesterID string, status model.AuctionStatus) (model.Auction, error)
	SetBidStatus(ctx context.Context, auctionID, bidID, requesterID string, status model.BidStatus) (model.Bid, error)
	GetBidsByBidder(ctx context.Context, bidderID string) ([]model.Bid, error)
}

type AuctionHandler struct {
	service AuctionServiceInterface
}

func NewAuctionHandler(service AuctionServiceInterface) *AuctionHandler {
	return &AuctionHandler{service: service}
}

// ListAuctionsHandler handles GET /api/auctions?status=&seller_id=
func (h *AuctionHandler) ListAuctionsHandler(c *gin.Context) {
	filter := model.AuctionFilter{
		Status:   model.AuctionStatus(c.Query("status")),
		SellerID: c.Query("seller_id"),
	}

	auctions, err := h.service.ListAuctions(c.Request.Context(), filter)
	if err != nil {
		helpers.HandleServiceError(c, "ListAuctionsHandler", err, map[string]any{
			"status_filter": filter.Status,
			"seller_id":     filter.SellerID,
		})
		return
	}

	if auctions == nil {
		auctions = []model.AuctionSummary{}
	}

	utils.JSONResponse(c, http.StatusOK, auctions, "auctions retrieved successfully")
	helpers.LogSuccess("ListAuctionsHandler", "auctions retrieved successfully", map[string]any{
		"count": len(auctions),
	})
}

// GetAuctionHandler handles GET /api/auctions/:id
func (h *AuctionHandler) GetAuctionHandler(c *gin.Context) {
	auctionID := c.Param("id")
	detail, err := h.service.GetAuctionDetail(c.Request.Context(), auctionID)
	if err != nil {
		helpers.HandleServiceError(c, "GetAuctionHandler", err, map[string]any{"auction_id": auctionID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, detail, "auction retrieved successfully")
	helpers.LogSuccess("GetAuctionHandler", "auction retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"bid_count":  len(detail.Bids),
	})
}

// CreateAuctionHandler handles POST /api/auctions
func (h *AuctionHandler) CreateAuctionHandler(c *gin.Context) {
	sellerID, ok := requireCaller(c)
	if !ok {
		return
	}

	var req helpers.CreateAuctionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "CreateAuctionHandler", err)
		return
	}

	auction, err := h.service.CreateAuction(c.Request.Context(), sellerID, model.AuctionSpec{
		Title:       req.Title,
		CropName:    req.CropName,
		Quantity:    req.Quantity,
		Unit:        req.Unit,
		Description: req.Description,
		MinPrice:    req.MinPrice,
		EndTime:     req.EndTime,
	})
	if err != nil {
		helpers.HandleServiceError(c, "CreateAuctionHandler", err, map[string]any{"seller_id": sellerID})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, auction, "auction created successfully")
	helpers.LogSuccess("CreateAuctionHandler", "auction created successfully", map[string]any{
		"auction_id": auction.ID,
		"seller_id":  sellerID,
	})
}

// PlaceBidHandler handles POST /api/auctions/:id/bids
func (h *AuctionHandler) PlaceBidHandler(c *gin.Context) {
	bidderID, ok := requireCaller(c)
	if !ok {
		return
	}

	var req helpers.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "PlaceBidHandler", err)
		return
	}

	auctionID := c.Param("id")
	bid, err := h.service.PlaceBid(c.Request.Context(), auctionID, bidderID, req.Amount)
	if err != nil {
		helpers.HandleServiceError(c, "PlaceBidHandler", err, map[string]any{
			"auction_id": auctionID,
			"bidder_id":  bidderID,
			"amount":     req.Amount,
		})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, bid, "bid recorded successfully")
	helpers.LogSuccess("PlaceBidHandler", "bid recorded successfully", map[string]any{
		"bid_id":     bid.ID,
		"auction_id": auctionID,
		"bidder_id":  bidderID,
		"amount":     bid.Amount,
	})
}

// UpdateAuctionHandler handles PUT /api/auctions/:id
func (h *AuctionHandler) UpdateAuctionHandler(c *gin.Context) {
	requesterID, ok := requireCaller(c)
	if !ok {
		return
	}

	var req helpers.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateAuctionHandler", err)
		return
	}

	auctionID := c.Param("id")
	auction, err := h.service.SetAuctionStatus(c.Request.Context(), auctionID, requesterID, model.AuctionStatus(req.Status))
	if err != nil {
		helpers.HandleServiceError(c, "UpdateAuctionHandler", err, map[string]any{
			"auction_id":   auctionID,
			"requester_id": requesterID,
			"new_status":   req.Status,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, auction, "auction updated successfully")
	helpers.LogSuccess("UpdateAuctionHandler", "auction updated successfully", map[string]any{
		"auction_id": auctionID,
		"status":     auction.Status,
	})
}

// UpdateBidHandler handles PUT /api/auctions/:id/bids/:bid_id
func (h *AuctionHandler) UpdateBidHandler(c *gin.Context) {
	requesterID, ok := requireCaller(c)
	if !ok {
		return
	}

	var req helpers.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "UpdateBidHandler", err)
		return
	}

	auctionID, bidID := c.Param("id"), c.Param("bid_id")
	bid, err := h.service.SetBidStatus(c.Request.Context(), auctionID, bidID, requesterID, model.BidStatus(req.Status))
	if err != nil {
		helpers.HandleServiceError(c, "UpdateBidHandler", err, map[string]any{
			"auction_id":   auctionID,
			"bid_id":       bidID,
			"requester_id": requesterID,
		})
		return
	}

	utils.JSONResponse(c, http.StatusOK, bid, "bid updated successfully")
	helpers.LogSuccess("UpdateBidHandler", "bid updated successfully", map[string]any{
		"bid_id": bidID,
		"status": bid.Status,
	})
}

// GetMyBidsHandler handles GET /api/users/me/bids
func (h *AuctionHandler) GetMyBidsHandler(c *gin.Context) {
	bidderID, ok := requireCaller(c)
	if !ok {
		return
	}

	bids, err := h.service.GetBidsByBidder(c.Request.Context(), bidderID)
	if err != nil {
		helpers.HandleServiceError(c, "GetMyBidsHandler", err, map[string]any{"bidder_id": bidderID})
		return
	}

	if bids == nil {
		bids = []model.Bid{}
	}

	utils.JSONResponse(c, http.StatusOK, bids, "bids retrieved successfully")
	helpers.LogSuccess("GetMyBidsHandler", "bids retrieved successfully", map[string]any{
		"bidder_id": bidderID,
		"count":     len(bids),
	})
}

// requireCaller returns the authenticated user id or writes a 401
func requireCaller(c *gin.Context) (string, bool) {
	id, ok := auth.GetUserID(c)
	if !ok {
		helpers.HandleServiceError(c, "requireCaller", fmt.Errorf("missing caller identity: %w", auctionerrors.ErrUnauthenticated), nil)
		return "", false
	}
	return id, true
}
