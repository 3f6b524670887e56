package helpers

import "time"

// Request/Response DTOs
type CreateAuctionRequest struct {
	Title       string    `json:"title" binding:"required"`
	CropName    string    `json:"crop_name" binding:"required"`
	Quantity    int64     `json:"quantity" binding:"required,gt=0"`
	Unit        string    `json:"unit" binding:"required"`
	MinPrice    *int64    `json:"min_price" binding:"omitempty,gte=0"`
	EndTime     time.Time `json:"end_time" binding:"required"`
	Description string    `json:"description"`
}

type PlaceBidRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type RegisterRequest struct {
	Username   string `json:"username" binding:"required"`
	Password   string `json:"password" binding:"required"`
	Name       string `json:"name"`
	Location   string `json:"location"`
	ProfilePic string `json:"profile_pic"`
	Role       string `json:"role"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UserResponse struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Name       string `json:"name"`
	Location   string `json:"location"`
	ProfilePic string `json:"profile_pic"`
	Role       string `json:"role"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
