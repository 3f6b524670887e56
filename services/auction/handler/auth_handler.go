package handler

import (
	"context"
	"net/http"

	"crop-auction/internal/auth"
	model "crop-auction/internal/models"
	"crop-auction/internal/users"
	"crop-auction/services/auction/helpers"
	"crop-auction/utils"

	"github.com/gin-gonic/gin"
)

// AccountService registers, authenticates and looks up users
type AccountService interface {
	Register(ctx context.Context, reg users.Registration) (model.User, error)
	Authenticate(ctx context.Context, username, password string) (model.User, error)
	GetUser(ctx context.Context, id string) (model.User, error)
}

// TokenIssuer signs access tokens for authenticated users
type TokenIssuer interface {
	GenerateToken(userID, username string) (string, error)
}

type AuthHandler struct {
	accounts AccountService
	tokens   TokenIssuer
}

func NewAuthHandler(accounts AccountService, tokens TokenIssuer) *AuthHandler {
	return &AuthHandler{accounts: accounts, tokens: tokens}
}

// RegisterHandler handles POST /api/auth/register
func (h *AuthHandler) RegisterHandler(c *gin.Context) {
	var req helpers.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RegisterHandler", err)
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), users.Registration{
		Username:   req.Username,
		Password:   req.Password,
		Name:       req.Name,
		Location:   req.Location,
		ProfilePic: req.ProfilePic,
		Role:       req.Role,
	})
	if err != nil {
		helpers.HandleServiceError(c, "RegisterHandler", err, map[string]any{"username": req.Username})
		return
	}

	h.respondWithToken(c, "RegisterHandler", http.StatusCreated, user, "user registered successfully")
}

// LoginHandler handles POST /api/auth/login
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req helpers.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "LoginHandler", err)
		return
	}

	user, err := h.accounts.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		helpers.HandleServiceError(c, "LoginHandler", err, map[string]any{"username": req.Username})
		return
	}

	h.respondWithToken(c, "LoginHandler", http.StatusOK, user, "login successful")
}

// MeHandler handles GET /api/auth/me
func (h *AuthHandler) MeHandler(c *gin.Context) {
	userID, ok := requireCaller(c)
	if !ok {
		return
	}

	user, err := h.accounts.GetUser(c.Request.Context(), userID)
	if err != nil {
		helpers.HandleServiceError(c, "MeHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, toUserResponse(user), "user retrieved successfully")
}

func (h *AuthHandler) respondWithToken(c *gin.Context, handlerName string, status int, user model.User, message string) {
	token, err := h.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		helpers.HandleServiceError(c, handlerName, err, map[string]any{"user_id": user.ID})
		return
	}

	utils.JSONResponse(c, status, helpers.AuthResponse{Token: token, User: toUserResponse(user)}, message)
	helpers.LogSuccess(handlerName, message, map[string]any{"user_id": user.ID, "username": user.Username})
}

func toUserResponse(u model.User) helpers.UserResponse {
	return helpers.UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Name:       u.Name,
		Location:   u.Location,
		ProfilePic: u.ProfilePic,
		Role:       u.Role,
	}
}

var _ TokenIssuer = (*auth.TokenManager)(nil)
