package server

import (
	"crop-auction/internal/auth"
	handler "crop-auction/services/auction/handler"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Dependencies are the collaborators the HTTP layer is built from
type Dependencies struct {
	Auctions       handler.AuctionServiceInterface
	Accounts       handler.AccountService
	Tokens         *auth.TokenManager
	AllowedOrigins []string
}

// SetupRouter configures all Gin routes for the application
func SetupRouter(deps Dependencies) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestLoggerMiddleware) // custom request logging
	if len(deps.AllowedOrigins) > 0 {
		router.Use(CORSMiddleware(deps.AllowedOrigins))
	}

	auctionHandler := handler.NewAuctionHandler(deps.Auctions)
	authHandler := handler.NewAuthHandler(deps.Accounts, deps.Tokens)
	requireAuth := auth.Middleware(deps.Tokens)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	api := router.Group("/api")

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", authHandler.RegisterHandler)
		authRoutes.POST("/login", authHandler.LoginHandler)
		authRoutes.GET("/me", requireAuth, authHandler.MeHandler)
	}

	auctions := api.Group("/auctions")
	{
		auctions.GET("", auctionHandler.ListAuctionsHandler)
		auctions.GET("/:id", auctionHandler.GetAuctionHandler)
		auctions.POST("", requireAuth, auctionHandler.CreateAuctionHandler)
		auctions.PUT("/:id", requireAuth, auctionHandler.UpdateAuctionHandler)
		auctions.POST("/:id/bids", requireAuth, auctionHandler.PlaceBidHandler)
		auctions.PUT("/:id/bids/:bid_id", requireAuth, auctionHandler.UpdateBidHandler)
	}

	usersGroup := api.Group("/users", requireAuth)
	{
		usersGroup.GET("/me/bids", auctionHandler.GetMyBidsHandler)
	}

	return router
}
