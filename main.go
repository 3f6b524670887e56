package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	auction "crop-auction/internal/auctionService"
	"crop-auction/internal/auth"
	"crop-auction/internal/config"
	"crop-auction/internal/database"
	"crop-auction/internal/jobs"
	model "crop-auction/internal/models"
	"crop-auction/internal/repository"
	"crop-auction/internal/server"
	"crop-auction/internal/users"
	"crop-auction/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.Fatal("failed to load configuration", map[string]any{"error": err.Error()})
	}

	utils.ConfigureLogger(cfg.Log.Level, cfg.Log.Format)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		utils.HideInternalErrors(true)
	}

	repo, db, err := openStore(cfg.Store)
	if err != nil {
		utils.Fatal("failed to open auction store", map[string]any{"driver": cfg.Store.Driver, "error": err.Error()})
	}
	if db != nil {
		defer func() {
			if err := database.Close(db); err != nil {
				utils.Error("failed to close database", map[string]any{"error": err.Error()})
			}
		}()
	}

	directory := users.NewMemoryDirectory(repository.UUIDGenerator{})
	auctionSvc := auction.NewAuctionService(repo, directory)

	if cfg.Auction.SeedDemoData {
		if err := prepopulate(context.Background(), directory, auctionSvc); err != nil {
			utils.Fatal("failed to seed demo data", map[string]any{"error": err.Error()})
		}
	}

	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		utils.Fatal("failed to create token manager", map[string]any{"error": err.Error()})
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var closer *jobs.AuctionCloser
	if cfg.Auction.SweepInterval > 0 {
		closer = jobs.NewAuctionCloser(auctionSvc.Lifecycle(), cfg.Auction.SweepInterval)
		go closer.Start(ctx)
	}

	router := server.SetupRouter(server.Dependencies{
		Auctions:       auctionSvc,
		Accounts:       directory,
		Tokens:         tokens,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.Info("starting auction server", map[string]any{
			"addr":  srv.Addr,
			"env":   cfg.Server.Env,
			"store": cfg.Store.Driver,
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Fatal("failed to start server", map[string]any{"error": err.Error()})
		}
	}()

	<-ctx.Done()
	utils.Info("shutting down server", nil)

	if closer != nil {
		closer.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Error("server forced to shutdown", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	utils.Info("server exited", nil)
}

// openStore returns the configured auction store and, for sqlite, the database handle to close
func openStore(cfg config.StoreConfig) (repository.AuctionStore, *gorm.DB, error) {
	if cfg.Driver != "sqlite" {
		return repository.NewMemoryRepo(), nil, nil
	}

	db, err := database.Open(cfg.DSN)
	if err != nil {
		return nil, nil, err
	}
	repo, err := repository.NewGormRepo(db)
	if err != nil {
		_ = database.Close(db)
		return nil, nil, err
	}
	return repo, db, nil
}

const demoPassword = "password123"

// prepopulate adds sample farmers and open auctions
func prepopulate(ctx context.Context, directory *users.MemoryDirectory, svc *auction.AuctionService) error {
	farmers := []model.User{
		{ID: "user1", Username: "rajpatel", Name: "Raj Patel", Location: "Nagpur, Maharashtra", ProfilePic: "https://randomuser.me/api/portraits/men/32.jpg"},
		{ID: "user2", Username: "harpreetkaur", Name: "Harpreet Kaur", Location: "Ludhiana, Punjab", ProfilePic: "https://randomuser.me/api/portraits/women/44.jpg"},
		{ID: "user3", Username: "mohanverma", Name: "Mohan Verma", Location: "Indore, Madhya Pradesh", ProfilePic: "https://randomuser.me/api/portraits/men/62.jpg"},
	}
	for _, f := range farmers {
		if err := directory.Seed(f, demoPassword); err != nil {
			return err
		}
	}

	// a persistent store already holds the sample auctions after the first run
	existing, err := svc.ListAuctions(ctx, model.AuctionFilter{})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	minPrice := func(v int64) *int64 { return &v }
	now := time.Now().UTC()
	specs := []struct {
		sellerID string
		spec     model.AuctionSpec
	}{
		{"user1", model.AuctionSpec{Title: "Premium Basmati Rice", CropName: "Rice", Quantity: 500, Unit: "kg", Description: "Aged basmati from the current harvest", MinPrice: minPrice(25000), EndTime: now.Add(72 * time.Hour)}},
		{"user2", model.AuctionSpec{Title: "Organic Wheat", CropName: "Wheat", Quantity: 1000, Unit: "kg", Description: "Pesticide-free sharbati wheat", MinPrice: minPrice(22000), EndTime: now.Add(48 * time.Hour)}},
		{"user3", model.AuctionSpec{Title: "Soybean Lot", CropName: "Soybean", Quantity: 20, Unit: "quintal", EndTime: now.Add(96 * time.Hour)}},
	}
	for _, s := range specs {
		created, err := svc.CreateAuction(ctx, s.sellerID, s.spec)
		if err != nil {
			return err
		}
		utils.Debug("seeded auction", map[string]any{"auction_id": created.ID, "seller_id": s.sellerID})
	}
	return nil
}
