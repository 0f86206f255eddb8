package main

import (
	"context"
	"log"
	"net/http"

	"rust-tracker/internal/api"
	"rust-tracker/internal/cache"
	"rust-tracker/internal/catalog"
	"rust-tracker/internal/config"
	"rust-tracker/internal/database"
	marketService "rust-tracker/internal/services/market"
	steamService "rust-tracker/internal/services/steam"
	"rust-tracker/internal/store"
	"rust-tracker/internal/valuation"
	"rust-tracker/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()

	if cfg.SteamAPIKey == "" {
		log.Println("STEAM_API_KEY not set; vanity URL registration will fail")
	}

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	st := store.New(db)
	cat := catalog.Default()

	marketSvc := marketService.NewService(cfg.PriceAPIBase)
	steamSvc := steamService.NewService(cfg.SteamAPIKey)

	priceCache := cache.NewPriceCache(marketSvc, st, cfg.FreshnessWindow)
	holdingsCache := cache.NewHoldingsCache(steamSvc, st, cfg.FreshnessWindow)
	aggregator := valuation.NewAggregator(priceCache, holdingsCache, st)
	publisher := valuation.NewPublisher(aggregator)

	hub := ws.NewHub()
	publisher.OnPublish = hub.BroadcastSnapshot

	ctx := context.Background()
	if err := priceCache.Warm(ctx); err != nil {
		log.Printf("Warning: price cache warmup failed: %v", err)
	}
	if err := publisher.Seed(ctx, st); err != nil {
		log.Printf("Warning: snapshot seeding failed: %v", err)
	}

	if cfg.Environment != "development" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	api.SetupRoutes(r, cat, publisher, st, steamSvc, hub)

	log.Printf("Server starting on port %s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, r))
}
