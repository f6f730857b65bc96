package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/WaguimDevOps/cards-api-bolt/internal/api"
	"github.com/WaguimDevOps/cards-api-bolt/internal/config"
	"github.com/WaguimDevOps/cards-api-bolt/internal/database"
	"github.com/WaguimDevOps/cards-api-bolt/internal/services"
)

func main() {
	configPath := os.Getenv("DECKBUILDER_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}

	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}

	store := services.NewDeckStore(db)
	engine, err := services.NewDeckEngine(store)
	if err != nil {
		log.Fatalf("Deck engine initialization failed: %v", err)
	}

	catalog := services.NewCatalogService(cfg.CatalogBaseURL, cfg.CatalogRate)
	gemini := services.NewGeminiDeckService(cfg.GeminiModel, cfg.GeminiKeyFile)
	resolver := services.NewDeckResolver(gemini, catalog)

	router := api.NewRouter(engine, catalog, resolver, cfg.CORSOrigins)

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	go func() {
		log.Printf("Deck builder listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}
