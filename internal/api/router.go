package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/WaguimDevOps/cards-api-bolt/internal/api/handlers"
	"github.com/WaguimDevOps/cards-api-bolt/internal/metrics"
	"github.com/WaguimDevOps/cards-api-bolt/internal/services"
)

// NewRouter assembles the HTTP surface around the injected services.
func NewRouter(engine *services.DeckEngine, catalog handlers.CardCatalog, resolver handlers.DeckGenerator, corsOrigins []string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), metrics.HTTPMetrics())

	corsConfig := cors.DefaultConfig()
	if len(corsOrigins) == 1 && corsOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = corsOrigins
	}
	router.Use(cors.New(corsConfig))

	cardHandler := handlers.NewCardHandler(catalog)
	deckHandler := handlers.NewDeckHandler(engine, catalog)
	generateHandler := handlers.NewGenerateHandler(resolver, engine)

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/cards", cardHandler.SearchCards)
		apiGroup.GET("/cards/:id", cardHandler.GetCard)

		apiGroup.GET("/decks", deckHandler.ListDecks)
		apiGroup.POST("/decks", deckHandler.CreateDeck)
		apiGroup.GET("/decks/active", deckHandler.GetActiveDeck)
		apiGroup.PUT("/decks/active", deckHandler.UpdateActiveDeck)
		apiGroup.DELETE("/decks/:id", deckHandler.DeleteDeck)
		apiGroup.POST("/decks/active/cards", deckHandler.AddCard)
		apiGroup.DELETE("/decks/active/cards", deckHandler.RemoveCard)
		apiGroup.GET("/decks/:id/export", deckHandler.ExportDeck)
		apiGroup.POST("/decks/import", deckHandler.ImportDeck)

		apiGroup.POST("/generate", generateHandler.Generate)
		apiGroup.POST("/generate/commit", generateHandler.Commit)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
