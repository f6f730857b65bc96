package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/WaguimDevOps/cards-api-bolt/internal/models"
	"github.com/WaguimDevOps/cards-api-bolt/internal/services"
)

// DeckGenerator runs the AI generation + catalog resolution pipeline.
type DeckGenerator interface {
	GenerateDeck(ctx context.Context, req models.DeckGenerationRequest) (*models.DeckGenerationResponse, error)
}

type GenerateHandler struct {
	resolver DeckGenerator
	engine   *services.DeckEngine
}

func NewGenerateHandler(resolver DeckGenerator, engine *services.DeckEngine) *GenerateHandler {
	return &GenerateHandler{resolver: resolver, engine: engine}
}

// Generate runs the AI pipeline and returns the resolved proposal. Nothing
// is written to any deck; committing is a separate explicit call.
func (h *GenerateHandler) Generate(c *gin.Context) {
	var req models.DeckGenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Prompt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "prompt is required"})
		return
	}

	resp, err := h.resolver.GenerateDeck(c.Request.Context(), req)
	if err != nil {
		status, message := classifyGenerationError(err)
		c.JSON(status, gin.H{"error": message})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Commit replaces the active deck's main and extra zones with a resolved
// proposal. Construction rules are re-applied; skipped cards are reported.
func (h *GenerateHandler) Commit(c *gin.Context) {
	var body models.ResolvedDeckCards
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card lists"})
		return
	}

	if h.engine.ActiveDeck() == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active deck"})
		return
	}

	skipped, err := h.engine.ReplaceActiveZones(body.Main, body.Extra)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"deck":    h.engine.ActiveDeck(),
		"skipped": skipped,
	})
}

// classifyGenerationError maps pipeline errors to HTTP responses. All of
// these surface as user-facing messages; none are retried automatically.
func classifyGenerationError(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrGenerationUnavailable):
		return http.StatusServiceUnavailable, "Deck generation is not configured. Set GEMINI_API_KEY."
	case errors.Is(err, services.ErrInvalidCredential):
		return http.StatusBadGateway, "Invalid API key. Check your configuration."
	case errors.Is(err, services.ErrRateLimited):
		return http.StatusTooManyRequests, "Request limit reached. Wait a moment and try again."
	case errors.Is(err, services.ErrMalformedSuggestion):
		return http.StatusBadGateway, "The AI returned an invalid response. Try again."
	}
	return http.StatusBadGateway, err.Error()
}
