package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/WaguimDevOps/cards-api-bolt/internal/models"
	"github.com/WaguimDevOps/cards-api-bolt/internal/services"
)

// fakeResolver returns a canned pipeline result.
type fakeResolver struct {
	resp *models.DeckGenerationResponse
	err  error
}

func (f *fakeResolver) GenerateDeck(context.Context, models.DeckGenerationRequest) (*models.DeckGenerationResponse, error) {
	return f.resp, f.err
}

func newGenerateRouter(t *testing.T, resolver DeckGenerator) (*gin.Engine, *services.DeckEngine) {
	t.Helper()
	engine, err := services.NewDeckEngine(&memoryStorage{})
	if err != nil {
		t.Fatalf("NewDeckEngine: %v", err)
	}
	handler := NewGenerateHandler(resolver, engine)
	router := gin.New()
	router.POST("/api/generate", handler.Generate)
	router.POST("/api/generate/commit", handler.Commit)
	return router, engine
}

func TestGenerateEndpoint(t *testing.T) {
	resolver := &fakeResolver{resp: &models.DeckGenerationResponse{
		Suggestion: models.AIDeckSuggestion{MainDeck: []string{"A"}, Strategy: "go face"},
		Cards: models.ResolvedDeckCards{
			Main: []models.Card{{ID: 1, Name: "A", Type: "Effect Monster"}},
		},
		NotFound: []string{"B"},
	}}
	router, _ := newGenerateRouter(t, resolver)

	w := performJSON(router, http.MethodPost, "/api/generate", gin.H{"prompt": "burn deck"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp models.DeckGenerationResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if len(resp.Cards.Main) != 1 || len(resp.NotFound) != 1 {
		t.Errorf("response = %+v", resp)
	}

	// Missing prompt is a 400.
	w = performJSON(router, http.MethodPost, "/api/generate", gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGenerateEndpointErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"not configured", services.ErrGenerationUnavailable, http.StatusServiceUnavailable},
		{"bad credential", services.ErrInvalidCredential, http.StatusBadGateway},
		{"rate limited", services.ErrRateLimited, http.StatusTooManyRequests},
		{"malformed suggestion", services.ErrMalformedSuggestion, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newGenerateRouter(t, &fakeResolver{err: tt.err})
			w := performJSON(router, http.MethodPost, "/api/generate", gin.H{"prompt": "x"})
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var body struct {
				Error string `json:"error"`
			}
			json.Unmarshal(w.Body.Bytes(), &body)
			if body.Error == "" {
				t.Errorf("error message missing")
			}
		})
	}
}

func TestCommitEndpointReappliesRules(t *testing.T) {
	router, engine := newGenerateRouter(t, &fakeResolver{})

	// Four copies of the same card arrive from the proposal; the commit
	// clamps to three and reports the skip.
	card := models.Card{ID: 1, Name: "Quad", Type: "Effect Monster"}
	fusion := models.Card{ID: 2, Name: "Mix", Type: "Fusion Monster"}
	body := models.ResolvedDeckCards{
		Main:  []models.Card{card, card, card, card},
		Extra: []models.Card{fusion},
	}

	w := performJSON(router, http.MethodPost, "/api/generate/commit", body)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Deck    models.Deck `json:"deck"`
		Skipped []string    `json:"skipped"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Deck.Main) != 3 || len(resp.Deck.Extra) != 1 {
		t.Errorf("zones = main:%d extra:%d", len(resp.Deck.Main), len(resp.Deck.Extra))
	}
	if len(resp.Skipped) != 1 {
		t.Errorf("skipped = %v", resp.Skipped)
	}

	if engine.ActiveDeck().CountCopies(1) != 3 {
		t.Errorf("engine state not updated")
	}
}

func TestCommitEndpointNoActiveDeck(t *testing.T) {
	router, engine := newGenerateRouter(t, &fakeResolver{})
	engine.SetActiveDeck("missing")

	w := performJSON(router, http.MethodPost, "/api/generate/commit", models.ResolvedDeckCards{})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}
