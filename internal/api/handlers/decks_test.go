package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/WaguimDevOps/cards-api-bolt/internal/models"
	"github.com/WaguimDevOps/cards-api-bolt/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memoryStorage is an in-memory services.DeckStorage for handler tests.
type memoryStorage struct {
	decks    []models.Deck
	activeID string
}

func (m *memoryStorage) Load() ([]models.Deck, string, error) { return m.decks, m.activeID, nil }
func (m *memoryStorage) SaveDecks(decks []models.Deck) error  { m.decks = decks; return nil }
func (m *memoryStorage) SaveActiveID(id string) error         { m.activeID = id; return nil }

// fakeCatalog serves cards from a fixed id table.
type fakeCatalog struct {
	cards map[int]models.Card
}

func (f *fakeCatalog) Search(_ context.Context, filters services.SearchFilters) (*models.CardSearchResult, error) {
	var hits []models.Card
	for _, c := range f.cards {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(filters.Name)) {
			hits = append(hits, c)
		}
	}
	return &models.CardSearchResult{Cards: hits, Total: len(hits)}, nil
}

func (f *fakeCatalog) GetByID(_ context.Context, id int) (*models.Card, error) {
	if c, ok := f.cards[id]; ok {
		return &c, nil
	}
	return nil, services.ErrCardNotFound
}

func newTestDeckHandler(t *testing.T, cards map[int]models.Card) (*DeckHandler, *services.DeckEngine) {
	t.Helper()
	engine, err := services.NewDeckEngine(&memoryStorage{})
	if err != nil {
		t.Fatalf("NewDeckEngine: %v", err)
	}
	return NewDeckHandler(engine, &fakeCatalog{cards: cards}), engine
}

func performJSON(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateDeckEndpoint(t *testing.T) {
	handler, engine := newTestDeckHandler(t, nil)
	router := gin.New()
	router.POST("/api/decks", handler.CreateDeck)

	w := performJSON(router, http.MethodPost, "/api/decks", gin.H{"name": "Burn"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var deck models.Deck
	if err := json.Unmarshal(w.Body.Bytes(), &deck); err != nil {
		t.Fatalf("bad response: %v", err)
	}
	if deck.Name != "Burn" {
		t.Errorf("deck name = %q", deck.Name)
	}
	if engine.ActiveDeckID() != deck.ID {
		t.Errorf("created deck did not become active")
	}

	// Missing name is a 400.
	w = performJSON(router, http.MethodPost, "/api/decks", gin.H{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAddCardEndpoint(t *testing.T) {
	cards := map[int]models.Card{
		1001: {ID: 1001, Name: "Summoned Skull", Type: "Normal Monster"},
	}
	handler, engine := newTestDeckHandler(t, cards)
	router := gin.New()
	router.POST("/api/decks/active/cards", handler.AddCard)

	w := performJSON(router, http.MethodPost, "/api/decks/active/cards", gin.H{"cardId": 1001})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Added   bool   `json:"added"`
		Zone    string `json:"zone"`
		Message string `json:"message"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if !resp.Added || resp.Zone != "main" {
		t.Errorf("response = %+v", resp)
	}
	if !strings.Contains(resp.Message, "Summoned Skull") {
		t.Errorf("message should name the card: %q", resp.Message)
	}
	if engine.ActiveDeck().CountCopies(1001) != 1 {
		t.Errorf("card not in deck")
	}

	// Unknown card id is a 404.
	w = performJSON(router, http.MethodPost, "/api/decks/active/cards", gin.H{"cardId": 555})
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestAddCardEndpointCopyLimitIsNotAnError(t *testing.T) {
	cards := map[int]models.Card{
		7: {ID: 7, Name: "Limited", Type: "Effect Monster"},
	}
	handler, _ := newTestDeckHandler(t, cards)
	router := gin.New()
	router.POST("/api/decks/active/cards", handler.AddCard)

	for i := 0; i < 3; i++ {
		performJSON(router, http.MethodPost, "/api/decks/active/cards", gin.H{"cardId": 7})
	}

	w := performJSON(router, http.MethodPost, "/api/decks/active/cards", gin.H{"cardId": 7})
	if w.Code != http.StatusOK {
		t.Fatalf("rule rejection must be 200, got %d", w.Code)
	}

	var resp struct {
		Added  bool   `json:"added"`
		Reason string `json:"reason"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Added || resp.Reason != services.RejectCopyLimit {
		t.Errorf("response = %+v", resp)
	}
}

func TestRemoveCardEndpoint(t *testing.T) {
	cards := map[int]models.Card{
		5: {ID: 5, Name: "Gone Soon", Type: "Spell Card"},
	}
	handler, engine := newTestDeckHandler(t, cards)
	router := gin.New()
	router.POST("/api/decks/active/cards", handler.AddCard)
	router.DELETE("/api/decks/active/cards", handler.RemoveCard)

	performJSON(router, http.MethodPost, "/api/decks/active/cards", gin.H{"cardId": 5})

	w := performJSON(router, http.MethodDelete, "/api/decks/active/cards", gin.H{"cardId": 5, "zone": "main"})
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
	if engine.ActiveDeck().CountCopies(5) != 0 {
		t.Errorf("card still in deck")
	}

	w = performJSON(router, http.MethodDelete, "/api/decks/active/cards", gin.H{"cardId": 5, "zone": "graveyard"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown zone should be 400, got %d", w.Code)
	}
}

func TestExportDeckEndpoint(t *testing.T) {
	cards := map[int]models.Card{
		11: {ID: 11, Name: "Main Card", Type: "Effect Monster"},
		22: {ID: 22, Name: "Fusion Card", Type: "Fusion Monster"},
	}
	handler, engine := newTestDeckHandler(t, cards)
	router := gin.New()
	router.GET("/api/decks/:id/export", handler.ExportDeck)

	engine.RenameActiveDeck("Export Me")
	engine.AddCardToActive(cards[11])
	engine.AddCardToActive(cards[22])
	deckID := engine.ActiveDeckID()

	req := httptest.NewRequest(http.MethodGet, "/api/decks/"+deckID+"/export", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, "Export_Me.ydk") {
		t.Errorf("Content-Disposition = %q", got)
	}
	body := w.Body.String()
	if !strings.Contains(body, "#main\n11\n") || !strings.Contains(body, "#extra\n22\n") {
		t.Errorf("unexpected export body:\n%s", body)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/decks/nope/export", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("missing deck export = %d, want 404", w.Code)
	}
}

func TestImportDeckEndpoint(t *testing.T) {
	cards := map[int]models.Card{
		11: {ID: 11, Name: "Main Card", Type: "Effect Monster"},
		22: {ID: 22, Name: "Fusion Card", Type: "Fusion Monster"},
	}
	handler, engine := newTestDeckHandler(t, cards)
	router := gin.New()
	router.POST("/api/decks/import", handler.ImportDeck)

	ydk := "#main\n11\n99\n#extra\n22\n!side\n"
	req := httptest.NewRequest(http.MethodPost, "/api/decks/import?name=FromFile", strings.NewReader(ydk))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Deck       models.Deck `json:"deck"`
		Unresolved []int       `json:"unresolved"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Deck.Name != "FromFile" {
		t.Errorf("deck name = %q", resp.Deck.Name)
	}
	if len(resp.Deck.Main) != 1 || len(resp.Deck.Extra) != 1 {
		t.Errorf("zones = main:%d extra:%d", len(resp.Deck.Main), len(resp.Deck.Extra))
	}
	if len(resp.Unresolved) != 1 || resp.Unresolved[0] != 99 {
		t.Errorf("unresolved = %v, want [99]", resp.Unresolved)
	}
	if engine.ActiveDeckID() != resp.Deck.ID {
		t.Errorf("imported deck is not active")
	}
}

func TestDeleteDeckEndpoint(t *testing.T) {
	handler, engine := newTestDeckHandler(t, nil)
	router := gin.New()
	router.DELETE("/api/decks/:id", handler.DeleteDeck)

	second, _ := engine.CreateDeck("Second")

	req := httptest.NewRequest(http.MethodDelete, "/api/decks/"+second.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if len(engine.Decks()) != 1 {
		t.Errorf("deck not deleted")
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/decks/unknown", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown deck delete = %d, want 404", w.Code)
	}
}
