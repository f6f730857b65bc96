package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/WaguimDevOps/cards-api-bolt/internal/models"
	"github.com/WaguimDevOps/cards-api-bolt/internal/services"
)

// addReasonMessages maps engine rejection reasons to user-facing text.
var addReasonMessages = map[string]string{
	services.RejectNoActiveDeck: "No deck selected",
	services.RejectCopyLimit:    "Maximum of 3 copies per card",
	services.RejectExtraFull:    "Extra deck is full (15 cards max)",
	services.RejectMainFull:     "Main deck is full (60 cards max)",
}

type DeckHandler struct {
	engine  *services.DeckEngine
	catalog CardCatalog
}

func NewDeckHandler(engine *services.DeckEngine, catalog CardCatalog) *DeckHandler {
	return &DeckHandler{engine: engine, catalog: catalog}
}

// ListDecks returns the collection and the active pointer.
func (h *DeckHandler) ListDecks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"decks":        h.engine.Decks(),
		"activeDeckId": h.engine.ActiveDeckID(),
	})
}

// CreateDeck allocates a new empty deck and makes it active.
func (h *DeckHandler) CreateDeck(c *gin.Context) {
	var body struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "deck name is required"})
		return
	}

	deck, err := h.engine.CreateDeck(body.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, deck)
}

// GetActiveDeck returns the active deck, or 404 when the active pointer
// resolves to none.
func (h *DeckHandler) GetActiveDeck(c *gin.Context) {
	deck := h.engine.ActiveDeck()
	if deck == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active deck"})
		return
	}
	c.JSON(http.StatusOK, deck)
}

// UpdateActiveDeck switches the active pointer and/or renames the active
// deck. Body: {"id": "..."} to switch, {"name": "..."} to rename.
func (h *DeckHandler) UpdateActiveDeck(c *gin.Context) {
	var body struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if body.ID != "" {
		if err := h.engine.SetActiveDeck(body.ID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}
	if body.Name != "" {
		if err := h.engine.RenameActiveDeck(body.Name); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"activeDeckId": h.engine.ActiveDeckID()})
}

// DeleteDeck removes a deck from the collection.
func (h *DeckHandler) DeleteDeck(c *gin.Context) {
	id := c.Param("id")
	if _, ok := h.engine.DeckByID(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "deck not found"})
		return
	}

	if err := h.engine.DeleteDeck(id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"activeDeckId": h.engine.ActiveDeckID()})
}

// AddCard fetches the card from the catalog and inserts it into the active
// deck. Rule rejections come back as 200 with added=false and a reason, not
// as errors.
func (h *DeckHandler) AddCard(c *gin.Context) {
	var body struct {
		CardID int `json:"cardId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cardId is required"})
		return
	}

	card, err := h.catalog.GetByID(c.Request.Context(), body.CardID)
	if err != nil {
		if errors.Is(err, services.ErrCardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "card catalog unavailable"})
		return
	}

	result, err := h.engine.AddCardToActive(*card)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	payload := gin.H{"added": result.Added}
	if result.Added {
		payload["zone"] = result.Zone
		payload["message"] = fmt.Sprintf("%s added to deck", result.CardName)
	} else {
		payload["reason"] = result.Reason
		payload["message"] = addReasonMessages[result.Reason]
	}
	c.JSON(http.StatusOK, payload)
}

// RemoveCard removes the first copy of a card from the named zone of the
// active deck. Removing an absent card is a quiet no-op.
func (h *DeckHandler) RemoveCard(c *gin.Context) {
	var body struct {
		CardID int    `json:"cardId" binding:"required"`
		Zone   string `json:"zone" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cardId and zone are required"})
		return
	}

	zone := models.DeckZone(body.Zone)
	if !models.ValidZone(zone) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "zone must be main, extra or side"})
		return
	}

	if err := h.engine.RemoveCardFromActive(body.CardID, zone); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

// ExportDeck streams a deck as a downloadable .ydk file.
func (h *DeckHandler) ExportDeck(c *gin.Context) {
	deck, ok := h.engine.DeckByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "deck not found"})
		return
	}

	content := services.SerializeYDK(&deck)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", services.YDKFilename(&deck)))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(content))
}

// ImportDeck creates a new deck from an uploaded .ydk document, resolving
// each id against the catalog. Unresolvable ids are reported, not fatal.
func (h *DeckHandler) ImportDeck(c *gin.Context) {
	name := c.Query("name")
	if name == "" {
		name = "Imported Deck"
	}

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read deck list"})
		return
	}

	list, err := services.ParseYDK(string(body))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var unresolved []int
	resolve := func(ids []int) []models.Card {
		cards := make([]models.Card, 0, len(ids))
		for _, id := range ids {
			card, err := h.catalog.GetByID(c.Request.Context(), id)
			if err != nil {
				unresolved = append(unresolved, id)
				continue
			}
			cards = append(cards, *card)
		}
		return cards
	}

	main := resolve(list.Main)
	extra := resolve(list.Extra)
	side := resolve(list.Side)

	deck, skipped, err := h.engine.ImportDeck(name, main, extra, side)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"deck":       deck,
		"unresolved": unresolved,
		"skipped":    skipped,
	})
}
