package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/WaguimDevOps/cards-api-bolt/internal/models"
	"github.com/WaguimDevOps/cards-api-bolt/internal/services"
)

// CardCatalog is the catalog surface the handlers depend on.
type CardCatalog interface {
	Search(ctx context.Context, filters services.SearchFilters) (*models.CardSearchResult, error)
	GetByID(ctx context.Context, id int) (*models.Card, error)
}

type CardHandler struct {
	catalog CardCatalog
}

func NewCardHandler(catalog CardCatalog) *CardHandler {
	return &CardHandler{catalog: catalog}
}

// SearchCards proxies a filtered catalog search.
// Query params: fname, num, offset, type, attribute, level, sort.
func (h *CardHandler) SearchCards(c *gin.Context) {
	filters := services.SearchFilters{
		Name:      c.Query("fname"),
		Type:      c.Query("type"),
		Attribute: c.Query("attribute"),
		Sort:      c.Query("sort"),
	}
	if v := c.Query("num"); v != "" {
		filters.Num, _ = strconv.Atoi(v)
	}
	if v := c.Query("offset"); v != "" {
		filters.Offset, _ = strconv.Atoi(v)
	}
	if v := c.Query("level"); v != "" {
		filters.Level, _ = strconv.Atoi(v)
	}

	result, err := h.catalog.Search(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "card catalog unavailable"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetCard resolves a single catalog identifier.
func (h *CardHandler) GetCard(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid card id"})
		return
	}

	card, err := h.catalog.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrCardNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "card not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "card catalog unavailable"})
		return
	}

	c.JSON(http.StatusOK, card)
}
