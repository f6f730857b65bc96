package metrics

import (
	"github.com/WaguimDevOps/cards-api-bolt/internal/models"
)

// UpdateDeckMetrics refreshes the deck-related gauges from an engine
// snapshot. Call this after any deck mutation.
func UpdateDeckMetrics(decks []models.Deck, active *models.Deck) {
	DecksTotal.Set(float64(len(decks)))

	if active == nil {
		ActiveDeckCards.WithLabelValues(string(models.ZoneMain)).Set(0)
		ActiveDeckCards.WithLabelValues(string(models.ZoneExtra)).Set(0)
		ActiveDeckCards.WithLabelValues(string(models.ZoneSide)).Set(0)
		return
	}

	ActiveDeckCards.WithLabelValues(string(models.ZoneMain)).Set(float64(len(active.Main)))
	ActiveDeckCards.WithLabelValues(string(models.ZoneExtra)).Set(float64(len(active.Extra)))
	ActiveDeckCards.WithLabelValues(string(models.ZoneSide)).Set(float64(len(active.Side)))
}
