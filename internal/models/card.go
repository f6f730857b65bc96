package models

import "strings"

// Card is a read-only catalog entry as served by the YGOPRODeck API.
// The deck engine never mutates a Card, it only stores references to it.
type Card struct {
	ID        int         `json:"id"`
	Name      string      `json:"name"`
	Type      string      `json:"type"`
	FrameType string      `json:"frameType"`
	Desc      string      `json:"desc"`
	Atk       *int        `json:"atk,omitempty"`
	Def       *int        `json:"def,omitempty"`
	Level     *int        `json:"level,omitempty"`
	Race      string      `json:"race"`
	Attribute string      `json:"attribute,omitempty"`
	Archetype string      `json:"archetype,omitempty"`
	Images    []CardImage `json:"card_images"`
	Prices    []CardPrice `json:"card_prices"`
}

type CardImage struct {
	ID              int    `json:"id"`
	ImageURL        string `json:"image_url"`
	ImageURLSmall   string `json:"image_url_small"`
	ImageURLCropped string `json:"image_url_cropped"`
}

// CardPrice is a market-price snapshot. The API reports prices as strings.
type CardPrice struct {
	CardmarketPrice   string `json:"cardmarket_price"`
	TCGPlayerPrice    string `json:"tcgplayer_price"`
	EbayPrice         string `json:"ebay_price"`
	AmazonPrice       string `json:"amazon_price"`
	CoolStuffIncPrice string `json:"coolstuffinc_price"`
}

// extraDeckMarkers are the card-type sub-kinds that belong in the extra deck.
// Eligibility is a case-insensitive substring match on the card's type string
// (e.g. "XYZ Monster", "Link Monster", "Pendulum Effect Fusion Monster").
var extraDeckMarkers = []string{"fusion", "synchro", "xyz", "link"}

// IsExtraDeckCard reports whether the card belongs in the extra deck.
func (c *Card) IsExtraDeckCard() bool {
	cardType := strings.ToLower(c.Type)
	for _, marker := range extraDeckMarkers {
		if strings.Contains(cardType, marker) {
			return true
		}
	}
	return false
}

type CardSearchResult struct {
	Cards []Card `json:"cards"`
	// Total is best-effort: some query shapes omit aggregate counts, in which
	// case it falls back to the page length.
	Total int `json:"total"`
}
