package models

import (
	"time"

	"github.com/google/uuid"
)

// DeckZone names one of the three zones of a deck.
type DeckZone string

const (
	ZoneMain  DeckZone = "main"
	ZoneExtra DeckZone = "extra"
	ZoneSide  DeckZone = "side"
)

// Construction limits. MaxCopies applies across all three zones combined;
// the zone caps apply at the point of insertion.
const (
	MaxCopies       = 3
	MaxMainDeckSize = 60
	MaxExtraSize    = 15
)

// Deck is a named, mutable card list split into the three play zones.
// Zone slices preserve insertion order and may hold duplicates up to MaxCopies.
type Deck struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Main      []Card `json:"main"`
	Extra     []Card `json:"extra"`
	Side      []Card `json:"side"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// NewDeck allocates an empty deck with a fresh id and current timestamps.
func NewDeck(name string) Deck {
	now := time.Now().UnixMilli()
	return Deck{
		ID:        uuid.NewString(),
		Name:      name,
		Main:      []Card{},
		Extra:     []Card{},
		Side:      []Card{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a copy of the deck with freshly allocated zone slices, so
// the copy can be read while the original is mutated under a lock.
func (d *Deck) Clone() Deck {
	out := *d
	out.Main = append([]Card(nil), d.Main...)
	out.Extra = append([]Card(nil), d.Extra...)
	out.Side = append([]Card(nil), d.Side...)
	return out
}

// Zone returns the slice backing the named zone, or nil for an unknown zone.
func (d *Deck) Zone(zone DeckZone) []Card {
	switch zone {
	case ZoneMain:
		return d.Main
	case ZoneExtra:
		return d.Extra
	case ZoneSide:
		return d.Side
	}
	return nil
}

// CountCopies counts occurrences of the catalog id across all three zones.
func (d *Deck) CountCopies(cardID int) int {
	count := 0
	for _, zone := range [][]Card{d.Main, d.Extra, d.Side} {
		for _, c := range zone {
			if c.ID == cardID {
				count++
			}
		}
	}
	return count
}

// Size returns the total number of cards across all zones.
func (d *Deck) Size() int {
	return len(d.Main) + len(d.Extra) + len(d.Side)
}

// ValidZone reports whether zone names one of the three deck zones.
func ValidZone(zone DeckZone) bool {
	return zone == ZoneMain || zone == ZoneExtra || zone == ZoneSide
}
