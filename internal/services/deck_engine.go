package services

import (
	"sync"
	"time"

	"github.com/WaguimDevOps/cards-api-bolt/internal/metrics"
	"github.com/WaguimDevOps/cards-api-bolt/internal/models"
)

// Rejection reasons reported by AddCardToActive. These are outcomes, not
// errors: the caller surfaces them to the user and state stays unchanged.
const (
	RejectNoActiveDeck = "no_active_deck"
	RejectCopyLimit    = "copy_limit"
	RejectExtraFull    = "extra_full"
	RejectMainFull     = "main_full"
)

// AddResult is the outcome of an AddCardToActive call.
type AddResult struct {
	Added bool `json:"added"`
	// Reason is one of the Reject* constants when Added is false.
	Reason string `json:"reason,omitempty"`
	// Zone the card landed in when Added is true.
	Zone models.DeckZone `json:"zone,omitempty"`
	// CardName echoes the added card's name for user feedback.
	CardName string `json:"cardName,omitempty"`
}

// DeckEngine owns the deck collection and the active-deck pointer, enforces
// construction limits and persists the whole collection on every mutation.
// The collection is an ordered slice: "first remaining deck" semantics on
// delete depend on collection order.
type DeckEngine struct {
	mu       sync.Mutex
	store    DeckStorage
	decks    []models.Deck
	activeID string
}

// DefaultDeckName is the name of the deck bootstrapped on first use.
const DefaultDeckName = "My Deck 1"

// NewDeckEngine loads persisted state from the store, bootstrapping a single
// empty default deck when nothing usable is persisted.
func NewDeckEngine(store DeckStorage) (*DeckEngine, error) {
	decks, activeID, err := store.Load()
	if err != nil {
		return nil, err
	}

	e := &DeckEngine{store: store, decks: decks, activeID: activeID}

	if len(e.decks) == 0 {
		deck := models.NewDeck(DefaultDeckName)
		e.decks = []models.Deck{deck}
		e.activeID = deck.ID
		if err := e.persist(); err != nil {
			return nil, err
		}
		infoLog("Bootstrapped deck collection with default deck %s", deck.ID)
	} else if e.activeID == "" {
		e.activeID = e.decks[0].ID
	}

	e.refreshMetrics()
	return e, nil
}

// Decks returns a snapshot of the collection in order.
func (e *DeckEngine) Decks() []models.Deck {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.Deck, len(e.decks))
	for i := range e.decks {
		out[i] = e.decks[i].Clone()
	}
	return out
}

// ActiveDeck returns a copy of the active deck, or nil when the active
// pointer resolves to no deck.
func (e *DeckEngine) ActiveDeck() *models.Deck {
	e.mu.Lock()
	defer e.mu.Unlock()
	deck := e.activeLocked()
	if deck == nil {
		return nil
	}
	out := deck.Clone()
	return &out
}

// ActiveDeckID returns the current active pointer, which may name a deck
// that no longer exists.
func (e *DeckEngine) ActiveDeckID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.activeID
}

// DeckByID returns a copy of the deck with the given id.
func (e *DeckEngine) DeckByID(id string) (models.Deck, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.decks {
		if e.decks[i].ID == id {
			return e.decks[i].Clone(), true
		}
	}
	return models.Deck{}, false
}

// CreateDeck allocates a new empty deck, makes it active and persists.
func (e *DeckEngine) CreateDeck(name string) (models.Deck, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	deck := models.NewDeck(name)
	e.decks = append(e.decks, deck)
	e.activeID = deck.ID
	if err := e.persist(); err != nil {
		return models.Deck{}, err
	}

	e.refreshMetrics()
	infoLog("Created deck %q (%s)", name, deck.ID)
	return deck, nil
}

// SetActiveDeck switches the active pointer. The id is not validated: an
// unknown id makes active-deck resolution yield nil and callers must handle
// that.
func (e *DeckEngine) SetActiveDeck(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.activeID = id
	if err := e.store.SaveActiveID(id); err != nil {
		return err
	}
	e.refreshMetrics()
	return nil
}

// RenameActiveDeck renames the active deck and refreshes its modified
// timestamp. No-op when no deck is active.
func (e *DeckEngine) RenameActiveDeck(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.updateActiveLocked(func(d *models.Deck) {
		d.Name = name
	})
}

// DeleteDeck removes the deck with the given id. When the active deck is
// deleted, the first remaining deck in collection order becomes active, or
// none if the collection is empty. Persists either way.
func (e *DeckEngine) DeleteDeck(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := e.decks[:0]
	removedName := ""
	found := false
	for i := range e.decks {
		if e.decks[i].ID == id {
			removedName = e.decks[i].Name
			found = true
			continue
		}
		kept = append(kept, e.decks[i])
	}
	e.decks = kept

	if e.activeID == id {
		if len(e.decks) > 0 {
			e.activeID = e.decks[0].ID
		} else {
			e.activeID = ""
		}
	}

	if err := e.persist(); err != nil {
		return err
	}

	e.refreshMetrics()
	if found {
		infoLog("Deleted deck %q (%s)", removedName, id)
	}
	return nil
}

// AddCardToActive inserts a card into the active deck, enforcing the
// construction rules in order: active deck present, global 3-copy cap, then
// the zone capacity for the zone the card classifies into. The copy cap is
// checked before capacity so a player holding 3 copies is told "limit
// reached" even when the target zone has room.
func (e *DeckEngine) AddCardToActive(card models.Card) (AddResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	deck := e.activeLocked()
	if deck == nil {
		metrics.CardAddRejectedTotal.WithLabelValues(RejectNoActiveDeck).Inc()
		return AddResult{Reason: RejectNoActiveDeck}, nil
	}

	if deck.CountCopies(card.ID) >= models.MaxCopies {
		metrics.CardAddRejectedTotal.WithLabelValues(RejectCopyLimit).Inc()
		return AddResult{Reason: RejectCopyLimit}, nil
	}

	var zone models.DeckZone
	if card.IsExtraDeckCard() {
		if len(deck.Extra) >= models.MaxExtraSize {
			metrics.CardAddRejectedTotal.WithLabelValues(RejectExtraFull).Inc()
			return AddResult{Reason: RejectExtraFull}, nil
		}
		zone = models.ZoneExtra
	} else {
		if len(deck.Main) >= models.MaxMainDeckSize {
			metrics.CardAddRejectedTotal.WithLabelValues(RejectMainFull).Inc()
			return AddResult{Reason: RejectMainFull}, nil
		}
		zone = models.ZoneMain
	}

	err := e.updateActiveLocked(func(d *models.Deck) {
		if zone == models.ZoneExtra {
			d.Extra = append(d.Extra, card)
		} else {
			d.Main = append(d.Main, card)
		}
	})
	if err != nil {
		return AddResult{}, err
	}

	metrics.CardAddsTotal.Inc()
	return AddResult{Added: true, Zone: zone, CardName: card.Name}, nil
}

// RemoveCardFromActive removes the first occurrence of the card id from the
// named zone of the active deck. Only one copy is removed per call; a no-op
// when the card is absent, the zone is unknown or no deck is active.
func (e *DeckEngine) RemoveCardFromActive(cardID int, zone models.DeckZone) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	deck := e.activeLocked()
	if deck == nil || !models.ValidZone(zone) {
		return nil
	}

	cards := deck.Zone(zone)
	index := -1
	for i, c := range cards {
		if c.ID == cardID {
			index = i
			break
		}
	}
	if index == -1 {
		return nil
	}

	return e.updateActiveLocked(func(d *models.Deck) {
		switch zone {
		case models.ZoneMain:
			d.Main = append(d.Main[:index], d.Main[index+1:]...)
		case models.ZoneExtra:
			d.Extra = append(d.Extra[:index], d.Extra[index+1:]...)
		case models.ZoneSide:
			d.Side = append(d.Side[:index], d.Side[index+1:]...)
		}
	})
}

// ReplaceActiveZones overwrites the main and extra zones of the active deck,
// used when committing an AI-resolved deck wholesale. The replacement lists
// are clamped to the construction rules: copies beyond the 3-copy cap and
// cards beyond the zone caps are skipped, and each card is re-classified into
// the zone its type dictates regardless of the zone it arrived in. Returns
// the names of skipped cards.
func (e *DeckEngine) ReplaceActiveZones(main, extra []models.Card) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	deck := e.activeLocked()
	if deck == nil {
		return nil, nil
	}

	newMain := []models.Card{}
	newExtra := []models.Card{}
	var skipped []string
	copies := make(map[int]int)
	for _, c := range deck.Side {
		copies[c.ID]++
	}

	for _, card := range append(append([]models.Card{}, main...), extra...) {
		if copies[card.ID] >= models.MaxCopies {
			skipped = append(skipped, card.Name)
			continue
		}
		if card.IsExtraDeckCard() {
			if len(newExtra) >= models.MaxExtraSize {
				skipped = append(skipped, card.Name)
				continue
			}
			newExtra = append(newExtra, card)
		} else {
			if len(newMain) >= models.MaxMainDeckSize {
				skipped = append(skipped, card.Name)
				continue
			}
			newMain = append(newMain, card)
		}
		copies[card.ID]++
	}

	err := e.updateActiveLocked(func(d *models.Deck) {
		d.Main = newMain
		d.Extra = newExtra
	})
	if err != nil {
		return nil, err
	}
	return skipped, nil
}

// ImportDeck creates a new deck from pre-resolved card lists, applying the
// same construction rules as interactive building: cards are re-classified
// by type into main or extra, the 3-copy cap spans all zones and the zone
// caps apply in list order. The new deck becomes active. Returns the created
// deck and the names of cards skipped by a rule.
func (e *DeckEngine) ImportDeck(name string, main, extra, side []models.Card) (models.Deck, []string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	deck := models.NewDeck(name)
	var skipped []string
	copies := make(map[int]int)

	place := func(card models.Card, wantSide bool) {
		if copies[card.ID] >= models.MaxCopies {
			skipped = append(skipped, card.Name)
			return
		}
		switch {
		case wantSide:
			deck.Side = append(deck.Side, card)
		case card.IsExtraDeckCard():
			if len(deck.Extra) >= models.MaxExtraSize {
				skipped = append(skipped, card.Name)
				return
			}
			deck.Extra = append(deck.Extra, card)
		default:
			if len(deck.Main) >= models.MaxMainDeckSize {
				skipped = append(skipped, card.Name)
				return
			}
			deck.Main = append(deck.Main, card)
		}
		copies[card.ID]++
	}

	for _, c := range main {
		place(c, false)
	}
	for _, c := range extra {
		place(c, false)
	}
	for _, c := range side {
		place(c, true)
	}

	e.decks = append(e.decks, deck)
	e.activeID = deck.ID
	if err := e.persist(); err != nil {
		return models.Deck{}, nil, err
	}

	e.refreshMetrics()
	infoLog("Imported deck %q (%s): main=%d extra=%d side=%d skipped=%d",
		name, deck.ID, len(deck.Main), len(deck.Extra), len(deck.Side), len(skipped))
	return deck, skipped, nil
}

// activeLocked resolves the active pointer. Caller holds e.mu.
func (e *DeckEngine) activeLocked() *models.Deck {
	for i := range e.decks {
		if e.decks[i].ID == e.activeID {
			return &e.decks[i]
		}
	}
	return nil
}

// updateActiveLocked applies a mutation to the active deck, refreshes its
// modified timestamp and persists the collection. Caller holds e.mu.
func (e *DeckEngine) updateActiveLocked(mutate func(*models.Deck)) error {
	deck := e.activeLocked()
	if deck == nil {
		return nil
	}

	mutate(deck)
	deck.UpdatedAt = time.Now().UnixMilli()

	if err := e.store.SaveDecks(e.decks); err != nil {
		return err
	}
	e.refreshMetrics()
	return nil
}

// persist rewrites both storage entries. Caller holds e.mu.
func (e *DeckEngine) persist() error {
	if err := e.store.SaveDecks(e.decks); err != nil {
		return err
	}
	return e.store.SaveActiveID(e.activeID)
}

func (e *DeckEngine) refreshMetrics() {
	metrics.UpdateDeckMetrics(e.decks, e.activeLocked())
}
