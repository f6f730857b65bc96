package services

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/WaguimDevOps/cards-api-bolt/internal/models"
)

// Storage keys for the two durable deck-state entries.
const (
	decksStorageKey  = "ygo_decks_v2"
	activeStorageKey = "active_deck_id"
)

// DeckStorage is the persistence boundary of the deck engine. The collection
// blob and the active pointer are stored independently so the active deck
// survives reloads regardless of the collection payload.
type DeckStorage interface {
	Load() (decks []models.Deck, activeID string, err error)
	SaveDecks(decks []models.Deck) error
	SaveActiveID(id string) error
}

// DeckStore persists deck state as two key-value rows in SQLite.
type DeckStore struct {
	db *gorm.DB
}

// NewDeckStore creates a SQLite-backed deck store.
func NewDeckStore(db *gorm.DB) *DeckStore {
	return &DeckStore{db: db}
}

// Load reads the persisted collection and active pointer. A missing row means
// first use; corrupt collection JSON is logged and treated as absence of data
// so the engine can bootstrap fresh instead of refusing to start.
func (s *DeckStore) Load() ([]models.Deck, string, error) {
	var decks []models.Deck

	blob, ok, err := s.getEntry(decksStorageKey)
	if err != nil {
		return nil, "", err
	}
	if ok {
		if err := json.Unmarshal([]byte(blob), &decks); err != nil {
			infoLog("Corrupt deck collection in storage, bootstrapping fresh: %v", err)
			decks = nil
		}
	}

	activeID, _, err := s.getEntry(activeStorageKey)
	if err != nil {
		return nil, "", err
	}

	return decks, activeID, nil
}

// SaveDecks rewrites the whole collection blob.
func (s *DeckStore) SaveDecks(decks []models.Deck) error {
	blob, err := json.Marshal(decks)
	if err != nil {
		return err
	}
	return s.putEntry(decksStorageKey, string(blob))
}

// SaveActiveID rewrites the active-deck pointer. An empty id clears it.
func (s *DeckStore) SaveActiveID(id string) error {
	if id == "" {
		return s.db.Delete(&models.StorageEntry{}, "key = ?", activeStorageKey).Error
	}
	return s.putEntry(activeStorageKey, id)
}

func (s *DeckStore) getEntry(key string) (string, bool, error) {
	var entry models.StorageEntry
	err := s.db.Where("key = ?", key).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return entry.Value, true, nil
}

func (s *DeckStore) putEntry(key, value string) error {
	entry := models.StorageEntry{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
}
