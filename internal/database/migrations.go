package database

import (
	"log"

	"gorm.io/gorm"
)

// RunMigrations runs custom data migrations after schema changes
func RunMigrations(db *gorm.DB) error {
	if err := migrateLegacyDeckKey(db); err != nil {
		return err
	}
	return nil
}

// migrateLegacyDeckKey renames the pre-v2 deck collection key to the current
// one. Safe to run multiple times: it only fires when the old key exists and
// the new one does not.
func migrateLegacyDeckKey(db *gorm.DB) error {
	var oldCount, newCount int64
	db.Table("storage_entries").Where("key = ?", "ygo_decks").Count(&oldCount)
	db.Table("storage_entries").Where("key = ?", "ygo_decks_v2").Count(&newCount)

	if oldCount == 0 || newCount > 0 {
		return nil
	}

	log.Println("Migrating deck storage: ygo_decks -> ygo_decks_v2")
	result := db.Exec(`UPDATE storage_entries SET key = 'ygo_decks_v2' WHERE key = 'ygo_decks'`)
	if result.Error != nil {
		log.Printf("Warning: failed to migrate legacy deck key: %v", result.Error)
		return nil
	}
	log.Printf("Migrated %d storage rows", result.RowsAffected)
	return nil
}
