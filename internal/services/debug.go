package services

import (
	"log"
	"os"
	"strings"
)

var deckDebugEnabled = false

func init() {
	// Enable debug logging if DECKAI_DEBUG=1 or DECKAI_DEBUG=true
	if v := os.Getenv("DECKAI_DEBUG"); v != "" {
		v = strings.ToLower(v)
		deckDebugEnabled = v == "1" || v == "true" || v == "yes"
		if deckDebugEnabled {
			log.Println("[DECKAI] Debug logging: ENABLED")
		}
	}
}

// debugLog logs only when DECKAI_DEBUG is enabled.
// Use this for verbose per-request details, raw model output, lookup misses, etc.
func debugLog(format string, args ...interface{}) {
	if deckDebugEnabled {
		log.Printf("[DECKAI DEBUG] "+format, args...)
	}
}

// infoLog always logs important deck-builder events.
// Use this for generation results, catalog errors, storage bootstrap, etc.
func infoLog(format string, args ...interface{}) {
	log.Printf("[DECKAI] "+format, args...)
}
