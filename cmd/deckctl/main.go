package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/WaguimDevOps/cards-api-bolt/internal/database"
	"github.com/WaguimDevOps/cards-api-bolt/internal/models"
	"github.com/WaguimDevOps/cards-api-bolt/internal/services"
)

// deckctl inspects and exports decks straight from the local database,
// without going through the HTTP server.
//
// Usage:
//
//	deckctl list
//	deckctl export <deck-id> [output-file]
//
// The database path defaults to deckbuilder.db and can be overridden with
// DECKBUILDER_DB.

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	dbPath := os.Getenv("DECKBUILDER_DB")
	if dbPath == "" {
		dbPath = "deckbuilder.db"
	}

	db, err := database.Initialize(dbPath)
	if err != nil {
		color.Red("Failed to open database %s: %v", dbPath, err)
		os.Exit(1)
	}

	engine, err := services.NewDeckEngine(services.NewDeckStore(db))
	if err != nil {
		color.Red("Failed to load decks: %v", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "list":
		listDecks(engine)
	case "export":
		if len(os.Args) < 3 {
			usage()
			os.Exit(2)
		}
		out := ""
		if len(os.Args) > 3 {
			out = os.Args[3]
		}
		exportDeck(engine, os.Args[2], out)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: deckctl list | deckctl export <deck-id> [output-file]")
}

func listDecks(engine *services.DeckEngine) {
	activeID := engine.ActiveDeckID()
	bold := color.New(color.Bold)

	for _, deck := range engine.Decks() {
		marker := "  "
		if deck.ID == activeID {
			marker = color.GreenString("* ")
		}
		bold.Printf("%s%s", marker, deck.Name)
		fmt.Printf("  (%s)\n", deck.ID)
		fmt.Printf("    main=%d extra=%d side=%d  updated %s\n",
			len(deck.Main), len(deck.Extra), len(deck.Side),
			time.UnixMilli(deck.UpdatedAt).Format("2006-01-02 15:04"))
	}
}

func exportDeck(engine *services.DeckEngine, id, out string) {
	deck, ok := engine.DeckByID(id)
	if !ok {
		deck, ok = deckByName(engine, id)
	}
	if !ok {
		color.Red("No deck with id or name %q", id)
		os.Exit(1)
	}

	if out == "" {
		out = services.YDKFilename(&deck)
	}

	content := services.SerializeYDK(&deck)
	if err := os.WriteFile(out, []byte(content), 0o644); err != nil {
		color.Red("Write failed: %v", err)
		os.Exit(1)
	}

	color.Green("Exported %q (%d cards) to %s", deck.Name, deck.Size(), out)
}

func deckByName(engine *services.DeckEngine, name string) (models.Deck, bool) {
	for _, deck := range engine.Decks() {
		if deck.Name == name {
			return deck, true
		}
	}
	return models.Deck{}, false
}
