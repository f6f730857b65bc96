package services

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/WaguimDevOps/cards-api-bolt/internal/models"
)

// ydkHeader is the comment line opening every exported deck list.
const ydkHeader = "#created by Yu-Gi-Oh! Deck Builder"

// SerializeYDK renders a deck in the .ydk interchange format: a comment
// header, then "#main", "#extra" and "!side" sections with one catalog id
// per line. Zone markers are emitted even for empty zones. Output is
// byte-stable: ids appear in insertion order, duplicates repeated, no
// sorting or dedup.
func SerializeYDK(deck *models.Deck) string {
	var b strings.Builder

	b.WriteString(ydkHeader + "\n")

	b.WriteString("#main\n")
	for _, card := range deck.Main {
		fmt.Fprintf(&b, "%d\n", card.ID)
	}

	b.WriteString("#extra\n")
	for _, card := range deck.Extra {
		fmt.Fprintf(&b, "%d\n", card.ID)
	}

	b.WriteString("!side\n")
	for _, card := range deck.Side {
		fmt.Fprintf(&b, "%d\n", card.ID)
	}

	return b.String()
}

// YDKFilename derives the download filename for a deck: the deck name with
// whitespace runs replaced by underscores, plus the .ydk extension.
func YDKFilename(deck *models.Deck) string {
	return strings.Join(strings.Fields(deck.Name), "_") + ".ydk"
}

// YDKList holds the raw catalog ids of a parsed .ydk document, per zone,
// in file order.
type YDKList struct {
	Main  []int
	Extra []int
	Side  []int
}

// ParseYDK reads a .ydk document back into per-zone id lists. Comment lines
// other than the zone markers are ignored; id lines before any marker are
// ignored as well. Malformed id lines fail the parse.
func ParseYDK(text string) (*YDKList, error) {
	list := &YDKList{}
	var current *[]int

	scanner := bufio.NewScanner(strings.NewReader(text))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "#main":
			current = &list.Main
			continue
		case "#extra":
			current = &list.Extra
			continue
		case "!side":
			current = &list.Side
			continue
		}

		if strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		if current == nil {
			continue
		}

		id, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid card id %q", lineNo, line)
		}
		*current = append(*current, id)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return list, nil
}
