package services

import (
	"context"
	"strings"

	"github.com/WaguimDevOps/cards-api-bolt/internal/models"
)

// CardSearcher is the slice of the catalog client the resolver needs.
type CardSearcher interface {
	Search(ctx context.Context, filters SearchFilters) (*models.CardSearchResult, error)
}

// SuggestionGenerator produces a structured deck suggestion from a request.
type SuggestionGenerator interface {
	GenerateSuggestion(ctx context.Context, req models.DeckGenerationRequest) (*models.AIDeckSuggestion, error)
}

// DeckResolver runs the full generation pipeline: model suggestion, then
// best-effort resolution of every suggested name against the card catalog.
type DeckResolver struct {
	generator SuggestionGenerator
	catalog   CardSearcher
}

// NewDeckResolver wires the generator and catalog client together.
func NewDeckResolver(generator SuggestionGenerator, catalog CardSearcher) *DeckResolver {
	return &DeckResolver{generator: generator, catalog: catalog}
}

// GenerateDeck produces a resolved deck proposal. Resolution is sequential
// and exhaustive: every suggested name is looked up exactly once, and a
// failed lookup records the name as not found instead of aborting the batch.
// Extra-deck eligibility of the model's zone choice is not re-validated here;
// committing into a real deck re-applies all construction rules.
func (r *DeckResolver) GenerateDeck(ctx context.Context, req models.DeckGenerationRequest) (*models.DeckGenerationResponse, error) {
	suggestion, err := r.generator.GenerateSuggestion(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &models.DeckGenerationResponse{
		Suggestion: *suggestion,
		Cards: models.ResolvedDeckCards{
			Main:  []models.Card{},
			Extra: []models.Card{},
		},
		NotFound: []string{},
	}

	for _, name := range suggestion.MainDeck {
		if card := r.findCard(ctx, name); card != nil {
			resp.Cards.Main = append(resp.Cards.Main, *card)
		} else {
			resp.NotFound = append(resp.NotFound, name)
		}
	}

	for _, name := range suggestion.ExtraDeck {
		if card := r.findCard(ctx, name); card != nil {
			resp.Cards.Extra = append(resp.Cards.Extra, *card)
		} else {
			resp.NotFound = append(resp.NotFound, name)
		}
	}

	infoLog("Resolved AI suggestion: main=%d/%d extra=%d/%d notFound=%d",
		len(resp.Cards.Main), len(suggestion.MainDeck),
		len(resp.Cards.Extra), len(suggestion.ExtraDeck),
		len(resp.NotFound))

	return resp, nil
}

// findCard resolves one suggested name: a case-insensitive exact name match
// is preferred, otherwise the first search hit counts as a fuzzy match.
// Lookup errors resolve to nil so one bad name never sinks the batch.
func (r *DeckResolver) findCard(ctx context.Context, name string) *models.Card {
	result, err := r.catalog.Search(ctx, SearchFilters{Name: name})
	if err != nil {
		debugLog("Lookup failed for %q: %v", name, err)
		return nil
	}
	if len(result.Cards) == 0 {
		debugLog("No catalog match for %q", name)
		return nil
	}

	for i := range result.Cards {
		if strings.EqualFold(result.Cards[i].Name, name) {
			return &result.Cards[i]
		}
	}
	return &result.Cards[0]
}
