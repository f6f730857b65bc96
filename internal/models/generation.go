package models

// AIDeckSuggestion is the structured deck proposal extracted from the
// generative model's output. Names are unresolved card names, not catalog
// entries; the suggestion is ephemeral and never persisted.
type AIDeckSuggestion struct {
	MainDeck  []string `json:"mainDeck"`
	ExtraDeck []string `json:"extraDeck"`
	Strategy  string   `json:"strategy"`
	KeyCards  []string `json:"keyCards"`
}

// DeckSize tiers map to main-deck card-count ranges in the prompt:
// competitive 40-45, casual 45-60.
const (
	DeckSizeCompetitive = "competitive"
	DeckSizeCasual      = "casual"
)

// DeckGenerationRequest configures a deck generation run. Only Prompt is
// required; unset optional fields render as empty prompt fragments so the
// instruction template stays stable.
type DeckGenerationRequest struct {
	Prompt       string   `json:"prompt"`
	DeckSize     string   `json:"deckSize,omitempty"`
	Archetype    string   `json:"archetype,omitempty"`
	Playstyle    string   `json:"playstyle,omitempty"`
	Complexity   string   `json:"complexity,omitempty"`
	Format       string   `json:"format,omitempty"`
	IncludeCards []string `json:"includeCards,omitempty"`
	ExcludeCards []string `json:"excludeCards,omitempty"`
}

// ResolvedDeckCards holds the catalog entries resolved from a suggestion,
// in suggestion order. Extra-deck eligibility of the model's zone choice is
// not re-checked here; committing into a real deck re-applies all limits.
type ResolvedDeckCards struct {
	Main  []Card `json:"main"`
	Extra []Card `json:"extra"`
}

// DeckGenerationResponse bundles the raw suggestion, the resolved cards and
// the suggested names that could not be resolved against the catalog.
type DeckGenerationResponse struct {
	Suggestion AIDeckSuggestion  `json:"suggestion"`
	Cards      ResolvedDeckCards `json:"cards"`
	NotFound   []string          `json:"notFound"`
}
