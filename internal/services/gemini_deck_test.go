package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/WaguimDevOps/cards-api-bolt/internal/models"
)

func TestParseSuggestionText(t *testing.T) {
	valid := `{"mainDeck":["Dark Magician"],"extraDeck":["Dark Paladin"],"strategy":"Beatdown.","keyCards":["Dark Magician"]}`

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"plain JSON", valid, false},
		{"json fenced", "```json\n" + valid + "\n```", false},
		{"bare fenced", "```\n" + valid + "\n```", false},
		{"fenced with surrounding whitespace", "\n\n```json\n" + valid + "\n```\n\n", false},
		{"not JSON", "Here is your deck: Dark Magician x3", true},
		{"missing main deck", `{"extraDeck":["X"],"strategy":"s"}`, true},
		{"empty main deck", `{"mainDeck":[],"strategy":"s"}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			suggestion, err := parseSuggestionText(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrMalformedSuggestion) {
					t.Fatalf("err = %v, want ErrMalformedSuggestion", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseSuggestionText: %v", err)
			}
			if len(suggestion.MainDeck) != 1 || suggestion.MainDeck[0] != "Dark Magician" {
				t.Errorf("mainDeck = %v", suggestion.MainDeck)
			}
			if suggestion.Strategy == "" {
				t.Errorf("strategy not carried through")
			}
		})
	}
}

func TestBuildPromptDeckSizeTiers(t *testing.T) {
	competitive := buildPrompt(models.DeckGenerationRequest{Prompt: "x", DeckSize: models.DeckSizeCompetitive})
	if !strings.Contains(competitive, "40-45") {
		t.Errorf("competitive tier should expand to 40-45")
	}

	casual := buildPrompt(models.DeckGenerationRequest{Prompt: "x", DeckSize: models.DeckSizeCasual})
	if !strings.Contains(casual, "45-60") {
		t.Errorf("casual tier should expand to 45-60")
	}

	// Unset tier defaults to the casual range.
	unset := buildPrompt(models.DeckGenerationRequest{Prompt: "x"})
	if !strings.Contains(unset, "45-60") {
		t.Errorf("unset tier should default to 45-60")
	}
}

func TestBuildPromptStableTemplate(t *testing.T) {
	// Optional fields render as empty fragments: the template line count
	// stays the same whether or not they are set.
	minimal := buildPrompt(models.DeckGenerationRequest{Prompt: "dragons"})
	full := buildPrompt(models.DeckGenerationRequest{
		Prompt:       "dragons",
		Archetype:    "Blue-Eyes",
		Playstyle:    "aggro",
		Complexity:   "beginner",
		Format:       "OCG",
		IncludeCards: []string{"Blue-Eyes White Dragon"},
		ExcludeCards: []string{"Pot of Greed"},
	})

	if strings.Count(minimal, "\n") != strings.Count(full, "\n") {
		t.Errorf("template line count changed with optional fields: %d vs %d",
			strings.Count(minimal, "\n"), strings.Count(full, "\n"))
	}
	if !strings.Contains(full, "Focus archetype: Blue-Eyes") {
		t.Errorf("archetype fragment missing")
	}
	if !strings.Contains(full, "MUST include these cards: Blue-Eyes White Dragon") {
		t.Errorf("include fragment missing")
	}
	if !strings.Contains(full, "Do NOT include these cards: Pot of Greed") {
		t.Errorf("exclude fragment missing")
	}
	if !strings.Contains(minimal, "Format: TCG") {
		t.Errorf("format should default to TCG")
	}
	if !strings.Contains(minimal, `"dragons"`) {
		t.Errorf("user prompt missing from instruction")
	}

	// "any" playstyle renders like unset.
	anyStyle := buildPrompt(models.DeckGenerationRequest{Prompt: "x", Playstyle: "any"})
	if strings.Contains(anyStyle, "Playstyle:") {
		t.Errorf("playstyle 'any' should render empty")
	}
}

func TestClassifyGeminiError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		apiErr  *geminiAPIError
		body    string
		wantErr error
	}{
		{"invalid key marker", http.StatusBadRequest, &geminiAPIError{Message: "API key not valid", Status: "API_KEY_INVALID"}, "", ErrInvalidCredential},
		{"unauthorized status", http.StatusUnauthorized, nil, "nope", ErrInvalidCredential},
		{"rate limit marker", http.StatusBadRequest, &geminiAPIError{Message: "RATE_LIMIT exceeded"}, "", ErrRateLimited},
		{"resource exhausted", http.StatusTooManyRequests, &geminiAPIError{Status: "RESOURCE_EXHAUSTED"}, "", ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classifyGeminiError(tt.status, tt.apiErr, tt.body)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// Unknown errors propagate unchanged, not as a sentinel.
	err := classifyGeminiError(http.StatusInternalServerError, nil, "boom")
	for _, sentinel := range []error{ErrInvalidCredential, ErrRateLimited, ErrGenerationUnavailable, ErrMalformedSuggestion} {
		if errors.Is(err, sentinel) {
			t.Errorf("generic error wrongly classified as %v", sentinel)
		}
	}
}

// stubTransport answers every request with a canned status and body.
type stubTransport struct {
	status int
	body   string
}

func (s *stubTransport) RoundTrip(*http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: s.status,
		Body:       io.NopCloser(strings.NewReader(s.body)),
		Header:     make(http.Header),
	}, nil
}

func TestGenerateSuggestionClassifiesNonJSONErrorBodies(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"html rate limit page", http.StatusTooManyRequests, "<html>Too Many Requests</html>", ErrRateLimited},
		{"html auth page", http.StatusUnauthorized, "<html>Unauthorized</html>", ErrInvalidCredential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &GeminiDeckService{
				apiKey:     "test-key",
				model:      defaultGeminiModel,
				httpClient: &http.Client{Transport: &stubTransport{status: tt.status, body: tt.body}},
				enabled:    true,
			}

			_, err := svc.GenerateSuggestion(context.Background(), models.DeckGenerationRequest{Prompt: "x"})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerateSuggestionRequiresCredential(t *testing.T) {
	svc := &GeminiDeckService{enabled: false}

	_, err := svc.GenerateSuggestion(context.Background(), models.DeckGenerationRequest{Prompt: "x"})
	if !errors.Is(err, ErrGenerationUnavailable) {
		t.Errorf("err = %v, want ErrGenerationUnavailable", err)
	}
}
