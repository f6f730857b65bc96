package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/WaguimDevOps/cards-api-bolt/internal/metrics"
	"github.com/WaguimDevOps/cards-api-bolt/internal/models"
)

const (
	defaultGeminiModel = "gemini-2.5-flash"
	geminiAPIURL       = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"
	geminiTimeout      = 60 * time.Second
)

var (
	// ErrGenerationUnavailable signals that no API credential is configured.
	// Checked before any network call.
	ErrGenerationUnavailable = errors.New("deck generation unavailable: no API key configured")

	// ErrInvalidCredential signals that the model rejected the API key.
	ErrInvalidCredential = errors.New("invalid API key")

	// ErrRateLimited signals that the model's rate limit was hit.
	ErrRateLimited = errors.New("rate limit reached, wait and try again")

	// ErrMalformedSuggestion signals unparseable or incomplete model output.
	// Recoverable: the caller should present it as "try again".
	ErrMalformedSuggestion = errors.New("model returned a malformed deck suggestion")
)

// GeminiDeckService turns a free-text deck description into a structured
// AIDeckSuggestion via the Gemini API.
type GeminiDeckService struct {
	apiKey     string
	model      string
	httpClient *http.Client
	enabled    bool
}

// geminiRequest is the request body for the Gemini API
type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// geminiAPIResponse is the response from the Gemini API
type geminiAPIResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *geminiAPIError `json:"error,omitempty"`
}

type geminiAPIError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

const deckPromptTemplate = `You are a MASTER expert in the Yu-Gi-Oh! TCG and related formats.
Build a deck based on this description: "%s"

TECHNICAL PARAMETERS:
- Format: %s
- %s
- %s
- %s
- %s

CONSTRUCTION RULES:
- Main Deck: %s cards (prioritize consistency)
- Extra Deck: 0-15 cards (only Fusion, Synchro, Xyz, Link)
- Maximum 3 copies of any card
- Strictly respect the current banlist of the chosen format
- Prioritize absolute synergy between the cards

IMPORTANT: Return ONLY a valid JSON object, no additional text:
{
  "mainDeck": ["Exact Card Name 1", "Exact Card Name 2", ...],
  "extraDeck": ["Fusion Monster 1", "Xyz Monster 1", ...],
  "strategy": "Detailed explanation of the strategy and main combos (3-4 sentences)",
  "keyCards": ["Key Card 1", "Key Card 2", "Key Card 3"]
}

REMEMBER: Use the EXACT English card names.`

// NewGeminiDeckService creates a Gemini-backed deck generator. The model and
// key-file path come from configuration; GEMINI_MODEL, GEMINI_API_KEY and
// GEMINI_API_KEY_FILE environment variables override them.
func NewGeminiDeckService(model, keyFile string) *GeminiDeckService {
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		model = v
	}
	if model == "" {
		model = defaultGeminiModel
	}
	if v := os.Getenv("GEMINI_API_KEY_FILE"); v != "" {
		keyFile = v
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" && keyFile != "" {
		if data, err := os.ReadFile(keyFile); err == nil {
			apiKey = strings.TrimSpace(string(data))
		}
	}

	svc := &GeminiDeckService{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: geminiTimeout},
		enabled:    apiKey != "",
	}

	if svc.enabled {
		keyPreview := apiKey
		if len(keyPreview) > 10 {
			keyPreview = keyPreview[:10] + "..."
		}
		infoLog("Gemini deck generation: enabled (model=%s, key=%s)", model, keyPreview)
	} else {
		infoLog("Gemini deck generation: disabled (no GEMINI_API_KEY)")
	}

	return svc
}

// IsEnabled returns whether deck generation is available.
func (s *GeminiDeckService) IsEnabled() bool {
	return s.enabled
}

// buildPrompt renders the instruction template for a generation request.
// Unset optional fields become empty fragments so the template stays stable.
func buildPrompt(req models.DeckGenerationRequest) string {
	deckSize := "45-60"
	if req.DeckSize == models.DeckSizeCompetitive {
		deckSize = "40-45"
	}

	format := req.Format
	if format == "" {
		format = "TCG"
	}

	playstyle := ""
	if req.Playstyle != "" && req.Playstyle != "any" {
		playstyle = "Playstyle: " + req.Playstyle
	}
	complexity := ""
	if req.Complexity != "" {
		complexity = "Complexity level: " + req.Complexity
	}
	archetype := ""
	if req.Archetype != "" {
		archetype = "Focus archetype: " + req.Archetype
	}
	include := ""
	if len(req.IncludeCards) > 0 {
		include = "MUST include these cards: " + strings.Join(req.IncludeCards, ", ")
	}
	exclude := ""
	if len(req.ExcludeCards) > 0 {
		exclude = "Do NOT include these cards: " + strings.Join(req.ExcludeCards, ", ")
	}

	return fmt.Sprintf(deckPromptTemplate,
		req.Prompt, format, archetype, playstyle, complexity,
		strings.TrimSpace(include+" "+exclude), deckSize)
}

// GenerateSuggestion submits the request to Gemini and extracts the
// structured suggestion from its output.
func (s *GeminiDeckService) GenerateSuggestion(ctx context.Context, genReq models.DeckGenerationRequest) (*models.AIDeckSuggestion, error) {
	if !s.enabled {
		return nil, ErrGenerationUnavailable
	}

	prompt := buildPrompt(genReq)

	req := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenConfig{
			Temperature:     0.7,
			MaxOutputTokens: 4096,
		},
	}

	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf(geminiAPIURL, s.model) + "?key=" + s.apiKey
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	debugLog("Gemini request: model=%s, prompt_len=%d", s.model, len(prompt))
	startTime := time.Now()

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		metrics.GeminiErrorsTotal.WithLabelValues("network").Inc()
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	latency := time.Since(startTime)
	metrics.GeminiAPILatency.Observe(latency.Seconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.GeminiErrorsTotal.WithLabelValues("read").Inc()
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var apiResp geminiAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		// Proxies can answer an error status with a non-JSON body; classify
		// by status so credential and rate-limit failures keep their sentinels.
		if resp.StatusCode != http.StatusOK {
			metrics.GeminiErrorsTotal.WithLabelValues("api").Inc()
			debugLog("Gemini API error: status=%d body=%s", resp.StatusCode, string(body))
			return nil, classifyGeminiError(resp.StatusCode, nil, string(body))
		}
		metrics.GeminiErrorsTotal.WithLabelValues("parse").Inc()
		return nil, fmt.Errorf("failed to parse API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || apiResp.Error != nil {
		metrics.GeminiErrorsTotal.WithLabelValues("api").Inc()
		debugLog("Gemini API error: status=%d body=%s", resp.StatusCode, string(body))
		return nil, classifyGeminiError(resp.StatusCode, apiResp.Error, string(body))
	}

	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		metrics.GeminiErrorsTotal.WithLabelValues("empty").Inc()
		return nil, fmt.Errorf("%w: empty model response", ErrMalformedSuggestion)
	}

	responseText := apiResp.Candidates[0].Content.Parts[0].Text
	suggestion, err := parseSuggestionText(responseText)
	if err != nil {
		metrics.GeminiErrorsTotal.WithLabelValues("schema").Inc()
		debugLog("Suggestion parse error: %v, response: %s", err, responseText)
		return nil, err
	}

	metrics.GeminiRequestsTotal.Inc()
	infoLog("Gemini suggested deck: main=%d extra=%d key=%d (latency=%v)",
		len(suggestion.MainDeck), len(suggestion.ExtraDeck), len(suggestion.KeyCards), latency)

	return suggestion, nil
}

// classifyGeminiError maps known error markers onto the service's sentinel
// errors; anything else propagates as a plain error.
func classifyGeminiError(status int, apiErr *geminiAPIError, rawBody string) error {
	message := rawBody
	if apiErr != nil {
		message = apiErr.Message + " " + apiErr.Status
	}

	upper := strings.ToUpper(message)
	switch {
	case strings.Contains(upper, "API_KEY_INVALID") || strings.Contains(upper, "PERMISSION_DENIED") || status == http.StatusUnauthorized:
		return ErrInvalidCredential
	case strings.Contains(upper, "RATE_LIMIT") || strings.Contains(upper, "RESOURCE_EXHAUSTED") || status == http.StatusTooManyRequests:
		return ErrRateLimited
	}
	if apiErr != nil {
		return fmt.Errorf("API error %d: %s", apiErr.Code, apiErr.Message)
	}
	return fmt.Errorf("API returned status %d: %s", status, rawBody)
}

// parseSuggestionText extracts the AIDeckSuggestion from the model's raw
// text output, stripping surrounding markdown code fences. A parse failure
// or a missing main-deck list yields ErrMalformedSuggestion.
func parseSuggestionText(text string) (*models.AIDeckSuggestion, error) {
	clean := strings.ReplaceAll(text, "```json", "")
	clean = strings.ReplaceAll(clean, "```", "")
	clean = strings.TrimSpace(clean)

	var suggestion models.AIDeckSuggestion
	if err := json.Unmarshal([]byte(clean), &suggestion); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSuggestion, err)
	}

	if len(suggestion.MainDeck) == 0 {
		return nil, fmt.Errorf("%w: missing main deck list", ErrMalformedSuggestion)
	}

	return &suggestion, nil
}
