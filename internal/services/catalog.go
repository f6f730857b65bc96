package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/WaguimDevOps/cards-api-bolt/internal/metrics"
	"github.com/WaguimDevOps/cards-api-bolt/internal/models"
)

const (
	// DefaultCatalogURL is the YGOPRODeck card info endpoint.
	DefaultCatalogURL = "https://db.ygoprodeck.com/api/v7/cardinfo.php"

	catalogTimeout = 10 * time.Second

	// defaultPageSize and defaultOffset are applied when the caller does not
	// paginate explicitly.
	defaultPageSize = 50
)

var (
	// ErrCatalogUnavailable signals a non-2xx catalog response other than the
	// tolerated 400 case. Retry is manual (re-submit the search).
	ErrCatalogUnavailable = errors.New("card catalog unavailable")

	// ErrCardNotFound signals that a catalog id resolved to no card.
	ErrCardNotFound = errors.New("card not found")
)

// SearchFilters narrows a catalog search. Zero-valued fields are omitted
// from the outbound request rather than sent empty.
type SearchFilters struct {
	Name      string // fname: substring match on card name
	Num       int    // page size
	Offset    int    // pagination offset
	Type      string // card type filter, e.g. "Effect Monster"
	Attribute string // elemental attribute filter
	Level     int    // level/rank filter
	Sort      string // "new" or "old"
}

// CatalogService queries the external card database. Outbound requests pass
// through a rate limiter so burst resolution loops stay polite.
type CatalogService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// catalogResponse is the wire shape of the cardinfo endpoint.
type catalogResponse struct {
	Data []models.Card `json:"data"`
	Meta *struct {
		TotalRows int `json:"total_rows"`
	} `json:"meta"`
}

// NewCatalogService creates a catalog client. requestsPerSecond bounds the
// outbound request rate; zero or negative disables limiting.
func NewCatalogService(baseURL string, requestsPerSecond float64) *CatalogService {
	if baseURL == "" {
		baseURL = DefaultCatalogURL
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}

	return &CatalogService{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: catalogTimeout},
		limiter:    limiter,
	}
}

// Search runs a filtered, paginated card search.
//
// A 400 response deliberately degrades to an empty result instead of an error
// so bad filter combinations read as "no matches". Total is best-effort: when
// the API omits meta, it falls back to the page length.
func (s *CatalogService) Search(ctx context.Context, filters SearchFilters) (*models.CardSearchResult, error) {
	params := url.Values{}
	if filters.Name != "" {
		params.Set("fname", filters.Name)
	}
	if filters.Type != "" {
		params.Set("type", filters.Type)
	}
	if filters.Attribute != "" {
		params.Set("attribute", filters.Attribute)
	}
	if filters.Level > 0 {
		params.Set("level", strconv.Itoa(filters.Level))
	}
	if filters.Sort != "" {
		params.Set("sort", filters.Sort)
	}
	num := filters.Num
	if num <= 0 {
		num = defaultPageSize
	}
	params.Set("num", strconv.Itoa(num))
	params.Set("offset", strconv.Itoa(filters.Offset))

	var payload catalogResponse
	status, err := s.get(ctx, params, &payload)
	if err != nil {
		return nil, err
	}

	if status == http.StatusBadRequest {
		// The API answers 400 for filter combinations it cannot satisfy.
		// Treated as "no matches" for compatibility with existing callers.
		debugLog("catalog returned 400 for query %q, degrading to empty result", params.Encode())
		return &models.CardSearchResult{Cards: []models.Card{}, Total: 0}, nil
	}
	if status != http.StatusOK {
		metrics.CatalogErrorsTotal.WithLabelValues("status").Inc()
		return nil, fmt.Errorf("%w: status %d", ErrCatalogUnavailable, status)
	}

	total := len(payload.Data)
	if payload.Meta != nil && payload.Meta.TotalRows > 0 {
		total = payload.Meta.TotalRows
	}

	return &models.CardSearchResult{Cards: payload.Data, Total: total}, nil
}

// GetByID resolves a single catalog identifier.
func (s *CatalogService) GetByID(ctx context.Context, id int) (*models.Card, error) {
	params := url.Values{}
	params.Set("id", strconv.Itoa(id))

	var payload catalogResponse
	status, err := s.get(ctx, params, &payload)
	if err != nil {
		return nil, err
	}

	// The API answers 400 for unknown ids.
	if status == http.StatusBadRequest || (status == http.StatusOK && len(payload.Data) == 0) {
		return nil, ErrCardNotFound
	}
	if status != http.StatusOK {
		metrics.CatalogErrorsTotal.WithLabelValues("status").Inc()
		return nil, fmt.Errorf("%w: status %d", ErrCatalogUnavailable, status)
	}

	card := payload.Data[0]
	return &card, nil
}

// get performs one rate-limited catalog request, decoding a 200 body into
// out. The status code is returned for the caller's policy decision.
func (s *CatalogService) get(ctx context.Context, params url.Values, out *catalogResponse) (int, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return 0, err
	}

	metrics.CatalogRequestsTotal.WithLabelValues("cardinfo").Inc()
	start := time.Now()

	resp, err := s.httpClient.Do(req)
	if err != nil {
		metrics.CatalogErrorsTotal.WithLabelValues("network").Inc()
		return 0, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	metrics.CatalogLatency.Observe(time.Since(start).Seconds())

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.CatalogErrorsTotal.WithLabelValues("read").Inc()
		return 0, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		metrics.CatalogErrorsTotal.WithLabelValues("parse").Inc()
		return 0, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	return resp.StatusCode, nil
}
