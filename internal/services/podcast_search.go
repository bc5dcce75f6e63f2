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
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/wolverine5550/lexsona-backend/internal/logger"
	"github.com/wolverine5550/lexsona-backend/internal/utils"
)

// Remote search error kinds. The tiered orchestrator treats all of them as
// "remote tier unavailable"; they stay distinguishable for logging/alerting.
var (
	ErrSearchRateLimited  = errors.New("podcast search rate limited")
	ErrSearchUnauthorized = errors.New("podcast search unauthorized")
	ErrSearchUnavailable  = errors.New("podcast search unavailable")
)

type SearchFilters struct {
	Genres   []string
	Language string
	Offset   int
}

type SearchResultItem struct {
	ID                string   `json:"id"`
	Title             string   `json:"title"`
	Publisher         string   `json:"publisher"`
	Description       string   `json:"description"`
	Genres            []string `json:"genres"`
	Language          string   `json:"language"`
	ListenScore       int      `json:"listen_score"`
	TotalEpisodes     int      `json:"total_episodes"`
	AvgAudioLengthSec int      `json:"audio_length_sec"`
	LatestPubDateMS   int64    `json:"latest_pub_date_ms"`
	EarliestPubDateMS int64    `json:"earliest_pub_date_ms"`
}

type SearchResult struct {
	Results    []SearchResultItem `json:"results"`
	Total      int                `json:"total"`
	Count      int                `json:"count"`
	NextOffset int                `json:"next_offset"`
}

// PodcastSearchClient is the remote directory capability behind the tiered
// orchestrator's second tier.
type PodcastSearchClient interface {
	Search(ctx context.Context, query string, filters SearchFilters) (*SearchResult, error)
}

type podcastSearchClient struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewPodcastSearchClient builds the client with a request budget of
// SEARCH_RATE_LIMIT requests per SEARCH_RATE_WINDOW_SECONDS. When the budget
// is spent, Search blocks on the limiter instead of failing.
func NewPodcastSearchClient(log *logger.Logger) (PodcastSearchClient, error) {
	apiKey := utils.GetEnv("PODCAST_SEARCH_API_KEY", "", nil)
	if apiKey == "" {
		return nil, fmt.Errorf("missing PODCAST_SEARCH_API_KEY")
	}

	baseURL := utils.GetEnv("PODCAST_SEARCH_BASE_URL", "https://listen-api.listennotes.com", log)
	timeoutSec := utils.GetEnvAsInt("PODCAST_SEARCH_TIMEOUT_SECONDS", 10, log)
	limit := utils.GetEnvAsInt("SEARCH_RATE_LIMIT", 10, log)
	windowSec := utils.GetEnvAsInt("SEARCH_RATE_WINDOW_SECONDS", 60, log)

	interval := time.Duration(windowSec) * time.Second / time.Duration(limit)

	return &podcastSearchClient{
		log:        log.With("service", "PodcastSearchClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		limiter:    rate.NewLimiter(rate.Every(interval), limit),
	}, nil
}

func (c *podcastSearchClient) Search(ctx context.Context, query string, filters SearchFilters) (*SearchResult, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "podcast")
	if len(filters.Genres) > 0 {
		params.Set("genre_ids", strings.Join(filters.Genres, ","))
	}
	if filters.Language != "" {
		params.Set("language", filters.Language)
	}
	if filters.Offset > 0 {
		params.Set("offset", strconv.Itoa(filters.Offset))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/api/v2/search?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-ListenAPI-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrSearchUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: http 429", ErrSearchRateLimited)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: http %d", ErrSearchUnauthorized, resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: http %d", ErrSearchUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("%w: http %d: %s", ErrSearchUnavailable, resp.StatusCode, string(raw))
	}

	var result SearchResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrSearchUnavailable, err)
	}
	return &result, nil
}

// searchErrorKind labels an error for logs without changing fallback behavior.
func searchErrorKind(err error) string {
	switch {
	case errors.Is(err, ErrSearchRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrSearchUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrSearchUnavailable):
		return "unavailable"
	default:
		return "unknown"
	}
}
