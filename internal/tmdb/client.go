package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultBaseURL      = "https://api.themoviedb.org"
	defaultLanguage     = "en-US"
	defaultRateInterval = 250 * time.Millisecond
	defaultTimeout      = 10 * time.Second
	defaultBackoffBase  = time.Second
	backoffCap          = 30 * time.Second
	backoffCycle        = 5
)

// SortPopularity is the provider sort key for generic popular content.
const SortPopularity = "popularity.desc"

// ErrRateLimited is returned when the provider rejects a request with 429.
var ErrRateLimited = errors.New("rate limited: too many requests")

// Client is a TMDB API client. The rate limiter is shared by every call
// path that touches the network, so one Client should be constructed per
// process and passed to whoever needs catalog access.
type Client struct {
	apiKey      string
	baseURL     string
	language    string
	httpClient  *http.Client
	limiter     *rate.Limiter
	backoffBase time.Duration
	log         *slog.Logger

	requests atomic.Uint64
	dropped  atomic.Uint64
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		c.log = log.With("component", "tmdb")
	}
}

// WithLanguage sets the language code sent with every request.
func WithLanguage(lang string) Option {
	return func(c *Client) {
		c.language = lang
	}
}

// WithRateInterval sets the minimum interval between outgoing requests.
// A non-positive interval disables the gate (for testing).
func WithRateInterval(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(d), 1)
	}
}

// WithBackoffBase sets the base delay for rate-limit backoff (for testing).
func WithBackoffBase(d time.Duration) Option {
	return func(c *Client) {
		c.backoffBase = d
	}
}

// NewClient creates a new TMDB client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:   apiKey,
		baseURL:  defaultBaseURL,
		language: defaultLanguage,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		limiter:     rate.NewLimiter(rate.Every(defaultRateInterval), 1),
		backoffBase: defaultBackoffBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Discover fetches one page of catalog content matching the query,
// normalized and with invalid records dropped. On a provider rate-limit
// response it backs off and retries the same query exactly once; every
// other provider error propagates unmodified.
func (c *Client) Discover(ctx context.Context, q DiscoverQuery) ([]Item, error) {
	items, err := c.discover(ctx, q)
	if errors.Is(err, ErrRateLimited) {
		delay := c.backoffDelay()
		if c.log != nil {
			c.log.Debug("rate limited by provider, backing off", "delay", delay)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		items, err = c.discover(ctx, q)
	}
	return items, err
}

func (c *Client) discover(ctx context.Context, q DiscoverQuery) ([]Item, error) {
	if !q.MediaType.Valid() {
		return nil, fmt.Errorf("unsupported media type %q", q.MediaType)
	}

	// Await the process-wide gate before touching the network.
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	c.requests.Add(1)

	genreIDs := TranslateGenres(q.MediaType, q.GenreIDs)

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)
	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = SortPopularity
	}
	params.Set("sort_by", sortBy)
	page := q.Page
	if page < 1 {
		page = 1
	}
	params.Set("page", strconv.Itoa(page))

	switch q.GenreMode {
	case GenreModeAll:
		if len(genreIDs) > 0 {
			params.Set("with_genres", joinIDs(genreIDs, ","))
		}
	case GenreModeAny:
		if len(genreIDs) > 0 {
			params.Set("with_genres", joinIDs(genreIDs, "|"))
		}
	}

	reqURL := fmt.Sprintf("%s/3/discover/%s?%s", c.baseURL, q.MediaType, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TMDB API error: %s", resp.Status)
	}

	var dr discoverResponse
	if err := json.NewDecoder(resp.Body).Decode(&dr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	items := make([]Item, 0, len(dr.Results))
	var droppedBatch int
	for _, r := range dr.Results {
		item, ok := normalize(q.MediaType, r)
		if !ok {
			droppedBatch++
			continue
		}
		if _, excluded := q.ExcludeIDs[item.ID]; excluded {
			continue
		}
		items = append(items, item)
	}

	if droppedBatch > 0 {
		c.dropped.Add(uint64(droppedBatch))
		if c.log != nil {
			c.log.Debug("dropped invalid records",
				"media_type", q.MediaType,
				"page", page,
				"dropped", droppedBatch,
				"kept", len(items),
			)
		}
	}

	return items, nil
}

// Genres returns the provider's genre vocabulary for the media type.
func (c *Client) Genres(ctx context.Context, media MediaType) ([]Genre, error) {
	if !media.Valid() {
		return nil, fmt.Errorf("unsupported media type %q", media)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	c.requests.Add(1)

	params := url.Values{}
	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)

	reqURL := fmt.Sprintf("%s/3/genre/%s/list?%s", c.baseURL, media, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TMDB API error: %s", resp.Status)
	}

	var gr genreListResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return gr.Genres, nil
}

// DroppedRecords reports how many provider records have been discarded
// for failing validation since the client was created. A high rate means
// the provider is returning systematically malformed data.
func (c *Client) DroppedRecords() uint64 {
	return c.dropped.Load()
}

// Requests reports the number of network requests issued.
func (c *Client) Requests() uint64 {
	return c.requests.Load()
}

// backoffDelay computes the rate-limit backoff: the base delay doubled
// per rolling request count mod 5, capped at 30s.
func (c *Client) backoffDelay() time.Duration {
	n := c.requests.Load() % backoffCycle
	d := c.backoffBase << n
	if d > backoffCap {
		d = backoffCap
	}
	return d
}

func joinIDs(ids []int, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, sep)
}
