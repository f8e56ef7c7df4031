package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"musictaste/internal/logging"
)

const (
	defaultBaseURL        = "https://api.spotify.com/v1"
	defaultTokenURL       = "https://accounts.spotify.com/api/token"
	defaultHTTPTimeout    = 10 * time.Second
	defaultRetryAttempts  = 5
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 30 * time.Second
	albumPageLimit        = 50
	tokenExpirySlack      = 30 * time.Second
)

// Client talks to the Spotify Web API.
type Client struct {
	clientID     string
	clientSecret string
	baseURL      string
	tokenURL     string
	httpClient   *http.Client
	logger       *slog.Logger

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
	now              func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the API root (defaults to https://api.spotify.com/v1).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithTokenURL overrides the client-credentials token endpoint.
func WithTokenURL(tokenURL string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(tokenURL); trimmed != "" {
			c.tokenURL = trimmed
		}
	}
}

// WithRetry overrides the attempt count and backoff bounds for transient failures.
func WithRetry(attempts int, baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retryMaxAttempts = attempts
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithRetryAttempts overrides only the attempt count. Values below 1 are
// ignored.
func WithRetryAttempts(attempts int) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.retryMaxAttempts = attempts
		}
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// WithLogger routes request diagnostics to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a catalog client. Credentials are required; the token itself
// is fetched on the first request.
func New(clientID, clientSecret string, opts ...Option) (*Client, error) {
	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("catalog client id and secret required")
	}
	client := &Client{
		clientID:         clientID,
		clientSecret:     clientSecret,
		baseURL:          defaultBaseURL,
		tokenURL:         defaultTokenURL,
		httpClient:       &http.Client{Timeout: defaultHTTPTimeout},
		logger:           logging.NewNop(),
		retryMaxAttempts: defaultRetryAttempts,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "catalog")
	return client, nil
}

// Track fetches a track by ID.
func (c *Client) Track(ctx context.Context, id string) (Track, error) {
	var track Track
	err := c.getJSON(ctx, "catalog track", "/tracks/"+url.PathEscape(id), nil, &track)
	return track, err
}

// Album fetches an album by ID.
func (c *Client) Album(ctx context.Context, id string) (Album, error) {
	var album Album
	err := c.getJSON(ctx, "catalog album", "/albums/"+url.PathEscape(id), nil, &album)
	return album, err
}

// Artist fetches an artist by ID.
func (c *Client) Artist(ctx context.Context, id string) (Artist, error) {
	var artist Artist
	err := c.getJSON(ctx, "catalog artist", "/artists/"+url.PathEscape(id), nil, &artist)
	return artist, err
}

// ArtistAlbumIDs lists the IDs of an artist's albums and singles, following
// pagination until the listing is exhausted.
func (c *Client) ArtistAlbumIDs(ctx context.Context, id string) ([]string, error) {
	var ids []string
	offset := 0
	for {
		query := url.Values{}
		query.Set("include_groups", "album,single")
		query.Set("limit", strconv.Itoa(albumPageLimit))
		query.Set("offset", strconv.Itoa(offset))

		var page albumPage
		if err := c.getJSON(ctx, "catalog artist albums", "/artists/"+url.PathEscape(id)+"/albums", query, &page); err != nil {
			return nil, err
		}
		for _, album := range page.Items {
			if album.ID != "" {
				ids = append(ids, album.ID)
			}
		}
		offset += len(page.Items)
		if len(page.Items) == 0 || page.Next == nil || *page.Next == "" || offset >= page.Total {
			return ids, nil
		}
	}
}

func (c *Client) getJSON(ctx context.Context, op, path string, query url.Values, out any) error {
	attempts := c.retryAttempts()
	refreshed := false
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		err := c.getOnce(ctx, op, path, query, out)
		if err == nil {
			return nil
		}

		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusUnauthorized && !refreshed {
			// Token expired early or was revoked. One refresh, not counted as an attempt.
			c.invalidateToken()
			refreshed = true
			lastErr = err
			attempt--
			continue
		}

		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			return err
		}
		c.logger.Debug("retrying catalog request",
			logging.String("op", op),
			logging.Int("attempt", attempt),
			logging.Duration("delay", delay),
			logging.Error(err),
		)
		if err := c.sleep(ctx, delay); err != nil {
			return err
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.New("unknown retry failure")
	}
	return fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, lastErr)
}

func (c *Client) getOnce(ctx context.Context, op, path string, query url.Values, out any) error {
	token, err := c.accessToken(ctx)
	if err != nil {
		return err
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%s: new request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transportError(op, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportError(op, err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Body: string(body), RetryAfter: retryAfter}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("catalog token: new request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", transportError("catalog token", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError("catalog token", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		if retryableStatus(resp.StatusCode) {
			retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
			return "", &StatusError{Op: "catalog token", StatusCode: resp.StatusCode, Body: string(body), RetryAfter: retryAfter}
		}
		return "", &tokenError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var payload tokenResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("catalog token: decode response: %w", err)
	}
	if strings.TrimSpace(payload.AccessToken) == "" {
		return "", errors.New("catalog token: empty access token")
	}
	lifetime := time.Duration(payload.ExpiresIn)*time.Second - tokenExpirySlack
	if lifetime <= 0 {
		lifetime = time.Duration(payload.ExpiresIn) * time.Second
	}
	c.token = payload.AccessToken
	c.tokenExpiry = c.now().Add(lifetime)
	c.logger.Debug("catalog token acquired", logging.Duration("lifetime", lifetime))
	return c.token, nil
}

// Authenticate requests a fresh access token, which verifies the
// credentials and the token endpoint without touching the API.
func (c *Client) Authenticate(ctx context.Context) error {
	c.invalidateToken()
	_, err := c.accessToken(ctx)
	return err
}

func (c *Client) invalidateToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.tokenExpiry = time.Time{}
}

func transportError(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%s: %w: %w", op, ErrTransient, err)
	}
	return fmt.Errorf("%s: http error: %w", op, err)
}
