// Package spotify is a minimal client for the Spotify Web API player
// endpoints: the current track and the playback queue.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/nowplaying/internal/core/domain"
	"github.com/custodia-labs/nowplaying/internal/core/ports/driven"
	"github.com/custodia-labs/nowplaying/internal/logger"
)

// Ensure Client implements the interfaces.
var (
	_ driven.PlayerAPI   = (*Client)(nil)
	_ driven.PlayerProbe = (*Client)(nil)
)

// DefaultBaseURL is the Web API root.
const DefaultBaseURL = "https://api.spotify.com/v1"

const (
	currentlyPlayingPath = "/me/player/currently-playing"
	queuePath            = "/me/player/queue"

	// requestTimeout bounds each API call, independent of the caller's context.
	requestTimeout = 10 * time.Second
	// maxErrorBody caps how much of an error response is kept.
	maxErrorBody = 64 << 10
)

// Client calls the player endpoints with a caller-supplied bearer token.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *RateLimiter
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.http = client
	}
}

// WithRateLimiter overrides the rate limiter.
func WithRateLimiter(limiter *RateLimiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// NewClient creates a player API client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: requestTimeout},
		limiter: NewRateLimiter(DefaultRateLimit),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CurrentlyPlaying returns the current track, or nil when nothing is playing.
func (c *Client) CurrentlyPlaying(ctx context.Context, accessToken string) (*domain.NowPlaying, error) {
	_, np, err := c.ProbeCurrentlyPlaying(ctx, accessToken)
	return np, err
}

// ProbeCurrentlyPlaying is CurrentlyPlaying that also reports the HTTP status.
func (c *Client) ProbeCurrentlyPlaying(ctx context.Context, accessToken string) (int, *domain.NowPlaying, error) {
	status, body, err := c.get(ctx, accessToken, currentlyPlayingPath)
	if err != nil {
		return status, nil, err
	}
	if status == http.StatusNoContent || len(body) == 0 {
		return status, nil, nil
	}

	var payload currentlyPlaying
	if err := json.Unmarshal(body, &payload); err != nil {
		return status, nil, fmt.Errorf("decode currently playing: %w", err)
	}
	return status, payload.toNowPlaying(), nil
}

// Queue returns the next queued track. An empty queue yields an empty snapshot.
func (c *Client) Queue(ctx context.Context, accessToken string) (domain.QueueSnapshot, error) {
	status, body, err := c.get(ctx, accessToken, queuePath)
	if err != nil {
		return domain.QueueSnapshot{}, err
	}
	if status == http.StatusNoContent || len(body) == 0 {
		return domain.QueueSnapshot{}, nil
	}

	var payload queueResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return domain.QueueSnapshot{}, fmt.Errorf("decode queue: %w", err)
	}
	return payload.toQueueSnapshot(), nil
}

// get performs an authenticated GET. Non-2xx responses are returned as
// *domain.APIError carrying the status and raw body.
func (c *Client) get(ctx context.Context, accessToken, path string) (int, []byte, error) {
	ok, err := c.limiter.Acquire(ctx)
	if err != nil {
		return 0, nil, err
	}
	if !ok {
		return http.StatusTooManyRequests, nil, &domain.APIError{
			Status: http.StatusTooManyRequests,
			Body:   "client backoff until " + c.limiter.RetryAt().Format(time.RFC3339),
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
			c.limiter.RecordRateLimit(retryAfter)
			logger.Warn("spotify: rate limited, backing off %s", retryAfter)
		}
		return resp.StatusCode, nil, &domain.APIError{Status: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read %s: %w", path, err)
	}
	return resp.StatusCode, body, nil
}

// parseRetryAfter reads a Retry-After header given in seconds.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
