package sdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

// Option configures the Client.
type Option func(*Client)

// Client provides typed access to the ArcadeKit HTTP + WebSocket API.
type Client struct {
	baseURL    string
	wsURL      string
	httpClient *http.Client
	headers    http.Header
}

// NewClient constructs a new SDK client targeting the given baseURL (e.g., http://localhost:8080/api).
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("baseURL is required")
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	c := &Client{
		baseURL:    baseURL,
		wsURL:      deriveWSURL(baseURL),
		httpClient: http.DefaultClient,
		headers:    make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithAuthToken adds an Authorization: Bearer token header to all requests (HTTP + WS).
func WithAuthToken(token string) Option {
	return func(c *Client) {
		if strings.TrimSpace(token) != "" {
			c.headers.Set("Authorization", "Bearer "+token)
		}
	}
}

// WithAPIKey adds an X-API-Key header.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		if strings.TrimSpace(key) != "" {
			c.headers.Set("X-API-Key", key)
		}
	}
}

// WithHeader sets an arbitrary header applied to HTTP and WS calls.
func WithHeader(k, v string) Option {
	return func(c *Client) {
		if k != "" {
			c.headers.Set(k, v)
		}
	}
}

// SubmitScore records a score for a user in a game. It returns the stored
// score together with any achievement records that changed.
func (c *Client) SubmitScore(ctx context.Context, userID, gameID string, value int64) (Score, []Achievement, error) {
	if strings.TrimSpace(userID) == "" {
		return Score{}, nil, ErrEmptyUserID
	}

	u, err := url.Parse(fmt.Sprintf("%s/users/%s/scores", c.baseURL, url.PathEscape(userID)))
	if err != nil {
		return Score{}, nil, err
	}
	q := u.Query()
	q.Set("game", gameID)
	q.Set("value", fmt.Sprintf("%d", value))
	u.RawQuery = q.Encode()

	var body struct {
		Score        Score         `json:"score"`
		Achievements []Achievement `json:"achievements"`
	}
	if err := c.post(ctx, u.String(), &body); err != nil {
		return Score{}, nil, err
	}
	return body.Score, body.Achievements, nil
}

// CreateGame records a game created by a user.
func (c *Client) CreateGame(ctx context.Context, userID, title string) (Game, []Achievement, error) {
	if strings.TrimSpace(userID) == "" {
		return Game{}, nil, ErrEmptyUserID
	}

	u, err := url.Parse(fmt.Sprintf("%s/users/%s/games", c.baseURL, url.PathEscape(userID)))
	if err != nil {
		return Game{}, nil, err
	}
	q := u.Query()
	q.Set("title", title)
	u.RawQuery = q.Encode()

	var body struct {
		Game         Game          `json:"game"`
		Achievements []Achievement `json:"achievements"`
	}
	if err := c.post(ctx, u.String(), &body); err != nil {
		return Game{}, nil, err
	}
	return body.Game, body.Achievements, nil
}

// AddCredits adjusts a user's credit balance and returns the new total.
func (c *Client) AddCredits(ctx context.Context, userID string, delta int64) (int64, []Achievement, error) {
	if strings.TrimSpace(userID) == "" {
		return 0, nil, ErrEmptyUserID
	}

	u, err := url.Parse(fmt.Sprintf("%s/users/%s/credits", c.baseURL, url.PathEscape(userID)))
	if err != nil {
		return 0, nil, err
	}
	q := u.Query()
	q.Set("delta", fmt.Sprintf("%d", delta))
	u.RawQuery = q.Encode()

	var body struct {
		Credits      int64         `json:"credits"`
		Achievements []Achievement `json:"achievements"`
	}
	if err := c.post(ctx, u.String(), &body); err != nil {
		return 0, nil, err
	}
	return body.Credits, body.Achievements, nil
}

// Achievements fetches all achievement records for a user.
func (c *Client) Achievements(ctx context.Context, userID string) ([]Achievement, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrEmptyUserID
	}
	var body struct {
		Achievements []Achievement `json:"achievements"`
	}
	u := fmt.Sprintf("%s/users/%s/achievements", c.baseURL, url.PathEscape(userID))
	if err := c.get(ctx, u, &body); err != nil {
		return nil, err
	}
	return body.Achievements, nil
}

// Profile fetches the activity summary for a user.
func (c *Client) Profile(ctx context.Context, userID string) (Profile, error) {
	if strings.TrimSpace(userID) == "" {
		return Profile{}, ErrEmptyUserID
	}
	var p Profile
	u := fmt.Sprintf("%s/users/%s", c.baseURL, url.PathEscape(userID))
	if err := c.get(ctx, u, &p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Leaderboard fetches the top n entries.
func (c *Client) Leaderboard(ctx context.Context, limit int) (Leaderboard, error) {
	u := fmt.Sprintf("%s/leaderboard?limit=%d", c.baseURL, limit)
	var lb Leaderboard
	if err := c.get(ctx, u, &lb); err != nil {
		return Leaderboard{}, err
	}
	return lb, nil
}

// Health probes /healthz and returns status + storage check.
func (c *Client) Health(ctx context.Context) (HealthStatus, error) {
	var hs HealthStatus
	if err := c.get(ctx, c.baseURL+"/healthz", &hs); err != nil {
		return HealthStatus{}, err
	}
	return hs, nil
}

// SubscribeEvents connects to the WebSocket stream and emits Event values.
// The returned channel closes when ctx is done or the connection drops.
func (c *Client) SubscribeEvents(ctx context.Context) (<-chan Event, error) {
	if c.wsURL == "" {
		return nil, errors.New("wsURL is not set; ensure baseURL is http/https")
	}
	dialer := websocket.Dialer{
		HandshakeTimeout: 5 * time.Second,
	}
	conn, _, err := dialer.DialContext(ctx, c.wsURL, c.headers)
	if err != nil {
		return nil, err
	}

	out := make(chan Event, 32)
	go func() {
		defer close(out)
		defer conn.Close()
		for {
			select {
			case <-ctx.Done():
				return
			default:
				var evt Event
				if err := conn.ReadJSON(&evt); err != nil {
					return
				}
				select {
				case out <- evt:
				default:
					// drop if consumer is slow
				}
			}
		}
	}()
	return out, nil
}

func (c *Client) post(ctx context.Context, url string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return err
	}
	c.applyHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeJSON(resp, target)
}

func (c *Client) get(ctx context.Context, url string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	c.applyHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return decodeJSON(resp, target)
}

func (c *Client) applyHeaders(r *http.Request) {
	for k, vals := range c.headers {
		for _, v := range vals {
			r.Header.Add(k, v)
		}
	}
}

func deriveWSURL(httpBase string) string {
	u, err := url.Parse(httpBase)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	default:
		// leave as-is for custom schemes
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws"
	return u.String()
}
