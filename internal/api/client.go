// Package api provides the HTTP client for the password analysis service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/passintel/internal/model"
)

const (
	// DefaultBaseURL is where a locally started analysis service listens.
	DefaultBaseURL = "http://localhost:8000"
	// DefaultTimeout bounds every call.
	DefaultTimeout = 30 * time.Second

	defaultUserAgent = "passintel"
	maxBodyBytes     = 1 << 20
)

// Config is fixed at construction; there is no runtime reconfiguration.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client performs single-attempt JSON calls against the analysis service.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

// New validates cfg and builds a Client. A nil logger discards output.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("timeout must be positive, got %s", cfg.Timeout)
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	base, err := ParseBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		userAgent:  cfg.UserAgent,
		logger:     logger,
	}, nil
}

// ParseBaseURL accepts absolute http(s) URLs only.
func ParseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q: missing host", raw)
	}
	return u, nil
}

// BaseURL returns the configured service root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

// Call sends one request and decodes a 2xx JSON body into out (when non-nil).
// Every failure is returned as *Error.
func (c *Client) Call(ctx context.Context, method, path string, body any, query url.Values, out any) error {
	endpoint := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindUnexpected, Err: fmt.Errorf("marshal request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return &Error{Kind: KindUnexpected, Err: fmt.Errorf("create request: %w", err)}
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log := c.logger.With(
		slog.String("method", method),
		slog.String("path", path),
		slog.String("request_id", requestID),
	)
	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn("api call failed", slog.String("error", err.Error()))
		return &Error{Kind: KindNetwork, Err: err}
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			// Best-effort body close.
			_ = cerr
		}
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		log.Warn("api response read failed", slog.Int("status", resp.StatusCode), slog.String("error", err.Error()))
		return &Error{Kind: KindNetwork, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}
	log.Debug("api call",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := errorFromResponse(resp.StatusCode, data)
		log.Warn("api call rejected", slog.Int("status", resp.StatusCode), slog.String("kind", apiErr.Kind.String()))
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.Warn("api response decode failed", slog.String("error", err.Error()))
		return &Error{Kind: KindUnexpected, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func errorFromResponse(status int, data []byte) *Error {
	statusErr := fmt.Errorf("unexpected status %d %s", status, http.StatusText(status))
	var body errorBody
	if err := json.Unmarshal(data, &body); err != nil || len(body.Detail) == 0 {
		return &Error{Kind: KindUnexpected, StatusCode: status, Err: statusErr}
	}
	var detail string
	if err := json.Unmarshal(body.Detail, &detail); err != nil || detail == "" {
		return &Error{Kind: KindUnexpected, StatusCode: status, Err: statusErr}
	}
	return &Error{Kind: KindServer, StatusCode: status, Detail: detail, Err: statusErr}
}

type analyzeRequest struct {
	Password string `json:"password"`
}

// Analyze submits a password for assessment via POST /analyze.
func (c *Client) Analyze(ctx context.Context, password string) (model.AnalysisResult, error) {
	var result model.AnalysisResult
	if err := c.Call(ctx, http.MethodPost, "/analyze", analyzeRequest{Password: password}, nil, &result); err != nil {
		return model.AnalysisResult{}, err
	}
	return result, nil
}

// History fetches one page of prior analyses via GET /history.
func (c *Client) History(ctx context.Context, q model.HistoryQuery) (model.HistoryPage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(q.Page))
	query.Set("page_size", strconv.Itoa(q.PageSize))
	query.Set("sort_by", string(q.SortBy))
	var page model.HistoryPage
	if err := c.Call(ctx, http.MethodGet, "/history", nil, query, &page); err != nil {
		return model.HistoryPage{}, err
	}
	return page, nil
}

// Health queries the service root.
func (c *Client) Health(ctx context.Context) (model.Health, error) {
	var health model.Health
	if err := c.Call(ctx, http.MethodGet, "/", nil, nil, &health); err != nil {
		return model.Health{}, err
	}
	return health, nil
}
