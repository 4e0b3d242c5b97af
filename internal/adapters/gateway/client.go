// Package gateway is the HTTP client for the route recommendation gateway.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/okian/routedash/internal/domain/model"
	"github.com/okian/routedash/pkg/logger"
)

// Endpoint paths relative to the gateway base URL.
const (
	PathServiceHealth  = "/service-health"
	PathRecommendRoute = "/recommend-route"
	PathRecommendUser  = "/recommend/"
)

// Body limits.
const (
	maxBodyBytes      = 8 << 20
	maxErrorBodyBytes = 64 << 10
)

// HeaderRequestID carries the caller's request id upstream.
const HeaderRequestID = "X-Request-ID"

type requestIDKey struct{}

// WithRequestID returns a context whose requests carry id in X-Request-ID.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID extracts the id stored by WithRequestID.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// Client talks to one gateway instance.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     logger.Logger
}

// New creates a client for baseURL. One trailing slash is stripped.
func New(baseURL string, opts ...Option) (*Client, error) {
	base := strings.TrimSuffix(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, ErrBaseURL
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBaseURL, err)
	}

	c := &Client{
		baseURL:    base,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Get().Named("gateway")
	}
	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// HealthURL returns the service-health endpoint.
func (c *Client) HealthURL() string {
	return c.baseURL + PathServiceHealth
}

// RecommendURL returns the recommend-route endpoint for q.
func (c *Client) RecommendURL(q model.Query) string {
	return c.baseURL + PathRecommendRoute + "?" + q.Encode()
}

// FetchHealth reads the service -> status map.
func (c *Client) FetchHealth(ctx context.Context) (model.HealthSnapshot, error) {
	body, err := c.get(ctx, OpHealth, c.HealthURL())
	if err != nil {
		return nil, err
	}

	var snap model.HealthSnapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}
	if snap == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedBody)
	}
	return snap, nil
}

// Recommend submits q to /recommend-route. Invalid queries fail with the
// model validation errors before any request is made.
func (c *Client) Recommend(ctx context.Context, q model.Query) (model.Result, error) {
	if err := q.Validate(); err != nil {
		return model.Result{}, err
	}

	body, err := c.get(ctx, OpRecommend, c.RecommendURL(q))
	if err != nil {
		return model.Result{}, err
	}

	var res model.Result
	if err := json.Unmarshal(body, &res); err != nil {
		return model.Result{}, fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}
	res.Raw = json.RawMessage(body)
	return res, nil
}

// UserRecommendations calls /recommend/{user_id}. Unlike Recommend the mode
// is required here, so auto is rejected.
func (c *Client) UserRecommendations(ctx context.Context, userID string, mode model.Mode, topN int) (json.RawMessage, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, model.ErrMissingUserID
	}
	m, err := model.ParseMode(string(mode))
	if err != nil {
		return nil, err
	}
	if m == model.ModeAuto {
		return nil, fmt.Errorf("%w: air or rail required", model.ErrInvalidMode)
	}
	topN = model.Query{TopN: topN}.Normalize().TopN

	u := c.baseURL + PathRecommendUser + url.PathEscape(userID) + "?" + model.EncodeParams([]model.Param{
		{Key: "mode", Value: string(m)},
		{Key: "top_n", Value: strconv.Itoa(topN)},
	})
	body, err := c.get(ctx, OpRecommend, u)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: invalid JSON", ErrMalformedBody)
	}
	return json.RawMessage(body), nil
}

// get issues a GET and returns the body of a 2xx answer.
func (c *Client) get(ctx context.Context, op, rawURL string) ([]byte, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if id := RequestID(ctx); id != "" {
		req.Header.Set(HeaderRequestID, id)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug(ctx, "gateway request failed",
			logger.String("url", rawURL),
			logger.String("request_id", RequestID(ctx)),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	c.logger.Debug(ctx, "gateway response",
		logger.String("url", rawURL),
		logger.Int("status", resp.StatusCode),
		logger.String("request_id", RequestID(ctx)),
		logger.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &StatusError{Op: op, StatusCode: resp.StatusCode, Body: ErrorBody(raw)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}
	return body, nil
}

// ErrorBody renders an error response body for display: a JSON string is
// shown as its value, any other JSON as compact text, anything else as-is.
func ErrorBody(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	if json.Valid(trimmed) {
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err == nil {
			return buf.String()
		}
	}
	return string(raw)
}
