// Package provider is the adapter for the upstream people-data API. It issues
// one POST per data category and returns the raw JSON untouched; all shape
// tolerance lives in the normalizers.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"persona/internal/domain"
)

// Params carries the query fields every category endpoint accepts.
type Params struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Age       *int   `json:"age,omitempty"`
	Location  string `json:"location,omitempty"`
}

// endpoints maps each category to its provider path.
var endpoints = map[domain.Category]string{
	domain.CategoryPersonSearch:      "/people/search",
	domain.CategoryContactEnrichment: "/contact/enrichment",
	domain.CategoryAddresses:         "/address/search",
	domain.CategoryPhones:            "/phone/search",
	domain.CategorySocialMedia:       "/social/search",
	domain.CategoryCriminalRecords:   "/criminal/records",
	domain.CategoryPropertyRecords:   "/property/records",
	domain.CategoryRelatives:         "/relatives/search",
}

// Client is the HTTP implementation against the provider's category endpoints.
type Client struct {
	baseURL     string
	keyName     string
	keyPassword string
	httpClient  *http.Client
	logger      *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New constructs a provider client. Credentials are sent as HTTP Basic auth.
func New(baseURL, keyName, keyPassword string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:     baseURL,
		keyName:     keyName,
		keyPassword: keyPassword,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// FetchCategory issues one category request and returns the raw JSON body.
// No assumption is made about the response shape beyond "JSON object or array".
func (c *Client) FetchCategory(ctx context.Context, cat domain.Category, params Params) (json.RawMessage, error) {
	endpoint, ok := endpoints[cat]
	if !ok {
		return nil, NewError(ErrorInternal, cat, "unknown category", nil)
	}

	body, err := json.Marshal(params)
	if err != nil {
		return nil, NewError(ErrorInternal, cat, "encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, NewError(ErrorInternal, cat, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyName, c.keyPassword)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewError(ErrorTimeout, cat, "request timed out", err)
		}
		return nil, NewError(ErrorOutage, cat, "request failed", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewError(ErrorOutage, cat, "read response", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(cat, resp.StatusCode, payload)
	}

	if !json.Valid(payload) {
		return nil, NewError(ErrorBadData, cat, "response is not valid JSON", nil)
	}
	return json.RawMessage(payload), nil
}

func (c *Client) statusError(cat domain.Category, status int, payload []byte) *Error {
	msg := fmt.Sprintf("status %d", status)
	if len(payload) > 0 && len(payload) <= 256 {
		msg = fmt.Sprintf("status %d: %s", status, payload)
	}
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return NewError(ErrorAuthentication, cat, msg, nil)
	case status == http.StatusTooManyRequests:
		return NewError(ErrorRateLimited, cat, msg, nil)
	case status >= 500:
		return NewError(ErrorOutage, cat, msg, nil)
	default:
		return NewError(ErrorBadData, cat, msg, nil)
	}
}
