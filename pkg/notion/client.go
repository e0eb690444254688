// pkg/notion/client.go
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://api.notion.com"
	notionVersion  = "2022-06-28"

	// Notion caps page_size at 100 items per request.
	maxPageSize = 100

	// Consecutive throttling failures allowed before giving up on a query.
	maxThrottleRetries = 5

	backoffBase = 1000 * time.Millisecond
	backoffCap  = 10000 * time.Millisecond
)

// ClientConfig provides configuration options for the Notion client.
type ClientConfig struct {
	// Base URL of the API (overridable for tests)
	BaseURL string
	// Maximum requests per second enforced by the pacing limiter
	MaxRequestsPerSecond int
	// Timeout for individual HTTP requests
	Timeout time.Duration
	// Transport allows injecting a custom HTTP transport (for tests/stubs)
	Transport http.RoundTripper
}

// DefaultConfig returns the default client configuration
func DefaultConfig() ClientConfig {
	return ClientConfig{
		BaseURL:              defaultBaseURL,
		MaxRequestsPerSecond: 3,
		Timeout:              30 * time.Second,
	}
}

// Client wraps the Notion API with rate limiting and pagination. The pacing
// limiter is global per client instance, not per database; a client must not
// be shared across concurrent syncs without external synchronization.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	limiter    *rate.Limiter
	logger     *zap.Logger

	// sleep is the backoff wait; replaced in tests to avoid real delays
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a Notion client with the default configuration
func NewClient(accessToken string, logger *zap.Logger) *Client {
	return NewClientWithConfig(accessToken, DefaultConfig(), logger)
}

// NewClientWithConfig creates a Notion client with a custom configuration
func NewClientWithConfig(accessToken string, cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.MaxRequestsPerSecond <= 0 {
		cfg.MaxRequestsPerSecond = 3
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	interval := time.Second / time.Duration(cfg.MaxRequestsPerSecond)

	return &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: cfg.Transport,
		},
		baseURL: cfg.BaseURL,
		token:   accessToken,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		logger:  logger.Named("notion-client"),
		sleep:   sleepContext,
	}
}

// QueryDatabase retrieves up to maxItems records matching the filter and sort
// expressions, following pagination cursors and pacing every request. Filter
// and sorts are passed through to the API verbatim. Throttling responses are
// retried with exponential backoff; any other error propagates immediately.
func (c *Client) QueryDatabase(
	ctx context.Context,
	databaseID string,
	filter, sorts json.RawMessage,
	maxItems int,
) ([]Page, error) {
	allResults := make([]Page, 0)
	hasMore := true
	startCursor := ""
	attempt := 0

	for hasMore && len(allResults) < maxItems {
		pageSize := maxItems - len(allResults)
		if pageSize > maxPageSize {
			pageSize = maxPageSize
		}

		body := queryRequest{
			Filter:      filter,
			Sorts:       sorts,
			StartCursor: startCursor,
			PageSize:    pageSize,
		}

		var resp queryResponse
		err := c.doRequest(ctx, http.MethodPost,
			fmt.Sprintf("/v1/databases/%s/query", databaseID), body, &resp)
		if err != nil {
			if !IsRateLimited(err) {
				return nil, err
			}

			if attempt >= maxThrottleRetries {
				return nil, ErrRetriesExhausted
			}

			backoff := backoffBase << uint(attempt)
			if backoff > backoffCap {
				backoff = backoffCap
			}
			c.logger.Warn("Rate limited by Notion, backing off",
				zap.String("databaseID", databaseID),
				zap.Duration("backoff", backoff),
				zap.Int("attempt", attempt))

			if err := c.sleep(ctx, backoff); err != nil {
				return nil, err
			}
			attempt++
			continue
		}

		allResults = append(allResults, resp.Results...)
		hasMore = resp.HasMore
		if resp.NextCursor != nil {
			startCursor = *resp.NextCursor
		} else {
			startCursor = ""
		}
		attempt = 0
	}

	return allResults, nil
}

// GetDatabase retrieves the metadata of a single database.
func (c *Client) GetDatabase(ctx context.Context, databaseID string) (*Database, error) {
	var db Database
	err := c.doRequest(ctx, http.MethodGet,
		fmt.Sprintf("/v1/databases/%s", databaseID), nil, &db)
	if err != nil {
		return nil, err
	}
	return &db, nil
}

// SearchDatabases searches the workspace for databases matching the query.
// Used to discover configuration candidates for new sources.
func (c *Client) SearchDatabases(ctx context.Context, query string) (*SearchResult, error) {
	body := searchRequest{
		Query:  query,
		Filter: json.RawMessage(`{"property":"object","value":"database"}`),
	}

	var result SearchResult
	if err := c.doRequest(ctx, http.MethodPost, "/v1/search", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TestConnection verifies that the access token is usable.
func (c *Client) TestConnection(ctx context.Context) bool {
	var me struct {
		Object string `json:"object"`
		ID     string `json:"id"`
	}
	if err := c.doRequest(ctx, http.MethodGet, "/v1/users/me", nil, &me); err != nil {
		c.logger.Debug("Notion connectivity check failed", zap.Error(err))
		return false
	}
	return true
}

// doRequest performs a single paced API request and decodes the JSON
// response into out. An error response body is decoded into an *APIError.
func (c *Client) doRequest(ctx context.Context, method, path string, body, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", notionVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{}
		if err := json.Unmarshal(data, apiErr); err != nil || apiErr.Code == "" {
			apiErr.Message = string(data)
		}
		apiErr.StatusCode = resp.StatusCode
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// sleepContext waits for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
