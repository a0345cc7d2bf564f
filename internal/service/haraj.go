package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"bridge/internal/config"
	"bridge/internal/model"
)

// searchQuery is the GraphQL document sent for every search.
const searchQuery = `
query Search($filters: SearchFilters!, $page: Int, $limit: Int) {
  Search(filters: $filters, page: $page, limit: $limit) {
    total
    items {
      id
      title
      price
      city { id name enName }
      car { make model year mileage fuel gear }
      url
      images { url }
    }
  }
}
`

// Haraj signals throttling with 429 or its own 388 status.
func isRateLimitStatus(status int) bool {
	return status == http.StatusTooManyRequests || status == 388
}

// ErrRateLimited is returned once the retry budget for throttled
// responses is exhausted.
var ErrRateLimited = errors.New("rate limited by haraj")

// QueryError is a non-retryable search failure: a bad filter, a
// non-success status or a GraphQL errors payload in the body.
type QueryError struct {
	Status int
	Detail string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("haraj query failed (status %d): %s", e.Status, e.Detail)
}

// RetryPolicy bounds the exponential backoff applied to rate-limited
// search calls: attempt n waits min(BaseDelay<<n, MaxDelay), and after
// MaxRetries retries the call fails with ErrRateLimited.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryPolicy matches Haraj's observed throttling behaviour.
var DefaultRetryPolicy = RetryPolicy{
	MaxRetries: 4,
	BaseDelay:  time.Second,
	MaxDelay:   10 * time.Second,
}

// Delay returns the backoff before retry number attempt+1.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	d := p.BaseDelay << uint(attempt)
	if d <= 0 || d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

// Searcher executes a compiled filter against the external search API.
type Searcher interface {
	Search(ctx context.Context, filters map[string]any, page, limit int) (*model.SearchResult, error)
}

// HarajClient issues GraphQL search queries to Haraj with rate-limit
// aware retry.
type HarajClient struct {
	url         string
	userAgent   string
	accessToken string
	retry       RetryPolicy
	httpClient  *http.Client
}

// Ensure HarajClient implements Searcher.
var _ Searcher = (*HarajClient)(nil)

// NewHarajClient creates a client from config. A zero-value retry
// policy falls back to DefaultRetryPolicy.
func NewHarajClient(cfg *config.HarajConfig, retry RetryPolicy) *HarajClient {
	if retry.MaxRetries <= 0 {
		retry = DefaultRetryPolicy
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "Mozilla/5.0"
	}
	return &HarajClient{
		url:         cfg.GraphQLURL,
		userAgent:   userAgent,
		accessToken: cfg.AccessToken,
		retry:       retry,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
	}
}

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlEnvelope struct {
	Data struct {
		Search model.SearchResult `json:"Search"`
	} `json:"data"`
	Errors []gqlError `json:"errors,omitempty"`
}

// Search runs the compiled filter against Haraj. Throttled responses
// are retried with exponential backoff per the client's RetryPolicy;
// every other failure surfaces immediately.
func (c *HarajClient) Search(ctx context.Context, filters map[string]any, page, limit int) (*model.SearchResult, error) {
	payload, err := json.Marshal(gqlRequest{
		Query: searchQuery,
		Variables: map[string]any{
			"filters": filters,
			"page":    page,
			"limit":   limit,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	for attempt := 0; ; attempt++ {
		status, body, err := c.post(ctx, payload)
		if err != nil {
			return nil, err
		}

		if isRateLimitStatus(status) {
			if attempt >= c.retry.MaxRetries {
				return nil, ErrRateLimited
			}
			wait := c.retry.Delay(attempt)
			log.Printf("haraj throttled (status %d), retry %d/%d in %s", status, attempt+1, c.retry.MaxRetries, wait)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
			continue
		}

		if status < 200 || status >= 300 {
			return nil, &QueryError{Status: status, Detail: string(body)}
		}

		var envelope gqlEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("failed to decode haraj response: %w", err)
		}
		// GraphQL errors arrive with a success status; they are
		// semantic failures, never retried.
		if len(envelope.Errors) > 0 {
			messages := make([]string, len(envelope.Errors))
			for i, e := range envelope.Errors {
				messages[i] = e.Message
			}
			return nil, &QueryError{Status: status, Detail: strings.Join(messages, "; ")}
		}

		return &envelope.Data.Search, nil
	}
}

func (c *HarajClient) post(ctx context.Context, payload []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("trackId", "")
	req.Header.Set("User-Agent", c.userAgent)
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}
