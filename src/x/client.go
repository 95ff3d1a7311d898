package x

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultEndpoint is the production v2 API base.
	DefaultEndpoint = "https://api.x.com"

	defaultTimeout = 30 * time.Second
	maxResults     = 100
)

// ErrRateLimited reports an HTTP 429 from the API. The caller simply retries
// on its next scheduled pass.
var ErrRateLimited = errors.New("x: rate limited")

// Client is a minimal X API v2 client: recent search for trigger detection
// and tweet creation for the report replies.
type Client struct {
	endpoint    string
	httpClient  *http.Client
	bearerToken string
	userToken   string
}

// NewClient builds a client. bearerToken authenticates searches; userToken is
// the user-context token required to post replies. An empty endpoint selects
// the production API.
func NewClient(endpoint, bearerToken, userToken string) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		bearerToken: bearerToken,
		userToken:   userToken,
	}
}

// SearchRecent runs one recent-search page for the query, expanding parent
// tweets and author profiles so the whole analysis pass needs no further
// API calls. sinceID narrows the window to unseen posts when non-empty.
func (c *Client) SearchRecent(ctx context.Context, query, sinceID string) (*SearchResponse, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("max_results", fmt.Sprintf("%d", maxResults))
	params.Set("expansions", "author_id,referenced_tweets.id,referenced_tweets.id.author_id")
	params.Set("tweet.fields", "author_id,created_at,conversation_id,public_metrics,referenced_tweets")
	params.Set("user.fields", "created_at,description,public_metrics,verified,username,name")
	if sinceID != "" {
		params.Set("since_id", sinceID)
	}

	body, err := c.do(ctx, http.MethodGet, "/2/tweets/search/recent?"+params.Encode(), nil, c.bearerToken)
	if err != nil {
		return nil, fmt.Errorf("search recent: %w", err)
	}

	var resp SearchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}
	return &resp, nil
}

// PostReply publishes text as a reply to the given tweet and returns the new
// tweet ID.
func (c *Client) PostReply(ctx context.Context, text, inReplyToID string) (string, error) {
	payload := map[string]any{
		"text": text,
		"reply": map[string]string{
			"in_reply_to_tweet_id": inReplyToID,
		},
	}

	body, err := c.do(ctx, http.MethodPost, "/2/tweets", payload, c.userToken)
	if err != nil {
		return "", fmt.Errorf("post reply: %w", err)
	}

	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parse post response: %w", err)
	}
	return resp.Data.ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload any, token string) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, snippet(body))
	}
	return body, nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
