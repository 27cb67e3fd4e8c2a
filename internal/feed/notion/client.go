// Package notion reads and updates a Notion database used as a todo list.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	tberrors "github.com/alexisbeaulieu97/tilebar/pkg/errors"
)

const (
	// APIVersion is sent as the Notion-Version header.
	APIVersion = "2022-06-28"
	// DefaultBaseURL is the public Notion API.
	DefaultBaseURL = "https://api.notion.com"
	// DefaultRate is Notion's published average request limit.
	DefaultRate = rate.Limit(3)

	pageSize = 100
)

// ClientConfig configures a Client.
type ClientConfig struct {
	Token   string
	BaseURL string
	// Relay, when set, is prefixed to every target URL.
	Relay   string
	Rate    rate.Limit
	Timeout time.Duration
}

// Client wraps the subset of the Notion REST API tilebar needs.
type Client struct {
	httpClient *http.Client
	baseURL    string
	relay      string
	token      string
	limiter    *rate.Limiter
}

// NewClient creates a Client. A nil httpClient uses one with cfg.Timeout
// (default 30s).
func NewClient(cfg ClientConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	limit := cfg.Rate
	if limit <= 0 {
		limit = DefaultRate
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(base, "/"),
		relay:      cfg.Relay,
		token:      cfg.Token,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// QueryDatabase returns every page of the database, newest first.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string) ([]Page, error) {
	path := fmt.Sprintf("/v1/databases/%s/query", databaseID)

	var (
		pages  []Page
		cursor string
	)
	for {
		body := queryRequest{
			PageSize:    pageSize,
			StartCursor: cursor,
			Sorts:       []querySort{{Timestamp: "created_time", Direction: "descending"}},
		}
		var resp queryResponse
		if err := c.doJSON(ctx, http.MethodPost, path, body, &resp); err != nil {
			return nil, fmt.Errorf("query database: %w", err)
		}
		pages = append(pages, resp.Results...)

		if !resp.HasMore || resp.NextCursor == "" {
			return pages, nil
		}
		cursor = resp.NextCursor
	}
}

// RetrieveDatabase returns the database title and property schema.
func (c *Client) RetrieveDatabase(ctx context.Context, databaseID string) (*Database, error) {
	var db Database
	if err := c.doJSON(ctx, http.MethodGet, "/v1/databases/"+databaseID, nil, &db); err != nil {
		return nil, fmt.Errorf("retrieve database: %w", err)
	}
	return &db, nil
}

// UpdatePage patches the given properties of a page.
func (c *Client) UpdatePage(ctx context.Context, pageID string, properties map[string]any) (*Page, error) {
	body := map[string]any{"properties": properties}
	var page Page
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/pages/"+pageID, body, &page); err != nil {
		return nil, fmt.Errorf("update page %s: %w", pageID, err)
	}
	return &page, nil
}

// CreatePage adds a page to a database.
func (c *Client) CreatePage(ctx context.Context, databaseID string, properties map[string]any) (*Page, error) {
	body := map[string]any{
		"parent":     map[string]string{"database_id": databaseID},
		"properties": properties,
	}
	var page Page
	if err := c.doJSON(ctx, http.MethodPost, "/v1/pages", body, &page); err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	return &page, nil
}

// doJSON performs a paced request with JSON serialization.
func (c *Client) doJSON(ctx context.Context, method, path string, body, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return tberrors.NewFetchError("notion", 0, err)
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	url := c.relay + c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", APIVersion)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return tberrors.NewFetchError("notion", 0, fmt.Errorf("%s %s: %w", method, path, err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return tberrors.NewFetchError("notion", resp.StatusCode, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode >= 400 {
		return tberrors.NewFetchError("notion", resp.StatusCode, apiError(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return tberrors.NewParseError(path, respBody, err)
		}
	}
	return nil
}

func apiError(body []byte) error {
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return fmt.Errorf("%s: %s", payload.Code, payload.Message)
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return errors.New("empty response")
	}
	return errors.New(text)
}
