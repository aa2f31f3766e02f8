// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notion

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

	"golang.org/x/time/rate"
)

// apiVersion is the Notion-Version header sent with every request.
const apiVersion = "2022-06-28"

// defaultPageSize is the page size requested from paginated endpoints.
const defaultPageSize = 100

// Client talks to the Notion API. It is constructed explicitly from
// configuration and passed to every operation; there is no package-level
// client state.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit caps outgoing requests at rps per second. Zero or
// negative disables limiting.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// NewClient creates a Notion API client.
func NewClient(baseURL, token string, logger *slog.Logger, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: http.DefaultClient,
		baseURL:    baseURL,
		token:      token,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-200 response from the Notion API.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("notion API %d %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("notion API returned status %d", e.StatusCode)
}

// do performs one API request, decoding a successful response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		_ = json.Unmarshal(data, apiErr)
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// QueryDatabaseAll runs a database query, following the pagination cursor
// until exhausted, and returns all matching pages in source order.
func (c *Client) QueryDatabaseAll(ctx context.Context, databaseID string, query *DatabaseQuery) ([]Page, error) {
	q := DatabaseQuery{}
	if query != nil {
		q = *query
	}
	if q.PageSize == 0 {
		q.PageSize = defaultPageSize
	}

	var pages []Page
	for {
		var list pageList
		if err := c.do(ctx, http.MethodPost, "/v1/databases/"+url.PathEscape(databaseID)+"/query", q, &list); err != nil {
			return nil, err
		}
		pages = append(pages, list.Results...)
		if !list.HasMore || list.NextCursor == "" {
			return pages, nil
		}
		q.StartCursor = list.NextCursor
	}
}

// GetPage retrieves a single page record, including its cover metadata.
func (c *Client) GetPage(ctx context.Context, pageID string) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodGet, "/v1/pages/"+url.PathEscape(pageID), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// blockChildren lists the direct children of a block, following the
// pagination cursor until exhausted, preserving document order.
func (c *Client) blockChildren(ctx context.Context, blockID string) ([]Block, error) {
	base := "/v1/blocks/" + url.PathEscape(blockID) + "/children?page_size=" + strconv.Itoa(defaultPageSize)

	// Non-nil so an empty container serializes as [] rather than null.
	blocks := []Block{}
	cursor := ""
	for {
		path := base
		if cursor != "" {
			path += "&start_cursor=" + url.QueryEscape(cursor)
		}
		var list blockList
		if err := c.do(ctx, http.MethodGet, path, nil, &list); err != nil {
			return nil, err
		}
		blocks = append(blocks, list.Results...)
		if !list.HasMore || list.NextCursor == "" {
			return blocks, nil
		}
		cursor = list.NextCursor
	}
}

// FetchBlockTree retrieves the complete ordered block tree rooted at the
// given container. A failure listing the top level propagates; a failure
// fetching one block's children keeps that block with an empty, non-nil
// children list so siblings are unaffected.
func (c *Client) FetchBlockTree(ctx context.Context, blockID string) ([]Block, error) {
	blocks, err := c.blockChildren(ctx, blockID)
	if err != nil {
		return nil, err
	}

	for i := range blocks {
		if !blocks[i].HasChildren {
			continue
		}
		children, err := c.FetchBlockTree(ctx, blocks[i].ID)
		if err != nil {
			c.logger.Warn("fetching block children failed, keeping block without them",
				"block_id", blocks[i].ID, "block_type", blocks[i].Type, "error", err)
			blocks[i].Children = []Block{}
			continue
		}
		blocks[i].Children = children
	}
	return blocks, nil
}
