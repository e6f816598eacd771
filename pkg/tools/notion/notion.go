// Package notion exposes the content-management tools: page search and a
// full-page read that renders block children to plain text.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/develophealth/mcp-server-comms-bridge/core"
	"github.com/develophealth/mcp-server-comms-bridge/pkg/config"
	"github.com/develophealth/mcp-server-comms-bridge/pkg/tools/utils"
)

const (
	defaultMaxResults = 20
	pageSize          = 100
)

type Client struct {
	baseURL    string
	token      string
	apiVersion string
	http       *http.Client
}

func NewClient(baseURL, token, apiVersion string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		apiVersion: apiVersion,
		http:       http.DefaultClient,
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Notion-Version", c.apiVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return core.UpstreamError("notion", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return core.UpstreamError("notion", fmt.Errorf("status %d: %s", resp.StatusCode, detail))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return core.UpstreamError("notion", err)
	}
	return nil
}

// PageSummary is the stable shape a search hit is reduced to.
type PageSummary struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	LastEdited string `json:"last_edited"`
}

// PageContent is a full page rendered to plain text.
type PageContent struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	LastEdited string `json:"last_edited"`
	Content    string `json:"content"`
}

type searchResult struct {
	Results []struct {
		ID             string                  `json:"id"`
		Object         string                  `json:"object"`
		URL            string                  `json:"url"`
		LastEditedTime string                  `json:"last_edited_time"`
		Properties     map[string]pageProperty `json:"properties"`
	} `json:"results"`
}

func (c *Client) SearchPages(ctx context.Context, query string, maxResults int) ([]PageSummary, error) {
	if maxResults > pageSize {
		maxResults = pageSize
	}
	payload := map[string]any{
		"query":     query,
		"page_size": maxResults,
		"sort": map[string]string{
			"direction": "descending",
			"timestamp": "last_edited_time",
		},
	}

	var result searchResult
	if err := c.do(ctx, http.MethodPost, "/search", payload, &result); err != nil {
		return nil, err
	}

	pages := make([]PageSummary, 0, len(result.Results))
	for _, item := range result.Results {
		pages = append(pages, PageSummary{
			ID:         item.ID,
			Type:       item.Object,
			Title:      pageTitle(item.Properties),
			URL:        item.URL,
			LastEdited: item.LastEditedTime,
		})
	}
	return pages, nil
}

type pageResult struct {
	ID             string                  `json:"id"`
	URL            string                  `json:"url"`
	LastEditedTime string                  `json:"last_edited_time"`
	Properties     map[string]pageProperty `json:"properties"`
}

type blocksPage struct {
	Results    []json.RawMessage `json:"results"`
	HasMore    bool              `json:"has_more"`
	NextCursor string            `json:"next_cursor"`
}

// ReadPage fetches page metadata and pages the block children to
// exhaustion, rendering each block to a line of text.
func (c *Client) ReadPage(ctx context.Context, pageID string) (*PageContent, error) {
	var page pageResult
	if err := c.do(ctx, http.MethodGet, "/pages/"+pageID, nil, &page); err != nil {
		return nil, err
	}

	var lines []string
	cursor := ""
	for {
		params := url.Values{}
		params.Set("page_size", strconv.Itoa(pageSize))
		if cursor != "" {
			params.Set("start_cursor", cursor)
		}

		var blocks blocksPage
		path := "/blocks/" + pageID + "/children?" + params.Encode()
		if err := c.do(ctx, http.MethodGet, path, nil, &blocks); err != nil {
			return nil, err
		}

		for _, block := range blocks.Results {
			if line := blockLine(block); line != "" {
				lines = append(lines, line)
			}
		}

		if !blocks.HasMore {
			break
		}
		cursor = blocks.NextCursor
	}

	var content bytes.Buffer
	for i, line := range lines {
		if i > 0 {
			content.WriteByte('\n')
		}
		content.WriteString(line)
	}

	return &PageContent{
		ID:         page.ID,
		Title:      pageTitle(page.Properties),
		URL:        page.URL,
		LastEdited: page.LastEditedTime,
		Content:    content.String(),
	}, nil
}

type Provider struct {
	Tools map[string]core.Tool
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.Notion.APIToken == "" {
		return nil, core.MissingConfigError("missing NOTION_API_TOKEN environment variable")
	}
	return newProvider(NewClient(cfg.Notion.BaseURL, cfg.Notion.APIToken, cfg.Notion.APIVersion)), nil
}

func newProvider(client *Client) *Provider {
	return &Provider{
		Tools: map[string]core.Tool{
			"search_notion_pages": NewSearchTool(client),
			"read_notion_page":    NewReadTool(client),
		},
	}
}

type SearchTool struct {
	client *Client
	handle mcp.Tool
}

func NewSearchTool(client *Client) core.Tool {
	t := &SearchTool{client: client}
	t.handle = mcp.NewTool(
		"search_notion_pages",
		mcp.WithDescription("Search Notion pages and databases by query text, most recently edited first."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Text to search page and database titles for"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of results (default 20, capped at 100)"),
			mcp.DefaultNumber(defaultMaxResults),
		),
	)
	return t
}

func (t *SearchTool) Handle() mcp.Tool {
	return t.handle
}

func (t *SearchTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := utils.GetRequiredStringParam(request, "query")
	if err != nil {
		return nil, err
	}
	maxResults, err := utils.GetOptionalIntParam(request, "max_results")
	if err != nil {
		return nil, err
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	pages, err := t.client.SearchPages(ctx, query, maxResults)
	if err != nil {
		return nil, err
	}
	return core.JSONResult(pages)
}

type ReadTool struct {
	client *Client
	handle mcp.Tool
}

func NewReadTool(client *Client) core.Tool {
	t := &ReadTool{client: client}
	t.handle = mcp.NewTool(
		"read_notion_page",
		mcp.WithDescription("Read full content of a Notion page. Returns blocks rendered as plain text."),
		mcp.WithString("page_id",
			mcp.Required(),
			mcp.Description("The Notion page ID"),
		),
	)
	return t
}

func (t *ReadTool) Handle() mcp.Tool {
	return t.handle
}

func (t *ReadTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pageID, err := utils.GetRequiredStringParam(request, "page_id")
	if err != nil {
		return nil, err
	}

	page, err := t.client.ReadPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	return core.JSONResult(page)
}
