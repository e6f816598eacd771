// Package grain exposes the meeting-recording tools: day listing over the
// cursor-paginated recordings API, and raw transcript retrieval.
package grain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/develophealth/mcp-server-comms-bridge/core"
	"github.com/develophealth/mcp-server-comms-bridge/pkg/config"
	"github.com/develophealth/mcp-server-comms-bridge/pkg/tools/utils"
)

const apiVersion = "2025-10-31"

// Client is a thin wrapper over the Grain public API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    http.DefaultClient,
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Public-Api-Version", apiVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, core.UpstreamError("grain", err)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, core.UpstreamError("grain", fmt.Errorf("status %d: %s", resp.StatusCode, detail))
	}
	return resp, nil
}

// Recording is the stable shape a listing entry is reduced to.
type Recording struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	StartDatetime string `json:"start_datetime"`
	EndDatetime   string `json:"end_datetime"`
	Duration      int    `json:"duration"`
	Participants  []any  `json:"participants"`
	URL           string `json:"url"`
}

type recordingsPage struct {
	Recordings []struct {
		ID            string `json:"id"`
		Title         string `json:"title"`
		StartDatetime string `json:"start_datetime"`
		EndDatetime   string `json:"end_datetime"`
		Duration      int    `json:"duration"`
		Participants  []any  `json:"participants"`
		URL           string `json:"url"`
	} `json:"recordings"`
	Cursor string `json:"cursor"`
}

// ListRecordings pages the upstream listing to exhaustion and keeps the
// entries whose start time falls inside the requested day. The window
// comparison is lexicographic on ISO-8601 strings, which orders the same
// as chronological time.
func (c *Client) ListRecordings(ctx context.Context, date string) ([]Recording, error) {
	var day time.Time
	if date == "" {
		now := time.Now()
		day = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	} else {
		parsed, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			return nil, fmt.Errorf("%w: date must be YYYY-MM-DD: %v", core.ErrMalformedArgument, err)
		}
		day = parsed
	}

	const stamp = "2006-01-02T15:04:05"
	start := day.Format(stamp) + "Z"
	end := day.AddDate(0, 0, 1).Format(stamp) + "Z"

	all := []Recording{}
	cursor := ""

	for {
		payload := map[string]any{
			"include": map[string]any{"participants": true},
		}
		if cursor != "" {
			payload["cursor"] = cursor
		}

		resp, err := c.do(ctx, http.MethodPost, "/recordings", payload)
		if err != nil {
			return nil, err
		}

		var page recordingsPage
		err = json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if err != nil {
			return nil, core.UpstreamError("grain", err)
		}

		for _, rec := range page.Recordings {
			if rec.StartDatetime != "" && !(start <= rec.StartDatetime && rec.StartDatetime < end) {
				continue
			}
			participants := rec.Participants
			if participants == nil {
				participants = []any{}
			}
			all = append(all, Recording{
				ID:            rec.ID,
				Title:         rec.Title,
				StartDatetime: rec.StartDatetime,
				EndDatetime:   rec.EndDatetime,
				Duration:      rec.Duration,
				Participants:  participants,
				URL:           rec.URL,
			})
		}

		if page.Cursor == "" || len(page.Recordings) == 0 {
			break
		}
		cursor = page.Cursor
	}

	return all, nil
}

// Transcript fetches the full transcript in Speaker: line format.
func (c *Client) Transcript(ctx context.Context, recordingID string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/recordings/"+recordingID+"/transcript.txt", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", core.UpstreamError("grain", err)
	}
	return string(text), nil
}

type Provider struct {
	Tools map[string]core.Tool
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.Grain.APIToken == "" {
		return nil, core.MissingConfigError("missing GRAIN_WORKSPACE_API_TOKEN environment variable")
	}
	return newProvider(NewClient(cfg.Grain.BaseURL, cfg.Grain.APIToken)), nil
}

func newProvider(client *Client) *Provider {
	return &Provider{
		Tools: map[string]core.Tool{
			"list_grain_recordings": NewListTool(client),
			"get_grain_transcript":  NewTranscriptTool(client),
		},
	}
}

type ListTool struct {
	client *Client
	handle mcp.Tool
}

func NewListTool(client *Client) core.Tool {
	t := &ListTool{client: client}
	t.handle = mcp.NewTool(
		"list_grain_recordings",
		mcp.WithDescription("List Grain recordings for a date (default: today). Returns title, date, duration, participants."),
		mcp.WithString("date",
			mcp.Description("Date in YYYY-MM-DD format (defaults to today)"),
			mcp.DefaultString(""),
		),
	)
	return t
}

func (t *ListTool) Handle() mcp.Tool {
	return t.handle
}

func (t *ListTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	date, err := utils.GetOptionalStringParam(request, "date")
	if err != nil {
		return nil, err
	}

	recordings, err := t.client.ListRecordings(ctx, date)
	if err != nil {
		return nil, err
	}

	return core.JSONResult(recordings)
}

// TranscriptTool returns raw text, not JSON.
type TranscriptTool struct {
	client *Client
	handle mcp.Tool
}

func NewTranscriptTool(client *Client) core.Tool {
	t := &TranscriptTool{client: client}
	t.handle = mcp.NewTool(
		"get_grain_transcript",
		mcp.WithDescription("Get full transcript of a Grain recording (Speaker: line format)."),
		mcp.WithString("recording_id",
			mcp.Required(),
			mcp.Description("The Grain recording ID"),
		),
	)
	return t
}

func (t *TranscriptTool) Handle() mcp.Tool {
	return t.handle
}

func (t *TranscriptTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	recordingID, err := utils.GetRequiredStringParam(request, "recording_id")
	if err != nil {
		return nil, err
	}

	transcript, err := t.client.Transcript(ctx, recordingID)
	if err != nil {
		return nil, err
	}

	return mcp.NewToolResultText(transcript), nil
}
