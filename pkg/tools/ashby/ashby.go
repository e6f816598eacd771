// Package ashby exposes the applicant-tracking tools: candidate search,
// application and pipeline reads, stage changes, and the interview
// feedback flow.
//
// Every Ashby endpoint is a POST with a JSON payload, authenticated by
// HTTP basic auth with the API key as the username and an empty password.
// Successful responses wrap the useful data in a "results" key.
package ashby

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/develophealth/mcp-server-comms-bridge/core"
	"github.com/develophealth/mcp-server-comms-bridge/pkg/config"
	"github.com/develophealth/mcp-server-comms-bridge/pkg/tools/utils"
)

// defaultRejectionTemplateID is the rejection email template used when the
// caller does not supply one.
const defaultRejectionTemplateID = "07e79d76-8a03-44ac-9c2d-76ad5d4e3ab7"

// Client is a thin wrapper over the Ashby API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    http.DefaultClient,
	}
}

// call posts a payload to an endpoint and returns the contents of the
// response's "results" key, or the whole body when that key is absent.
func (c *Client) call(ctx context.Context, endpoint string, payload any) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.apiKey, "")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, core.UpstreamError("ashby", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, core.UpstreamError("ashby", fmt.Errorf("%s: status %d: %s", endpoint, resp.StatusCode, detail))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.UpstreamError("ashby", err)
	}

	var envelope struct {
		Results json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, core.UpstreamError("ashby", err)
	}
	if envelope.Results != nil {
		return envelope.Results, nil
	}
	return body, nil
}

type Provider struct {
	Tools map[string]core.Tool
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.Ashby.APIKey == "" {
		return nil, core.MissingConfigError("missing ASHBY_API_KEY environment variable")
	}
	return newProvider(NewClient(cfg.Ashby.BaseURL, cfg.Ashby.APIKey)), nil
}

func newProvider(client *Client) *Provider {
	return &Provider{
		Tools: map[string]core.Tool{
			"search_ashby_candidates":     NewSearchTool(client),
			"get_ashby_application":       NewApplicationTool(client),
			"list_ashby_interview_stages": NewStagesTool(client),
			"list_ashby_archive_reasons":  NewArchiveReasonsTool(client),
			"submit_ashby_feedback":       NewFeedbackTool(client),
			"progress_ashby_candidate":    NewProgressTool(client),
			"reject_ashby_candidate":      NewRejectTool(client),
		},
	}
}

// rawResult wraps an upstream results payload in a text result without
// reshaping; Ashby's own JSON is already the stable shape here.
func rawResult(raw json.RawMessage) (*mcp.CallToolResult, error) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return mcp.NewToolResultText(string(raw)), nil
	}
	return mcp.NewToolResultText(pretty.String()), nil
}

type SearchTool struct {
	client *Client
	handle mcp.Tool
}

func NewSearchTool(client *Client) core.Tool {
	t := &SearchTool{client: client}
	t.handle = mcp.NewTool(
		"search_ashby_candidates",
		mcp.WithDescription("Search Ashby candidates by name."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Candidate name to search for"),
		),
	)
	return t
}

func (t *SearchTool) Handle() mcp.Tool {
	return t.handle
}

func (t *SearchTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := utils.GetRequiredStringParam(request, "name")
	if err != nil {
		return nil, err
	}

	raw, err := t.client.call(ctx, "candidate.search", map[string]any{"name": name})
	if err != nil {
		return nil, err
	}
	return rawResult(raw)
}

type ApplicationTool struct {
	client *Client
	handle mcp.Tool
}

func NewApplicationTool(client *Client) core.Tool {
	t := &ApplicationTool{client: client}
	t.handle = mcp.NewTool(
		"get_ashby_application",
		mcp.WithDescription("Get an Ashby application's details, including its current interview stage."),
		mcp.WithString("application_id",
			mcp.Required(),
			mcp.Description("The Ashby application ID"),
		),
	)
	return t
}

func (t *ApplicationTool) Handle() mcp.Tool {
	return t.handle
}

func (t *ApplicationTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	applicationID, err := utils.GetRequiredStringParam(request, "application_id")
	if err != nil {
		return nil, err
	}

	raw, err := t.client.call(ctx, "application.info", map[string]any{"applicationId": applicationID})
	if err != nil {
		return nil, err
	}
	return rawResult(raw)
}

type StagesTool struct {
	client *Client
	handle mcp.Tool
}

func NewStagesTool(client *Client) core.Tool {
	t := &StagesTool{client: client}
	t.handle = mcp.NewTool(
		"list_ashby_interview_stages",
		mcp.WithDescription("List the ordered interview stages of an Ashby interview plan."),
		mcp.WithString("interview_plan_id",
			mcp.Required(),
			mcp.Description("The Ashby interview plan ID"),
		),
	)
	return t
}

func (t *StagesTool) Handle() mcp.Tool {
	return t.handle
}

func (t *StagesTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	planID, err := utils.GetRequiredStringParam(request, "interview_plan_id")
	if err != nil {
		return nil, err
	}

	raw, err := t.client.call(ctx, "interviewStage.list", map[string]any{"interviewPlanId": planID})
	if err != nil {
		return nil, err
	}
	return rawResult(raw)
}

type ArchiveReasonsTool struct {
	client *Client
	handle mcp.Tool
}

func NewArchiveReasonsTool(client *Client) core.Tool {
	t := &ArchiveReasonsTool{client: client}
	t.handle = mcp.NewTool(
		"list_ashby_archive_reasons",
		mcp.WithDescription("List the archive/rejection reasons configured in Ashby."),
	)
	return t
}

func (t *ArchiveReasonsTool) Handle() mcp.Tool {
	return t.handle
}

func (t *ArchiveReasonsTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := t.client.call(ctx, "archiveReason.list", map[string]any{})
	if err != nil {
		return nil, err
	}
	return rawResult(raw)
}

type ProgressTool struct {
	client *Client
	handle mcp.Tool
}

func NewProgressTool(client *Client) core.Tool {
	t := &ProgressTool{client: client}
	t.handle = mcp.NewTool(
		"progress_ashby_candidate",
		mcp.WithDescription("Move an Ashby candidate's application to a target interview stage."),
		mcp.WithString("application_id",
			mcp.Required(),
			mcp.Description("The Ashby application ID"),
		),
		mcp.WithString("interview_stage_id",
			mcp.Required(),
			mcp.Description("The target interview stage ID"),
		),
	)
	return t
}

func (t *ProgressTool) Handle() mcp.Tool {
	return t.handle
}

func (t *ProgressTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	applicationID, err := utils.GetRequiredStringParam(request, "application_id")
	if err != nil {
		return nil, err
	}
	stageID, err := utils.GetRequiredStringParam(request, "interview_stage_id")
	if err != nil {
		return nil, err
	}

	// Same endpoint as rejection, but the advance payload shape carries
	// only the target stage and must never mix in archive fields.
	raw, err := t.client.call(ctx, "application.changeStage", map[string]any{
		"applicationId":    applicationID,
		"interviewStageId": stageID,
	})
	if err != nil {
		return nil, err
	}
	return rawResult(raw)
}

type RejectTool struct {
	client *Client
	handle mcp.Tool
}

func NewRejectTool(client *Client) core.Tool {
	t := &RejectTool{client: client}
	t.handle = mcp.NewTool(
		"reject_ashby_candidate",
		mcp.WithDescription("Reject an Ashby candidate with an archive reason and send the rejection email."),
		mcp.WithString("application_id",
			mcp.Required(),
			mcp.Description("The Ashby application ID"),
		),
		mcp.WithString("archive_reason_id",
			mcp.Required(),
			mcp.Description("The archive reason ID (see list_ashby_archive_reasons)"),
		),
		mcp.WithString("rejection_template_id",
			mcp.Description("Rejection email template ID"),
			mcp.DefaultString(defaultRejectionTemplateID),
		),
	)
	return t
}

func (t *RejectTool) Handle() mcp.Tool {
	return t.handle
}

func (t *RejectTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	applicationID, err := utils.GetRequiredStringParam(request, "application_id")
	if err != nil {
		return nil, err
	}
	reasonID, err := utils.GetRequiredStringParam(request, "archive_reason_id")
	if err != nil {
		return nil, err
	}
	templateID, err := utils.GetOptionalStringParam(request, "rejection_template_id")
	if err != nil {
		return nil, err
	}
	if templateID == "" {
		templateID = defaultRejectionTemplateID
	}

	raw, err := t.client.call(ctx, "application.changeStage", map[string]any{
		"applicationId":            applicationID,
		"archiveReasonId":          reasonID,
		"sendRejectionEmail":       true,
		"rejectionEmailTemplateId": templateID,
	})
	if err != nil {
		return nil, err
	}
	return rawResult(raw)
}
