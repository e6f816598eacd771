package ashby

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/develophealth/mcp-server-comms-bridge/core"
	"github.com/develophealth/mcp-server-comms-bridge/pkg/tools/utils"
)

// fallbackRecommendationPath is used when the form definition carries no
// ValueSelect field at all.
const fallbackRecommendationPath = "overall_recommendation"

type interviewEvent struct {
	ID                 string   `json:"id"`
	InterviewID        string   `json:"interviewId"`
	InterviewerUserIDs []string `json:"interviewerUserIds"`
	// Pointer so an absent flag is distinguishable from an explicit
	// false. Absent means already submitted, an upstream quirk that
	// must be preserved as-is.
	HasSubmittedFeedback *bool `json:"hasSubmittedFeedback"`
}

type interviewSchedule struct {
	InterviewEvents []interviewEvent `json:"interviewEvents"`
}

type interviewInfo struct {
	FeedbackFormDefinitionID string `json:"feedbackFormDefinitionId"`
}

type formField struct {
	Type string `json:"type"`
	Path string `json:"path"`
}

type formSection struct {
	Fields []formField `json:"fields"`
}

type formDefinition struct {
	Sections []formSection `json:"sections"`
}

type fieldSubmission struct {
	Path  string `json:"path"`
	Value any    `json:"value"`
}

// SubmitFeedback walks the full scorecard flow for an application: find
// the first interview event still awaiting feedback, resolve its form
// definition, route the score and summary into the right form fields, and
// submit. Four sequential upstream calls; any failure aborts the whole
// operation with nothing written.
func (c *Client) SubmitFeedback(ctx context.Context, applicationID, summary string, score int, recommendation string) (json.RawMessage, error) {
	raw, err := c.call(ctx, "interviewSchedule.list", map[string]any{"applicationId": applicationID})
	if err != nil {
		return nil, err
	}
	var schedules []interviewSchedule
	if err := json.Unmarshal(raw, &schedules); err != nil {
		return nil, core.UpstreamError("ashby", err)
	}

	var pending *interviewEvent
scan:
	for _, sched := range schedules {
		for i, event := range sched.InterviewEvents {
			if event.HasSubmittedFeedback != nil && !*event.HasSubmittedFeedback {
				pending = &sched.InterviewEvents[i]
				break scan
			}
		}
	}
	if pending == nil || pending.InterviewID == "" {
		return nil, fmt.Errorf("%w: feedback may have already been submitted for application %s",
			core.ErrNoPendingInterview, applicationID)
	}

	userID := ""
	if len(pending.InterviewerUserIDs) > 0 {
		userID = pending.InterviewerUserIDs[0]
	}

	raw, err = c.call(ctx, "interview.info", map[string]any{"id": pending.InterviewID})
	if err != nil {
		return nil, err
	}
	var interview interviewInfo
	if err := json.Unmarshal(raw, &interview); err != nil {
		return nil, core.UpstreamError("ashby", err)
	}
	if interview.FeedbackFormDefinitionID == "" {
		return nil, fmt.Errorf("%w: interview %s", core.ErrNoFeedbackForm, pending.InterviewID)
	}

	raw, err = c.call(ctx, "feedbackFormDefinition.info", map[string]any{
		"feedbackFormDefinitionId": interview.FeedbackFormDefinitionID,
	})
	if err != nil {
		return nil, err
	}
	var form formDefinition
	if err := json.Unmarshal(raw, &form); err != nil {
		return nil, core.UpstreamError("ashby", err)
	}

	recommendationPath := ""
	var richTextPaths []string
	for _, section := range form.Sections {
		for _, field := range section.Fields {
			switch field.Type {
			case "ValueSelect":
				if recommendationPath == "" {
					recommendationPath = field.Path
				}
			case "RichText":
				richTextPaths = append(richTextPaths, field.Path)
			}
		}
	}
	if recommendationPath == "" {
		recommendationPath = fallbackRecommendationPath
	}

	submissions := []fieldSubmission{
		{Path: recommendationPath, Value: strconv.Itoa(score)},
	}
	// The summary goes into the first rich-text field only; any further
	// rich-text fields stay untouched.
	if len(richTextPaths) > 0 {
		submissions = append(submissions, fieldSubmission{
			Path:  richTextPaths[0],
			Value: map[string]any{"type": "PlainText", "value": summary},
		})
	}

	payload := map[string]any{
		"applicationId":    applicationID,
		"formDefinitionId": interview.FeedbackFormDefinitionID,
		"interviewEventId": pending.ID,
		"feedbackForm":     map[string]any{"fieldSubmissions": submissions},
	}
	if userID != "" {
		payload["userId"] = userID
	}

	return c.call(ctx, "applicationFeedback.submit", payload)
}

type FeedbackTool struct {
	client *Client
	handle mcp.Tool
}

func NewFeedbackTool(client *Client) core.Tool {
	t := &FeedbackTool{client: client}
	t.handle = mcp.NewTool(
		"submit_ashby_feedback",
		mcp.WithDescription("Submit interview scorecard feedback for an Ashby application. Finds the pending interview event and its feedback form automatically."),
		mcp.WithString("application_id",
			mcp.Required(),
			mcp.Description("The Ashby application ID"),
		),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Free-text feedback summary"),
		),
		mcp.WithNumber("score",
			mcp.Required(),
			mcp.Description("Overall score from 1 (lowest) to 4 (highest)"),
		),
		mcp.WithString("recommendation",
			mcp.Required(),
			mcp.Description("Overall hiring recommendation"),
			mcp.Enum("definitely_yes", "strong_yes", "yes", "no", "strong_no", "definitely_no"),
		),
	)
	return t
}

func (t *FeedbackTool) Handle() mcp.Tool {
	return t.handle
}

func (t *FeedbackTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	applicationID, err := utils.GetRequiredStringParam(request, "application_id")
	if err != nil {
		return nil, err
	}
	summary, err := utils.GetRequiredStringParam(request, "summary")
	if err != nil {
		return nil, err
	}
	score, err := utils.GetRequiredIntParam(request, "score")
	if err != nil {
		return nil, err
	}
	recommendation, err := utils.GetRequiredStringParam(request, "recommendation")
	if err != nil {
		return nil, err
	}

	raw, err := t.client.SubmitFeedback(ctx, applicationID, summary, score, recommendation)
	if err != nil {
		return nil, err
	}
	return rawResult(raw)
}
