// Package gmail exposes the mail tools: search, read, thread read, draft,
// send and archive, all acting as the delegated user.
package gmail

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/develophealth/mcp-server-comms-bridge/core"
	"github.com/develophealth/mcp-server-comms-bridge/pkg/config"
	"github.com/develophealth/mcp-server-comms-bridge/pkg/tools/utils"
)

const defaultMaxResults = 20

// metadata headers requested for message summaries
var summaryHeaders = []string{"Subject", "From", "To", "Cc", "Date"}

type Provider struct {
	Tools map[string]core.Tool
}

func NewProvider(ctx context.Context, cfg *config.Config) (*Provider, error) {
	client, err := cfg.GoogleHTTPClient(ctx, config.GmailScopes...)
	if err != nil {
		return nil, core.MissingConfigError("gmail: " + err.Error())
	}

	svc, err := gmailapi.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, err
	}

	return newProvider(svc), nil
}

// newProvider wires the tools around an existing service so tests can
// point them at a fake upstream.
func newProvider(svc *gmailapi.Service) *Provider {
	return &Provider{
		Tools: map[string]core.Tool{
			"search_emails": NewSearchTool(svc),
			"read_email":    NewReadTool(svc),
			"read_thread":   NewThreadTool(svc),
			"draft_email":   NewDraftTool(svc),
			"send_draft":    NewSendDraftTool(svc),
			"send_email":    NewSendTool(svc),
			"archive_email": NewArchiveTool(svc),
		},
	}
}

// SearchTool searches mail with the provider's native query syntax.
type SearchTool struct {
	svc    *gmailapi.Service
	handle mcp.Tool
}

func NewSearchTool(svc *gmailapi.Service) core.Tool {
	t := &SearchTool{svc: svc}
	t.handle = mcp.NewTool(
		"search_emails",
		mcp.WithDescription("Search Gmail with query syntax (from:, subject:, after:, is:inbox, etc.). Returns id, threadId, subject, from, date, snippet for each result."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Gmail search query (e.g. 'is:inbox newer_than:1d')"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of results (default 20)"),
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

	list, err := t.svc.Users.Messages.List("me").
		Q(query).
		MaxResults(int64(maxResults)).
		Context(ctx).Do()
	if err != nil {
		return nil, core.UpstreamError("gmail", err)
	}

	summaries := make([]MessageSummary, 0, len(list.Messages))
	for _, m := range list.Messages {
		msg, err := t.svc.Users.Messages.Get("me", m.Id).
			Format("metadata").
			MetadataHeaders(summaryHeaders...).
			Context(ctx).Do()
		if err != nil {
			return nil, core.UpstreamError("gmail", err)
		}
		summaries = append(summaries, summarize(msg))
	}

	return core.JSONResult(summaries)
}

// ReadTool reads one message in full: body, headers, attachment names.
type ReadTool struct {
	svc    *gmailapi.Service
	handle mcp.Tool
}

func NewReadTool(svc *gmailapi.Service) core.Tool {
	t := &ReadTool{svc: svc}
	t.handle = mcp.NewTool(
		"read_email",
		mcp.WithDescription("Read a specific email message by ID. Returns full body, headers, and attachment names."),
		mcp.WithString("message_id",
			mcp.Required(),
			mcp.Description("The Gmail message ID"),
		),
	)
	return t
}

func (t *ReadTool) Handle() mcp.Tool {
	return t.handle
}

func (t *ReadTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	messageID, err := utils.GetRequiredStringParam(request, "message_id")
	if err != nil {
		return nil, err
	}

	msg, err := t.svc.Users.Messages.Get("me", messageID).
		Format("full").
		Context(ctx).Do()
	if err != nil {
		return nil, core.UpstreamError("gmail", err)
	}

	return core.JSONResult(detail(msg))
}

// ThreadTool reads an entire thread, messages in chronological order.
type ThreadTool struct {
	svc    *gmailapi.Service
	handle mcp.Tool
}

func NewThreadTool(svc *gmailapi.Service) core.Tool {
	t := &ThreadTool{svc: svc}
	t.handle = mcp.NewTool(
		"read_thread",
		mcp.WithDescription("Read an entire email thread by threadId. Returns all messages chronologically with full body."),
		mcp.WithString("thread_id",
			mcp.Required(),
			mcp.Description("The Gmail thread ID"),
		),
	)
	return t
}

func (t *ThreadTool) Handle() mcp.Tool {
	return t.handle
}

func (t *ThreadTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	threadID, err := utils.GetRequiredStringParam(request, "thread_id")
	if err != nil {
		return nil, err
	}

	thread, err := t.svc.Users.Threads.Get("me", threadID).
		Format("full").
		Context(ctx).Do()
	if err != nil {
		return nil, core.UpstreamError("gmail", err)
	}

	messages := make([]MessageDetail, 0, len(thread.Messages))
	for _, msg := range thread.Messages {
		messages = append(messages, detail(msg))
	}

	return core.JSONResult(messages)
}

// ArchiveTool removes the INBOX label from every message in the thread
// that owns the given message, not just the one message.
type ArchiveTool struct {
	svc    *gmailapi.Service
	handle mcp.Tool
}

func NewArchiveTool(svc *gmailapi.Service) core.Tool {
	t := &ArchiveTool{svc: svc}
	t.handle = mcp.NewTool(
		"archive_email",
		mcp.WithDescription("Archive an email by removing it from the inbox."),
		mcp.WithString("message_id",
			mcp.Required(),
			mcp.Description("The Gmail message ID to archive"),
		),
	)
	return t
}

func (t *ArchiveTool) Handle() mcp.Tool {
	return t.handle
}

func (t *ArchiveTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	messageID, err := utils.GetRequiredStringParam(request, "message_id")
	if err != nil {
		return nil, err
	}

	msg, err := t.svc.Users.Messages.Get("me", messageID).
		Format("minimal").
		Context(ctx).Do()
	if err != nil {
		return nil, core.UpstreamError("gmail", err)
	}

	_, err = t.svc.Users.Threads.Modify("me", msg.ThreadId, &gmailapi.ModifyThreadRequest{
		RemoveLabelIds: []string{"INBOX"},
	}).Context(ctx).Do()
	if err != nil {
		return nil, core.UpstreamError("gmail", err)
	}

	return core.JSONResult(map[string]string{
		"status":    "archived",
		"messageId": messageID,
		"threadId":  msg.ThreadId,
	})
}
