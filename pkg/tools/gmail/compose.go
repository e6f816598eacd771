package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/develophealth/mcp-server-comms-bridge/core"
	"github.com/develophealth/mcp-server-comms-bridge/pkg/tools/utils"
)

// textMessage assembles the raw RFC 2822 blob the drafts and send
// endpoints consume. Headers can be amended after construction; Encode
// always reflects the current header set.
type textMessage struct {
	headers []string
	values  map[string]string
	body    string
}

func newTextMessage(to, cc, subject, body string) *textMessage {
	m := &textMessage{values: make(map[string]string), body: body}
	m.SetHeader("To", to)
	if cc != "" {
		m.SetHeader("Cc", cc)
	}
	m.SetHeader("Subject", subject)
	m.SetHeader("MIME-Version", "1.0")
	m.SetHeader("Content-Type", `text/plain; charset="UTF-8"`)
	return m
}

func (m *textMessage) SetHeader(name, value string) {
	if _, exists := m.values[name]; !exists {
		m.headers = append(m.headers, name)
	}
	m.values[name] = value
}

// Encode renders the message and returns it base64url-encoded, the form
// the Gmail API expects in a Raw field.
func (m *textMessage) Encode() string {
	var b strings.Builder
	for _, name := range m.headers {
		fmt.Fprintf(&b, "%s: %s\r\n", name, m.values[name])
	}
	b.WriteString("\r\n")
	b.WriteString(m.body)
	return base64.URLEncoding.EncodeToString([]byte(b.String()))
}

// DraftTool creates a draft, optionally threaded as a reply.
type DraftTool struct {
	svc    *gmailapi.Service
	handle mcp.Tool
}

func NewDraftTool(svc *gmailapi.Service) core.Tool {
	t := &DraftTool{svc: svc}
	t.handle = mcp.NewTool(
		"draft_email",
		mcp.WithDescription("Create a draft email. Saved to Drafts, NOT sent. Use reply_to_message_id to thread as a reply."),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient email address(es)"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject line"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Email body (plain text)"),
		),
		mcp.WithString("cc",
			mcp.Description("CC email address(es)"),
			mcp.DefaultString(""),
		),
		mcp.WithString("reply_to_message_id",
			mcp.Description("Message ID to reply to (threads the reply)"),
			mcp.DefaultString(""),
		),
	)
	return t
}

func (t *DraftTool) Handle() mcp.Tool {
	return t.handle
}

func (t *DraftTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	to, err := utils.GetRequiredStringParam(request, "to")
	if err != nil {
		return nil, err
	}
	subject, err := utils.GetRequiredStringParam(request, "subject")
	if err != nil {
		return nil, err
	}
	body, err := utils.GetRequiredStringParam(request, "body")
	if err != nil {
		return nil, err
	}
	cc, err := utils.GetOptionalStringParam(request, "cc")
	if err != nil {
		return nil, err
	}
	replyTo, err := utils.GetOptionalStringParam(request, "reply_to_message_id")
	if err != nil {
		return nil, err
	}

	message := newTextMessage(to, cc, subject, body)
	draft := &gmailapi.Draft{
		Message: &gmailapi.Message{Raw: message.Encode()},
	}

	if replyTo != "" {
		orig, err := t.svc.Users.Messages.Get("me", replyTo).
			Format("metadata").
			MetadataHeaders("Subject", "Message-ID").
			Context(ctx).Do()
		if err != nil {
			return nil, core.UpstreamError("gmail", err)
		}

		// Inherit the thread so mail clients group the reply.
		if orig.ThreadId != "" {
			draft.Message.ThreadId = orig.ThreadId
		}
		if origMessageID := headerValue(orig.Payload, "Message-ID"); origMessageID != "" {
			message.SetHeader("In-Reply-To", origMessageID)
			message.SetHeader("References", origMessageID)
			// Re-encode so the raw blob reflects the amended headers.
			draft.Message.Raw = message.Encode()
		}
	}

	created, err := t.svc.Users.Drafts.Create("me", draft).Context(ctx).Do()
	if err != nil {
		return nil, core.UpstreamError("gmail", err)
	}

	result := map[string]string{
		"draftId": created.Id,
	}
	if created.Message != nil {
		result["messageId"] = created.Message.Id
		result["threadId"] = created.Message.ThreadId
	}
	return core.JSONResult(result)
}

// SendDraftTool sends a previously created draft.
type SendDraftTool struct {
	svc    *gmailapi.Service
	handle mcp.Tool
}

func NewSendDraftTool(svc *gmailapi.Service) core.Tool {
	t := &SendDraftTool{svc: svc}
	t.handle = mcp.NewTool(
		"send_draft",
		mcp.WithDescription("Send a previously created draft by its draftId."),
		mcp.WithString("draft_id",
			mcp.Required(),
			mcp.Description("The Gmail draft ID to send"),
		),
	)
	return t
}

func (t *SendDraftTool) Handle() mcp.Tool {
	return t.handle
}

func (t *SendDraftTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	draftID, err := utils.GetRequiredStringParam(request, "draft_id")
	if err != nil {
		return nil, err
	}

	sent, err := t.svc.Users.Drafts.Send("me", &gmailapi.Draft{Id: draftID}).Context(ctx).Do()
	if err != nil {
		return nil, core.UpstreamError("gmail", err)
	}

	return core.JSONResult(map[string]any{
		"messageId": sent.Id,
		"threadId":  sent.ThreadId,
		"labelIds":  sent.LabelIds,
	})
}

// SendTool composes and immediately sends, skipping the draft review step.
type SendTool struct {
	svc    *gmailapi.Service
	handle mcp.Tool
}

func NewSendTool(svc *gmailapi.Service) core.Tool {
	t := &SendTool{svc: svc}
	t.handle = mcp.NewTool(
		"send_email",
		mcp.WithDescription("Compose and immediately send an email (no draft review step)."),
		mcp.WithString("to",
			mcp.Required(),
			mcp.Description("Recipient email address(es)"),
		),
		mcp.WithString("subject",
			mcp.Required(),
			mcp.Description("Email subject line"),
		),
		mcp.WithString("body",
			mcp.Required(),
			mcp.Description("Email body (plain text)"),
		),
		mcp.WithString("cc",
			mcp.Description("CC email address(es)"),
			mcp.DefaultString(""),
		),
	)
	return t
}

func (t *SendTool) Handle() mcp.Tool {
	return t.handle
}

func (t *SendTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	to, err := utils.GetRequiredStringParam(request, "to")
	if err != nil {
		return nil, err
	}
	subject, err := utils.GetRequiredStringParam(request, "subject")
	if err != nil {
		return nil, err
	}
	body, err := utils.GetRequiredStringParam(request, "body")
	if err != nil {
		return nil, err
	}
	cc, err := utils.GetOptionalStringParam(request, "cc")
	if err != nil {
		return nil, err
	}

	message := newTextMessage(to, cc, subject, body)
	sent, err := t.svc.Users.Messages.Send("me", &gmailapi.Message{Raw: message.Encode()}).
		Context(ctx).Do()
	if err != nil {
		return nil, core.UpstreamError("gmail", err)
	}

	return core.JSONResult(map[string]any{
		"messageId": sent.Id,
		"threadId":  sent.ThreadId,
		"labelIds":  sent.LabelIds,
	})
}
