// Package slack exposes the team-chat tools. Everything runs on the user
// token so messages, thread reads and searches act as the configured user
// and see that user's channel membership, never a bot identity.
package slack

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	slackapi "github.com/slack-go/slack"

	"github.com/develophealth/mcp-server-comms-bridge/core"
	"github.com/develophealth/mcp-server-comms-bridge/pkg/config"
	"github.com/develophealth/mcp-server-comms-bridge/pkg/tools/utils"
)

const (
	defaultMaxResults   = 20
	defaultChannelLimit = 100
)

type Provider struct {
	Tools map[string]core.Tool
}

func NewProvider(cfg *config.Config) (*Provider, error) {
	if cfg.Slack.UserToken == "" {
		return nil, core.MissingConfigError("missing SLACK_USER_TOKEN environment variable")
	}
	return newProvider(slackapi.New(cfg.Slack.UserToken)), nil
}

func newProvider(client *slackapi.Client) *Provider {
	return &Provider{
		Tools: map[string]core.Tool{
			"search_slack_messages": NewSearchTool(client),
			"read_slack_thread":     NewThreadTool(client),
			"list_slack_channels":   NewChannelsTool(client),
			"send_slack_message":    NewSendTool(client),
		},
	}
}

// Message is the stable shape a search hit is reduced to.
type Message struct {
	Channel   string `json:"channel"`
	ChannelID string `json:"channel_id"`
	User      string `json:"user"`
	Text      string `json:"text"`
	TS        string `json:"ts"`
	Permalink string `json:"permalink"`
}

type SearchTool struct {
	client *slackapi.Client
	handle mcp.Tool
}

func NewSearchTool(client *slackapi.Client) core.Tool {
	t := &SearchTool{client: client}
	t.handle = mcp.NewTool(
		"search_slack_messages",
		mcp.WithDescription("Search Slack messages across all public and joined channels."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Slack search query (supports in:#channel, from:@user, etc.)"),
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

	params := slackapi.NewSearchParameters()
	params.Count = maxResults

	results, err := t.client.SearchMessagesContext(ctx, query, params)
	if err != nil {
		return nil, core.UpstreamError("slack", err)
	}

	messages := make([]Message, 0, len(results.Matches))
	for _, match := range results.Matches {
		messages = append(messages, Message{
			Channel:   match.Channel.Name,
			ChannelID: match.Channel.ID,
			User:      match.Username,
			Text:      match.Text,
			TS:        match.Timestamp,
			Permalink: match.Permalink,
		})
	}
	return core.JSONResult(messages)
}

// ThreadMessage is one reply in a thread, user resolved to a name.
type ThreadMessage struct {
	User string `json:"user"`
	Text string `json:"text"`
	TS   string `json:"ts"`
}

type ThreadTool struct {
	client *slackapi.Client
	handle mcp.Tool
}

func NewThreadTool(client *slackapi.Client) core.Tool {
	t := &ThreadTool{client: client}
	t.handle = mcp.NewTool(
		"read_slack_thread",
		mcp.WithDescription("Read a full Slack thread by channel ID and thread timestamp."),
		mcp.WithString("channel_id",
			mcp.Required(),
			mcp.Description("The channel ID containing the thread"),
		),
		mcp.WithString("thread_ts",
			mcp.Required(),
			mcp.Description("The thread's root message timestamp"),
		),
	)
	return t
}

func (t *ThreadTool) Handle() mcp.Tool {
	return t.handle
}

// resolveUserName resolves a user ID to a display name, falling back to
// the ID when the lookup fails.
func (t *ThreadTool) resolveUserName(ctx context.Context, userID string) string {
	user, err := t.client.GetUserInfoContext(ctx, userID)
	if err != nil {
		return userID
	}
	if user.Profile.RealName != "" {
		return user.Profile.RealName
	}
	if user.Profile.DisplayName != "" {
		return user.Profile.DisplayName
	}
	return userID
}

func (t *ThreadTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	channelID, err := utils.GetRequiredStringParam(request, "channel_id")
	if err != nil {
		return nil, err
	}
	threadTS, err := utils.GetRequiredStringParam(request, "thread_ts")
	if err != nil {
		return nil, err
	}

	replies, _, _, err := t.client.GetConversationRepliesContext(ctx, &slackapi.GetConversationRepliesParameters{
		ChannelID: channelID,
		Timestamp: threadTS,
	})
	if err != nil {
		return nil, core.UpstreamError("slack", err)
	}

	userCache := make(map[string]string)
	messages := make([]ThreadMessage, 0, len(replies))
	for _, msg := range replies {
		name := msg.User
		if msg.User != "" {
			if cached, ok := userCache[msg.User]; ok {
				name = cached
			} else {
				name = t.resolveUserName(ctx, msg.User)
				userCache[msg.User] = name
			}
		}
		messages = append(messages, ThreadMessage{
			User: name,
			Text: msg.Text,
			TS:   msg.Timestamp,
		})
	}
	return core.JSONResult(messages)
}

// Channel is the stable shape a channel listing entry is reduced to.
type Channel struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Topic      string `json:"topic"`
	NumMembers int    `json:"num_members"`
}

type ChannelsTool struct {
	client *slackapi.Client
	handle mcp.Tool
}

func NewChannelsTool(client *slackapi.Client) core.Tool {
	t := &ChannelsTool{client: client}
	t.handle = mcp.NewTool(
		"list_slack_channels",
		mcp.WithDescription("List available Slack channels (public and private, archived excluded)."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of channels (default 100)"),
			mcp.DefaultNumber(defaultChannelLimit),
		),
	)
	return t
}

func (t *ChannelsTool) Handle() mcp.Tool {
	return t.handle
}

func (t *ChannelsTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit, err := utils.GetOptionalIntParam(request, "limit")
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultChannelLimit
	}

	channels, _, err := t.client.GetConversationsContext(ctx, &slackapi.GetConversationsParameters{
		Types:           []string{"public_channel", "private_channel"},
		ExcludeArchived: true,
		Limit:           limit,
	})
	if err != nil {
		return nil, core.UpstreamError("slack", err)
	}

	out := make([]Channel, 0, len(channels))
	for _, ch := range channels {
		out = append(out, Channel{
			ID:         ch.ID,
			Name:       ch.Name,
			Topic:      ch.Topic.Value,
			NumMembers: ch.NumMembers,
		})
	}
	return core.JSONResult(out)
}

type SendTool struct {
	client *slackapi.Client
	handle mcp.Tool
}

func NewSendTool(client *slackapi.Client) core.Tool {
	t := &SendTool{client: client}
	t.handle = mcp.NewTool(
		"send_slack_message",
		mcp.WithDescription("Post a message to a Slack channel as the configured user (not a bot)."),
		mcp.WithString("channel",
			mcp.Required(),
			mcp.Description("Channel ID or name to post to"),
		),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("The message text"),
		),
		mcp.WithString("thread_ts",
			mcp.Description("Thread timestamp to reply to"),
			mcp.DefaultString(""),
		),
	)
	return t
}

func (t *SendTool) Handle() mcp.Tool {
	return t.handle
}

func (t *SendTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	channel, err := utils.GetRequiredStringParam(request, "channel")
	if err != nil {
		return nil, err
	}
	text, err := utils.GetRequiredStringParam(request, "text")
	if err != nil {
		return nil, err
	}
	threadTS, err := utils.GetOptionalStringParam(request, "thread_ts")
	if err != nil {
		return nil, err
	}

	opts := []slackapi.MsgOption{
		slackapi.MsgOptionText(text, false),
	}
	if threadTS != "" {
		opts = append(opts, slackapi.MsgOptionTS(threadTS))
	}

	postedChannel, timestamp, err := t.client.PostMessageContext(ctx, channel, opts...)
	if err != nil {
		return nil, core.UpstreamError("slack", err)
	}

	return core.JSONResult(map[string]any{
		"ok":      true,
		"channel": postedChannel,
		"ts":      timestamp,
	})
}
