// Package gcal exposes the calendar tools: day listing with recurring
// events expanded to single instances, and full event lookup.
package gcal

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	calendarapi "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"github.com/develophealth/mcp-server-comms-bridge/core"
	"github.com/develophealth/mcp-server-comms-bridge/pkg/config"
	"github.com/develophealth/mcp-server-comms-bridge/pkg/tools/utils"
)

type Attendee struct {
	Email          string `json:"email"`
	DisplayName    string `json:"displayName"`
	ResponseStatus string `json:"responseStatus"`
	Self           bool   `json:"self"`
}

type Event struct {
	ID          string     `json:"id"`
	Summary     string     `json:"summary"`
	Start       string     `json:"start"`
	End         string     `json:"end"`
	Attendees   []Attendee `json:"attendees"`
	Description string     `json:"description"`
	HangoutLink string     `json:"hangoutLink"`
	HTMLLink    string     `json:"htmlLink"`
	Status      string     `json:"status"`
}

func formatEvent(event *calendarapi.Event) Event {
	out := Event{
		ID:          event.Id,
		Summary:     event.Summary,
		Attendees:   []Attendee{},
		Description: event.Description,
		HangoutLink: event.HangoutLink,
		HTMLLink:    event.HtmlLink,
		Status:      event.Status,
	}
	if event.Start != nil {
		out.Start = event.Start.DateTime
		if out.Start == "" {
			out.Start = event.Start.Date
		}
	}
	if event.End != nil {
		out.End = event.End.DateTime
		if out.End == "" {
			out.End = event.End.Date
		}
	}
	for _, a := range event.Attendees {
		out.Attendees = append(out.Attendees, Attendee{
			Email:          a.Email,
			DisplayName:    a.DisplayName,
			ResponseStatus: a.ResponseStatus,
			Self:           a.Self,
		})
	}
	return out
}

// dayWindow returns the 24-hour boundaries for a YYYY-MM-DD date, or for
// today in the process-local timezone when date is empty. The boundaries
// are local wall-clock midnights rendered with a literal Z suffix, which
// matches how the acting user's calendar is queried upstream.
func dayWindow(date string) (string, string, error) {
	var day time.Time
	if date == "" {
		now := time.Now()
		day = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	} else {
		parsed, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			return "", "", fmt.Errorf("%w: date must be YYYY-MM-DD: %v", core.ErrMalformedArgument, err)
		}
		day = parsed
	}

	const stamp = "2006-01-02T15:04:05"
	return day.Format(stamp) + "Z", day.AddDate(0, 0, 1).Format(stamp) + "Z", nil
}

type Provider struct {
	Tools map[string]core.Tool
}

func NewProvider(ctx context.Context, cfg *config.Config) (*Provider, error) {
	client, err := cfg.GoogleHTTPClient(ctx, config.CalendarScopes...)
	if err != nil {
		return nil, core.MissingConfigError("calendar: " + err.Error())
	}

	svc, err := calendarapi.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, err
	}

	return newProvider(svc), nil
}

func newProvider(svc *calendarapi.Service) *Provider {
	return &Provider{
		Tools: map[string]core.Tool{
			"list_calendar_events": NewListTool(svc),
			"get_calendar_event":   NewGetTool(svc),
		},
	}
}

// ListTool lists a day's events, recurring events expanded to instances,
// ordered by start time.
type ListTool struct {
	svc    *calendarapi.Service
	handle mcp.Tool
}

func NewListTool(svc *calendarapi.Service) core.Tool {
	t := &ListTool{svc: svc}
	t.handle = mcp.NewTool(
		"list_calendar_events",
		mcp.WithDescription("List calendar events for a date (default: today). Returns title, time, attendees with email/RSVP, description, meet link."),
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

	timeMin, timeMax, err := dayWindow(date)
	if err != nil {
		return nil, err
	}

	resp, err := t.svc.Events.List("primary").
		TimeMin(timeMin).
		TimeMax(timeMax).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).Do()
	if err != nil {
		return nil, core.UpstreamError("calendar", err)
	}

	events := make([]Event, 0, len(resp.Items))
	for _, item := range resp.Items {
		events = append(events, formatEvent(item))
	}

	return core.JSONResult(events)
}

// GetTool returns full details of one event.
type GetTool struct {
	svc    *calendarapi.Service
	handle mcp.Tool
}

func NewGetTool(svc *calendarapi.Service) core.Tool {
	t := &GetTool{svc: svc}
	t.handle = mcp.NewTool(
		"get_calendar_event",
		mcp.WithDescription("Get full details of a specific calendar event by ID."),
		mcp.WithString("event_id",
			mcp.Required(),
			mcp.Description("The Google Calendar event ID"),
		),
	)
	return t
}

func (t *GetTool) Handle() mcp.Tool {
	return t.handle
}

func (t *GetTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	eventID, err := utils.GetRequiredStringParam(request, "event_id")
	if err != nil {
		return nil, err
	}

	event, err := t.svc.Events.Get("primary", eventID).Context(ctx).Do()
	if err != nil {
		return nil, core.UpstreamError("calendar", err)
	}

	return core.JSONResult(formatEvent(event))
}
