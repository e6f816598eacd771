package gmail

import (
	"encoding/base64"
	"strings"

	gmailapi "google.golang.org/api/gmail/v1"
)

// MessageSummary is the stable shape a search result is reduced to. The
// full body deliberately needs a second read.
type MessageSummary struct {
	ID       string   `json:"id"`
	ThreadID string   `json:"threadId"`
	Subject  string   `json:"subject"`
	From     string   `json:"from"`
	To       string   `json:"to"`
	Cc       string   `json:"cc"`
	Date     string   `json:"date"`
	Snippet  string   `json:"snippet"`
	LabelIDs []string `json:"labelIds"`
}

// MessageDetail adds the plain-text body and attachment filenames.
type MessageDetail struct {
	MessageSummary
	Body        string   `json:"body"`
	Attachments []string `json:"attachments"`
}

func headerValue(part *gmailapi.MessagePart, name string) string {
	if part == nil {
		return ""
	}
	for _, h := range part.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

func summarize(msg *gmailapi.Message) MessageSummary {
	summary := MessageSummary{
		ID:       msg.Id,
		ThreadID: msg.ThreadId,
		Snippet:  msg.Snippet,
		LabelIDs: msg.LabelIds,
	}
	if summary.LabelIDs == nil {
		summary.LabelIDs = []string{}
	}
	summary.Subject = headerValue(msg.Payload, "Subject")
	summary.From = headerValue(msg.Payload, "From")
	summary.To = headerValue(msg.Payload, "To")
	summary.Cc = headerValue(msg.Payload, "Cc")
	summary.Date = headerValue(msg.Payload, "Date")
	return summary
}

func detail(msg *gmailapi.Message) MessageDetail {
	return MessageDetail{
		MessageSummary: summarize(msg),
		Body:           plainTextBody(msg.Payload),
		Attachments:    attachmentNames(msg.Payload),
	}
}

// plainTextBody walks a possibly-nested multipart tree depth-first and
// returns the first text/plain leaf it finds, or "" when there is none.
func plainTextBody(part *gmailapi.MessagePart) string {
	if part == nil {
		return ""
	}
	if len(part.Parts) > 0 {
		for _, p := range part.Parts {
			if body := plainTextBody(p); body != "" {
				return body
			}
		}
		return ""
	}
	if part.MimeType != "text/plain" || part.Body == nil || part.Body.Data == "" {
		return ""
	}
	decoded, err := decodeWebSafe(part.Body.Data)
	if err != nil {
		return ""
	}
	return decoded
}

// attachmentNames lists filenames declared on first-level parts only.
func attachmentNames(part *gmailapi.MessagePart) []string {
	names := []string{}
	if part == nil {
		return names
	}
	for _, p := range part.Parts {
		if p.Filename != "" {
			names = append(names, p.Filename)
		}
	}
	return names
}

// decodeWebSafe decodes Gmail's base64url body data, which arrives both
// with and without padding.
func decodeWebSafe(data string) (string, error) {
	decoded, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
