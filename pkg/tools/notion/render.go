package notion

import (
	"encoding/json"
	"strings"
)

type richText struct {
	PlainText string `json:"plain_text"`
}

func joinPlainText(parts []richText) string {
	var b strings.Builder
	for _, part := range parts {
		b.WriteString(part.PlainText)
	}
	return b.String()
}

// blockPayload is the per-type payload a block carries under the key
// named by its type. Only the fields the renderer reads are decoded.
type blockPayload struct {
	RichText []richText `json:"rich_text"`
	Checked  bool       `json:"checked"`
}

// blockLine renders one block to its line of text. Unknown types with
// text render as-is; unknown types without text render as nothing.
func blockLine(data json.RawMessage) string {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return ""
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return ""
	}

	var payload blockPayload
	if raw, ok := fields[head.Type]; ok {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return ""
		}
	}
	text := joinPlainText(payload.RichText)

	switch head.Type {
	case "heading_1", "heading_2", "heading_3":
		return "\n" + text + "\n"
	case "bulleted_list_item":
		return "  - " + text
	case "numbered_list_item":
		return "  1. " + text
	case "to_do":
		marker := "[ ]"
		if payload.Checked {
			marker = "[x]"
		}
		return "  " + marker + " " + text
	case "code":
		return "```\n" + text + "\n```"
	case "divider":
		return "---"
	default:
		return text
	}
}

// pageProperty is a page property; only title extraction is needed.
type pageProperty struct {
	Type  string     `json:"type"`
	Title []richText `json:"title"`
}

func pageTitle(properties map[string]pageProperty) string {
	for _, prop := range properties {
		if prop.Type == "title" {
			return joinPlainText(prop.Title)
		}
	}
	return ""
}
