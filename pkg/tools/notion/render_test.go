package notion

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestBlockLine(t *testing.T) {
	Convey("Given blocks of each supported type", t, func() {
		cases := []struct {
			name  string
			block string
			want  string
		}{
			{
				"heading gets surrounding blank lines",
				`{"type":"heading_1","heading_1":{"rich_text":[{"plain_text":"Roadmap"}]}}`,
				"\nRoadmap\n",
			},
			{
				"paragraph renders as-is",
				`{"type":"paragraph","paragraph":{"rich_text":[{"plain_text":"Plain "},{"plain_text":"text."}]}}`,
				"Plain text.",
			},
			{
				"bulleted list item gets a dash prefix",
				`{"type":"bulleted_list_item","bulleted_list_item":{"rich_text":[{"plain_text":"one"}]}}`,
				"  - one",
			},
			{
				"numbered list item gets a number prefix",
				`{"type":"numbered_list_item","numbered_list_item":{"rich_text":[{"plain_text":"two"}]}}`,
				"  1. two",
			},
			{
				"unchecked to_do renders an empty box",
				`{"type":"to_do","to_do":{"rich_text":[{"plain_text":"ship it"}],"checked":false}}`,
				"  [ ] ship it",
			},
			{
				"checked to_do renders a checked box",
				`{"type":"to_do","to_do":{"rich_text":[{"plain_text":"done"}],"checked":true}}`,
				"  [x] done",
			},
			{
				"code block gets fences",
				`{"type":"code","code":{"rich_text":[{"plain_text":"x := 1"}]}}`,
				"```\nx := 1\n```",
			},
			{
				"divider renders a horizontal rule",
				`{"type":"divider","divider":{}}`,
				"---",
			},
			{
				"unknown type with text renders the text",
				`{"type":"callout","callout":{"rich_text":[{"plain_text":"note"}]}}`,
				"note",
			},
			{
				"unknown type without text renders nothing",
				`{"type":"embed","embed":{"url":"https://example.com"}}`,
				"",
			},
		}

		for _, tc := range cases {
			Convey(tc.name, func() {
				So(blockLine(json.RawMessage(tc.block)), ShouldEqual, tc.want)
			})
		}
	})
}

func TestPageTitle(t *testing.T) {
	Convey("Given page properties", t, func() {
		Convey("The title-typed property wins regardless of its key", func() {
			props := map[string]pageProperty{
				"Status": {Type: "select"},
				"Name": {Type: "title", Title: []richText{
					{PlainText: "Hiring "}, {PlainText: "Plan"},
				}},
			}
			So(pageTitle(props), ShouldEqual, "Hiring Plan")
		})

		Convey("No title property yields an empty string", func() {
			So(pageTitle(map[string]pageProperty{"Status": {Type: "select"}}), ShouldEqual, "")
		})
	})
}
