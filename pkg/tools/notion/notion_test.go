package notion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestReadPage(t *testing.T) {
	Convey("Given a page whose blocks span two pages of children", t, func() {
		blockRequests := 0
		var gotVersion string
		var gotCursors []string

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			gotVersion = r.Header.Get("Notion-Version")

			switch r.URL.Path {
			case "/pages/p1":
				json.NewEncoder(w).Encode(map[string]any{
					"id":               "p1",
					"url":              "https://notion.so/p1",
					"last_edited_time": "2026-08-20T12:00:00.000Z",
					"properties": map[string]any{
						"title": map[string]any{
							"type":  "title",
							"title": []map[string]any{{"plain_text": "Team Notes"}},
						},
					},
				})

			case "/blocks/p1/children":
				blockRequests++
				gotCursors = append(gotCursors, r.URL.Query().Get("start_cursor"))
				if r.URL.Query().Get("start_cursor") == "" {
					json.NewEncoder(w).Encode(map[string]any{
						"results": []map[string]any{
							{"type": "heading_1", "heading_1": map[string]any{
								"rich_text": []map[string]any{{"plain_text": "Agenda"}},
							}},
							{"type": "bulleted_list_item", "bulleted_list_item": map[string]any{
								"rich_text": []map[string]any{{"plain_text": "hiring"}},
							}},
						},
						"has_more":    true,
						"next_cursor": "cur2",
					})
				} else {
					json.NewEncoder(w).Encode(map[string]any{
						"results": []map[string]any{
							{"type": "paragraph", "paragraph": map[string]any{
								"rich_text": []map[string]any{{"plain_text": "Wrap up."}},
							}},
						},
						"has_more": false,
					})
				}

			default:
				w.WriteHeader(http.StatusNotFound)
			}
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "secret-token", "2022-06-28")

		Convey("Reading renders all blocks across both pages", func() {
			page, err := client.ReadPage(context.Background(), "p1")
			So(err, ShouldBeNil)

			So(page.Title, ShouldEqual, "Team Notes")
			So(page.Content, ShouldEqual, "\nAgenda\n\n  - hiring\nWrap up.")
			So(blockRequests, ShouldEqual, 2)
			So(gotCursors, ShouldResemble, []string{"", "cur2"})
			So(gotVersion, ShouldEqual, "2022-06-28")
		})
	})
}

func TestSearchPages(t *testing.T) {
	Convey("Given a search upstream", t, func() {
		var gotPayload map[string]any
		var gotPath, gotMethod string

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotMethod = r.Method
			json.NewDecoder(r.Body).Decode(&gotPayload)

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{
				"results": []map[string]any{
					{
						"id":               "p1",
						"object":           "page",
						"url":              "https://notion.so/p1",
						"last_edited_time": "2026-08-20T12:00:00.000Z",
						"properties": map[string]any{
							"title": map[string]any{
								"type":  "title",
								"title": []map[string]any{{"plain_text": "Team Notes"}},
							},
						},
					},
				},
			})
		}))
		defer srv.Close()

		client := NewClient(srv.URL, "secret-token", "2022-06-28")

		Convey("Results reduce to the stable page shape", func() {
			pages, err := client.SearchPages(context.Background(), "notes", 20)
			So(err, ShouldBeNil)

			So(len(pages), ShouldEqual, 1)
			So(pages[0].Title, ShouldEqual, "Team Notes")
			So(pages[0].Type, ShouldEqual, "page")

			Convey("The query sorts by last edited, newest first", func() {
				So(gotPath, ShouldEqual, "/search")
				So(gotMethod, ShouldEqual, http.MethodPost)
				So(gotPayload["query"], ShouldEqual, "notes")
				sort := gotPayload["sort"].(map[string]any)
				So(sort["timestamp"], ShouldEqual, "last_edited_time")
				So(sort["direction"], ShouldEqual, "descending")
			})
		})

		Convey("An oversized max_results is capped at the page size", func() {
			_, err := client.SearchPages(context.Background(), "notes", 500)
			So(err, ShouldBeNil)
			So(gotPayload["page_size"], ShouldEqual, float64(100))
		})
	})
}
