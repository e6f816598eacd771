package ashby

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/develophealth/mcp-server-comms-bridge/core"
)

// fakeAshby serves canned per-endpoint responses and records every
// payload posted to applicationFeedback.submit.
type fakeAshby struct {
	schedules   []map[string]any
	interview   map[string]any
	form        map[string]any
	submissions []map[string]any
	authUser    string
}

func (f *fakeAshby) handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		f.authUser, _, _ = r.BasicAuth()

		respond := func(results any) {
			json.NewEncoder(w).Encode(map[string]any{"results": results})
		}

		switch r.URL.Path {
		case "/interviewSchedule.list":
			respond(f.schedules)
		case "/interview.info":
			respond(f.interview)
		case "/feedbackFormDefinition.info":
			respond(f.form)
		case "/applicationFeedback.submit":
			var payload map[string]any
			json.NewDecoder(r.Body).Decode(&payload)
			f.submissions = append(f.submissions, payload)
			respond(map[string]any{"submittedFormInstanceId": "sub-1"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func TestSubmitFeedback(t *testing.T) {
	Convey("Given schedules where only event C has an explicit false flag", t, func() {
		fake := &fakeAshby{
			schedules: []map[string]any{
				{
					"interviewEvents": []map[string]any{
						{"id": "evA", "interviewId": "intA", "hasSubmittedFeedback": true},
					},
				},
				{
					"interviewEvents": []map[string]any{
						// B carries no flag at all; absent counts as submitted.
						{"id": "evB", "interviewId": "intB"},
						{
							"id": "evC", "interviewId": "intC",
							"interviewerUserIds":   []string{"user-9", "user-10"},
							"hasSubmittedFeedback": false,
						},
					},
				},
			},
			interview: map[string]any{"feedbackFormDefinitionId": "form-1"},
			form: map[string]any{
				"sections": []map[string]any{
					{
						"fields": []map[string]any{
							{"type": "RichText", "path": "p1"},
							{"type": "ValueSelect", "path": "p2"},
							{"type": "RichText", "path": "p3"},
						},
					},
				},
			},
		}
		srv := httptest.NewServer(fake.handler())
		defer srv.Close()

		client := NewClient(srv.URL, "test-key")

		Convey("The orchestrator selects C, not B", func() {
			_, err := client.SubmitFeedback(context.Background(), "app-1", "great interview", 4, "strong_yes")
			So(err, ShouldBeNil)

			So(len(fake.submissions), ShouldEqual, 1)
			So(fake.authUser, ShouldEqual, "test-key")
			submitted := fake.submissions[0]
			So(submitted["interviewEventId"], ShouldEqual, "evC")
			So(submitted["applicationId"], ShouldEqual, "app-1")
			So(submitted["formDefinitionId"], ShouldEqual, "form-1")

			Convey("The first interviewer is carried as userId", func() {
				So(submitted["userId"], ShouldEqual, "user-9")
			})

			Convey("Score routes to the ValueSelect path, summary to the first RichText only", func() {
				form := submitted["feedbackForm"].(map[string]any)
				fields := form["fieldSubmissions"].([]any)
				So(len(fields), ShouldEqual, 2)

				recommendation := fields[0].(map[string]any)
				So(recommendation["path"], ShouldEqual, "p2")
				So(recommendation["value"], ShouldEqual, "4")

				summary := fields[1].(map[string]any)
				So(summary["path"], ShouldEqual, "p1")
				value := summary["value"].(map[string]any)
				So(value["type"], ShouldEqual, "PlainText")
				So(value["value"], ShouldEqual, "great interview")

				for _, field := range fields {
					So(field.(map[string]any)["path"], ShouldNotEqual, "p3")
				}
			})
		})
	})

	Convey("Given zero schedules", t, func() {
		fake := &fakeAshby{schedules: []map[string]any{}}
		srv := httptest.NewServer(fake.handler())
		defer srv.Close()

		client := NewClient(srv.URL, "test-key")

		Convey("The call fails with no pending interview and writes nothing", func() {
			_, err := client.SubmitFeedback(context.Background(), "app-1", "text", 3, "yes")
			So(errors.Is(err, core.ErrNoPendingInterview), ShouldBeTrue)
			So(len(fake.submissions), ShouldEqual, 0)
		})
	})

	Convey("Given all events already submitted", t, func() {
		fake := &fakeAshby{
			schedules: []map[string]any{
				{
					"interviewEvents": []map[string]any{
						{"id": "evA", "interviewId": "intA", "hasSubmittedFeedback": true},
						{"id": "evB", "interviewId": "intB"},
					},
				},
			},
		}
		srv := httptest.NewServer(fake.handler())
		defer srv.Close()

		client := NewClient(srv.URL, "test-key")

		Convey("The absent flag is treated as submitted, so nothing is pending", func() {
			_, err := client.SubmitFeedback(context.Background(), "app-1", "text", 3, "yes")
			So(errors.Is(err, core.ErrNoPendingInterview), ShouldBeTrue)
			So(len(fake.submissions), ShouldEqual, 0)
		})
	})

	Convey("Given an interview without a feedback form definition", t, func() {
		fake := &fakeAshby{
			schedules: []map[string]any{
				{
					"interviewEvents": []map[string]any{
						{"id": "evA", "interviewId": "intA", "hasSubmittedFeedback": false},
					},
				},
			},
			interview: map[string]any{},
		}
		srv := httptest.NewServer(fake.handler())
		defer srv.Close()

		client := NewClient(srv.URL, "test-key")

		Convey("The call fails with no feedback form and writes nothing", func() {
			_, err := client.SubmitFeedback(context.Background(), "app-1", "text", 3, "yes")
			So(errors.Is(err, core.ErrNoFeedbackForm), ShouldBeTrue)
			So(len(fake.submissions), ShouldEqual, 0)
		})
	})

	Convey("Given a form with no ValueSelect field", t, func() {
		fake := &fakeAshby{
			schedules: []map[string]any{
				{
					"interviewEvents": []map[string]any{
						{"id": "evA", "interviewId": "intA", "hasSubmittedFeedback": false},
					},
				},
			},
			interview: map[string]any{"feedbackFormDefinitionId": "form-1"},
			form: map[string]any{
				"sections": []map[string]any{
					{"fields": []map[string]any{{"type": "RichText", "path": "notes"}}},
				},
			},
		}
		srv := httptest.NewServer(fake.handler())
		defer srv.Close()

		client := NewClient(srv.URL, "test-key")

		Convey("The recommendation falls back to the default path", func() {
			_, err := client.SubmitFeedback(context.Background(), "app-1", "text", 2, "no")
			So(err, ShouldBeNil)

			form := fake.submissions[0]["feedbackForm"].(map[string]any)
			fields := form["fieldSubmissions"].([]any)
			So(fields[0].(map[string]any)["path"], ShouldEqual, "overall_recommendation")
		})
	})
}
