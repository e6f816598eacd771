package gcal

import (
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	calendarapi "google.golang.org/api/calendar/v3"

	"github.com/develophealth/mcp-server-comms-bridge/core"
)

func TestDayWindow(t *testing.T) {
	Convey("Given an explicit date", t, func() {
		timeMin, timeMax, err := dayWindow("2026-08-24")
		So(err, ShouldBeNil)

		Convey("The window spans that day's local midnights", func() {
			So(timeMin, ShouldEqual, "2026-08-24T00:00:00Z")
			So(timeMax, ShouldEqual, "2026-08-25T00:00:00Z")
		})
	})

	Convey("Given a date at a month boundary", t, func() {
		timeMin, timeMax, err := dayWindow("2026-01-31")
		So(err, ShouldBeNil)
		So(timeMin, ShouldEqual, "2026-01-31T00:00:00Z")
		So(timeMax, ShouldEqual, "2026-02-01T00:00:00Z")
	})

	Convey("Given no date", t, func() {
		timeMin, _, err := dayWindow("")
		So(err, ShouldBeNil)

		Convey("The window starts at today's local midnight", func() {
			now := time.Now()
			today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
			So(timeMin, ShouldEqual, today.Format("2006-01-02T15:04:05")+"Z")
		})
	})

	Convey("Given a malformed date", t, func() {
		_, _, err := dayWindow("24/08/2026")
		So(err, ShouldNotBeNil)
		So(errors.Is(err, core.ErrMalformedArgument), ShouldBeTrue)
	})
}

func TestFormatEvent(t *testing.T) {
	Convey("Given a timed event with attendees", t, func() {
		event := &calendarapi.Event{
			Id:      "ev1",
			Summary: "Standup",
			Status:  "confirmed",
			Start:   &calendarapi.EventDateTime{DateTime: "2026-08-24T09:00:00-07:00"},
			End:     &calendarapi.EventDateTime{DateTime: "2026-08-24T09:15:00-07:00"},
			Attendees: []*calendarapi.EventAttendee{
				{Email: "mel@develophealth.ai", ResponseStatus: "accepted", Self: true},
				{Email: "sam@develophealth.ai", DisplayName: "Sam", ResponseStatus: "needsAction"},
			},
			HangoutLink: "https://meet.example.com/abc",
		}

		out := formatEvent(event)

		Convey("Times, attendees and links carry through", func() {
			So(out.ID, ShouldEqual, "ev1")
			So(out.Start, ShouldEqual, "2026-08-24T09:00:00-07:00")
			So(out.End, ShouldEqual, "2026-08-24T09:15:00-07:00")
			So(len(out.Attendees), ShouldEqual, 2)
			So(out.Attendees[0].Self, ShouldBeTrue)
			So(out.Attendees[1].DisplayName, ShouldEqual, "Sam")
			So(out.HangoutLink, ShouldEqual, "https://meet.example.com/abc")
		})
	})

	Convey("Given an all-day event", t, func() {
		event := &calendarapi.Event{
			Id:    "ev2",
			Start: &calendarapi.EventDateTime{Date: "2026-08-24"},
			End:   &calendarapi.EventDateTime{Date: "2026-08-25"},
		}

		out := formatEvent(event)

		Convey("The date form is used when no datetime is set", func() {
			So(out.Start, ShouldEqual, "2026-08-24")
			So(out.End, ShouldEqual, "2026-08-25")
		})
	})

	Convey("Given an event with no attendees", t, func() {
		out := formatEvent(&calendarapi.Event{Id: "ev3"})

		Convey("The attendee list is empty, not nil", func() {
			So(out.Attendees, ShouldNotBeNil)
			So(len(out.Attendees), ShouldEqual, 0)
		})
	})
}
