package gmail

import (
	"encoding/base64"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func decodeRaw(raw string) string {
	decoded, err := base64.URLEncoding.DecodeString(raw)
	So(err, ShouldBeNil)
	return string(decoded)
}

func TestTextMessage(t *testing.T) {
	Convey("Given a freshly composed message", t, func() {
		m := newTextMessage("to@example.com", "cc@example.com", "Hello", "the body")
		rendered := decodeRaw(m.Encode())

		Convey("Headers come before a blank line, then the body", func() {
			headers, body, found := strings.Cut(rendered, "\r\n\r\n")
			So(found, ShouldBeTrue)
			So(body, ShouldEqual, "the body")
			So(headers, ShouldContainSubstring, "To: to@example.com")
			So(headers, ShouldContainSubstring, "Cc: cc@example.com")
			So(headers, ShouldContainSubstring, "Subject: Hello")
			So(headers, ShouldContainSubstring, `Content-Type: text/plain; charset="UTF-8"`)
		})

		Convey("Header order is insertion order", func() {
			toIdx := strings.Index(rendered, "To:")
			subjectIdx := strings.Index(rendered, "Subject:")
			So(toIdx, ShouldBeLessThan, subjectIdx)
		})
	})

	Convey("Given a message without cc", t, func() {
		m := newTextMessage("to@example.com", "", "Hello", "body")
		rendered := decodeRaw(m.Encode())

		Convey("No Cc header is emitted", func() {
			So(rendered, ShouldNotContainSubstring, "Cc:")
		})
	})

	Convey("Given headers amended after first encode", t, func() {
		m := newTextMessage("to@example.com", "", "Re: thread", "reply body")
		before := decodeRaw(m.Encode())
		So(before, ShouldNotContainSubstring, "In-Reply-To:")

		m.SetHeader("In-Reply-To", "<orig@mail.example.com>")
		m.SetHeader("References", "<orig@mail.example.com>")
		after := decodeRaw(m.Encode())

		Convey("Re-encoding reflects the amended headers", func() {
			So(after, ShouldContainSubstring, "In-Reply-To: <orig@mail.example.com>")
			So(after, ShouldContainSubstring, "References: <orig@mail.example.com>")
		})

		Convey("Setting an existing header overwrites in place", func() {
			m.SetHeader("In-Reply-To", "<other@mail.example.com>")
			rendered := decodeRaw(m.Encode())
			So(rendered, ShouldContainSubstring, "In-Reply-To: <other@mail.example.com>")
			So(strings.Count(rendered, "In-Reply-To:"), ShouldEqual, 1)
		})
	})
}
