package drive

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	docsapi "google.golang.org/api/docs/v1"
	slidesapi "google.golang.org/api/slides/v1"
)

func TestDocText(t *testing.T) {
	Convey("Given a document with paragraphs and non-paragraph elements", t, func() {
		doc := &docsapi.Document{
			Body: &docsapi.Body{
				Content: []*docsapi.StructuralElement{
					{
						Paragraph: &docsapi.Paragraph{
							Elements: []*docsapi.ParagraphElement{
								{TextRun: &docsapi.TextRun{Content: "First line.\n"}},
							},
						},
					},
					{SectionBreak: &docsapi.SectionBreak{}},
					{
						Paragraph: &docsapi.Paragraph{
							Elements: []*docsapi.ParagraphElement{
								{TextRun: &docsapi.TextRun{Content: "Second "}},
								{TextRun: &docsapi.TextRun{Content: "line.\n"}},
							},
						},
					},
				},
			},
		}

		Convey("Text runs concatenate in order, non-paragraphs skipped", func() {
			So(docText(doc), ShouldEqual, "First line.\nSecond line.\n")
		})
	})

	Convey("Given a nil document or body", t, func() {
		So(docText(nil), ShouldEqual, "")
		So(docText(&docsapi.Document{}), ShouldEqual, "")
	})
}

func TestSlidesText(t *testing.T) {
	Convey("Given a presentation with text, empty and untitled slides", t, func() {
		presentation := &slidesapi.Presentation{
			Slides: []*slidesapi.Page{
				{
					PageElements: []*slidesapi.PageElement{
						{
							Shape: &slidesapi.Shape{
								Text: &slidesapi.TextContent{
									TextElements: []*slidesapi.TextElement{
										{TextRun: &slidesapi.TextRun{Content: "Title\n"}},
										{TextRun: &slidesapi.TextRun{Content: "Subtitle"}},
									},
								},
							},
						},
					},
				},
				{
					// No text anywhere on this slide.
					PageElements: []*slidesapi.PageElement{{Shape: &slidesapi.Shape{}}},
				},
				{
					PageElements: []*slidesapi.PageElement{
						{
							Shape: &slidesapi.Shape{
								Text: &slidesapi.TextContent{
									TextElements: []*slidesapi.TextElement{
										{TextRun: &slidesapi.TextRun{Content: "Closing"}},
									},
								},
							},
						},
					},
				},
			},
		}

		out := slidesText(presentation)

		Convey("Each textual slide gets a numbered header", func() {
			So(out, ShouldContainSubstring, "--- Slide 1 ---\nTitle\nSubtitle")
			So(out, ShouldContainSubstring, "--- Slide 3 ---\nClosing")
		})

		Convey("Textless slides are skipped entirely", func() {
			So(out, ShouldNotContainSubstring, "Slide 2")
		})
	})

	Convey("Given a nil presentation", t, func() {
		So(slidesText(nil), ShouldEqual, "")
	})
}

func TestDriveQuery(t *testing.T) {
	Convey("Given search inputs", t, func() {
		Convey("Bare text becomes a full-text query", func() {
			So(driveQuery("onboarding checklist"),
				ShouldEqual, "fullText contains 'onboarding checklist' and trashed = false")
		})

		Convey("Existing query expressions pass through verbatim", func() {
			expr := "name contains 'roadmap' and mimeType = 'application/vnd.google-apps.document'"
			So(driveQuery(expr), ShouldEqual, expr)
		})

		Convey("Field-style text passes through untouched", func() {
			So(driveQuery("mimeType:pdf"), ShouldEqual, "mimeType:pdf")
		})
	})
}
