package drive

import (
	"fmt"
	"strings"

	docsapi "google.golang.org/api/docs/v1"
	slidesapi "google.golang.org/api/slides/v1"
)

// docText flattens a document's paragraph/text-run tree to plain text.
func docText(doc *docsapi.Document) string {
	if doc == nil || doc.Body == nil {
		return ""
	}
	var parts []string
	for _, element := range doc.Body.Content {
		if element.Paragraph == nil {
			continue
		}
		for _, pe := range element.Paragraph.Elements {
			if pe.TextRun != nil {
				parts = append(parts, pe.TextRun.Content)
			}
		}
	}
	return strings.Join(parts, "")
}

// slidesText flattens a presentation to per-slide text blocks, each
// introduced by a slide-number header. Slides without text are skipped.
func slidesText(presentation *slidesapi.Presentation) string {
	if presentation == nil {
		return ""
	}
	var blocks []string
	for i, slide := range presentation.Slides {
		var parts []string
		for _, element := range slide.PageElements {
			if element.Shape == nil || element.Shape.Text == nil {
				continue
			}
			for _, textElement := range element.Shape.Text.TextElements {
				if textElement.TextRun == nil {
					continue
				}
				content := strings.TrimSpace(textElement.TextRun.Content)
				if content != "" {
					parts = append(parts, content)
				}
			}
		}
		if len(parts) > 0 {
			blocks = append(blocks, fmt.Sprintf("--- Slide %d ---\n%s", i+1, strings.Join(parts, "\n")))
		}
	}
	return strings.Join(blocks, "\n\n")
}
