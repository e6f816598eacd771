package drive

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	. "github.com/smartystreets/goconvey/convey"
	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

func TestReadToolUnsupportedType(t *testing.T) {
	Convey("Given a file with a non-Google MIME type", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(&driveapi.File{
				Id:       "f1",
				Name:     "scan.pdf",
				MimeType: "application/pdf",
			})
		}))
		defer srv.Close()

		driveSvc, err := driveapi.NewService(context.Background(),
			option.WithEndpoint(srv.URL+"/"),
			option.WithoutAuthentication(),
		)
		So(err, ShouldBeNil)

		tool := NewReadTool(driveSvc, nil, nil, nil)

		Convey("Reading it returns metadata with the unsupported marker", func() {
			request := mcp.CallToolRequest{}
			request.Params.Arguments = map[string]any{"file_id": "f1"}

			result, err := tool.Handler(context.Background(), request)
			So(err, ShouldBeNil)

			text := result.Content[0].(mcp.TextContent).Text
			So(text, ShouldContainSubstring, "scan.pdf")
			So(text, ShouldContainSubstring, unsupportedMarker)

			var content FileContent
			So(json.Unmarshal([]byte(text), &content), ShouldBeNil)
			So(content.Content, ShouldEqual, unsupportedMarker)
		})
	})
}
