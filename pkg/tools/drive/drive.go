// Package drive exposes the file-storage tools: search and a content read
// that branches on MIME type (documents, spreadsheets, presentations).
package drive

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	docsapi "google.golang.org/api/docs/v1"
	driveapi "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"
	slidesapi "google.golang.org/api/slides/v1"

	"github.com/develophealth/mcp-server-comms-bridge/core"
	"github.com/develophealth/mcp-server-comms-bridge/pkg/config"
	"github.com/develophealth/mcp-server-comms-bridge/pkg/tools/utils"
)

const (
	defaultMaxResults = 20

	mimeDocument     = "application/vnd.google-apps.document"
	mimeSpreadsheet  = "application/vnd.google-apps.spreadsheet"
	mimePresentation = "application/vnd.google-apps.presentation"

	unsupportedMarker = "(Binary or unsupported file type – metadata only)"

	fileFields = "id,name,mimeType,modifiedTime,webViewLink"
)

// FileSummary is the stable shape a search hit is reduced to.
type FileSummary struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MimeType     string `json:"mimeType"`
	ModifiedTime string `json:"modifiedTime"`
	Link         string `json:"link"`
}

// FileContent adds the flattened content, whose concrete type depends on
// the MIME branch: text for documents and presentations, rows for
// spreadsheets, the unsupported marker otherwise.
type FileContent struct {
	FileSummary
	Content any `json:"content"`
}

func summarize(f *driveapi.File) FileSummary {
	return FileSummary{
		ID:           f.Id,
		Name:         f.Name,
		MimeType:     f.MimeType,
		ModifiedTime: f.ModifiedTime,
		Link:         f.WebViewLink,
	}
}

type Provider struct {
	Tools map[string]core.Tool
}

func NewProvider(ctx context.Context, cfg *config.Config) (*Provider, error) {
	client, err := cfg.GoogleHTTPClient(ctx, config.DriveScopes...)
	if err != nil {
		return nil, core.MissingConfigError("drive: " + err.Error())
	}

	driveSvc, err := driveapi.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, err
	}
	docsSvc, err := docsapi.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, err
	}
	slidesSvc, err := slidesapi.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, err
	}
	sheetsSvc, err := sheetsapi.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, err
	}

	return newProvider(driveSvc, docsSvc, slidesSvc, sheetsSvc), nil
}

func newProvider(driveSvc *driveapi.Service, docsSvc *docsapi.Service, slidesSvc *slidesapi.Service, sheetsSvc *sheetsapi.Service) *Provider {
	return &Provider{
		Tools: map[string]core.Tool{
			"search_files": NewSearchTool(driveSvc),
			"read_file":    NewReadTool(driveSvc, docsSvc, slidesSvc, sheetsSvc),
		},
	}
}

type SearchTool struct {
	svc    *driveapi.Service
	handle mcp.Tool
}

func NewSearchTool(svc *driveapi.Service) core.Tool {
	t := &SearchTool{svc: svc}
	t.handle = mcp.NewTool(
		"search_files",
		mcp.WithDescription("Search Google Drive files. Supports Drive search query syntax; bare text is matched against file content."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search text or a Drive query expression"),
		),
		mcp.WithNumber("max_results",
			mcp.Description("Maximum number of results (default 20)"),
			mcp.DefaultNumber(defaultMaxResults),
		),
	)
	return t
}

func (t *SearchTool) Handle() mcp.Tool {
	return t.handle
}

// driveQuery wraps bare text as a full-text search; anything that already
// looks like a Drive query expression passes through verbatim.
func driveQuery(query string) string {
	if !strings.Contains(query, "'") && !strings.Contains(query, ":") {
		return "fullText contains '" + query + "' and trashed = false"
	}
	return query
}

func (t *SearchTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := utils.GetRequiredStringParam(request, "query")
	if err != nil {
		return nil, err
	}
	maxResults, err := utils.GetOptionalIntParam(request, "max_results")
	if err != nil {
		return nil, err
	}
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	resp, err := t.svc.Files.List().
		Q(driveQuery(query)).
		PageSize(int64(maxResults)).
		Fields("files(" + fileFields + ")").
		OrderBy("modifiedTime desc").
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true).
		Context(ctx).Do()
	if err != nil {
		return nil, core.UpstreamError("drive", err)
	}

	files := make([]FileSummary, 0, len(resp.Files))
	for _, f := range resp.Files {
		files = append(files, summarize(f))
	}
	return core.JSONResult(files)
}

type ReadTool struct {
	drive  *driveapi.Service
	docs   *docsapi.Service
	slides *slidesapi.Service
	sheets *sheetsapi.Service
	handle mcp.Tool
}

func NewReadTool(driveSvc *driveapi.Service, docsSvc *docsapi.Service, slidesSvc *slidesapi.Service, sheetsSvc *sheetsapi.Service) core.Tool {
	t := &ReadTool{drive: driveSvc, docs: docsSvc, slides: slidesSvc, sheets: sheetsSvc}
	t.handle = mcp.NewTool(
		"read_file",
		mcp.WithDescription("Read content of a Google Drive file. Docs return full text, Sheets the first sheet values, Slides per-slide text; other types metadata only."),
		mcp.WithString("file_id",
			mcp.Required(),
			mcp.Description("The Drive file ID"),
		),
	)
	return t
}

func (t *ReadTool) Handle() mcp.Tool {
	return t.handle
}

func (t *ReadTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fileID, err := utils.GetRequiredStringParam(request, "file_id")
	if err != nil {
		return nil, err
	}

	meta, err := t.drive.Files.Get(fileID).
		Fields(fileFields).
		SupportsAllDrives(true).
		Context(ctx).Do()
	if err != nil {
		return nil, core.UpstreamError("drive", err)
	}

	result := FileContent{FileSummary: summarize(meta)}

	switch meta.MimeType {
	case mimeDocument:
		doc, err := t.docs.Documents.Get(fileID).Context(ctx).Do()
		if err != nil {
			return nil, core.UpstreamError("docs", err)
		}
		result.Content = docText(doc)

	case mimeSpreadsheet:
		values, err := t.sheets.Spreadsheets.Values.Get(fileID, "Sheet1!A:Z").Context(ctx).Do()
		if err != nil {
			return nil, core.UpstreamError("sheets", err)
		}
		rows := values.Values
		if rows == nil {
			rows = [][]any{}
		}
		result.Content = rows

	case mimePresentation:
		presentation, err := t.slides.Presentations.Get(fileID).Context(ctx).Do()
		if err != nil {
			return nil, core.UpstreamError("slides", err)
		}
		result.Content = slidesText(presentation)

	default:
		result.Content = unsupportedMarker
	}

	return core.JSONResult(result)
}
