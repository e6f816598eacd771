// Package sheets exposes the spreadsheet tools: range read, row append
// (insert semantics) and exact-range update.
package sheets

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/develophealth/mcp-server-comms-bridge/core"
	"github.com/develophealth/mcp-server-comms-bridge/pkg/config"
	"github.com/develophealth/mcp-server-comms-bridge/pkg/tools/utils"
)

const defaultRange = "Sheet1!A:Z"

// UpdateSummary echoes the provider-reported affected counts.
type UpdateSummary struct {
	UpdatedRange string `json:"updatedRange"`
	UpdatedRows  int64  `json:"updatedRows"`
	UpdatedCells int64  `json:"updatedCells"`
}

type Provider struct {
	Tools map[string]core.Tool
}

func NewProvider(ctx context.Context, cfg *config.Config) (*Provider, error) {
	client, err := cfg.GoogleHTTPClient(ctx, config.SheetsScopes...)
	if err != nil {
		return nil, core.MissingConfigError("sheets: " + err.Error())
	}

	svc, err := sheetsapi.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, err
	}

	return newProvider(svc), nil
}

func newProvider(svc *sheetsapi.Service) *Provider {
	return &Provider{
		Tools: map[string]core.Tool{
			"read_spreadsheet": NewReadTool(svc),
			"append_rows":      NewAppendTool(svc),
			"update_cells":     NewUpdateTool(svc),
		},
	}
}

type ReadTool struct {
	svc    *sheetsapi.Service
	handle mcp.Tool
}

func NewReadTool(svc *sheetsapi.Service) core.Tool {
	t := &ReadTool{svc: svc}
	t.handle = mcp.NewTool(
		"read_spreadsheet",
		mcp.WithDescription("Read values from a Google Spreadsheet range. Returns rows as lists of cell values."),
		mcp.WithString("spreadsheet_id",
			mcp.Required(),
			mcp.Description("The spreadsheet ID from the URL"),
		),
		mcp.WithString("range",
			mcp.Description("A1 notation range (e.g. 'Sheet1!A:Z' or 'Sheet1!A1:D10')"),
			mcp.DefaultString(defaultRange),
		),
	)
	return t
}

func (t *ReadTool) Handle() mcp.Tool {
	return t.handle
}

func (t *ReadTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	spreadsheetID, err := utils.GetRequiredStringParam(request, "spreadsheet_id")
	if err != nil {
		return nil, err
	}
	readRange, err := utils.GetOptionalStringParam(request, "range")
	if err != nil {
		return nil, err
	}
	if readRange == "" {
		readRange = defaultRange
	}

	resp, err := t.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return nil, core.UpstreamError("sheets", err)
	}

	values := resp.Values
	if values == nil {
		values = [][]any{}
	}
	return core.JSONResult(values)
}

// AppendTool appends after the last data row within the range.
type AppendTool struct {
	svc    *sheetsapi.Service
	handle mcp.Tool
}

func NewAppendTool(svc *sheetsapi.Service) core.Tool {
	t := &AppendTool{svc: svc}
	t.handle = mcp.NewTool(
		"append_rows",
		mcp.WithDescription("Append rows to a Google Spreadsheet. Each row is a list of cell values."),
		mcp.WithString("spreadsheet_id",
			mcp.Required(),
			mcp.Description("The spreadsheet ID from the URL"),
		),
		mcp.WithString("range",
			mcp.Description("A1 notation range to append to (e.g. 'Sheet1!A:Z')"),
			mcp.DefaultString(defaultRange),
		),
		utils.WithRowsProperty("rows", "List of rows, each row is a list of cell values", true),
	)
	return t
}

func (t *AppendTool) Handle() mcp.Tool {
	return t.handle
}

func (t *AppendTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	spreadsheetID, err := utils.GetRequiredStringParam(request, "spreadsheet_id")
	if err != nil {
		return nil, err
	}
	appendRange, err := utils.GetOptionalStringParam(request, "range")
	if err != nil {
		return nil, err
	}
	if appendRange == "" {
		appendRange = defaultRange
	}
	rows, err := utils.GetRequiredRowsParam(request, "rows")
	if err != nil {
		return nil, err
	}

	resp, err := t.svc.Spreadsheets.Values.Append(spreadsheetID, appendRange, &sheetsapi.ValueRange{Values: rows}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return nil, core.UpstreamError("sheets", err)
	}

	summary := UpdateSummary{}
	if resp.Updates != nil {
		summary.UpdatedRange = resp.Updates.UpdatedRange
		summary.UpdatedRows = resp.Updates.UpdatedRows
		summary.UpdatedCells = resp.Updates.UpdatedCells
	}
	return core.JSONResult(summary)
}

// UpdateTool overwrites exactly the given range.
type UpdateTool struct {
	svc    *sheetsapi.Service
	handle mcp.Tool
}

func NewUpdateTool(svc *sheetsapi.Service) core.Tool {
	t := &UpdateTool{svc: svc}
	t.handle = mcp.NewTool(
		"update_cells",
		mcp.WithDescription("Update specific cells in a Google Spreadsheet range. Use A1 notation for the range (e.g. 'Sheet1!H5' or 'Sheet1!A1:D2')."),
		mcp.WithString("spreadsheet_id",
			mcp.Required(),
			mcp.Description("The spreadsheet ID from the URL"),
		),
		mcp.WithString("range",
			mcp.Required(),
			mcp.Description("A1 notation range to update (e.g. 'Sheet1!H5')"),
		),
		utils.WithRowsProperty("values", "2D array of values to write", true),
	)
	return t
}

func (t *UpdateTool) Handle() mcp.Tool {
	return t.handle
}

func (t *UpdateTool) Handler(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	spreadsheetID, err := utils.GetRequiredStringParam(request, "spreadsheet_id")
	if err != nil {
		return nil, err
	}
	updateRange, err := utils.GetRequiredStringParam(request, "range")
	if err != nil {
		return nil, err
	}
	values, err := utils.GetRequiredRowsParam(request, "values")
	if err != nil {
		return nil, err
	}

	resp, err := t.svc.Spreadsheets.Values.Update(spreadsheetID, updateRange, &sheetsapi.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).Do()
	if err != nil {
		return nil, core.UpstreamError("sheets", err)
	}

	return core.JSONResult(UpdateSummary{
		UpdatedRange: resp.UpdatedRange,
		UpdatedRows:  resp.UpdatedRows,
		UpdatedCells: resp.UpdatedCells,
	})
}
