// Package utils provides argument extraction helpers shared by all tool
// handlers. Tool arguments arrive as a loosely-typed bag; these helpers do
// the defensive checks each handler needs on the keys it reads.
package utils

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/develophealth/mcp-server-comms-bridge/core"
)

// GetStringParam safely extracts a string parameter from the request
func GetStringParam(req mcp.CallToolRequest, key string, required bool) (string, error) {
	val, exists := req.Params.Arguments[key]
	if !exists || val == nil {
		if required {
			return "", fmt.Errorf("%w: missing required parameter '%s'", core.ErrMalformedArgument, key)
		}
		return "", nil
	}

	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%w: parameter '%s' must be a string", core.ErrMalformedArgument, key)
	}

	return str, nil
}

// GetRequiredStringParam is a shorthand for GetStringParam with required=true
func GetRequiredStringParam(req mcp.CallToolRequest, key string) (string, error) {
	return GetStringParam(req, key, true)
}

// GetOptionalStringParam is a shorthand for GetStringParam with required=false
func GetOptionalStringParam(req mcp.CallToolRequest, key string) (string, error) {
	return GetStringParam(req, key, false)
}

// GetIntParam safely extracts an int parameter from the request. JSON
// numbers decode as float64, so the value is truncated.
func GetIntParam(req mcp.CallToolRequest, key string, required bool) (int, error) {
	val, exists := req.Params.Arguments[key]
	if !exists || val == nil {
		if required {
			return 0, fmt.Errorf("%w: missing required parameter '%s'", core.ErrMalformedArgument, key)
		}
		return 0, nil
	}

	f, ok := val.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: parameter '%s' must be a number", core.ErrMalformedArgument, key)
	}

	return int(f), nil
}

// GetRequiredIntParam is a shorthand for GetIntParam with required=true
func GetRequiredIntParam(req mcp.CallToolRequest, key string) (int, error) {
	return GetIntParam(req, key, true)
}

// GetOptionalIntParam is a shorthand for GetIntParam with required=false
func GetOptionalIntParam(req mcp.CallToolRequest, key string) (int, error) {
	return GetIntParam(req, key, false)
}

// GetRowsParam extracts a 2D array parameter (rows of cell values), the
// shape the spreadsheet tools take.
func GetRowsParam(req mcp.CallToolRequest, key string, required bool) ([][]any, error) {
	val, exists := req.Params.Arguments[key]
	if !exists || val == nil {
		if required {
			return nil, fmt.Errorf("%w: missing required parameter '%s'", core.ErrMalformedArgument, key)
		}
		return nil, nil
	}

	arr, ok := val.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: parameter '%s' must be an array", core.ErrMalformedArgument, key)
	}

	rows := make([][]any, 0, len(arr))
	for i, item := range arr {
		row, ok := item.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: parameter '%s' row %d must be an array", core.ErrMalformedArgument, key, i)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// GetRequiredRowsParam is a shorthand for GetRowsParam with required=true
func GetRequiredRowsParam(req mcp.CallToolRequest, key string) ([][]any, error) {
	return GetRowsParam(req, key, true)
}
