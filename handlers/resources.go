// ABOUTME: MCP resource handlers for exposing directory data
// ABOUTME: Provides read-only access to contacts, groups and the profile via roster:// URIs
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/roster/directory"
)

const uriScheme = "roster://"

type ResourceHandlers struct {
	records RecordSource
	profile ProfileSource
}

func NewResourceHandlers(records RecordSource, profile ProfileSource) *ResourceHandlers {
	return &ResourceHandlers{records: records, profile: profile}
}

// ReadResource handles resource read requests
func (h *ResourceHandlers) ReadResource(ctx context.Context, request *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	uri := request.Params.URI
	if !strings.HasPrefix(uri, uriScheme) {
		return nil, fmt.Errorf("invalid URI scheme: expected %s", uriScheme)
	}

	path := strings.TrimPrefix(uri, uriScheme)
	parts := strings.Split(path, "/")

	switch parts[0] {
	case "contacts":
		return h.readAllContacts(ctx, uri)
	case "groups":
		if len(parts) < 2 || parts[1] == "" {
			return nil, fmt.Errorf("group ID required")
		}
		return h.readGroup(ctx, uri, parts[1])
	case "profile":
		return h.readProfile(ctx, uri)
	default:
		return nil, fmt.Errorf("unknown resource: %s", parts[0])
	}
}

func jsonResult(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{
		{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}}, nil
}

func (h *ResourceHandlers) readAllContacts(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	records, err := h.records.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	rows := directory.Arrange(records, directory.Arrangement{Field: directory.SortName, Direction: directory.Asc})
	return jsonResult(uri, toOutputs(rows))
}

func (h *ResourceHandlers) readGroup(ctx context.Context, uri, idStr string) (*mcp.ReadResourceResult, error) {
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid group ID: %w", err)
	}

	records, err := h.records.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	rows, ok := directory.Focus(records, id)
	if !ok {
		return nil, fmt.Errorf("group not found: %d", id)
	}
	return jsonResult(uri, GetGroupOutput{Group: contactToOutput(rows[0]), Members: toOutputs(rows[1:])})
}

func (h *ResourceHandlers) readProfile(ctx context.Context, uri string) (*mcp.ReadResourceResult, error) {
	info, err := h.profile.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch profile: %w", err)
	}
	return jsonResult(uri, profileToOutput(info))
}
