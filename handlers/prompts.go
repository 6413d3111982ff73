// ABOUTME: MCP prompt handlers for reusable directory workflows
// ABOUTME: Provides group-summary and reach-person prompts built from cached records
package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/roster/directory"
	"github.com/harperreed/roster/models"
)

type PromptHandlers struct {
	source RecordSource
}

func NewPromptHandlers(source RecordSource) *PromptHandlers {
	return &PromptHandlers{source: source}
}

// GetPrompt generates the prompt message based on the template
func (h *PromptHandlers) GetPrompt(ctx context.Context, request *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := request.Params.Name
	arguments := request.Params.Arguments
	switch name {
	case "group-summary":
		return h.getGroupSummaryPrompt(ctx, arguments)
	case "reach-person":
		return h.getReachPersonPrompt(ctx, arguments)
	default:
		return nil, fmt.Errorf("unknown prompt: %s", name)
	}
}

func userPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []*mcp.PromptMessage{
			{
				Role:    "user",
				Content: &mcp.TextContent{Text: text},
			},
		},
	}
}

func writeContact(b *strings.Builder, c models.Contact) {
	b.WriteString(fmt.Sprintf("- %s", c.Name))
	if c.Landline != "" {
		b.WriteString(fmt.Sprintf(", Tel. %s", c.Landline))
	}
	if c.Mobile != "" {
		b.WriteString(fmt.Sprintf(", Mobil %s", c.Mobile))
	}
	if c.Email != "" {
		b.WriteString(fmt.Sprintf(", %s", c.Email))
	}
	if len(c.Tasks) > 0 {
		b.WriteString(fmt.Sprintf(" (%s)", c.TasksText()))
	}
	b.WriteString("\n")
}

func (h *PromptHandlers) getGroupSummaryPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	idStr, ok := args["group_id"]
	if !ok {
		return nil, fmt.Errorf("group_id is required")
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		return nil, fmt.Errorf("invalid group_id: %w", err)
	}

	records, err := h.source.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	rows, ok := directory.Focus(records, id)
	if !ok {
		return nil, fmt.Errorf("group not found: %d", id)
	}
	group := rows[0]

	var text strings.Builder
	text.WriteString("Please summarise this group of our organisation:\n\n")
	text.WriteString(fmt.Sprintf("Group: %s\n", group.Name))
	if group.Address != "" {
		text.WriteString(fmt.Sprintf("Address: %s\n", group.Address))
	}
	if group.Landline != "" {
		text.WriteString(fmt.Sprintf("Phone: %s\n", group.Landline))
	}
	if group.Fax != "" {
		text.WriteString(fmt.Sprintf("Fax: %s\n", group.Fax))
	}
	text.WriteString(fmt.Sprintf("\nMembers (%d):\n", len(rows)-1))
	for _, member := range rows[1:] {
		writeContact(&text, member)
	}
	text.WriteString("\nPlease describe who is responsible for what and whom to contact first.")

	return userPrompt(fmt.Sprintf("Summary for group: %s", group.Name), text.String()), nil
}

func (h *PromptHandlers) getReachPersonPrompt(ctx context.Context, args map[string]string) (*mcp.GetPromptResult, error) {
	query := strings.TrimSpace(args["query"])
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	records, err := h.source.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch contacts: %w", err)
	}
	rows := directory.Arrange(directory.Search(records, query), directory.Arrangement{
		Field:     directory.SortName,
		Direction: directory.Asc,
		Query:     query,
	})

	var text strings.Builder
	text.WriteString(fmt.Sprintf("I need to reach someone matching %q. These directory entries match:\n\n", query))
	if len(rows) == 0 {
		text.WriteString("(no matches)\n")
	}
	for _, c := range rows {
		writeContact(&text, c)
	}
	text.WriteString("\nPlease suggest the best person and channel to contact.")

	return userPrompt(fmt.Sprintf("Reach person: %s", query), text.String()), nil
}
