// ABOUTME: Directory MCP tool handlers
// ABOUTME: Implements find_contacts and get_group over the cached directory
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/roster/directory"
	"github.com/harperreed/roster/models"
)

// RecordSource yields the current directory records.
type RecordSource interface {
	Records(ctx context.Context) ([]models.Contact, error)
}

type ContactHandlers struct {
	source RecordSource
}

func NewContactHandlers(source RecordSource) *ContactHandlers {
	return &ContactHandlers{source: source}
}

type ContactOutput struct {
	ID          int      `json:"id"`
	Type        string   `json:"type"`
	Name        string   `json:"name"`
	Landline    string   `json:"landline,omitempty"`
	Mobile      string   `json:"mobile,omitempty"`
	Email       string   `json:"email,omitempty"`
	Fax         string   `json:"fax,omitempty"`
	Address     string   `json:"address,omitempty"`
	Tasks       []string `json:"tasks,omitempty"`
	Groups      []string `json:"groups,omitempty"`
	MemberCount int      `json:"member_count,omitempty"`
	Level       int      `json:"level"`
}

type FindContactsInput struct {
	Query    string `json:"query,omitempty" jsonschema:"Search text matched against name, phone numbers, email, tasks, address and group names"`
	Sort     string `json:"sort,omitempty" jsonschema:"Sort column: type, name, landline, mobile, email, tasks or group (default name)"`
	Desc     bool   `json:"desc,omitempty" jsonschema:"Sort descending"`
	Page     int    `json:"page,omitempty" jsonschema:"Page number starting at 1 (default 1)"`
	PageSize int    `json:"page_size,omitempty" jsonschema:"Rows per page (default 10)"`
}

type FindContactsOutput struct {
	Contacts   []ContactOutput `json:"contacts"`
	Page       int             `json:"page"`
	TotalPages int             `json:"total_pages"`
	TotalItems int             `json:"total_items"`
}

func (h *ContactHandlers) FindContacts(ctx context.Context, request *mcp.CallToolRequest, input FindContactsInput) (*mcp.CallToolResult, FindContactsOutput, error) {
	field := directory.SortName
	if input.Sort != "" {
		f, err := directory.ParseSortField(input.Sort)
		if err != nil {
			return nil, FindContactsOutput{}, err
		}
		field = f
	}
	dir := directory.Asc
	if input.Desc {
		dir = directory.Desc
	}
	page := input.Page
	if page == 0 {
		page = 1
	}
	size := input.PageSize
	if size <= 0 {
		size = directory.DefaultPageSize
	}

	records, err := h.source.Records(ctx)
	if err != nil {
		return nil, FindContactsOutput{}, fmt.Errorf("failed to load contacts: %w", err)
	}

	view := directory.Derive(records, directory.Query{
		Text:      input.Query,
		Sort:      field,
		Direction: dir,
		Page:      page,
		PageSize:  size,
	})

	return nil, FindContactsOutput{
		Contacts:   toOutputs(view.Page.Items),
		Page:       view.Page.Number,
		TotalPages: view.Page.TotalPages,
		TotalItems: view.Page.TotalItems,
	}, nil
}

type GetGroupInput struct {
	ID int `json:"id" jsonschema:"Group ID (required)"`
}

type GetGroupOutput struct {
	Group   ContactOutput   `json:"group"`
	Members []ContactOutput `json:"members"`
}

func (h *ContactHandlers) GetGroup(ctx context.Context, request *mcp.CallToolRequest, input GetGroupInput) (*mcp.CallToolResult, GetGroupOutput, error) {
	if input.ID == 0 {
		return nil, GetGroupOutput{}, fmt.Errorf("id is required")
	}

	records, err := h.source.Records(ctx)
	if err != nil {
		return nil, GetGroupOutput{}, fmt.Errorf("failed to load contacts: %w", err)
	}

	rows, ok := directory.Focus(records, input.ID)
	if !ok {
		return nil, GetGroupOutput{}, fmt.Errorf("group not found: %d", input.ID)
	}

	return nil, GetGroupOutput{
		Group:   contactToOutput(rows[0]),
		Members: toOutputs(rows[1:]),
	}, nil
}

func toOutputs(rows []models.Contact) []ContactOutput {
	out := make([]ContactOutput, len(rows))
	for i, c := range rows {
		out[i] = contactToOutput(c)
	}
	return out
}

func contactToOutput(c models.Contact) ContactOutput {
	out := ContactOutput{
		ID:       c.ID,
		Type:     "person",
		Name:     c.Name,
		Landline: c.Landline,
		Mobile:   c.Mobile,
		Email:    c.Email,
		Tasks:    c.Tasks,
		Level:    c.Level,
	}
	if c.IsGroup() {
		out.Type = "group"
		out.Fax = c.Fax
		out.Address = c.Address
		out.MemberCount = len(c.Children)
	}
	for _, g := range c.Groups {
		out.Groups = append(out.Groups, g.Name)
	}
	return out
}
