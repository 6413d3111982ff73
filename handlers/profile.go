// ABOUTME: Profile MCP tool handler
// ABOUTME: Implements get_profile from the cached /me payload
package handlers

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/roster/models"
)

// ProfileSource yields the signed-in user's profile.
type ProfileSource interface {
	Profile(ctx context.Context) (models.UserInfo, error)
}

type ProfileHandlers struct {
	source ProfileSource
}

func NewProfileHandlers(source ProfileSource) *ProfileHandlers {
	return &ProfileHandlers{source: source}
}

type GetProfileInput struct{}

type ProfileOutput struct {
	Username   string   `json:"username"`
	Name       string   `json:"name"`
	Email      string   `json:"email,omitempty"`
	Occupation string   `json:"occupation,omitempty"`
	Phone      string   `json:"phone,omitempty"`
	Mobile     string   `json:"mobile,omitempty"`
	Groups     []string `json:"groups,omitempty"`
}

func (h *ProfileHandlers) GetProfile(ctx context.Context, request *mcp.CallToolRequest, input GetProfileInput) (*mcp.CallToolResult, ProfileOutput, error) {
	info, err := h.source.Profile(ctx)
	if err != nil {
		return nil, ProfileOutput{}, fmt.Errorf("failed to load profile: %w", err)
	}
	return nil, profileToOutput(info), nil
}

func profileToOutput(info models.UserInfo) ProfileOutput {
	phone, mobile := info.Phones()
	out := ProfileOutput{
		Username:   info.User.Username,
		Name:       info.DisplayName(),
		Email:      info.DisplayEmail(),
		Occupation: info.Occupation(),
		Phone:      phone,
		Mobile:     mobile,
	}
	for _, g := range info.Groups {
		if g.Name != nil && *g.Name != "" {
			out.Groups = append(out.Groups, *g.Name)
		}
	}
	return out
}
