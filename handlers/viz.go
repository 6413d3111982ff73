// ABOUTME: GraphViz visualization MCP handlers
// ABOUTME: Provides generate_graph tool for agents
package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/roster/viz"
)

type VizHandlers struct {
	source RecordSource
}

func NewVizHandlers(source RecordSource) *VizHandlers {
	return &VizHandlers{source: source}
}

type GenerateGraphInput struct {
	GroupID int `json:"group_id,omitempty" jsonschema:"Group ID to draw; omit for the whole directory"`
}

type GenerateGraphOutput struct {
	GraphType string `json:"graph_type"`
	DOTSource string `json:"dot_source"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
}

func (h *VizHandlers) GenerateGraph(ctx context.Context, request *mcp.CallToolRequest, input GenerateGraphInput) (*mcp.CallToolResult, GenerateGraphOutput, error) {
	records, err := h.source.Records(ctx)
	if err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to load contacts: %w", err)
	}

	generator := viz.NewGraphGenerator(records)
	graphType := "directory"
	var dot string
	if input.GroupID != 0 {
		graphType = "group"
		dot, err = generator.GenerateGroupGraph(input.GroupID)
	} else {
		dot, err = generator.GenerateCompleteGraph()
	}
	if err != nil {
		return nil, GenerateGraphOutput{}, fmt.Errorf("failed to generate graph: %w", err)
	}

	// Count nodes and edges for stats
	nodeCount := strings.Count(dot, "[label=")
	edgeCount := strings.Count(dot, "->")

	return nil, GenerateGraphOutput{
		GraphType: graphType,
		DOTSource: dot,
		NodeCount: nodeCount,
		EdgeCount: edgeCount,
	}, nil
}
