// ABOUTME: Single-group graph: one group and its full roster
// ABOUTME: Looks the group up in the unfiltered set like group focus does
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/harperreed/roster/directory"
)

// GenerateGroupGraph renders group id and its members as DOT.
func (g *GraphGenerator) GenerateGroupGraph(id int) (string, error) {
	rows, ok := directory.Focus(g.records, id)
	if !ok {
		return "", fmt.Errorf("group not found: %d", id)
	}

	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer func() { _ = gv.Close() }()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() { _ = graph.Close() }()

	graph.SetLayout("neato")
	graph.SetRankDir(cgraph.LRRank)

	groupNode, err := addGroupNode(graph, rows[0])
	if err != nil {
		return "", err
	}
	for _, member := range rows[1:] {
		node, err := addPersonNode(graph, member)
		if err != nil {
			return "", err
		}
		edge, err := graph.CreateEdgeByName("member", groupNode, node)
		if err != nil {
			return "", fmt.Errorf("failed to create edge: %w", err)
		}
		if len(member.Tasks) > 0 {
			edge.SetLabel(member.TasksText())
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}
