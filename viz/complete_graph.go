// ABOUTME: Complete directory graph: every group with its members
// ABOUTME: Standalone persons link to the groups named in their memberships
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/harperreed/roster/models"
)

// GenerateCompleteGraph renders all groups and persons as DOT. Children are
// linked with solid edges; memberships of standalone persons with dashed ones.
func (g *GraphGenerator) GenerateCompleteGraph() (string, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to create graphviz: %w", err)
	}
	defer func() { _ = gv.Close() }()

	graph, err := gv.Graph()
	if err != nil {
		return "", fmt.Errorf("failed to create graph: %w", err)
	}
	defer func() { _ = graph.Close() }()

	graph.SetLabel("Directory")
	graph.SetRankDir(cgraph.LRRank)

	groupNodes := make(map[int]*cgraph.Node)
	for _, c := range g.records {
		if !c.IsGroup() || groupNodes[c.ID] != nil {
			continue
		}
		node, err := addGroupNode(graph, c)
		if err != nil {
			return "", err
		}
		groupNodes[c.ID] = node
	}

	personNodes := make(map[int]*cgraph.Node)
	person := func(c models.Contact) (*cgraph.Node, error) {
		if node, ok := personNodes[c.ID]; ok {
			return node, nil
		}
		node, err := addPersonNode(graph, c)
		if err != nil {
			return nil, err
		}
		personNodes[c.ID] = node
		return node, nil
	}
	linked := make(map[[2]int]bool)

	for _, c := range g.records {
		switch {
		case c.IsGroup():
			for _, child := range c.Children {
				node, err := person(child)
				if err != nil {
					return "", err
				}
				if linked[[2]int{c.ID, child.ID}] {
					continue
				}
				linked[[2]int{c.ID, child.ID}] = true
				if _, err := graph.CreateEdgeByName("member", groupNodes[c.ID], node); err != nil {
					return "", fmt.Errorf("failed to create edge: %w", err)
				}
			}
		case c.IsPerson():
			node, err := person(c)
			if err != nil {
				return "", err
			}
			for _, ref := range c.Groups {
				groupNode, ok := groupNodes[ref.ID]
				if !ok || linked[[2]int{ref.ID, c.ID}] {
					continue
				}
				linked[[2]int{ref.ID, c.ID}] = true
				edge, err := graph.CreateEdgeByName("membership", groupNode, node)
				if err != nil {
					return "", fmt.Errorf("failed to create edge: %w", err)
				}
				edge.SetStyle("dashed")
			}
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &buf); err != nil {
		return "", fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.String(), nil
}
