// ABOUTME: Graph generator over a loaded directory
// ABOUTME: Shared node styling for group and person nodes
package viz

import (
	"fmt"

	"github.com/goccy/go-graphviz/cgraph"

	"github.com/harperreed/roster/models"
)

// GraphGenerator renders graphs of one record set.
type GraphGenerator struct {
	records []models.Contact
}

// NewGraphGenerator renders graphs over records.
func NewGraphGenerator(records []models.Contact) *GraphGenerator {
	return &GraphGenerator{records: records}
}

func groupNodeName(id int) string  { return fmt.Sprintf("g_%d", id) }
func personNodeName(id int) string { return fmt.Sprintf("p_%d", id) }

func addGroupNode(graph *cgraph.Graph, group models.Contact) (*cgraph.Node, error) {
	node, err := graph.CreateNodeByName(groupNodeName(group.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to create group node: %w", err)
	}
	label := group.Name
	if group.Address != "" {
		label = fmt.Sprintf("%s\n%s", group.Name, group.Address)
	}
	node.SetLabel(label)
	node.SetShape("box")
	node.SetStyle("filled")
	node.SetFillColor("lightblue")
	return node, nil
}

func addPersonNode(graph *cgraph.Graph, person models.Contact) (*cgraph.Node, error) {
	node, err := graph.CreateNodeByName(personNodeName(person.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to create person node: %w", err)
	}
	label := person.Name
	if phone := firstNonEmpty(person.Mobile, person.Landline); phone != "" {
		label = fmt.Sprintf("%s\n%s", person.Name, phone)
	}
	node.SetLabel(label)
	node.SetShape("ellipse")
	node.SetStyle("filled")
	node.SetFillColor("lightgreen")
	return node, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
