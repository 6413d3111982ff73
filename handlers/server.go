// ABOUTME: MCP server assembly for the directory
// ABOUTME: Registers tools, resources and prompts over a record and profile source
package handlers

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds the MCP server with every roster tool, resource and prompt.
func NewServer(records RecordSource, profile ProfileSource, version string) *mcp.Server {
	contactHandlers := NewContactHandlers(records)
	profileHandlers := NewProfileHandlers(profile)
	vizHandlers := NewVizHandlers(records)
	resourceHandlers := NewResourceHandlers(records, profile)
	promptHandlers := NewPromptHandlers(records)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "roster",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "find_contacts",
		Description: "Search the organisation directory; groups are listed before persons, results are paged",
	}, contactHandlers.FindContacts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_group",
		Description: "Get one group with all of its members",
	}, contactHandlers.GetGroup)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_profile",
		Description: "Get the profile of the signed-in user",
	}, profileHandlers.GetProfile)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generate_graph",
		Description: "Generate a GraphViz DOT graph of groups and their members",
	}, vizHandlers.GenerateGraph)

	server.AddResource(&mcp.Resource{
		URI:      uriScheme + "contacts",
		Name:     "contacts",
		MIMEType: "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResource(&mcp.Resource{
		URI:      uriScheme + "profile",
		Name:     "profile",
		MIMEType: "application/json",
	}, resourceHandlers.ReadResource)

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "groups/{id}",
		Name:        "group",
		MIMEType:    "application/json",
	}, resourceHandlers.ReadResource)

	server.AddPrompt(&mcp.Prompt{
		Name:        "group-summary",
		Description: "Summarise a group and its members",
		Arguments: []*mcp.PromptArgument{
			{Name: "group_id", Description: "Group ID", Required: true},
		},
	}, promptHandlers.GetPrompt)

	server.AddPrompt(&mcp.Prompt{
		Name:        "reach-person",
		Description: "Find the best person to contact for a topic or name",
		Arguments: []*mcp.PromptArgument{
			{Name: "query", Description: "Name, task or group to search for", Required: true},
		},
	}, promptHandlers.GetPrompt)

	return server
}
