package service

import (
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/questline/internal/services/mcp/domain"
)

type mcpRegistrationTarget interface {
	AddTool(*mcp.Tool, any) error
	AddResource(*mcp.Resource, mcp.ResourceHandler)
}

func registerNarrativeTools(registrar mcpRegistrationTarget, narrative domain.Narrative, notify domain.ResourceUpdateNotifier) error {
	registrations := []struct {
		tool    *mcp.Tool
		handler any
	}{
		{tool: domain.StateGetTool(), handler: domain.StateGetHandler(narrative)},
		{tool: domain.ApplyTool(), handler: domain.ApplyHandler(narrative, notify)},
		{tool: domain.TickTool(), handler: domain.TickHandler(narrative, notify)},
		{tool: domain.CandidatesTool(), handler: domain.CandidatesHandler(narrative)},
		{tool: domain.HistoryTool(), handler: domain.HistoryHandler(narrative)},
	}
	for _, registration := range registrations {
		if err := registerTool(registrar, registration.tool, registration.handler); err != nil {
			return err
		}
	}
	return nil
}

func registerTool(registrar mcpRegistrationTarget, tool *mcp.Tool, handler any) error {
	if tool == nil {
		return fmt.Errorf("tool is nil")
	}
	return registrar.AddTool(tool, handler)
}

// registerNarrativeResources registers readable narrative MCP resources.
func registerNarrativeResources(registrar mcpRegistrationTarget, narrative domain.Narrative) {
	registrar.AddResource(domain.StateResource(), domain.StateResourceHandler(narrative))
}
