package domain

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const stateResourceURI = "narrative://state"

// StateResource defines the readable world-state resource.
func StateResource() *mcp.Resource {
	return &mcp.Resource{
		Name:        "narrative_state",
		Title:       "World State",
		Description: "Readable persisted world state (entity states, clock, history)",
		MIMEType:    "application/json",
		URI:         stateResourceURI,
	}
}

// StateResourceHandler returns the world state as JSON.
func StateResourceHandler(n Narrative) mcp.ResourceHandler {
	return func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if err := requireNarrative(n); err != nil {
			return nil, err
		}
		uri := stateResourceURI
		if req != nil && req.Params != nil && req.Params.URI != "" {
			uri = req.Params.URI
		}
		if uri != stateResourceURI {
			return nil, fmt.Errorf("invalid URI: expected %s, got %q", stateResourceURI, uri)
		}

		s, err := n.LoadState(ctx)
		if err != nil {
			return nil, fmt.Errorf("load state: %w", err)
		}
		data, err := json.MarshalIndent(stateResult(s), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal state: %w", err)
		}
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{
				{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(data),
				},
			},
		}, nil
	}
}
