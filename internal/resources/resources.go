package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/ewsfreebusy/internal/availability"
	"github.com/teemow/ewsfreebusy/internal/server"
)

// Resource URIs.
const (
	ConfigURI    = "ewsfreebusy://config"
	ItemTypesURI = "ewsfreebusy://item-types"
)

// RegisterResources registers the read-only server resources
func RegisterResources(s *mcpserver.MCPServer, sc *server.ServerContext) error {
	if s == nil || sc == nil {
		return fmt.Errorf("MCP server and server context are required")
	}

	configResource := mcp.NewResource(
		ConfigURI,
		"Lookup Defaults",
		mcp.WithResourceDescription("Defaults applied to availability lookups when a tool argument is omitted"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(configResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleConfig(ctx, request, sc)
	})

	itemTypesResource := mcp.NewResource(
		ItemTypesURI,
		"Calendar Item Types",
		mcp.WithResourceDescription("Calendar item element names the response decoder understands"),
		mcp.WithMIMEType("application/json"),
	)

	s.AddResource(itemTypesResource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return handleItemTypes(ctx, request, sc)
	})

	return nil
}

// handleConfig returns the effective lookup defaults. The access token is
// never included.
func handleConfig(_ context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	cfg := sc.Config()

	endpointHost := ""
	if cfg.Endpoint != "" {
		if u, err := url.Parse(cfg.Endpoint); err == nil {
			endpointHost = u.Host
		}
	}

	configData := map[string]interface{}{
		"endpointConfigured":   sc.Service() != nil,
		"endpointHost":         endpointHost,
		"tokenConfigured":      cfg.Token != "",
		"mailbox":              cfg.Mailbox,
		"timezone":             cfg.TimeZone,
		"mergeIntervalMinutes": cfg.MergeIntervalMinutes,
		"includeTentative":     cfg.IncludeTentative,
	}

	return jsonContents(request.Params.URI, configData)
}

// handleItemTypes lists the item kinds registered with the decoder in use.
func handleItemTypes(_ context.Context, request mcp.ReadResourceRequest, sc *server.ServerContext) ([]mcp.ResourceContents, error) {
	registry := availability.DefaultRegistry()
	if svc := sc.Service(); svc != nil {
		registry = svc.Decoder().Registry()
	}

	data := map[string]interface{}{
		"itemTypes": registry.Tags(),
		"sealed":    registry.Sealed(),
	}

	return jsonContents(request.Params.URI, data)
}

func jsonContents(uri string, data interface{}) ([]mcp.ResourceContents, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource data: %w", err)
	}

	return []mcp.ResourceContents{
		&mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(jsonData),
		},
	}, nil
}
