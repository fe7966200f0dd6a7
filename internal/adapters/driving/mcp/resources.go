package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for docqa resources.
	uriScheme = "docqa://"

	mimeJSON = "application/json"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "categories",
		Name:        "categories",
		Description: "Document categories and their documents",
		MIMEType:    mimeJSON,
	}, s.handleCategoriesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "categories/{name}",
		Name:        "category-documents",
		Description: "Documents in one category",
		MIMEType:    mimeJSON,
	}, s.handleCategoryResource)

	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "stats",
		Name:        "stats",
		Description: "Usage statistics for this session",
		MIMEType:    mimeJSON,
	}, s.handleStatsResource)
}

// handleCategoriesResource returns the whole catalogue.
func (s *Server) handleCategoriesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, s.ports.Catalogue.Names())
}

// handleCategoryResource returns the documents of one category.
func (s *Server) handleCategoryResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractCategoryName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	cat, ok := s.ports.Catalogue.Lookup(name)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResource(req.Params.URI, cat)
}

// handleStatsResource returns the usage snapshot.
func (s *Server) handleStatsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Stats == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	return jsonResource(req.Params.URI, statsOutput(s.ports.Stats.Snapshot()))
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: mimeJSON,
			Text:     string(data),
		}},
	}, nil
}

// extractCategoryName extracts the category from a URI like
// docqa://categories/{name}. Names may be percent-encoded.
func extractCategoryName(uri string) string {
	const prefix = uriScheme + "categories/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}
	raw := strings.TrimPrefix(uri, prefix)
	if raw == "" || strings.Contains(raw, "/") {
		return ""
	}
	name, err := url.PathUnescape(raw)
	if err != nil {
		return ""
	}
	return name
}
