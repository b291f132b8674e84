package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bonnie-mapipa/esri-gis-mcp/internal/arcgis"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/catalog"
	"github.com/bonnie-mapipa/esri-gis-mcp/internal/logger"
)

// Server exposes the dataset catalog and layer queries over the Model
// Context Protocol on stdio.
type Server struct {
	mcp     *mcp.Server
	catalog *catalog.Catalog
	client  *arcgis.Client
	logger  logger.Logger
}

// New builds the MCP server and registers every tool and resource
// template.
func New(cat *catalog.Catalog, client *arcgis.Client, version string, log logger.Logger) *Server {
	s := &Server{
		catalog: cat,
		client:  client,
		logger:  log,
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    "ethekwini-gis-mcp",
		Version: version,
	}, &mcp.ServerOptions{
		HasTools:     true,
		HasResources: true,
	})

	for _, reg := range s.tools() {
		tool := reg.tool
		s.mcp.AddTool(&tool, reg.handler)
	}
	s.registerResources()

	return s
}

// Run serves MCP over stdio until the context is canceled or the client
// disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("MCP server starting (stdio transport)")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}
