package main

import (
	"flag"
	"log"

	"github.com/bonnie-mapipa/esri-gis-mcp/internal/app"
)

func main() {
	mcpMode := flag.Bool("mcp", false, "serve MCP over stdio instead of HTTP")
	flag.Parse()

	if err := app.New(*mcpMode).Run(); err != nil {
		log.Fatalf("esri-gis-mcp failed to start: %v", err)
	}
}
