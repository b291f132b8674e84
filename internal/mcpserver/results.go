package mcpserver

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bonnie-mapipa/esri-gis-mcp/internal/domain"
)

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

// jsonResult renders a value as indented JSON text content.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}
	return textResult(string(body)), nil
}

// rawResult passes an upstream JSON payload through untouched.
func rawResult(body json.RawMessage) *mcp.CallToolResult {
	return textResult(string(body))
}

// errorResult renders a failed operation with the uniform error envelope.
// Tool failures are reported in-band, never as protocol errors.
func errorResult(operation string, err error) *mcp.CallToolResult {
	body, _ := json.MarshalIndent(map[string]string{
		"error":     err.Error(),
		"operation": operation,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}, "", "  ")
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(body)}},
		IsError: true,
	}
}

func decodeArgs(req *mcp.CallToolRequest, v any) error {
	if len(req.Params.Arguments) == 0 {
		return nil
	}
	if err := json.Unmarshal(req.Params.Arguments, v); err != nil {
		return fmt.Errorf("%w: malformed arguments: %v", domain.ErrInvalidInput, err)
	}
	return nil
}
