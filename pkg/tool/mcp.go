package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// mcpTool wraps a single tool exposed by a remote MCP server so it can be
// registered and invoked like any local adapter.
type mcpTool struct {
	session     *mcp.ClientSession
	name        string
	description string
	schema      map[string]any
}

func (t *mcpTool) Name() string           { return t.name }
func (t *mcpTool) Description() string    { return t.description }
func (t *mcpTool) Schema() map[string]any { return t.schema }

func (t *mcpTool) Invoke(ctx context.Context, args map[string]any) Result {
	res, err := t.session.CallTool(ctx, &mcp.CallToolParams{Name: t.name, Arguments: args})
	if err != nil {
		return Failure("remote tool %s: %v", t.name, err)
	}
	text := flattenContent(res.Content)
	if res.IsError {
		if text == "" {
			text = "remote tool reported an error"
		}
		return Failure("%s", text)
	}
	if res.StructuredContent != nil {
		return Success(map[string]any{"content": res.StructuredContent})
	}
	return Success(map[string]any{"content": text})
}

func flattenContent(content []mcp.Content) string {
	var parts []string
	for _, c := range content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// RegisterMCPServer connects to a streamable-HTTP MCP server, lists its
// tools and registers each into the registry. The returned close function
// tears down the session.
func RegisterMCPServer(ctx context.Context, reg *Registry, endpoint, clientName string) (func() error, error) {
	client := mcp.NewClient(&mcp.Implementation{Name: clientName, Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, &mcp.StreamableClientTransport{Endpoint: endpoint}, nil)
	if err != nil {
		return nil, fmt.Errorf("tool: connect mcp server %s: %w", endpoint, err)
	}

	listed, err := session.ListTools(ctx, nil)
	if err != nil {
		_ = session.Close()
		return nil, fmt.Errorf("tool: list mcp tools: %w", err)
	}
	for _, t := range listed.Tools {
		if err := reg.Register(&mcpTool{
			session:     session,
			name:        t.Name,
			description: t.Description,
			schema:      schemaToMap(t.InputSchema),
		}); err != nil {
			_ = session.Close()
			return nil, err
		}
	}
	return session.Close, nil
}

// schemaToMap converts an SDK schema into the plain map form the model
// adapters expect, tolerating SDK type changes via a JSON round-trip.
func schemaToMap(schema any) map[string]any {
	out := map[string]any{"type": "object"}
	if schema == nil {
		return out
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return out
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil || len(m) == 0 {
		return out
	}
	return m
}
