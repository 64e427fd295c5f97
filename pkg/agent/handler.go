// Package agent implements named task handlers: a capability bound to an
// instruction, a generation backend and a slice of the tool registry. A
// handler runs an agent loop, feeding tool results back into the same
// conversation until the model answers in plain text.
package agent

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/selhaddad/tripscholar/pkg/hook"
	"github.com/selhaddad/tripscholar/pkg/model"
	"github.com/selhaddad/tripscholar/pkg/session"
	"github.com/selhaddad/tripscholar/pkg/tool"
)

const defaultMaxIterations = 6

var tracer = otel.Tracer("tripscholar/agent")

// Handler is a named capability. It never touches session counters itself;
// the hook chain owns that bookkeeping.
type Handler struct {
	name          string
	purpose       string
	instruction   string
	backend       model.Model
	registry      *tool.Registry
	toolNames     []string
	hooks         *hook.Chain
	modelName     string
	maxIterations int
}

type Option func(*Handler)

// WithTools restricts the handler to the named registry tools. Without it
// the handler declares no tools at all.
func WithTools(names ...string) Option {
	return func(h *Handler) { h.toolNames = names }
}

// WithModelName overrides the backend's default model for this handler.
func WithModelName(name string) Option {
	return func(h *Handler) { h.modelName = name }
}

func WithMaxIterations(n int) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxIterations = n
		}
	}
}

func New(name, purpose, instruction string, backend model.Model, registry *tool.Registry, hooks *hook.Chain, opts ...Option) *Handler {
	h := &Handler{
		name:          name,
		purpose:       purpose,
		instruction:   instruction,
		backend:       backend,
		registry:      registry,
		hooks:         hooks,
		maxIterations: defaultMaxIterations,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Name() string    { return h.name }
func (h *Handler) Purpose() string { return h.purpose }

// Run executes the agent loop for one turn. Generation hooks fire before
// every model call, tool hooks after every tool invocation; either may end
// the turn early with a final response.
func (h *Handler) Run(ctx context.Context, req session.Request, state *session.State) (string, error) {
	ctx, span := tracer.Start(ctx, "handler.run",
		trace.WithAttributes(attribute.String("handler", h.name)))
	defer span.End()

	msgs := conversationMessages(req)
	for i := 0; i < h.maxIterations; i++ {
		mreq := &model.Request{
			System:   h.instruction,
			Messages: msgs,
			Tools:    h.toolDefinitions(),
			Model:    h.modelName,
		}
		out, err := h.hooks.FireGeneration(ctx, &hook.GenerationContext{
			Handler: h.name,
			Request: mreq,
			State:   state,
		})
		if err != nil {
			return "", err
		}
		if resp, short := out.ShortCircuited(); short {
			return resp, nil
		}

		resp, err := h.backend.Complete(ctx, *mreq)
		if err != nil {
			return "", fmt.Errorf("agent: %s generation: %w", h.name, err)
		}
		if len(resp.Message.ToolCalls) == 0 {
			return strings.TrimSpace(resp.Message.Content), nil
		}

		msgs = append(msgs, resp.Message)
		for _, call := range resp.Message.ToolCalls {
			result := h.registry.Invoke(ctx, call.Name, call.Arguments)
			tc := &hook.ToolContext{
				Handler: h.name,
				Tool:    call.Name,
				Args:    call.Arguments,
				Result:  result,
				State:   state,
			}
			tout, err := h.hooks.FireTool(ctx, tc)
			if err != nil {
				return "", err
			}
			if resp, short := tout.ShortCircuited(); short {
				return resp, nil
			}
			msgs = append(msgs, model.Message{
				Role:      "tool",
				Content:   tc.Result.JSON(),
				ToolCalls: []model.ToolCall{{ID: call.ID, Name: call.Name}},
			})
		}
	}
	return "", fmt.Errorf("agent: %s exceeded %d tool iterations", h.name, h.maxIterations)
}

// conversationMessages rebuilds the model conversation from the stored
// history plus the current user text.
func conversationMessages(req session.Request) []model.Message {
	msgs := make([]model.Message, 0, len(req.History)+1)
	for _, turn := range req.History {
		msgs = append(msgs, model.Message{Role: turn.Role, Content: turn.Text})
	}
	return append(msgs, model.Message{Role: "user", Content: req.Text})
}

func (h *Handler) toolDefinitions() []model.ToolDefinition {
	if len(h.toolNames) == 0 {
		return nil
	}
	defs := make([]model.ToolDefinition, 0, len(h.toolNames))
	for _, name := range h.toolNames {
		t, ok := h.registry.Get(name)
		if !ok {
			continue
		}
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Schema(),
		})
	}
	return defs
}
