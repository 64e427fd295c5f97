package pipeline

import (
	"context"
	"fmt"

	"github.com/selhaddad/tripscholar/pkg/hook"
	"github.com/selhaddad/tripscholar/pkg/model"
	"github.com/selhaddad/tripscholar/pkg/session"
	"github.com/selhaddad/tripscholar/pkg/tool"
)

const searchInstruction = `You extract a student's profile from their
message. Identify their country of origin, field of study and study level
(bachelor, master or phd), then call search_scholarships with those values.
If the message does not state a value, make the closest reasonable guess
and proceed; always call the tool exactly once.`

// Search extracts the student profile through the model, invokes the
// scholarship tool and stores the raw list in session state. A tool failure
// or a model that never calls the tool writes an empty list plus a failure
// marker so the later stages can degrade honestly instead of aborting.
type Search struct {
	backend   model.Model
	registry  *tool.Registry
	hooks     *hook.Chain
	modelName string
}

func NewSearch(backend model.Model, registry *tool.Registry, hooks *hook.Chain, modelName string) *Search {
	return &Search{backend: backend, registry: registry, hooks: hooks, modelName: modelName}
}

func (s *Search) Name() string { return "search" }

func (s *Search) Run(ctx context.Context, req session.Request, state *session.State) (string, error) {
	mreq := &model.Request{
		System:   searchInstruction,
		Messages: []model.Message{{Role: "user", Content: req.Text}},
		Tools:    s.toolDefinitions(),
		Model:    s.modelName,
	}
	out, err := s.hooks.FireGeneration(ctx, &hook.GenerationContext{
		Handler: "scholarship",
		Request: mreq,
		State:   state,
	})
	if err != nil {
		return "", err
	}
	if _, short := out.ShortCircuited(); short {
		s.markFailed(state)
		return "", nil
	}

	resp, err := s.backend.Complete(ctx, *mreq)
	if err != nil {
		return "", fmt.Errorf("pipeline: search extraction: %w", err)
	}
	if len(resp.Message.ToolCalls) == 0 {
		s.markFailed(state)
		return "", nil
	}

	call := resp.Message.ToolCalls[0]
	result := s.registry.Invoke(ctx, call.Name, call.Arguments)
	tc := &hook.ToolContext{
		Handler: "scholarship",
		Tool:    call.Name,
		Args:    call.Arguments,
		Result:  result,
		State:   state,
	}
	if _, err := s.hooks.FireTool(ctx, tc); err != nil {
		return "", err
	}
	if !tc.Result.OK {
		s.markFailed(state)
		return "", nil
	}

	list := extractScholarships(tc.Result.Data)
	state.Set(session.ScopeSession, KeyScholarshipResults, list)
	state.Set(session.ScopeSession, KeySearchFailed, false)
	return "", nil
}

func (s *Search) markFailed(state *session.State) {
	state.Set(session.ScopeSession, KeyScholarshipResults, []map[string]any{})
	state.Set(session.ScopeSession, KeySearchFailed, true)
}

func (s *Search) toolDefinitions() []model.ToolDefinition {
	t, ok := s.registry.Get("search_scholarships")
	if !ok {
		return nil
	}
	return []model.ToolDefinition{{
		Name:        t.Name(),
		Description: t.Description(),
		Parameters:  t.Schema(),
	}}
}

func extractScholarships(data any) []map[string]any {
	m, ok := data.(map[string]any)
	if !ok {
		return nil
	}
	switch raw := m["scholarships"].(type) {
	case []map[string]any:
		return raw
	case []any:
		out := make([]map[string]any, 0, len(raw))
		for _, item := range raw {
			if entry, ok := item.(map[string]any); ok {
				out = append(out, entry)
			}
		}
		return out
	default:
		return nil
	}
}
