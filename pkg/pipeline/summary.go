package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/selhaddad/tripscholar/pkg/hook"
	"github.com/selhaddad/tripscholar/pkg/model"
	"github.com/selhaddad/tripscholar/pkg/session"
)

const summaryInstruction = `You present scholarship options to a student.
Write a short, encouraging summary of the options listed, naming each
scholarship with its award amount and deadline, and close with one concrete
next step. Speak naturally to the student. Never mention file formats,
internal storage or how the data was obtained.`

const noResultsMessage = "I couldn't find scholarships matching your profile right now. " +
	"That doesn't mean there are none: official portals like Campus France, DAAD " +
	"and your target universities' funding pages are updated often, so it's worth " +
	"checking them directly and trying here again later."

// Summary turns the ranked list into encouraging prose. An empty list
// yields an honest canned message with no model call.
type Summary struct {
	backend   model.Model
	hooks     *hook.Chain
	modelName string
}

func NewSummary(backend model.Model, hooks *hook.Chain, modelName string) *Summary {
	return &Summary{backend: backend, hooks: hooks, modelName: modelName}
}

func (s *Summary) Name() string { return "summarize" }

func (s *Summary) Run(ctx context.Context, _ session.Request, state *session.State) (string, error) {
	ranked := scholarshipList(state, KeyRankedScholarships)
	if len(ranked) == 0 {
		return noResultsMessage, nil
	}

	mreq := &model.Request{
		System:   summaryInstruction,
		Messages: []model.Message{{Role: "user", Content: renderScholarships(ranked)}},
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
	if resp, short := out.ShortCircuited(); short {
		return resp, nil
	}

	resp, err := s.backend.Complete(ctx, *mreq)
	if err != nil {
		return "", fmt.Errorf("pipeline: summary generation: %w", err)
	}
	return strings.TrimSpace(resp.Message.Content), nil
}

// renderScholarships lays the entries out as plain labelled lines so the
// model never sees serialization artifacts it could echo back.
func renderScholarships(list []map[string]any) string {
	var b strings.Builder
	b.WriteString("Scholarship options for the student:\n")
	for i, item := range list {
		fmt.Fprintf(&b, "%d. %s", i+1, str(item, "name"))
		if amount := str(item, "amount"); amount != "" {
			fmt.Fprintf(&b, "; amount: %s", amount)
		}
		if deadline := str(item, "deadline"); deadline != "" {
			fmt.Fprintf(&b, "; deadline: %s", deadline)
		}
		if reqs := str(item, "requirements"); reqs != "" {
			fmt.Fprintf(&b, "; requirements: %s", reqs)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func str(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
