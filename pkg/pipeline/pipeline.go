// Package pipeline runs the fixed scholarship workflow: search for
// scholarships matching the student's profile, rank them by award amount,
// then summarize the top picks. Stages communicate only through session
// state and transitions are unconditional; degraded data advances rather
// than aborting the run.
package pipeline

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/selhaddad/tripscholar/pkg/session"
)

// Session-scope keys the stages hand results through.
const (
	KeyScholarshipResults = "scholarship_results"
	KeyRankedScholarships = "ranked_scholarships"
	KeySearchFailed       = "scholarship_search_failed"
)

var tracer = otel.Tracer("tripscholar/pipeline")

// Stage is one step of the workflow. Intermediate stages return an empty
// string; the final stage returns the user-facing text.
type Stage interface {
	Name() string
	Run(ctx context.Context, req session.Request, state *session.State) (string, error)
}

// Pipeline executes its stages in order and returns the last stage's
// output.
type Pipeline struct {
	name   string
	stages []Stage
}

// NewScholarship assembles the canonical search → rank → summarize chain.
func NewScholarship(search, summary Stage) *Pipeline {
	return &Pipeline{
		name:   "scholarship",
		stages: []Stage{search, NewRank(), summary},
	}
}

func (p *Pipeline) Name() string { return p.name }

func (p *Pipeline) Run(ctx context.Context, req session.Request, state *session.State) (string, error) {
	ctx, span := tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(attribute.String("pipeline", p.name)))
	defer span.End()

	var output string
	for _, stage := range p.stages {
		sctx, sspan := tracer.Start(ctx, "pipeline.stage",
			trace.WithAttributes(attribute.String("stage", stage.Name())))
		text, err := stage.Run(sctx, req, state)
		sspan.End()
		if err != nil {
			return "", fmt.Errorf("pipeline: %s stage %s: %w", p.name, stage.Name(), err)
		}
		output = text
	}
	return output, nil
}
