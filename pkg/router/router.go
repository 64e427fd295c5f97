// Package router classifies incoming requests and dispatches them to a
// handler or pipeline. Classification is an ordered first-match scan over
// keyword predicates; anything unmatched gets a canned decline with no
// generation call.
package router

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/selhaddad/tripscholar/pkg/hook"
	"github.com/selhaddad/tripscholar/pkg/session"
)

const declineHandler = "decline"

const declineMessage = "I can help with scholarship searches, weather-based activity " +
	"advice, public holidays, and facts about cities. Could you rephrase your " +
	"question in one of those areas?"

var tracer = otel.Tracer("tripscholar/router")

// Target is anything the router can dispatch to: a handler or a pipeline.
type Target interface {
	Name() string
	Run(ctx context.Context, req session.Request, state *session.State) (string, error)
}

// Response is the routed turn's result.
type Response struct {
	Handler string
	Text    string
}

type route struct {
	target Target
	match  func(string) bool
}

// Router holds the ordered routes and the hook chain fired at dispatch.
type Router struct {
	routes []route
	hooks  *hook.Chain
}

func New(hooks *hook.Chain) *Router {
	return &Router{hooks: hooks}
}

// Handle appends a route. Order is priority: the first matching route wins.
func (r *Router) Handle(target Target, match func(string) bool) {
	r.routes = append(r.routes, route{target: target, match: match})
}

// Keywords builds a case-insensitive any-of substring predicate.
func Keywords(words ...string) func(string) bool {
	lowered := make([]string, len(words))
	for i, w := range words {
		lowered[i] = strings.ToLower(w)
	}
	return func(text string) bool {
		text = strings.ToLower(text)
		for _, w := range lowered {
			if strings.Contains(text, w) {
				return true
			}
		}
		return false
	}
}

// Route classifies the request and runs the winning target. Turn scope is
// cleared first, then entry hooks fire with the chosen name; a
// short-circuit outcome returns immediately and nothing else runs. Handler
// output is returned untouched.
func (r *Router) Route(ctx context.Context, req session.Request, state *session.State) (Response, error) {
	state.ClearTurn()

	var target Target
	name := declineHandler
	for _, rt := range r.routes {
		if rt.match(req.Text) {
			target = rt.target
			name = rt.target.Name()
			break
		}
	}

	ctx, span := tracer.Start(ctx, "router.route",
		trace.WithAttributes(attribute.String("handler", name)))
	defer span.End()

	out, err := r.hooks.FireEntry(ctx, &hook.EntryContext{
		Handler: name,
		Request: req,
		State:   state,
	})
	if err != nil {
		return Response{}, err
	}
	if resp, short := out.ShortCircuited(); short {
		return Response{Handler: name, Text: resp}, nil
	}

	if target == nil {
		return Response{Handler: declineHandler, Text: declineMessage}, nil
	}
	text, err := target.Run(ctx, req, state)
	if err != nil {
		return Response{}, err
	}
	return Response{Handler: name, Text: text}, nil
}
