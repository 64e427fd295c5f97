package router

import (
	"context"
	"testing"

	"github.com/selhaddad/tripscholar/pkg/hook"
	"github.com/selhaddad/tripscholar/pkg/session"
)

type stubTarget struct {
	name  string
	reply string
	calls int
}

func (s *stubTarget) Name() string { return s.name }
func (s *stubTarget) Run(context.Context, session.Request, *session.State) (string, error) {
	s.calls++
	return s.reply, nil
}

func testRouter() (*Router, map[string]*stubTarget) {
	targets := map[string]*stubTarget{
		"scholarship": {name: "scholarship", reply: "here are scholarships"},
		"weather":     {name: "weather", reply: "weather advice"},
		"holiday":     {name: "holiday", reply: "holiday list"},
		"cityfacts":   {name: "cityfacts", reply: "three facts"},
	}
	r := Assemble(hook.NewChain(),
		targets["scholarship"], targets["weather"], targets["holiday"], targets["cityfacts"])
	return r, targets
}

func dispatch(t *testing.T, r *Router, state *session.State, text string) Response {
	t.Helper()
	resp, err := r.Route(context.Background(), session.NewRequest("s1", text, nil), state)
	if err != nil {
		t.Fatalf("route %q: %v", text, err)
	}
	return resp
}

func TestRouterPriorityOrder(t *testing.T) {
	r, _ := testRouter()
	state := session.NewState()

	cases := []struct {
		text string
		want string
	}{
		// Scholarship terms outrank everything, even with weather words present.
		{"any scholarships for studying abroad? also how is the weather", "scholarship"},
		{"what to do in Rabat this weekend", "weather"},
		{"public holidays in Morocco next year", "holiday"},
		{"tell me about Casablanca", "cityfacts"},
		{"how do I bake bread", "decline"},
	}
	for _, tc := range cases {
		if resp := dispatch(t, r, state, tc.text); resp.Handler != tc.want {
			t.Errorf("Route(%q) → %s, want %s", tc.text, resp.Handler, tc.want)
		}
	}
}

func TestRouterDeclineIsCanned(t *testing.T) {
	r, targets := testRouter()
	resp := dispatch(t, r, session.NewState(), "how do I bake bread")
	if resp.Text != declineMessage {
		t.Fatalf("decline text = %q", resp.Text)
	}
	for name, target := range targets {
		if target.calls != 0 {
			t.Fatalf("%s ran on a declined request", name)
		}
	}
}

func TestRouterCallCountIncludesEveryDispatch(t *testing.T) {
	r, _ := testRouter()
	state := session.NewState()

	texts := []string{
		"scholarships please",
		"weather in Fes",
		"how do I bake bread", // decline still counts
		"public holidays in France",
	}
	for _, text := range texts {
		dispatch(t, r, state, text)
	}
	if got := state.Int(session.ScopeUser, hook.KeyCallCount); got != len(texts) {
		t.Fatalf("call_count = %d, want %d", got, len(texts))
	}
}

func TestRouterSkipShortCircuitsBeforeTarget(t *testing.T) {
	r, targets := testRouter()
	state := session.NewState()
	state.Set(session.ScopeUser, hook.KeySkipProcessing, true)

	resp := dispatch(t, r, state, "weather in Fes")
	if resp.Text != "handler weather skipped" {
		t.Fatalf("text = %q", resp.Text)
	}
	if targets["weather"].calls != 0 {
		t.Fatal("target ran despite short-circuit")
	}
	// Skipped dispatches still count.
	if got := state.Int(session.ScopeUser, hook.KeyCallCount); got != 1 {
		t.Fatalf("call_count = %d, want 1", got)
	}
}

func TestRouterClearsTurnScope(t *testing.T) {
	r, _ := testRouter()
	state := session.NewState()

	dispatch(t, r, state, "weather in Fes")
	if got := state.String(session.ScopeTurn, hook.KeyCurrentHandler); got != "weather" {
		t.Fatalf("current_handler = %q after weather turn", got)
	}
	dispatch(t, r, state, "public holidays in France")
	if got := state.String(session.ScopeTurn, hook.KeyCurrentHandler); got != "holiday" {
		t.Fatalf("current_handler = %q, stale turn state survived dispatch", got)
	}
}
