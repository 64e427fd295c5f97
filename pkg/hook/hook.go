// Package hook implements the interception chain that runs around handler
// dispatch, model generation and tool invocation. Hooks run in registration
// order; the first hook that does not continue decides the outcome, and a
// hook error aborts the turn.
package hook

import (
	"context"
	"fmt"
	"sync"

	"github.com/selhaddad/tripscholar/pkg/model"
	"github.com/selhaddad/tripscholar/pkg/session"
	"github.com/selhaddad/tripscholar/pkg/tool"
)

// Session state keys maintained by the built-in bookkeeping hook or honored
// by it.
const (
	// KeyCallCount counts handler invocations across the session lifetime.
	KeyCallCount = "call_count"
	// KeyCurrentHandler names the handler serving the current turn.
	KeyCurrentHandler = "current_handler"
	// KeySkipProcessing, when set truthy by an operator or test, makes the
	// bookkeeping hook short-circuit every turn before any model call.
	KeySkipProcessing = "skip_processing"
)

type decision int

const (
	decisionContinue decision = iota
	decisionShortCircuit
	decisionReplace
)

// Outcome is what a hook returns: continue the normal flow, short-circuit
// the turn with a final response, or replace a tool result.
type Outcome struct {
	kind     decision
	response string
	result   tool.Result
}

// Continue lets the chain proceed to the next hook and then the normal flow.
func Continue() Outcome { return Outcome{kind: decisionContinue} }

// ShortCircuit ends the turn immediately with the given response text. No
// model or tool calls run after it.
func ShortCircuit(response string) Outcome {
	return Outcome{kind: decisionShortCircuit, response: response}
}

// ReplaceResult substitutes the given result for the one the tool produced.
// Only meaningful for tool hooks.
func ReplaceResult(res tool.Result) Outcome {
	return Outcome{kind: decisionReplace, result: res}
}

// ShortCircuited reports whether the outcome ends the turn, and with what.
func (o Outcome) ShortCircuited() (string, bool) {
	return o.response, o.kind == decisionShortCircuit
}

// Replacement reports whether the outcome swaps the tool result.
func (o Outcome) Replacement() (tool.Result, bool) {
	return o.result, o.kind == decisionReplace
}

// EntryContext is passed to entry hooks before a handler begins its turn.
type EntryContext struct {
	Handler string
	Request session.Request
	State   *session.State
}

// GenerationContext is passed to generation hooks before each model call.
// Hooks may mutate Request in place.
type GenerationContext struct {
	Handler string
	Request *model.Request
	State   *session.State
}

// ToolContext is passed to tool hooks after a tool has been invoked.
type ToolContext struct {
	Handler string
	Tool    string
	Args    map[string]any
	Result  tool.Result
	State   *session.State
}

type (
	EntryHook      func(ctx context.Context, ec *EntryContext) (Outcome, error)
	GenerationHook func(ctx context.Context, gc *GenerationContext) (Outcome, error)
	ToolHook       func(ctx context.Context, tc *ToolContext) (Outcome, error)
)

// Chain holds the registered hooks for the three interception points. The
// bookkeeping entry hook is always present and always runs first.
type Chain struct {
	mu         sync.RWMutex
	entry      []EntryHook
	generation []GenerationHook
	tool       []ToolHook
}

func NewChain() *Chain {
	return &Chain{entry: []EntryHook{bookkeeping}}
}

func (c *Chain) RegisterEntry(h EntryHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entry = append(c.entry, h)
}

func (c *Chain) RegisterGeneration(h GenerationHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation = append(c.generation, h)
}

func (c *Chain) RegisterTool(h ToolHook) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tool = append(c.tool, h)
}

// FireEntry runs the entry hooks. The first non-continue outcome stops the
// chain and is returned; a hook error aborts the turn.
func (c *Chain) FireEntry(ctx context.Context, ec *EntryContext) (Outcome, error) {
	c.mu.RLock()
	hooks := c.entry
	c.mu.RUnlock()
	for _, h := range hooks {
		out, err := h(ctx, ec)
		if err != nil {
			return Continue(), fmt.Errorf("hook: entry hook for %s: %w", ec.Handler, err)
		}
		if out.kind != decisionContinue {
			return out, nil
		}
	}
	return Continue(), nil
}

// FireGeneration runs the generation hooks before a model call.
func (c *Chain) FireGeneration(ctx context.Context, gc *GenerationContext) (Outcome, error) {
	c.mu.RLock()
	hooks := c.generation
	c.mu.RUnlock()
	for _, h := range hooks {
		out, err := h(ctx, gc)
		if err != nil {
			return Continue(), fmt.Errorf("hook: generation hook for %s: %w", gc.Handler, err)
		}
		if out.kind != decisionContinue {
			return out, nil
		}
	}
	return Continue(), nil
}

// FireTool runs the tool hooks after a tool invocation. A replacement
// outcome updates tc.Result and keeps running later hooks so each sees the
// effective result.
func (c *Chain) FireTool(ctx context.Context, tc *ToolContext) (Outcome, error) {
	c.mu.RLock()
	hooks := c.tool
	c.mu.RUnlock()
	final := Continue()
	for _, h := range hooks {
		out, err := h(ctx, tc)
		if err != nil {
			return Continue(), fmt.Errorf("hook: tool hook for %s/%s: %w", tc.Handler, tc.Tool, err)
		}
		if res, ok := out.Replacement(); ok {
			tc.Result = res
			final = out
			continue
		}
		if _, ok := out.ShortCircuited(); ok {
			return out, nil
		}
	}
	if _, ok := final.Replacement(); ok {
		return ReplaceResult(tc.Result), nil
	}
	return Continue(), nil
}

// bookkeeping is the mandatory first entry hook. It advances the session
// call counter, records the active handler for the turn, and honors the
// skip flag by ending the turn before any model work happens.
func bookkeeping(_ context.Context, ec *EntryContext) (Outcome, error) {
	count := ec.State.Int(session.ScopeUser, KeyCallCount) + 1
	ec.State.Set(session.ScopeUser, KeyCallCount, count)
	ec.State.Set(session.ScopeTurn, KeyCurrentHandler, ec.Handler)

	if ec.State.Bool(session.ScopeUser, KeySkipProcessing) {
		return ShortCircuit(fmt.Sprintf("handler %s skipped", ec.Handler)), nil
	}
	return Continue(), nil
}
