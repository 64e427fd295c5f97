// Package tool wraps every external data fetch behind a uniform call
// contract. An adapter never lets a transport error escape: every outcome is
// a Result, either a success payload or a failure with a readable reason.
package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Result is the tagged outcome of one tool invocation.
type Result struct {
	OK     bool           `json:"ok"`
	Data   map[string]any `json:"data,omitempty"`
	Reason string         `json:"reason,omitempty"`
}

// Success builds a successful result carrying the payload fields.
func Success(data map[string]any) Result {
	return Result{OK: true, Data: data}
}

// Failure builds a failed result with a human-readable reason.
func Failure(format string, args ...any) Result {
	return Result{OK: false, Reason: fmt.Sprintf(format, args...)}
}

// JSON serializes the result for feeding back into a conversation.
func (r Result) JSON() string {
	data, err := json.Marshal(r)
	if err != nil {
		return `{"ok":false,"reason":"unserializable tool result"}`
	}
	return string(data)
}

// Tool is a single external capability. Invoke blocks until the adapter
// produces a Result or ctx expires; it must not panic and must not return
// transport errors as anything but a failed Result.
type Tool interface {
	Name() string
	Description() string
	Schema() map[string]any
	Invoke(ctx context.Context, args map[string]any) Result
}

// Registry keeps the mapping between tool names and implementations.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

// Register inserts a tool when its name is not in use.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return fmt.Errorf("tool is nil")
	}
	name := t.Name()
	if name == "" {
		return fmt.Errorf("tool name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %s already registered", name)
	}
	r.tools[name] = t
	return nil
}

// Get fetches a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// List produces a snapshot of all registered tools.
func (r *Registry) List() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t)
	}
	return out
}

// Invoke runs a registered tool. An unknown name is an adapter failure like
// any other, not an error.
func (r *Registry) Invoke(ctx context.Context, name string, args map[string]any) Result {
	t, ok := r.Get(name)
	if !ok {
		return Failure("tool %s is not available", name)
	}
	return t.Invoke(ctx, args)
}
