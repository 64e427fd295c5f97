// Package model abstracts the generation backend behind a single Complete
// call so handlers, pipeline stages and tests can swap providers freely.
package model

import "context"

// Message is one turn of a model conversation. Roles are "user",
// "assistant", "system" and "tool"; a tool message carries the serialized
// tool result in Content and identifies the invocation through ToolCalls.
type Message struct {
	Role      string
	Content   string
	ToolCalls []ToolCall
}

// ToolCall is a tool invocation the model requested.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]any
}

// ToolDefinition declares a callable tool to the backend. Parameters is a
// JSON-schema object.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// Request is a single completion request. Model, MaxTokens and Temperature
// override the adapter defaults when set.
type Request struct {
	Messages    []Message
	System      string
	Tools       []ToolDefinition
	Model       string
	MaxTokens   int
	Temperature *float64
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// Response is the backend's answer: assistant text, any requested tool
// calls, and accounting.
type Response struct {
	Message    Message
	Usage      Usage
	StopReason string
}

// Model is the generation backend contract.
type Model interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// CloneRequest deep-copies a request so recorded copies cannot alias the
// caller's slices and maps.
func CloneRequest(req Request) Request {
	out := req
	if req.Messages != nil {
		out.Messages = make([]Message, len(req.Messages))
		for i, msg := range req.Messages {
			out.Messages[i] = cloneMessage(msg)
		}
	}
	if req.Tools != nil {
		out.Tools = make([]ToolDefinition, len(req.Tools))
		for i, def := range req.Tools {
			out.Tools[i] = def
			out.Tools[i].Parameters = cloneMap(def.Parameters)
		}
	}
	if req.Temperature != nil {
		t := *req.Temperature
		out.Temperature = &t
	}
	return out
}

func cloneMessage(msg Message) Message {
	out := msg
	if msg.ToolCalls != nil {
		out.ToolCalls = make([]ToolCall, len(msg.ToolCalls))
		for i, call := range msg.ToolCalls {
			out.ToolCalls[i] = call
			out.ToolCalls[i].Arguments = cloneMap(call.Arguments)
		}
	}
	return out
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
