package model

import (
	"context"
	"errors"
	"sync"
)

// Scripted is a deterministic in-memory Model used by tests and offline
// demos. Responses are returned in the order they were enqueued; every
// incoming request is recorded for later inspection.
type Scripted struct {
	mu        sync.Mutex
	responses []*Response
	requests  []Request
}

// NewScripted builds a Scripted model from a fixed response sequence.
func NewScripted(responses ...*Response) *Scripted {
	return &Scripted{responses: responses}
}

// Enqueue appends another canned response.
func (s *Scripted) Enqueue(resp *Response) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses = append(s.responses, resp)
}

// Complete pops the next canned response.
func (s *Scripted) Complete(_ context.Context, req Request) (*Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, CloneRequest(req))
	if len(s.responses) == 0 {
		return nil, errors.New("scripted: response queue exhausted")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

// Requests returns every request seen so far.
func (s *Scripted) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Calls reports how many completions were requested.
func (s *Scripted) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// TextResponse is a convenience constructor for a plain assistant reply.
func TextResponse(text string) *Response {
	return &Response{Message: Message{Role: "assistant", Content: text}, StopReason: "end_turn"}
}

// ToolCallResponse is a convenience constructor for a tool invocation reply.
func ToolCallResponse(id, name string, args map[string]any) *Response {
	return &Response{
		Message: Message{
			Role:      "assistant",
			ToolCalls: []ToolCall{{ID: id, Name: name, Arguments: args}},
		},
		StopReason: "tool_use",
	}
}
