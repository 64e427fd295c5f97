// Package session holds the per-conversation request shape and the scoped
// mutable state that handlers and pipeline stages communicate through.
package session

// Turn is one prior exchange in the conversation history.
type Turn struct {
	Role string
	Text string
}

// Request is the immutable input for a single dispatch: the owning session,
// the raw user text and the ordered history of prior turns.
type Request struct {
	SessionID string
	Text      string
	History   []Turn
}

// NewRequest builds a request with a defensive copy of the history.
func NewRequest(sessionID, text string, history []Turn) Request {
	return Request{
		SessionID: sessionID,
		Text:      text,
		History:   append([]Turn(nil), history...),
	}
}
