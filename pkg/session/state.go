package session

// Scope identifies the lifetime of a state entry.
type Scope string

const (
	// ScopeTurn entries are cleared at the start of every dispatch.
	ScopeTurn Scope = "turn"
	// ScopeUser entries persist across turns; counters and user facts.
	ScopeUser Scope = "user"
	// ScopeSession entries persist across turns; pipeline artifacts. They
	// are kept after a pipeline run finishes so intermediates stay
	// inspectable; only Reset or session expiry clears them.
	ScopeSession Scope = "session"
)

// State is the mutable store for one conversation. The three scopes are
// explicit sub-maps rather than key-prefix conventions. State carries no
// lock: the Store serializes turns per session, and concurrent turns within
// one session are outside the design.
type State struct {
	turn    map[string]any
	user    map[string]any
	session map[string]any
}

// NewState returns an empty state.
func NewState() *State {
	return &State{
		turn:    map[string]any{},
		user:    map[string]any{},
		session: map[string]any{},
	}
}

func (s *State) scopeMap(scope Scope) map[string]any {
	switch scope {
	case ScopeUser:
		return s.user
	case ScopeSession:
		return s.session
	default:
		return s.turn
	}
}

// Set stores a value under the given scope.
func (s *State) Set(scope Scope, key string, value any) {
	s.scopeMap(scope)[key] = value
}

// Get retrieves a value and reports whether it was present.
func (s *State) Get(scope Scope, key string) (any, bool) {
	v, ok := s.scopeMap(scope)[key]
	return v, ok
}

// Int reads an integer value, tolerating the numeric types that survive a
// round-trip through map[string]any. Missing or non-numeric yields zero.
func (s *State) Int(scope Scope, key string) int {
	switch v := s.scopeMap(scope)[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// Bool reads a boolean value; missing or non-boolean yields false.
func (s *State) Bool(scope Scope, key string) bool {
	v, _ := s.scopeMap(scope)[key].(bool)
	return v
}

// String reads a string value; missing or non-string yields "".
func (s *State) String(scope Scope, key string) string {
	v, _ := s.scopeMap(scope)[key].(string)
	return v
}

// ClearTurn drops every turn-scoped entry. The router calls this at the
// start of each dispatch.
func (s *State) ClearTurn() {
	s.turn = map[string]any{}
}

// Reset drops everything, returning the state to empty.
func (s *State) Reset() {
	s.turn = map[string]any{}
	s.user = map[string]any{}
	s.session = map[string]any{}
}

// Snapshot returns a flat copy of all scopes with "<scope>:" key prefixes,
// for hooks and logs that want a read-only view.
func (s *State) Snapshot() map[string]any {
	out := make(map[string]any, len(s.turn)+len(s.user)+len(s.session))
	for k, v := range s.turn {
		out[string(ScopeTurn)+":"+k] = v
	}
	for k, v := range s.user {
		out[string(ScopeUser)+":"+k] = v
	}
	for k, v := range s.session {
		out[string(ScopeSession)+":"+k] = v
	}
	return out
}
