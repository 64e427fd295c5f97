package session

import (
	"reflect"
	"testing"
)

func TestStateScopesAreIndependent(t *testing.T) {
	s := NewState()
	s.Set(ScopeTurn, "k", "turn")
	s.Set(ScopeUser, "k", "user")
	s.Set(ScopeSession, "k", "session")

	if got := s.String(ScopeTurn, "k"); got != "turn" {
		t.Fatalf("turn k = %q", got)
	}
	if got := s.String(ScopeUser, "k"); got != "user" {
		t.Fatalf("user k = %q", got)
	}
	if got := s.String(ScopeSession, "k"); got != "session" {
		t.Fatalf("session k = %q", got)
	}
}

func TestClearTurnKeepsOtherScopes(t *testing.T) {
	s := NewState()
	s.Set(ScopeTurn, "handler", "weather")
	s.Set(ScopeUser, "count", 3)
	s.Set(ScopeSession, "results", []string{"a"})

	s.ClearTurn()

	if _, ok := s.Get(ScopeTurn, "handler"); ok {
		t.Fatal("turn entry survived ClearTurn")
	}
	if got := s.Int(ScopeUser, "count"); got != 3 {
		t.Fatalf("user count = %d", got)
	}
	if _, ok := s.Get(ScopeSession, "results"); !ok {
		t.Fatal("session entry lost on ClearTurn")
	}
}

func TestIntToleratesNumericTypes(t *testing.T) {
	s := NewState()
	s.Set(ScopeUser, "a", 2)
	s.Set(ScopeUser, "b", int64(3))
	s.Set(ScopeUser, "c", float64(4))
	s.Set(ScopeUser, "d", "not a number")

	for key, want := range map[string]int{"a": 2, "b": 3, "c": 4, "d": 0, "missing": 0} {
		if got := s.Int(ScopeUser, key); got != want {
			t.Errorf("Int(%q) = %d, want %d", key, got, want)
		}
	}
}

func TestSnapshotPrefixesScopes(t *testing.T) {
	s := NewState()
	s.Set(ScopeTurn, "handler", "weather")
	s.Set(ScopeUser, "count", 1)

	want := map[string]any{"turn:handler": "weather", "user:count": 1}
	if got := s.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("snapshot = %v, want %v", got, want)
	}
}

func TestReset(t *testing.T) {
	s := NewState()
	s.Set(ScopeUser, "count", 9)
	s.Set(ScopeSession, "results", "x")
	s.Reset()
	if len(s.Snapshot()) != 0 {
		t.Fatalf("snapshot after reset = %v", s.Snapshot())
	}
}
