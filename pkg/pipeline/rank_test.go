package pipeline

import (
	"context"
	"reflect"
	"testing"

	"github.com/selhaddad/tripscholar/pkg/session"
)

func TestNormalizeAmount(t *testing.T) {
	cases := []struct {
		in     string
		want   float64
		parsed bool
	}{
		{"€1,700/month + tuition", 1700, true},
		{"$50,000 grant", 50000, true},
		{"€10,000-50,000", 50000, true},
		{"CHF 1,920/month", 1920, true},
		{"Up to €30,000", 30000, true},
		{"€934/month + insurance", 934, true},
		{"Full tuition + living expenses", 0, false},
		{"Full funding", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, parsed := NormalizeAmount(tc.in)
		if got != tc.want || parsed != tc.parsed {
			t.Errorf("NormalizeAmount(%q) = (%v, %v), want (%v, %v)",
				tc.in, got, parsed, tc.want, tc.parsed)
		}
	}
}

func rankInput(amounts ...string) []map[string]any {
	out := make([]map[string]any, 0, len(amounts))
	for i, a := range amounts {
		out = append(out, map[string]any{"name": string(rune('A' + i)), "amount": a})
	}
	return out
}

func rankedNames(state *session.State) []string {
	v, _ := state.Get(session.ScopeSession, KeyRankedScholarships)
	list := v.([]map[string]any)
	names := make([]string, 0, len(list))
	for _, item := range list {
		names = append(names, item["name"].(string))
	}
	return names
}

func TestRankOrdersByAmountDescending(t *testing.T) {
	state := session.NewState()
	state.Set(session.ScopeSession, KeyScholarshipResults,
		rankInput("$5,000", "Full tuition", "$20,000", "$12,000", "$1,000"))

	if _, err := NewRank().Run(context.Background(), session.Request{}, state); err != nil {
		t.Fatalf("rank: %v", err)
	}
	// Highest amounts win; the unparseable entry never displaces a figure.
	if got, want := rankedNames(state), []string{"C", "D", "A"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ranked = %v, want %v", got, want)
	}
}

func TestRankUnparseableSortsLastStably(t *testing.T) {
	state := session.NewState()
	state.Set(session.ScopeSession, KeyScholarshipResults,
		rankInput("Full tuition", "Full funding", "$500"))

	if _, err := NewRank().Run(context.Background(), session.Request{}, state); err != nil {
		t.Fatalf("rank: %v", err)
	}
	if got, want := rankedNames(state), []string{"C", "A", "B"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ranked = %v, want %v", got, want)
	}
}

func TestRankIdempotent(t *testing.T) {
	state := session.NewState()
	state.Set(session.ScopeSession, KeyScholarshipResults,
		rankInput("$9,000", "$3,000", "$7,000", "$1,000"))

	rank := NewRank()
	if _, err := rank.Run(context.Background(), session.Request{}, state); err != nil {
		t.Fatalf("first rank: %v", err)
	}
	first := rankedNames(state)

	// Feed its own output back in.
	v, _ := state.Get(session.ScopeSession, KeyRankedScholarships)
	state.Set(session.ScopeSession, KeyScholarshipResults, v)
	if _, err := rank.Run(context.Background(), session.Request{}, state); err != nil {
		t.Fatalf("second rank: %v", err)
	}
	if got := rankedNames(state); !reflect.DeepEqual(got, first) {
		t.Fatalf("second pass = %v, want %v", got, first)
	}
}

func TestRankEmptyInput(t *testing.T) {
	state := session.NewState()
	state.Set(session.ScopeSession, KeyScholarshipResults, []map[string]any{})

	if _, err := NewRank().Run(context.Background(), session.Request{}, state); err != nil {
		t.Fatalf("rank: %v", err)
	}
	if got := rankedNames(state); len(got) != 0 {
		t.Fatalf("ranked = %v, want empty", got)
	}
}
