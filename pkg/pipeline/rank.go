package pipeline

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/selhaddad/tripscholar/pkg/session"
)

const topRanked = 3

// Rank orders scholarships by normalized award amount, highest first, and
// keeps the top three. It is a pure stage: deterministic, no model call,
// and it never consults the original request. Running it over its own
// output yields the same list.
type Rank struct{}

func NewRank() *Rank { return &Rank{} }

func (r *Rank) Name() string { return "rank" }

func (r *Rank) Run(_ context.Context, _ session.Request, state *session.State) (string, error) {
	raw := scholarshipList(state, KeyScholarshipResults)

	type scored struct {
		item   map[string]any
		amount float64
		parsed bool
	}
	items := make([]scored, 0, len(raw))
	for _, item := range raw {
		amount, _ := item["amount"].(string)
		value, ok := NormalizeAmount(amount)
		items = append(items, scored{item: item, amount: value, parsed: ok})
	}

	// Stable so equal amounts and the unparseable tail keep input order.
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].parsed != items[j].parsed {
			return items[i].parsed
		}
		return items[i].amount > items[j].amount
	})

	ranked := make([]map[string]any, 0, topRanked)
	for i, s := range items {
		if i == topRanked {
			break
		}
		ranked = append(ranked, s.item)
	}
	state.Set(session.ScopeSession, KeyRankedScholarships, ranked)
	return "", nil
}

// NormalizeAmount extracts a comparable number from a free-text award
// amount like "€1,700/month + tuition" or "$50,000 grant". The boolean is
// false when the text carries no figure at all ("Full tuition", "Rolling").
// Ranges and lists use the largest figure mentioned.
func NormalizeAmount(text string) (float64, bool) {
	best := 0.0
	found := false
	runes := []rune(text)
	for i := 0; i < len(runes); {
		if runes[i] < '0' || runes[i] > '9' {
			i++
			continue
		}
		j := i
		for j < len(runes) && (isAmountRune(runes[j])) {
			j++
		}
		token := strings.ReplaceAll(string(runes[i:j]), ",", "")
		token = strings.TrimRight(token, ".")
		if v, err := strconv.ParseFloat(token, 64); err == nil {
			found = true
			if v > best {
				best = v
			}
		}
		i = j
	}
	return best, found
}

func isAmountRune(r rune) bool {
	return (r >= '0' && r <= '9') || r == ',' || r == '.'
}

// scholarshipList reads a state key tolerant of both the concrete slice the
// stages write and the generic slice a JSON round-trip would produce.
func scholarshipList(state *session.State, key string) []map[string]any {
	v, ok := state.Get(session.ScopeSession, key)
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []map[string]any:
		return list
	case []any:
		out := make([]map[string]any, 0, len(list))
		for _, item := range list {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	default:
		return nil
	}
}
