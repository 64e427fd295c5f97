package tool

import (
	"context"
	"net/url"
	"strings"
)

const defaultScholarshipURL = "https://scholarshipsapi.com/search"

// ScholarshipTool searches scholarships for a country, field and study
// level. When the live source is unavailable it serves a built-in dataset
// keyed by country; that fallback is designed resilience, not an error path.
type ScholarshipTool struct {
	client  *httpClient
	baseURL string
}

// ScholarshipOption overrides the endpoint, mainly for tests.
type ScholarshipOption func(*ScholarshipTool)

// WithScholarshipEndpoint points the adapter at an alternate URL. Empty
// disables the live call entirely and serves fallback data only.
func WithScholarshipEndpoint(base string) ScholarshipOption {
	return func(s *ScholarshipTool) { s.baseURL = base }
}

// NewScholarshipTool builds the adapter with the default endpoint.
func NewScholarshipTool(opts ...ScholarshipOption) *ScholarshipTool {
	s := &ScholarshipTool{client: newHTTPClient(0), baseURL: defaultScholarshipURL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *ScholarshipTool) Name() string { return "search_scholarships" }

func (s *ScholarshipTool) Description() string {
	return "Search scholarships by country of origin, field of study and level (bachelor, master, phd)."
}

func (s *ScholarshipTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"country": map[string]any{"type": "string", "description": "Student's country of origin"},
			"field":   map[string]any{"type": "string", "description": "Field of study"},
			"level":   map[string]any{"type": "string", "description": "Study level: bachelor, master or phd"},
		},
		"required": []any{"country", "field", "level"},
	}
}

// Invoke queries the live source and falls back to the static dataset.
func (s *ScholarshipTool) Invoke(ctx context.Context, args map[string]any) Result {
	country, _ := args["country"].(string)
	field, _ := args["field"].(string)
	level, _ := args["level"].(string)
	country = strings.TrimSpace(country)
	if level = strings.ToLower(strings.TrimSpace(level)); level == "" {
		level = "master"
	}

	if list, ok := s.searchLive(ctx, country, level); ok {
		return Success(map[string]any{"scholarships": list, "source": "live"})
	}
	return Success(map[string]any{
		"scholarships": fallbackScholarships(country),
		"source":       "fallback",
		"field":        strings.TrimSpace(field),
		"level":        level,
	})
}

func (s *ScholarshipTool) searchLive(ctx context.Context, country, level string) ([]map[string]any, bool) {
	if s.baseURL == "" {
		return nil, false
	}
	params := url.Values{
		"country": {strings.ToLower(country)},
		"level":   {level},
	}
	var payload any
	if err := s.client.getJSON(ctx, s.baseURL, params, &payload); err != nil {
		return nil, false
	}
	switch data := payload.(type) {
	case []any:
		return coerceList(data)
	case map[string]any:
		if raw, ok := data["scholarships"].([]any); ok {
			return coerceList(raw)
		}
	}
	return nil, false
}

func coerceList(raw []any) ([]map[string]any, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	out := make([]map[string]any, 0, len(raw))
	for _, item := range raw {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out, len(out) > 0
}

func entry(name, amount, deadline, requirements, description string) map[string]any {
	return map[string]any{
		"name":         name,
		"amount":       amount,
		"deadline":     deadline,
		"requirements": requirements,
		"description":  description,
	}
}

// fallbackScholarships returns the static dataset for a country, or the
// generic international list when the country is unknown.
func fallbackScholarships(country string) []map[string]any {
	switch strings.ToLower(strings.TrimSpace(country)) {
	case "france":
		return []map[string]any{
			entry("Eiffel Excellence Scholarship", "€1,700/month + tuition", "January 10, 2025", "Under 25 for Master's, excellent academics", "French government scholarship for international students"),
			entry("Émile Boutmy Scholarship (Sciences Po)", "€5,000-10,000/year", "February 23, 2025", "Non-EU, excellent academic record", "For undergraduate and master's students at Sciences Po Paris"),
			entry("ENS Paris-Saclay International Scholarship", "€1,000/month", "December 1, 2024", "Master's level, research focus", "For international students in sciences"),
			entry("HEC Paris MBA Scholarship", "Up to €30,000", "Rolling", "MBA admission, leadership experience", "Merit-based scholarship for MBA students"),
			entry("INSEAD Scholarship", "€10,000-50,000", "Rolling", "MBA/Master's admission", "Various scholarships for INSEAD programs"),
		}
	case "qatar":
		return []map[string]any{
			entry("Qatar Foundation Scholarship", "Full tuition + living expenses", "February 28, 2025", "Excellent academics, leadership", "For international students studying in Qatar"),
			entry("Hamad Bin Khalifa University Scholarship", "Full funding + stipend", "March 1, 2025", "Admission to HBKU program", "For graduate studies at HBKU"),
			entry("Qatar National Research Fund", "$50,000 grant", "April 30, 2025", "Research proposal, PhD level", "For doctoral research in Qatar"),
			entry("Texas A&M Qatar Scholarship", "Full tuition", "January 15, 2025", "Engineering students", "For engineering programs at Texas A&M Qatar"),
			entry("Carnegie Mellon Qatar Scholarship", "Partial to full tuition", "January 1, 2025", "CS/Business admission", "Merit-based for CMU Qatar students"),
		}
	case "morocco":
		return []map[string]any{
			entry("Fulbright Morocco Scholarship", "Full funding", "February 1, 2025", "Moroccan citizen, leadership", "US government scholarship for graduate studies"),
			entry("Chevening Scholarship", "Full tuition + £1,200/month", "November 7, 2025", "2+ years work experience", "UK government scholarship"),
			entry("DAAD Germany Scholarship", "€934/month", "October 15, 2025", "Good academics, English/German", "German Academic Exchange Service"),
			entry("Erasmus Mundus", "€25,000/year + tuition", "January 15, 2025", "Bachelor's degree", "EU-funded scholarship"),
			entry("Turkish Government Scholarship", "Full tuition + stipend", "February 20, 2025", "Under 30 for Master's", "Türkiye Bursları scholarship"),
		}
	default:
		return []map[string]any{
			entry("Erasmus Mundus Joint Masters", "€25,000/year + tuition", "January 15, 2025", "Bachelor's degree, English proficiency", "EU-funded scholarship for international students"),
			entry("Chevening Scholarship UK", "Full tuition + £1,200/month", "November 7, 2025", "2+ years work experience, leadership", "UK government's global scholarship"),
			entry("DAAD Scholarship Germany", "€934/month + insurance", "October 15, 2025", "Good academic record", "German Academic Exchange Service"),
			entry("Fulbright Foreign Student Program", "Full funding", "February 1, 2025", "Bachelor's degree, leadership", "US government scholarship"),
			entry("Swiss Government Excellence Scholarship", "CHF 1,920/month", "December 2024", "Research proposal", "For doctoral research in Switzerland"),
		}
	}
}
