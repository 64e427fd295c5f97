package tool

import (
	"context"
	"strings"
)

const defaultTavilyURL = "https://api.tavily.com/search"

// CityInfoTool answers free-form questions about a city through the
// Tavily search API. It requires an API key; without one the tool reports
// a failure the model can relay.
type CityInfoTool struct {
	client  *httpClient
	baseURL string
	apiKey  string
}

// CityInfoOption overrides adapter settings, mainly for tests.
type CityInfoOption func(*CityInfoTool)

func WithCityInfoEndpoint(base string) CityInfoOption {
	return func(c *CityInfoTool) { c.baseURL = base }
}

// NewCityInfoTool builds the adapter. apiKey may be empty; the tool then
// fails gracefully at invocation time.
func NewCityInfoTool(apiKey string, opts ...CityInfoOption) *CityInfoTool {
	c := &CityInfoTool{client: newHTTPClient(0), baseURL: defaultTavilyURL, apiKey: apiKey}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CityInfoTool) Name() string { return "search_city_info" }

func (c *CityInfoTool) Description() string {
	return "Search the web for current facts about a city: attractions, culture, transport, cost of living."
}

func (c *CityInfoTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{"type": "string", "description": "The city question to search for"},
		},
		"required": []any{"query"},
	}
}

type tavilyResponse struct {
	Answer  string `json:"answer"`
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Invoke runs the search and returns the synthesized answer with up to
// three source snippets.
func (c *CityInfoTool) Invoke(ctx context.Context, args map[string]any) Result {
	query, _ := args["query"].(string)
	query = strings.TrimSpace(query)
	if query == "" {
		return Failure("query must not be empty")
	}
	if c.apiKey == "" {
		return Failure("city search is not configured: missing Tavily API key")
	}

	body := map[string]any{
		"api_key":        c.apiKey,
		"query":          query,
		"search_depth":   "basic",
		"include_answer": true,
		"max_results":    3,
	}
	var resp tavilyResponse
	if err := c.client.postJSON(ctx, c.baseURL, body, &resp); err != nil {
		return Failure("city search failed: %v", err)
	}

	sources := make([]map[string]any, 0, 3)
	for i, r := range resp.Results {
		if i == 3 {
			break
		}
		sources = append(sources, map[string]any{
			"title":   r.Title,
			"url":     r.URL,
			"snippet": r.Content,
		})
	}
	if resp.Answer == "" && len(sources) == 0 {
		return Failure("no results found for %q", query)
	}
	return Success(map[string]any{
		"query":   query,
		"answer":  resp.Answer,
		"sources": sources,
	})
}
