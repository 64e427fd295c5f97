package tool

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultHolidayURL = "https://date.nager.at/api/v3/publicholidays"

// HolidayTool fetches public holidays from the Nager.Date API. Input is an
// ISO 3166-1 alpha-2 country code; free-text country conversion happens in
// the handler's generation step, not here.
type HolidayTool struct {
	client  *httpClient
	baseURL string
}

// HolidayOption overrides the endpoint, mainly for tests.
type HolidayOption func(*HolidayTool)

// WithHolidayEndpoint points the adapter at an alternate base URL.
func WithHolidayEndpoint(base string) HolidayOption {
	return func(h *HolidayTool) {
		if base != "" {
			h.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// NewHolidayTool builds the adapter with the default endpoint.
func NewHolidayTool(opts ...HolidayOption) *HolidayTool {
	h := &HolidayTool{client: newHTTPClient(0), baseURL: defaultHolidayURL}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HolidayTool) Name() string { return "get_public_holidays" }

func (h *HolidayTool) Description() string {
	return "List public holidays for a country and year. Requires an ISO 3166-1 alpha-2 country code."
}

func (h *HolidayTool) Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"country_code": map[string]any{
				"type":        "string",
				"description": "ISO 3166-1 alpha-2 code, e.g. MA, FR, US",
			},
			"year": map[string]any{
				"type":        "integer",
				"description": "Year to look up, defaults to the current year",
			},
		},
		"required": []any{"country_code"},
	}
}

type nagerHoliday struct {
	Date      string   `json:"date"`
	LocalName string   `json:"localName"`
	Name      string   `json:"name"`
	Fixed     bool     `json:"fixed"`
	Types     []string `json:"types"`
}

// Invoke fetches the holiday list. An unknown country code produces a
// corrective failure naming valid example codes rather than a raw HTTP error.
func (h *HolidayTool) Invoke(ctx context.Context, args map[string]any) Result {
	code, _ := args["country_code"].(string)
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return Failure("missing required argument: country_code")
	}
	year := intArg(args, "year")
	if year == 0 {
		year = time.Now().Year()
	}

	var holidays []nagerHoliday
	endpoint := fmt.Sprintf("%s/%d/%s", h.baseURL, year, code)
	if err := h.client.getJSON(ctx, endpoint, nil, &holidays); err != nil {
		var statusErr *statusError
		if errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			return Failure("country code %q not found. Use ISO 3166-1 alpha-2 codes like: MA (Morocco), FR (France), US (USA), DE (Germany), GB (UK), JP (Japan)", code)
		}
		return Failure("holiday lookup failed: %v", err)
	}

	list := make([]map[string]any, 0, len(holidays))
	for _, hd := range holidays {
		name := hd.LocalName
		if name == "" {
			name = hd.Name
		}
		list = append(list, map[string]any{
			"date":          hd.Date,
			"name":          name,
			"name_english":  hd.Name,
			"is_fixed_date": hd.Fixed,
			"type":          strings.Join(hd.Types, ", "),
		})
	}
	return Success(map[string]any{
		"country":  code,
		"year":     year,
		"holidays": list,
	})
}

func intArg(args map[string]any, key string) int {
	switch v := args[key].(type) {
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
