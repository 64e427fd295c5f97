package tool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHolidayToolSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/2025/MA", r.URL.Path)
		w.Write([]byte(`[
			{"date":"2025-01-01","localName":"Ras l'Âm","name":"New Year's Day","fixed":true,"types":["Public"]},
			{"date":"2025-01-11","localName":"","name":"Independence Manifesto Day","fixed":true,"types":["Public"]}
		]`))
	}))
	defer srv.Close()

	ht := NewHolidayTool(WithHolidayEndpoint(srv.URL))
	res := ht.Invoke(context.Background(), map[string]any{"country_code": "ma", "year": 2025})
	require.True(t, res.OK)

	data := res.Data
	require.Equal(t, "MA", data["country"])
	require.Equal(t, 2025, data["year"])

	holidays := data["holidays"].([]map[string]any)
	require.Len(t, holidays, 2)
	require.Equal(t, "Ras l'Âm", holidays[0]["name"])
	require.Equal(t, "New Year's Day", holidays[0]["name_english"])
	// English name backfills a missing local name.
	require.Equal(t, "Independence Manifesto Day", holidays[1]["name"])
}

func TestHolidayToolUnknownCountry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	ht := NewHolidayTool(WithHolidayEndpoint(srv.URL))
	res := ht.Invoke(context.Background(), map[string]any{"country_code": "XX", "year": 2025})
	require.False(t, res.OK)
	require.Contains(t, res.Reason, `"XX" not found`)
	require.Contains(t, res.Reason, "MA (Morocco)")
}

func TestHolidayToolMissingCode(t *testing.T) {
	ht := NewHolidayTool()
	res := ht.Invoke(context.Background(), map[string]any{})
	require.False(t, res.OK)
	require.Contains(t, res.Reason, "country_code")
}
