package tool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScholarshipToolLive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "morocco", r.URL.Query().Get("country"))
		require.Equal(t, "master", r.URL.Query().Get("level"))
		w.Write([]byte(`{"scholarships":[{"name":"Test Grant","amount":"$5,000","deadline":"2025-06-01"}]}`))
	}))
	defer srv.Close()

	st := NewScholarshipTool(WithScholarshipEndpoint(srv.URL))
	res := st.Invoke(context.Background(), map[string]any{
		"country": "Morocco", "field": "CS", "level": "Master",
	})
	require.True(t, res.OK)

	data := res.Data
	require.Equal(t, "live", data["source"])
	list := data["scholarships"].([]map[string]any)
	require.Len(t, list, 1)
	require.Equal(t, "Test Grant", list[0]["name"])
}

func TestScholarshipToolFallsBackWhenLiveFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	st := NewScholarshipTool(WithScholarshipEndpoint(srv.URL))
	res := st.Invoke(context.Background(), map[string]any{
		"country": "France", "field": "Economics", "level": "phd",
	})
	require.True(t, res.OK)

	data := res.Data
	require.Equal(t, "fallback", data["source"])
	list := data["scholarships"].([]map[string]any)
	require.Len(t, list, 5)
	require.Equal(t, "Eiffel Excellence Scholarship", list[0]["name"])
}

func TestScholarshipToolUnknownCountryUsesDefaults(t *testing.T) {
	st := NewScholarshipTool(WithScholarshipEndpoint(""))
	res := st.Invoke(context.Background(), map[string]any{
		"country": "Atlantis", "field": "History", "level": "bachelor",
	})
	require.True(t, res.OK)

	data := res.Data
	require.Equal(t, "fallback", data["source"])
	list := data["scholarships"].([]map[string]any)
	require.NotEmpty(t, list)
	require.Equal(t, "Erasmus Mundus Joint Masters", list[0]["name"])
}

func TestCityInfoToolRequiresAPIKey(t *testing.T) {
	ct := NewCityInfoTool("")
	res := ct.Invoke(context.Background(), map[string]any{"query": "best food in Lyon"})
	require.False(t, res.OK)
	require.Contains(t, res.Reason, "API key")
}

func TestCityInfoToolSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		w.Write([]byte(`{"answer":"Lyon is famous for bouchons.","results":[
			{"title":"Lyon Guide","url":"https://example.com/lyon","content":"Traditional bouchons serve local cuisine."}
		]}`))
	}))
	defer srv.Close()

	ct := NewCityInfoTool("key", WithCityInfoEndpoint(srv.URL))
	res := ct.Invoke(context.Background(), map[string]any{"query": "best food in Lyon"})
	require.True(t, res.OK)

	data := res.Data
	require.Equal(t, "Lyon is famous for bouchons.", data["answer"])
	sources := data["sources"].([]map[string]any)
	require.Len(t, sources, 1)
	require.Equal(t, "Lyon Guide", sources[0]["title"])
}
