package router

import "github.com/selhaddad/tripscholar/pkg/hook"

// Default keyword sets, ordered by priority. Scholarship questions win over
// weather, weather over holidays, holidays over city facts.
var (
	ScholarshipKeywords = []string{
		"scholarship", "scholarships", "funding", "grant", "bourse",
		"tuition", "financial aid", "study abroad", "studying abroad",
	}
	WeatherKeywords = []string{
		"weather", "temperature", "what to do", "things to do",
		"activities", "rain", "sunny", "forecast",
	}
	HolidayKeywords = []string{
		"holiday", "holidays", "public holiday", "day off", "jours fériés",
	}
	CityKeywords = []string{
		"tell me about", "facts about", "fact about", "know about", "city",
	}
)

// Assemble wires the four capabilities in their canonical priority order.
func Assemble(hooks *hook.Chain, scholarship, weather, holiday, cityFacts Target) *Router {
	r := New(hooks)
	r.Handle(scholarship, Keywords(ScholarshipKeywords...))
	r.Handle(weather, Keywords(WeatherKeywords...))
	r.Handle(holiday, Keywords(HolidayKeywords...))
	r.Handle(cityFacts, Keywords(CityKeywords...))
	return r
}
