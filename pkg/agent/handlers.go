package agent

import (
	"github.com/selhaddad/tripscholar/pkg/hook"
	"github.com/selhaddad/tripscholar/pkg/model"
	"github.com/selhaddad/tripscholar/pkg/tool"
)

const weatherInstruction = `You are a travel weather advisor.
When the user asks about weather or what to do in a city, extract the city
name and call get_weather.

Base your advice on the reported conditions:
- Below 15°C, or rain/snow/storm: recommend indoor activities (museums,
  galleries, cafés, covered markets).
- Above 20°C and clear or partly cloudy: recommend outdoor activities
  (walking tours, parks, viewpoints, open-air markets).
- Between 15°C and 20°C, or when conditions are ambiguous: recommend the
  indoor set and note that short outdoor walks are fine too.

Give one recommendation set, not both. Keep the answer short and friendly,
and mention the temperature and condition you based it on.`

const holidayInstruction = `You help travelers plan around public holidays.
Convert the country the user mentions into its ISO 3166-1 alpha-2 code
before calling get_public_holidays (for example Morocco -> MA, France -> FR).
If the tool reports that a country code was not found, relay its suggested
example codes to the user and ask them to clarify; never show raw errors.
Summarize the holidays conversationally with dates and names.`

const cityFactsInstruction = `You share interesting facts about cities.
Answer with exactly three distinct factual statements about the city the
user asked about, each on its own line. No greetings, no follow-up
questions, just the three facts.`

// NewWeatherHandler answers what-to-do questions using live weather.
func NewWeatherHandler(backend model.Model, reg *tool.Registry, hooks *hook.Chain, opts ...Option) *Handler {
	base := []Option{WithTools("get_weather")}
	return New("weather", "weather-based activity advice", weatherInstruction,
		backend, reg, hooks, append(base, opts...)...)
}

// NewHolidayHandler looks up public holidays for a country.
func NewHolidayHandler(backend model.Model, reg *tool.Registry, hooks *hook.Chain, opts ...Option) *Handler {
	base := []Option{WithTools("get_public_holidays")}
	return New("holiday", "public holiday lookup", holidayInstruction,
		backend, reg, hooks, append(base, opts...)...)
}

// NewCityFactsHandler answers from model knowledge alone unless a city
// search tool has been registered and allowed via options.
func NewCityFactsHandler(backend model.Model, reg *tool.Registry, hooks *hook.Chain, opts ...Option) *Handler {
	return New("cityfacts", "city facts", cityFactsInstruction,
		backend, reg, hooks, opts...)
}
