package agent

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dileep-u-k/course-assistant/internal/api"
	"github.com/dileep-u-k/course-assistant/internal/llm"
	"github.com/dileep-u-k/course-assistant/internal/tools"
	"github.com/stretchr/testify/require"
)

// step produces the model's reply to one request.
type step func(messages []llm.Message) (*llm.GenerationResult, error)

// scriptedLLM replays steps in order and answers "done" once they run out.
type scriptedLLM struct {
	mu       sync.Mutex
	steps    []step
	requests [][]llm.Message
}

func newScriptedLLM(steps ...step) *scriptedLLM {
	return &scriptedLLM{steps: steps}
}

func (s *scriptedLLM) Generate(_ context.Context, messages []llm.Message, _ *llm.GenerationConfig, _ []tools.Tool) (*llm.GenerationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, append([]llm.Message(nil), messages...))
	i := len(s.requests) - 1
	if i < len(s.steps) {
		return s.steps[i](messages)
	}
	return &llm.GenerationResult{Content: "done"}, nil
}

func (s *scriptedLLM) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func callTools(calls ...*tools.ToolCall) step {
	return func([]llm.Message) (*llm.GenerationResult, error) {
		return &llm.GenerationResult{ToolCalls: calls, Usage: api.Usage{PromptTokens: 10, CompletionTokens: 2, TotalTokens: 12}}, nil
	}
}

func say(text string) step {
	return func([]llm.Message) (*llm.GenerationResult, error) {
		return &llm.GenerationResult{Content: text, Usage: api.Usage{PromptTokens: 20, CompletionTokens: 5, TotalTokens: 25}}, nil
	}
}

func fail(err error) step {
	return func([]llm.Message) (*llm.GenerationResult, error) { return nil, err }
}

// stubCaps backs the registry with functions set per test.
type stubCaps struct {
	weather  func(tools.WeatherArgs) (string, error)
	calendar func(tools.CalendarArgs) (string, error)
	search   func(tools.SearchArgs) (string, error)
}

func (s *stubCaps) Weather(_ context.Context, a tools.WeatherArgs) (string, error) {
	return s.weather(a)
}

func (s *stubCaps) Calendar(_ context.Context, a tools.CalendarArgs) (string, error) {
	return s.calendar(a)
}

func (s *stubCaps) Search(_ context.Context, a tools.SearchArgs) (string, error) {
	return s.search(a)
}

func newStubRegistry(t *testing.T, s *stubCaps) *tools.Registry {
	t.Helper()
	if s.weather == nil {
		s.weather = func(a tools.WeatherArgs) (string, error) { return "Current weather in " + a.Location, nil }
	}
	if s.calendar == nil {
		s.calendar = func(tools.CalendarArgs) (string, error) { return "No events scheduled in the next 7 days.", nil }
	}
	if s.search == nil {
		s.search = func(tools.SearchArgs) (string, error) { return "No relevant information found in course materials.", nil }
	}
	r, err := tools.NewRegistry(tools.Capabilities{Weather: s, Calendar: s, Search: s})
	require.NoError(t, err)
	return r
}

func fixedNow(day string) func() time.Time {
	d, err := time.Parse(time.DateOnly, day)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return d.Add(9 * time.Hour) }
}

// newFakeOpenMeteo serves geocoding for Haifa only, current conditions, and a
// three-day forecast starting 2026-02-08.
func newFakeOpenMeteo(t *testing.T) (*tools.WeatherTool, *[]string) {
	t.Helper()
	var mu sync.Mutex
	var forecastQueries []string
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(strings.ToLower(r.URL.Query().Get("name")), "haifa") {
			fmt.Fprint(w, `{"results":[{"name":"Haifa","latitude":32.81,"longitude":34.99,"country":"Israel"}]}`)
			return
		}
		fmt.Fprint(w, `{}`)
	})
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		forecastQueries = append(forecastQueries, r.URL.RawQuery)
		mu.Unlock()
		if r.URL.Query().Get("current_weather") == "true" {
			fmt.Fprint(w, `{"current_weather":{"temperature":19,"windspeed":12,"weathercode":1,"time":"2026-02-08T09:00"}}`)
			return
		}
		fmt.Fprint(w, `{"daily":{"time":["2026-02-08","2026-02-09","2026-02-10"],
			"temperature_2m_max":[18,19,16],"temperature_2m_min":[11,12,10],
			"precipitation_probability_max":[5,30,80],"wind_speed_10m_max":[15,20,35]}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return tools.NewWeatherToolWithEndpoints(srv.URL+"/search", srv.URL+"/forecast"), &forecastQueries
}
