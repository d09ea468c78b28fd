// In file: internal/agent/chain.go
package agent

import (
	"encoding/json"

	"github.com/dileep-u-k/course-assistant/internal/llm"
	"github.com/dileep-u-k/course-assistant/internal/tools"
)

// ChainedCallID is reserved for the weather call the chain rule synthesizes.
// It never collides with a model-issued id.
const ChainedCallID = "auto_chained_exam_weather"

// MaybeChain returns the exam-day weather call when the user asked for the
// weather on their exam day, the batch resolved an exam date, and a weather
// call in the batch resolved a location but had no on_date. It handles this
// one dependency only.
func MaybeChain(userText string, batch []Result) (*tools.ToolCall, bool) {
	if !llm.RequestsWeatherOnExamDay(userText) {
		return nil, false
	}

	var examDate, location string
	for _, r := range batch {
		if r.ExamDate != "" {
			examDate = r.ExamDate
		}
		if r.Name == tools.NameGetWeather && r.CallID != ChainedCallID && r.MissingDate && r.Location != "" {
			location = r.Location
		}
	}
	if examDate == "" || location == "" {
		return nil, false
	}

	args, err := json.Marshal(tools.WeatherArgs{Location: location, OnDate: examDate})
	if err != nil {
		return nil, false
	}
	return tools.NewToolCall(ChainedCallID, tools.NameGetWeather, string(args)), true
}
