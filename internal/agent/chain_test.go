package agent

import (
	"testing"

	"github.com/dileep-u-k/course-assistant/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const examDayQuestion = "When is my next exam and what will the weather be that day?"

func examBatch() []Result {
	return []Result{
		{CallID: "a", Name: tools.NameCheckCalendar, Text: `{"found":true,"date":"2026-02-10"}`, ExamDate: "2026-02-10"},
		{CallID: "b", Name: tools.NameGetWeather, Text: "Current weather in Haifa, Israel", MissingDate: true, Location: "Haifa"},
	}
}

func TestMaybeChainFires(t *testing.T) {
	call, ok := MaybeChain(examDayQuestion, examBatch())
	require.True(t, ok)
	assert.Equal(t, ChainedCallID, call.ID)
	assert.Equal(t, tools.NameGetWeather, call.Function.Name)
	assert.JSONEq(t, `{"location":"Haifa","on_date":"2026-02-10"}`, call.Function.Arguments)
}

func TestMaybeChainNeedsEveryCondition(t *testing.T) {
	cases := map[string]struct {
		text  string
		batch func([]Result) []Result
	}{
		"no exam-day phrasing": {
			text:  "When is my next exam and what's the weather?",
			batch: func(b []Result) []Result { return b },
		},
		"no exam found": {
			text:  examDayQuestion,
			batch: func(b []Result) []Result { b[0].ExamDate = ""; return b },
		},
		"weather already dated": {
			text:  examDayQuestion,
			batch: func(b []Result) []Result { b[1].MissingDate = false; return b },
		},
		"location not resolved": {
			text:  examDayQuestion,
			batch: func(b []Result) []Result { b[1].Location = ""; return b },
		},
		"no weather call": {
			text:  examDayQuestion,
			batch: func(b []Result) []Result { return b[:1] },
		},
		"only the chained call": {
			text:  examDayQuestion,
			batch: func(b []Result) []Result { b[1].CallID = ChainedCallID; return b },
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, ok := MaybeChain(tc.text, tc.batch(examBatch()))
			assert.False(t, ok)
		})
	}
}
