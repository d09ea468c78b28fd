package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequestsWeatherOnExamDay(t *testing.T) {
	cases := map[string]bool{
		"What's the weather going to be on my exam day?":              true,
		"When is my next exam and what will the weather be that day?": true,
		"Check my next EXAM and the WEATHER for that specific day":    true,
		"What's the weather in Haifa?":                                false,
		"When is my next exam?":                                       false,
		"Tell me about my exam and the weather":                       false,
		"what will the weather be on the day of my exam":              false,
	}
	for text, want := range cases {
		t.Run(text, func(t *testing.T) {
			assert.Equal(t, want, RequestsWeatherOnExamDay(text))
		})
	}
}

func TestIsSocialOrUseless(t *testing.T) {
	useless := []string{"", "   ", "You're welcome!", "you’re welcome!", "OK", "k", "Sure", " thanks ", "no"}
	for _, text := range useless {
		assert.True(t, IsSocialOrUseless(text), "%q", text)
	}

	useful := []string{"Sunny, 21°C.", "Your exam is on 2026-02-10.", "yes, it is a holiday", "okay then, here is the forecast"}
	for _, text := range useful {
		assert.False(t, IsSocialOrUseless(text), "%q", text)
	}
}
