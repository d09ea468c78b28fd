package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/dileep-u-k/course-assistant/internal/llm"
	"github.com/dileep-u-k/course-assistant/internal/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const evidence = "==================================================\n\n📄 Chunk 1:\nPageRank ranks pages by incoming links."

// transcriptWith builds a finished transcript from tool results and the final model text.
func transcriptWith(final string, results ...llm.Message) llm.Transcript {
	tr := llm.Transcript{llm.UserMessage("question"), llm.AssistantMessage("", nil)}
	tr = append(tr, results...)
	return append(tr, llm.AssistantMessage(final, nil))
}

func result(name, text string) llm.Message {
	return llm.ToolResultMessage(name, "id-"+name, text)
}

func TestSelectPolicy(t *testing.T) {
	assert.Equal(t, PolicyModelText, SelectPolicy(nil, false))
	assert.Equal(t, PolicySearchOnly, SelectPolicy([]string{tools.NameSearchCourseMaterials}, true))
	assert.Equal(t, PolicySectionsWithEvidence, SelectPolicy([]string{tools.NameGetWeather, tools.NameSearchCourseMaterials}, true))
	assert.Equal(t, PolicySections, SelectPolicy([]string{tools.NameGetWeather, tools.NameSearchCourseMaterials}, false))
	assert.Equal(t, PolicySections, SelectPolicy([]string{tools.NameCheckCalendar}, false))
	assert.Equal(t, "sections_with_evidence", PolicySectionsWithEvidence.String())
}

func TestComposeModelText(t *testing.T) {
	c := NewComposer(nil, Settings{})
	answer, _ := c.Compose(context.Background(), "hi", transcriptWith("  Hello! How can I help?  "))
	assert.Equal(t, "Hello! How can I help?", answer)
}

func TestComposeSearchOnly(t *testing.T) {
	c := NewComposer(nil, Settings{})
	ctx := context.Background()

	answer, _ := c.Compose(ctx, "what is pagerank", transcriptWith("PageRank scores pages by links.", result(tools.NameSearchCourseMaterials, evidence)))
	assert.Equal(t, "PageRank scores pages by links.", answer)

	answer, _ = c.Compose(ctx, "what is pagerank", transcriptWith("You're welcome!", result(tools.NameSearchCourseMaterials, evidence)))
	assert.Equal(t, evidence, answer, "a pleasantry is replaced by the search result")
}

func TestComposeSections(t *testing.T) {
	c := NewComposer(nil, Settings{})
	tr := transcriptWith("The weather is lovely and you have no exams!",
		result(tools.NameCheckCalendar, `{"found":true,"title":"Machine Learning Exam","date":"2026-02-10","time":"09:00","type":"exam"}`),
		result(tools.NameGetWeather, "Current weather in Haifa, Israel:\n- Temperature: 19°C"),
		result(tools.NameGetNextHoliday, "Next holiday in IL: 2026-04-02 — Pesach I."),
		result(tools.NameGetWeather, "Forecast for Haifa, Israel on 2026-02-10:\n- Temperature: 10°C to 16°C"),
	)

	answer, usage := c.Compose(context.Background(), "exam, weather that day, next holiday", tr)
	assert.Equal(t,
		"**Weather**\nForecast for Haifa, Israel on 2026-02-10:\n- Temperature: 10°C to 16°C\n\n"+
			"**Schedule / Exams**\nNext exam: Machine Learning Exam\nDate: 2026-02-10 09:00\n\n"+
			"**Holidays**\nNext holiday in IL: 2026-04-02 — Pesach I.", answer)
	assert.Zero(t, usage.TotalTokens)

	again, _ := c.Compose(context.Background(), "exam, weather that day, next holiday", tr)
	assert.Equal(t, answer, again, "composition is deterministic")
}

func TestComposeSectionsKeepsPlainCalendarText(t *testing.T) {
	c := NewComposer(nil, Settings{})
	tr := transcriptWith("", result(tools.NameCheckCalendar, "No upcoming deadlines found."))

	answer, _ := c.Compose(context.Background(), "deadlines?", tr)
	assert.Equal(t, "**Schedule / Exams**\nNo upcoming deadlines found.", answer)
}

func TestComposeSectionsWithEvidence(t *testing.T) {
	client := newScriptedLLM(say("PageRank models a random surfer.\nPR(p) = (1-d)/N + d * sum(PR(q)/L(q))"))
	c := NewComposer(client, Settings{})
	tr := transcriptWith("ok",
		result(tools.NameGetWeather, "Current weather in Haifa, Israel"),
		result(tools.NameSearchCourseMaterials, evidence),
	)

	answer, usage := c.Compose(context.Background(), "weather and explain pagerank", tr)
	assert.Equal(t,
		"**Weather**\nCurrent weather in Haifa, Israel\n\n"+
			"**Course explanation**\nPageRank models a random surfer.\nPR(p) = (1-d)/N + d * sum(PR(q)/L(q))\n\n"+
			"**Evidence (retrieved chunks)**\n"+evidence, answer)
	assert.Equal(t, 25, usage.TotalTokens)

	require.Equal(t, 1, client.calls())
	req := client.requests[0]
	require.Len(t, req, 2)
	assert.Equal(t, groundingPrompt, req[0].Content)
	assert.Contains(t, req[1].Content, "USER QUESTION:\nweather and explain pagerank")
	assert.Contains(t, req[1].Content, "EVIDENCE:\n"+evidence)
}

func TestComposeExplanationFailure(t *testing.T) {
	tr := transcriptWith("", result(tools.NameCheckCalendar, "No upcoming deadlines found."), result(tools.NameSearchCourseMaterials, evidence))

	for name, client := range map[string]llm.LLMClient{
		"error": newScriptedLLM(fail(errors.New("model offline"))),
		"empty": newScriptedLLM(say("   ")),
		"nil":   nil,
	} {
		t.Run(name, func(t *testing.T) {
			answer, _ := NewComposer(client, Settings{}).Compose(context.Background(), "deadline and tf-idf", tr)
			assert.Contains(t, answer, "**Course explanation**\n"+noExplanation)
			assert.Contains(t, answer, "**Evidence (retrieved chunks)**\n"+evidence)
		})
	}
}

func TestComposeFallsBackToLastToolResult(t *testing.T) {
	c := NewComposer(nil, Settings{})
	tr := llm.Transcript{
		llm.UserMessage("is 2026-04-02 a holiday?"),
		llm.AssistantMessage("", []*tools.ToolCall{tools.NewToolCall("1", tools.NameIsPublicHoliday, `{"date_str":"2026-04-02"}`)}),
		result(tools.NameIsPublicHoliday, "   "),
		llm.AssistantMessage("Sure", nil),
	}
	answer, _ := c.Compose(context.Background(), "is 2026-04-02 a holiday?", tr)
	assert.Equal(t, "Sure", answer, "nothing better to fall back to")

	tr[2] = result(tools.NameIsPublicHoliday, "Yes — 2026-04-02 is a holiday in IL: Pesach I.")
	tr[3] = llm.AssistantMessage("", nil)
	tr = append(tr, llm.ToolResultMessage(tools.NameIsPublicHoliday, "x", ""))
	answer, _ = c.Compose(context.Background(), "is 2026-04-02 a holiday?", tr)
	assert.Equal(t, "Yes — 2026-04-02 is a holiday in IL: Pesach I.", answer)
}

func TestFormatNextExam(t *testing.T) {
	out, ok := FormatNextExam(`{"found":true,"title":"Machine Learning Exam","date":"2026-02-10","time":"09:00","type":"exam"}`)
	require.True(t, ok)
	assert.Equal(t, "Next exam: Machine Learning Exam\nDate: 2026-02-10 09:00", out)

	_, ok = FormatNextExam(`{"found":false,"reason":"No upcoming exams found."}`)
	assert.False(t, ok)
	_, ok = FormatNextExam("Upcoming events (next 7 days):")
	assert.False(t, ok)
}
