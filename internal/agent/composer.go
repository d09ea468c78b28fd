// In file: internal/agent/composer.go
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/dileep-u-k/course-assistant/internal/api"
	"github.com/dileep-u-k/course-assistant/internal/calendar"
	"github.com/dileep-u-k/course-assistant/internal/llm"
	"github.com/dileep-u-k/course-assistant/internal/tools"
)

// Policy selects how the final answer is assembled.
type Policy int

const (
	// PolicyModelText returns the model's final text; no tools were used.
	PolicyModelText Policy = iota
	// PolicySearchOnly prefers the model's text over the raw search result.
	PolicySearchOnly
	// PolicySectionsWithEvidence renders tool sections, a grounded course
	// explanation, then the retrieved evidence.
	PolicySectionsWithEvidence
	// PolicySections renders the weather, calendar and holiday sections.
	PolicySections
)

func (p Policy) String() string {
	switch p {
	case PolicyModelText:
		return "model_text"
	case PolicySearchOnly:
		return "search_only"
	case PolicySectionsWithEvidence:
		return "sections_with_evidence"
	case PolicySections:
		return "sections"
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// SelectPolicy picks the policy from the distinct tools used and whether the
// search tool produced output.
func SelectPolicy(toolNames []string, hasSearchOutput bool) Policy {
	switch {
	case len(toolNames) == 0:
		return PolicyModelText
	case len(toolNames) == 1 && toolNames[0] == tools.NameSearchCourseMaterials:
		return PolicySearchOnly
	case hasSearchOutput:
		return PolicySectionsWithEvidence
	default:
		return PolicySections
	}
}

// toolOutputs holds the last output of each tool category.
type toolOutputs struct {
	weather  string
	calendar string
	holiday  string
	search   string
}

func collectOutputs(t llm.Transcript) toolOutputs {
	var out toolOutputs
	for _, m := range t.ToolResults() {
		text := strings.TrimSpace(m.Content)
		switch {
		case m.Name == tools.NameGetWeather:
			out.weather = text
		case m.Name == tools.NameCheckCalendar:
			out.calendar = text
		case m.Name == tools.NameSearchCourseMaterials:
			out.search = text
		case tools.IsHolidayTool(m.Name):
			out.holiday = text
		}
	}
	return out
}

// sections renders the deterministic parts in fixed order: weather,
// calendar, holidays.
func (o toolOutputs) sections() []string {
	var parts []string
	if o.weather != "" {
		parts = append(parts, "**Weather**\n"+o.weather)
	}
	if o.calendar != "" {
		cal := o.calendar
		if pretty, ok := FormatNextExam(o.calendar); ok {
			cal = pretty
		}
		parts = append(parts, "**Schedule / Exams**\n"+cal)
	}
	if o.holiday != "" {
		parts = append(parts, "**Holidays**\n"+o.holiday)
	}
	return parts
}

// FormatNextExam turns the calendar's next-exam JSON into a two-line summary.
func FormatNextExam(calendarOut string) (string, bool) {
	var exam calendar.NextExam
	if err := json.Unmarshal([]byte(calendarOut), &exam); err != nil {
		return "", false
	}
	if !exam.Found || exam.Type != calendar.TypeExam {
		return "", false
	}
	title := exam.Title
	if title == "" {
		title = "Exam"
	}
	return strings.TrimSpace(fmt.Sprintf("Next exam: %s\nDate: %s %s", title, exam.Date, exam.Time)), true
}

const noExplanation = "I couldn't generate a course explanation from the evidence."

const groundingPrompt = `You are an expert Information Retrieval tutor.
Task: Answer ONLY the course/theory part of the user's request.
Use the provided evidence as grounding. If evidence is weak, answer with best effort but stay general.
Output format:
1) Main explanation (2-4 sentences)
2) Example / formula if relevant (1-3 lines)
3) Practical connection (1-2 sentences)
Do NOT mention tools. Do NOT paste the evidence.`

// Composer turns a finished transcript into the text shown to the user.
type Composer struct {
	client   llm.LLMClient
	settings Settings
}

// NewComposer creates a composer. The client is used only for the grounded
// course explanation.
func NewComposer(client llm.LLMClient, settings Settings) *Composer {
	return &Composer{client: client, settings: settings.withDefaults()}
}

// Compose applies the selected policy, then replaces a pleasantry with the
// most recent non-empty tool result.
func (c *Composer) Compose(ctx context.Context, userText string, t llm.Transcript) (string, api.Usage) {
	var usage api.Usage
	modelText := t.LastAssistantText()
	outputs := collectOutputs(t)

	var answer string
	switch SelectPolicy(t.ToolNames(), outputs.search != "") {
	case PolicyModelText:
		answer = modelText
	case PolicySearchOnly:
		answer = modelText
		if llm.IsSocialOrUseless(modelText) && outputs.search != "" {
			answer = outputs.search
		}
	case PolicySectionsWithEvidence:
		parts := outputs.sections()
		explanation, u := c.explain(ctx, userText, outputs.search)
		usage.Add(u)
		parts = append(parts,
			"**Course explanation**\n"+explanation,
			"**Evidence (retrieved chunks)**\n"+outputs.search)
		answer = joinSections(parts)
	case PolicySections:
		answer = joinSections(outputs.sections())
		if answer == "" {
			answer = modelText
		}
	}

	if llm.IsSocialOrUseless(answer) {
		if last, ok := t.LastNonEmptyToolResult(); ok {
			answer = last
		}
	}
	return answer, usage
}

// explain asks the model for a course explanation grounded only in evidence.
func (c *Composer) explain(ctx context.Context, userText, evidence string) (string, api.Usage) {
	if c.client == nil {
		return noExplanation, api.Usage{}
	}
	messages := []llm.Message{
		llm.SystemMessage(groundingPrompt),
		llm.UserMessage(fmt.Sprintf("USER QUESTION:\n%s\n\nEVIDENCE:\n%s", userText, evidence)),
	}
	res, err := c.client.Generate(ctx, messages, c.settings.generationConfig(), nil)
	if err != nil {
		log.Printf("⚠️ Course explanation failed: %v", err)
		return noExplanation, api.Usage{}
	}
	text := strings.TrimSpace(res.Content)
	if text == "" {
		return noExplanation, res.Usage
	}
	return text, res.Usage
}

func joinSections(parts []string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n\n"))
}
