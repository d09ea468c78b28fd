// In file: internal/llm/intent.go
package llm

import "strings"

// These are keyword heuristics, not semantic classification. They misfire on
// paraphrases ("weather on the day of my exam" is not detected).

// examDayQualifiers are the phrases that tie a weather request to the exam date.
var examDayQualifiers = []string{"that day", "specific day", "exam day"}

// RequestsWeatherOnExamDay reports whether text asks for the weather on the
// day of an exam.
func RequestsWeatherOnExamDay(text string) bool {
	t := strings.ToLower(text)
	if !strings.Contains(t, "exam") || !strings.Contains(t, "weather") {
		return false
	}
	for _, q := range examDayQualifiers {
		if strings.Contains(t, q) {
			return true
		}
	}
	return false
}

// socialReplies are closing pleasantries a model sometimes emits instead of
// restating tool results.
var socialReplies = map[string]bool{
	"you're welcome!": true,
	"you’re welcome!": true,
	"welcome!":        true,
	"no problem":      true,
	"np":              true,
	"ok":              true,
	"okay":            true,
	"sure":            true,
	"thanks":          true,
	"thank you":       true,
	"great":           true,
	"cool":            true,
}

// fillerTokens are very short replies that carry no answer.
var fillerTokens = map[string]bool{"ok": true, "k": true, "sure": true, "yes": true, "no": true}

// IsSocialOrUseless reports whether text carries no answer content: empty,
// a pleasantry, or a filler token.
func IsSocialOrUseless(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return true
	}
	if socialReplies[t] {
		return true
	}
	return len(t) <= 4 && fillerTokens[t]
}
