// In file: internal/agent/orchestrator.go
package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/dileep-u-k/course-assistant/internal/api"
	"github.com/dileep-u-k/course-assistant/internal/llm"
)

// DefaultMaxIterations bounds the tool rounds of one run.
const DefaultMaxIterations = 10

// Settings configure a run. Zero values fall back to the defaults.
type Settings struct {
	Model           string
	Temperature     float32
	MaxIterations   int
	DefaultLocation string
	// Now is the clock used for "today" in the system prompt.
	Now func() time.Time
}

func (s Settings) withDefaults() Settings {
	if s.MaxIterations <= 0 {
		s.MaxIterations = DefaultMaxIterations
	}
	if s.DefaultLocation == "" {
		s.DefaultLocation = "Haifa, Israel"
	}
	if s.Now == nil {
		s.Now = time.Now
	}
	return s
}

func (s Settings) generationConfig() *llm.GenerationConfig {
	temp := s.Temperature
	return &llm.GenerationConfig{Model: s.Model, Temperature: &temp}
}

// Orchestrator alternates between the model and the tools until the model
// answers without requesting any.
type Orchestrator struct {
	client   llm.LLMClient
	tools    Toolbox
	invoker  *Invoker
	settings Settings
}

// NewOrchestrator wires the loop to a completion client and a toolbox.
func NewOrchestrator(client llm.LLMClient, t Toolbox, settings Settings) (*Orchestrator, error) {
	if client == nil {
		return nil, errors.New("orchestrator needs a completion client")
	}
	if t == nil {
		return nil, errors.New("orchestrator needs a toolbox")
	}
	return &Orchestrator{
		client:   client,
		tools:    t,
		invoker:  NewInvoker(t),
		settings: settings.withDefaults(),
	}, nil
}

// Run drives one user turn to completion and returns its transcript. Each
// round appends exactly one assistant message and then, if it requested
// tools, one batch of results. The exam-day weather call is chained at most
// once per run. Only completion failures are returned as errors; tool
// failures are part of the transcript.
func (o *Orchestrator) Run(ctx context.Context, userText string) (llm.Transcript, api.Usage, error) {
	var usage api.Usage
	transcript := llm.Transcript{llm.UserMessage(userText)}
	system := llm.SystemMessage(SystemPrompt(o.settings.Now(), o.settings.DefaultLocation))
	defs := o.tools.Definitions()
	cfg := o.settings.generationConfig()
	chained := false

	for round := 1; round <= o.settings.MaxIterations; round++ {
		messages := make([]llm.Message, 0, len(transcript)+1)
		messages = append(messages, system)
		messages = append(messages, transcript...)

		res, err := o.client.Generate(ctx, messages, cfg, defs)
		if err != nil {
			return transcript, usage, fmt.Errorf("completion failed in round %d: %w", round, err)
		}
		usage.Add(res.Usage)
		transcript = append(transcript, llm.AssistantMessage(res.Content, res.ToolCalls))

		if len(res.ToolCalls) == 0 {
			return transcript, usage, nil
		}
		results, didChain := o.runBatch(ctx, userText, res, !chained)
		chained = chained || didChain
		for _, r := range results {
			transcript = append(transcript, r.Message())
		}
	}

	log.Printf("⚠️ Stopped after %d tool rounds without a final answer.", o.settings.MaxIterations)
	transcript = append(transcript, llm.AssistantMessage(
		fmt.Sprintf("I stopped after %d tool rounds without a final answer.", o.settings.MaxIterations), nil))
	return transcript, usage, nil
}

// runBatch invokes the requested calls in the order the model listed them,
// then the chained call if allowed and the batch needs one. It reports
// whether the chained call ran.
func (o *Orchestrator) runBatch(ctx context.Context, userText string, res *llm.GenerationResult, mayChain bool) ([]Result, bool) {
	results := make([]Result, 0, len(res.ToolCalls)+1)
	for _, call := range res.ToolCalls {
		results = append(results, o.invoker.Invoke(ctx, call))
	}
	if !mayChain {
		return results, false
	}
	call, ok := MaybeChain(userText, results)
	if !ok {
		return results, false
	}
	log.Printf("🔁 Auto-chaining: fetching forecast with args %s", call.Function.Arguments)
	return append(results, o.invoker.Invoke(ctx, call)), true
}

// SystemPrompt is the fixed instruction block of one run.
func SystemPrompt(now time.Time, defaultLocation string) string {
	return fmt.Sprintf(`You are a helpful assistant for a student. You can use tools.

CONTEXT:
- Today's date is %s.
- Default location is %s.

CRITICAL RULES:
- If the user asks multiple things, answer ALL of them in one response.
- After tool call(s), restate results clearly in your answer.
- Do NOT respond with generic filler when the user asked a question.

LOCATION:
- If user asks weather without specifying a city, assume %s.

HOLIDAYS:
- "next holiday" -> get_next_holiday
- list holidays -> get_public_holidays(year)
- check specific date -> is_public_holiday(date_str)

RAG:
- Use search_course_materials for Information Retrieval concepts.
- Summarize: 2-4 sentences + example/formula if relevant + practical connection.

HONESTY:
- Never invent dates, weather, holidays, or events.
- If a forecast or any other result is not available, say it is unavailable instead of guessing.`,
		now.Format(time.DateOnly), defaultLocation, defaultLocation)
}
