// In file: internal/agent/assistant.go
package agent

import (
	"context"
	"time"

	"github.com/dileep-u-k/course-assistant/internal/api"
	"github.com/dileep-u-k/course-assistant/internal/llm"
)

// Reply is the outcome of one user turn.
type Reply struct {
	Answer     string
	ToolsUsed  []string
	Usage      api.Usage
	Latency    time.Duration
	Transcript llm.Transcript
}

// Assistant runs the loop and composes the answer for one user turn at a time.
type Assistant struct {
	orchestrator *Orchestrator
	composer     *Composer
}

// NewAssistant builds the orchestrator and composer over one client and toolbox.
func NewAssistant(client llm.LLMClient, t Toolbox, settings Settings) (*Assistant, error) {
	orch, err := NewOrchestrator(client, t, settings)
	if err != nil {
		return nil, err
	}
	return &Assistant{orchestrator: orch, composer: NewComposer(client, settings)}, nil
}

// Answer runs the user's text through the tool loop and composes the reply.
func (a *Assistant) Answer(ctx context.Context, userText string) (*Reply, error) {
	start := time.Now()
	transcript, usage, err := a.orchestrator.Run(ctx, userText)
	if err != nil {
		return nil, err
	}
	answer, composeUsage := a.composer.Compose(ctx, userText, transcript)
	usage.Add(composeUsage)

	return &Reply{
		Answer:     answer,
		ToolsUsed:  transcript.ToolNames(),
		Usage:      usage,
		Latency:    time.Since(start),
		Transcript: transcript,
	}, nil
}
