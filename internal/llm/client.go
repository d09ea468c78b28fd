// In file: internal/llm/client.go
package llm

import (
	"context"
	"strings"

	"github.com/dileep-u-k/course-assistant/internal/api"
	"github.com/dileep-u-k/course-assistant/internal/tools"
)

// =================================================================================
// Core Data Structures
// =================================================================================

// Role represents the originator of a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message is one entry of a conversation. Role tags which fields are
// meaningful: ToolCalls only on assistant messages, Name and ToolCallID only
// on tool results.
type Message struct {
	Role       Role              `json:"role"`
	Content    string            `json:"content"`
	Name       string            `json:"name,omitempty"`
	ToolCallID string            `json:"tool_call_id,omitempty"`
	ToolCalls  []*tools.ToolCall `json:"tool_calls,omitempty"`
}

// UserMessage builds a user message.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Content: text}
}

// SystemMessage builds a system message.
func SystemMessage(text string) Message {
	return Message{Role: RoleSystem, Content: text}
}

// AssistantMessage builds an assistant message, optionally requesting tool calls.
func AssistantMessage(text string, calls []*tools.ToolCall) Message {
	return Message{Role: RoleAssistant, Content: text, ToolCalls: calls}
}

// ToolResultMessage builds the result of one tool call.
func ToolResultMessage(name, callID, text string) Message {
	return Message{Role: RoleTool, Name: name, ToolCallID: callID, Content: text}
}

// Transcript is the ordered message history of one user turn. It is
// append-only while a run is in progress.
type Transcript []Message

// LastUserText returns the content of the most recent user message.
func (t Transcript) LastUserText() string {
	for i := len(t) - 1; i >= 0; i-- {
		if t[i].Role == RoleUser {
			return t[i].Content
		}
	}
	return ""
}

// LastAssistantText returns the trimmed content of the final assistant message.
func (t Transcript) LastAssistantText() string {
	for i := len(t) - 1; i >= 0; i-- {
		if t[i].Role == RoleAssistant {
			return strings.TrimSpace(t[i].Content)
		}
	}
	return ""
}

// ToolResults returns every tool result in order.
func (t Transcript) ToolResults() []Message {
	var out []Message
	for _, m := range t {
		if m.Role == RoleTool {
			out = append(out, m)
		}
	}
	return out
}

// ToolResultsByName groups tool result contents by tool name, in order.
func (t Transcript) ToolResultsByName() map[string][]string {
	out := make(map[string][]string)
	for _, m := range t.ToolResults() {
		out[m.Name] = append(out[m.Name], m.Content)
	}
	return out
}

// ToolNames returns the distinct tool names used, in first-use order.
func (t Transcript) ToolNames() []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range t.ToolResults() {
		if m.Name == "" || seen[m.Name] {
			continue
		}
		seen[m.Name] = true
		names = append(names, m.Name)
	}
	return names
}

// LastNonEmptyToolResult returns the trimmed content of the most recent tool
// result that has any text.
func (t Transcript) LastNonEmptyToolResult() (string, bool) {
	for i := len(t) - 1; i >= 0; i-- {
		if t[i].Role != RoleTool {
			continue
		}
		if text := strings.TrimSpace(t[i].Content); text != "" {
			return text, true
		}
	}
	return "", false
}

// GenerationConfig holds the parameters that control one generation call.
type GenerationConfig struct {
	// The specific model to use for the generation (e.g., "llama3.1:8b", "gemini-1.5-flash").
	Model string
	// Controls randomness. A pointer distinguishes 0.0 from unset.
	Temperature *float32
	// The maximum number of tokens to generate in the response.
	MaxTokens int
	// An alternative to sampling with temperature, called nucleus sampling.
	TopP *float32
}

// GenerationResult holds the complete output from an LLM call.
type GenerationResult struct {
	// The generated text content from the model.
	Content string
	// Tool calls requested by the model, in the order the model listed them.
	ToolCalls []*tools.ToolCall
	// Token usage statistics for the generation request.
	Usage api.Usage
}

// =================================================================================
// LLM Client Interface
// =================================================================================

// LLMClient is the completion capability every provider client implements.
type LLMClient interface {
	// Generate performs a blocking request with the full conversation and the
	// tools the model may call, and returns a single, complete result.
	Generate(
		ctx context.Context,
		messages []Message,
		config *GenerationConfig,
		availableTools []tools.Tool,
	) (*GenerationResult, error)
}
