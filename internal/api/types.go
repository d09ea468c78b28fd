// In file: internal/api/types.go

// Package api holds the request and response types of the assistant's HTTP
// surface, plus token usage shared with the completion clients.
package api

// Usage is the token accounting of one or more completion calls.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates other into u.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// ChatResponse is the answer to one chat turn.
type ChatResponse struct {
	Answer    string   `json:"answer"`
	ToolsUsed []string `json:"tools_used"`
	Usage     Usage    `json:"usage"`
	LatencyMS int64    `json:"latency_ms"`
}

// EventRequest is the body of POST /api/v1/events.
type EventRequest struct {
	Title string `json:"title" binding:"required"`
	Date  string `json:"date" binding:"required"`
	Time  string `json:"time" binding:"required"`
	Type  string `json:"type" binding:"required"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}
