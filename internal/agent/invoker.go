// In file: internal/agent/invoker.go

// Package agent runs the tool-use loop: it asks the model what to do, invokes
// the tools it requests, chains the one follow-up call the model tends to
// forget, and composes the final answer from the transcript.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"runtime/debug"
	"strings"

	"github.com/dileep-u-k/course-assistant/internal/llm"
	"github.com/dileep-u-k/course-assistant/internal/tools"
)

// Toolbox is what the agent needs from the tool registry.
type Toolbox interface {
	Definitions() []tools.Tool
	Decode(call *tools.ToolCall) (tools.Invocation, error)
	Execute(ctx context.Context, inv tools.Invocation) (string, error)
}

var _ Toolbox = (*tools.Registry)(nil)

// Result is the outcome of one tool call plus the signals the chain rule
// reads from it.
type Result struct {
	CallID string
	Name   string
	Text   string

	// ExamDate is the ISO date of a found exam, set for calendar results
	// carrying the next-exam JSON payload.
	ExamDate string
	// MissingDate is set for weather calls made without on_date.
	MissingDate bool
	// Location is the weather location that resolved to a place.
	Location string
}

// Message converts the result into its transcript entry.
func (r Result) Message() llm.Message {
	return llm.ToolResultMessage(r.Name, r.CallID, r.Text)
}

// Invoker validates and executes tool calls. Every failure, including a
// panic inside a tool, becomes the text of the result.
type Invoker struct {
	tools Toolbox
}

// NewInvoker creates an invoker over the given tools.
func NewInvoker(t Toolbox) *Invoker {
	return &Invoker{tools: t}
}

// Invoke runs one call. The result always carries the call's id and name.
func (iv *Invoker) Invoke(ctx context.Context, call *tools.ToolCall) (res Result) {
	res = Result{CallID: call.ID, Name: call.Function.Name}
	log.Printf("🛠️ Calling tool: %s (id=%s) args=%s", call.Function.Name, call.ID, call.Function.Arguments)

	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Tool %s panicked: %v\n%s", call.Function.Name, r, debug.Stack())
			res.Text = fmt.Sprintf("Error: tool '%s' failed unexpectedly.", call.Function.Name)
			res.ExamDate, res.Location, res.MissingDate = "", "", false
		}
		log.Printf("   Result preview: %s", preview(res.Text, 160))
	}()

	inv, err := iv.tools.Decode(call)
	if err != nil {
		res.Text = errorText(err)
		return res
	}
	if err := inv.Validate(); err != nil {
		res.Text = errorText(err)
		return res
	}

	text, execErr := iv.tools.Execute(ctx, inv)
	if execErr != nil {
		text = errorText(execErr)
	}
	res.Text = text

	switch a := inv.(type) {
	case tools.WeatherArgs:
		res.MissingDate = a.OnDate == ""
		if tools.LocationResolved(execErr) {
			res.Location = a.Location
		}
	case tools.CalendarArgs:
		if execErr == nil {
			res.ExamDate, _ = ExtractExamDate(text)
		}
	}
	return res
}

// ExtractExamDate reads the next-exam payload of the calendar tool and
// returns its date when an exam was found.
func ExtractExamDate(text string) (string, bool) {
	var payload struct {
		Found bool   `json:"found"`
		Date  string `json:"date"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &payload); err != nil {
		return "", false
	}
	if !payload.Found || !tools.IsISODate(payload.Date) {
		return "", false
	}
	return payload.Date, true
}

// errorText renders err as tool-result text. Tool errors already carry
// user-facing text.
func errorText(err error) string {
	var te *tools.ToolError
	if errors.As(err, &te) {
		return te.Msg
	}
	return "Error: " + err.Error()
}

func preview(s string, n int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}
