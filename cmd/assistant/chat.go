// In file: cmd/assistant/chat.go
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/signal"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/dileep-u-k/course-assistant/internal/agent"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the assistant interactively",
	RunE:  runChat,
}

// answerer is the part of the assistant the chat loop and HTTP handler use.
type answerer interface {
	Answer(ctx context.Context, userText string) (*agent.Reply, error)
}

var exitCommands = map[string]bool{
	"quit": true,
	"exit": true,
	"bye":  true,
}

const turnFailedNotice = "Sorry, something went wrong while answering that. Please try again."

func runChat(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	return chatLoop(ctx, app.Assistant, cmd.InOrStdin(), cmd.OutOrStdout())
}

// maxLineBytes bounds one chat message. Longer lines are skipped with a notice.
const maxLineBytes = 1 << 20

var lineTooLongNotice = fmt.Sprintf("That message is too long (over %d KiB). Please shorten it and try again.", maxLineBytes>>10)

// chatLoop reads one line per turn and prints the composed answer. It returns
// nil on an exit command, end of input or cancellation.
func chatLoop(ctx context.Context, a answerer, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Course Assistant - Interactive Mode")
	fmt.Fprintln(out, "Ask me about:")
	fmt.Fprintln(out, "  • Course materials (e.g., 'What is PageRank?')")
	fmt.Fprintln(out, "  • Weather (e.g., 'What's the weather in Haifa today?')")
	fmt.Fprintln(out, "  • Your schedule (e.g., 'When is my next exam?')")
	fmt.Fprintln(out, "  • Holidays (e.g., 'When is the next holiday in Israel?')")
	fmt.Fprintln(out, "\nType 'quit' to exit")

	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(out, "\nYOU: ")
		raw, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			fmt.Fprintln(out, "\nGoodbye! 👋")
			return err
		}
		atEOF := err != nil
		if atEOF && raw == "" {
			fmt.Fprintln(out, "\nGoodbye! 👋")
			return nil
		}

		line := strings.TrimSpace(raw)
		switch {
		case line == "":
		case len(line) > maxLineBytes:
			log.Printf("⚠️ Skipped a %d-byte chat line (limit %d).", len(line), maxLineBytes)
			fmt.Fprintf(out, "\nASSISTANT: %s\n", lineTooLongNotice)
		case exitCommands[strings.ToLower(line)]:
			fmt.Fprintln(out, "\nGoodbye! 👋")
			return nil
		default:
			fmt.Fprintf(out, "\nASSISTANT: %s\n", answerTurn(ctx, a, line))
		}

		if ctx.Err() != nil {
			return nil
		}
		if atEOF {
			fmt.Fprintln(out, "\nGoodbye! 👋")
			return nil
		}
	}
}

// answerTurn runs one turn. Any failure, including a panic, is logged with
// detail and replaced by a generic notice so the loop can continue.
func answerTurn(ctx context.Context, a answerer, line string) (answer string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Turn panicked: %v\n%s", r, debug.Stack())
			answer = turnFailedNotice
		}
	}()

	reply, err := a.Answer(ctx, line)
	if err != nil {
		logTurnError("Turn failed", err)
		return turnFailedNotice
	}
	if len(reply.ToolsUsed) > 0 {
		log.Printf("Tools used: %s (%d ms, %d tokens)", strings.Join(reply.ToolsUsed, ", "), reply.Latency.Milliseconds(), reply.Usage.TotalTokens)
	}
	return reply.Answer
}

// logTurnError logs err followed by every error it wraps, outermost first.
func logTurnError(prefix string, err error) {
	log.Printf("❌ %s: %+v", prefix, err)
	depth := 1
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		log.Printf("   cause %d (%T): %v", depth, cause, cause)
		depth++
	}
}
