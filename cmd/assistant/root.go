// In file: cmd/assistant/root.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command. Without a subcommand it starts the chat REPL.
var rootCmd = &cobra.Command{
	Use:   "assistant",
	Short: "🎓 Course assistant: course materials, weather, calendar and holidays",
	RunE:  runChat,
}

// Execute runs the root command and exits on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(versionCmd)
}
