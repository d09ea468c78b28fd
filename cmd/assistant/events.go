// In file: cmd/assistant/events.go
package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/dileep-u-k/course-assistant/internal/calendar"

	"github.com/spf13/cobra"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Manage calendar events",
}

func init() {
	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsAddCmd)
	eventsCmd.AddCommand(eventsRemoveCmd)
}

// openStore opens the calendar without building the rest of the app.
func openStore() (*calendar.Store, error) {
	loadDotEnv()
	return calendar.NewStore(getEnv("CALENDAR_PATH", calendar.DefaultPath), nil)
}

// ---- list ------------------------------------------------------------------

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List calendar events",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		printEvents(cmd.OutOrStdout(), store.List())
		return nil
	},
}

func printEvents(out io.Writer, events []calendar.Event) {
	if len(events) == 0 {
		fmt.Fprintln(out, "No events.")
		return
	}
	fmt.Fprintf(out, "%-12s %-6s %-10s %s\n", "Date", "Time", "Type", "Title")
	for _, e := range events {
		fmt.Fprintf(out, "%-12s %-6s %-10s %s\n", e.Date, e.Time, e.Type, e.Title)
	}
}

// ---- add -------------------------------------------------------------------

var (
	eventTitle string
	eventDate  string
	eventTime  string
	eventType  string
)

var eventsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a calendar event",
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		event, err := store.Add(calendar.Event{Title: eventTitle, Date: eventDate, Time: eventTime, Type: eventType})
		if errors.Is(err, calendar.ErrEventExists) {
			fmt.Fprintf(cmd.OutOrStdout(), "Event already exists: %s on %s at %s.\n", event.Title, event.Date, event.Time)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ Added %s on %s at %s (%s).\n", event.Title, event.Date, event.Time, event.Type)
		return nil
	},
}

func init() {
	eventsAddCmd.Flags().StringVar(&eventTitle, "title", "", "Event title")
	eventsAddCmd.Flags().StringVar(&eventDate, "date", "", "Date (YYYY-MM-DD)")
	eventsAddCmd.Flags().StringVar(&eventTime, "time", "", "Time (HH:MM, 24h)")
	eventsAddCmd.Flags().StringVar(&eventType, "type", calendar.TypeOther, "deadline, class, exam, meeting or other")
}

// ---- remove ----------------------------------------------------------------

var eventsRemoveCmd = &cobra.Command{
	Use:   "remove <title>",
	Short: "Remove every event with the given title",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		removed, err := store.Remove(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %d event(s).\n", removed)
		return nil
	},
}
