// In file: internal/tools/calendar_tool.go
package tools

import (
	"context"
	"strings"

	"github.com/dileep-u-k/course-assistant/internal/calendar"
)

// --- Calendar Tool Implementation ---

// CalendarTool answers check_calendar from the local event store. The query
// is dispatched by keyword: "next exam" returns JSON (for chaining),
// "deadline" and "exam"/"test" return text, anything else the upcoming digest.
type CalendarTool struct {
	store        *calendar.Store
	upcomingDays int
}

// Statically verify that CalendarTool implements the CalendarLookup interface.
var _ CalendarLookup = (*CalendarTool)(nil)

// NewCalendarTool wraps a store. upcomingDays bounds the default digest.
func NewCalendarTool(store *calendar.Store, upcomingDays int) *CalendarTool {
	if upcomingDays <= 0 {
		upcomingDays = 7
	}
	return &CalendarTool{store: store, upcomingDays: upcomingDays}
}

func calendarDefinition() Tool {
	return NewFunctionTool(
		NameCheckCalendar,
		"Check the student's calendar. If the query contains 'next exam', returns JSON "+
			"with the exam's date (use it for follow-up lookups). 'deadline' returns the next deadline, "+
			"'exam' lists exams, anything else lists upcoming events.",
		JSONSchema{
			Type: "object",
			Properties: map[string]*JSONSchema{
				"query": {
					Type:        "string",
					Description: "What to look up, e.g., 'next exam', 'deadline', 'upcoming'.",
				},
			},
		},
	)
}

// Calendar runs the keyword dispatch.
func (ct *CalendarTool) Calendar(_ context.Context, args CalendarArgs) (string, error) {
	q := strings.ToLower(strings.TrimSpace(args.Query))
	switch {
	case strings.Contains(q, "next exam"):
		return ct.store.NextExamJSON(), nil
	case strings.Contains(q, "deadline"):
		return ct.store.NextDeadline(), nil
	case strings.Contains(q, "exam"), strings.Contains(q, "test"):
		return ct.store.Matching("exam"), nil
	default:
		return ct.store.Upcoming(ct.upcomingDays), nil
	}
}
