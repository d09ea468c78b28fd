// In file: internal/calendar/queries.go
package calendar

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// NextExam is the structured answer to "next exam". Only Found and Reason
// are set when there is no upcoming exam.
type NextExam struct {
	Found  bool   `json:"found"`
	Title  string `json:"title,omitempty"`
	Date   string `json:"date,omitempty"`
	Time   string `json:"time,omitempty"`
	Type   string `json:"type,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// NextExam returns the earliest exam dated today or later.
func (s *Store) NextExam() NextExam {
	today := s.today()
	for _, e := range s.List() {
		if e.Type == TypeExam && !e.day().Before(today) {
			return NextExam{Found: true, Title: e.Title, Date: e.Date, Time: e.Time, Type: e.Type}
		}
	}
	return NextExam{Found: false, Reason: "No upcoming exams found."}
}

// NextExamJSON is NextExam encoded as a JSON object, the form other tools chain on.
func (s *Store) NextExamJSON() string {
	data, err := json.Marshal(s.NextExam())
	if err != nil {
		return `{"found":false,"reason":"No upcoming exams found."}`
	}
	return string(data)
}

// NextDeadline describes the earliest deadline dated today or later.
func (s *Store) NextDeadline() string {
	today := s.today()
	for _, e := range s.List() {
		if e.Type != TypeDeadline || e.day().Before(today) {
			continue
		}
		var remaining string
		switch days := daysBetween(today, e.day()); days {
		case 0:
			remaining = "Today!"
		case 1:
			remaining = "Tomorrow!"
		default:
			remaining = fmt.Sprintf("In %d days", days)
		}
		var b strings.Builder
		b.WriteString("⚠️  Next Deadline:\n")
		fmt.Fprintf(&b, "%s\n", e.Title)
		fmt.Fprintf(&b, "Due: %s at %s\n", e.Date, e.Time)
		fmt.Fprintf(&b, "Time remaining: %s", remaining)
		return b.String()
	}
	return "No upcoming deadlines found."
}

// Matching lists every event whose title or type contains query (case-insensitive).
func (s *Store) Matching(query string) string {
	q := strings.ToLower(strings.TrimSpace(query))
	var matches []Event
	for _, e := range s.List() {
		if strings.Contains(strings.ToLower(e.Title), q) || strings.Contains(strings.ToLower(e.Type), q) {
			matches = append(matches, e)
		}
	}
	if len(matches) == 0 {
		return fmt.Sprintf("No events found matching '%s'.", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d event(s) matching '%s':\n", len(matches), query)
	for _, e := range matches {
		fmt.Fprintf(&b, "\n📅 %s\n", e.Title)
		fmt.Fprintf(&b, "   Date: %s at %s\n", e.Date, e.Time)
		fmt.Fprintf(&b, "   Type: %s\n", capitalize(e.Type))
	}
	return strings.TrimSpace(b.String())
}

// Upcoming lists events from today through today+days.
func (s *Store) Upcoming(days int) string {
	today := s.today()
	cutoff := today.AddDate(0, 0, days)

	var b strings.Builder
	count := 0
	for _, e := range s.List() {
		d := e.day()
		if d.Before(today) || d.After(cutoff) {
			continue
		}
		count++
		var when string
		switch n := daysBetween(today, d); n {
		case 0:
			when = "Today"
		case 1:
			when = "Tomorrow"
		default:
			when = fmt.Sprintf("In %d days", n)
		}
		fmt.Fprintf(&b, "\n📅 %s\n", e.Title)
		fmt.Fprintf(&b, "   %s (%s) at %s\n", when, e.Date, e.Time)
		fmt.Fprintf(&b, "   Type: %s\n", capitalize(e.Type))
	}
	if count == 0 {
		return fmt.Sprintf("No events scheduled in the next %d days.", days)
	}
	return strings.TrimSpace(fmt.Sprintf("Upcoming events (next %d days):\n%s", days, b.String()))
}

// today is the current date at midnight UTC, comparable with Event.day.
func (s *Store) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
