package calendar

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextExam(t *testing.T) {
	s := newTestStore(t, "2026-02-08")

	exam := s.NextExam()
	assert.Equal(t, NextExam{Found: true, Title: "Machine Learning Exam", Date: "2026-02-10", Time: "09:00", Type: TypeExam}, exam)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(s.NextExamJSON()), &decoded))
	assert.Equal(t, true, decoded["found"])
	assert.Equal(t, "2026-02-10", decoded["date"])
	assert.NotContains(t, decoded, "reason")
}

func TestNextExamIncludesToday(t *testing.T) {
	s := newTestStore(t, "2026-02-10")
	assert.True(t, s.NextExam().Found)
}

func TestNextExamNoneLeft(t *testing.T) {
	s := newTestStore(t, "2026-03-01")

	assert.Equal(t, NextExam{Found: false, Reason: "No upcoming exams found."}, s.NextExam())
	assert.JSONEq(t, `{"found":false,"reason":"No upcoming exams found."}`, s.NextExamJSON())
}

func TestNextDeadline(t *testing.T) {
	cases := []struct {
		today     string
		remaining string
	}{
		{"2026-02-08", "Time remaining: In 7 days"},
		{"2026-02-14", "Time remaining: Tomorrow!"},
		{"2026-02-15", "Time remaining: Today!"},
	}
	for _, tc := range cases {
		t.Run(tc.today, func(t *testing.T) {
			out := newTestStore(t, tc.today).NextDeadline()
			assert.Contains(t, out, "Next Deadline:")
			assert.Contains(t, out, "Information Retrieval Final Project")
			assert.Contains(t, out, "Due: 2026-02-15 at 23:59")
			assert.Contains(t, out, tc.remaining)
		})
	}

	assert.Equal(t, "No upcoming deadlines found.", newTestStore(t, "2026-02-16").NextDeadline())
}

func TestMatching(t *testing.T) {
	s := newTestStore(t, "2026-01-01")

	out := s.Matching("exam")
	assert.Contains(t, out, "Found 1 event(s) matching 'exam':")
	assert.Contains(t, out, "📅 Machine Learning Exam")
	assert.Contains(t, out, "Date: 2026-02-10 at 09:00")
	assert.Contains(t, out, "Type: Exam")

	assert.Equal(t, "No events found matching 'picnic'.", s.Matching("picnic"))
}

func TestUpcoming(t *testing.T) {
	s := newTestStore(t, "2026-02-08")

	out := s.Upcoming(7)
	assert.Contains(t, out, "Upcoming events (next 7 days):")
	assert.Contains(t, out, "Machine Learning Exam")
	assert.Contains(t, out, "In 2 days (2026-02-10) at 09:00")
	assert.Contains(t, out, "Information Retrieval Final Project")
	assert.NotContains(t, out, "IR Lecture", "past events are excluded")

	assert.Equal(t, "No events scheduled in the next 7 days.", newTestStore(t, "2026-06-01").Upcoming(7))
}
