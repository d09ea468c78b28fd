package tools

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dileep-u-k/course-assistant/internal/calendar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarDispatch(t *testing.T) {
	now := time.Date(2026, 2, 8, 9, 0, 0, 0, time.UTC)
	store, err := calendar.NewStore(filepath.Join(t.TempDir(), "events.json"), func() time.Time { return now })
	require.NoError(t, err)
	ct := NewCalendarTool(store, 0)
	ctx := context.Background()

	cases := []struct {
		query string
		want  string
	}{
		{"When is my NEXT EXAM?", store.NextExamJSON()},
		{"deadline", store.NextDeadline()},
		{"any tests soon", store.Matching("exam")},
		{"exam", store.Matching("exam")},
		{"upcoming", store.Upcoming(7)},
		{"", store.Upcoming(7)},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			out, err := ct.Calendar(ctx, CalendarArgs{Query: tc.query})
			require.NoError(t, err)
			assert.Equal(t, tc.want, out)
		})
	}
}
