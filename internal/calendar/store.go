// In file: internal/calendar/store.go

// Package calendar is the assistant's event store: a small JSON file of
// deadlines, classes, exams and meetings, plus the queries the calendar tool
// answers from it.
package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// DefaultPath is where the store lives unless configured otherwise.
const DefaultPath = "data/calendar_events.json"

// Event types.
const (
	TypeDeadline = "deadline"
	TypeClass    = "class"
	TypeExam     = "exam"
	TypeMeeting  = "meeting"
	TypeOther    = "other"
)

var (
	// ErrInvalidEvent is returned by Add for malformed events.
	ErrInvalidEvent = errors.New("invalid event")
	// ErrEventExists is returned by Add when the same event is already stored.
	ErrEventExists = errors.New("event already exists")
	// ErrEventNotFound is returned by Remove when no title matches.
	ErrEventNotFound = errors.New("event not found")
)

// Event is one calendar entry. Date is YYYY-MM-DD and Time is HH:MM (24h).
type Event struct {
	Title string `json:"title"`
	Date  string `json:"date"`
	Time  string `json:"time"`
	Type  string `json:"type"`
}

// Validate checks every field of e.
func (e Event) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return fmt.Errorf("%w: title must not be empty", ErrInvalidEvent)
	}
	if _, err := time.Parse(time.DateOnly, e.Date); err != nil {
		return fmt.Errorf("%w: date must be YYYY-MM-DD", ErrInvalidEvent)
	}
	if _, err := time.Parse("15:04", e.Time); err != nil {
		return fmt.Errorf("%w: time must be HH:MM", ErrInvalidEvent)
	}
	switch e.Type {
	case TypeDeadline, TypeClass, TypeExam, TypeMeeting, TypeOther:
	default:
		return fmt.Errorf("%w: type must be one of deadline, class, exam, meeting, other", ErrInvalidEvent)
	}
	return nil
}

// sameAs reports whether e and o describe the same event. Titles compare case-insensitively.
func (e Event) sameAs(o Event) bool {
	return strings.EqualFold(e.Title, o.Title) && e.Date == o.Date && e.Time == o.Time && e.Type == o.Type
}

func (e Event) day() time.Time {
	d, _ := time.Parse(time.DateOnly, e.Date)
	return d
}

// DefaultEvents is the data set the store starts from and falls back to.
func DefaultEvents() []Event {
	return []Event{
		{Title: "IR Lecture - Advanced Ranking", Date: "2026-02-03", Time: "10:00", Type: TypeClass},
		{Title: "Study Group - RAG Systems", Date: "2026-02-05", Time: "14:00", Type: TypeMeeting},
		{Title: "Machine Learning Exam", Date: "2026-02-10", Time: "09:00", Type: TypeExam},
		{Title: "Information Retrieval Final Project", Date: "2026-02-15", Time: "23:59", Type: TypeDeadline},
	}
}

// Store persists events to a JSON file. Every operation re-reads the file
// under the store's mutex, so a deleted or corrupted file is regenerated from
// the defaults on the next access, and writes are read-modify-write.
type Store struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewStore opens (or creates) the store at path. A nil clock means time.Now.
func NewStore(path string, now func() time.Time) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if now == nil {
		now = time.Now
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create calendar dir: %w", err)
	}
	s := &Store{path: path, now: now}

	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.load()
	log.Printf("✅ Calendar loaded from %s (%d events).", path, len(events))
	return s, nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// List returns all events sorted by (date, time).
func (s *Store) List() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Add validates and stores an event. The type is lowercased and surrounding
// whitespace trimmed first. Adding an event that is already stored returns
// ErrEventExists and leaves the store unchanged.
func (s *Store) Add(e Event) (Event, error) {
	e = Event{
		Title: strings.TrimSpace(e.Title),
		Date:  strings.TrimSpace(e.Date),
		Time:  strings.TrimSpace(e.Time),
		Type:  strings.ToLower(strings.TrimSpace(e.Type)),
	}
	if err := e.Validate(); err != nil {
		return Event{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.load()
	for _, existing := range events {
		if existing.sameAs(e) {
			return existing, ErrEventExists
		}
	}
	events = append(events, e)
	sortEvents(events)
	if err := s.save(events); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Remove deletes every event whose title matches (case-insensitive) and
// returns how many were removed.
func (s *Store) Remove(title string) (int, error) {
	t := strings.TrimSpace(title)
	if t == "" {
		return 0, fmt.Errorf("%w: title must not be empty", ErrInvalidEvent)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	events := s.load()
	kept := events[:0]
	for _, e := range events {
		if !strings.EqualFold(strings.TrimSpace(e.Title), t) {
			kept = append(kept, e)
		}
	}
	removed := len(events) - len(kept)
	if removed == 0 {
		return 0, ErrEventNotFound
	}
	if err := s.save(kept); err != nil {
		return 0, err
	}
	return removed, nil
}

// load reads the file, regenerating it from the defaults when it is missing
// or unreadable. Invalid and duplicate records are dropped and the file is
// rewritten without them. Callers hold s.mu.
func (s *Store) load() []Event {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("⚠️ Calendar file %s not found. Creating it with default events.", s.path)
		return s.resetToDefaults()
	}
	if err != nil {
		log.Printf("⚠️ WARNING: Failed to read calendar JSON (%s): %v. Falling back to default events.", s.path, err)
		return s.resetToDefaults()
	}

	var raw []Event
	if err := json.Unmarshal(data, &raw); err != nil {
		log.Printf("⚠️ WARNING: Failed to parse calendar JSON (%s): %v. Falling back to default events (and rewriting the file).", s.path, err)
		return s.resetToDefaults()
	}

	events := make([]Event, 0, len(raw))
	for _, e := range raw {
		if e.Validate() != nil || containsEvent(events, e) {
			continue
		}
		events = append(events, e)
	}
	sortEvents(events)
	if dropped := len(raw) - len(events); dropped > 0 {
		log.Printf("⚠️ Dropped %d invalid or duplicate calendar record(s) from %s.", dropped, s.path)
		if err := s.save(events); err != nil {
			log.Printf("⚠️ WARNING: %v", err)
		}
	}
	return events
}

func containsEvent(events []Event, e Event) bool {
	for _, existing := range events {
		if existing.sameAs(e) {
			return true
		}
	}
	return false
}

func (s *Store) resetToDefaults() []Event {
	events := DefaultEvents()
	if err := s.save(events); err != nil {
		// The in-memory defaults still serve this call.
		log.Printf("⚠️ WARNING: %v", err)
	}
	return events
}

// save writes the events atomically (temp file + rename). Callers hold s.mu.
func (s *Store) save(events []Event) error {
	if events == nil {
		events = []Event{}
	}
	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal calendar events: %w", err)
	}
	data = append(data, '\n')

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to save calendar JSON (%s): %w", s.path, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to save calendar JSON (%s): %w", s.path, err)
	}
	return nil
}

func sortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Date != events[j].Date {
			return events[i].Date < events[j].Date
		}
		return events[i].Time < events[j].Time
	})
}
