// In file: internal/tools/invocation.go
package tools

import (
	"strings"
	"time"
)

// Tool names, exactly as advertised to the model.
const (
	NameSearchCourseMaterials = "search_course_materials"
	NameGetWeather            = "get_weather"
	NameCheckCalendar         = "check_calendar"
	NameGetNextHoliday        = "get_next_holiday"
	NameGetPublicHolidays     = "get_public_holidays"
	NameIsPublicHoliday       = "is_public_holiday"
)

// IsHolidayTool reports whether name is one of the three holiday tools.
func IsHolidayTool(name string) bool {
	switch name {
	case NameGetNextHoliday, NameGetPublicHolidays, NameIsPublicHoliday:
		return true
	}
	return false
}

// Invocation is a decoded tool call: one of SearchArgs, WeatherArgs,
// CalendarArgs, NextHolidayArgs, ListHolidaysArgs or IsHolidayArgs.
// The set is closed; dispatch is a type switch in Registry.Execute.
type Invocation interface {
	ToolName() string
	// Validate checks argument values beyond what the JSON schema can express.
	Validate() error
	isInvocation()
}

// SearchArgs are the arguments of search_course_materials.
type SearchArgs struct {
	Query string `json:"query"`
}

// WeatherArgs are the arguments of get_weather. OnDate is empty for current conditions.
type WeatherArgs struct {
	Location string `json:"location"`
	OnDate   string `json:"on_date,omitempty"`
}

// CalendarArgs are the arguments of check_calendar.
type CalendarArgs struct {
	Query string `json:"query,omitempty"`
}

// NextHolidayArgs are the arguments of get_next_holiday.
type NextHolidayArgs struct {
	CountryCode string `json:"country_code,omitempty"`
}

// ListHolidaysArgs are the arguments of get_public_holidays.
type ListHolidaysArgs struct {
	Year        int    `json:"year"`
	CountryCode string `json:"country_code,omitempty"`
}

// IsHolidayArgs are the arguments of is_public_holiday.
type IsHolidayArgs struct {
	Date        string `json:"date_str"`
	CountryCode string `json:"country_code,omitempty"`
}

func (SearchArgs) ToolName() string       { return NameSearchCourseMaterials }
func (WeatherArgs) ToolName() string      { return NameGetWeather }
func (CalendarArgs) ToolName() string     { return NameCheckCalendar }
func (NextHolidayArgs) ToolName() string  { return NameGetNextHoliday }
func (ListHolidaysArgs) ToolName() string { return NameGetPublicHolidays }
func (IsHolidayArgs) ToolName() string    { return NameIsPublicHoliday }

func (SearchArgs) isInvocation()       {}
func (WeatherArgs) isInvocation()      {}
func (CalendarArgs) isInvocation()     {}
func (NextHolidayArgs) isInvocation()  {}
func (ListHolidaysArgs) isInvocation() {}
func (IsHolidayArgs) isInvocation()    {}

// placeholderLocations are things models write when they don't know the
// user's city. None of them geocode to anything useful.
var placeholderLocations = map[string]struct{}{
	"current location": {},
	"my location":      {},
	"here":             {},
	"now":              {},
	"today":            {},
	"local":            {},
	"location":         {},
}

// IsPlaceholderLocation reports whether loc is a stand-in rather than a
// real place name. This is a keyword heuristic, not geocoding.
func IsPlaceholderLocation(loc string) bool {
	t := strings.ToLower(strings.TrimSpace(loc))
	if len([]rune(t)) < 2 {
		return true
	}
	_, ok := placeholderLocations[t]
	return ok
}

// IsISODate reports whether s is a valid YYYY-MM-DD calendar date.
func IsISODate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

func (a SearchArgs) Validate() error {
	if strings.TrimSpace(a.Query) == "" {
		return invalidArgumentf("Error: Please provide a search query.")
	}
	return nil
}

func (a WeatherArgs) Validate() error {
	if IsPlaceholderLocation(a.Location) {
		return invalidArgumentf("Error: No valid city provided. Please provide a real city (e.g., 'Haifa, Israel').")
	}
	if a.OnDate != "" && !IsISODate(a.OnDate) {
		return invalidArgumentf("Error: on_date must be in YYYY-MM-DD format (e.g., 2026-02-10).")
	}
	return nil
}

func (CalendarArgs) Validate() error { return nil }

func (NextHolidayArgs) Validate() error { return nil }

func (a ListHolidaysArgs) Validate() error {
	if a.Year < 1900 || a.Year > 2200 {
		return invalidArgumentf("Error: year must be a four-digit year (e.g., 2026).")
	}
	return nil
}

func (a IsHolidayArgs) Validate() error {
	if !IsISODate(strings.TrimSpace(a.Date)) {
		return invalidArgumentf("Error: date must be YYYY-MM-DD (e.g., 2026-02-10).")
	}
	return nil
}
