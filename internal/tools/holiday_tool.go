// In file: internal/tools/holiday_tool.go
package tools

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// --- Holiday Tool Implementation ---

const (
	defaultHebcalURL = "https://www.hebcal.com/hebcal"
	maxHolidayLines  = 60
)

// HolidayRecord is one public holiday as returned by the provider. Records
// are fetched fresh on every call and never cached.
type HolidayRecord struct {
	Date     string `json:"date"`
	Title    string `json:"title"`
	Category string `json:"category"`
}

// HolidayTool answers holiday questions from the Hebcal API (free, no key).
// Only one country is supported; any other region is an input error.
type HolidayTool struct {
	baseURL string
	country string
	client  *lookupClient
	now     func() time.Time
}

// Statically verify that HolidayTool implements the HolidayLookup interface.
var _ HolidayLookup = (*HolidayTool)(nil)

// NewHolidayTool creates a HolidayTool for the given country against the public Hebcal API.
func NewHolidayTool(country string, now func() time.Time) *HolidayTool {
	return NewHolidayToolWithEndpoint(defaultHebcalURL, country, now)
}

// NewHolidayToolWithEndpoint points the tool at another Hebcal-compatible endpoint.
func NewHolidayToolWithEndpoint(baseURL, country string, now func() time.Time) *HolidayTool {
	if now == nil {
		now = time.Now
	}
	country = strings.ToUpper(strings.TrimSpace(country))
	if country == "" {
		country = "IL"
	}
	return &HolidayTool{
		baseURL: baseURL,
		country: country,
		client:  newLookupClient(15 * time.Second),
		now:     now,
	}
}

func holidayDefinitions(country string) []Tool {
	countryCode := &JSONSchema{
		Type:        "string",
		Description: fmt.Sprintf("2-letter country code. Only '%s' is supported.", country),
	}
	return []Tool{
		NewFunctionTool(
			NameGetNextHoliday,
			"Returns the next upcoming public holiday after today's date.",
			JSONSchema{
				Type:       "object",
				Properties: map[string]*JSONSchema{"country_code": countryCode},
			},
		),
		NewFunctionTool(
			NameGetPublicHolidays,
			"Lists the public holidays in a given year.",
			JSONSchema{
				Type: "object",
				Properties: map[string]*JSONSchema{
					"year":         {Type: "integer", Description: "Four-digit year, e.g., 2026."},
					"country_code": countryCode,
				},
				Required: []string{"year"},
			},
		),
		NewFunctionTool(
			NameIsPublicHoliday,
			"Checks whether a specific date is a public holiday.",
			JSONSchema{
				Type: "object",
				Properties: map[string]*JSONSchema{
					"date_str":     {Type: "string", Description: "The date in YYYY-MM-DD."},
					"country_code": countryCode,
				},
				Required: []string{"date_str"},
			},
		),
	}
}

// NextHoliday returns the first holiday strictly after today, looking into
// next year when the current one has none left.
func (ht *HolidayTool) NextHoliday(ctx context.Context, args NextHolidayArgs) (string, error) {
	cc, err := ht.countryCode(args.CountryCode)
	if err != nil {
		return "", err
	}
	today := ht.now().Format(time.DateOnly)
	year := ht.now().Year()

	records, err := ht.fetchYear(ctx, year)
	if err != nil {
		return "", err
	}
	candidates := holidaysAfter(records, today)

	if len(candidates) == 0 {
		next, err := ht.fetchYear(ctx, year+1)
		if err != nil {
			return "", serviceErrorf("No more holidays in %d. Also failed fetching %d: %v", year, year+1, err)
		}
		candidates = holidaysAfter(next, "")
	}
	if len(candidates) == 0 {
		return "No upcoming holidays found.", nil
	}

	first := candidates[0]
	return fmt.Sprintf("Next holiday in %s: %s — %s.", cc, first.Date, first.Title), nil
}

// PublicHolidays lists the holidays of one year.
func (ht *HolidayTool) PublicHolidays(ctx context.Context, args ListHolidaysArgs) (string, error) {
	if err := args.Validate(); err != nil {
		return "", err
	}
	cc, err := ht.countryCode(args.CountryCode)
	if err != nil {
		return "", err
	}
	records, err := ht.fetchYear(ctx, args.Year)
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return fmt.Sprintf("No holidays found for %s in %d.", cc, args.Year), nil
	}

	lines := []string{fmt.Sprintf("Holidays in %s for %d (Hebcal):", cc, args.Year)}
	for i, rec := range records {
		if i == maxHolidayLines {
			lines = append(lines, fmt.Sprintf("...and %d more.", len(records)-maxHolidayLines))
			break
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", rec.Date, rec.Title))
	}
	return strings.Join(lines, "\n"), nil
}

// IsHoliday checks one date.
func (ht *HolidayTool) IsHoliday(ctx context.Context, args IsHolidayArgs) (string, error) {
	if err := args.Validate(); err != nil {
		return "", err
	}
	cc, err := ht.countryCode(args.CountryCode)
	if err != nil {
		return "", err
	}
	date := strings.TrimSpace(args.Date)
	day, _ := time.Parse(time.DateOnly, date)

	records, err := ht.fetchYear(ctx, day.Year())
	if err != nil {
		return "", err
	}
	for _, rec := range records {
		if rec.Date == date {
			return fmt.Sprintf("Yes — %s is a holiday in %s: %s.", date, cc, rec.Title), nil
		}
	}
	return fmt.Sprintf("No — %s is not a (major) holiday in %s.", date, cc), nil
}

func (ht *HolidayTool) countryCode(cc string) (string, error) {
	cc = strings.ToUpper(strings.TrimSpace(cc))
	if cc == "" {
		cc = ht.country
	}
	if cc != ht.country {
		return "", newToolError(ErrUnsupportedRegion,
			"Error: Holiday tool currently supports only country_code='%s'.", ht.country)
	}
	return cc, nil
}

// fetchYear returns the major holidays (category "holiday") of one year.
func (ht *HolidayTool) fetchYear(ctx context.Context, year int) ([]HolidayRecord, error) {
	params := url.Values{}
	params.Set("cfg", "json")
	params.Set("v", "1")
	params.Set("year", strconv.Itoa(year))
	params.Set("maj", "on")
	params.Set("min", "off")
	params.Set("mod", "off")
	params.Set("nx", "off")
	params.Set("mf", "off")
	params.Set("ss", "off")
	params.Set("c", "on")
	params.Set("geo", "country")
	params.Set("country", ht.country)

	var resp struct {
		Items []HolidayRecord `json:"items"`
	}
	if err := ht.client.getJSON(ctx, ht.baseURL, params, &resp); err != nil {
		return nil, serviceErrorf("Holiday API error: %v", err)
	}

	records := make([]HolidayRecord, 0, len(resp.Items))
	for _, it := range resp.Items {
		if it.Category == "holiday" {
			records = append(records, it)
		}
	}
	return records, nil
}

// holidaysAfter returns well-formed records dated after the given ISO date, sorted by date.
func holidaysAfter(records []HolidayRecord, after string) []HolidayRecord {
	var out []HolidayRecord
	for _, rec := range records {
		if !IsISODate(rec.Date) {
			continue
		}
		if rec.Date > after {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
