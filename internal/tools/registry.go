// In file: internal/tools/registry.go
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// CourseSearcher answers search_course_materials.
type CourseSearcher interface {
	Search(ctx context.Context, args SearchArgs) (string, error)
}

// WeatherLookup answers get_weather.
type WeatherLookup interface {
	Weather(ctx context.Context, args WeatherArgs) (string, error)
}

// CalendarLookup answers check_calendar.
type CalendarLookup interface {
	Calendar(ctx context.Context, args CalendarArgs) (string, error)
}

// HolidayLookup answers the three holiday tools.
type HolidayLookup interface {
	NextHoliday(ctx context.Context, args NextHolidayArgs) (string, error)
	PublicHolidays(ctx context.Context, args ListHolidaysArgs) (string, error)
	IsHoliday(ctx context.Context, args IsHolidayArgs) (string, error)
}

// Capabilities are the external collaborators behind the tools. A nil
// capability leaves its tools out of the registry.
type Capabilities struct {
	Search   CourseSearcher
	Weather  WeatherLookup
	Calendar CalendarLookup
	Holidays HolidayLookup

	// DefaultCountry is advertised in the holiday tool descriptions.
	DefaultCountry string
}

type registryEntry struct {
	def    Tool
	schema *jsonschema.Schema
}

// Registry holds the tools available for one process. It is built once at
// startup and is safe for concurrent reads.
type Registry struct {
	caps    Capabilities
	order   []string
	entries map[string]registryEntry
}

// NewRegistry registers every tool whose capability is present and compiles
// its parameter schema for argument validation.
func NewRegistry(caps Capabilities) (*Registry, error) {
	if caps.DefaultCountry == "" {
		caps.DefaultCountry = "IL"
	}
	r := &Registry{caps: caps, entries: make(map[string]registryEntry)}

	var defs []Tool
	if caps.Search != nil {
		defs = append(defs, searchDefinition())
	}
	if caps.Weather != nil {
		defs = append(defs, weatherDefinition())
	}
	if caps.Calendar != nil {
		defs = append(defs, calendarDefinition())
	}
	if caps.Holidays != nil {
		defs = append(defs, holidayDefinitions(caps.DefaultCountry)...)
	}

	for _, def := range defs {
		schema, err := compileSchema(def.Function.Parameters)
		if err != nil {
			return nil, fmt.Errorf("compile schema for %s: %w", def.Function.Name, err)
		}
		r.entries[def.Function.Name] = registryEntry{def: def, schema: schema}
		r.order = append(r.order, def.Function.Name)
	}
	return r, nil
}

// Definitions returns the registered tool definitions in a stable order.
func (r *Registry) Definitions() []Tool {
	defs := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.entries[name].def)
	}
	return defs
}

// ToolCount returns the number of registered tools.
func (r *Registry) ToolCount() int {
	return len(r.order)
}

// Decode turns a model-requested call into a typed Invocation. The
// arguments are validated against the tool's JSON schema first; null values
// are treated as absent. Failures are *ToolError values ready to show.
func (r *Registry) Decode(call *ToolCall) (Invocation, error) {
	name := call.Function.Name
	entry, ok := r.entries[name]
	if !ok {
		return nil, newToolError(ErrUnknownTool, "Error: tool '%s' not found.", name)
	}

	args, err := parseArguments(call.Function.Arguments)
	if err != nil {
		return nil, invalidArgumentf("Error: invalid arguments for %s: %v", name, err)
	}
	if err := entry.schema.Validate(args); err != nil {
		return nil, invalidArgumentf("Error: invalid arguments for %s: %s", name, flattenValidationError(err))
	}

	// The map is valid JSON by construction; round-tripping it gives us the typed struct.
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, invalidArgumentf("Error: invalid arguments for %s: %v", name, err)
	}

	var inv Invocation
	switch name {
	case NameSearchCourseMaterials:
		var a SearchArgs
		err = json.Unmarshal(raw, &a)
		inv = a
	case NameGetWeather:
		var a WeatherArgs
		err = json.Unmarshal(raw, &a)
		a.Location = strings.TrimSpace(a.Location)
		a.OnDate = strings.TrimSpace(a.OnDate)
		inv = a
	case NameCheckCalendar:
		a := CalendarArgs{Query: "upcoming"}
		err = json.Unmarshal(raw, &a)
		inv = a
	case NameGetNextHoliday:
		a := NextHolidayArgs{CountryCode: r.caps.DefaultCountry}
		err = json.Unmarshal(raw, &a)
		inv = a
	case NameGetPublicHolidays:
		a := ListHolidaysArgs{CountryCode: r.caps.DefaultCountry}
		err = json.Unmarshal(raw, &a)
		inv = a
	case NameIsPublicHoliday:
		a := IsHolidayArgs{CountryCode: r.caps.DefaultCountry}
		err = json.Unmarshal(raw, &a)
		inv = a
	default:
		return nil, newToolError(ErrUnknownTool, "Error: tool '%s' not found.", name)
	}
	if err != nil {
		return nil, invalidArgumentf("Error: invalid arguments for %s: %v", name, err)
	}
	return inv, nil
}

// Execute runs a decoded invocation against its capability.
func (r *Registry) Execute(ctx context.Context, inv Invocation) (string, error) {
	switch a := inv.(type) {
	case SearchArgs:
		return r.caps.Search.Search(ctx, a)
	case WeatherArgs:
		return r.caps.Weather.Weather(ctx, a)
	case CalendarArgs:
		return r.caps.Calendar.Calendar(ctx, a)
	case NextHolidayArgs:
		return r.caps.Holidays.NextHoliday(ctx, a)
	case ListHolidaysArgs:
		return r.caps.Holidays.PublicHolidays(ctx, a)
	case IsHolidayArgs:
		return r.caps.Holidays.IsHoliday(ctx, a)
	default:
		return "", fmt.Errorf("unhandled invocation type %T", inv)
	}
}

// parseArguments decodes the model's argument string and drops null members.
func parseArguments(arguments string) (map[string]any, error) {
	args := map[string]any{}
	if strings.TrimSpace(arguments) == "" {
		return args, nil
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		return nil, err
	}
	for k, v := range args {
		if v == nil {
			delete(args, k)
		}
	}
	return args, nil
}

func compileSchema(s JSONSchema) (*jsonschema.Schema, error) {
	schemaBytes, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	var schemaDoc any
	if err := json.Unmarshal(schemaBytes, &schemaDoc); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("schema.json", schemaDoc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return c.Compile("schema.json")
}

// flattenValidationError keeps the useful lines of a jsonschema error on one line.
func flattenValidationError(err error) string {
	lines := strings.Split(err.Error(), "\n")
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "-"))
		if line == "" || strings.HasPrefix(line, "jsonschema validation failed") {
			continue
		}
		parts = append(parts, line)
	}
	if len(parts) == 0 {
		return err.Error()
	}
	return strings.Join(parts, "; ")
}
