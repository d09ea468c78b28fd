// In file: internal/tools/errors.go
package tools

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure a tool can report unwraps to one of these, so the
// agent can tell "bad input" apart from "the outside world failed".
var (
	// ErrInvalidArgument covers malformed or placeholder tool arguments.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnknownTool is reported when the model asks for a tool we don't have.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrLocationNotFound means geocoding returned no match.
	ErrLocationNotFound = errors.New("location not found")
	// ErrForecastUnavailable means the date is outside the provider's forecast horizon.
	ErrForecastUnavailable = errors.New("forecast not available")
	// ErrUnsupportedRegion is returned for holiday queries outside the configured country.
	ErrUnsupportedRegion = errors.New("unsupported region")
	// ErrService covers network failures, non-200 responses and unparsable payloads.
	ErrService = errors.New("external service error")
)

// ToolError is a failure that already carries the text the user (and the
// model) should see. Error returns that text verbatim.
type ToolError struct {
	Kind error
	Msg  string
}

func (e *ToolError) Error() string { return e.Msg }

func (e *ToolError) Unwrap() error { return e.Kind }

func newToolError(kind error, format string, args ...any) *ToolError {
	return &ToolError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func invalidArgumentf(format string, args ...any) *ToolError {
	return newToolError(ErrInvalidArgument, format, args...)
}

func serviceErrorf(format string, args ...any) *ToolError {
	return newToolError(ErrService, format, args...)
}
