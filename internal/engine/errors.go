package engine

import (
	"errors"
	"fmt"

	"github.com/tartampluch/go-celebrations/internal/config"
)

// Stage failures. Callers match them with errors.Is.
var (
	ErrFeedUnavailable      = errors.New(config.ErrFeedUnavailable)
	ErrMalformedSummary     = errors.New(config.ErrMalformedSummary)
	ErrDirectoryUnavailable = errors.New(config.ErrDirectoryUnavailable)
	ErrRosterUnavailable    = errors.New(config.ErrRosterUnavailable)
	ErrDeliveryFailed       = errors.New(config.ErrDeliveryFailed)
)

// MalformedSummaryError reports a feed summary missing its expected delimiter.
type MalformedSummaryError struct {
	Kind      Kind
	Summary   string
	Delimiter string
}

func (e *MalformedSummaryError) Error() string {
	return fmt.Sprintf("%s: %s summary %q lacks %q", config.ErrMalformedSummary, e.Kind, e.Summary, e.Delimiter)
}

// Is reports whether target is ErrMalformedSummary.
func (e *MalformedSummaryError) Is(target error) bool {
	return target == ErrMalformedSummary
}
