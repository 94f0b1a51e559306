package interfaces

import (
	"errors"
	"fmt"
)

// ErrEmptyPage reports a page that rendered without any market listings.
// It is a valid page state, not a failure: the site simply has no events
// for that subcategory right now. Callers record zero rows and move on.
var ErrEmptyPage = errors.New("page has no market listings")

// FaultKind is a coarse classification of a failed fetch.
type FaultKind string

const (
	FaultTimeout    FaultKind = "timeout"
	FaultNavigation FaultKind = "navigation"
	FaultSession    FaultKind = "session"
)

// FetchError wraps a failed page load. It is absorbed at the collector
// boundary as zero rows for the affected subcategory and never aborts a
// pass.
type FetchError struct {
	URL  string
	Kind FaultKind
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
