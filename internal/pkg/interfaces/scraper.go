package interfaces

import (
	"context"

	"github.com/Chinedu-E/mlb-odds/internal/pkg/models"
)

// Fetcher renders one URL and returns the page HTML. Implementations own
// the rendering session for the call and must release it on every exit
// path. A page that renders without any market listings is reported with
// ErrEmptyPage; real faults are reported with *FetchError.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// RecordParser extracts odds records from rendered page content. Parsing
// never fails: malformed individual listings are skipped and a document
// without the market container yields no records.
type RecordParser interface {
	Parse(html string, job models.FetchJob) []models.OddsRecord
}

// Sink receives the aggregated result of one completed collection pass.
type Sink interface {
	Deliver(result *models.RunResult) error
}

// StatusSource exposes the latest completed pass and the schedule state to
// read-only consumers such as the status endpoints.
type StatusSource interface {
	Latest() (*models.RunResult, bool)
	State() models.ScheduleState
}
