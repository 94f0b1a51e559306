package export

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/Chinedu-E/mlb-odds/internal/pkg/models"
)

// defaultMaxRows caps the console table so a full pass over every market
// does not scroll the summary away.
const defaultMaxRows = 20

// ConsoleSink prints a pass summary and a preview of the collected odds.
type ConsoleSink struct {
	out     io.Writer
	maxRows int
}

// NewConsoleSink creates a sink that writes to stdout.
func NewConsoleSink() *ConsoleSink {
	return &ConsoleSink{out: os.Stdout, maxRows: defaultMaxRows}
}

// NewConsoleSinkTo directs output to w instead of stdout.
func NewConsoleSinkTo(w io.Writer, maxRows int) *ConsoleSink {
	return &ConsoleSink{out: w, maxRows: maxRows}
}

func (s *ConsoleSink) Deliver(result *models.RunResult) error {
	fmt.Fprintf(s.out, "\n=== Collection Summary (%s) ===\n", result.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(s.out, "Markets: %d attempted, %d with odds, %d empty, %d failed (%s)\n",
		result.Attempted, result.Yielded, result.Empty, result.Failed,
		result.Duration().Round(time.Millisecond))
	for _, failure := range result.Failures {
		fmt.Fprintf(s.out, "  failed: %s\n", failure)
	}

	if len(result.Records) == 0 {
		fmt.Fprintln(s.out, "No odds collected this pass.")
		return nil
	}

	rows := result.Records
	truncated := 0
	if s.maxRows > 0 && len(rows) > s.maxRows {
		truncated = len(rows) - s.maxRows
		rows = rows[:s.maxRows]
	}

	table := tablewriter.NewWriter(s.out)
	table.Header("Player", "Market", "Side", "Line", "Price", "Matchup", "Game")
	for _, rec := range rows {
		table.Append(
			rec.Player,
			rec.Subcategory,
			rec.Side,
			formatLine(rec.Line),
			fmt.Sprintf("%+d", rec.Price),
			fmt.Sprintf("%s @ %s", rec.AwayTeam, rec.HomeTeam),
			fmt.Sprintf("%s %s", rec.GameDate, rec.GameTimeLocal),
		)
	}
	table.Render()

	if truncated > 0 {
		fmt.Fprintf(s.out, "... and %d more records\n", truncated)
	}
	return nil
}
