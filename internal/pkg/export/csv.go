package export

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Chinedu-E/mlb-odds/internal/pkg/models"
)

// csvColumns is the snapshot column order. Downstream spreadsheets key on
// these names, so the order is part of the format.
var csvColumns = []string{
	"player_name",
	"over_under_total",
	"odds",
	"odd_type",
	"home_team",
	"away_team",
	"game_time_local",
	"game_time_utc",
	"game_date",
	"main_category_type",
	"sub_category_type",
	"time_now_local",
	"time_now_utc",
}

// CSVSink writes each pass to its own timestamped snapshot file, so a pass
// never overwrites an earlier one.
type CSVSink struct {
	dir string
}

func NewCSVSink(dir string) *CSVSink {
	return &CSVSink{dir: dir}
}

func (s *CSVSink) Deliver(result *models.RunResult) error {
	if len(result.Records) == 0 {
		slog.Info("No records collected, skipping CSV snapshot")
		return nil
	}

	name := "odds_" + result.StartedAt.Format("20060102_150405") + ".csv"
	path := filepath.Join(s.dir, name)

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv snapshot: %w", err)
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write(csvColumns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range result.Records {
		if err := w.Write(csvRow(rec)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush csv snapshot: %w", err)
	}

	slog.Info("Saved odds snapshot", "path", path, "records", len(result.Records))
	return nil
}

func csvRow(rec models.OddsRecord) []string {
	return []string{
		rec.Player,
		formatLine(rec.Line),
		strconv.Itoa(rec.Price),
		rec.Side,
		rec.HomeTeam,
		rec.AwayTeam,
		rec.GameTimeLocal,
		rec.GameTimeUTC,
		rec.GameDate,
		rec.Category,
		rec.Subcategory,
		rec.CollectedLocal,
		rec.CollectedUTC,
	}
}

func formatLine(line *float64) string {
	if line == nil {
		return ""
	}
	return strconv.FormatFloat(*line, 'f', -1, 64)
}
