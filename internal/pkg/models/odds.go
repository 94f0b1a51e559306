package models

import (
	"time"
)

// Side of a player-prop line.
const (
	SideOver  = "Over"
	SideUnder = "Under"
)

// OddsRecord is one player-prop listing collected from the sportsbook.
// Category and Subcategory carry the underscored output slugs
// (e.g. "batter_props", "home_runs"), not the site's URL slugs.
type OddsRecord struct {
	Player         string   `json:"player_name"`
	Line           *float64 `json:"over_under_total"`
	Price          int      `json:"odds"` // American odds, signed
	Side           string   `json:"odd_type"`
	HomeTeam       string   `json:"home_team"`
	AwayTeam       string   `json:"away_team"`
	GameTimeLocal  string   `json:"game_time_local"`
	GameTimeUTC    string   `json:"game_time_utc"`
	GameDate       string   `json:"game_date"`
	Category       string   `json:"main_category_type"`
	Subcategory    string   `json:"sub_category_type"`
	CollectedLocal string   `json:"time_now_local"`
	CollectedUTC   string   `json:"time_now_utc"`
}

// FetchJob is one (category, subcategory) unit of collection work,
// holding the site's URL slugs. Jobs are constructed fresh per pass.
type FetchJob struct {
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

// RunResult is the aggregated output of one full collection pass. A pass
// always produces a RunResult, even when every job degraded to zero rows;
// the counters tell an empty market apart from a broken one.
type RunResult struct {
	Records    []OddsRecord `json:"records"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Attempted  int          `json:"subcategories_attempted"`
	Yielded    int          `json:"subcategories_yielded"`
	Empty      int          `json:"subcategories_empty"`
	Failed     int          `json:"subcategories_failed"`
	Failures   []string     `json:"failures,omitempty"`
}

// Duration returns the wall-clock time the pass took.
func (r *RunResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Summary returns the pass metadata without the records themselves.
func (r *RunResult) Summary() RunSummary {
	return RunSummary{
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Records:    len(r.Records),
		Attempted:  r.Attempted,
		Yielded:    r.Yielded,
		Empty:      r.Empty,
		Failed:     r.Failed,
	}
}

// RunSummary is the metadata of one pass, used in logs and status output.
type RunSummary struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Records    int       `json:"records"`
	Attempted  int       `json:"subcategories_attempted"`
	Yielded    int       `json:"subcategories_yielded"`
	Empty      int       `json:"subcategories_empty"`
	Failed     int       `json:"subcategories_failed"`
}

// ScheduleState is a snapshot of the scheduler for status reporting. It is
// owned by the scheduler and read through its handle; nothing else mutates
// it.
type ScheduleState struct {
	Running      bool        `json:"running"`
	SkippedTicks int         `json:"skipped_ticks"`
	NextTick     time.Time   `json:"next_tick"`
	LastRun      *RunSummary `json:"last_run,omitempty"`
}
