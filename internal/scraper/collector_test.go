package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chinedu-E/mlb-odds/internal/pkg/categories"
	"github.com/Chinedu-E/mlb-odds/internal/pkg/interfaces"
	"github.com/Chinedu-E/mlb-odds/internal/pkg/models"
	"github.com/Chinedu-E/mlb-odds/internal/scraper/draftkings"
)

type fetcherFunc func(ctx context.Context, pageURL string) (string, error)

func (f fetcherFunc) Fetch(ctx context.Context, pageURL string) (string, error) {
	return f(ctx, pageURL)
}

type parserFunc func(html string, job models.FetchJob) []models.OddsRecord

func (p parserFunc) Parse(html string, job models.FetchJob) []models.OddsRecord {
	return p(html, job)
}

func jobURL(j models.FetchJob) string {
	return j.Category + "/" + j.Subcategory
}

// onePerJob returns a single record tagged with the job's subcategory, so
// tests can tell which job produced which record.
func onePerJob(html string, job models.FetchJob) []models.OddsRecord {
	return []models.OddsRecord{{Player: job.Subcategory, Category: job.Category, Subcategory: job.Subcategory}}
}

func testJobs() []models.FetchJob {
	return []models.FetchJob{
		{Category: "batter-props", Subcategory: "home-runs"},
		{Category: "batter-props", Subcategory: "hits"},
		{Category: "pitcher-props", Subcategory: "strikeouts-thrown"},
		{Category: "pitcher-props", Subcategory: "outs-recorded"},
	}
}

func TestPlanJobs(t *testing.T) {
	jobs, err := PlanJobs([]categories.Category{categories.BatterProps, categories.PitcherProps})
	require.NoError(t, err)

	require.Len(t, jobs, 16)
	assert.Equal(t, models.FetchJob{Category: "batter-props", Subcategory: "home-runs"}, jobs[0])
	assert.Equal(t, models.FetchJob{Category: "pitcher-props", Subcategory: "walks-allowed"}, jobs[15])

	_, err = PlanJobs([]categories.Category{categories.Category("soccer-props")})
	require.Error(t, err)
	assert.ErrorIs(t, err, categories.ErrUnknownCategory)
}

func TestNewCollectorValidation(t *testing.T) {
	fetch := fetcherFunc(func(context.Context, string) (string, error) { return "", nil })
	parse := parserFunc(onePerJob)

	_, err := NewCollector(Options{Parser: parse, BuildURL: jobURL})
	assert.ErrorContains(t, err, "fetcher")

	_, err = NewCollector(Options{Fetcher: fetch, BuildURL: jobURL})
	assert.ErrorContains(t, err, "parser")

	_, err = NewCollector(Options{Fetcher: fetch, Parser: parse})
	assert.ErrorContains(t, err, "url builder")

	_, err = NewCollector(Options{Fetcher: fetch, Parser: parse, BuildURL: jobURL})
	require.NoError(t, err)
}

func TestCollectModesAgree(t *testing.T) {
	fetch := fetcherFunc(func(_ context.Context, pageURL string) (string, error) {
		return "page:" + pageURL, nil
	})

	collect := func(sequential bool) *models.RunResult {
		c, err := NewCollector(Options{
			Fetcher:    fetch,
			Parser:     parserFunc(onePerJob),
			BuildURL:   jobURL,
			Jobs:       testJobs(),
			Sequential: sequential,
			MaxWorkers: 3,
		})
		require.NoError(t, err)
		return c.Collect(context.Background())
	}

	sequential := collect(true)
	parallel := collect(false)

	assert.Equal(t, sequential.Records, parallel.Records, "modes must merge records in the same order")
	assert.Equal(t, sequential.Attempted, parallel.Attempted)
	assert.Equal(t, sequential.Yielded, parallel.Yielded)

	require.Len(t, sequential.Records, 4)
	for i, job := range testJobs() {
		assert.Equal(t, job.Subcategory, sequential.Records[i].Player)
	}
}

func TestCollectFailureIsolation(t *testing.T) {
	fetch := fetcherFunc(func(_ context.Context, pageURL string) (string, error) {
		if strings.Contains(pageURL, "hits") {
			return "", &interfaces.FetchError{
				URL:  pageURL,
				Kind: interfaces.FaultNavigation,
				Err:  errors.New("net::ERR_CONNECTION_RESET"),
			}
		}
		return "ok", nil
	})

	c, err := NewCollector(Options{
		Fetcher:    fetch,
		Parser:     parserFunc(onePerJob),
		BuildURL:   jobURL,
		Jobs:       testJobs(),
		MaxWorkers: 2,
	})
	require.NoError(t, err)

	result := c.Collect(context.Background())

	assert.Equal(t, 4, result.Attempted)
	assert.Equal(t, 3, result.Yielded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0], "batter-props/hits")

	require.Len(t, result.Records, 3)
	assert.Equal(t, "home-runs", result.Records[0].Player)
	assert.Equal(t, "strikeouts-thrown", result.Records[1].Player)
}

func TestCollectEmptyPages(t *testing.T) {
	fetch := fetcherFunc(func(context.Context, string) (string, error) {
		return "", interfaces.ErrEmptyPage
	})

	c, err := NewCollector(Options{
		Fetcher:  fetch,
		Parser:   parserFunc(onePerJob),
		BuildURL: jobURL,
		Jobs:     testJobs(),
	})
	require.NoError(t, err)

	result := c.Collect(context.Background())

	require.NotNil(t, result)
	assert.Equal(t, 4, result.Attempted)
	assert.Equal(t, 4, result.Empty)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, result.Records)
	assert.False(t, result.FinishedAt.Before(result.StartedAt))
}

func TestCollectParallelBounded(t *testing.T) {
	var active, peak atomic.Int32

	fetch := fetcherFunc(func(context.Context, string) (string, error) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		active.Add(-1)
		return "ok", nil
	})

	jobs := make([]models.FetchJob, 8)
	for i := range jobs {
		jobs[i] = models.FetchJob{Category: "batter-props", Subcategory: fmt.Sprintf("market-%d", i)}
	}

	c, err := NewCollector(Options{
		Fetcher:    fetch,
		Parser:     parserFunc(onePerJob),
		BuildURL:   jobURL,
		Jobs:       jobs,
		MaxWorkers: 2,
	})
	require.NoError(t, err)

	result := c.Collect(context.Background())

	assert.Equal(t, 8, result.Yielded)
	assert.LessOrEqual(t, peak.Load(), int32(2), "worker pool must bound concurrent fetches")
}

func TestCollectPassDeadline(t *testing.T) {
	fetch := fetcherFunc(func(ctx context.Context, pageURL string) (string, error) {
		select {
		case <-ctx.Done():
			return "", &interfaces.FetchError{URL: pageURL, Kind: interfaces.FaultTimeout, Err: ctx.Err()}
		case <-time.After(5 * time.Second):
			return "ok", nil
		}
	})

	c, err := NewCollector(Options{
		Fetcher:     fetch,
		Parser:      parserFunc(onePerJob),
		BuildURL:    jobURL,
		Jobs:        testJobs(),
		MaxWorkers:  4,
		PassTimeout: 50 * time.Millisecond,
	})
	require.NoError(t, err)

	done := make(chan *models.RunResult, 1)
	go func() { done <- c.Collect(context.Background()) }()

	select {
	case result := <-done:
		assert.Equal(t, 4, result.Attempted)
		assert.Equal(t, 4, result.Failed)
		assert.Empty(t, result.Records)
	case <-time.After(2 * time.Second):
		t.Fatal("Collect did not return after the pass deadline")
	}
}

// marketFixture is a minimal rendered page with one game and one player row.
const marketFixture = `<html><body>
<div class="sportsbook-event-accordion__wrapper">
  <div class="sportsbook-event-accordion__title-wrapper">
    <div class="sportsbook-event-accordion__title">NY YankeesatBOS Red Sox</div>
    <div class="sportsbook-event-accordion__date">Today 7:05PM</div>
    <div class="sportsbook-event-accordion__chevron"></div>
  </div>
  <table>
    <tr><th>Player</th><th>Over</th><th>Under</th></tr>
    <tr><th>Aaron Judge</th><td>O 0.5+145</td><td>U 0.5−190</td></tr>
  </table>
</div>
</body></html>`

func TestCollectWithSiteParser(t *testing.T) {
	base := "https://sportsbook.draftkings.com/leagues/baseball/mlb"

	fetch := fetcherFunc(func(_ context.Context, pageURL string) (string, error) {
		if strings.Contains(pageURL, "sub_category=hits") {
			return marketFixture, nil
		}
		return "", interfaces.ErrEmptyPage
	})

	c, err := NewCollector(Options{
		Fetcher: fetch,
		Parser:  draftkings.NewOddsParser(),
		BuildURL: func(j models.FetchJob) string {
			return draftkings.BuildURL(base, j.Category, j.Subcategory)
		},
		Jobs: []models.FetchJob{
			{Category: "batter-props", Subcategory: "hits"},
			{Category: "batter-props", Subcategory: "home-runs"},
		},
	})
	require.NoError(t, err)

	result := c.Collect(context.Background())

	assert.Equal(t, 2, result.Attempted)
	assert.Equal(t, 1, result.Yielded)
	assert.Equal(t, 1, result.Empty)
	assert.Equal(t, 0, result.Failed)

	require.Len(t, result.Records, 2)
	for _, rec := range result.Records {
		assert.Equal(t, "Aaron Judge", rec.Player)
		assert.Equal(t, "hits", rec.Subcategory)
		assert.Equal(t, "BOS Red Sox", rec.HomeTeam)
		assert.Equal(t, "NY Yankees", rec.AwayTeam)
	}
	assert.Equal(t, models.SideOver, result.Records[0].Side)
	assert.Equal(t, models.SideUnder, result.Records[1].Side)
	assert.Equal(t, 145, result.Records[0].Price)
	assert.Equal(t, -190, result.Records[1].Price)
}
