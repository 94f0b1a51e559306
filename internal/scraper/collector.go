package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Chinedu-E/mlb-odds/internal/pkg/categories"
	"github.com/Chinedu-E/mlb-odds/internal/pkg/interfaces"
	"github.com/Chinedu-E/mlb-odds/internal/pkg/models"
)

// PlanJobs expands categories into one fetch job per subcategory. Jobs keep
// registry order, which fixes the order results merge in.
func PlanJobs(cats []categories.Category) ([]models.FetchJob, error) {
	var jobs []models.FetchJob
	for _, cat := range cats {
		subs, err := categories.Subcategories(cat)
		if err != nil {
			return nil, err
		}
		for _, sub := range subs {
			jobs = append(jobs, models.FetchJob{Category: string(cat), Subcategory: sub})
		}
	}
	return jobs, nil
}

type Options struct {
	Fetcher  interfaces.Fetcher
	Parser   interfaces.RecordParser
	BuildURL func(models.FetchJob) string
	Jobs     []models.FetchJob

	// Sequential runs jobs one at a time instead of through the worker
	// pool. Both modes produce identical results.
	Sequential  bool
	MaxWorkers  int
	PassTimeout time.Duration // 0 = unbounded
}

// Collector runs one collection pass over a fixed set of jobs. A pass never
// fails as a whole: each job's outcome is accounted for separately.
type Collector struct {
	opts Options
}

func NewCollector(opts Options) (*Collector, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("collector: fetcher is required")
	}
	if opts.Parser == nil {
		return nil, errors.New("collector: parser is required")
	}
	if opts.BuildURL == nil {
		return nil, errors.New("collector: url builder is required")
	}
	if opts.MaxWorkers < 1 {
		opts.MaxWorkers = 1
	}
	return &Collector{opts: opts}, nil
}

type jobOutcome struct {
	idx     int
	records []models.OddsRecord
	err     error
}

// Collect fetches and parses every job, then merges the outcomes in job
// order so parallel and sequential passes yield the same record sequence.
func (c *Collector) Collect(ctx context.Context) *models.RunResult {
	if c.opts.PassTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.PassTimeout)
		defer cancel()
	}

	result := &models.RunResult{
		StartedAt: time.Now(),
		Attempted: len(c.opts.Jobs),
	}

	outcomes := make([]jobOutcome, len(c.opts.Jobs))
	if c.opts.Sequential {
		c.collectSequential(ctx, outcomes)
	} else {
		c.collectParallel(ctx, outcomes)
	}

	for i, oc := range outcomes {
		job := c.opts.Jobs[i]
		switch {
		case oc.err != nil:
			result.Failed++
			result.Failures = append(result.Failures, fmt.Sprintf("%s/%s: %v", job.Category, job.Subcategory, oc.err))
		case len(oc.records) == 0:
			result.Empty++
		default:
			result.Yielded++
			result.Records = append(result.Records, oc.records...)
		}
	}
	result.FinishedAt = time.Now()

	slog.Info("Collection pass finished",
		"records", len(result.Records),
		"attempted", result.Attempted,
		"yielded", result.Yielded,
		"empty", result.Empty,
		"failed", result.Failed,
		"duration", result.Duration().Round(time.Millisecond))

	return result
}

func (c *Collector) collectSequential(ctx context.Context, outcomes []jobOutcome) {
	for i, job := range c.opts.Jobs {
		outcomes[i] = c.runJob(ctx, i, job)
	}
}

func (c *Collector) collectParallel(ctx context.Context, outcomes []jobOutcome) {
	results := make(chan jobOutcome, len(c.opts.Jobs))
	var wg sync.WaitGroup
	sem := make(chan struct{}, c.opts.MaxWorkers)

	for i, job := range c.opts.Jobs {
		sem <- struct{}{}
		wg.Add(1)
		go func(idx int, job models.FetchJob) {
			defer wg.Done()
			defer func() { <-sem }()
			results <- c.runJob(ctx, idx, job)
		}(i, job)
	}

	go func() { wg.Wait(); close(results) }()

	for res := range results {
		outcomes[res.idx] = res
	}
}

func (c *Collector) runJob(ctx context.Context, idx int, job models.FetchJob) jobOutcome {
	pageURL := c.opts.BuildURL(job)

	html, err := c.opts.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		if errors.Is(err, interfaces.ErrEmptyPage) {
			slog.Info("No events found", "category", job.Category, "subcategory", job.Subcategory)
			return jobOutcome{idx: idx}
		}
		slog.Error("Market fetch failed", "category", job.Category, "subcategory", job.Subcategory, "error", err)
		return jobOutcome{idx: idx, err: err}
	}

	records := c.opts.Parser.Parse(html, job)
	slog.Debug("Processed market page",
		"category", job.Category, "subcategory", job.Subcategory, "records", len(records))
	return jobOutcome{idx: idx, records: records}
}
