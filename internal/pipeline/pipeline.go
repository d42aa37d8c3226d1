package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ppiankov/lifespan/internal/cache"
	"github.com/ppiankov/lifespan/internal/extract"
	"github.com/ppiankov/lifespan/internal/logger"
	"github.com/ppiankov/lifespan/internal/model"
	"github.com/ppiankov/lifespan/internal/normalize"
	"github.com/ppiankov/lifespan/internal/ratelimit"
	"github.com/ppiankov/lifespan/internal/util"
)

// Pipeline orchestrates fetch, extraction and normalization for one page
type Pipeline struct {
	fetcher   *Fetcher
	pages     *cache.PageCache
	overrides *normalize.OverrideSet
	filter    normalize.Filter
	log       *logger.Logger
	config    *model.Config
	now       func() time.Time
}

// NewPipeline creates a pipeline from configuration and a loaded override set
func NewPipeline(cfg *model.Config, overrides *normalize.OverrideSet, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Discard()
	}

	fetcher := NewFetcher(
		cfg.HTTP.Timeout,
		cfg.HTTP.UserAgent,
		cfg.HTTP.MaxBodyBytes,
		cfg.HTTP.InsecureTLS,
		cfg.HTTP.HTTPProxy,
		cfg.HTTP.HTTPSProxy,
		cfg.HTTP.NoProxy,
	).WithLimiter(ratelimit.New(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize))

	if cfg.Robots.Respect {
		fetcher.WithRobots(util.NewRobotsChecker(fetcher.Client(), cfg.HTTP.UserAgent))
	}

	var pages *cache.PageCache
	if cfg.Cache.Enabled {
		pages = cache.NewPageCache(cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL), 0)
	}

	return &Pipeline{
		fetcher:   fetcher,
		pages:     pages,
		overrides: overrides,
		filter:    normalize.DefaultFilter(overrides),
		log:       log,
		config:    cfg,
		now:       time.Now,
	}
}

// RunOptions tune a single run
type RunOptions struct {
	Refresh bool // Invalidate the cached page before fetching
}

// Run fetches the configured page and builds the final table.
// Page-level failures (fetch, missing table) abort with no partial report.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*model.Report, error) {
	src := p.config.Source

	page, fromCache, err := p.FetchPage(ctx, src.URL, opts.Refresh)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	report, err := p.Process(page.HTML)
	if err != nil {
		return nil, err
	}

	report.SourceURL = page.FinalURL
	report.FetchMeta = page.Meta
	report.FromCache = fromCache
	if report.Subject == "" {
		report.Subject = page.Subject
	}

	return report, nil
}

// FetchPage returns the page for locator, from cache when possible
func (p *Pipeline) FetchPage(ctx context.Context, locator string, refresh bool) (*FetchResult, bool, error) {
	if refresh {
		if err := p.pages.Invalidate(locator); err != nil {
			p.log.Warn("cache invalidate failed", "url", locator, "err", err)
		}
	}

	if data, found := p.pages.Get(locator); found {
		var page FetchResult
		if err := json.Unmarshal(data, &page); err == nil {
			p.log.Debug("page served from cache", "url", locator)
			return &page, true, nil
		}
		p.log.Warn("discarding unreadable cache entry", "url", locator)
		_ = p.pages.Invalidate(locator)
	}

	p.log.Info("fetching page", "url", locator)
	page, err := p.fetcher.FetchWithRetry(ctx, locator)
	if err != nil {
		return nil, false, err
	}

	if p.pages.Enabled() {
		data, err := json.Marshal(page)
		if err == nil {
			err = p.pages.Put(locator, data)
		}
		if err != nil {
			p.log.Warn("cache store failed", "url", locator, "err", err)
		}
	}

	return page, false, nil
}

// Process extracts and normalizes the table from already-fetched HTML
func (p *Pipeline) Process(htmlContent string) (*model.Report, error) {
	src := p.config.Source

	table, err := extract.ExtractTable(htmlContent, src.Selector)
	if err != nil {
		return nil, fmt.Errorf("extract table: %w", err)
	}

	rows, err := table.Column(src.Column, src.ColumnIndex)
	if err != nil {
		return nil, fmt.Errorf("extract table: %w", err)
	}

	filtered, removed := extract.FilterRows(rows, src.HeaderLabel)
	p.log.Debug("rows extracted", "rows", len(rows), "filtered", removed)

	batch := normalize.Run(filtered, p.overrides, p.filter)
	for _, d := range batch.Drops {
		p.log.Warn("row dropped", "row", d.Row, "stage", d.Stage, "text", d.Text, "err", d.Err)
	}

	report := &model.Report{
		Subject:     src.Subject,
		SourceURL:   src.URL,
		FetchedAt:   p.now().UTC(),
		RowsScraped: len(rows),
		Records:     batch.Records,
		Drops:       batch.Drops,
	}
	if p.overrides != nil {
		report.OverrideSet = p.overrides.ID()
	}

	p.log.Info("table built", "records", len(report.Records), "dropped", report.DropCount())
	return report, nil
}

// ClearCache drops every cached page
func (p *Pipeline) ClearCache() error {
	return p.pages.Clear()
}

// InvalidatePage drops the cached copy of one page
func (p *Pipeline) InvalidatePage(locator string) error {
	return p.pages.Invalidate(locator)
}
