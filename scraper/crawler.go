// Package scraper implements the crawl pipeline: paced page fetches,
// per-platform extraction, and ordered aggregation of the results.
package scraper

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/aluiziolira/go-scrape-products/models"
	"github.com/aluiziolira/go-scrape-products/platforms"
)

// Crawler drives the fetch→extract loop for one keyword across a fixed
// page range. The loop always runs exactly cfg.Pages iterations: there
// is no "no more results" detection, so pages past catalog exhaustion
// are still fetched and simply yield zero fragments.
type Crawler struct {
	cfg      *config.Config
	platform platforms.Platform
	fetcher  *Fetcher
	limiter  Limiter
	hosts    *hostLimiter
	Metrics  *Metrics
}

// NewCrawler builds a crawler instance configured from cfg.
func NewCrawler(cfg *config.Config) (*Crawler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	platform, err := platforms.Lookup(cfg.Platform)
	if err != nil {
		return nil, err
	}

	metrics := NewMetrics()
	c := &Crawler{
		cfg:      cfg,
		platform: platform,
		fetcher:  NewFetcher(cfg, metrics),
		limiter:  NewRandomDelayLimiter(cfg.MinDelay, cfg.MaxDelay),
		Metrics:  metrics,
	}

	if cfg.Parallelism > 1 {
		hosts, err := newHostLimiter(cfg.MinDelay, 64)
		if err != nil {
			return nil, err
		}
		c.hosts = hosts
	}
	return c, nil
}

// Crawl executes one crawl request. Page fetch failures and item parse
// failures are logged and counted, never propagated: the returned result
// holds whatever subset of records could be validated. Only request
// construction problems surface as errors from NewCrawler; Crawl itself
// always terminates normally.
func (c *Crawler) Crawl(ctx context.Context) (*models.CrawlResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	result := &models.CrawlResult{
		StartTime:      time.Now(),
		PagesRequested: c.cfg.Pages,
		ErrorsByType:   make(map[string]int),
	}
	agg := newAggregator()

	if c.cfg.Parallelism > 1 {
		c.runPool(ctx, agg, result)
	} else {
		c.runSequential(ctx, agg, result)
	}

	result.Products = agg.products
	result.EndTime = time.Now()
	slog.Info("crawl finished",
		slog.String("platform", c.platform.Name()),
		slog.String("keyword", c.cfg.Keyword),
		slog.Int("pages_requested", result.PagesRequested),
		slog.Int("pages_fetched", result.PagesFetched),
		slog.Int("records", len(result.Products)),
		slog.Int("item_errors", result.ItemErrors),
	)
	return result, nil
}

func (c *Crawler) runSequential(ctx context.Context, agg *aggregator, result *models.CrawlResult) {
	var mu sync.Mutex
	for page := 1; page <= c.cfg.Pages; page++ {
		// Pace between iterations, never before the first fetch.
		if page > 1 {
			if err := c.limiter.Wait(ctx); err != nil {
				slog.Warn("crawl canceled", slog.Int("next_page", page))
				return
			}
		}
		if ctx.Err() != nil {
			slog.Warn("crawl canceled", slog.Int("next_page", page))
			return
		}
		c.crawlPage(ctx, page, agg, result, &mu)
	}
}

// runPool fetches pages with a bounded worker pool. Workers complete
// pages out of order; the aggregator buffers results and releases them
// in ascending page order, so export order matches the sequential path.
func (c *Crawler) runPool(ctx context.Context, agg *aggregator, result *models.CrawlResult) {
	workers := c.cfg.Parallelism
	if workers > c.cfg.Pages {
		workers = c.cfg.Pages
	}
	if workers <= 0 {
		return
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	pages := make(chan int)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for page := range pages {
				c.crawlPage(ctx, page, agg, result, &mu)
			}
		}()
	}

	for page := 1; page <= c.cfg.Pages; page++ {
		if ctx.Err() != nil {
			slog.Warn("crawl canceled", slog.Int("next_page", page))
			break
		}
		pages <- page
	}
	close(pages)
	wg.Wait()
}

// crawlPage performs one fetch→extract iteration. A network failure is
// recorded at page granularity and the page slot is still released so
// later pages keep flowing in order.
func (c *Crawler) crawlPage(ctx context.Context, page int, agg *aggregator, result *models.CrawlResult, mu *sync.Mutex) {
	pageURL := c.platform.SearchURL(c.cfg.Keyword, page)

	if c.hosts != nil {
		if err := c.hosts.Wait(ctx, pageURL); err != nil {
			mu.Lock()
			agg.add(page, nil)
			mu.Unlock()
			return
		}
	}

	body, err := c.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		label := errorTypeLabel(err)
		slog.Error("page fetch failed",
			slog.Int("page", page),
			slog.String("url", pageURL),
			slog.String("category", label),
			slog.Any("error", &NetworkError{Page: page, URL: pageURL, Err: err}),
		)
		c.Metrics.IncPage("failed")
		c.Metrics.IncPageError(label)

		mu.Lock()
		result.PageErrors++
		result.FailedPages = append(result.FailedPages, page)
		result.ErrorsByType[label]++
		agg.add(page, nil)
		mu.Unlock()
		return
	}

	products, seen, dropped := c.extract(body)
	c.Metrics.IncPage("fetched")
	slog.Debug("page extracted",
		slog.Int("page", page),
		slog.Int("fragments", seen),
		slog.Int("records", len(products)),
		slog.Int("dropped", dropped),
	)

	mu.Lock()
	result.PagesFetched++
	result.ItemsSeen += seen
	result.ItemsParsed += len(products)
	result.ItemErrors += dropped
	agg.add(page, products)
	mu.Unlock()
}

// extract locates item fragments on one page and parses each fragment
// independently: a bad item never aborts the page. Markup without the
// expected structural markers yields zero fragments, not an error.
func (c *Crawler) extract(body []byte) (products []*models.Product, seen, dropped int) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		slog.Debug("unparseable markup treated as empty page", slog.Any("error", err))
		return nil, 0, 0
	}

	doc.Find(c.platform.ItemSelector()).Each(func(i int, s *goquery.Selection) {
		seen++
		product, err := c.platform.ParseItem(s)
		if err != nil {
			dropped++
			c.Metrics.IncItemError()
			slog.Debug("item fragment dropped", slog.Int("index", i), slog.Any("error", err))
			return
		}
		c.Metrics.IncItems()
		products = append(products, product)
	})
	return products, seen, dropped
}
