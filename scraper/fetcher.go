package scraper

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/aluiziolira/go-scrape-products/config"
	"github.com/gocolly/colly/v2"
)

// colly.Context keys used to thread per-request state through callbacks.
const (
	captureKey = "capture"
	cancelKey  = "cancel"
	startKey   = "start"
)

type capture struct {
	body   []byte
	status int
}

// Fetcher retrieves single search pages over one persistent collector,
// reusing connections across pages and presenting a fixed browser
// identity header set. It never retries: retry policy belongs to the
// caller.
type Fetcher struct {
	collector *colly.Collector
	metrics   *Metrics
}

// NewFetcher builds a synchronous collector configured from cfg.
func NewFetcher(cfg *config.Config, metrics *Metrics) *Fetcher {
	collector := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
	)
	collector.SetRequestTimeout(cfg.Timeout)
	collector.IgnoreRobotsTxt = true
	collector.AllowURLRevisit = true
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	f := &Fetcher{collector: collector, metrics: metrics}

	collector.OnRequest(func(r *colly.Request) {
		if ctx, ok := r.Ctx.GetAny(cancelKey).(context.Context); ok && ctx.Err() != nil {
			r.Abort()
			return
		}
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")
		r.Ctx.Put(startKey, time.Now())
	})

	collector.OnResponse(func(r *colly.Response) {
		if captured, ok := r.Ctx.GetAny(captureKey).(*capture); ok {
			captured.body = r.Body
			captured.status = r.StatusCode
		}
		if start, ok := r.Ctx.GetAny(startKey).(time.Time); ok {
			f.metrics.ObserveFetchDuration(time.Since(start))
		}
	})

	collector.OnError(func(r *colly.Response, err error) {
		if r == nil {
			return
		}
		if captured, ok := r.Ctx.GetAny(captureKey).(*capture); ok {
			captured.status = r.StatusCode
		}
	})

	return f
}

// Fetch issues one GET for url and returns the raw HTML body. Failures
// come back classified (timeout, connection, HTTP status families) for
// the caller to label. Cancellation is honored before the request is
// issued; an in-flight request is bounded by the configured timeout.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	captured := &capture{}
	reqCtx := colly.NewContext()
	reqCtx.Put(captureKey, captured)
	reqCtx.Put(cancelKey, ctx)

	if err := f.collector.Request(http.MethodGet, url, nil, reqCtx, nil); err != nil {
		return nil, classifyError(err, captured.status)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return captured.body, nil
}
