package scraper

import "github.com/aluiziolira/go-scrape-products/models"

// aggregator accumulates parsed records in fetch order: page ascending,
// within-page fragment order ascending. Pages may complete out of order
// under the worker pool, so results are buffered until every earlier
// page has been released. Append-only; no dedup, no sorting.
//
// Each crawl invocation owns exactly one aggregator; callers serialize
// access themselves.
type aggregator struct {
	next     int
	pending  map[int][]*models.Product
	products []*models.Product
}

func newAggregator() *aggregator {
	return &aggregator{
		next:    1,
		pending: make(map[int][]*models.Product),
	}
}

// add records one page's products. Every requested page must be added
// exactly once, including failed and empty pages (with nil items), so
// that later pages can be released in order.
func (a *aggregator) add(page int, items []*models.Product) {
	a.pending[page] = items
	for {
		ready, ok := a.pending[a.next]
		if !ok {
			return
		}
		delete(a.pending, a.next)
		a.products = append(a.products, ready...)
		a.next++
	}
}
