// Package models defines data structures for the crawler.
package models

import "time"

// Product represents one extracted search-result item. Records are
// immutable once constructed; a record is only created when its price
// parsed successfully.
type Product struct {
	Name     string  `csv:"name" json:"name"`
	Price    float64 `csv:"price" json:"price"`
	Sales    string  `csv:"sales" json:"sales"`
	Shop     string  `csv:"shop" json:"shop"`
	URL      string  `csv:"url" json:"url"`
	Platform string  `csv:"platform" json:"platform"`
}

// CrawlResult holds the overall result of one crawl run.
type CrawlResult struct {
	Products       []*Product
	StartTime      time.Time
	EndTime        time.Time
	PagesRequested int
	PagesFetched   int
	PageErrors     int
	FailedPages    []int
	ItemsSeen      int
	ItemsParsed    int
	ItemErrors     int
	ErrorsByType   map[string]int
}
