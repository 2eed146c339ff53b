package platforms

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-scrape-products/models"
)

// Taobao extracts records from Taobao search-result pages.
type Taobao struct{}

// Name returns the tag stamped on every Taobao record.
func (Taobao) Name() string { return "淘宝" }

// SearchURL builds the Taobao search endpoint for a keyword and page.
func (Taobao) SearchURL(keyword string, page int) string {
	return fmt.Sprintf("https://s.taobao.com/search?q=%s&page=%d", url.QueryEscape(keyword), page)
}

// ItemSelector locates item fragments on a result page.
func (Taobao) ItemSelector() string { return ".item" }

// ParseItem converts one fragment into a record. Name, sales, and shop
// fall back to defaults when their elements are missing; the price is
// required and invalidates the fragment when absent or non-numeric.
func (p Taobao) ParseItem(s *goquery.Selection) (*models.Product, error) {
	price, err := parsePrice(p.normalizePrice(firstText(s, ".price")))
	if err != nil {
		return nil, &ItemParseError{Platform: p.Name(), Field: "price", Err: err}
	}

	sales := firstText(s, ".sales")
	if sales == "" {
		sales = "0"
	}

	href, _ := s.Find("a").First().Attr("href")

	return &models.Product{
		Name:     firstText(s, ".title"),
		Price:    price,
		Sales:    sales,
		Shop:     firstText(s, ".shop"),
		URL:      strings.TrimSpace(href),
		Platform: p.Name(),
	}, nil
}

// normalizePrice strips the currency symbol before the numeric parse.
func (Taobao) normalizePrice(raw string) string {
	raw = strings.ReplaceAll(raw, "¥", "")
	raw = strings.ReplaceAll(raw, "￥", "")
	return strings.TrimSpace(raw)
}
