package platforms

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-scrape-products/models"
)

// JD extracts records from JD search-result pages.
type JD struct{}

// Name returns the tag stamped on every JD record.
func (JD) Name() string { return "京东" }

// SearchURL builds the JD search endpoint for a keyword and page.
func (JD) SearchURL(keyword string, page int) string {
	return fmt.Sprintf("https://search.jd.com/Search?keyword=%s&page=%d", url.QueryEscape(keyword), page)
}

// ItemSelector locates item fragments on a result page.
func (JD) ItemSelector() string { return ".gl-item" }

// ParseItem converts one fragment into a record. JD result pages carry no
// per-item sales figure, so sales is fixed to "0". Item links are
// protocol-relative and get completed with https.
func (p JD) ParseItem(s *goquery.Selection) (*models.Product, error) {
	price, err := parsePrice(p.normalizePrice(firstText(s, ".p-price")))
	if err != nil {
		return nil, &ItemParseError{Platform: p.Name(), Field: "price", Err: err}
	}

	href, _ := s.Find("a").First().Attr("href")

	return &models.Product{
		Name:     firstText(s, ".p-name"),
		Price:    price,
		Sales:    "0",
		Shop:     firstText(s, ".p-shop"),
		URL:      completeLink(strings.TrimSpace(href)),
		Platform: p.Name(),
	}, nil
}

// normalizePrice strips the currency symbol before the numeric parse.
func (JD) normalizePrice(raw string) string {
	raw = strings.ReplaceAll(raw, "¥", "")
	raw = strings.ReplaceAll(raw, "￥", "")
	return strings.TrimSpace(raw)
}

// completeLink turns a protocol-relative link into an absolute https one.
func completeLink(href string) string {
	if strings.HasPrefix(href, "//") {
		return "https:" + href
	}
	return href
}
