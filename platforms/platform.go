// Package platforms implements per-site extraction of product records
// from search-result markup. Each supported site supplies its own
// structural-query set and normalization rules.
package platforms

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aluiziolira/go-scrape-products/models"
)

// Platform describes one supported upstream source. SearchURL builds the
// endpoint for a keyword and 1-based page index, ItemSelector locates
// candidate item fragments on a fetched page, and ParseItem converts one
// fragment into a record or an *ItemParseError.
type Platform interface {
	Name() string
	SearchURL(keyword string, page int) string
	ItemSelector() string
	ParseItem(s *goquery.Selection) (*models.Product, error)
}

// ItemParseError reports a fragment whose required field could not be
// extracted. The fragment is dropped; other fragments on the same page
// are unaffected.
type ItemParseError struct {
	Platform string
	Field    string
	Err      error
}

func (e *ItemParseError) Error() string {
	return fmt.Sprintf("%s: parse item field %s: %v", e.Platform, e.Field, e.Err)
}

func (e *ItemParseError) Unwrap() error {
	return e.Err
}

var registry = map[string]Platform{
	"taobao": Taobao{},
	"jd":     JD{},
}

// Lookup resolves a platform by its registry key.
func Lookup(name string) (Platform, error) {
	platform, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown platform %q (supported: %s)", name, strings.Join(Names(), ", "))
	}
	return platform, nil
}

// Names lists the supported platform keys in stable order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// firstText returns the trimmed text of the first element matching the
// selector, or the empty string when no element matches. Non-critical
// fields degrade to empty values this way instead of failing the item.
func firstText(s *goquery.Selection, selector string) string {
	return strings.TrimSpace(s.Find(selector).First().Text())
}

// parsePrice converts normalized price text into a non-negative decimal.
// Unlike the other fields, a missing or unparsable price invalidates the
// whole fragment: the consuming use case cannot tolerate unpriced records.
func parsePrice(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("price text is empty")
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("price %q is not numeric", raw)
	}
	if price < 0 {
		return 0, fmt.Errorf("price %q is negative", raw)
	}
	return price, nil
}
