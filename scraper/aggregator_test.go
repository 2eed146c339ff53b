package scraper

import (
	"testing"

	"github.com/aluiziolira/go-scrape-products/models"
)

func named(names ...string) []*models.Product {
	out := make([]*models.Product, 0, len(names))
	for _, name := range names {
		out = append(out, &models.Product{Name: name, Platform: "淘宝"})
	}
	return out
}

func TestAggregatorInOrder(t *testing.T) {
	agg := newAggregator()
	agg.add(1, named("a", "b"))
	agg.add(2, named("c"))

	if got := len(agg.products); got != 3 {
		t.Fatalf("records = %d, want 3", got)
	}
	for i, want := range []string{"a", "b", "c"} {
		if agg.products[i].Name != want {
			t.Fatalf("record %d = %q, want %q", i, agg.products[i].Name, want)
		}
	}
}

func TestAggregatorBuffersOutOfOrder(t *testing.T) {
	agg := newAggregator()

	agg.add(3, named("e"))
	agg.add(2, named("c", "d"))
	if len(agg.products) != 0 {
		t.Fatalf("records released before page 1 arrived: %d", len(agg.products))
	}

	agg.add(1, named("a", "b"))
	if got := len(agg.products); got != 5 {
		t.Fatalf("records = %d, want 5", got)
	}
	for i, want := range []string{"a", "b", "c", "d", "e"} {
		if agg.products[i].Name != want {
			t.Fatalf("record %d = %q, want %q", i, agg.products[i].Name, want)
		}
	}
}

func TestAggregatorFailedPageReleasesSuccessors(t *testing.T) {
	agg := newAggregator()

	agg.add(2, named("b"))
	agg.add(1, nil) // failed page still occupies its slot
	if got := len(agg.products); got != 1 || agg.products[0].Name != "b" {
		t.Fatalf("records = %v, want [b]", agg.products)
	}
}
