// Package batch drives cascade resolution and tax computation over the
// line items of a parsed trade document.
package batch

import (
	"context"
	"log"

	"claritax/internal/catalog"
	"claritax/internal/domain"
	"claritax/internal/taxengine"
)

// ProgressFunc receives the 1-based count of processed items and the fixed
// total. It fires once per item, found or not, in input order.
type ProgressFunc func(current, total int)

// Analyzer resolves and computes taxes for document line items.
type Analyzer struct {
	resolver *catalog.Resolver
	calc     *taxengine.Calculator
}

// NewAnalyzer creates an Analyzer over the given resolver and calculator.
func NewAnalyzer(resolver *catalog.Resolver, calc *taxengine.Calculator) *Analyzer {
	return &Analyzer{resolver: resolver, calc: calc}
}

// Analyze processes items strictly sequentially, mutating each in place.
// Sequential processing bounds load on the catalog source and keeps
// progress monotonic. A failed item is marked not_found and the batch
// continues; one bad line never aborts the run. onProgress may be nil.
func (a *Analyzer) Analyze(ctx context.Context, items []domain.LineItem, onProgress ProgressFunc) []domain.LineItem {
	total := len(items)
	for i := range items {
		a.analyzeItem(ctx, &items[i])
		if onProgress != nil {
			onProgress(i+1, total)
		}
	}
	return items
}

func (a *Analyzer) analyzeItem(ctx context.Context, item *domain.LineItem) {
	item.Status = domain.StatusSearching

	match, err := a.resolver.ResolveCascade(ctx, item.Barcode, item.TariffCode, item.Description)
	if err != nil {
		log.Printf("batch: item %q resolution failed: %v", item.InternalCode, err)
		item.Status = domain.StatusNotFound
		item.Source = domain.MatchSourceNone
		return
	}
	if match.Product == nil {
		item.Status = domain.StatusNotFound
		item.Source = domain.MatchSourceNone
		return
	}

	// The document's stated price governs; the catalog price is irrelevant
	// for a specific document line. Computed on a copy so the resolved
	// record itself is untouched.
	resolved := *match.Product
	price := item.UnitPrice
	resolved.UnitPrice = &price

	breakdown := a.calc.Compute(&resolved, false)

	item.Status = domain.StatusFound
	item.Source = match.Source
	item.Product = &resolved
	item.Breakdown = &breakdown
}
