// Package catalog resolves raw product identifiers against the catalog
// store: single-field interactive lookups and the fixed-priority cascade
// used by bulk analysis.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"claritax/internal/domain"
	"claritax/internal/port"
	"claritax/internal/taxengine"
)

// MaxSummaries caps disambiguation lists.
const MaxSummaries = 50

// Resolver answers product queries against an injected catalog source.
// It holds no state beyond the repository handle and is safe for
// concurrent use.
type Resolver struct {
	repo port.CatalogRepository
}

// NewResolver creates a Resolver backed by the given catalog repository.
func NewResolver(repo port.CatalogRepository) *Resolver {
	return &Resolver{repo: repo}
}

// SearchSummaries returns up to MaxSummaries matches in catalog relevance
// order; callers wanting alphabetical display must re-sort themselves.
// Name mode tokenizes on whitespace and requires every token to match the
// product name independently; a blank query yields an empty result, never
// "match everything". Tariff mode is a substring match on the code.
func (r *Resolver) SearchSummaries(ctx context.Context, query string, mode domain.SearchMode) ([]domain.ProductSummary, error) {
	switch mode {
	case domain.SearchByName:
		tokens := strings.Fields(query)
		if len(tokens) == 0 {
			return []domain.ProductSummary{}, nil
		}
		return r.repo.SearchByName(ctx, tokens, MaxSummaries)
	case domain.SearchByTariff:
		code := strings.TrimSpace(query)
		if code == "" {
			return []domain.ProductSummary{}, nil
		}
		return r.repo.SearchByTariff(ctx, code, MaxSummaries)
	default:
		return nil, domain.ErrInvalidSearchMode
	}
}

// GetDetailsByID loads the base record plus its tax rows. A missing
// record returns (nil, nil): not found is a normal outcome here.
func (r *Resolver) GetDetailsByID(ctx context.Context, id int64) (*domain.ProductRecord, error) {
	product, err := r.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolver.GetDetailsByID: %w", err)
	}
	return r.attachTaxRows(ctx, product)
}

// GetDetailsByBarcode loads the base record plus its tax rows by exact
// barcode. A missing record returns (nil, nil).
func (r *Resolver) GetDetailsByBarcode(ctx context.Context, barcode string) (*domain.ProductRecord, error) {
	product, err := r.repo.GetByBarcode(ctx, barcode)
	if err != nil {
		return nil, fmt.Errorf("resolver.GetDetailsByBarcode: %w", err)
	}
	return r.attachTaxRows(ctx, product)
}

// FindSingle resolves one query to a full record. Barcode mode delegates
// to the exact lookup. Name mode takes the first summary in catalog order,
// not alphabetical order; callers needing a deterministic pick must sort
// the summaries themselves before choosing.
func (r *Resolver) FindSingle(ctx context.Context, query string, mode domain.LookupMode) (*domain.ProductRecord, error) {
	switch mode {
	case domain.LookupByBarcode:
		return r.GetDetailsByBarcode(ctx, strings.TrimSpace(query))
	case domain.LookupByName:
		summaries, err := r.SearchSummaries(ctx, query, domain.SearchByName)
		if err != nil {
			return nil, err
		}
		if len(summaries) == 0 {
			return nil, nil
		}
		return r.GetDetailsByID(ctx, summaries[0].ID)
	default:
		return nil, domain.ErrInvalidLookupMode
	}
}

// attachTaxRows fetches the zero-or-one raw tax row per type and maps each
// into a normalized TaxDetail. Each fetch is independently optional.
func (r *Resolver) attachTaxRows(ctx context.Context, product *domain.ProductRecord) (*domain.ProductRecord, error) {
	if product == nil {
		return nil, nil
	}
	for _, t := range domain.TaxTypes {
		row, err := r.repo.GetTaxRow(ctx, product.ID, t)
		if err != nil {
			return nil, fmt.Errorf("resolver: tax row %s for product %d: %w", t, product.ID, err)
		}
		if row == nil {
			continue
		}
		product.TaxDetails = append(product.TaxDetails, taxengine.MapTaxRow(t, row))
	}
	return product, nil
}
