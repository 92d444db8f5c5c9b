package service

import (
	"context"
	"sort"

	"claritax/internal/catalog"
	"claritax/internal/domain"
	"claritax/internal/insight"
	"claritax/internal/port"
	"claritax/internal/taxengine"
)

// ProductTaxProfile bundles a resolved product with its computed breakdown
// and explanatory text.
type ProductTaxProfile struct {
	Product   *domain.ProductRecord `json:"product"`
	Breakdown domain.TaxBreakdown   `json:"breakdown"`
	Insight   string                `json:"insight"`
}

// LookupStatus is the outcome class of a single-field lookup.
type LookupStatus string

const (
	LookupFound     LookupStatus = "found"
	LookupAmbiguous LookupStatus = "ambiguous"
	LookupNotFound  LookupStatus = "not_found"
)

// LookupResult is the response to a single-field lookup: a resolved
// profile, a ranked choice list needing disambiguation, or not found.
// Not found is a displayable outcome, not an error.
type LookupResult struct {
	Status  LookupStatus            `json:"status"`
	Profile *ProductTaxProfile      `json:"profile,omitempty"`
	Choices []domain.ProductSummary `json:"choices,omitempty"`
}

// ProductService answers interactive product queries.
type ProductService interface {
	Search(ctx context.Context, query string, mode domain.SearchMode) ([]domain.ProductSummary, error)
	GetByID(ctx context.Context, id int64, useCashback bool) (*ProductTaxProfile, error)
	GetByBarcode(ctx context.Context, barcode string, useCashback bool) (*ProductTaxProfile, error)
	Lookup(ctx context.Context, query string, mode domain.LookupMode, useCashback bool) (*LookupResult, error)
}

type productService struct {
	resolver *catalog.Resolver
	calc     *taxengine.Calculator
	insights *insight.Selector
}

// NewProductService creates a new ProductService implementation.
func NewProductService(resolver *catalog.Resolver, calc *taxengine.Calculator, insights *insight.Selector) ProductService {
	return &productService{resolver: resolver, calc: calc, insights: insights}
}

// Search returns disambiguation summaries sorted alphabetically for
// display. The underlying resolver order is catalog relevance.
func (s *productService) Search(ctx context.Context, query string, mode domain.SearchMode) ([]domain.ProductSummary, error) {
	summaries, err := s.resolver.SearchSummaries(ctx, query, mode)
	if err != nil {
		return nil, err
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Name < summaries[j].Name
	})
	return summaries, nil
}

func (s *productService) GetByID(ctx context.Context, id int64, useCashback bool) (*ProductTaxProfile, error) {
	product, err := s.resolver.GetDetailsByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return s.profile(ctx, product, useCashback), nil
}

func (s *productService) GetByBarcode(ctx context.Context, barcode string, useCashback bool) (*ProductTaxProfile, error) {
	product, err := s.resolver.GetDetailsByBarcode(ctx, barcode)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return s.profile(ctx, product, useCashback), nil
}

// Lookup applies the disambiguation policy: exactly one summary resolves
// automatically, several require a caller-side choice, and zero is the
// terminal not-found outcome.
func (s *productService) Lookup(ctx context.Context, query string, mode domain.LookupMode, useCashback bool) (*LookupResult, error) {
	if mode == domain.LookupByBarcode {
		product, err := s.resolver.FindSingle(ctx, query, mode)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return &LookupResult{Status: LookupNotFound}, nil
		}
		return &LookupResult{Status: LookupFound, Profile: s.profile(ctx, product, useCashback)}, nil
	}
	if mode != domain.LookupByName {
		return nil, domain.ErrInvalidLookupMode
	}

	summaries, err := s.resolver.SearchSummaries(ctx, query, domain.SearchByName)
	if err != nil {
		return nil, err
	}
	switch len(summaries) {
	case 0:
		return &LookupResult{Status: LookupNotFound}, nil
	case 1:
		product, err := s.resolver.GetDetailsByID(ctx, summaries[0].ID)
		if err != nil {
			return nil, err
		}
		if product == nil {
			return &LookupResult{Status: LookupNotFound}, nil
		}
		return &LookupResult{Status: LookupFound, Profile: s.profile(ctx, product, useCashback)}, nil
	default:
		sort.Slice(summaries, func(i, j int) bool {
			return summaries[i].Name < summaries[j].Name
		})
		return &LookupResult{Status: LookupAmbiguous, Choices: summaries}, nil
	}
}

func (s *productService) profile(ctx context.Context, product *domain.ProductRecord, useCashback bool) *ProductTaxProfile {
	breakdown := s.calc.Compute(product, useCashback)
	text := s.insights.Explain(ctx, port.InsightRequest{
		ProductName: product.Name,
		Category:    product.Category,
		TariffCode:  product.TariffCode,
		Breakdown:   breakdown,
	})
	return &ProductTaxProfile{Product: product, Breakdown: breakdown, Insight: text}
}
