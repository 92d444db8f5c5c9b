package port

import (
	"context"

	"claritax/internal/domain"
)

// RawTaxRow is one catalog tax row as it comes off the wire: column name to
// value, with values in whatever encoding the source stored (numeric,
// comma-decimal string, percent-suffixed string). Column names may use the
// current or the legacy alias for the same semantic field.
type RawTaxRow map[string]interface{}

// CatalogRepository is the engine's read-only view of the product catalog.
// Absence is a normal outcome: lookups return (nil, nil) when no record
// matches. Implementations must be safe for concurrent use.
type CatalogRepository interface {
	// GetByID returns the base record without tax rows.
	GetByID(ctx context.Context, id int64) (*domain.ProductRecord, error)

	// GetByBarcode returns the base record for an exact barcode match.
	GetByBarcode(ctx context.Context, barcode string) (*domain.ProductRecord, error)

	// SearchByTariff returns summaries whose tariff code contains the
	// given fragment, capped at limit, in catalog relevance order.
	SearchByTariff(ctx context.Context, code string, limit int) ([]domain.ProductSummary, error)

	// SearchByName returns summaries whose name contains every token,
	// case-insensitive, in any order, capped at limit.
	SearchByName(ctx context.Context, tokens []string, limit int) ([]domain.ProductSummary, error)

	// GetTaxRow returns the raw tax row for (product, tax type), or nil
	// when the catalog has no row for that pair.
	GetTaxRow(ctx context.Context, productID int64, taxType domain.TaxType) (RawTaxRow, error)
}
