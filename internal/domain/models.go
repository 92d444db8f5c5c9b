package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// FoodCategory is the catalog category that qualifies for the basic-basket
// regime and the preferential legacy reference rate.
const FoodCategory = "alimentos"

// ProductRecord is the canonical catalog entity. It is read-only from the
// engine's perspective; the catalog-ingestion process owns its lifecycle.
type ProductRecord struct {
	ID            int64  `db:"id" json:"id"`
	Barcode       string `db:"barcode" json:"barcode"`
	TariffCode    string `db:"tariff_code" json:"tariff_code"`
	SecondaryCode string `db:"secondary_code" json:"secondary_code"`
	Name          string `db:"name" json:"name"`
	Category      string `db:"category" json:"category"`
	// UnitPrice is nil when the catalog does not carry a price. Bulk
	// documents supply their own unit price per line.
	UnitPrice *float64 `db:"unit_price" json:"unit_price"`

	// TaxDetails holds at most one entry per tax type. Modeled as a slice
	// for join-shape compatibility.
	TaxDetails []TaxDetail `db:"-" json:"tax_details"`
}

// IsFood reports whether the product belongs to the food category.
func (p *ProductRecord) IsFood() bool {
	return strings.EqualFold(strings.TrimSpace(p.Category), FoodCategory)
}

// Detail returns the tax detail for the given type, or nil if the catalog
// has no row for that type.
func (p *ProductRecord) Detail(t TaxType) *TaxDetail {
	for i := range p.TaxDetails {
		if p.TaxDetails[i].TaxType == t {
			return &p.TaxDetails[i]
		}
	}
	return nil
}

// TaxDetail is the normalized form of one (product, tax type) catalog row.
// Rates and reduction are 0-100 percentages as stored in the source.
type TaxDetail struct {
	TaxType      TaxType `json:"tax_type"`
	CST          string  `json:"cst"`
	ClassCode    string  `json:"class_code"`
	NominalRate  float64 `json:"nominal_rate"`
	ReductionPct float64 `json:"reduction_pct"`
	FinalRate    float64 `json:"final_rate"`
	// HasFinalRate is true when the source stored an effective rate, as
	// opposed to one derived from nominal rate and reduction.
	HasFinalRate bool `json:"has_final_rate"`
}

// ProductSummary is the lightweight projection used for disambiguation
// lists. It never carries tax data.
type ProductSummary struct {
	ID            int64  `db:"id" json:"id"`
	Name          string `db:"name" json:"name"`
	Barcode       string `db:"barcode" json:"barcode"`
	TariffCode    string `db:"tariff_code" json:"tariff_code"`
	SecondaryCode string `db:"secondary_code" json:"secondary_code"`
}

// TaxAmount is the per-type slice of a computed breakdown. Rates are
// exposed as 0-1 fractions; the reduction stays a 0-100 percentage.
type TaxAmount struct {
	Value        float64 `json:"value"`
	NominalRate  float64 `json:"nominal_rate"`
	FinalRate    float64 `json:"final_rate"`
	ReductionPct float64 `json:"reduction_pct"`
	CST          string  `json:"cst"`
	ClassCode    string  `json:"class_code"`
}

// TaxBreakdown is the immutable result of one computation call.
type TaxBreakdown struct {
	IBS TaxAmount `json:"ibs"`
	CBS TaxAmount `json:"cbs"`

	NewTotal    float64 `json:"new_total"`
	LegacyTotal float64 `json:"legacy_total"`
	DeltaPct    float64 `json:"delta_pct"`
	BasicBasket bool    `json:"basic_basket"`
	Cashback    float64 `json:"cashback"`
}

// LineItem is one line extracted from a trade document, carrying its
// resolution state. An item never re-enters StatusSearching once resolved.
type LineItem struct {
	InternalCode string  `json:"internal_code"`
	Description  string  `json:"description"`
	TariffCode   string  `json:"tariff_code"`
	Barcode      string  `json:"barcode"`
	Quantity     float64 `json:"quantity"`
	UnitPrice    float64 `json:"unit_price"`
	TotalPrice   float64 `json:"total_price"`
	Discount     float64 `json:"discount"`
	Imported     bool    `json:"imported"`

	Status    ResolutionStatus `json:"status"`
	Source    MatchSource      `json:"source"`
	Product   *ProductRecord   `json:"product,omitempty"`
	Breakdown *TaxBreakdown    `json:"breakdown,omitempty"`
}

// AnalysisJob records one bulk document analysis run.
type AnalysisJob struct {
	ID         uuid.UUID      `db:"id" json:"id"`
	FileName   string         `db:"file_name" json:"file_name"`
	S3Bucket   string         `db:"s3_bucket" json:"s3_bucket"`
	S3Key      string         `db:"s3_key" json:"s3_key"`
	Status     AnalysisStatus `db:"status" json:"status"`
	ItemCount  int            `db:"item_count" json:"item_count"`
	FoundCount int            `db:"found_count" json:"found_count"`
	CreatedAt  time.Time      `db:"created_at" json:"created_at"`
	FinishedAt *time.Time     `db:"finished_at" json:"finished_at"`
}

// AnalysisItem is the persisted form of one resolved line item.
type AnalysisItem struct {
	ID           int64            `db:"id" json:"id"`
	JobID        uuid.UUID        `db:"job_id" json:"job_id"`
	Position     int              `db:"position" json:"position"`
	InternalCode string           `db:"internal_code" json:"internal_code"`
	Description  string           `db:"description" json:"description"`
	TariffCode   string           `db:"tariff_code" json:"tariff_code"`
	Barcode      string           `db:"barcode" json:"barcode"`
	Quantity     float64          `db:"quantity" json:"quantity"`
	UnitPrice    float64          `db:"unit_price" json:"unit_price"`
	Status       ResolutionStatus `db:"status" json:"status"`
	Source       MatchSource      `db:"source" json:"source"`
	ProductID    *int64           `db:"product_id" json:"product_id"`
	ProductName  string           `db:"product_name" json:"product_name"`
	Breakdown    json.RawMessage  `db:"breakdown" json:"breakdown"`
}
