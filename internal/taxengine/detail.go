package taxengine

import (
	"strings"

	"claritax/internal/domain"
	"claritax/internal/port"
)

// Classification defaults applied when a catalog row omits the field.
const (
	DefaultCST       = "000"
	DefaultClassCode = "01.001.00"
)

// Column aliases. The catalog schema carries both the current column names
// and the ones inherited from the pre-reform schema; rows populate one or
// the other depending on when they were ingested. The current alias always
// wins when both are present.
const (
	colRate            = "aliquota"
	colRateLegacy      = "aliq"
	colReduction       = "reducao"
	colReductionLegacy = "red"
	colFinalRate       = "aliquota_efetiva"
	colFinalRateLegacy = "aliq_efetiva"
	colCST             = "cst"
	colClassCode       = "c_class"
)

// MapTaxRow normalizes one raw catalog tax row into a TaxDetail. Missing
// fields take the documented defaults; a rate that is absent from the row
// surfaces as a visibly-zero rate rather than an error. When no effective
// rate is stored under either alias it is derived from the nominal rate
// and reduction, with HasFinalRate left false.
func MapTaxRow(taxType domain.TaxType, row port.RawTaxRow) domain.TaxDetail {
	d := domain.TaxDetail{
		TaxType:   taxType,
		CST:       DefaultCST,
		ClassCode: DefaultClassCode,
	}

	if s := stringField(row, colCST); s != "" {
		d.CST = s
	}
	if s := stringField(row, colClassCode); s != "" {
		d.ClassCode = s
	}

	if v, ok := pick(row, colRate, colRateLegacy); ok {
		d.NominalRate = Normalize(v)
	}
	if v, ok := pick(row, colReduction, colReductionLegacy); ok {
		d.ReductionPct = Normalize(v)
	}

	if v, ok := pick(row, colFinalRate, colFinalRateLegacy); ok {
		d.FinalRate = Normalize(v)
		d.HasFinalRate = true
	} else {
		d.FinalRate = d.NominalRate * (1 - d.ReductionPct/100)
	}
	return d
}

// pick returns the value under the current alias if present and non-nil,
// then the legacy alias. A column that exists but holds nil counts as
// absent, matching how optional columns arrive from the store.
func pick(row port.RawTaxRow, current, legacy string) (interface{}, bool) {
	if v, ok := row[current]; ok && v != nil {
		return v, true
	}
	if v, ok := row[legacy]; ok && v != nil {
		return v, true
	}
	return nil, false
}

func stringField(row port.RawTaxRow, key string) string {
	v, ok := row[key]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case []byte:
		return strings.TrimSpace(string(s))
	default:
		return ""
	}
}
