package taxengine

import "claritax/internal/domain"

// Rates holds the engine's reference rates, all 0-100 percentages except
// ReferencePrice. The defaults encode the policy baseline: unclassified
// products are assumed to carry the standard rate, not a zero rate.
type Rates struct {
	IBSNominal    float64
	CBSNominal    float64
	LegacyFood    float64
	LegacyGeneral float64
	CashbackPct   float64
	// ReferencePrice substitutes for the unit price when the catalog does
	// not carry one, so percentage fields stay meaningful in isolation.
	ReferencePrice float64
}

// DefaultRates returns the built-in reference rates.
func DefaultRates() Rates {
	return Rates{
		IBSNominal:     8.8,
		CBSNominal:     17.7,
		LegacyFood:     12.5,
		LegacyGeneral:  34.4,
		CashbackPct:    20,
		ReferencePrice: 100,
	}
}

// Calculator computes dual-regime tax breakdowns. It holds no mutable
// state and is safe for concurrent use.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given reference rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// Compute derives the full tax breakdown for a product. It is total: any
// well-formed ProductRecord produces a breakdown, with missing tax rows,
// rates, and prices degrading to the documented defaults.
func (c *Calculator) Compute(p *domain.ProductRecord, useCashback bool) domain.TaxBreakdown {
	price := c.rates.ReferencePrice
	if p.UnitPrice != nil {
		price = *p.UnitPrice
	}

	ibsDetail := c.detailFor(p, domain.TaxTypeIBS)
	cbsDetail := c.detailFor(p, domain.TaxTypeCBS)

	ibs := computeAmount(ibsDetail, price)
	cbs := computeAmount(cbsDetail, price)

	newTotal := ibs.Value + cbs.Value
	legacyTotal := c.legacyRate(p) / 100 * price

	deltaPct := 0.0
	if legacyTotal != 0 {
		deltaPct = (newTotal - legacyTotal) / legacyTotal * 100
	}

	// Full IBS reduction is the catalog's exemption signal even when the
	// category label does not say food.
	basicBasket := p.IsFood() || ibsDetail.ReductionPct == 100

	cashback := 0.0
	if useCashback {
		cashback = newTotal * c.rates.CashbackPct / 100
	}

	return domain.TaxBreakdown{
		IBS:         ibs,
		CBS:         cbs,
		NewTotal:    newTotal,
		LegacyTotal: legacyTotal,
		DeltaPct:    deltaPct,
		BasicBasket: basicBasket,
		Cashback:    cashback,
	}
}

// detailFor returns the product's tax detail for the type, or the
// all-default detail when the catalog has no row.
func (c *Calculator) detailFor(p *domain.ProductRecord, t domain.TaxType) domain.TaxDetail {
	if d := p.Detail(t); d != nil {
		return *d
	}
	nominal := c.rates.IBSNominal
	if t == domain.TaxTypeCBS {
		nominal = c.rates.CBSNominal
	}
	return domain.TaxDetail{
		TaxType:     t,
		CST:         DefaultCST,
		ClassCode:   DefaultClassCode,
		NominalRate: nominal,
		FinalRate:   nominal,
	}
}

func computeAmount(d domain.TaxDetail, price float64) domain.TaxAmount {
	value := price * d.NominalRate / 100 * (1 - d.ReductionPct/100)

	finalRate := 0.0
	switch {
	case d.HasFinalRate:
		finalRate = d.FinalRate / 100
	case price != 0:
		// Back-computed so the final rate and value stay mutually
		// consistent even when the source never stored one.
		finalRate = value / price
	}

	return domain.TaxAmount{
		Value:        value,
		NominalRate:  d.NominalRate / 100,
		FinalRate:    finalRate,
		ReductionPct: d.ReductionPct,
		CST:          d.CST,
		ClassCode:    d.ClassCode,
	}
}

func (c *Calculator) legacyRate(p *domain.ProductRecord) float64 {
	if p.IsFood() {
		return c.rates.LegacyFood
	}
	return c.rates.LegacyGeneral
}
