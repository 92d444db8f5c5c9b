package catalog

import (
	"context"
	"strings"

	"claritax/internal/domain"
)

// Match is the cascade outcome: the resolved record and the step that won.
// Both are zero when every step missed.
type Match struct {
	Product *domain.ProductRecord
	Source  domain.MatchSource
}

// ResolveCascade resolves a bulk line item by trying, in strict order:
// exact barcode, tariff-code search, free-text name search. The order
// encodes a trust hierarchy and must short-circuit at the first hit;
// reordering would change which candidate wins when the signals point at
// different catalog entries. Tariff and name steps reuse the interactive
// search paths, so matching semantics are identical across call sites.
func (r *Resolver) ResolveCascade(ctx context.Context, barcode, tariffCode, freeText string) (Match, error) {
	if strings.TrimSpace(barcode) != "" {
		product, err := r.GetDetailsByBarcode(ctx, barcode)
		if err != nil {
			return Match{}, err
		}
		if product != nil {
			return Match{Product: product, Source: domain.MatchSourceEAN}, nil
		}
	}

	if strings.TrimSpace(tariffCode) != "" {
		summaries, err := r.SearchSummaries(ctx, tariffCode, domain.SearchByTariff)
		if err != nil {
			return Match{}, err
		}
		if len(summaries) > 0 {
			product, err := r.GetDetailsByID(ctx, summaries[0].ID)
			if err != nil {
				return Match{}, err
			}
			if product != nil {
				return Match{Product: product, Source: domain.MatchSourceNCM}, nil
			}
		}
	}

	if strings.TrimSpace(freeText) != "" {
		summaries, err := r.SearchSummaries(ctx, freeText, domain.SearchByName)
		if err != nil {
			return Match{}, err
		}
		if len(summaries) > 0 {
			product, err := r.GetDetailsByID(ctx, summaries[0].ID)
			if err != nil {
				return Match{}, err
			}
			if product != nil {
				return Match{Product: product, Source: domain.MatchSourceName}, nil
			}
		}
	}

	return Match{Source: domain.MatchSourceNone}, nil
}
