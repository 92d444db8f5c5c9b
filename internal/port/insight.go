package port

import (
	"context"

	"claritax/internal/domain"
)

// InsightRepository serves the curated explanation tables. Both lookups
// key on the classification pair; absence returns ("", nil).
type InsightRepository interface {
	GetShortForm(ctx context.Context, cst, classCode string) (string, error)
	GetLongForm(ctx context.Context, cst, classCode string) (string, error)
}

// InsightRequest carries everything a generator may use to explain a
// computed breakdown.
type InsightRequest struct {
	ProductName string
	Category    string
	TariffCode  string
	Breakdown   domain.TaxBreakdown
}

// InsightGenerator produces an explanation when no curated text exists.
type InsightGenerator interface {
	Generate(ctx context.Context, req InsightRequest) (string, error)
}
