// Package insight chooses a human-readable explanation for a computed tax
// profile from tiered sources: curated short-form text, curated long-form
// text, then a generative fallback.
package insight

import (
	"context"
	"log"

	"claritax/internal/port"
)

// FallbackText is returned when every tier comes up empty or fails.
const FallbackText = "Não foi possível gerar uma explicação para esta classificação tributária."

// Selector walks the explanation tiers in order. It never fails: a tier
// that errors is logged and skipped, and the static fallback closes the
// chain.
type Selector struct {
	repo port.InsightRepository
	gen  port.InsightGenerator
}

// NewSelector creates a Selector. gen may be nil when no generative
// provider is configured.
func NewSelector(repo port.InsightRepository, gen port.InsightGenerator) *Selector {
	return &Selector{repo: repo, gen: gen}
}

// Explain returns explanatory text for the breakdown. The curated tables
// key on the IBS classification pair, which identifies the tax-treatment
// rule applied.
func (s *Selector) Explain(ctx context.Context, req port.InsightRequest) string {
	cst := req.Breakdown.IBS.CST
	classCode := req.Breakdown.IBS.ClassCode

	if text, err := s.repo.GetShortForm(ctx, cst, classCode); err != nil {
		log.Printf("insight: short-form lookup failed: %v", err)
	} else if text != "" {
		return text
	}

	if text, err := s.repo.GetLongForm(ctx, cst, classCode); err != nil {
		log.Printf("insight: long-form lookup failed: %v", err)
	} else if text != "" {
		return text
	}

	if s.gen != nil {
		text, err := s.gen.Generate(ctx, req)
		if err != nil {
			log.Printf("insight: generative fallback failed: %v", err)
		} else if text != "" {
			return text
		}
	}

	return FallbackText
}
