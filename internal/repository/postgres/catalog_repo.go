package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"claritax/internal/domain"
	"claritax/internal/port"
)

type catalogRepo struct {
	db *sqlx.DB
}

// NewCatalogRepo creates a new PostgreSQL-backed CatalogRepository.
func NewCatalogRepo(db *sqlx.DB) port.CatalogRepository {
	return &catalogRepo{db: db}
}

const productColumns = `id, barcode, tariff_code, secondary_code, name, category, unit_price`

func (r *catalogRepo) GetByID(ctx context.Context, id int64) (*domain.ProductRecord, error) {
	var product domain.ProductRecord
	err := r.db.GetContext(ctx, &product,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if err != nil {
		// Absence is a normal outcome for catalog lookups.
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("catalogRepo.GetByID: %w", err)
	}
	return &product, nil
}

func (r *catalogRepo) GetByBarcode(ctx context.Context, barcode string) (*domain.ProductRecord, error) {
	var product domain.ProductRecord
	err := r.db.GetContext(ctx, &product,
		`SELECT `+productColumns+` FROM products WHERE barcode = $1`, barcode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("catalogRepo.GetByBarcode: %w", err)
	}
	return &product, nil
}

const summaryColumns = `id, name, barcode, tariff_code, secondary_code`

func (r *catalogRepo) SearchByTariff(ctx context.Context, code string, limit int) ([]domain.ProductSummary, error) {
	var summaries []domain.ProductSummary
	err := r.db.SelectContext(ctx, &summaries,
		`SELECT `+summaryColumns+` FROM products
		 WHERE tariff_code LIKE '%' || $1 || '%'
		 LIMIT $2`, code, limit)
	if err != nil {
		return nil, fmt.Errorf("catalogRepo.SearchByTariff: %w", err)
	}
	return summaries, nil
}

func (r *catalogRepo) SearchByName(ctx context.Context, tokens []string, limit int) ([]domain.ProductSummary, error) {
	if len(tokens) == 0 {
		return []domain.ProductSummary{}, nil
	}

	// Conjunctive multi-token search: every token must match the name
	// independently, in any order.
	conds := make([]string, 0, len(tokens))
	args := make([]interface{}, 0, len(tokens)+1)
	for i, tok := range tokens {
		conds = append(conds, fmt.Sprintf("name ILIKE '%%' || $%d || '%%'", i+1))
		args = append(args, tok)
	}
	args = append(args, limit)

	query := fmt.Sprintf(
		`SELECT `+summaryColumns+` FROM products WHERE %s LIMIT $%d`,
		strings.Join(conds, " AND "), len(tokens)+1)

	var summaries []domain.ProductSummary
	if err := r.db.SelectContext(ctx, &summaries, query, args...); err != nil {
		return nil, fmt.Errorf("catalogRepo.SearchByName: %w", err)
	}
	return summaries, nil
}

func (r *catalogRepo) GetTaxRow(ctx context.Context, productID int64, taxType domain.TaxType) (port.RawTaxRow, error) {
	// The details table carries both the current and legacy column set;
	// rows populate whichever their ingestion era used. MapScan keeps the
	// heterogeneous values as-is for the engine's normalization step.
	rows, err := r.db.QueryxContext(ctx,
		`SELECT cst, c_class, aliquota, aliq, reducao, red, aliquota_efetiva, aliq_efetiva
		 FROM product_tax_details
		 WHERE product_id = $1 AND tax_type = $2
		 LIMIT 1`, productID, string(taxType))
	if err != nil {
		return nil, fmt.Errorf("catalogRepo.GetTaxRow: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("catalogRepo.GetTaxRow: %w", err)
		}
		return nil, nil
	}

	raw := make(map[string]interface{})
	if err := rows.MapScan(raw); err != nil {
		return nil, fmt.Errorf("catalogRepo.GetTaxRow scan: %w", err)
	}
	return port.RawTaxRow(raw), nil
}
